package model

// Category 物料分类表 — 对应 categories
type Category struct {
	CategoryID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"category_id"`
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	Description string `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Category) TableName() string { return "categories" }

// Item 库存物料表 — 对应 items
type Item struct {
	ItemID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"item_id"`
	Name        string  `gorm:"type:varchar(200);not null;index"               json:"name"`
	CategoryID  *string `gorm:"type:uuid;index"                                json:"category_id,omitempty"`
	Quantity    int     `gorm:"not null;default:0"                             json:"quantity"`
	Unit        string  `gorm:"type:varchar(20);not null;default:'pcs'"        json:"unit"`
	MinStock    int     `gorm:"not null;default:0"                             json:"min_stock"`
	Description string  `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	BaseModel

	// 关联
	Category *Category `gorm:"foreignKey:CategoryID;references:CategoryID" json:"category,omitempty"`
}

// TableName 指定表名
func (Item) TableName() string { return "items" }

// LowStock 库存是否低于预警线
func (i *Item) LowStock() bool { return i.Quantity < i.MinStock }
