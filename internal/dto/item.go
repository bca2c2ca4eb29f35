package dto

// ── 物料与分类模块 DTO ──

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name        string `json:"name"        binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateCategoryRequest 更新分类请求
type UpdateCategoryRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// CategoryResponse 分类响应
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ItemCount   int64  `json:"item_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CreateItemRequest 创建物料请求
type CreateItemRequest struct {
	Name        string  `json:"name"        binding:"required,min=1,max=200"`
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	Quantity    int     `json:"quantity"    binding:"omitempty,min=0"`
	Unit        string  `json:"unit"        binding:"omitempty,max=20"`
	MinStock    int     `json:"min_stock"   binding:"omitempty,min=0"`
	Description string  `json:"description" binding:"omitempty,max=500"`
}

// UpdateItemRequest 更新物料请求
type UpdateItemRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=200"`
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	Quantity    *int    `json:"quantity"    binding:"omitempty,min=0"`
	Unit        *string `json:"unit"        binding:"omitempty,max=20"`
	MinStock    *int    `json:"min_stock"   binding:"omitempty,min=0"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// ItemResponse 物料响应
type ItemResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	CategoryID   *string `json:"category_id,omitempty"`
	CategoryName string  `json:"category_name,omitempty"`
	Quantity     int     `json:"quantity"`
	Unit         string  `json:"unit"`
	MinStock     int     `json:"min_stock"`
	LowStock     bool    `json:"low_stock"`
	Description  string  `json:"description,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}
