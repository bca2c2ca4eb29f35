package model

import "time"

// ── 申请单类型常量 ──

const (
	RequestKindMaterial = "material_request" // 领料申请
	RequestKindReturn   = "item_return"      // 退料申请
)

// ── 申请单状态常量 ──

const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusCompleted = "completed"
	RequestStatusRejected  = "rejected"
)

// ── 部署类型常量（仅领料申请使用） ──

const (
	DeploymentTypeDeployment  = "Deployment"
	DeploymentTypeMaintenance = "Maintenance"
)

// Request 申请单表 — 对应 requests
// kind 区分领料申请与退料申请，两类各有独立字段集：
//   - material_request: team_leader_name/phone、isp_name、deployment_type
//   - item_return: reason
// approved_at / completed_at / rejected_at 为独立时间戳，
// updated_at 仅表示"最后修改时间"。
type Request struct {
	RequestID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	Code            string     `gorm:"type:varchar(30);not null;uniqueIndex"          json:"code"`
	Kind            string     `gorm:"type:varchar(20);not null"                      json:"kind"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedBy       string     `gorm:"type:varchar(100);not null"                     json:"created_by"`
	TeamLeaderName  string     `gorm:"type:varchar(100)"                              json:"team_leader_name,omitempty"`
	TeamLeaderPhone string     `gorm:"type:varchar(30)"                               json:"team_leader_phone,omitempty"`
	ProjectName     string     `gorm:"type:varchar(200);not null"                     json:"project_name"`
	ISPName         string     `gorm:"type:varchar(100)"                              json:"isp_name,omitempty"`
	Location        string     `gorm:"type:varchar(200);not null"                     json:"location"`
	DeploymentType  string     `gorm:"type:varchar(20)"                               json:"deployment_type,omitempty"`
	Reason          string     `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	ReceivedBy      string     `gorm:"type:varchar(100);not null"                     json:"received_by"`
	ReleaseBy       *string    `gorm:"type:varchar(100)"                              json:"release_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	BaseModel

	// 关联
	Items      []RequestItem     `gorm:"foreignKey:RequestID;references:RequestID" json:"items,omitempty"`
	Approvers  []RequestApprover `gorm:"foreignKey:RequestID;references:RequestID" json:"approvers,omitempty"`
	Rejections []Rejection       `gorm:"foreignKey:RequestID;references:RequestID" json:"rejections,omitempty"`
}

// TableName 指定表名
func (Request) TableName() string { return "requests" }

// Editable 申请单是否仍可由申请人编辑（仅 pending 状态）
func (r *Request) Editable() bool { return r.Status == RequestStatusPending }

// RequestItem 申请单明细行表 — 对应 request_items
// sort_order 保持提交时的行顺序
type RequestItem struct {
	RequestItemID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_item_id"`
	RequestID         string `gorm:"type:uuid;not null;index"                       json:"request_id"`
	Name              string `gorm:"type:varchar(200);not null"                     json:"name"`
	QuantityRequested int    `gorm:"not null;default:0"                             json:"quantity_requested"`
	QuantityReceived  int    `gorm:"not null;default:0"                             json:"quantity_received"`
	QuantityReturned  int    `gorm:"not null;default:0"                             json:"quantity_returned"`
	SortOrder         int    `gorm:"not null;default:0"                             json:"sort_order"`
	BaseModel
}

// TableName 指定表名
func (RequestItem) TableName() string { return "request_items" }

// ── 审批人行状态常量 ──

const (
	ApproverStatusPending  = "pending"
	ApproverStatusApproved = "approved"
)

// RequestApprover 申请单审批人表 — 对应 request_approvers
// 创建申请单时为每个被指派的审批人生成一行；
// 全部审批人签批后申请单整体进入 approved。
type RequestApprover struct {
	RequestApproverID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_approver_id"`
	RequestID         string     `gorm:"type:uuid;not null;index;uniqueIndex:uniq_request_approver" json:"request_id"`
	ApproverID        string     `gorm:"type:uuid;not null;index;uniqueIndex:uniq_request_approver" json:"approver_id"`
	Status            string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Signature         string     `gorm:"type:text"                                      json:"signature,omitempty"`
	DecidedAt         *time.Time `json:"decided_at,omitempty"`
	CreatedAt         time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// 关联
	Approver *User `gorm:"foreignKey:ApproverID;references:UserID" json:"approver,omitempty"`
}

// TableName 指定表名
func (RequestApprover) TableName() string { return "request_approvers" }

// Rejection 驳回记录表 — 对应 rejections
type Rejection struct {
	RejectionID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rejection_id"`
	RequestID   string    `gorm:"type:uuid;not null;index"                       json:"request_id"`
	RejectedBy  string    `gorm:"type:varchar(100);not null"                     json:"rejected_by"`
	Reason      string    `gorm:"type:varchar(500);not null"                     json:"reason"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (Rejection) TableName() string { return "rejections" }

// [自证通过] internal/model/request.go
