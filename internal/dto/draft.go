package dto

// ── 草稿模块 DTO ──

// SaveDraftRequest 保存草稿请求
// 草稿允许不完整（空行、缺字段），提交时才做业务校验
type SaveDraftRequest struct {
	Kind            string           `json:"kind" binding:"required,oneof=material_request item_return"`
	TeamLeaderName  string           `json:"team_leader_name"`
	TeamLeaderPhone string           `json:"team_leader_phone"`
	ProjectName     string           `json:"project_name"`
	ISPName         string           `json:"isp_name"`
	Location        string           `json:"location"`
	DeploymentType  string           `json:"deployment_type"`
	Reason          string           `json:"reason"`
	ReceivedBy      string           `json:"received_by"`
	ApproverIDs     []string         `json:"approver_ids"`
	Items           []RequestItemRow `json:"items"`
}

// DraftResponse 草稿响应
type DraftResponse struct {
	Kind            string           `json:"kind"`
	TeamLeaderName  string           `json:"team_leader_name,omitempty"`
	TeamLeaderPhone string           `json:"team_leader_phone,omitempty"`
	ProjectName     string           `json:"project_name,omitempty"`
	ISPName         string           `json:"isp_name,omitempty"`
	Location        string           `json:"location,omitempty"`
	DeploymentType  string           `json:"deployment_type,omitempty"`
	Reason          string           `json:"reason,omitempty"`
	ReceivedBy      string           `json:"received_by,omitempty"`
	ApproverIDs     []string         `json:"approver_ids"`
	Items           []RequestItemRow `json:"items"`
	SavedAt         string           `json:"saved_at"`
}

// NewRequestFormResponse 新建申请单表单引导响应
// 默认勾选全部审批人（刻意保留的产品策略）；若存在未过期草稿则一并返回
type NewRequestFormResponse struct {
	Approvers           []ApproverResponse `json:"approvers"`
	SelectedApproverIDs []string           `json:"selected_approver_ids"`
	Draft               *DraftResponse     `json:"draft,omitempty"`
}
