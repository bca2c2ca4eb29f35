package model

import "time"

// Draft 申请单草稿 — 存储于 Redis（JSON），非数据库表
// 每个用户一份草稿，key 按 owner 参数化；saved_at 用于有效期判断
type Draft struct {
	Kind        string         `json:"kind"`
	FormData    DraftFormData  `json:"form_data"`
	ApproverIDs []string       `json:"approver_ids"`
	Items       []DraftItemRow `json:"items"`
	SavedAt     time.Time      `json:"saved_at"`
}

// DraftFormData 草稿表单字段快照
type DraftFormData struct {
	TeamLeaderName  string `json:"team_leader_name,omitempty"`
	TeamLeaderPhone string `json:"team_leader_phone,omitempty"`
	ProjectName     string `json:"project_name,omitempty"`
	ISPName         string `json:"isp_name,omitempty"`
	Location        string `json:"location,omitempty"`
	DeploymentType  string `json:"deployment_type,omitempty"`
	Reason          string `json:"reason,omitempty"`
	ReceivedBy      string `json:"received_by,omitempty"`
}

// DraftItemRow 草稿明细行（允许空行，提交时才过滤）
type DraftItemRow struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}
