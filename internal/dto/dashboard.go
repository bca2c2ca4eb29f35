package dto

// ── 仪表盘模块 DTO ──

// DashboardSummaryResponse 仪表盘汇总响应
type DashboardSummaryResponse struct {
	StatusCounts   map[string]int64 `json:"status_counts"`
	LowStockCount  int64            `json:"low_stock_count"`
	ItemCount      int64            `json:"item_count"`
	RecentActivity []ActivityEntry  `json:"recent_activity"`
	RefreshedAt    string           `json:"refreshed_at"`
}

// ActivityEntry 最近动态条目（按 updated_at 倒序）
type ActivityEntry struct {
	RequestID   string `json:"request_id"`
	Code        string `json:"code"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	ProjectName string `json:"project_name"`
	CreatedBy   string `json:"created_by"`
	UpdatedAt   string `json:"updated_at"`
}
