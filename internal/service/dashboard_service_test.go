package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"vobiss-inventory/backend/internal/dto"
	"vobiss-inventory/backend/internal/model"
)

func newTestDashboardService() (*dashboardService, *mockRequestRepo, *mockItemRepo) {
	repo, requestRepo, _ := newTestRepo()
	itemRepo := repo.Item.(*mockItemRepo)
	svc := &dashboardService{
		repo:     repo,
		logger:   zap.NewNop(),
		interval: time.Second,
		recentN:  10,
		now:      time.Now,
	}
	return svc, requestRepo, itemRepo
}

func TestDashboardSummary_ColdFetch(t *testing.T) {
	svc, requestRepo, itemRepo := newTestDashboardService()

	_ = itemRepo.Create(context.Background(), &model.Item{Name: "Cable", Quantity: 1, MinStock: 5})
	_ = itemRepo.Create(context.Background(), &model.Item{Name: "Tape", Quantity: 20, MinStock: 5})
	_ = requestRepo.Create(context.Background(), &model.Request{
		Code: "MR-20260830-AAAA1111", Kind: model.RequestKindMaterial,
		Status: model.RequestStatusPending, ProjectName: "Alpha Tower", CreatedBy: "赵敏",
	})

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.ItemCount != 2 {
		t.Fatalf("ItemCount = %d, want 2", summary.ItemCount)
	}
	if summary.LowStockCount != 1 {
		t.Fatalf("LowStockCount = %d, want 1", summary.LowStockCount)
	}
	if summary.StatusCounts[model.RequestStatusPending] != 1 {
		t.Fatalf("pending 计数 = %d, want 1", summary.StatusCounts[model.RequestStatusPending])
	}
	// 零值状态也应出现在计数表中
	if _, ok := summary.StatusCounts[model.RequestStatusRejected]; !ok {
		t.Fatal("StatusCounts 应包含全部状态键")
	}
	if len(summary.RecentActivity) != 1 || summary.RecentActivity[0].Code != "MR-20260830-AAAA1111" {
		t.Fatalf("RecentActivity = %+v", summary.RecentActivity)
	}

	// 冷取数后快照建立，后续 Summary 直接读快照
	again, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if again != summary {
		t.Fatal("已有快照时应直接返回，不再实时取数")
	}
}

func TestDashboardSnapshot_StaleGenerationDiscarded(t *testing.T) {
	svc, _, _ := newTestDashboardService()

	// 模拟两次并发取数：先发出的请求（gen1）响应迟到
	gen1 := svc.beginFetch()
	gen2 := svc.beginFetch()

	fresh := &dto.DashboardSummaryResponse{RefreshedAt: "fresh"}
	stale := &dto.DashboardSummaryResponse{RefreshedAt: "stale"}

	if !svc.applySnapshot(gen2, fresh) {
		t.Fatal("较新代号的快照应被应用")
	}
	if svc.applySnapshot(gen1, stale) {
		t.Fatal("迟到的旧代号快照应被丢弃")
	}

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.RefreshedAt != "fresh" {
		t.Fatalf("RefreshedAt = %s, 旧响应覆盖了新快照", summary.RefreshedAt)
	}
}

func TestDashboardSnapshot_SameGenerationReapplied(t *testing.T) {
	svc, _, _ := newTestDashboardService()

	gen := svc.beginFetch()
	first := &dto.DashboardSummaryResponse{RefreshedAt: "first"}
	if !svc.applySnapshot(gen, first) {
		t.Fatal("首个快照应被应用")
	}

	// 代号单调递增：下一代必能覆盖
	next := svc.beginFetch()
	if next <= gen {
		t.Fatalf("代号应递增: %d -> %d", gen, next)
	}
	second := &dto.DashboardSummaryResponse{RefreshedAt: "second"}
	if !svc.applySnapshot(next, second) {
		t.Fatal("新代号快照应被应用")
	}
}
