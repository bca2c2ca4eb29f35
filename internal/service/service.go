package service

import (
	"go.uber.org/zap"

	"vobiss-inventory/backend/config"
	"vobiss-inventory/backend/internal/repository"
	"vobiss-inventory/backend/pkg/jwt"
	"vobiss-inventory/backend/pkg/redis"
)

// Service 聚合所有业务服务，供 Handler 层统一注入
type Service struct {
	Auth      AuthService
	User      UserService
	Category  CategoryService
	Item      ItemService
	Request   RequestService
	Dashboard DashboardService
	Export    ExportService
}

// NewService 创建服务聚合实例
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:      NewUserService(repo, logger),
		Category:  NewCategoryService(repo, logger),
		Item:      NewItemService(repo, logger),
		Request:   NewRequestService(repo, logger),
		Dashboard: NewDashboardService(repo, cfg.Request.SummaryInterval, cfg.Request.RecentActivityN, logger),
		Export:    NewExportService(repo, logger),
	}
}
