package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vobiss-inventory/backend/internal/dto"
	"vobiss-inventory/backend/internal/model"
	"vobiss-inventory/backend/internal/repository"
)

// ── 分类模块业务错误 ──

var (
	ErrCategoryNotFound = errors.New("分类不存在")
	ErrCategoryTaken    = errors.New("分类名称已存在")
	ErrCategoryInUse    = errors.New("分类下仍有物料，无法删除")
)

// CategoryService 物料分类业务接口
type CategoryService interface {
	Create(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]dto.CategoryResponse, error)
}

type categoryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCategoryService 创建 CategoryService 实例
func NewCategoryService(repo *repository.Repository, logger *zap.Logger) CategoryService {
	return &categoryService{repo: repo, logger: logger}
}

func (s *categoryService) Create(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if _, err := s.repo.Category.GetByName(ctx, req.Name); err == nil {
		return nil, ErrCategoryTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询分类失败", zap.Error(err))
		return nil, err
	}

	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Category.Create(ctx, category); err != nil {
		s.logger.Error("创建分类失败", zap.Error(err))
		return nil, err
	}

	return s.toCategoryResponse(ctx, category), nil
}

func (s *categoryService) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	category, err := s.repo.Category.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		s.logger.Error("查询分类失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toCategoryResponse(ctx, category), nil
}

func (s *categoryService) Update(ctx context.Context, id string, req *dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.repo.Category.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		s.logger.Error("查询分类失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil && *req.Name != category.Name {
		if _, err := s.repo.Category.GetByName(ctx, *req.Name); err == nil {
			return nil, ErrCategoryTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}

	if err := s.repo.Category.Update(ctx, category); err != nil {
		s.logger.Error("更新分类失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toCategoryResponse(ctx, category), nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Category.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	// 分类下仍挂有物料时拒绝删除
	count, err := s.repo.Category.CountItems(ctx, id)
	if err != nil {
		s.logger.Error("统计分类物料失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	return s.repo.Category.Delete(ctx, id)
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.Category.List(ctx)
	if err != nil {
		s.logger.Error("查询分类列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		result = append(result, *s.toCategoryResponse(ctx, &categories[i]))
	}
	return result, nil
}

func (s *categoryService) toCategoryResponse(ctx context.Context, c *model.Category) *dto.CategoryResponse {
	count, err := s.repo.Category.CountItems(ctx, c.CategoryID)
	if err != nil {
		count = 0
	}
	return &dto.CategoryResponse{
		ID:          c.CategoryID,
		Name:        c.Name,
		Description: c.Description,
		ItemCount:   count,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}
