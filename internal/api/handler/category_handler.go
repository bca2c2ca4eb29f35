package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"vobiss-inventory/backend/internal/dto"
	"vobiss-inventory/backend/internal/service"
	"vobiss-inventory/backend/pkg/response"
)

// CategoryHandler 物料分类模块 HTTP 处理器
type CategoryHandler struct {
	categorySvc service.CategoryService
}

// NewCategoryHandler 创建 CategoryHandler
func NewCategoryHandler(categorySvc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categorySvc: categorySvc}
}

// Create 创建分类（管理员）
// POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	category, err := h.categorySvc.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCategoryTaken) {
			response.Conflict(c, 13001, "分类名称已存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.Created(c, category)
}

// Get 获取分类详情
// GET /api/v1/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categorySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			response.NotFound(c, 13002, "分类不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, category)
}

// Update 更新分类（管理员）
// PATCH /api/v1/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	category, err := h.categorySvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			response.NotFound(c, 13002, "分类不存在")
		case errors.Is(err, service.ErrCategoryTaken):
			response.Conflict(c, 13001, "分类名称已存在")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, category)
}

// Delete 删除分类（管理员）
// DELETE /api/v1/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categorySvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			response.NotFound(c, 13002, "分类不存在")
		case errors.Is(err, service.ErrCategoryInUse):
			response.Conflict(c, 13003, "分类下仍有物料，无法删除")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}

// List 分类列表
// GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categorySvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, categories)
}
