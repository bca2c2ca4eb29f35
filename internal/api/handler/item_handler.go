package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"vobiss-inventory/backend/internal/dto"
	"vobiss-inventory/backend/internal/service"
	"vobiss-inventory/backend/pkg/response"
)

// ItemHandler 库存物料模块 HTTP 处理器
type ItemHandler struct {
	itemSvc service.ItemService
}

// NewItemHandler 创建 ItemHandler
func NewItemHandler(itemSvc service.ItemService) *ItemHandler {
	return &ItemHandler{itemSvc: itemSvc}
}

// Create 创建物料（管理员）
// POST /api/v1/items
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	item, err := h.itemSvc.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			response.BadRequest(c, 14001, "归属分类不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.Created(c, item)
}

// Get 获取物料详情
// GET /api/v1/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.itemSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.NotFound(c, 14002, "物料不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, item)
}

// Update 更新物料（管理员）
// PATCH /api/v1/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	item, err := h.itemSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			response.NotFound(c, 14002, "物料不存在")
		case errors.Is(err, service.ErrCategoryNotFound):
			response.BadRequest(c, 14001, "归属分类不存在")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, item)
}

// Delete 删除物料（管理员）
// DELETE /api/v1/items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.itemSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.NotFound(c, 14002, "物料不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// List 物料列表
// GET /api/v1/items?category_id=xxx&search=cable&low_stock=true
func (h *ItemHandler) List(c *gin.Context) {
	lowStock := c.Query("low_stock") == "true"
	items, err := h.itemSvc.List(c.Request.Context(), c.Query("category_id"), c.Query("search"), lowStock)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, items)
}
