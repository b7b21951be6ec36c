package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"CrewWatch/internal/middleware"
	"CrewWatch/internal/model/dto"
	"CrewWatch/internal/service"
	"CrewWatch/pkg/response"
)

// ShiftHandler 班次生命周期接口
type ShiftHandler struct {
	svc service.ShiftService
}

func NewShiftHandler(svc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{svc: svc}
}

// Create 创建班次
// POST /v1/shifts
func (h *ShiftHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateShiftRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errUnauthorized())
		return
	}

	shift, err := h.svc.Create(ctx, &req, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, shift)
}

// Get 班次详情（含审计日志）
// GET /v1/shifts/:id
func (h *ShiftHandler) Get(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BindError(ctx, c, errInvalidID)
		return
	}

	detail, err := h.svc.GetDetail(ctx, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, detail)
}

// List 班次列表
// GET /v1/shifts
func (h *ShiftHandler) List(ctx context.Context, c *app.RequestContext) {
	var query dto.ListShiftsQuery
	if err := c.Bind(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	shifts, total, err := h.svc.List(ctx, &query)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, shifts, map[string]interface{}{
		"total": total,
	})
}

// Update 人工修正班次
// PATCH /v1/shifts/:id
func (h *ShiftHandler) Update(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BindError(ctx, c, errInvalidID)
		return
	}

	var req dto.UpdateShiftRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errUnauthorized())
		return
	}

	shift, err := h.svc.Update(ctx, id, &req, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, shift)
}

// Complete 完成班次
// POST /v1/shifts/:id/complete
func (h *ShiftHandler) Complete(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BindError(ctx, c, errInvalidID)
		return
	}

	var req dto.CompleteShiftRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errUnauthorized())
		return
	}

	shift, err := h.svc.Complete(ctx, id, &req, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, shift)
}

// Delete 删除班次（进行中的不允许删）
// DELETE /v1/shifts/:id
func (h *ShiftHandler) Delete(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BindError(ctx, c, errInvalidID)
		return
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}

// ActiveSummary 在值班次汇总
// GET /v1/shifts/active/summary
func (h *ShiftHandler) ActiveSummary(ctx context.Context, c *app.RequestContext) {
	summary, err := h.svc.ActiveSummary(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, summary)
}
