package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"CrewWatch/internal/model/dto"
	"CrewWatch/internal/service"
	"CrewWatch/pkg/response"
)

// StaffHandler 乘务员档案接口
type StaffHandler struct {
	svc service.StaffService
}

func NewStaffHandler(svc service.StaffService) *StaffHandler {
	return &StaffHandler{svc: svc}
}

// Create 手工登记乘务员
// POST /v1/staff
func (h *StaffHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateStaffRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	staff, err := h.svc.Create(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, staff)
}

// Get 乘务员详情
// GET /v1/staff/:id
func (h *StaffHandler) Get(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BindError(ctx, c, errInvalidID)
		return
	}

	staff, err := h.svc.Get(ctx, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, staff)
}

// List 乘务员列表
// GET /v1/staff
func (h *StaffHandler) List(ctx context.Context, c *app.RequestContext) {
	var query dto.ListStaffQuery
	if err := c.Bind(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	staff, total, err := h.svc.List(ctx, &query)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, staff, map[string]interface{}{
		"total": total,
	})
}
