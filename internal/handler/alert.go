package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"CrewWatch/internal/middleware"
	"CrewWatch/internal/model/dto"
	"CrewWatch/internal/service"
	"CrewWatch/pkg/response"
)

// AlertHandler 告警响应与历史接口
type AlertHandler struct {
	svc service.AlertService
}

func NewAlertHandler(svc service.AlertService) *AlertHandler {
	return &AlertHandler{svc: svc}
}

// SubmitResponse 提交人工响应
// POST /v1/shifts/:id/alerts/response
func (h *AlertHandler) SubmitResponse(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BindError(ctx, c, errInvalidID)
		return
	}

	var req dto.AlertResponseRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errUnauthorized())
		return
	}

	shift, err := h.svc.RecordResponse(ctx, id, &req, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, shift)
}

// History 班次告警历史
// GET /v1/shifts/:id/alerts
func (h *AlertHandler) History(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.BindError(ctx, c, errInvalidID)
		return
	}

	history, err := h.svc.GetAlertHistory(ctx, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, history)
}
