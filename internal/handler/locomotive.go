package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"CrewWatch/internal/service"
	"CrewWatch/pkg/response"
)

// LocomotiveHandler 机车登记表接口
type LocomotiveHandler struct {
	svc service.LocomotiveService
}

func NewLocomotiveHandler(svc service.LocomotiveService) *LocomotiveHandler {
	return &LocomotiveHandler{svc: svc}
}

// List 机车列表
// GET /v1/locomotives
func (h *LocomotiveHandler) List(ctx context.Context, c *app.RequestContext) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	locos, total, err := h.svc.List(ctx, page, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, locos, map[string]interface{}{
		"total": total,
	})
}
