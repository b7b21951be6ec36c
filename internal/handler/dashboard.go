package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"CrewWatch/internal/service"
	"CrewWatch/pkg/response"
)

// DashboardHandler 运营看板接口
type DashboardHandler struct {
	svc service.DashboardService
}

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Stats 看板聚合数据
// GET /v1/dashboard/stats
func (h *DashboardHandler) Stats(ctx context.Context, c *app.RequestContext) {
	stats, err := h.svc.GetStats(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, stats)
}

// PendingAlerts 待响应告警
// GET /v1/dashboard/pending-alerts
func (h *DashboardHandler) PendingAlerts(ctx context.Context, c *app.RequestContext) {
	alerts, err := h.svc.PendingAlerts(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, alerts)
}

// RecentLogs 最近审计日志
// GET /v1/dashboard/recent-logs
func (h *DashboardHandler) RecentLogs(ctx context.Context, c *app.RequestContext) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	logs, err := h.svc.RecentLogs(ctx, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, logs)
}
