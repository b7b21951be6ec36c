package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"CrewWatch/internal/schedule"
	"CrewWatch/pkg/response"
)

// MonitorHandler 扫描器的运维接口
type MonitorHandler struct {
	monitor *schedule.ShiftMonitor
}

func NewMonitorHandler(monitor *schedule.ShiftMonitor) *MonitorHandler {
	return &MonitorHandler{monitor: monitor}
}

// RunScan 手动触发一轮扫描
// POST /v1/monitor/scan
func (h *MonitorHandler) RunScan(ctx context.Context, c *app.RequestContext) {
	if err := h.monitor.RunOnce(ctx); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"triggered": true,
	})
}
