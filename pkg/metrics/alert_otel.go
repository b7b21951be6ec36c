package metrics

import (
	"context"
)

// 下面是供业务代码直接调用的包级包装，指标未初始化时静默跳过

// RecordAlertDispatched 记录告警投递
func RecordAlertDispatched(alertType, status string, duration float64) {
	ctx := context.Background()
	m := GetMetrics()
	if m != nil {
		m.RecordAlertDispatched(ctx, alertType, status, duration)
	}
}

// RecordAlertResponse 记录人工响应
func RecordAlertResponse(alertType, response string) {
	ctx := context.Background()
	m := GetMetrics()
	if m != nil {
		m.RecordAlertResponse(ctx, alertType, response)
	}
}

// RecordScanRun 记录扫描
func RecordScanRun(status string, openShifts int, duration float64) {
	ctx := context.Background()
	m := GetMetrics()
	if m != nil {
		m.RecordScanRun(ctx, status, int64(openShifts), duration)
	}
}

// RecordAlertDelivery 记录 worker 投递尝试
func RecordAlertDelivery(alertType, channel, status string, duration float64) {
	ctx := context.Background()
	m := GetMetrics()
	if m != nil {
		m.RecordAlertDelivery(ctx, alertType, channel, status, duration)
	}
}

// AddQueueActiveTask 增加在途告警消息数
func AddQueueActiveTask() {
	m := GetMetrics()
	if m != nil {
		m.AddQueueActiveTask(context.Background())
	}
}

// SubtractQueueActiveTask 减少在途告警消息数
func SubtractQueueActiveTask() {
	m := GetMetrics()
	if m != nil {
		m.SubtractQueueActiveTask(context.Background())
	}
}
