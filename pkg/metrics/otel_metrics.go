package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 值乘告警相关指标
	AlertsDispatchedTotal  metric.Int64Counter
	AlertDispatchDuration  metric.Float64Histogram
	AlertResponsesTotal    metric.Int64Counter
	ScanRunsTotal          metric.Int64Counter
	ScanDuration           metric.Float64Histogram
	OpenShiftsScanned      metric.Int64Histogram
	AlertDeliveryTotal     metric.Int64Counter
	AlertDeliveryDuration  metric.Float64Histogram
	AlertQueueActiveTasks  metric.Int64UpDownCounter

	// HTTP 相关指标
	HTTPServerRequestTotal   metric.Int64Counter
	HTTPServerDuration       metric.Float64Histogram
	HTTPServerActiveRequests metric.Int64UpDownCounter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("crewwatch")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.AlertsDispatchedTotal, err = meter.Int64Counter(
		"duty_alerts_dispatched_total",
		metric.WithDescription("Total number of duty-hour alerts dispatched"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return err
	}

	metrics.AlertDispatchDuration, err = meter.Float64Histogram(
		"duty_alert_dispatch_duration_seconds",
		metric.WithDescription("Time spent dispatching a duty-hour alert in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.AlertResponsesTotal, err = meter.Int64Counter(
		"duty_alert_responses_total",
		metric.WithDescription("Total number of human responses recorded for duty-hour alerts"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return err
	}

	metrics.ScanRunsTotal, err = meter.Int64Counter(
		"shift_scan_runs_total",
		metric.WithDescription("Total number of shift monitor scan runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return err
	}

	metrics.ScanDuration, err = meter.Float64Histogram(
		"shift_scan_duration_seconds",
		metric.WithDescription("Duration of a shift monitor scan run in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.OpenShiftsScanned, err = meter.Int64Histogram(
		"shift_scan_open_shifts",
		metric.WithDescription("Number of open shifts examined per scan run"),
		metric.WithUnit("{shift}"),
	)
	if err != nil {
		return err
	}

	metrics.AlertDeliveryTotal, err = meter.Int64Counter(
		"duty_alert_delivery_total",
		metric.WithDescription("Total number of alert delivery attempts by the worker"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return err
	}

	metrics.AlertDeliveryDuration, err = meter.Float64Histogram(
		"duty_alert_delivery_duration_seconds",
		metric.WithDescription("Time spent delivering one alert notification in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.AlertQueueActiveTasks, err = meter.Int64UpDownCounter(
		"duty_alert_queue_active_tasks",
		metric.WithDescription("Number of alert messages currently being processed"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return err
	}

	metrics.HTTPServerRequestTotal, err = meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	metrics.HTTPServerDuration, err = meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return err
	}

	metrics.HTTPServerActiveRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordAlertDispatched 记录一次告警投递（监控端发布到队列）
func (m *OTelMetrics) RecordAlertDispatched(ctx context.Context, alertType, status string, duration float64) {
	m.AlertsDispatchedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("alert_type", alertType),
		attribute.String("status", status),
	))
	m.AlertDispatchDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("alert_type", alertType),
	))
}

// RecordAlertResponse 记录一次人工响应
func (m *OTelMetrics) RecordAlertResponse(ctx context.Context, alertType, response string) {
	m.AlertResponsesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("alert_type", alertType),
		attribute.String("response", response),
	))
}

// RecordScanRun 记录一次扫描
func (m *OTelMetrics) RecordScanRun(ctx context.Context, status string, openShifts int64, duration float64) {
	m.ScanRunsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	m.ScanDuration.Record(ctx, duration)
	m.OpenShiftsScanned.Record(ctx, openShifts)
}

// RecordAlertDelivery 记录 worker 的一次投递尝试
func (m *OTelMetrics) RecordAlertDelivery(ctx context.Context, alertType, channel, status string, duration float64) {
	m.AlertDeliveryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("alert_type", alertType),
		attribute.String("channel", channel),
		attribute.String("status", status),
	))
	m.AlertDeliveryDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("channel", channel),
	))
}

// AddQueueActiveTask 增加在途告警消息数
func (m *OTelMetrics) AddQueueActiveTask(ctx context.Context) {
	m.AlertQueueActiveTasks.Add(ctx, 1)
}

// SubtractQueueActiveTask 减少在途告警消息数
func (m *OTelMetrics) SubtractQueueActiveTask(ctx context.Context) {
	m.AlertQueueActiveTasks.Add(ctx, -1)
}
