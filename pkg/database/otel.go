package database

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var (
	dbQueriesTotal  metric.Int64Counter
	dbQueryDuration metric.Float64Histogram
)

// InitDatabaseMetrics 初始化数据库指标
func InitDatabaseMetrics(meter metric.Meter) error {
	var err error

	dbQueriesTotal, err = meter.Int64Counter(
		"db.queries.total",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return err
	}

	dbQueryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return err
	}

	return nil
}

// OTELPlugin GORM OpenTelemetry 插件
type OTELPlugin struct {
	tracer trace.Tracer
	config PluginConfig
}

// PluginConfig 插件配置
type PluginConfig struct {
	ServiceName   string
	EnableMetrics bool
	MaxSQLLength  int
}

// DefaultPluginConfig 默认插件配置
func DefaultPluginConfig() PluginConfig {
	return PluginConfig{
		ServiceName:   "crewwatch",
		EnableMetrics: true,
		MaxSQLLength:  500,
	}
}

// NewOTELPlugin 创建插件实例
func NewOTELPlugin(config PluginConfig) *OTELPlugin {
	if config.ServiceName == "" {
		config.ServiceName = "crewwatch"
	}

	return &OTELPlugin{
		tracer: otel.Tracer(config.ServiceName + ".gorm"),
		config: config,
	}
}

// Name 实现 gorm.Plugin 接口
func (p *OTELPlugin) Name() string {
	return "otel_plugin"
}

// Initialize 为各类操作注册前后回调
func (p *OTELPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	cb.Query().Before("gorm:query").Register("otel:before_query", p.beforeCallback)
	cb.Query().After("gorm:query").Register("otel:after_query", p.afterCallback)

	cb.Create().Before("gorm:create").Register("otel:before_create", p.beforeCallback)
	cb.Create().After("gorm:create").Register("otel:after_create", p.afterCallback)

	cb.Update().Before("gorm:update").Register("otel:before_update", p.beforeCallback)
	cb.Update().After("gorm:update").Register("otel:after_update", p.afterCallback)

	cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.beforeCallback)
	cb.Delete().After("gorm:delete").Register("otel:after_delete", p.afterCallback)

	cb.Row().Before("gorm:row").Register("otel:before_row", p.beforeCallback)
	cb.Row().After("gorm:row").Register("otel:after_row", p.afterCallback)

	cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.beforeCallback)
	cb.Raw().After("gorm:raw").Register("otel:after_raw", p.afterCallback)

	return nil
}

func (p *OTELPlugin) beforeCallback(db *gorm.DB) {
	ctx := db.Statement.Context

	ctx, span := p.tracer.Start(ctx, p.operationName(db),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(p.dbAttributes(db)...),
	)

	db.InstanceSet("otel:start_time", time.Now())
	db.InstanceSet("otel:span", span)
	db.Statement.Context = ctx
}

func (p *OTELPlugin) afterCallback(db *gorm.DB) {
	spanI, exists := db.InstanceGet("otel:span")
	if !exists {
		return
	}

	startTimeI, exists := db.InstanceGet("otel:start_time")
	if !exists {
		return
	}

	startTime, ok := startTimeI.(time.Time)
	if !ok {
		return
	}

	span, ok := spanI.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	duration := time.Since(startTime).Seconds()

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}

	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if p.config.EnableMetrics {
		p.recordMetrics(db.Statement.Context, db, duration)
	}
}

// operationName 从 SQL 前缀推断操作类型
func (p *OTELPlugin) operationName(db *gorm.DB) string {
	sql := strings.ToUpper(strings.TrimSpace(db.Statement.SQL.String()))
	switch {
	case sql == "":
		return "db.unknown"
	case strings.HasPrefix(sql, "SELECT"):
		return "db.select"
	case strings.HasPrefix(sql, "INSERT"):
		return "db.insert"
	case strings.HasPrefix(sql, "UPDATE"):
		return "db.update"
	case strings.HasPrefix(sql, "DELETE"):
		return "db.delete"
	default:
		return "db.query"
	}
}

func (p *OTELPlugin) dbAttributes(db *gorm.DB) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.DBSystemPostgreSQL,
		attribute.String("service.name", p.config.ServiceName),
	}

	if table := db.Statement.Table; table != "" {
		attrs = append(attrs, attribute.String("db.table", table))
	}

	// 截断长 SQL，参数值不上报
	sql := db.Statement.SQL.String()
	if len(sql) > p.config.MaxSQLLength {
		sql = sql[:p.config.MaxSQLLength] + "..."
	}
	attrs = append(attrs, semconv.DBStatement(sql))

	return attrs
}

func (p *OTELPlugin) recordMetrics(ctx context.Context, db *gorm.DB, duration float64) {
	if dbQueriesTotal == nil || dbQueryDuration == nil {
		return
	}

	status := "success"
	if db.Error != nil {
		status = "error"
	}

	labels := []attribute.KeyValue{
		attribute.String("db.operation", p.operationName(db)),
		attribute.String("db.status", status),
	}

	dbQueriesTotal.Add(ctx, 1, metric.WithAttributes(labels...))
	dbQueryDuration.Record(ctx, duration, metric.WithAttributes(labels...))
}

// WithOTELPlugin 为 GORM 添加 OpenTelemetry 插件
func WithOTELPlugin(db *gorm.DB, config PluginConfig) error {
	return db.Use(NewOTELPlugin(config))
}

// WithDefaultOTELPlugin 使用默认配置添加 OpenTelemetry 插件
func WithDefaultOTELPlugin(db *gorm.DB, serviceName string) error {
	config := DefaultPluginConfig()
	config.ServiceName = serviceName
	return WithOTELPlugin(db, config)
}
