package redis

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	redisCommandsTotal   metric.Int64Counter
	redisCommandDuration metric.Float64Histogram
	redisCacheHits       metric.Int64Counter
	redisCacheMisses     metric.Int64Counter
)

// InitRedisMetrics 初始化 Redis 指标
func InitRedisMetrics(meter metric.Meter) error {
	var err error

	redisCommandsTotal, err = meter.Int64Counter(
		"redis.commands.total",
		metric.WithDescription("Total number of Redis commands"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return err
	}

	redisCommandDuration, err = meter.Float64Histogram(
		"redis.command.duration",
		metric.WithDescription("Redis command duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return err
	}

	redisCacheHits, err = meter.Int64Counter(
		"redis.cache.hits",
		metric.WithDescription("Number of cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	redisCacheMisses, err = meter.Int64Counter(
		"redis.cache.misses",
		metric.WithDescription("Number of cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// TracingHook Redis 追踪 Hook
type TracingHook struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
}

// NewTracingHook 创建追踪 Hook
func NewTracingHook(serviceName string, db int) *TracingHook {
	return &TracingHook{
		tracer: otel.Tracer(serviceName + ".redis"),
		attrs: []attribute.KeyValue{
			semconv.DBSystemRedis,
			semconv.DBRedisDBIndex(db),
			attribute.String("service.name", serviceName),
		},
	}
}

// DialHook 实现 redis.Hook 接口
func (th *TracingHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

// ProcessHook 实现 redis.Hook 接口
func (th *TracingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		ctx, span := th.tracer.Start(ctx, cmd.Name(),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(th.attrs...),
		)
		defer span.End()

		span.SetAttributes(
			semconv.DBOperation(cmd.Name()),
		)

		// 只上报键名，不上报值
		if keys := extractKeys(cmd.Args()); len(keys) > 0 {
			span.SetAttributes(attribute.StringSlice("redis.keys", keys))
		}

		startTime := time.Now()
		err := next(ctx, cmd)
		duration := time.Since(startTime).Seconds()

		status := "success"
		if err != nil {
			if err != redis.Nil {
				status = "error"
				span.SetStatus(codes.Error, err.Error())
				span.RecordError(err)
			} else {
				status = "not_found"
				span.SetStatus(codes.Ok, "Key not found")
			}
		} else {
			span.SetStatus(codes.Ok, "Success")
		}

		recordCommand(ctx, cmd.Name(), status, duration)

		// 记录缓存命中/未命中
		if redisCacheHits != nil && (cmd.Name() == "get" || cmd.Name() == "mget") {
			if err == redis.Nil {
				redisCacheMisses.Add(ctx, 1)
			} else if err == nil {
				redisCacheHits.Add(ctx, 1)
			}
		}

		return err
	}
}

// ProcessPipelineHook 实现 redis.Hook 接口
func (th *TracingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		ctx, span := th.tracer.Start(ctx, "redis.pipeline",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(th.attrs...),
		)
		defer span.End()

		span.SetAttributes(attribute.Int("redis.pipeline.count", len(cmds)))

		startTime := time.Now()
		err := next(ctx, cmds)
		duration := time.Since(startTime).Seconds()

		successCount := 0
		for _, cmd := range cmds {
			if cmd.Err() == nil {
				successCount++
			}
		}

		span.SetAttributes(
			attribute.Int("redis.pipeline.success_count", successCount),
			attribute.Int("redis.pipeline.error_count", len(cmds)-successCount),
		)

		status := "success"
		if err != nil {
			status = "error"
			span.SetStatus(codes.Error, err.Error())
		}

		recordCommand(ctx, "pipeline", status, duration)

		return err
	}
}

func recordCommand(ctx context.Context, command, status string, duration float64) {
	if redisCommandsTotal == nil || redisCommandDuration == nil {
		return
	}

	labels := []attribute.KeyValue{
		attribute.String("redis.command", command),
		attribute.String("redis.status", status),
	}

	redisCommandsTotal.Add(ctx, 1, metric.WithAttributes(labels...))
	redisCommandDuration.Record(ctx, duration, metric.WithAttributes(labels...))
}

// extractKeys 提取 Redis 命令中的键名（避免记录敏感值）
func extractKeys(args []interface{}) []string {
	if len(args) < 2 {
		return nil
	}

	keys := make([]string, 0, len(args)-1)

	// 第一个参数是命令名，跳过
	for i := 1; i < len(args) && len(keys) < 5; i++ {
		if key, ok := args[i].(string); ok {
			keys = append(keys, sanitizeKey(key))
		}
	}

	return keys
}

// sanitizeKey 清理键名，隐藏敏感部分
func sanitizeKey(key string) string {
	if strings.Contains(key, "token") ||
		strings.Contains(key, "password") ||
		strings.Contains(key, "secret") ||
		strings.Contains(key, "session") {
		parts := strings.Split(key, ":")
		if len(parts) > 1 {
			return parts[0] + ":***"
		}
		return "***"
	}

	if len(key) > 100 {
		return key[:100] + "..."
	}

	return key
}

// InstrumentRedisClient 为 Redis 客户端添加 OpenTelemetry 支持
func InstrumentRedisClient(client redis.Cmdable, serviceName string, db int) redis.Cmdable {
	hook := NewTracingHook(serviceName, db)
	if cli, ok := client.(*redis.Client); ok {
		cli.AddHook(hook)
		return cli
	}
	return client
}
