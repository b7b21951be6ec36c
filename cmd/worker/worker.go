package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"CrewWatch/config"
	"CrewWatch/internal/queue"
	"CrewWatch/pkg/logger"
	"CrewWatch/pkg/metrics"
	"CrewWatch/pkg/otel"
	"CrewWatch/pkg/sms"
	"CrewWatch/pkg/snowflake"
	"CrewWatch/storage"
)

// worker 进程消费告警队列，把值守告警下发到乘务员手机。
func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	otelShutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
		ServiceName:    config.Cfg.ServiceName + "-worker",
		ServiceVersion: "1.0.0",
		Environment:    config.Cfg.Environment,
		OTLPEndpoint:   config.Cfg.OTLPEndpoint,
		SampleRatio:    config.Cfg.OTelSampler,
	})
	if err != nil {
		logger.Logger.Warn("Failed to initialize OpenTelemetry, continuing without it", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()

		if err := metrics.InitMetrics(); err != nil {
			logger.Logger.Warn("Failed to initialize metrics", zap.Error(err))
		}
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// 短信初始化失败不阻塞启动，消费时会按条失败重试
	if err := sms.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize SMS client, deliveries will fail until it recovers", zap.Error(err))
	}

	logger.Logger.Info("Alert worker starting",
		zap.String("environment", config.Cfg.Environment),
	)

	if err := queue.StartDutyAlertConsumer(ctx); err != nil && err != context.Canceled {
		logger.Logger.Fatal("Alert consumer stopped unexpectedly", zap.Error(err))
	}

	logger.Logger.Info("Alert worker shutting down gracefully")
}
