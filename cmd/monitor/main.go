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
	"CrewWatch/internal/repository"
	"CrewWatch/internal/schedule"
	"CrewWatch/internal/service"
	"CrewWatch/pkg/logger"
	"CrewWatch/pkg/metrics"
	"CrewWatch/pkg/otel"
	"CrewWatch/pkg/snowflake"
	"CrewWatch/storage"
	"CrewWatch/storage/database"
)

// monitor 进程只负责周期扫描在途班次并投递告警消息，
// 告警的实际下发由 worker 进程消费队列完成。
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
		ServiceName:    config.Cfg.ServiceName + "-monitor",
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

	repoManager := repository.New(database.DB())

	monitor := schedule.NewShiftMonitor(
		&repoManager.Repositories,
		queue.NewAlertDispatcher(),
		service.NewRealClock(),
		schedule.Options{
			Interval:        config.Cfg.MonitorInterval,
			DispatchTimeout: config.Cfg.MonitorDispatchTimeout,
			LockTTL:         config.Cfg.MonitorLockTTL,
			DistributedLock: true,
		},
		logger.Logger,
	)

	logger.Logger.Info("Shift monitor starting",
		zap.Duration("interval", config.Cfg.MonitorInterval),
		zap.String("environment", config.Cfg.Environment),
	)

	if err := monitor.Start(ctx); err != nil && err != context.Canceled {
		logger.Logger.Fatal("Shift monitor stopped unexpectedly", zap.Error(err))
	}

	logger.Logger.Info("Shift monitor shutting down gracefully")
}
