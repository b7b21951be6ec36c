package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"

	"CrewWatch/config"
	"CrewWatch/internal/cache"
	"CrewWatch/internal/handler"
	"CrewWatch/internal/middleware"
	"CrewWatch/internal/queue"
	"CrewWatch/internal/repository"
	"CrewWatch/internal/router"
	"CrewWatch/internal/schedule"
	"CrewWatch/internal/service"
	"CrewWatch/pkg/logger"
	"CrewWatch/pkg/metrics"
	"CrewWatch/pkg/otel"
	"CrewWatch/pkg/snowflake"
	"CrewWatch/pkg/token"
	"CrewWatch/storage"
	"CrewWatch/storage/database"
)

func main() {
	// 日志部分
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

	// OpenTelemetry 先于存储层，GORM/Redis/MQ 的埋点依赖全局 provider
	otelShutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
		ServiceName:    config.Cfg.ServiceName,
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

	// 初始化存储层，记得关闭外部连接
	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := token.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize token package", zap.Error(err))
	} // token 在中间件前初始化，middleware 依赖 token

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	// 组装依赖
	repoManager := repository.New(database.DB())
	repos := &repoManager.Repositories
	clock := service.NewRealClock()
	events := queue.NewEvents()

	shiftSvc := service.NewShiftService(repos, repoManager, clock, events, logger.Logger)
	alertSvc := service.NewAlertService(repos, repoManager, clock, events, logger.Logger)
	staffSvc := service.NewStaffService(repos, logger.Logger)
	locoSvc := service.NewLocomotiveService(repos, logger.Logger)
	dashboardSvc := service.NewDashboardService(repos, cache.NewStatsStore(), clock, logger.Logger)
	authSvc := service.NewAuthService(repos, cache.NewTokenStore(), clock, logger.Logger)

	// server 内不起扫描循环，只暴露手动触发入口，周期扫描由 monitor 进程负责
	monitor := schedule.NewShiftMonitor(repos, queue.NewAlertDispatcher(), clock, schedule.Options{
		Interval:        config.Cfg.MonitorInterval,
		DispatchTimeout: config.Cfg.MonitorDispatchTimeout,
		LockTTL:         config.Cfg.MonitorLockTTL,
		DistributedLock: true,
	}, logger.Logger)

	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Shift:      handler.NewShiftHandler(shiftSvc),
		Alert:      handler.NewAlertHandler(alertSvc),
		Staff:      handler.NewStaffHandler(staffSvc),
		Locomotive: handler.NewLocomotiveHandler(locoSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		Monitor:    handler.NewMonitorHandler(monitor),
	}

	logger.Logger.Info("Server starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("port", config.Cfg.ServerPort),
		zap.String("environment", config.Cfg.Environment),
	)

	addr := net.JoinHostPort(config.Cfg.ServerHost, config.Cfg.ServerPort)
	h := server.Default(server.WithHostPorts(addr))

	router.Register(h, handlers)

	// 优雅关闭：在单独的 goroutine 中监听关闭信号并调用 Shutdown
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
