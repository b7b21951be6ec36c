package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"CrewWatch/internal/handler"
	"CrewWatch/internal/middleware"
)

// Handlers 路由依赖的全部 handler
type Handlers struct {
	Auth       *handler.AuthHandler
	Shift      *handler.ShiftHandler
	Alert      *handler.AlertHandler
	Staff      *handler.StaffHandler
	Locomotive *handler.LocomotiveHandler
	Dashboard  *handler.DashboardHandler
	Monitor    *handler.MonitorHandler
}

func Register(h *server.Hertz, handlers *Handlers) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	h.GET("/healthz", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := h.Group("/v1")

	// 认证相关路由
	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/token/refresh", handlers.Auth.Refresh)
		auth.POST("/logout", middleware.AuthMiddleware(), handlers.Auth.Logout)
	}

	// 班次路由
	shifts := v1.Group("/shifts")
	shifts.Use(middleware.AuthMiddleware())
	shifts.Use(middleware.GeneralRateLimitMiddleware())
	{
		shifts.GET("", handlers.Shift.List)
		shifts.POST("", handlers.Shift.Create)
		shifts.GET("/active/summary", handlers.Shift.ActiveSummary)
		shifts.GET("/:id", handlers.Shift.Get)
		shifts.PATCH("/:id", handlers.Shift.Update)
		shifts.DELETE("/:id", handlers.Shift.Delete)
		shifts.POST("/:id/complete", handlers.Shift.Complete)

		// 告警响应与历史挂在班次下
		shifts.GET("/:id/alerts", handlers.Alert.History)
		shifts.POST("/:id/alerts/response", handlers.Alert.SubmitResponse)
	}

	// 乘务员路由
	staff := v1.Group("/staff")
	staff.Use(middleware.AuthMiddleware())
	{
		staff.GET("", handlers.Staff.List)
		staff.POST("", handlers.Staff.Create)
		staff.GET("/:id", handlers.Staff.Get)
	}

	// 机车路由
	locomotives := v1.Group("/locomotives")
	locomotives.Use(middleware.AuthMiddleware())
	{
		locomotives.GET("", handlers.Locomotive.List)
	}

	// 看板路由
	dashboard := v1.Group("/dashboard")
	dashboard.Use(middleware.AuthMiddleware())
	{
		dashboard.GET("/stats", handlers.Dashboard.Stats)
		dashboard.GET("/pending-alerts", handlers.Dashboard.PendingAlerts)
		dashboard.GET("/recent-logs", handlers.Dashboard.RecentLogs)
	}

	// 运维路由
	monitor := v1.Group("/monitor")
	monitor.Use(middleware.AuthMiddleware())
	{
		monitor.POST("/scan", handlers.Monitor.RunScan)
	}
}
