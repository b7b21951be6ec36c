package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"CrewWatch/config"
	"CrewWatch/pkg/errors"
	"CrewWatch/pkg/logger"
	"CrewWatch/pkg/response"
)

// RecoverMiddleware 兜底 panic，记日志并返回 500
func RecoverMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}) {
	stack := debug.Stack()

	logger.Logger.Error("Panic recovered",
		zap.Any("panic", err),
		zap.String("method", string(c.Method())),
		zap.String("path", string(c.Path())),
		zap.String("client_ip", c.ClientIP()),
		zap.ByteString("stack", stack),
	)

	// panic 也要进 trace
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetStatus(codes.Error, "panic")
		span.RecordError(fmt.Errorf("panic: %v", err))
	}

	errDef := errors.Definition{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "Internal server error, please try again later",
	}
	if !config.Cfg.IsProduction() {
		errDef.Message = fmt.Sprintf("Internal error: %v", err)
	}

	c.Abort()
	c.SetStatusCode(consts.StatusInternalServerError)
	response.ErrorWithDetails(ctx, c, errDef, map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
