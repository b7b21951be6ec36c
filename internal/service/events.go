package service

import (
	"context"

	"CrewWatch/internal/model"
)

// EventPublisher 向消息总线发布领域事件，失败只记录日志不阻断主流程。
// 传 nil 表示不发事件（单测或单机部署）。
type EventPublisher interface {
	PublishShiftCompleted(ctx context.Context, shift *model.Shift) error
	PublishAlertResponse(ctx context.Context, shift *model.Shift, alertType, response string) error
}
