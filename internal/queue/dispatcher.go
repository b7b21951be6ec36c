package queue

import (
	"context"

	"CrewWatch/internal/dispatch"
	"CrewWatch/internal/model"
)

// AlertDispatcher 把告警投到 RabbitMQ，实现 dispatch.Dispatcher
type AlertDispatcher struct{}

func NewAlertDispatcher() *AlertDispatcher {
	return &AlertDispatcher{}
}

func (d *AlertDispatcher) Dispatch(ctx context.Context, payload dispatch.Payload) error {
	return PublishDutyAlert(ctx, DutyAlertMessage{
		ShiftID:        payload.ShiftID,
		Threshold:      payload.Threshold,
		AlertType:      payload.AlertType,
		TrainNumber:    payload.TrainNumber,
		DutyHours:      payload.DutyHours,
		Message:        payload.Message,
		ValidResponses: payload.ValidResponses,
		PilotName:      payload.PilotContact.Name,
		PilotPhone:     payload.PilotContact.Phone,
		ManagerName:    payload.ManagerContact.Name,
		ManagerPhone:   payload.ManagerContact.Phone,
	})
}

// Events 把领域事件投到 events.topic，实现 service.EventPublisher
type Events struct{}

func NewEvents() *Events {
	return &Events{}
}

func (e *Events) PublishShiftCompleted(ctx context.Context, shift *model.Shift) error {
	return PublishShiftCompletedEvent(ctx, shift)
}

func (e *Events) PublishAlertResponse(ctx context.Context, shift *model.Shift, alertType, response string) error {
	return PublishAlertResponseEvent(ctx, shift, alertType, response)
}
