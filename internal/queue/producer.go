package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"CrewWatch/internal/model"
	"CrewWatch/pkg/logger"
	"CrewWatch/pkg/snowflake"
	"CrewWatch/storage/mq"
)

// PublishDutyAlert 发布值乘告警消息，routing key 形如 alerts.duty.8HR
func PublishDutyAlert(ctx context.Context, msg DutyAlertMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("shift_id", msg.ShiftID),
				zap.String("alert_type", msg.AlertType),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("duty_alert_%d", id)
	}
	if msg.ScheduledAt == "" {
		msg.ScheduledAt = time.Now().Format(time.RFC3339)
	}

	routingKey := fmt.Sprintf("alerts.duty.%s", msg.AlertType)

	err := mq.PublishMessage(ctx, mq.AlertExchange, routingKey, msg)
	if err != nil {
		logger.Logger.Error("Failed to publish duty alert",
			zap.String("message_id", msg.MessageID),
			zap.Int64("shift_id", msg.ShiftID),
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published duty alert",
		zap.String("message_id", msg.MessageID),
		zap.Int64("shift_id", msg.ShiftID),
		zap.String("train_number", msg.TrainNumber),
		zap.String("routing_key", routingKey),
	)

	return nil
}

// PublishShiftCompletedEvent 发布班次完成事件
func PublishShiftCompletedEvent(ctx context.Context, shift *model.Shift) error {
	event := EventMessage{
		EventKey:   "shift.completed",
		EventType:  "shift_completed",
		OccurredAt: time.Now().Format(time.RFC3339),
		Payload: map[string]interface{}{
			"shift_id":     shift.ID,
			"train_number": shift.TrainNumber,
			"duty_hours":   shift.DutyHours,
		},
	}

	err := mq.PublishMessage(ctx, mq.EventExchange, "shift.completed", event)
	if err != nil {
		logger.Logger.Error("Failed to publish shift completed event",
			zap.Int64("shift_id", shift.ID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// PublishAlertResponseEvent 发布人工响应事件
func PublishAlertResponseEvent(ctx context.Context, shift *model.Shift, alertType, response string) error {
	event := EventMessage{
		EventKey:   "alert.response",
		EventType:  "alert_response",
		OccurredAt: time.Now().Format(time.RFC3339),
		Payload: map[string]interface{}{
			"shift_id":     shift.ID,
			"train_number": shift.TrainNumber,
			"alert_type":   alertType,
			"response":     response,
		},
	}

	err := mq.PublishMessage(ctx, mq.EventExchange, "alert.response", event)
	if err != nil {
		logger.Logger.Error("Failed to publish alert response event",
			zap.Int64("shift_id", shift.ID),
			zap.String("alert_type", alertType),
			zap.Error(err),
		)
		return err
	}

	return nil
}
