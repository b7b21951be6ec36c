package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"CrewWatch/config"
	"CrewWatch/internal/cache"
	pkgerrors "CrewWatch/pkg/errors"
	"CrewWatch/pkg/logger"
	"CrewWatch/pkg/metrics"
	"CrewWatch/pkg/sms"
	"CrewWatch/storage/mq"
)

// StartDutyAlertConsumer 启动告警消费者：对司机和列车长各发一条短信。
// 任一接收人发送失败则整条消息 Nack 重入队，靠 Redis 幂等标记防止重发。
func StartDutyAlertConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg DutyAlertMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("malformed duty alert message: %v", err)}
		}

		ok, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 幂等检查失败时继续处理，宁可重发不可漏发
		} else if !ok {
			return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("message %s already processed", msg.MessageID)}
		}

		metrics.AddQueueActiveTask()
		defer metrics.SubtractQueueActiveTask()

		logger.Logger.Info("Processing duty alert",
			zap.String("message_id", msg.MessageID),
			zap.Int64("shift_id", msg.ShiftID),
			zap.String("alert_type", msg.AlertType),
			zap.String("train_number", msg.TrainNumber),
		)

		if err := deliverAlert(ctx, &msg); err != nil {
			if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
				logger.Logger.Warn("Failed to unmark message processing",
					zap.String("message_id", msg.MessageID),
					zap.Error(unmarkErr),
				)
			}
			return err
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.AlertQueue,
		ConsumerTag:   "duty_alert_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// deliverAlert 给两位乘务员发短信，没有电话的接收人跳过
func deliverAlert(ctx context.Context, msg *DutyAlertMessage) error {
	param, err := json.Marshal(map[string]string{
		"train": msg.TrainNumber,
		"alert": msg.AlertType,
		"hours": strconv.FormatFloat(msg.DutyHours, 'f', 2, 64),
	})
	if err != nil {
		return fmt.Errorf("failed to build sms template param: %w", err)
	}

	recipients := []struct {
		role  string
		phone string
	}{
		{"loco_pilot", msg.PilotPhone},
		{"train_manager", msg.ManagerPhone},
	}

	for _, r := range recipients {
		if r.phone == "" {
			logger.Logger.Warn("Alert recipient has no phone, skipping",
				zap.String("message_id", msg.MessageID),
				zap.String("role", r.role),
			)
			continue
		}

		start := time.Now()
		err := sms.SendSingle(ctx, r.phone, config.Cfg.SMSSignName, config.Cfg.SMSTemplateCode, string(param))
		duration := time.Since(start).Seconds()

		if err != nil {
			metrics.RecordAlertDelivery(msg.AlertType, "sms", "error", duration)
			return fmt.Errorf("failed to send %s alert sms to %s: %w", msg.AlertType, r.role, err)
		}
		metrics.RecordAlertDelivery(msg.AlertType, "sms", "success", duration)
	}

	return nil
}
