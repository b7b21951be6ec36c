package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"CrewWatch/config"
	"CrewWatch/pkg/logger"
)

const (
	// AlertExchange 值乘告警的 topic exchange
	AlertExchange = "alerts.topic"
	// AlertQueue worker 消费的告警队列
	AlertQueue = "alerts.duty"
	// AlertRoutingPattern 队列绑定模式，routing key 形如 alerts.duty.8HR
	AlertRoutingPattern = "alerts.duty.*"

	// EventExchange 班次生命周期事件的 topic exchange，供外部订阅
	EventExchange = "events.topic"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		url := config.Cfg.GetRabbitMQURL()

		conn, connErr = amqp.Dial(url)
		if connErr != nil {
			logger.Logger.Error("Failed to connect to RabbitMQ", zap.Error(connErr))
			return
		}

		connErr = declareTopology()
		if connErr != nil {
			logger.Logger.Error("Failed to declare RabbitMQ topology", zap.Error(connErr))
			return
		}

		logger.Logger.Info("RabbitMQ initialized successfully")
	})

	return connErr
}

// Connection 返回共享连接，publisher 和 consumer 各自开 channel
func Connection() *amqp.Connection {
	return conn
}

// declareTopology 声明 exchange / queue / binding，声明是幂等的
func declareTopology() error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		AlertExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare alert exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(
		EventExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare event exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		AlertQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare alert queue: %w", err)
	}

	if err := ch.QueueBind(
		AlertQueue,
		AlertRoutingPattern,
		AlertExchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to bind alert queue: %w", err)
	}

	return nil
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
