package mq

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	mqMessagesTotal   metric.Int64Counter
	mqMessageDuration metric.Float64Histogram
	mqPublishErrors   metric.Int64Counter
	mqConsumeErrors   metric.Int64Counter
)

// InitMQMetrics 初始化 RabbitMQ 指标
func InitMQMetrics(meter metric.Meter) error {
	var err error

	mqMessagesTotal, err = meter.Int64Counter(
		"mq.messages.total",
		metric.WithDescription("Total number of RabbitMQ messages"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return err
	}

	mqMessageDuration, err = meter.Float64Histogram(
		"mq.message.duration",
		metric.WithDescription("RabbitMQ message processing duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return err
	}

	mqPublishErrors, err = meter.Int64Counter(
		"mq.publish.errors",
		metric.WithDescription("Number of RabbitMQ publish errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	mqConsumeErrors, err = meter.Int64Counter(
		"mq.consume.errors",
		metric.WithDescription("Number of RabbitMQ consume errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// InstrumentedChannel 包装 amqp.Channel 以添加 OpenTelemetry 支持
type InstrumentedChannel struct {
	ch          *amqp.Channel
	serviceName string
	propagators propagation.TextMapPropagator
	tracer      trace.Tracer
}

// NewInstrumentedChannel 创建带有 OpenTelemetry 支持的 Channel
func NewInstrumentedChannel(ch *amqp.Channel, serviceName string) *InstrumentedChannel {
	return &InstrumentedChannel{
		ch:          ch,
		serviceName: serviceName,
		propagators: otel.GetTextMapPropagator(),
		tracer:      otel.Tracer(serviceName + ".rabbitmq"),
	}
}

// PublishWithContext 发布消息并注入追踪上下文
func (ic *InstrumentedChannel) PublishWithContext(
	ctx context.Context,
	exchange, routingKey string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	startTime := time.Now()

	spanName := "rabbitmq.publish"
	if exchange != "" {
		spanName = "rabbitmq.publish." + exchange
	}

	ctx, span := ic.tracer.Start(ctx, spanName, trace.WithAttributes(
		semconv.MessagingSystem("rabbitmq"),
		attribute.String("messaging.destination.name", exchange),
		attribute.String("messaging.rabbitmq.routing_key", routingKey),
		attribute.String("service.name", ic.serviceName),
	))
	defer span.End()

	// 注入追踪上下文到消息头
	headers := make(amqp.Table)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	ic.propagators.Inject(ctx, &MessageHeaderCarrier{Headers: headers})
	msg.Headers = headers

	err := ic.ch.PublishWithContext(ctx, exchange, routingKey, mandatory, immediate, msg)
	duration := time.Since(startTime).Seconds()

	status := "success"
	if err != nil {
		status = "error"
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		if mqPublishErrors != nil {
			mqPublishErrors.Add(ctx, 1)
		}
	} else {
		span.SetStatus(codes.Ok, "Message published successfully")
	}

	recordMessage(ctx, "publish", exchange, routingKey, status, duration)

	return err
}

// Consume 消费消息，为每条消息补一个接收 Span
func (ic *InstrumentedChannel) Consume(
	queue, consumer string,
	autoAck, exclusive, noLocal, noWait bool,
	args amqp.Table,
) (<-chan amqp.Delivery, error) {
	msgs, err := ic.ch.Consume(queue, consumer, autoAck, exclusive, noLocal, noWait, args)
	if err != nil {
		if mqConsumeErrors != nil {
			mqConsumeErrors.Add(context.Background(), 1)
		}
		return nil, err
	}

	wrappedMsgs := make(chan amqp.Delivery)
	go func() {
		defer close(wrappedMsgs)
		for msg := range msgs {
			ic.recordDelivery(queue, msg)
			wrappedMsgs <- msg
		}
	}()

	return wrappedMsgs, nil
}

func (ic *InstrumentedChannel) recordDelivery(queue string, msg amqp.Delivery) {
	// 提取上游注入的追踪上下文
	msgCtx := ic.propagators.Extract(context.Background(), &MessageHeaderCarrier{Headers: msg.Headers})

	_, span := ic.tracer.Start(msgCtx, "rabbitmq.message.receive", trace.WithAttributes(
		semconv.MessagingSystem("rabbitmq"),
		attribute.String("messaging.rabbitmq.exchange", msg.Exchange),
		attribute.String("messaging.rabbitmq.queue", queue),
		semconv.MessagingMessageID(msg.MessageId),
		attribute.String("service.name", ic.serviceName),
	))
	span.End()

	recordMessage(msgCtx, "consume", msg.Exchange, msg.RoutingKey, "received", 0)
}

func recordMessage(ctx context.Context, operation, exchange, routingKey, status string, duration float64) {
	if mqMessagesTotal == nil || mqMessageDuration == nil {
		return
	}

	labels := []attribute.KeyValue{
		semconv.MessagingSystem("rabbitmq"),
		attribute.String("messaging.operation", operation),
		attribute.String("messaging.rabbitmq.exchange", exchange),
		attribute.String("messaging.rabbitmq.routing_key", routingKey),
		attribute.String("messaging.status", status),
	}

	mqMessagesTotal.Add(ctx, 1, metric.WithAttributes(labels...))
	mqMessageDuration.Record(ctx, duration, metric.WithAttributes(labels...))
}

// Channel 返回原始的 amqp.Channel
func (ic *InstrumentedChannel) Channel() *amqp.Channel {
	return ic.ch
}

// MessageHeaderCarrier 实现 propagation.TextMapCarrier 接口
type MessageHeaderCarrier struct {
	Headers amqp.Table
}

func (m *MessageHeaderCarrier) Get(key string) string {
	if val, ok := m.Headers[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func (m *MessageHeaderCarrier) Set(key, value string) {
	if m.Headers == nil {
		m.Headers = make(amqp.Table)
	}
	m.Headers[key] = value
}

func (m *MessageHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(m.Headers))
	for k := range m.Headers {
		keys = append(keys, k)
	}
	return keys
}
