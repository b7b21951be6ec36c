package cache

import (
	"context"
	"time"

	"CrewWatch/storage/redis"
)

// worker 侧的消息幂等：以 message_id 做 SetNX，拿不到说明别的 worker 已在处理

const (
	alertMsgPrefix = "alert:msg"

	// processingTTL 处理中的占位时长，超时后消息可被重新处理
	processingTTL = 10 * time.Minute
	// processedTTL 已处理标记保留一天，覆盖 RabbitMQ 重投递窗口
	processedTTL = 24 * time.Hour
)

// TryMarkMessageProcessing 返回 false 表示该消息已有人处理
func TryMarkMessageProcessing(ctx context.Context, messageID string) (bool, error) {
	key := redis.Key(alertMsgPrefix, messageID)
	return redis.Client().SetNX(ctx, key, "processing", processingTTL).Result()
}

// MarkMessageProcessed 处理成功后把占位改成完成态并延长 TTL
func MarkMessageProcessed(ctx context.Context, messageID string) error {
	key := redis.Key(alertMsgPrefix, messageID)
	return redis.Client().Set(ctx, key, "done", processedTTL).Err()
}

// UnmarkMessageProcessing 处理失败时释放占位，让重入队的消息还能被处理
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(alertMsgPrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}
