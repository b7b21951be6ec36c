package cache

import (
	"context"
	"time"

	"CrewWatch/storage/redis"
)

// SetNX 实现的分布式锁，多实例部署时保证同一轮扫描只有一个 monitor 在跑

const (
	lockPrefix = "lock"
)

func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullkey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

func Unlock(ctx context.Context, key string) error {
	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullkey).Err()
}
