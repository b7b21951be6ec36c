package cache

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"CrewWatch/internal/model/dto"
	"CrewWatch/storage/redis"
)

// 看板聚合缓存，TTL 短，过期后由下一次请求重建

const (
	statsKey = "dashboard:stats"
	statsTTL = 60 * time.Second
)

// StatsStore 实现 service.StatsCache
type StatsStore struct{}

func NewStatsStore() *StatsStore {
	return &StatsStore{}
}

func (s *StatsStore) GetStats(ctx context.Context) (*dto.DashboardStats, bool, error) {
	key := redis.Key(statsKey)

	raw, err := redis.Client().Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var stats dto.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		// 缓存内容坏了当 miss 处理
		return nil, false, nil
	}
	return &stats, true, nil
}

func (s *StatsStore) SetStats(ctx context.Context, stats *dto.DashboardStats) error {
	key := redis.Key(statsKey)

	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return redis.Client().Set(ctx, key, raw, statsTTL).Err()
}
