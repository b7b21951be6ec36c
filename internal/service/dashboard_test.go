package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"CrewWatch/internal/model/dto"
)

// memStatsCache 进程内 StatsCache，测试用
type memStatsCache struct {
	stats *dto.DashboardStats
	gets  int
	sets  int
}

func (c *memStatsCache) GetStats(_ context.Context) (*dto.DashboardStats, bool, error) {
	c.gets++
	if c.stats == nil {
		return nil, false, nil
	}
	return c.stats, true, nil
}

func (c *memStatsCache) SetStats(_ context.Context, stats *dto.DashboardStats) error {
	c.sets++
	c.stats = stats
	return nil
}

func TestGetStats(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(signOn)
	shiftSvc := NewShiftService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	ctx := context.Background()

	if _, err := shiftSvc.Create(ctx, createShiftRequest("12301", "LP001", "TM001", signOn), 1); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := shiftSvc.Create(ctx, createShiftRequest("12302", "LP002", "TM002", signOn), 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := shiftSvc.Complete(ctx, second.ID, &dto.CompleteShiftRequest{
		SignOffTime: signOn.Add(8 * time.Hour),
	}, 1); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	cache := &memStatsCache{}
	env.clock.now = signOn.Add(10 * time.Hour)
	svc := NewDashboardService(env.repos, cache, env.clock, zap.NewNop())

	stats, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}

	if stats.Shifts.Total != 2 || stats.Shifts.Active != 1 || stats.Shifts.Completed != 1 {
		t.Errorf("shift stats = %+v", stats.Shifts)
	}
	if stats.Shifts.SignOnToday != 2 || stats.Shifts.SignOnWeek != 2 || stats.Shifts.SignOnMonth != 2 {
		t.Errorf("sign-on counts = %+v", stats.Shifts)
	}
	if stats.Alerts.PendingResponse != 0 || stats.Alerts.Critical != 0 {
		t.Errorf("alert stats = %+v", stats.Alerts)
	}
	if stats.Staff.OnDuty != 2 || stats.Staff.Available != 2 {
		t.Errorf("staff stats = %+v", stats.Staff)
	}
	if stats.DutyHours.Average != 8 || stats.DutyHours.Max != 8 {
		t.Errorf("duty hour stats = %+v", stats.DutyHours)
	}
	if cache.sets != 1 {
		t.Errorf("cache writes = %d, want 1", cache.sets)
	}

	// 第二次命中缓存，不再聚合
	if _, err := svc.GetStats(ctx); err != nil {
		t.Fatalf("cached GetStats() error = %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("cache writes after hit = %d, want 1", cache.sets)
	}
}

func TestPendingAlerts(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(signOn)
	shift := setupShiftWithAlerts(t, env, 7, 8, 9)
	env.clock.now = signOn.Add(9*time.Hour + 30*time.Minute)

	svc := NewDashboardService(env.repos, nil, env.clock, zap.NewNop())
	ctx := context.Background()

	pending, err := svc.PendingAlerts(ctx)
	if err != nil {
		t.Fatalf("PendingAlerts() error = %v", err)
	}

	// 7HR 不需要响应，8HR 和 9HR 待响应
	if len(pending) != 2 {
		t.Fatalf("pending alerts = %d, want 2", len(pending))
	}
	for _, p := range pending {
		if p.ShiftID != shift.ID || p.Threshold <= 7 {
			t.Errorf("pending entry = %+v", p)
		}
		if p.CurrentDutyHours != 9.5 {
			t.Errorf("current duty hours = %v, want 9.5", p.CurrentDutyHours)
		}
	}

	// 响应后从待办中消失
	alertSvc := NewAlertService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	if _, err := alertSvc.RecordResponse(ctx, shift.ID, &dto.AlertResponseRequest{
		AlertType: "8HR", Response: "RELIEF_NOT_REQUIRED",
	}, 1); err != nil {
		t.Fatalf("RecordResponse() error = %v", err)
	}

	pending, err = svc.PendingAlerts(ctx)
	if err != nil {
		t.Fatalf("PendingAlerts() error = %v", err)
	}
	if len(pending) != 1 || pending[0].Threshold != 9 {
		t.Errorf("pending after response = %+v", pending)
	}
}
