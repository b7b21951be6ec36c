package schedule

// 值乘监控扫描器：周期性扫描开放班次，按阈值表补发告警。
// 发送判定依赖 shift_alerts 行上的条件更新，多实例并发扫描也只会发一次。

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"CrewWatch/internal/alert"
	"CrewWatch/internal/cache"
	"CrewWatch/internal/dispatch"
	"CrewWatch/internal/model"
	"CrewWatch/internal/repository"
	"CrewWatch/internal/service"
	"CrewWatch/pkg/metrics"
)

const monitorLockKey = "shift_monitor"

// Options 扫描器参数
type Options struct {
	Interval        time.Duration
	DispatchTimeout time.Duration
	LockTTL         time.Duration
	// DistributedLock 多实例部署时用 Redis 锁保证一轮只有一个实例在扫
	DistributedLock bool
}

// ShiftMonitor 阈值扫描器
type ShiftMonitor struct {
	repos      *repository.Repositories
	dispatcher dispatch.Dispatcher
	clock      service.Clock
	opts       Options
	logger     *zap.Logger

	running bool
	mu      sync.Mutex
}

// NewShiftMonitor 创建扫描器
func NewShiftMonitor(repos *repository.Repositories, dispatcher dispatch.Dispatcher, clock service.Clock, opts Options, logger *zap.Logger) *ShiftMonitor {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = 10 * time.Second
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = opts.Interval
	}

	return &ShiftMonitor{
		repos:      repos,
		dispatcher: dispatcher,
		clock:      clock,
		opts:       opts,
		logger:     logger,
	}
}

// Start 阻塞运行：启动即扫一轮，之后按周期扫，ctx 取消后返回
func (m *ShiftMonitor) Start(ctx context.Context) error {
	m.logger.Info("Shift monitor started",
		zap.Duration("interval", m.opts.Interval),
		zap.Duration("dispatch_timeout", m.opts.DispatchTimeout),
	)

	if err := m.RunOnce(ctx); err != nil {
		m.logger.Error("Initial scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Shift monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := m.RunOnce(ctx); err != nil {
				m.logger.Error("Scan failed", zap.Error(err))
			}
		}
	}
}

// RunOnce 执行一轮扫描。进程内已有一轮在跑时直接返回；
// 单个班次的失败只记日志，不影响其余班次。
func (m *ShiftMonitor) RunOnce(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		m.logger.Info("Scan already running, skipping")
		return nil
	}
	m.running = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	if m.opts.DistributedLock {
		ok, err := cache.TryLock(ctx, monitorLockKey, m.opts.LockTTL)
		if err != nil {
			m.logger.Warn("Failed to acquire monitor lock, proceeding anyway", zap.Error(err))
			// 锁服务不可用时降级为裸扫，重复发送由条件更新兜底
		} else if !ok {
			m.logger.Info("Another instance holds the monitor lock, skipping")
			return nil
		} else {
			defer func() {
				if err := cache.Unlock(ctx, monitorLockKey); err != nil {
					m.logger.Warn("Failed to release monitor lock", zap.Error(err))
				}
			}()
		}
	}

	start := m.clock.Now()

	shifts, err := m.repos.Shift.ListOpen(ctx)
	if err != nil {
		metrics.RecordScanRun("error", 0, time.Since(start).Seconds())
		return fmt.Errorf("failed to list open shifts: %w", err)
	}

	for i := range shifts {
		m.scanShift(ctx, &shifts[i], start)
	}

	metrics.RecordScanRun("success", len(shifts), time.Since(start).Seconds())
	m.logger.Info("Scan completed",
		zap.Int("open_shifts", len(shifts)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// scanShift 对单个班次按阈值升序补发告警。
// 错过扫描周期后一轮可能补发多个阈值（catch-up），顺序保持升序。
func (m *ShiftMonitor) scanShift(ctx context.Context, shift *model.Shift, now time.Time) {
	hours := service.Hours(shift.SignOnTime, now)

	for _, policy := range alert.Policies() {
		if hours < float64(policy.Threshold) {
			break
		}

		row := shift.AlertFor(policy.Threshold)
		if row == nil || row.Sent {
			continue
		}

		m.dispatchThreshold(ctx, shift, policy, hours, now)
	}
}

func (m *ShiftMonitor) dispatchThreshold(ctx context.Context, shift *model.Shift, policy alert.Policy, hours float64, now time.Time) {
	payload := buildPayload(shift, policy, hours)

	dctx, cancel := context.WithTimeout(ctx, m.opts.DispatchTimeout)
	start := time.Now()
	err := m.dispatcher.Dispatch(dctx, payload)
	cancel()
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.RecordAlertDispatched(policy.Type, "error", duration)
		m.logger.Error("Alert dispatch failed, will retry next scan",
			zap.Int64("shift_id", shift.ID),
			zap.String("train_number", shift.TrainNumber),
			zap.String("alert_type", policy.Type),
			zap.Error(err),
		)
		return
	}
	metrics.RecordAlertDispatched(policy.Type, "success", duration)

	won, err := m.repos.Shift.MarkAlertSent(ctx, shift.ID, policy.Threshold, now)
	if err != nil {
		m.logger.Error("Failed to mark alert sent",
			zap.Int64("shift_id", shift.ID),
			zap.String("alert_type", policy.Type),
			zap.Error(err),
		)
		return
	}
	if !won {
		// 另一个实例抢先置位，审计日志归它写
		m.logger.Info("Alert already marked sent by another scanner",
			zap.Int64("shift_id", shift.ID),
			zap.String("alert_type", policy.Type),
		)
		return
	}

	snapshot := service.Round2(hours)
	metadata := model.JSONB{
		"train_number": shift.TrainNumber,
		"alert_type":   policy.Type,
		"timestamp":    now.Format(time.RFC3339),
	}
	remarks := fmt.Sprintf("%s duty hour alert triggered", policy.Type)

	var logs []model.DutyLog
	for _, staffID := range []int64{shift.LocoPilotID, shift.TrainManagerID} {
		h := snapshot
		logs = append(logs, model.DutyLog{
			ShiftID:        shift.ID,
			StaffID:        staffID,
			LogType:        policy.LogType,
			LogTime:        now,
			DutyHoursAtLog: &h,
			Remarks:        remarks,
			Metadata:       metadata,
		})
	}
	if err := m.repos.DutyLog.CreateBatch(ctx, logs); err != nil {
		m.logger.Error("Failed to write alert audit logs",
			zap.Int64("shift_id", shift.ID),
			zap.String("alert_type", policy.Type),
			zap.Error(err),
		)
	}

	m.logger.Info("Duty hour alert sent",
		zap.Int64("shift_id", shift.ID),
		zap.String("train_number", shift.TrainNumber),
		zap.String("alert_type", policy.Type),
		zap.Float64("duty_hours", snapshot),
	)
}

func buildPayload(shift *model.Shift, policy alert.Policy, hours float64) dispatch.Payload {
	responses := make([]string, 0, len(policy.Options))
	for _, opt := range policy.Options {
		responses = append(responses, opt.Value)
	}

	payload := dispatch.Payload{
		ShiftID:        shift.ID,
		Threshold:      policy.Threshold,
		AlertType:      policy.Type,
		TrainNumber:    shift.TrainNumber,
		DutyHours:      service.Round2(hours),
		Message:        policy.Message,
		ValidResponses: responses,
	}
	if shift.LocoPilot != nil {
		payload.PilotContact = dispatch.Contact{Name: shift.LocoPilot.Name, Phone: shift.LocoPilot.Phone}
	}
	if shift.TrainManager != nil {
		payload.ManagerContact = dispatch.Contact{Name: shift.TrainManager.Name, Phone: shift.TrainManager.Phone}
	}
	return payload
}
