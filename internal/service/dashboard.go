package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"CrewWatch/internal/model"
	"CrewWatch/internal/model/dto"
	"CrewWatch/internal/repository"
)

// StatsCache 看板聚合缓存，miss 时 ok=false
type StatsCache interface {
	GetStats(ctx context.Context) (*dto.DashboardStats, bool, error)
	SetStats(ctx context.Context, stats *dto.DashboardStats) error
}

// DashboardService 运营看板
type DashboardService interface {
	GetStats(ctx context.Context) (*dto.DashboardStats, error)
	PendingAlerts(ctx context.Context) ([]dto.PendingAlertView, error)
	RecentLogs(ctx context.Context, limit int) ([]model.DutyLog, error)
}

type dashboardService struct {
	repos  *repository.Repositories
	cache  StatsCache
	clock  Clock
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService，cache 可为 nil
func NewDashboardService(repos *repository.Repositories, cache StatsCache, clock Clock, logger *zap.Logger) DashboardService {
	return &dashboardService{
		repos:  repos,
		cache:  cache,
		clock:  clock,
		logger: logger,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (*dto.DashboardStats, error) {
	if s.cache != nil {
		if stats, ok, err := s.cache.GetStats(ctx); err != nil {
			s.logger.Warn("dashboard stats cache read failed", zap.Error(err))
		} else if ok {
			return stats, nil
		}
	}

	stats, err := s.buildStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, stats); err != nil {
			s.logger.Warn("dashboard stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *dashboardService) buildStats(ctx context.Context) (*dto.DashboardStats, error) {
	now := s.clock.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// 周从周一起算
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	startOfWeek := startOfDay.AddDate(0, 0, -(weekday - 1))
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	shiftCounts, err := s.repos.Shift.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	signOnToday, err := s.repos.Shift.CountSignOnSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	signOnWeek, err := s.repos.Shift.CountSignOnSince(ctx, startOfWeek)
	if err != nil {
		return nil, err
	}
	signOnMonth, err := s.repos.Shift.CountSignOnSince(ctx, startOfMonth)
	if err != nil {
		return nil, err
	}
	staffCounts, err := s.repos.Staff.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	alertsToday, err := s.repos.Shift.CountAlertsSentSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	pending, err := s.PendingAlerts(ctx)
	if err != nil {
		return nil, err
	}
	avg, max, err := s.repos.Shift.CompletedDutyHourStats(ctx)
	if err != nil {
		return nil, err
	}
	sections, err := s.repos.Shift.TopSections(ctx, 5)
	if err != nil {
		return nil, err
	}
	dutyTypes, err := s.repos.Shift.CountByDutyType(ctx)
	if err != nil {
		return nil, err
	}

	shiftStats := dto.ShiftStats{
		SignOnToday: signOnToday,
		SignOnWeek:  signOnWeek,
		SignOnMonth: signOnMonth,
		ByStatus:    make(map[string]int64, len(shiftCounts)),
	}
	for status, count := range shiftCounts {
		shiftStats.ByStatus[string(status)] = count
		shiftStats.Total += count
		switch status {
		case model.ShiftStatusCompleted:
			shiftStats.Completed += count
		case model.ShiftStatusScheduled, model.ShiftStatusInProgress, model.ShiftStatusReliefPlanned:
			shiftStats.Active += count
		}
	}

	staffStats := dto.StaffStats{
		ByStatus: make(map[string]int64, len(staffCounts)),
	}
	for status, count := range staffCounts {
		staffStats.ByStatus[string(status)] = count
		staffStats.Total += count
		switch status {
		case model.StaffStatusOnDuty:
			staffStats.OnDuty = count
		case model.StaffStatusAvailable:
			staffStats.Available = count
		}
	}

	topSections := make([]dto.SectionStat, 0, len(sections))
	for _, sc := range sections {
		topSections = append(topSections, dto.SectionStat{Section: sc.Section, Count: sc.Count})
	}

	dutyTypeSplit := make(map[string]int64, len(dutyTypes))
	for dt, count := range dutyTypes {
		dutyTypeSplit[string(dt)] = count
	}

	// 11 小时起进入强制换乘区间，单独计数
	var critical int64
	for i := range pending {
		if pending[i].Threshold >= 11 {
			critical++
		}
	}

	return &dto.DashboardStats{
		Shifts: shiftStats,
		Staff:  staffStats,
		Alerts: dto.AlertStats{
			SentToday:       alertsToday,
			PendingResponse: int64(len(pending)),
			Critical:        critical,
		},
		DutyHours:     dto.DutyHourStats{Average: Round2(avg), Max: Round2(max)},
		TopSections:   topSections,
		DutyTypeSplit: dutyTypeSplit,
	}, nil
}

// PendingAlerts 已发送、需要响应但还没有响应的告警，按班次展开
func (s *dashboardService) PendingAlerts(ctx context.Context) ([]dto.PendingAlertView, error) {
	shifts, err := s.repos.Shift.ListPendingAlerts(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var views []dto.PendingAlertView
	for i := range shifts {
		shift := &shifts[i]
		hours := Round2(Hours(shift.SignOnTime, now))
		for j := range shift.Alerts {
			row := &shift.Alerts[j]
			if !row.Sent || row.Response != nil || row.Threshold <= 7 {
				continue
			}
			views = append(views, dto.PendingAlertView{
				ShiftID:          shift.ID,
				TrainNumber:      shift.TrainNumber,
				AlertType:        row.AlertType,
				Threshold:        row.Threshold,
				CurrentDutyHours: hours,
			})
		}
	}
	return views, nil
}

func (s *dashboardService) RecentLogs(ctx context.Context, limit int) ([]model.DutyLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repos.DutyLog.ListRecent(ctx, limit)
}
