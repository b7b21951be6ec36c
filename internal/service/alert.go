package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"CrewWatch/internal/alert"
	"CrewWatch/internal/model"
	"CrewWatch/internal/model/dto"
	"CrewWatch/internal/repository"
	pkgerrors "CrewWatch/pkg/errors"
	"CrewWatch/pkg/metrics"
)

// AlertService 人工响应告警与告警历史查询
type AlertService interface {
	RecordResponse(ctx context.Context, shiftID int64, req *dto.AlertResponseRequest, respondedBy int64) (*model.Shift, error)
	GetAlertHistory(ctx context.Context, shiftID int64) (*dto.AlertHistoryResponse, error)
}

type alertService struct {
	repos  *repository.Repositories
	tx     repository.Tx
	clock  Clock
	events EventPublisher
	logger *zap.Logger
}

// NewAlertService 创建 AlertService，events 可为 nil
func NewAlertService(repos *repository.Repositories, tx repository.Tx, clock Clock, events EventPublisher, logger *zap.Logger) AlertService {
	return &alertService{
		repos:  repos,
		tx:     tx,
		clock:  clock,
		events: events,
		logger: logger,
	}
}

// RecordResponse 按决策表处置人工响应：写响应码、迁移班次状态、追加两条审计日志
func (s *alertService) RecordResponse(ctx context.Context, shiftID int64, req *dto.AlertResponseRequest, respondedBy int64) (*model.Shift, error) {
	policy, ok := alert.PolicyForType(req.AlertType)
	if !ok {
		return nil, pkgerrors.AlertTypeInvalid
	}
	if !alert.ValidResponse(policy.Threshold, req.Response) {
		return nil, pkgerrors.AlertResponseInvalid
	}

	shift, err := s.repos.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.ShiftNotFound
		}
		return nil, err
	}
	if shift.Status.IsTerminal() {
		return nil, pkgerrors.ShiftTerminal
	}

	row := shift.AlertFor(policy.Threshold)
	if row == nil || !row.Sent {
		return nil, pkgerrors.AlertNotSent
	}

	effect, ok := alert.EffectFor(policy.Threshold, req.Response)
	if !ok {
		return nil, pkgerrors.AlertResponseInvalid
	}

	now := s.clock.Now()
	hours := Round2(Hours(shift.SignOnTime, now))

	fields := map[string]interface{}{
		"updated_by_id": respondedBy,
	}
	if effect.NewStatus != "" {
		fields["status"] = effect.NewStatus
	}
	if effect.SetReliefRequired != nil {
		fields["relief_required"] = *effect.SetReliefRequired
	}
	if effect.SetReliefPlanned != nil {
		fields["relief_planned"] = *effect.SetReliefPlanned
		if *effect.SetReliefPlanned {
			fields["relief_time"] = now
		}
	}
	if effect.Completes() {
		// 响应导致完成时同样冻结值乘小时
		fields["sign_off_time"] = now
		fields["duty_hours"] = hours
	}

	remarks := req.Remarks
	if remarks == "" {
		remarks = fmt.Sprintf("%s response: %s", req.AlertType, req.Response)
	}
	metadata := model.JSONB{
		"alert_type": req.AlertType,
		"response":   req.Response,
		"timestamp":  now.Format(time.RFC3339),
	}

	var logs []model.DutyLog
	for _, staffID := range []int64{shift.LocoPilotID, shift.TrainManagerID} {
		h := hours
		logs = append(logs, model.DutyLog{
			ShiftID:        shift.ID,
			StaffID:        staffID,
			LogType:        effect.LogType,
			LogTime:        now,
			DutyHoursAtLog: &h,
			Remarks:        remarks,
			Metadata:       metadata,
		})
	}

	err = s.tx.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Shift.SetAlertResponse(ctx, shift.ID, policy.Threshold, req.Response); err != nil {
			return err
		}
		if err := tx.Shift.Updates(ctx, shift.ID, fields); err != nil {
			return err
		}
		if err := tx.DutyLog.CreateBatch(ctx, logs); err != nil {
			return err
		}
		if effect.Completes() {
			return tx.Staff.UpdateStatus(ctx, []int64{shift.LocoPilotID, shift.TrainManagerID}, model.StaffStatusAvailable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordAlertResponse(req.AlertType, req.Response)
	s.logger.Info("alert response recorded",
		zap.Int64("shift_id", shift.ID),
		zap.String("alert_type", req.AlertType),
		zap.String("response", req.Response))

	updated, err := s.repos.Shift.GetByID(ctx, shift.ID)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishAlertResponse(ctx, updated, req.AlertType, req.Response); err != nil {
			s.logger.Warn("publish alert response event failed",
				zap.Int64("shift_id", shift.ID), zap.Error(err))
		}
	}
	return updated, nil
}

// GetAlertHistory 班次全部告警行按阈值升序，附当前值乘小时
func (s *alertService) GetAlertHistory(ctx context.Context, shiftID int64) (*dto.AlertHistoryResponse, error) {
	shift, err := s.repos.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.ShiftNotFound
		}
		return nil, err
	}

	var current float64
	if shift.IsOpen() {
		current = Round2(Hours(shift.SignOnTime, s.clock.Now()))
	} else if shift.DutyHours != nil {
		current = *shift.DutyHours
	}

	entries := make([]dto.AlertHistoryEntry, 0, len(shift.Alerts))
	for i := range shift.Alerts {
		row := &shift.Alerts[i]
		entry := dto.AlertHistoryEntry{
			AlertType: row.AlertType,
			Threshold: row.Threshold,
			Sent:      row.Sent,
			SentAt:    row.SentAt,
			Response:  row.Response,
		}
		if p, ok := alert.PolicyFor(row.Threshold); ok {
			entry.Message = p.Message
			entry.RequiresAction = p.RequiresAction
			for _, opt := range p.Options {
				entry.Options = append(entry.Options, dto.AlertOption{Value: opt.Value, Label: opt.Label})
			}
		}
		entries = append(entries, entry)
	}

	return &dto.AlertHistoryResponse{
		ShiftID:          shift.ID,
		TrainNumber:      shift.TrainNumber,
		Status:           string(shift.Status),
		CurrentDutyHours: current,
		Alerts:           entries,
	}, nil
}
