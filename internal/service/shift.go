package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"CrewWatch/internal/alert"
	"CrewWatch/internal/model"
	"CrewWatch/internal/model/dto"
	"CrewWatch/internal/repository"
	pkgerrors "CrewWatch/pkg/errors"
	"CrewWatch/utils"
)

// ShiftService 班次生命周期管理
type ShiftService interface {
	Create(ctx context.Context, req *dto.CreateShiftRequest, createdBy int64) (*model.Shift, error)
	GetDetail(ctx context.Context, id int64) (*dto.ShiftDetailResponse, error)
	List(ctx context.Context, query *dto.ListShiftsQuery) ([]dto.ShiftView, int64, error)
	Update(ctx context.Context, id int64, req *dto.UpdateShiftRequest, updatedBy int64) (*model.Shift, error)
	Complete(ctx context.Context, id int64, req *dto.CompleteShiftRequest, updatedBy int64) (*model.Shift, error)
	Delete(ctx context.Context, id int64) error
	ActiveSummary(ctx context.Context) (*dto.ActiveShiftsSummary, error)
}

type shiftService struct {
	repos  *repository.Repositories
	tx     repository.Tx
	clock  Clock
	events EventPublisher
	logger *zap.Logger
}

// NewShiftService 创建 ShiftService，events 可为 nil
func NewShiftService(repos *repository.Repositories, tx repository.Tx, clock Clock, events EventPublisher, logger *zap.Logger) ShiftService {
	return &shiftService{
		repos:  repos,
		tx:     tx,
		clock:  clock,
		events: events,
		logger: logger,
	}
}

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest, createdBy int64) (*model.Shift, error) {
	loco, err := s.findOrCreateLocomotive(ctx, req.LocomotiveNo)
	if err != nil {
		return nil, err
	}

	pilot, err := s.findOrCreateStaff(ctx, req.LocoPilot, model.StaffTypeLocoPilot)
	if err != nil {
		return nil, err
	}
	manager, err := s.findOrCreateStaff(ctx, req.TrainManager, model.StaffTypeTrainManager)
	if err != nil {
		return nil, err
	}

	// 冲突检查在事务外先做，命中直接报错，不留半成品
	if err := s.checkStaffConflict(ctx, pilot, manager); err != nil {
		return nil, err
	}

	shift := &model.Shift{
		TrainNumber:      req.TrainNumber,
		TrainName:        req.TrainName,
		LocomotiveID:     loco.ID,
		LocomotiveNo:     loco.LocomotiveNo,
		LocoPilotID:      pilot.ID,
		TrainManagerID:   manager.ID,
		TrainArrivalTime: req.TrainArrivalTime,
		SignOnTime:       req.SignOnTime,
		TakeOverTime:     req.TakeOverTime,
		DepartureTime:    req.DepartureTime,
		SignOnStation:    req.SignOnStation,
		Section:          req.Section,
		DutyType:         model.DutyType(req.DutyType),
		Status:           model.ShiftStatusInProgress,
		CreatedByID:      createdBy,
		Alerts:           buildAlertRows(),
	}

	err = s.tx.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Shift.Create(ctx, shift); err != nil {
			return err
		}

		zero := 0.0
		logs := []model.DutyLog{
			signOnLog(shift.ID, pilot.ID, shift.SignOnTime, &zero),
			signOnLog(shift.ID, manager.ID, shift.SignOnTime, &zero),
		}
		if err := tx.DutyLog.CreateBatch(ctx, logs); err != nil {
			return err
		}

		return tx.Staff.UpdateStatus(ctx, []int64{pilot.ID, manager.ID}, model.StaffStatusOnDuty)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shift created",
		zap.Int64("shift_id", shift.ID),
		zap.String("train_number", shift.TrainNumber),
		zap.Time("sign_on_time", shift.SignOnTime))

	return shift, nil
}

func (s *shiftService) GetDetail(ctx context.Context, id int64) (*dto.ShiftDetailResponse, error) {
	shift, err := s.repos.Shift.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.ShiftNotFound
		}
		return nil, err
	}

	logs, err := s.repos.DutyLog.ListByShift(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShiftDetailResponse{
		ShiftView: s.toView(shift),
		DutyLogs:  logs,
	}, nil
}

func (s *shiftService) List(ctx context.Context, query *dto.ListShiftsQuery) ([]dto.ShiftView, int64, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	filter := repository.ShiftFilter{
		Status:      model.ShiftStatus(query.Status),
		TrainNumber: query.TrainNumber,
		StaffID:     query.StaffID,
		From:        query.StartDate,
		To:          query.EndDate,
		Offset:      (page - 1) * limit,
		Limit:       limit,
	}

	shifts, total, err := s.repos.Shift.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	views := make([]dto.ShiftView, 0, len(shifts))
	for i := range shifts {
		views = append(views, s.toView(&shifts[i]))
	}
	return views, total, nil
}

func (s *shiftService) Update(ctx context.Context, id int64, req *dto.UpdateShiftRequest, updatedBy int64) (*model.Shift, error) {
	shift, err := s.repos.Shift.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.ShiftNotFound
		}
		return nil, err
	}
	if shift.Status.IsTerminal() {
		return nil, pkgerrors.ShiftTerminal
	}

	// 提供签退时间即走完成路径，忽略其余运行中字段
	if req.SignOffTime != nil {
		station := shift.SignOffStation
		if req.SignOffStation != nil {
			station = *req.SignOffStation
		}
		return s.completeShift(ctx, shift, *req.SignOffTime, station, updatedBy)
	}

	fields := map[string]interface{}{
		"updated_by_id": updatedBy,
	}
	var logs []model.DutyLog

	if req.TakeOverTime != nil {
		fields["take_over_time"] = *req.TakeOverTime
		hours := Round2(Hours(shift.SignOnTime, *req.TakeOverTime))
		logs = append(logs, model.DutyLog{
			ShiftID:        shift.ID,
			StaffID:        shift.LocoPilotID,
			LogType:        model.DutyLogTakeOver,
			LogTime:        *req.TakeOverTime,
			DutyHoursAtLog: &hours,
			Remarks:        "Train take over",
		})
	}
	if req.DepartureTime != nil {
		fields["departure_time"] = *req.DepartureTime
		hours := Round2(Hours(shift.SignOnTime, *req.DepartureTime))
		logs = append(logs, model.DutyLog{
			ShiftID:        shift.ID,
			StaffID:        shift.LocoPilotID,
			LogType:        model.DutyLogDeparture,
			LogTime:        *req.DepartureTime,
			DutyHoursAtLog: &hours,
			Remarks:        "Train departed",
		})
	}
	if req.Section != nil {
		fields["section"] = *req.Section
	}
	if req.DutyType != nil {
		fields["duty_type"] = *req.DutyType
	}
	if req.ReliefReason != nil {
		fields["relief_reason"] = *req.ReliefReason
	}

	// 调度员手工标记换乘：状态推进并给双方记一条日志
	if req.ReliefPlanned != nil && *req.ReliefPlanned && !shift.ReliefPlanned {
		now := s.clock.Now()
		hours := Round2(Hours(shift.SignOnTime, now))
		fields["relief_planned"] = true
		fields["relief_required"] = true
		fields["relief_time"] = now
		fields["status"] = model.ShiftStatusReliefPlanned

		remarks := "Relief planned for crew"
		if req.ReliefReason != nil && *req.ReliefReason != "" {
			remarks = fmt.Sprintf("Relief planned: %s", *req.ReliefReason)
		}
		for _, staffID := range []int64{shift.LocoPilotID, shift.TrainManagerID} {
			h := hours
			logs = append(logs, model.DutyLog{
				ShiftID:        shift.ID,
				StaffID:        staffID,
				LogType:        model.DutyLogReliefPlanned,
				LogTime:        now,
				DutyHoursAtLog: &h,
				Remarks:        remarks,
			})
		}
	}

	err = s.tx.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Shift.Updates(ctx, shift.ID, fields); err != nil {
			return err
		}
		return tx.DutyLog.CreateBatch(ctx, logs)
	})
	if err != nil {
		return nil, err
	}

	return s.repos.Shift.GetByID(ctx, shift.ID)
}

func (s *shiftService) Complete(ctx context.Context, id int64, req *dto.CompleteShiftRequest, updatedBy int64) (*model.Shift, error) {
	shift, err := s.repos.Shift.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.ShiftNotFound
		}
		return nil, err
	}
	if !shift.IsOpen() {
		return nil, pkgerrors.ShiftTerminal
	}
	return s.completeShift(ctx, shift, req.SignOffTime, req.SignOffStation, updatedBy)
}

// completeShift 终结班次：冻结值乘小时、记 RELEASE 日志、释放乘务员
func (s *shiftService) completeShift(ctx context.Context, shift *model.Shift, signOff time.Time, station string, updatedBy int64) (*model.Shift, error) {
	frozen := Round2(Hours(shift.SignOnTime, signOff))

	fields := map[string]interface{}{
		"status":        model.ShiftStatusCompleted,
		"sign_off_time": signOff,
		"duty_hours":    frozen,
		"updated_by_id": updatedBy,
	}
	if station != "" {
		fields["sign_off_station"] = station
	}

	var logs []model.DutyLog
	for _, staffID := range []int64{shift.LocoPilotID, shift.TrainManagerID} {
		h := frozen
		logs = append(logs, model.DutyLog{
			ShiftID:        shift.ID,
			StaffID:        staffID,
			LogType:        model.DutyLogRelease,
			LogTime:        signOff,
			DutyHoursAtLog: &h,
			Remarks:        "Shift completed and crew released",
		})
	}

	err := s.tx.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Shift.Updates(ctx, shift.ID, fields); err != nil {
			return err
		}
		if err := tx.DutyLog.CreateBatch(ctx, logs); err != nil {
			return err
		}
		return tx.Staff.UpdateStatus(ctx, []int64{shift.LocoPilotID, shift.TrainManagerID}, model.StaffStatusAvailable)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shift completed",
		zap.Int64("shift_id", shift.ID),
		zap.String("train_number", shift.TrainNumber),
		zap.Float64("duty_hours", frozen))

	updated, err := s.repos.Shift.GetByID(ctx, shift.ID)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishShiftCompleted(ctx, updated); err != nil {
			s.logger.Warn("publish shift completed event failed",
				zap.Int64("shift_id", shift.ID), zap.Error(err))
		}
	}
	return updated, nil
}

func (s *shiftService) Delete(ctx context.Context, id int64) error {
	shift, err := s.repos.Shift.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.ShiftNotFound
		}
		return err
	}
	if shift.Status == model.ShiftStatusInProgress {
		return pkgerrors.ShiftInProgress
	}

	wasOpen := shift.IsOpen()

	err = s.tx.Transaction(ctx, func(tx *repository.Repositories) error {
		// 日志先删，外键才允许删班次
		if err := tx.DutyLog.DeleteByShift(ctx, shift.ID); err != nil {
			return err
		}
		if err := tx.Shift.Delete(ctx, shift.ID); err != nil {
			return err
		}
		if wasOpen {
			return tx.Staff.UpdateStatus(ctx, []int64{shift.LocoPilotID, shift.TrainManagerID}, model.StaffStatusAvailable)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("shift deleted",
		zap.Int64("shift_id", shift.ID),
		zap.String("train_number", shift.TrainNumber))
	return nil
}

func (s *shiftService) ActiveSummary(ctx context.Context) (*dto.ActiveShiftsSummary, error) {
	shifts, err := s.repos.Shift.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]dto.ShiftView, 0, len(shifts))
	for i := range shifts {
		views = append(views, s.toView(&shifts[i]))
	}
	return &dto.ActiveShiftsSummary{
		TotalActive: len(views),
		Shifts:      views,
	}, nil
}

// toView 开放班次带上实时小时数与告警级别
func (s *shiftService) toView(shift *model.Shift) dto.ShiftView {
	view := dto.ShiftView{Shift: *shift}
	if shift.IsOpen() {
		hours := Round2(Hours(shift.SignOnTime, s.clock.Now()))
		view.CurrentDutyHours = &hours
		view.AlertLevel = alertLevel(hours)
	}
	return view
}

// alertLevel 值乘小时 → 告警级别
func alertLevel(hours float64) string {
	switch {
	case hours >= 14:
		return "critical"
	case hours >= 11:
		return "danger"
	case hours >= 9:
		return "high"
	case hours >= 8:
		return "warning"
	case hours >= 7:
		return "info"
	default:
		return "normal"
	}
}

func (s *shiftService) findOrCreateLocomotive(ctx context.Context, locomotiveNo string) (*model.Locomotive, error) {
	loco, err := s.repos.Locomotive.GetByNo(ctx, locomotiveNo)
	if err == nil {
		return loco, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	loco = &model.Locomotive{
		LocomotiveNo: locomotiveNo,
		Status:       model.LocomotiveStatusActive,
		AutoCreated:  true,
	}
	if err := s.repos.Locomotive.Create(ctx, loco); err != nil {
		return nil, err
	}
	return loco, nil
}

func (s *shiftService) findOrCreateStaff(ctx context.Context, input dto.StaffInput, staffType model.StaffType) (*model.Staff, error) {
	// 电话用于告警短信，坏号码在创建时就挡掉
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		return nil, pkgerrors.InvalidPhone
	}

	staff, err := s.repos.Staff.GetByEmployeeID(ctx, input.EmployeeID)
	if err == nil {
		// 已有档案时顺手刷新姓名与电话
		changed := false
		if input.Name != "" && staff.Name != input.Name {
			staff.Name = input.Name
			changed = true
		}
		if input.Phone != "" && staff.Phone != input.Phone {
			staff.Phone = input.Phone
			changed = true
		}
		if changed {
			if err := s.repos.Staff.Update(ctx, staff); err != nil {
				return nil, err
			}
		}
		return staff, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	staff = &model.Staff{
		EmployeeID:  input.EmployeeID,
		Name:        input.Name,
		StaffType:   staffType,
		Phone:       input.Phone,
		Status:      model.StaffStatusAvailable,
		AutoCreated: true,
	}
	if err := s.repos.Staff.Create(ctx, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// checkStaffConflict 乘务员已有未签退的班次时拒绝创建，报错点名占用者
func (s *shiftService) checkStaffConflict(ctx context.Context, pilot, manager *model.Staff) error {
	open, err := s.repos.Shift.FindOpenByStaff(ctx, []int64{pilot.ID, manager.ID})
	if err != nil {
		return err
	}
	if len(open) == 0 {
		return nil
	}

	var busy []string
	for i := range open {
		if open[i].LocoPilotID == pilot.ID || open[i].TrainManagerID == pilot.ID {
			busy = append(busy, "Loco Pilot "+pilot.Name)
			break
		}
	}
	for i := range open {
		if open[i].LocoPilotID == manager.ID || open[i].TrainManagerID == manager.ID {
			busy = append(busy, "Train Manager "+manager.Name)
			break
		}
	}
	return pkgerrors.StaffAlreadyOnDuty.WithDetail(
		"Staff already on duty: " + strings.Join(busy, ", "))
}

// buildAlertRows 按阈值表生成未发送的告警行，随班次一起落库
func buildAlertRows() []model.ShiftAlert {
	policies := alert.Policies()
	rows := make([]model.ShiftAlert, 0, len(policies))
	for _, p := range policies {
		rows = append(rows, model.ShiftAlert{
			Threshold: p.Threshold,
			AlertType: p.Type,
			Sent:      false,
		})
	}
	return rows
}

func signOnLog(shiftID, staffID int64, at time.Time, hours *float64) model.DutyLog {
	return model.DutyLog{
		ShiftID:        shiftID,
		StaffID:        staffID,
		LogType:        model.DutyLogSignOn,
		LogTime:        at,
		DutyHoursAtLog: hours,
		Remarks:        "Shift started",
	}
}
