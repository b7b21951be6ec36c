package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"CrewWatch/internal/model"
	"CrewWatch/internal/model/dto"
	pkgerrors "CrewWatch/pkg/errors"
)

// markSent 直接把指定阈值的告警行置为已发送，模拟扫描器走过一遍
func markSent(t *testing.T, env *testEnv, shiftID int64, thresholds ...int) {
	t.Helper()
	for _, th := range thresholds {
		won, err := env.shifts.MarkAlertSent(context.Background(), shiftID, th, env.clock.now)
		if err != nil || !won {
			t.Fatalf("failed to mark alert %d sent: won=%v err=%v", th, won, err)
		}
	}
}

func setupShiftWithAlerts(t *testing.T, env *testEnv, thresholds ...int) *model.Shift {
	t.Helper()
	signOn := env.clock.now
	shiftSvc := NewShiftService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	shift, err := shiftSvc.Create(context.Background(), createShiftRequest("12301", "LP001", "TM001", signOn), 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	markSent(t, env, shift.ID, thresholds...)
	return shift
}

func TestRecordResponseCrewRelieved(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(signOn)
	shift := setupShiftWithAlerts(t, env, 7, 8, 9)
	env.clock.now = signOn.Add(9*time.Hour + 30*time.Minute)

	svc := NewAlertService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	ctx := context.Background()

	updated, err := svc.RecordResponse(ctx, shift.ID, &dto.AlertResponseRequest{
		AlertType: "9HR",
		Response:  "CREW_RELIEVED",
	}, 1)
	if err != nil {
		t.Fatalf("RecordResponse() error = %v", err)
	}

	// CREW_RELIEVED 终结班次并冻结值乘小时
	if updated.Status != model.ShiftStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", updated.Status)
	}
	if updated.SignOffTime == nil {
		t.Error("sign off time not set")
	}
	if updated.DutyHours == nil || *updated.DutyHours != 9.5 {
		t.Errorf("frozen duty hours = %v, want 9.5", updated.DutyHours)
	}

	row := updated.AlertFor(9)
	if row == nil || row.Response == nil || *row.Response != "CREW_RELIEVED" {
		t.Errorf("alert row response = %v, want CREW_RELIEVED", row)
	}

	// 双方各一条 CREW_RELIEVED 审计日志
	logs := env.logs.byType(model.DutyLogCrewRelieved)
	if len(logs) != 2 {
		t.Fatalf("CREW_RELIEVED logs = %d, want 2", len(logs))
	}
	if logs[0].Metadata["response"] != "CREW_RELIEVED" {
		t.Errorf("log metadata = %v", logs[0].Metadata)
	}

	pilot, _ := env.staff.GetByEmployeeID(ctx, "LP001")
	if pilot.Status != model.StaffStatusAvailable {
		t.Errorf("pilot status = %s, want AVAILABLE", pilot.Status)
	}

	if env.events.responses != 1 {
		t.Errorf("alert response events = %d, want 1", env.events.responses)
	}
}

func TestRecordResponsePlanRelief(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(signOn)
	shift := setupShiftWithAlerts(t, env, 7, 8)
	env.clock.now = signOn.Add(8*time.Hour + 10*time.Minute)

	svc := NewAlertService(env.repos, env.tx, env.clock, env.events, zap.NewNop())

	updated, err := svc.RecordResponse(context.Background(), shift.ID, &dto.AlertResponseRequest{
		AlertType: "8HR",
		Response:  "PLAN_RELIEF",
	}, 1)
	if err != nil {
		t.Fatalf("RecordResponse() error = %v", err)
	}

	if updated.Status != model.ShiftStatusReliefPlanned {
		t.Errorf("status = %s, want RELIEF_PLANNED", updated.Status)
	}
	if !updated.ReliefRequired || !updated.ReliefPlanned {
		t.Error("relief flags not set")
	}
	if updated.ReliefTime == nil {
		t.Error("relief time not set")
	}
	// 班次仍然开放，后续阈值继续监控
	if !updated.IsOpen() {
		t.Error("shift must stay open after PLAN_RELIEF")
	}
}

func TestRecordResponseRejections(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(signOn)
	shift := setupShiftWithAlerts(t, env, 7, 8)
	env.clock.now = signOn.Add(8*time.Hour + 10*time.Minute)

	svc := NewAlertService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name    string
		shiftID int64
		req     dto.AlertResponseRequest
		want    pkgerrors.Definition
	}{
		{"unknown alert type", shift.ID, dto.AlertResponseRequest{AlertType: "12HR", Response: "PLAN_RELIEF"}, pkgerrors.AlertTypeInvalid},
		{"response from another threshold", shift.ID, dto.AlertResponseRequest{AlertType: "8HR", Response: "CREW_RELIEVED"}, pkgerrors.AlertResponseInvalid},
		{"7HR accepts no response", shift.ID, dto.AlertResponseRequest{AlertType: "7HR", Response: "PLAN_RELIEF"}, pkgerrors.AlertResponseInvalid},
		{"alert not yet sent", shift.ID, dto.AlertResponseRequest{AlertType: "9HR", Response: "CREW_RELIEVED"}, pkgerrors.AlertNotSent},
		{"missing shift", shift.ID + 100, dto.AlertResponseRequest{AlertType: "8HR", Response: "PLAN_RELIEF"}, pkgerrors.ShiftNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.RecordResponse(ctx, tt.shiftID, &tt.req, 1); err != tt.want {
				t.Errorf("RecordResponse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRecordResponseTerminalShift(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(signOn)
	shift := setupShiftWithAlerts(t, env, 7, 8, 9)
	env.clock.now = signOn.Add(9*time.Hour + 30*time.Minute)

	svc := NewAlertService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.RecordResponse(ctx, shift.ID, &dto.AlertResponseRequest{
		AlertType: "9HR", Response: "CREW_RELIEVED",
	}, 1); err != nil {
		t.Fatalf("RecordResponse() error = %v", err)
	}

	// 已完成的班次拒绝后续响应
	if _, err := svc.RecordResponse(ctx, shift.ID, &dto.AlertResponseRequest{
		AlertType: "8HR", Response: "PLAN_RELIEF",
	}, 1); err != pkgerrors.ShiftTerminal {
		t.Errorf("RecordResponse() on completed shift error = %v, want SHIFT_TERMINAL", err)
	}
}

func TestGetAlertHistory(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(signOn)
	shift := setupShiftWithAlerts(t, env, 7, 8)
	env.clock.now = signOn.Add(8*time.Hour + 30*time.Minute)

	svc := NewAlertService(env.repos, env.tx, env.clock, env.events, zap.NewNop())

	history, err := svc.GetAlertHistory(context.Background(), shift.ID)
	if err != nil {
		t.Fatalf("GetAlertHistory() error = %v", err)
	}

	if history.CurrentDutyHours != 8.5 {
		t.Errorf("current duty hours = %v, want 8.5", history.CurrentDutyHours)
	}
	if len(history.Alerts) != 6 {
		t.Fatalf("history entries = %d, want 6", len(history.Alerts))
	}

	var sent int
	for _, entry := range history.Alerts {
		if entry.Sent {
			sent++
		}
	}
	if sent != 2 {
		t.Errorf("sent entries = %d, want 2", sent)
	}

	// 8HR 带响应选项，7HR 不需要响应
	for _, entry := range history.Alerts {
		switch entry.Threshold {
		case 7:
			if entry.RequiresAction || len(entry.Options) != 0 {
				t.Error("7HR entry must not require action")
			}
		case 8:
			if !entry.RequiresAction || len(entry.Options) != 2 {
				t.Errorf("8HR entry options = %d, want 2", len(entry.Options))
			}
		}
	}
}
