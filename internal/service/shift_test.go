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

func createShiftRequest(trainNumber, pilotEmpID, managerEmpID string, signOn time.Time) *dto.CreateShiftRequest {
	return &dto.CreateShiftRequest{
		TrainNumber:      trainNumber,
		TrainName:        "Rajdhani Express",
		LocomotiveNo:     "WAP7-30501",
		LocoPilot:        dto.StaffInput{EmployeeID: pilotEmpID, Name: "R. Sharma", Phone: "+919812345678"},
		TrainManager:     dto.StaffInput{EmployeeID: managerEmpID, Name: "S. Verma", Phone: "+919876543210"},
		TrainArrivalTime: signOn.Add(-30 * time.Minute),
		SignOnTime:       signOn,
		SignOnStation:    "NDLS",
		Section:          "NDLS-CNB",
		DutyType:         "SP",
	}
}

func TestCreateShift(t *testing.T) {
	now := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	svc := NewShiftService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	ctx := context.Background()

	shift, err := svc.Create(ctx, createShiftRequest("12301", "LP001", "TM001", now), 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if shift.Status != model.ShiftStatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", shift.Status)
	}

	// 六个阈值各一行，全部未发送
	if len(shift.Alerts) != 6 {
		t.Fatalf("alert rows = %d, want 6", len(shift.Alerts))
	}
	wantThresholds := []int{7, 8, 9, 10, 11, 14}
	for i, row := range shift.Alerts {
		if row.Threshold != wantThresholds[i] {
			t.Errorf("alert[%d].Threshold = %d, want %d", i, row.Threshold, wantThresholds[i])
		}
		if row.Sent {
			t.Errorf("alert[%d] created as sent", i)
		}
	}

	// 司机和列车长各一条 SIGN_ON 日志
	signOnLogs := env.logs.byType(model.DutyLogSignOn)
	if len(signOnLogs) != 2 {
		t.Fatalf("SIGN_ON logs = %d, want 2", len(signOnLogs))
	}
	for _, l := range signOnLogs {
		if l.DutyHoursAtLog == nil || *l.DutyHoursAtLog != 0 {
			t.Errorf("SIGN_ON log hours = %v, want 0", l.DutyHoursAtLog)
		}
	}

	// 乘务员自动建档并置为 ON_DUTY
	pilot, err := env.staff.GetByEmployeeID(ctx, "LP001")
	if err != nil {
		t.Fatalf("pilot not created: %v", err)
	}
	if pilot.Status != model.StaffStatusOnDuty {
		t.Errorf("pilot status = %s, want ON_DUTY", pilot.Status)
	}
	if !pilot.AutoCreated {
		t.Error("pilot should be flagged auto-created")
	}
}

func TestCreateShiftStaffConflict(t *testing.T) {
	now := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	svc := NewShiftService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, createShiftRequest("12301", "LP001", "TM001", now), 1); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	// 同一名司机不能再开第二个班次
	_, err := svc.Create(ctx, createShiftRequest("12302", "LP001", "TM002", now.Add(time.Hour)), 1)
	if err == nil {
		t.Fatal("Create() with busy pilot should fail")
	}
	def, ok := err.(pkgerrors.Definition)
	if !ok || def.Code != pkgerrors.StaffAlreadyOnDuty.Code {
		t.Errorf("error = %v, want STAFF_ALREADY_ON_DUTY", err)
	}

	if len(env.shifts.shifts) != 1 {
		t.Errorf("shift count = %d, conflicting create must not persist", len(env.shifts.shifts))
	}
}

func TestCompleteShiftFreezesHours(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(signOn)
	svc := NewShiftService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	ctx := context.Background()

	shift, err := svc.Create(ctx, createShiftRequest("12301", "LP001", "TM001", signOn), 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	signOff := signOn.Add(9*time.Hour + 15*time.Minute)
	completed, err := svc.Complete(ctx, shift.ID, &dto.CompleteShiftRequest{
		SignOffTime:    signOff,
		SignOffStation: "CNB",
	}, 1)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if completed.Status != model.ShiftStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", completed.Status)
	}
	if completed.DutyHours == nil || *completed.DutyHours != 9.25 {
		t.Errorf("frozen duty hours = %v, want 9.25", completed.DutyHours)
	}
	if completed.SignOffTime == nil || !completed.SignOffTime.Equal(signOff) {
		t.Errorf("sign off time = %v, want %v", completed.SignOffTime, signOff)
	}

	releaseLogs := env.logs.byType(model.DutyLogRelease)
	if len(releaseLogs) != 2 {
		t.Fatalf("RELEASE logs = %d, want 2", len(releaseLogs))
	}

	pilot, _ := env.staff.GetByEmployeeID(ctx, "LP001")
	if pilot.Status != model.StaffStatusAvailable {
		t.Errorf("pilot status after completion = %s, want AVAILABLE", pilot.Status)
	}

	if env.events.completed != 1 {
		t.Errorf("shift completed events = %d, want 1", env.events.completed)
	}

	// 完成后再次完成被拒绝
	if _, err := svc.Complete(ctx, shift.ID, &dto.CompleteShiftRequest{SignOffTime: signOff}, 1); err != pkgerrors.ShiftTerminal {
		t.Errorf("second Complete() error = %v, want SHIFT_TERMINAL", err)
	}
}

func TestUpdateShiftSignOffCompletes(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(signOn)
	svc := NewShiftService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	ctx := context.Background()

	shift, err := svc.Create(ctx, createShiftRequest("12301", "LP001", "TM001", signOn), 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	signOff := signOn.Add(8 * time.Hour)
	updated, err := svc.Update(ctx, shift.ID, &dto.UpdateShiftRequest{SignOffTime: &signOff}, 1)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Status != model.ShiftStatusCompleted {
		t.Errorf("status = %s, sign_off_time in update must complete the shift", updated.Status)
	}
}

func TestUpdateShiftReliefPlanned(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(signOn.Add(8 * time.Hour))
	svc := NewShiftService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	ctx := context.Background()

	shift, err := svc.Create(ctx, createShiftRequest("12301", "LP001", "TM001", signOn), 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	planned := true
	reason := "Pilot fatigue reported"
	updated, err := svc.Update(ctx, shift.ID, &dto.UpdateShiftRequest{
		ReliefPlanned: &planned,
		ReliefReason:  &reason,
	}, 1)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Status != model.ShiftStatusReliefPlanned {
		t.Errorf("status = %s, want RELIEF_PLANNED", updated.Status)
	}
	if !updated.ReliefPlanned || !updated.ReliefRequired {
		t.Error("relief flags not set")
	}
	if updated.ReliefTime == nil {
		t.Error("relief time not set")
	}

	reliefLogs := env.logs.byType(model.DutyLogReliefPlanned)
	if len(reliefLogs) != 2 {
		t.Fatalf("RELIEF_PLANNED logs = %d, want 2", len(reliefLogs))
	}
	if reliefLogs[0].Remarks != "Relief planned: Pilot fatigue reported" {
		t.Errorf("remarks = %q", reliefLogs[0].Remarks)
	}
}

func TestDeleteShift(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(signOn)
	svc := NewShiftService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	ctx := context.Background()

	shift, err := svc.Create(ctx, createShiftRequest("12301", "LP001", "TM001", signOn), 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 进行中的班次不允许删除
	if err := svc.Delete(ctx, shift.ID); err != pkgerrors.ShiftInProgress {
		t.Errorf("Delete() in-progress error = %v, want SHIFT_IN_PROGRESS", err)
	}

	// 完成后可以删除，审计日志一并清掉
	signOff := signOn.Add(8 * time.Hour)
	if _, err := svc.Complete(ctx, shift.ID, &dto.CompleteShiftRequest{SignOffTime: signOff}, 1); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if err := svc.Delete(ctx, shift.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(env.shifts.shifts) != 0 {
		t.Error("shift not deleted")
	}
	if logs, _ := env.logs.ListByShift(ctx, shift.ID); len(logs) != 0 {
		t.Errorf("duty logs remain after delete: %d", len(logs))
	}

	if err := svc.Delete(ctx, shift.ID); err != pkgerrors.ShiftNotFound {
		t.Errorf("Delete() missing error = %v, want SHIFT_NOT_FOUND", err)
	}
}

func TestActiveSummaryAlertLevels(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newTestEnv(signOn)
	svc := NewShiftService(env.repos, env.tx, env.clock, env.events, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, createShiftRequest("12301", "LP001", "TM001", signOn), 1); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 9.5 小时后应落在 high 级别
	env.clock.now = signOn.Add(9*time.Hour + 30*time.Minute)
	summary, err := svc.ActiveSummary(ctx)
	if err != nil {
		t.Fatalf("ActiveSummary() error = %v", err)
	}
	if summary.TotalActive != 1 {
		t.Fatalf("total active = %d, want 1", summary.TotalActive)
	}
	view := summary.Shifts[0]
	if view.CurrentDutyHours == nil || *view.CurrentDutyHours != 9.5 {
		t.Errorf("current duty hours = %v, want 9.5", view.CurrentDutyHours)
	}
	if view.AlertLevel != "high" {
		t.Errorf("alert level = %s, want high", view.AlertLevel)
	}
}
