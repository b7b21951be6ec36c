package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"CrewWatch/internal/alert"
	"CrewWatch/internal/dispatch"
	"CrewWatch/internal/model"
	"CrewWatch/internal/repository"
)

// scanShiftRepo 只实现扫描器用到的方法，其余走内嵌接口（调用即 panic）
type scanShiftRepo struct {
	repository.ShiftRepository

	shifts   map[int64]*model.Shift
	listErr  error
	loseRace bool
}

func newScanShiftRepo() *scanShiftRepo {
	return &scanShiftRepo{shifts: make(map[int64]*model.Shift)}
}

func (m *scanShiftRepo) ListOpen(_ context.Context) ([]model.Shift, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Shift
	for _, s := range m.shifts {
		if s.IsOpen() {
			cp := *s
			cp.Alerts = append([]model.ShiftAlert(nil), s.Alerts...)
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *scanShiftRepo) MarkAlertSent(_ context.Context, shiftID int64, threshold int, sentAt time.Time) (bool, error) {
	if m.loseRace {
		return false, nil
	}
	s, ok := m.shifts[shiftID]
	if !ok {
		return false, nil
	}
	row := s.AlertFor(threshold)
	if row == nil || row.Sent {
		return false, nil
	}
	row.Sent = true
	t := sentAt
	row.SentAt = &t
	return true, nil
}

type scanLogRepo struct {
	logs []model.DutyLog
}

func (m *scanLogRepo) CreateBatch(_ context.Context, logs []model.DutyLog) error {
	m.logs = append(m.logs, logs...)
	return nil
}

func (m *scanLogRepo) ListByShift(_ context.Context, shiftID int64) ([]model.DutyLog, error) {
	var result []model.DutyLog
	for _, l := range m.logs {
		if l.ShiftID == shiftID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *scanLogRepo) ListRecent(_ context.Context, limit int) ([]model.DutyLog, error) {
	return m.logs, nil
}

func (m *scanLogRepo) DeleteByShift(_ context.Context, shiftID int64) error {
	return nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func openShift(id int64, signOn time.Time) *model.Shift {
	shift := &model.Shift{
		TrainNumber:    "12301",
		LocoPilotID:    11,
		TrainManagerID: 12,
		SignOnTime:     signOn,
		Status:         model.ShiftStatusInProgress,
		LocoPilot:      &model.Staff{Name: "R. Sharma", Phone: "+919812345678"},
		TrainManager:   &model.Staff{Name: "S. Verma", Phone: "+919876543210"},
	}
	shift.ID = id
	for _, p := range alert.Policies() {
		shift.Alerts = append(shift.Alerts, model.ShiftAlert{
			ShiftID:   id,
			Threshold: p.Threshold,
			AlertType: p.Type,
		})
	}
	return shift
}

type scanEnv struct {
	shifts     *scanShiftRepo
	logs       *scanLogRepo
	dispatcher *dispatch.MockDispatcher
	clock      *testClock
	monitor    *ShiftMonitor
}

func newScanEnv(now time.Time) *scanEnv {
	env := &scanEnv{
		shifts:     newScanShiftRepo(),
		logs:       &scanLogRepo{},
		dispatcher: dispatch.NewMockDispatcher(),
		clock:      &testClock{now: now},
	}
	repos := &repository.Repositories{
		Shift:   env.shifts,
		DutyLog: env.logs,
	}
	env.monitor = NewShiftMonitor(repos, env.dispatcher, env.clock, Options{
		Interval:        time.Minute,
		DispatchTimeout: time.Second,
		DistributedLock: false,
	}, zap.NewNop())
	return env
}

func TestRunOnceCatchUp(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newScanEnv(signOn.Add(9*time.Hour + 30*time.Minute))
	env.shifts.shifts[1] = openShift(1, signOn)

	if err := env.monitor.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	// 9.5 小时应补发 7/8/9 三个阈值，且按升序
	if env.dispatcher.CallCount() != 3 {
		t.Fatalf("dispatch calls = %d, want 3", env.dispatcher.CallCount())
	}
	wantOrder := []int{7, 8, 9}
	for i, call := range env.dispatcher.Calls {
		if call.Threshold != wantOrder[i] {
			t.Errorf("dispatch[%d].Threshold = %d, want %d", i, call.Threshold, wantOrder[i])
		}
	}

	// 投递载荷携带联系人和合法响应码
	call := env.dispatcher.Calls[2]
	if call.AlertType != "9HR" || call.DutyHours != 9.5 {
		t.Errorf("payload = %+v", call)
	}
	if call.PilotContact.Phone != "+919812345678" {
		t.Errorf("pilot contact = %+v", call.PilotContact)
	}
	if len(call.ValidResponses) != 2 {
		t.Errorf("valid responses = %v", call.ValidResponses)
	}

	// 三个阈值置为已发送，10/11/14 保持未发送
	shift := env.shifts.shifts[1]
	for _, th := range []int{7, 8, 9} {
		if row := shift.AlertFor(th); !row.Sent {
			t.Errorf("alert %d not marked sent", th)
		}
	}
	for _, th := range []int{10, 11, 14} {
		if row := shift.AlertFor(th); row.Sent {
			t.Errorf("alert %d marked sent prematurely", th)
		}
	}

	// 每个阈值给司机和列车长各一条审计日志
	if len(env.logs.logs) != 6 {
		t.Errorf("audit logs = %d, want 6", len(env.logs.logs))
	}
}

func TestRunOnceNoDuplicates(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newScanEnv(signOn.Add(8 * time.Hour))
	env.shifts.shifts[1] = openShift(1, signOn)
	ctx := context.Background()

	if err := env.monitor.RunOnce(ctx); err != nil {
		t.Fatalf("first RunOnce() error = %v", err)
	}
	if err := env.monitor.RunOnce(ctx); err != nil {
		t.Fatalf("second RunOnce() error = %v", err)
	}

	// 第二轮不会重发已发送的阈值
	if env.dispatcher.CallCount() != 2 {
		t.Errorf("dispatch calls = %d, want 2 (7HR and 8HR once each)", env.dispatcher.CallCount())
	}
	if len(env.logs.logs) != 4 {
		t.Errorf("audit logs = %d, want 4", len(env.logs.logs))
	}
}

func TestRunOnceBelowFirstThreshold(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newScanEnv(signOn.Add(6*time.Hour + 59*time.Minute))
	env.shifts.shifts[1] = openShift(1, signOn)

	if err := env.monitor.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if env.dispatcher.CallCount() != 0 {
		t.Errorf("dispatch calls = %d, want 0 below the first threshold", env.dispatcher.CallCount())
	}
}

func TestRunOnceDispatchFailureRetriesNextScan(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newScanEnv(signOn.Add(8 * time.Hour))
	env.shifts.shifts[1] = openShift(1, signOn)
	env.dispatcher.FailNext = true
	ctx := context.Background()

	if err := env.monitor.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	// 7HR 投递失败：不置位、不写日志；8HR 正常发出
	shift := env.shifts.shifts[1]
	if shift.AlertFor(7).Sent {
		t.Error("failed dispatch must not mark the alert sent")
	}
	if !shift.AlertFor(8).Sent {
		t.Error("8HR should still be dispatched after 7HR failure")
	}
	if env.dispatcher.CallCount() != 1 {
		t.Errorf("successful dispatches = %d, want 1", env.dispatcher.CallCount())
	}
	if len(env.logs.logs) != 2 {
		t.Errorf("audit logs = %d, want 2 (8HR only)", len(env.logs.logs))
	}

	// 下一轮补发 7HR
	if err := env.monitor.RunOnce(ctx); err != nil {
		t.Fatalf("second RunOnce() error = %v", err)
	}
	if !shift.AlertFor(7).Sent {
		t.Error("7HR not retried on the next scan")
	}
	if env.dispatcher.CallCount() != 2 {
		t.Errorf("successful dispatches = %d, want 2", env.dispatcher.CallCount())
	}
}

func TestRunOnceLostMarkRaceSkipsAudit(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newScanEnv(signOn.Add(7*time.Hour + 30*time.Minute))
	env.shifts.shifts[1] = openShift(1, signOn)
	env.shifts.loseRace = true

	if err := env.monitor.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	// 条件置位输给另一个实例时，审计日志归赢家写
	if env.dispatcher.CallCount() != 1 {
		t.Errorf("dispatch calls = %d, want 1", env.dispatcher.CallCount())
	}
	if len(env.logs.logs) != 0 {
		t.Errorf("audit logs = %d, want 0 when the mark is lost", len(env.logs.logs))
	}
}

func TestRunOnceNoOpenShifts(t *testing.T) {
	env := newScanEnv(time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))

	if err := env.monitor.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if env.dispatcher.CallCount() != 0 {
		t.Errorf("dispatch calls = %d, want 0", env.dispatcher.CallCount())
	}
}

func TestRunOnceListError(t *testing.T) {
	env := newScanEnv(time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))
	env.shifts.listErr = errors.New("database unavailable")

	if err := env.monitor.RunOnce(context.Background()); err == nil {
		t.Error("RunOnce() should surface the list error")
	}
}

func TestRunOnceSingleFlight(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	env := newScanEnv(signOn.Add(8 * time.Hour))
	env.shifts.shifts[1] = openShift(1, signOn)

	// 同进程已有一轮在跑时直接返回，不触发任何投递
	env.monitor.mu.Lock()
	env.monitor.running = true
	env.monitor.mu.Unlock()

	if err := env.monitor.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if env.dispatcher.CallCount() != 0 {
		t.Errorf("dispatch calls = %d, want 0 while another scan is running", env.dispatcher.CallCount())
	}
}
