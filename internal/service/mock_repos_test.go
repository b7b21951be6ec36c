package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"CrewWatch/internal/model"
	"CrewWatch/internal/repository"
)

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts map[int64]*model.Shift
	nextID int64

	// markSentLosesRace 为 true 时 MarkAlertSent 固定返回未赢得置位
	markSentLosesRace bool
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[int64]*model.Shift), nextID: 1}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	shift.ID = m.nextID
	m.nextID++
	for i := range shift.Alerts {
		shift.Alerts[i].ID = m.nextID
		m.nextID++
		shift.Alerts[i].ShiftID = shift.ID
	}
	m.shifts[shift.ID] = shift
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id int64) (*model.Shift, error) {
	s, ok := m.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	cp.Alerts = append([]model.ShiftAlert(nil), s.Alerts...)
	return &cp, nil
}

func (m *mockShiftRepo) ListOpen(_ context.Context) ([]model.Shift, error) {
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

func (m *mockShiftRepo) List(_ context.Context, filter repository.ShiftFilter) ([]model.Shift, int64, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.TrainNumber != "" && s.TrainNumber != filter.TrainNumber {
			continue
		}
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

func (m *mockShiftRepo) Updates(_ context.Context, id int64, fields map[string]interface{}) error {
	s, ok := m.shifts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "status":
			s.Status = value.(model.ShiftStatus)
		case "sign_off_time":
			t := value.(time.Time)
			s.SignOffTime = &t
		case "sign_off_station":
			s.SignOffStation = value.(string)
		case "duty_hours":
			h := value.(float64)
			s.DutyHours = &h
		case "take_over_time":
			t := value.(time.Time)
			s.TakeOverTime = &t
		case "departure_time":
			t := value.(time.Time)
			s.DepartureTime = &t
		case "section":
			s.Section = value.(string)
		case "duty_type":
			s.DutyType = model.DutyType(value.(string))
		case "relief_required":
			s.ReliefRequired = value.(bool)
		case "relief_planned":
			s.ReliefPlanned = value.(bool)
		case "relief_time":
			t := value.(time.Time)
			s.ReliefTime = &t
		case "relief_reason":
			s.ReliefReason = value.(string)
		case "updated_by_id":
			id := value.(int64)
			s.UpdatedByID = &id
		}
	}
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id int64) error {
	delete(m.shifts, id)
	return nil
}

func (m *mockShiftRepo) FindOpenByStaff(_ context.Context, staffIDs []int64) ([]model.Shift, error) {
	ids := make(map[int64]bool, len(staffIDs))
	for _, id := range staffIDs {
		ids[id] = true
	}
	var result []model.Shift
	for _, s := range m.shifts {
		if s.SignOffTime != nil {
			continue
		}
		if s.Status != model.ShiftStatusScheduled && s.Status != model.ShiftStatusInProgress {
			continue
		}
		if ids[s.LocoPilotID] || ids[s.TrainManagerID] {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockShiftRepo) MarkAlertSent(_ context.Context, shiftID int64, threshold int, sentAt time.Time) (bool, error) {
	if m.markSentLosesRace {
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

func (m *mockShiftRepo) SetAlertResponse(_ context.Context, shiftID int64, threshold int, response string) error {
	s, ok := m.shifts[shiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if row := s.AlertFor(threshold); row != nil {
		r := response
		row.Response = &r
	}
	return nil
}

func (m *mockShiftRepo) CountByStatus(_ context.Context) (map[model.ShiftStatus]int64, error) {
	counts := make(map[model.ShiftStatus]int64)
	for _, s := range m.shifts {
		counts[s.Status]++
	}
	return counts, nil
}

func (m *mockShiftRepo) CountSignOnSince(_ context.Context, since time.Time) (int64, error) {
	var count int64
	for _, s := range m.shifts {
		if !s.SignOnTime.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockShiftRepo) CountAlertsSentSince(_ context.Context, since time.Time) (int64, error) {
	var count int64
	for _, s := range m.shifts {
		for i := range s.Alerts {
			if s.Alerts[i].Sent && s.Alerts[i].SentAt != nil && !s.Alerts[i].SentAt.Before(since) {
				count++
			}
		}
	}
	return count, nil
}

func (m *mockShiftRepo) ListPendingAlerts(_ context.Context) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if !s.IsOpen() {
			continue
		}
		for i := range s.Alerts {
			row := &s.Alerts[i]
			if row.Sent && row.Response == nil && row.Threshold > 7 {
				cp := *s
				cp.Alerts = append([]model.ShiftAlert(nil), s.Alerts...)
				result = append(result, cp)
				break
			}
		}
	}
	return result, nil
}

func (m *mockShiftRepo) CompletedDutyHourStats(_ context.Context) (float64, float64, error) {
	var sum, max float64
	var count int64
	for _, s := range m.shifts {
		if s.Status != model.ShiftStatusCompleted || s.DutyHours == nil {
			continue
		}
		sum += *s.DutyHours
		if *s.DutyHours > max {
			max = *s.DutyHours
		}
		count++
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), max, nil
}

func (m *mockShiftRepo) TopSections(_ context.Context, limit int) ([]repository.SectionCount, error) {
	counts := make(map[string]int64)
	for _, s := range m.shifts {
		counts[s.Section]++
	}
	var result []repository.SectionCount
	for section, count := range counts {
		result = append(result, repository.SectionCount{Section: section, Count: count})
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockShiftRepo) CountByDutyType(_ context.Context) (map[model.DutyType]int64, error) {
	counts := make(map[model.DutyType]int64)
	for _, s := range m.shifts {
		counts[s.DutyType]++
	}
	return counts, nil
}

// ── Mock StaffRepository ──

type mockStaffRepo struct {
	staff  map[int64]*model.Staff
	nextID int64
}

func newMockStaffRepo() *mockStaffRepo {
	return &mockStaffRepo{staff: make(map[int64]*model.Staff), nextID: 1}
}

func (m *mockStaffRepo) Create(_ context.Context, staff *model.Staff) error {
	staff.ID = m.nextID
	m.nextID++
	m.staff[staff.ID] = staff
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id int64) (*model.Staff, error) {
	if s, ok := m.staff[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) GetByEmployeeID(_ context.Context, employeeID string) (*model.Staff, error) {
	for _, s := range m.staff {
		if s.EmployeeID == employeeID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) Update(_ context.Context, staff *model.Staff) error {
	m.staff[staff.ID] = staff
	return nil
}

func (m *mockStaffRepo) UpdateStatus(_ context.Context, ids []int64, status model.StaffStatus) error {
	for _, id := range ids {
		if s, ok := m.staff[id]; ok {
			s.Status = status
		}
	}
	return nil
}

func (m *mockStaffRepo) List(_ context.Context, staffType model.StaffType, status model.StaffStatus, offset, limit int) ([]model.Staff, int64, error) {
	var result []model.Staff
	for _, s := range m.staff {
		if staffType != "" && s.StaffType != staffType {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

func (m *mockStaffRepo) CountByStatus(_ context.Context) (map[model.StaffStatus]int64, error) {
	counts := make(map[model.StaffStatus]int64)
	for _, s := range m.staff {
		counts[s.Status]++
	}
	return counts, nil
}

// ── Mock DutyLogRepository ──

type mockDutyLogRepo struct {
	logs []model.DutyLog
}

func newMockDutyLogRepo() *mockDutyLogRepo {
	return &mockDutyLogRepo{}
}

func (m *mockDutyLogRepo) CreateBatch(_ context.Context, logs []model.DutyLog) error {
	m.logs = append(m.logs, logs...)
	return nil
}

func (m *mockDutyLogRepo) ListByShift(_ context.Context, shiftID int64) ([]model.DutyLog, error) {
	var result []model.DutyLog
	for _, l := range m.logs {
		if l.ShiftID == shiftID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockDutyLogRepo) ListRecent(_ context.Context, limit int) ([]model.DutyLog, error) {
	if len(m.logs) > limit {
		return m.logs[len(m.logs)-limit:], nil
	}
	return m.logs, nil
}

func (m *mockDutyLogRepo) DeleteByShift(_ context.Context, shiftID int64) error {
	var kept []model.DutyLog
	for _, l := range m.logs {
		if l.ShiftID != shiftID {
			kept = append(kept, l)
		}
	}
	m.logs = kept
	return nil
}

// byType 按日志类型过滤，断言用
func (m *mockDutyLogRepo) byType(logType model.DutyLogType) []model.DutyLog {
	var result []model.DutyLog
	for _, l := range m.logs {
		if l.LogType == logType {
			result = append(result, l)
		}
	}
	return result
}

// ── Mock LocomotiveRepository ──

type mockLocomotiveRepo struct {
	locos  map[string]*model.Locomotive
	nextID int64
}

func newMockLocomotiveRepo() *mockLocomotiveRepo {
	return &mockLocomotiveRepo{locos: make(map[string]*model.Locomotive), nextID: 1}
}

func (m *mockLocomotiveRepo) Create(_ context.Context, loco *model.Locomotive) error {
	loco.ID = m.nextID
	m.nextID++
	m.locos[loco.LocomotiveNo] = loco
	return nil
}

func (m *mockLocomotiveRepo) GetByNo(_ context.Context, locomotiveNo string) (*model.Locomotive, error) {
	if l, ok := m.locos[locomotiveNo]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLocomotiveRepo) List(_ context.Context, offset, limit int) ([]model.Locomotive, int64, error) {
	var result []model.Locomotive
	for _, l := range m.locos {
		result = append(result, *l)
	}
	return result, int64(len(result)), nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmployeeID(_ context.Context, employeeID string) (*model.User, error) {
	for _, u := range m.users {
		if u.EmployeeID == employeeID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	if u, ok := m.users[id]; ok {
		t := at
		u.LastLogin = &t
	}
	return nil
}

// ── 测试装配 ──

// fakeTx 直接在原仓储上执行，不包事务
type fakeTx struct {
	repos *repository.Repositories
}

func (t *fakeTx) Transaction(_ context.Context, fn func(tx *repository.Repositories) error) error {
	return fn(t.repos)
}

// fixedClock 固定时间时钟
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

// mockEvents 记录事件发布次数
type mockEvents struct {
	completed int
	responses int
}

func (m *mockEvents) PublishShiftCompleted(_ context.Context, _ *model.Shift) error {
	m.completed++
	return nil
}

func (m *mockEvents) PublishAlertResponse(_ context.Context, _ *model.Shift, _, _ string) error {
	m.responses++
	return nil
}

type testEnv struct {
	shifts *mockShiftRepo
	staff  *mockStaffRepo
	logs   *mockDutyLogRepo
	locos  *mockLocomotiveRepo
	users  *mockUserRepo
	repos  *repository.Repositories
	tx     *fakeTx
	clock  *fixedClock
	events *mockEvents
}

func newTestEnv(now time.Time) *testEnv {
	env := &testEnv{
		shifts: newMockShiftRepo(),
		staff:  newMockStaffRepo(),
		logs:   newMockDutyLogRepo(),
		locos:  newMockLocomotiveRepo(),
		users:  newMockUserRepo(),
		clock:  &fixedClock{now: now},
		events: &mockEvents{},
	}
	env.repos = &repository.Repositories{
		Shift:      env.shifts,
		Staff:      env.staff,
		DutyLog:    env.logs,
		Locomotive: env.locos,
		User:       env.users,
	}
	env.tx = &fakeTx{repos: env.repos}
	return env
}
