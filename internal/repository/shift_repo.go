package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"CrewWatch/internal/model"
)

// ShiftFilter 班次列表过滤条件
type ShiftFilter struct {
	Status      model.ShiftStatus
	TrainNumber string
	StaffID     int64 // 司机或列车长任一匹配
	From        *time.Time
	To          *time.Time
	Offset      int
	Limit       int
}

// SectionCount 区段 → 班次数
type SectionCount struct {
	Section string `json:"section"`
	Count   int64  `json:"count"`
}

// ShiftRepository 班次数据访问接口
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id int64) (*model.Shift, error)
	ListOpen(ctx context.Context) ([]model.Shift, error)
	List(ctx context.Context, filter ShiftFilter) ([]model.Shift, int64, error)
	Updates(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// FindOpenByStaff 返回指定乘务员（任一角色）名下未签退的 SCHEDULED / IN_PROGRESS 班次
	FindOpenByStaff(ctx context.Context, staffIDs []int64) ([]model.Shift, error)

	// MarkAlertSent 条件置位：仅当该阈值行仍为未发送时成功，返回是否赢得置位
	MarkAlertSent(ctx context.Context, shiftID int64, threshold int, sentAt time.Time) (bool, error)
	SetAlertResponse(ctx context.Context, shiftID int64, threshold int, response string) error

	// 仪表盘聚合
	CountByStatus(ctx context.Context) (map[model.ShiftStatus]int64, error)
	CountSignOnSince(ctx context.Context, since time.Time) (int64, error)
	CountAlertsSentSince(ctx context.Context, since time.Time) (int64, error)
	ListPendingAlerts(ctx context.Context) ([]model.Shift, error)
	CompletedDutyHourStats(ctx context.Context) (avg float64, max float64, err error)
	TopSections(ctx context.Context, limit int) ([]SectionCount, error)
	CountByDutyType(ctx context.Context) (map[model.DutyType]int64, error)
}

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo 创建 ShiftRepository 实例
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	// 关联的 shift_alerts 行随班次一起插入
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id int64) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("Alerts", func(db *gorm.DB) *gorm.DB {
			return db.Order("threshold ASC")
		}).
		Preload("LocoPilot").
		Preload("TrainManager").
		Preload("Locomotive").
		Where("id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) ListOpen(ctx context.Context) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Preload("Alerts", func(db *gorm.DB) *gorm.DB {
			return db.Order("threshold ASC")
		}).
		Preload("LocoPilot").
		Preload("TrainManager").
		Preload("Locomotive").
		Where("status IN ?", openStatusValues()).
		Where("sign_off_time IS NULL").
		Order("sign_on_time ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) List(ctx context.Context, filter ShiftFilter) ([]model.Shift, int64, error) {
	var shifts []model.Shift
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Shift{})

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.TrainNumber != "" {
		db = db.Where("train_number = ?", filter.TrainNumber)
	}
	if filter.StaffID != 0 {
		db = db.Where("loco_pilot_id = ? OR train_manager_id = ?", filter.StaffID, filter.StaffID)
	}
	if filter.From != nil {
		db = db.Where("sign_on_time >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("sign_on_time <= ?", *filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		db = db.Offset(filter.Offset).Limit(filter.Limit)
	}

	if err := db.
		Preload("Alerts", func(db *gorm.DB) *gorm.DB {
			return db.Order("threshold ASC")
		}).
		Preload("LocoPilot").
		Preload("TrainManager").
		Order("sign_on_time DESC").
		Find(&shifts).Error; err != nil {
		return nil, 0, err
	}

	return shifts, total, nil
}

func (r *shiftRepo) Updates(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *shiftRepo) Delete(ctx context.Context, id int64) error {
	// 审计日志已由调用方先删；告警行随班次一起清掉
	if err := r.db.WithContext(ctx).Unscoped().
		Where("shift_id = ?", id).
		Delete(&model.ShiftAlert{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Unscoped().
		Where("id = ?", id).
		Delete(&model.Shift{}).Error
}

func (r *shiftRepo) FindOpenByStaff(ctx context.Context, staffIDs []int64) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Preload("LocoPilot").
		Preload("TrainManager").
		Where("status IN ?", []model.ShiftStatus{model.ShiftStatusScheduled, model.ShiftStatusInProgress}).
		Where("sign_off_time IS NULL").
		Where("loco_pilot_id IN ? OR train_manager_id IN ?", staffIDs, staffIDs).
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) MarkAlertSent(ctx context.Context, shiftID int64, threshold int, sentAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ShiftAlert{}).
		Where("shift_id = ? AND threshold = ? AND sent = false", shiftID, threshold).
		Updates(map[string]interface{}{
			"sent":    true,
			"sent_at": sentAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *shiftRepo) SetAlertResponse(ctx context.Context, shiftID int64, threshold int, response string) error {
	return r.db.WithContext(ctx).
		Model(&model.ShiftAlert{}).
		Where("shift_id = ? AND threshold = ?", shiftID, threshold).
		Update("response", response).Error
}

func (r *shiftRepo) CountByStatus(ctx context.Context) (map[model.ShiftStatus]int64, error) {
	type row struct {
		Status model.ShiftStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ShiftStatus]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

func (r *shiftRepo) CountSignOnSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("sign_on_time >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *shiftRepo) CountAlertsSentSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ShiftAlert{}).
		Where("sent = true AND sent_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *shiftRepo) ListPendingAlerts(ctx context.Context) ([]model.Shift, error) {
	var shifts []model.Shift
	// 有已发送但未响应、且需要响应（阈值 > 7）的告警行的开放班次
	err := r.db.WithContext(ctx).
		Preload("Alerts", func(db *gorm.DB) *gorm.DB {
			return db.Order("threshold ASC")
		}).
		Preload("LocoPilot").
		Preload("TrainManager").
		Where("status IN ?", openStatusValues()).
		Where("sign_off_time IS NULL").
		Where("id IN (?)", r.db.
			Model(&model.ShiftAlert{}).
			Select("shift_id").
			Where("sent = true AND response IS NULL AND threshold > 7")).
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) CompletedDutyHourStats(ctx context.Context) (float64, float64, error) {
	type row struct {
		Avg float64
		Max float64
	}
	var rw row
	err := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Select("COALESCE(AVG(duty_hours), 0) as avg, COALESCE(MAX(duty_hours), 0) as max").
		Where("status = ? AND duty_hours IS NOT NULL", model.ShiftStatusCompleted).
		Scan(&rw).Error
	return rw.Avg, rw.Max, err
}

func (r *shiftRepo) TopSections(ctx context.Context, limit int) ([]SectionCount, error) {
	var rows []SectionCount
	err := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Select("section, count(*) as count").
		Group("section").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *shiftRepo) CountByDutyType(ctx context.Context) (map[model.DutyType]int64, error) {
	type row struct {
		DutyType model.DutyType
		Count    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Select("duty_type, count(*) as count").
		Group("duty_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.DutyType]int64, len(rows))
	for _, rw := range rows {
		counts[rw.DutyType] = rw.Count
	}
	return counts, nil
}

func openStatusValues() []model.ShiftStatus {
	return model.OpenShiftStatuses
}
