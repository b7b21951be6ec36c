package repository

import (
	"context"

	"gorm.io/gorm"

	"CrewWatch/internal/model"
)

// DutyLogRepository 审计日志数据访问接口，日志只追加；删除仅发生在班次删除时
type DutyLogRepository interface {
	CreateBatch(ctx context.Context, logs []model.DutyLog) error
	ListByShift(ctx context.Context, shiftID int64) ([]model.DutyLog, error)
	ListRecent(ctx context.Context, limit int) ([]model.DutyLog, error)
	DeleteByShift(ctx context.Context, shiftID int64) error
}

type dutyLogRepo struct {
	db *gorm.DB
}

// NewDutyLogRepo 创建 DutyLogRepository 实例
func NewDutyLogRepo(db *gorm.DB) DutyLogRepository {
	return &dutyLogRepo{db: db}
}

func (r *dutyLogRepo) CreateBatch(ctx context.Context, logs []model.DutyLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&logs).Error
}

func (r *dutyLogRepo) ListByShift(ctx context.Context, shiftID int64) ([]model.DutyLog, error) {
	var logs []model.DutyLog
	err := r.db.WithContext(ctx).
		Preload("Staff").
		Where("shift_id = ?", shiftID).
		Order("log_time ASC").
		Find(&logs).Error
	return logs, err
}

func (r *dutyLogRepo) ListRecent(ctx context.Context, limit int) ([]model.DutyLog, error) {
	var logs []model.DutyLog
	err := r.db.WithContext(ctx).
		Preload("Staff").
		Order("log_time DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *dutyLogRepo) DeleteByShift(ctx context.Context, shiftID int64) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("shift_id = ?", shiftID).
		Delete(&model.DutyLog{}).Error
}
