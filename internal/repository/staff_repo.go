package repository

import (
	"context"

	"gorm.io/gorm"

	"CrewWatch/internal/model"
)

// StaffRepository 乘务员数据访问接口
type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	GetByID(ctx context.Context, id int64) (*model.Staff, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*model.Staff, error)
	Update(ctx context.Context, staff *model.Staff) error
	UpdateStatus(ctx context.Context, ids []int64, status model.StaffStatus) error
	List(ctx context.Context, staffType model.StaffType, status model.StaffStatus, offset, limit int) ([]model.Staff, int64, error)
	CountByStatus(ctx context.Context) (map[model.StaffStatus]int64, error)
}

type staffRepo struct {
	db *gorm.DB
}

// NewStaffRepo 创建 StaffRepository 实例
func NewStaffRepo(db *gorm.DB) StaffRepository {
	return &staffRepo{db: db}
}

func (r *staffRepo) Create(ctx context.Context, staff *model.Staff) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

func (r *staffRepo) GetByID(ctx context.Context, id int64) (*model.Staff, error) {
	var staff model.Staff
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepo) GetByEmployeeID(ctx context.Context, employeeID string) (*model.Staff, error) {
	var staff model.Staff
	err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepo) Update(ctx context.Context, staff *model.Staff) error {
	return r.db.WithContext(ctx).Save(staff).Error
}

func (r *staffRepo) UpdateStatus(ctx context.Context, ids []int64, status model.StaffStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Staff{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}

func (r *staffRepo) List(ctx context.Context, staffType model.StaffType, status model.StaffStatus, offset, limit int) ([]model.Staff, int64, error) {
	var staff []model.Staff
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Staff{})
	if staffType != "" {
		db = db.Where("staff_type = ?", staffType)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		db = db.Offset(offset).Limit(limit)
	}

	if err := db.Order("name ASC").Find(&staff).Error; err != nil {
		return nil, 0, err
	}

	return staff, total, nil
}

func (r *staffRepo) CountByStatus(ctx context.Context) (map[model.StaffStatus]int64, error) {
	type row struct {
		Status model.StaffStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Staff{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.StaffStatus]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}
