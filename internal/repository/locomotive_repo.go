package repository

import (
	"context"

	"gorm.io/gorm"

	"CrewWatch/internal/model"
)

// LocomotiveRepository 机车数据访问接口
type LocomotiveRepository interface {
	Create(ctx context.Context, loco *model.Locomotive) error
	GetByNo(ctx context.Context, locomotiveNo string) (*model.Locomotive, error)
	List(ctx context.Context, offset, limit int) ([]model.Locomotive, int64, error)
}

type locomotiveRepo struct {
	db *gorm.DB
}

// NewLocomotiveRepo 创建 LocomotiveRepository 实例
func NewLocomotiveRepo(db *gorm.DB) LocomotiveRepository {
	return &locomotiveRepo{db: db}
}

func (r *locomotiveRepo) Create(ctx context.Context, loco *model.Locomotive) error {
	return r.db.WithContext(ctx).Create(loco).Error
}

func (r *locomotiveRepo) GetByNo(ctx context.Context, locomotiveNo string) (*model.Locomotive, error) {
	var loco model.Locomotive
	err := r.db.WithContext(ctx).Where("locomotive_no = ?", locomotiveNo).First(&loco).Error
	if err != nil {
		return nil, err
	}
	return &loco, nil
}

func (r *locomotiveRepo) List(ctx context.Context, offset, limit int) ([]model.Locomotive, int64, error) {
	var locos []model.Locomotive
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Locomotive{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		db = db.Offset(offset).Limit(limit)
	}

	if err := db.Order("locomotive_no ASC").Find(&locos).Error; err != nil {
		return nil, 0, err
	}

	return locos, total, nil
}
