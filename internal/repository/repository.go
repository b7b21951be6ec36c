package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories 各数据访问接口的集合，service 层只依赖接口便于测试替换
type Repositories struct {
	Shift      ShiftRepository
	Staff      StaffRepository
	DutyLog    DutyLogRepository
	Locomotive LocomotiveRepository
	User       UserRepository
}

// Tx 事务执行器，fn 内拿到的是绑定到同一事务的仓储集合
type Tx interface {
	Transaction(ctx context.Context, fn func(tx *Repositories) error) error
}

// Manager 持有 *gorm.DB 的仓储管理器，实现 Tx
type Manager struct {
	Repositories
	db *gorm.DB
}

func New(db *gorm.DB) *Manager {
	return &Manager{
		db:           db,
		Repositories: newRepositories(db),
	}
}

func newRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Shift:      NewShiftRepo(db),
		Staff:      NewStaffRepo(db),
		DutyLog:    NewDutyLogRepo(db),
		Locomotive: NewLocomotiveRepo(db),
		User:       NewUserRepo(db),
	}
}

// Transaction 在单个数据库事务内执行 fn
func (m *Manager) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(txDB *gorm.DB) error {
		repos := newRepositories(txDB)
		return fn(&repos)
	})
}
