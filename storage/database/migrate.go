package database

import (
	"CrewWatch/internal/model"
	"CrewWatch/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate 运行数据库迁移，创建所有表
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	err := db.AutoMigrate(
		&model.User{},
		&model.Staff{},
		&model.Locomotive{},
		&model.Shift{},
		&model.ShiftAlert{},
		&model.DutyLog{},
	)

	if err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
