package model

import "time"

// UserRole 操作员角色
type UserRole string

const (
	UserRoleSuperAdmin UserRole = "SUPERADMIN"
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleUser       UserRole = "USER"
)

// UserStatus 操作员账号状态
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User 操作员账号（调度台使用者），区别于被监控的乘务员 Staff
type User struct {
	BaseModel
	EmployeeID   string     `gorm:"uniqueIndex;type:varchar(32);not null" json:"employee_id"`
	Name         string     `gorm:"type:varchar(128);not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;type:varchar(128);not null" json:"email"`
	Phone        string     `gorm:"type:varchar(32);not null;default:''" json:"phone"`
	PasswordHash string     `gorm:"type:varchar(128);not null" json:"-"` // bcrypt
	Role         UserRole   `gorm:"type:varchar(16);not null;default:'USER'" json:"role"`
	Status       UserStatus `gorm:"type:varchar(16);not null;default:'ACTIVE';index:idx_users_status" json:"status"`
	Division     string     `gorm:"type:varchar(64);not null;default:''" json:"division"`
	Designation  string     `gorm:"type:varchar(64);not null;default:''" json:"designation"`
	LastLogin    *time.Time `json:"last_login"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
