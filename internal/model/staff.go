package model

// StaffStatus 乘务员状态枚举
type StaffStatus string

const (
	StaffStatusAvailable StaffStatus = "AVAILABLE"
	StaffStatusOnDuty    StaffStatus = "ON_DUTY"
	StaffStatusOnLeave   StaffStatus = "ON_LEAVE"
	StaffStatusRelieved  StaffStatus = "RELIEVED"
	StaffStatusInactive  StaffStatus = "INACTIVE"
)

// StaffType 乘务员岗位
type StaffType string

const (
	StaffTypeLocoPilot    StaffType = "LOCO_PILOT"
	StaffTypeTrainManager StaffType = "TRAIN_MANAGER"
)

// Staff 乘务员（司机或列车长）
type Staff struct {
	BaseModel
	EmployeeID  string      `gorm:"uniqueIndex;type:varchar(32);not null" json:"employee_id"`
	Name        string      `gorm:"type:varchar(128);not null;index:idx_staff_name" json:"name"`
	StaffType   StaffType   `gorm:"type:varchar(16);not null;index:idx_staff_type" json:"staff_type"`
	Phone       string      `gorm:"type:varchar(32);not null;default:''" json:"phone"`
	Email       string      `gorm:"type:varchar(128);not null;default:''" json:"email"`
	HomeStation string      `gorm:"type:varchar(64);not null;default:''" json:"home_station"`
	Status      StaffStatus `gorm:"type:varchar(16);not null;default:'AVAILABLE';index:idx_staff_status" json:"status"`
	AutoCreated bool        `gorm:"not null;default:false" json:"auto_created"`
}

// TableName 指定表名
func (Staff) TableName() string {
	return "staff"
}
