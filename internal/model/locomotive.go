package model

// LocomotiveStatus 机车状态
type LocomotiveStatus string

const (
	LocomotiveStatusActive   LocomotiveStatus = "ACTIVE"
	LocomotiveStatusInactive LocomotiveStatus = "INACTIVE"
)

// Locomotive 机车登记表，班次创建时按车号 find-or-create
type Locomotive struct {
	BaseModel
	LocomotiveNo string           `gorm:"uniqueIndex;type:varchar(32);not null" json:"locomotive_no"`
	Status       LocomotiveStatus `gorm:"type:varchar(16);not null;default:'ACTIVE'" json:"status"`
	AutoCreated  bool             `gorm:"not null;default:false" json:"auto_created"`
}

// TableName 指定表名
func (Locomotive) TableName() string {
	return "locomotives"
}
