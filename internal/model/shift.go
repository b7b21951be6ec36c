package model

import "time"

// ShiftStatus 班次状态枚举
type ShiftStatus string

const (
	ShiftStatusScheduled     ShiftStatus = "SCHEDULED"
	ShiftStatusInProgress    ShiftStatus = "IN_PROGRESS"
	ShiftStatusReliefPlanned ShiftStatus = "RELIEF_PLANNED"
	ShiftStatusCompleted     ShiftStatus = "COMPLETED"
	ShiftStatusCancelled     ShiftStatus = "CANCELLED"
)

// OpenShiftStatuses 可被监控的状态集合，终态为 COMPLETED / CANCELLED
var OpenShiftStatuses = []ShiftStatus{
	ShiftStatusScheduled,
	ShiftStatusInProgress,
	ShiftStatusReliefPlanned,
}

// IsTerminal 判断是否为终态
func (s ShiftStatus) IsTerminal() bool {
	return s == ShiftStatusCompleted || s == ShiftStatusCancelled
}

// DutyType 值乘类型：单司机 / 工作休息 / 长途休息
type DutyType string

const (
	DutyTypeSP DutyType = "SP"
	DutyTypeWR DutyType = "WR"
	DutyTypeLR DutyType = "LR"
)

// Shift 一段被跟踪的值乘时段
type Shift struct {
	BaseModel

	// 列车与机车信息
	TrainNumber  string `gorm:"type:varchar(32);not null;index:idx_shifts_train" json:"train_number"`
	TrainName    string `gorm:"type:varchar(128);not null;default:''" json:"train_name"`
	LocomotiveID int64  `gorm:"not null" json:"locomotive_id"`
	LocomotiveNo string `gorm:"type:varchar(32);not null;default:''" json:"locomotive_no"` // 冗余车号，列表页免 join

	// 乘务员，创建后不再变更
	LocoPilotID    int64 `gorm:"not null;index:idx_shifts_pilot" json:"loco_pilot_id"`
	TrainManagerID int64 `gorm:"not null;index:idx_shifts_manager" json:"train_manager_id"`

	// 时间锚点
	TrainArrivalTime time.Time  `gorm:"not null" json:"train_arrival_time"`
	SignOnTime       time.Time  `gorm:"not null;index:idx_shifts_sign_on" json:"sign_on_time"`
	TakeOverTime     *time.Time `json:"take_over_time"`
	DepartureTime    *time.Time `json:"departure_time"`
	SignOffTime      *time.Time `json:"sign_off_time"`

	SignOnStation  string `gorm:"type:varchar(64);not null" json:"sign_on_station"`
	SignOffStation string `gorm:"type:varchar(64);not null;default:''" json:"sign_off_station"`
	Section        string `gorm:"type:varchar(64);not null" json:"section"`

	DutyType DutyType `gorm:"type:varchar(8);not null" json:"duty_type"`
	// DutyHours 完成时冻结的值乘小时数，开放班次为 null、由查询方实时计算
	DutyHours *float64 `json:"duty_hours"`

	Status ShiftStatus `gorm:"type:varchar(16);not null;default:'IN_PROGRESS';index:idx_shifts_status" json:"status"`

	// 换乘信息
	ReliefRequired bool       `gorm:"not null;default:false" json:"relief_required"`
	ReliefPlanned  bool       `gorm:"not null;default:false" json:"relief_planned"`
	ReliefTime     *time.Time `json:"relief_time"`
	ReliefReason   string     `gorm:"type:varchar(255);not null;default:''" json:"relief_reason"`

	// 操作审计
	CreatedByID int64  `gorm:"not null" json:"created_by_id"`
	UpdatedByID *int64 `json:"updated_by_id"`

	// 关联
	Alerts       []ShiftAlert `gorm:"foreignKey:ShiftID" json:"alerts,omitempty"`
	LocoPilot    *Staff       `gorm:"foreignKey:LocoPilotID" json:"loco_pilot,omitempty"`
	TrainManager *Staff       `gorm:"foreignKey:TrainManagerID" json:"train_manager,omitempty"`
	Locomotive   *Locomotive  `gorm:"foreignKey:LocomotiveID" json:"locomotive,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string {
	return "shifts"
}

// IsOpen 开放班次：状态在开放集合且未签退
func (s *Shift) IsOpen() bool {
	if s.SignOffTime != nil {
		return false
	}
	for _, st := range OpenShiftStatuses {
		if s.Status == st {
			return true
		}
	}
	return false
}

// AlertFor 返回指定阈值的告警行，不存在时返回 nil
func (s *Shift) AlertFor(threshold int) *ShiftAlert {
	for i := range s.Alerts {
		if s.Alerts[i].Threshold == threshold {
			return &s.Alerts[i]
		}
	}
	return nil
}

// ShiftAlert 每个阈值一行，条件更新 sent 列做原子的"只发一次"判定
type ShiftAlert struct {
	BaseModel
	ShiftID   int64      `gorm:"not null;uniqueIndex:idx_shift_alerts_shift_threshold,priority:1" json:"shift_id"`
	Threshold int        `gorm:"not null;uniqueIndex:idx_shift_alerts_shift_threshold,priority:2" json:"threshold"`
	AlertType string     `gorm:"type:varchar(8);not null" json:"alert_type"`
	Sent      bool       `gorm:"not null;default:false" json:"sent"`
	SentAt    *time.Time `json:"sent_at"`
	Response  *string    `gorm:"type:varchar(32)" json:"response"`
}

// TableName 指定表名
func (ShiftAlert) TableName() string {
	return "shift_alerts"
}
