package model

import "time"

// DutyLogType 审计日志类型，固定词表
type DutyLogType string

const (
	DutyLogSignOn    DutyLogType = "SIGN_ON"
	DutyLogTakeOver  DutyLogType = "TAKE_OVER"
	DutyLogDeparture DutyLogType = "DEPARTURE"
	DutyLogMilestone DutyLogType = "MILESTONE"

	DutyLogAlert7Hr  DutyLogType = "ALERT_7HR"
	DutyLogAlert8Hr  DutyLogType = "ALERT_8HR"
	DutyLogAlert9Hr  DutyLogType = "ALERT_9HR"
	DutyLogAlert10Hr DutyLogType = "ALERT_10HR"
	DutyLogAlert11Hr DutyLogType = "ALERT_11HR"
	DutyLogAlert14Hr DutyLogType = "ALERT_14HR"

	DutyLogReliefPlanned       DutyLogType = "RELIEF_PLANNED"
	DutyLogReliefNotRequired   DutyLogType = "RELIEF_NOT_REQUIRED"
	DutyLogCrewRelieved        DutyLogType = "CREW_RELIEVED"
	DutyLogCrewNotBooked       DutyLogType = "CREW_NOT_BOOKED"
	DutyLogKeepOnDuty          DutyLogType = "KEEP_ON_DUTY"
	DutyLogCrewAlreadyRelieved DutyLogType = "CREW_ALREADY_RELIEVED"

	DutyLogRelease DutyLogType = "RELEASE"
)

// DutyLog 追加式审计记录，除班次删除外不修改不删除
type DutyLog struct {
	BaseModel
	ShiftID        int64       `gorm:"not null;index:idx_duty_logs_shift" json:"shift_id"`
	StaffID        int64       `gorm:"not null;index:idx_duty_logs_staff" json:"staff_id"`
	LogType        DutyLogType `gorm:"type:varchar(32);not null;index:idx_duty_logs_type" json:"log_type"`
	LogTime        time.Time   `gorm:"not null;index:idx_duty_logs_time,sort:desc" json:"log_time"`
	DutyHoursAtLog *float64    `json:"duty_hours_at_log"` // 写入时快照，之后不重算
	Remarks        string      `gorm:"type:varchar(512);not null;default:''" json:"remarks"`
	Metadata       JSONB       `gorm:"type:jsonb" json:"metadata"`

	Staff *Staff `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
}

// TableName 指定表名
func (DutyLog) TableName() string {
	return "duty_logs"
}
