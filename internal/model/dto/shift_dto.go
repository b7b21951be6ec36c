package dto

import (
	"time"

	"CrewWatch/internal/model"
)

// ========== Shift 相关 DTO ==========

// StaffInput 创建班次时的乘务员信息，按 employee_id find-or-create
type StaffInput struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone"`
}

// CreateShiftRequest 创建班次请求
type CreateShiftRequest struct {
	TrainNumber      string     `json:"train_number" binding:"required"`
	TrainName        string     `json:"train_name"`
	LocomotiveNo     string     `json:"locomotive_no" binding:"required"`
	LocoPilot        StaffInput `json:"loco_pilot" binding:"required"`
	TrainManager     StaffInput `json:"train_manager" binding:"required"`
	TrainArrivalTime time.Time  `json:"train_arrival_time" binding:"required"`
	SignOnTime       time.Time  `json:"sign_on_time" binding:"required"`
	TakeOverTime     *time.Time `json:"take_over_time"`
	DepartureTime    *time.Time `json:"departure_time"`
	SignOnStation    string     `json:"sign_on_station" binding:"required"`
	Section          string     `json:"section" binding:"required"`
	DutyType         string     `json:"duty_type" binding:"required"` // SP / WR / LR
}

// UpdateShiftRequest 人工修正班次字段，nil 表示不改动
type UpdateShiftRequest struct {
	TakeOverTime   *time.Time `json:"take_over_time"`
	DepartureTime  *time.Time `json:"departure_time"`
	SignOffTime    *time.Time `json:"sign_off_time"` // 提供即强制完成班次
	SignOffStation *string    `json:"sign_off_station"`
	Section        *string    `json:"section"`
	DutyType       *string    `json:"duty_type"`
	ReliefPlanned  *bool      `json:"relief_planned"`
	ReliefReason   *string    `json:"relief_reason"`
}

// CompleteShiftRequest 显式完成班次
type CompleteShiftRequest struct {
	SignOffTime    time.Time `json:"sign_off_time" binding:"required"`
	SignOffStation string    `json:"sign_off_station"`
}

// ListShiftsQuery 班次列表查询参数
type ListShiftsQuery struct {
	Status      string     `query:"status"`
	TrainNumber string     `query:"train_number"`
	StaffID     int64      `query:"staff_id"`
	StartDate   *time.Time `query:"start_date"`
	EndDate     *time.Time `query:"end_date"`
	Page        int        `query:"page"`
	Limit       int        `query:"limit"`
}

// ShiftView 对外的班次视图：开放班次带实时值乘小时与告警级别
type ShiftView struct {
	model.Shift
	CurrentDutyHours *float64 `json:"current_duty_hours,omitempty"`
	AlertLevel       string   `json:"alert_level,omitempty"`
}

// ShiftDetailResponse 班次详情，内嵌审计日志
type ShiftDetailResponse struct {
	ShiftView
	DutyLogs []model.DutyLog `json:"duty_logs"`
}

// ActiveShiftsSummary 在值班次汇总
type ActiveShiftsSummary struct {
	TotalActive int         `json:"total_active"`
	Shifts      []ShiftView `json:"shifts"`
}
