package dto

import "CrewWatch/internal/model"

// ========== Dashboard 相关 DTO ==========

// DashboardStats 运营看板聚合数据
type DashboardStats struct {
	Shifts        ShiftStats       `json:"shifts"`
	Staff         StaffStats       `json:"staff"`
	Alerts        AlertStats       `json:"alerts"`
	DutyHours     DutyHourStats    `json:"duty_hours"`
	TopSections   []SectionStat    `json:"top_sections"`
	DutyTypeSplit map[string]int64 `json:"duty_type_split"`
}

// ShiftStats 按状态统计班次
type ShiftStats struct {
	Active      int64            `json:"active"`
	Completed   int64            `json:"completed"`
	Total       int64            `json:"total"`
	SignOnToday int64            `json:"sign_on_today"`
	SignOnWeek  int64            `json:"sign_on_week"`
	SignOnMonth int64            `json:"sign_on_month"`
	ByStatus    map[string]int64 `json:"by_status"`
}

// StaffStats 按状态统计乘务员
type StaffStats struct {
	OnDuty    int64            `json:"on_duty"`
	Available int64            `json:"available"`
	Total     int64            `json:"total"`
	ByStatus  map[string]int64 `json:"by_status"`
}

// AlertStats 告警统计
type AlertStats struct {
	SentToday       int64 `json:"sent_today"`
	PendingResponse int64 `json:"pending_response"`
	Critical        int64 `json:"critical"`
}

// DutyHourStats 已完成班次的值乘小时统计
type DutyHourStats struct {
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
}

// SectionStat 区段班次数
type SectionStat struct {
	Section string `json:"section"`
	Count   int64  `json:"count"`
}

// PendingAlertView 待响应告警视图
type PendingAlertView struct {
	ShiftID          int64   `json:"shift_id"`
	TrainNumber      string  `json:"train_number"`
	AlertType        string  `json:"alert_type"`
	Threshold        int     `json:"threshold"`
	CurrentDutyHours float64 `json:"current_duty_hours"`
}

// RecentLogsResponse 最近的审计日志
type RecentLogsResponse struct {
	Logs []model.DutyLog `json:"logs"`
}
