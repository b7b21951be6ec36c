package dto

import "time"

// ========== Alert 相关 DTO ==========

// AlertResponseRequest 人工响应告警请求
type AlertResponseRequest struct {
	AlertType string `json:"alert_type" binding:"required"` // 7HR / 8HR / 9HR / 10HR / 11HR / 14HR
	Response  string `json:"response" binding:"required"`
	Remarks   string `json:"remarks"`
}

// AlertOption 告警的一个可选响应
type AlertOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AlertHistoryEntry 单条告警记录，按阈值升序返回
type AlertHistoryEntry struct {
	AlertType      string        `json:"alert_type"`
	Threshold      int           `json:"threshold"`
	Message        string        `json:"message"`
	Sent           bool          `json:"sent"`
	SentAt         *time.Time    `json:"sent_at,omitempty"`
	Response       *string       `json:"response,omitempty"`
	RequiresAction bool          `json:"requires_action"`
	Options        []AlertOption `json:"options,omitempty"`
}

// AlertHistoryResponse 班次的告警历史及当前值乘小时
type AlertHistoryResponse struct {
	ShiftID          int64               `json:"shift_id"`
	TrainNumber      string              `json:"train_number"`
	Status           string              `json:"status"`
	CurrentDutyHours float64             `json:"current_duty_hours"`
	Alerts           []AlertHistoryEntry `json:"alerts"`
}
