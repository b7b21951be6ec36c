package dispatch

import (
	"context"
)

// Contact 告警接收人
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Payload 一次阈值告警的投递内容，由扫描器构造
type Payload struct {
	ShiftID        int64    `json:"shift_id"`
	Threshold      int      `json:"threshold"`
	AlertType      string   `json:"alert_type"`
	TrainNumber    string   `json:"train_number"`
	DutyHours      float64  `json:"duty_hours"`
	Message        string   `json:"message"`
	ValidResponses []string `json:"valid_responses,omitempty"`
	PilotContact   Contact  `json:"pilot_contact"`
	ManagerContact Contact  `json:"manager_contact"`
}

// Dispatcher 告警投递通道。返回 nil 才算投递成功，
// 扫描器只在成功后落发送标记，失败留到下一轮重试。
type Dispatcher interface {
	Dispatch(ctx context.Context, payload Payload) error
}
