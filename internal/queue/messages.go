package queue

// DutyAlertMessage 投递到 alerts.duty 队列的告警消息，MessageID 用于 worker 幂等
type DutyAlertMessage struct {
	MessageID      string   `json:"message_id"`
	ShiftID        int64    `json:"shift_id"`
	Threshold      int      `json:"threshold"`
	AlertType      string   `json:"alert_type"`
	TrainNumber    string   `json:"train_number"`
	DutyHours      float64  `json:"duty_hours"`
	Message        string   `json:"message"`
	ValidResponses []string `json:"valid_responses,omitempty"`
	PilotName      string   `json:"pilot_name"`
	PilotPhone     string   `json:"pilot_phone"`
	ManagerName    string   `json:"manager_name"`
	ManagerPhone   string   `json:"manager_phone"`
	ScheduledAt    string   `json:"scheduled_at"`
}

// EventMessage 事件消息（用于事件总线）
type EventMessage struct {
	Payload    map[string]interface{} `json:"payload"`
	EventKey   string                 `json:"event_key"`
	EventType  string                 `json:"event_type"`
	OccurredAt string                 `json:"occurred_at"`
}
