package alert

import (
	"CrewWatch/internal/model"
)

// ResponseOption 人工响应选项
type ResponseOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Policy 单个值乘小时阈值的告警策略
type Policy struct {
	Threshold      int                `json:"threshold"`
	Type           string             `json:"type"` // 7HR ... 14HR
	LogType        model.DutyLogType  `json:"-"`
	Message        string             `json:"message"`
	RequiresAction bool               `json:"requires_action"`
	Options        []ResponseOption   `json:"options,omitempty"`
}

// 阈值表按升序排列，扫描器按该顺序补发漏掉的告警。
// 新增阈值只需在这里加一行并补充 effects 表。
var policies = []Policy{
	{
		Threshold:      7,
		Type:           "7HR",
		LogType:        model.DutyLogAlert7Hr,
		Message:        "7 Hour Alert: Duty nearing shift limit",
		RequiresAction: false,
	},
	{
		Threshold:      8,
		Type:           "8HR",
		LogType:        model.DutyLogAlert8Hr,
		Message:        "8 Hour Alert: Plan relief or confirm continuation",
		RequiresAction: true,
		Options: []ResponseOption{
			{Value: "PLAN_RELIEF", Label: "Plan to get relief"},
			{Value: "RELIEF_NOT_REQUIRED", Label: "Relief not required"},
		},
	},
	{
		Threshold:      9,
		Type:           "9HR",
		LogType:        model.DutyLogAlert9Hr,
		Message:        "9 Hour Alert: Critical - Relief status required",
		RequiresAction: true,
		Options: []ResponseOption{
			{Value: "CREW_RELIEVED", Label: "Crew will be relieved"},
			{Value: "CREW_NOT_BOOKED", Label: "Crew not booked"},
		},
	},
	{
		Threshold:      10,
		Type:           "10HR",
		LogType:        model.DutyLogAlert10Hr,
		Message:        "10 Hour Alert: Extended duty - Action required",
		RequiresAction: true,
		Options: []ResponseOption{
			{Value: "RELIEF_ARRANGED", Label: "Relief arranged"},
			{Value: "CONTINUE_DUTY", Label: "Continue duty"},
		},
	},
	{
		Threshold:      11,
		Type:           "11HR",
		LogType:        model.DutyLogAlert11Hr,
		Message:        "11 Hour Alert: Critical - Immediate action required",
		RequiresAction: true,
		Options: []ResponseOption{
			{Value: "KEEP_ON", Label: "Keep on duty (emergency)"},
			{Value: "CREW_ALREADY_RELIEVED", Label: "Crew already relieved"},
		},
	},
	{
		Threshold:      14,
		Type:           "14HR",
		LogType:        model.DutyLogAlert14Hr,
		Message:        "14 Hour Alert: MAXIMUM LIMIT REACHED - Emergency action required",
		RequiresAction: true,
		Options: []ResponseOption{
			{Value: "EMERGENCY_RELIEF", Label: "Emergency relief required"},
			{Value: "SHIFT_ENDING", Label: "Shift ending now"},
		},
	},
}

// Policies 返回升序的全部策略
func Policies() []Policy {
	return policies
}

// PolicyFor 按阈值小时数查策略
func PolicyFor(threshold int) (Policy, bool) {
	for _, p := range policies {
		if p.Threshold == threshold {
			return p, true
		}
	}
	return Policy{}, false
}

// PolicyForType 按告警类型（如 "9HR"）查策略
func PolicyForType(alertType string) (Policy, bool) {
	for _, p := range policies {
		if p.Type == alertType {
			return p, true
		}
	}
	return Policy{}, false
}

// ValidResponse 校验响应码对该阈值是否合法，7HR 无合法响应
func ValidResponse(threshold int, response string) bool {
	p, ok := PolicyFor(threshold)
	if !ok {
		return false
	}
	for _, opt := range p.Options {
		if opt.Value == response {
			return true
		}
	}
	return false
}
