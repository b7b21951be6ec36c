package alert

import (
	"CrewWatch/internal/model"
)

// Effect 一条 (阈值, 响应码) 的处置结果
type Effect struct {
	// NewStatus 为空字符串表示状态不变
	NewStatus model.ShiftStatus
	// SetReliefRequired / SetReliefPlanned 为 nil 表示不改动对应标记
	SetReliefRequired *bool
	SetReliefPlanned  *bool
	LogType           model.DutyLogType
}

// Completes 该响应是否使班次进入 COMPLETED
func (e Effect) Completes() bool {
	return e.NewStatus == model.ShiftStatusCompleted
}

type effectKey struct {
	threshold int
	response  string
}

func boolPtr(b bool) *bool { return &b }

// 决策表：响应码 → 状态迁移 + 换乘标记 + 审计日志类型
var effects = map[effectKey]Effect{
	{8, "PLAN_RELIEF"}: {
		NewStatus:         model.ShiftStatusReliefPlanned,
		SetReliefRequired: boolPtr(true),
		SetReliefPlanned:  boolPtr(true),
		LogType:           model.DutyLogReliefPlanned,
	},
	{8, "RELIEF_NOT_REQUIRED"}: {
		SetReliefRequired: boolPtr(false),
		LogType:           model.DutyLogReliefNotRequired,
	},
	{9, "CREW_RELIEVED"}: {
		NewStatus: model.ShiftStatusCompleted,
		LogType:   model.DutyLogCrewRelieved,
	},
	{9, "CREW_NOT_BOOKED"}: {
		LogType: model.DutyLogCrewNotBooked,
	},
	{10, "RELIEF_ARRANGED"}: {
		NewStatus:        model.ShiftStatusReliefPlanned,
		SetReliefPlanned: boolPtr(true),
		LogType:          model.DutyLogReliefPlanned,
	},
	{10, "CONTINUE_DUTY"}: {
		LogType: model.DutyLogKeepOnDuty,
	},
	{11, "KEEP_ON"}: {
		LogType: model.DutyLogKeepOnDuty,
	},
	{11, "CREW_ALREADY_RELIEVED"}: {
		NewStatus: model.ShiftStatusCompleted,
		LogType:   model.DutyLogCrewAlreadyRelieved,
	},
	{14, "EMERGENCY_RELIEF"}: {
		NewStatus:         model.ShiftStatusReliefPlanned,
		SetReliefRequired: boolPtr(true),
		SetReliefPlanned:  boolPtr(true),
		LogType:           model.DutyLogReliefPlanned,
	},
	// SHIFT_ENDING 只记审计，完成需要随后的显式 complete 调用
	{14, "SHIFT_ENDING"}: {
		LogType: model.DutyLogRelease,
	},
}

// EffectFor 查处置结果，响应码不合法时 ok=false
func EffectFor(threshold int, response string) (Effect, bool) {
	e, ok := effects[effectKey{threshold: threshold, response: response}]
	return e, ok
}
