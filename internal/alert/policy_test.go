package alert

import (
	"testing"

	"CrewWatch/internal/model"
)

func TestPoliciesAscending(t *testing.T) {
	policies := Policies()

	want := []int{7, 8, 9, 10, 11, 14}
	if len(policies) != len(want) {
		t.Fatalf("policies = %d, want %d", len(policies), len(want))
	}
	for i, p := range policies {
		if p.Threshold != want[i] {
			t.Errorf("policies[%d].Threshold = %d, want %d", i, p.Threshold, want[i])
		}
	}

	// 扫描器依赖升序做 catch-up
	for i := 1; i < len(policies); i++ {
		if policies[i].Threshold <= policies[i-1].Threshold {
			t.Fatalf("thresholds not strictly ascending at index %d", i)
		}
	}
}

func TestPolicyLookups(t *testing.T) {
	if _, ok := PolicyFor(12); ok {
		t.Error("PolicyFor(12) should not exist")
	}
	if _, ok := PolicyForType("12HR"); ok {
		t.Error(`PolicyForType("12HR") should not exist`)
	}

	p, ok := PolicyForType("9HR")
	if !ok || p.Threshold != 9 {
		t.Errorf(`PolicyForType("9HR") = %+v, ok=%v`, p, ok)
	}
	if !p.RequiresAction {
		t.Error("9HR must require action")
	}
}

func TestValidResponse(t *testing.T) {
	tests := []struct {
		threshold int
		response  string
		want      bool
	}{
		{7, "PLAN_RELIEF", false}, // 7HR 纯通知，无合法响应
		{8, "PLAN_RELIEF", true},
		{8, "RELIEF_NOT_REQUIRED", true},
		{8, "CREW_RELIEVED", false}, // 响应码不跨阈值
		{9, "CREW_RELIEVED", true},
		{9, "CREW_NOT_BOOKED", true},
		{10, "RELIEF_ARRANGED", true},
		{10, "CONTINUE_DUTY", true},
		{11, "KEEP_ON", true},
		{11, "CREW_ALREADY_RELIEVED", true},
		{14, "EMERGENCY_RELIEF", true},
		{14, "SHIFT_ENDING", true},
		{12, "PLAN_RELIEF", false},
	}

	for _, tt := range tests {
		if got := ValidResponse(tt.threshold, tt.response); got != tt.want {
			t.Errorf("ValidResponse(%d, %q) = %v, want %v", tt.threshold, tt.response, got, tt.want)
		}
	}
}

func TestEffectFor(t *testing.T) {
	// 每个合法响应都必须有处置结果
	for _, p := range Policies() {
		for _, opt := range p.Options {
			if _, ok := EffectFor(p.Threshold, opt.Value); !ok {
				t.Errorf("no effect for (%d, %s)", p.Threshold, opt.Value)
			}
		}
	}

	tests := []struct {
		threshold int
		response  string
		completes bool
		newStatus model.ShiftStatus
	}{
		{9, "CREW_RELIEVED", true, model.ShiftStatusCompleted},
		{11, "CREW_ALREADY_RELIEVED", true, model.ShiftStatusCompleted},
		{8, "PLAN_RELIEF", false, model.ShiftStatusReliefPlanned},
		{10, "RELIEF_ARRANGED", false, model.ShiftStatusReliefPlanned},
		{14, "EMERGENCY_RELIEF", false, model.ShiftStatusReliefPlanned},
		{9, "CREW_NOT_BOOKED", false, ""},
		{11, "KEEP_ON", false, ""},
		{14, "SHIFT_ENDING", false, ""}, // 完成仍需显式签退
	}

	for _, tt := range tests {
		e, ok := EffectFor(tt.threshold, tt.response)
		if !ok {
			t.Errorf("EffectFor(%d, %q) missing", tt.threshold, tt.response)
			continue
		}
		if e.Completes() != tt.completes {
			t.Errorf("EffectFor(%d, %q).Completes() = %v, want %v", tt.threshold, tt.response, e.Completes(), tt.completes)
		}
		if e.NewStatus != tt.newStatus {
			t.Errorf("EffectFor(%d, %q).NewStatus = %q, want %q", tt.threshold, tt.response, e.NewStatus, tt.newStatus)
		}
	}

	if _, ok := EffectFor(8, "CREW_RELIEVED"); ok {
		t.Error("effect table must not cross thresholds")
	}
}
