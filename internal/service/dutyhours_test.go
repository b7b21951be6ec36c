package service

import (
	"testing"
	"time"
)

func TestHours(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		asOf time.Time
		want float64
	}{
		{"zero elapsed", signOn, 0},
		{"exactly eight hours", signOn.Add(8 * time.Hour), 8},
		{"partial hour", signOn.Add(8*time.Hour + 4*time.Minute + 48*time.Second), 8.08},
		{"clock went backwards", signOn.Add(-30 * time.Minute), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hours(signOn, tt.asOf)
			if Round2(got) != tt.want {
				t.Errorf("Hours() = %v (rounded %v), want %v", got, Round2(got), tt.want)
			}
		})
	}
}

func TestHoursUnroundedForThresholds(t *testing.T) {
	signOn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)

	// 6:59:59 不应达到 7 小时阈值，舍入值会误判
	asOf := signOn.Add(7*time.Hour - time.Second)
	if got := Hours(signOn, asOf); got >= 7 {
		t.Errorf("Hours() = %v, want < 7 just before the threshold", got)
	}

	asOf = signOn.Add(7 * time.Hour)
	if got := Hours(signOn, asOf); got < 7 {
		t.Errorf("Hours() = %v, want >= 7 at the threshold", got)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{8.084999, 8.08},
		{7.125, 7.13}, // 舍入到最近，正好一半向上
		{13.999, 14},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
