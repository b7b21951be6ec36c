package utils

import "testing"

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"9812345678", true},
		{"+919812345678", true},
		{"6123456789", true},
		{"5123456789", false},  // 首位必须 6-9
		{"981234567", false},   // 少一位
		{"98123456789", false}, // 多一位
		{"+929812345678", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidatePhone(tt.phone); got != tt.want {
			t.Errorf("ValidatePhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}
