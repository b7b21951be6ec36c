package utils

import (
	"regexp"
)

// 10 位手机号，首位 6-9，可带国家码 +91
var phonePattern = regexp.MustCompile(`^(\+91)?[6-9]\d{9}$`)

func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
