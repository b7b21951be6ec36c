package service

import (
	"math"
	"time"
)

// Clock 抽象当前时间，便于测试注入
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewRealClock 返回系统时钟
func NewRealClock() Clock { return realClock{} }

// Hours 计算 signOn 到 asOf 的值乘小时数，时钟回拨时钳到 0。
// 阈值比较使用未舍入的原始值。
func Hours(signOn, asOf time.Time) float64 {
	ms := asOf.Sub(signOn).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return float64(ms) / 3600000.0
}

// Round2 展示与落库用的两位小数舍入
func Round2(h float64) float64 {
	return math.Round(h*100) / 100
}
