package biz

import "time"

// Clock 提供当前时间，所有生命周期判定都以注入的 Clock 为准
// 每个操作在入口取一次 now，保证同一次评估内时间一致
type Clock interface {
	Now() time.Time
}

// RealClock 生产环境时钟
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// NewClock 创建生产环境时钟
func NewClock() Clock {
	return RealClock{}
}

// FixedClock 固定时钟，用于测试
type FixedClock struct {
	FixedTime time.Time
}

func (f FixedClock) Now() time.Time {
	return f.FixedTime
}
