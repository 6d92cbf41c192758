package clock

import "time"

// Clock 时钟抽象
// 设计说明：
// 1. 借阅到期、预约过期等大量逻辑依赖"当前时间"
// 2. 注入Clock接口后，测试可以用假时钟精确控制时间推进
// 3. 生产代码统一使用System()，禁止直接调用time.Now()
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System 系统时钟
func System() Clock {
	return systemClock{}
}

// Fake 假时钟（仅用于测试）
type Fake struct {
	current time.Time
}

// NewFake 创建假时钟
func NewFake(t time.Time) *Fake {
	return &Fake{current: t}
}

func (f *Fake) Now() time.Time {
	return f.current
}

// Advance 推进时间
func (f *Fake) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}

// Set 设置当前时间
func (f *Fake) Set(t time.Time) {
	f.current = t
}
