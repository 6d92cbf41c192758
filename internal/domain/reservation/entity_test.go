package reservation

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// TestReservation_New 测试工厂方法
func TestReservation_New(t *testing.T) {
	r := NewReservation(1, 2, testNow, 48*time.Hour, 3)

	if r.Status != StatusPending {
		t.Errorf("初始状态错误: %s", r.Status)
	}
	if !r.ExpiryDate.Equal(testNow.Add(48 * time.Hour)) {
		t.Errorf("有效期错误: %v", r.ExpiryDate)
	}
	if r.Priority != 3 {
		t.Errorf("位次错误: %d", r.Priority)
	}
	if r.NotifiedAt != nil {
		t.Error("新预约不应有通知时间")
	}
}

// TestReservation_StateMachine 测试状态机转换规则
func TestReservation_StateMachine(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusActive, true},
		{StatusPending, StatusExpired, true},
		{StatusPending, StatusCancelled, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusExpired, false},
		{StatusActive, StatusPending, false},
		{StatusExpired, StatusPending, false},
		{StatusCancelled, StatusActive, false},
	}

	for _, c := range cases {
		r := NewReservation(1, 2, testNow, 48*time.Hour, 1)
		r.Status = c.from
		if got := r.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s→%s: expected %v, got %v", c.from, c.to, c.allowed, got)
		}
	}
}

// TestReservation_Cancel 测试取消
func TestReservation_Cancel(t *testing.T) {
	r := NewReservation(1, 2, testNow, 48*time.Hour, 1)
	if err := r.Cancel(); err != nil {
		t.Fatalf("排队中取消失败: %v", err)
	}
	if r.Status != StatusCancelled {
		t.Errorf("状态错误: %s", r.Status)
	}

	// 已确认也可取消
	r2 := NewReservation(1, 2, testNow, 48*time.Hour, 1)
	r2.Confirm(testNow)
	if err := r2.Cancel(); err != nil {
		t.Fatalf("已确认取消失败: %v", err)
	}

	// 终态不能取消
	if err := r.Cancel(); err != ErrNotCancellable {
		t.Errorf("期望ErrNotCancellable, got=%v", err)
	}
}

// TestReservation_Confirm 测试确认
func TestReservation_Confirm(t *testing.T) {
	r := NewReservation(1, 2, testNow, 48*time.Hour, 1)

	confirmTime := testNow.Add(2 * time.Hour)
	if err := r.Confirm(confirmTime); err != nil {
		t.Fatalf("确认失败: %v", err)
	}
	if r.Status != StatusActive {
		t.Errorf("状态错误: %s", r.Status)
	}
	if r.NotifiedAt == nil || !r.NotifiedAt.Equal(confirmTime) {
		t.Errorf("确认应记录通知时间: %v", r.NotifiedAt)
	}

	// 重复确认
	if err := r.Confirm(confirmTime); err != ErrNotConfirmable {
		t.Errorf("期望ErrNotConfirmable, got=%v", err)
	}
}

// TestReservation_Expire 测试过期判定与标记
func TestReservation_Expire(t *testing.T) {
	r := NewReservation(1, 2, testNow, 48*time.Hour, 1)

	if r.IsExpired(testNow.Add(48 * time.Hour)) {
		t.Error("有效期截止时刻不算过期")
	}
	if !r.IsExpired(testNow.Add(48*time.Hour + time.Minute)) {
		t.Error("超过有效期应判定过期")
	}

	if err := r.Expire(); err != nil {
		t.Fatalf("标记过期失败: %v", err)
	}
	if r.Status != StatusExpired {
		t.Errorf("状态错误: %s", r.Status)
	}

	// 已确认的预约不参与过期
	r2 := NewReservation(1, 2, testNow, 48*time.Hour, 1)
	r2.Confirm(testNow)
	if r2.IsExpired(testNow.Add(72 * time.Hour)) {
		t.Error("已确认预约不应判定过期")
	}
	if err := r2.Expire(); err != ErrInvalidStatusTransition {
		t.Errorf("期望ErrInvalidStatusTransition, got=%v", err)
	}
}

// TestReservation_NeedsNotification 测试通知去重
func TestReservation_NeedsNotification(t *testing.T) {
	r := NewReservation(1, 2, testNow, 48*time.Hour, 1)

	// 从未通知过
	if !r.NeedsNotification() {
		t.Error("未通知过的排队预约应需要通知")
	}

	// 通知后不再重复
	r.MarkNotified(testNow.Add(time.Hour))
	if r.NeedsNotification() {
		t.Error("通知后不应重复通知")
	}

	// 旧通知时间早于预约时间(重约场景)
	old := testNow.Add(-time.Hour)
	r.NotifiedAt = &old
	if !r.NeedsNotification() {
		t.Error("通知时间早于预约时间应重新通知")
	}

	// 非排队状态不通知
	r2 := NewReservation(1, 2, testNow, 48*time.Hour, 1)
	r2.Cancel()
	if r2.NeedsNotification() {
		t.Error("已取消预约不应通知")
	}
}

// TestParseStatus 测试状态令牌解析
func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusActive, StatusExpired, StatusCancelled} {
		parsed, err := ParseStatus(s.String())
		if err != nil {
			t.Fatalf("解析%s失败: %v", s, err)
		}
		if parsed != s {
			t.Errorf("往返解析错误: %s → %s", s, parsed)
		}
	}

	if _, err := ParseStatus("RETURNED"); err != ErrInvalidStatus {
		t.Errorf("期望ErrInvalidStatus, got=%v", err)
	}
}
