package loan

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// TestLoan_StateMachine 测试状态机转换规则
func TestLoan_StateMachine(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusActive, StatusReturned, true},
		{StatusActive, StatusOverdue, true},
		{StatusActive, StatusLost, true},
		{StatusOverdue, StatusReturned, true},
		{StatusOverdue, StatusLost, true},
		{StatusActive, StatusCancelled, true},
		{StatusOverdue, StatusActive, false},
		{StatusOverdue, StatusCancelled, false},
		{StatusReturned, StatusActive, false},
		{StatusCancelled, StatusActive, false},
		{StatusReturned, StatusOverdue, false},
		{StatusLost, StatusReturned, false},
		{StatusLost, StatusActive, false},
	}

	for _, c := range cases {
		l := NewLoan(1, 2, testNow, 14)
		l.Status = c.from
		if got := l.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s→%s: expected %v, got %v", c.from, c.to, c.allowed, got)
		}
	}
}

// TestLoan_TransitionTo 测试非法转换返回错误
func TestLoan_TransitionTo(t *testing.T) {
	l := NewLoan(1, 2, testNow, 14)
	l.Status = StatusReturned

	if err := l.TransitionTo(StatusActive); err != ErrInvalidStatusTransition {
		t.Errorf("期望ErrInvalidStatusTransition, got=%v", err)
	}
}

// TestLoan_Return 测试按时归还
func TestLoan_Return(t *testing.T) {
	l := NewLoan(1, 2, testNow, 14)

	returnTime := testNow.AddDate(0, 0, 7)
	if err := l.Return(returnTime, 100); err != nil {
		t.Fatalf("归还失败: %v", err)
	}

	if l.Status != StatusReturned {
		t.Errorf("状态错误: expected=RETURNED, got=%s", l.Status)
	}
	if l.ReturnDate == nil || !l.ReturnDate.Equal(returnTime) {
		t.Errorf("归还日期错误: %v", l.ReturnDate)
	}
	if l.FineAmount != 0 {
		t.Errorf("按时归还不应产生罚款: %d", l.FineAmount)
	}
}

// TestLoan_ReturnOverdue 测试逾期归还结算罚款
func TestLoan_ReturnOverdue(t *testing.T) {
	l := NewLoan(1, 2, testNow, 14)

	// 应还日期后3天整归还,每天100分
	returnTime := l.DueDate.AddDate(0, 0, 3)
	if err := l.Return(returnTime, 100); err != nil {
		t.Fatalf("归还失败: %v", err)
	}

	if l.FineAmount != 300 {
		t.Errorf("罚款金额错误: expected=300, got=%d", l.FineAmount)
	}
	if l.Status != StatusReturned {
		t.Errorf("状态错误: expected=RETURNED, got=%s", l.Status)
	}
}

// TestLoan_ReturnOverdueMarked 测试已标记逾期的记录归还
func TestLoan_ReturnOverdueMarked(t *testing.T) {
	l := NewLoan(1, 2, testNow, 14)
	if err := l.MarkOverdue(); err != nil {
		t.Fatalf("标记逾期失败: %v", err)
	}

	// 逾期不足一天,不计罚款
	returnTime := l.DueDate.Add(6 * time.Hour)
	if err := l.Return(returnTime, 100); err != nil {
		t.Fatalf("归还失败: %v", err)
	}
	if l.FineAmount != 0 {
		t.Errorf("不足一天不应计罚款: %d", l.FineAmount)
	}
}

// TestLoan_ReturnTerminal 测试终态记录不能归还
func TestLoan_ReturnTerminal(t *testing.T) {
	l := NewLoan(1, 2, testNow, 14)
	l.Status = StatusLost

	if err := l.Return(testNow, 100); err != ErrLoanNotReturnable {
		t.Errorf("期望ErrLoanNotReturnable, got=%v", err)
	}
}

// TestLoan_Renew 测试续借
func TestLoan_Renew(t *testing.T) {
	l := NewLoan(1, 2, testNow, 14)
	originalDue := l.DueDate

	// 第一次续借
	if err := l.Renew(testNow.AddDate(0, 0, 5), 2, 14); err != nil {
		t.Fatalf("续借失败: %v", err)
	}
	if !l.DueDate.Equal(originalDue.AddDate(0, 0, 14)) {
		t.Errorf("应还日期错误: %v", l.DueDate)
	}
	if l.RenewalCount != 1 {
		t.Errorf("续借次数错误: %d", l.RenewalCount)
	}

	// 第二次续借
	if err := l.Renew(testNow.AddDate(0, 0, 10), 2, 14); err != nil {
		t.Fatalf("第二次续借失败: %v", err)
	}

	// 第三次续借超出上限
	if err := l.Renew(testNow.AddDate(0, 0, 12), 2, 14); err != ErrRenewalLimitReached {
		t.Errorf("期望ErrRenewalLimitReached, got=%v", err)
	}
}

// TestLoan_RenewOverdue 测试逾期后不能续借
func TestLoan_RenewOverdue(t *testing.T) {
	l := NewLoan(1, 2, testNow, 14)

	// 实际已逾期(未标记)
	if err := l.Renew(l.DueDate.AddDate(0, 0, 1), 2, 14); err != ErrRenewalOverdue {
		t.Errorf("期望ErrRenewalOverdue, got=%v", err)
	}

	// 已标记逾期
	l2 := NewLoan(1, 2, testNow, 14)
	l2.MarkOverdue()
	if err := l2.Renew(testNow, 2, 14); err != ErrRenewalNotAllowed {
		t.Errorf("期望ErrRenewalNotAllowed, got=%v", err)
	}
}

// TestLoan_IsOverdue 测试逾期判定
func TestLoan_IsOverdue(t *testing.T) {
	l := NewLoan(1, 2, testNow, 14)

	if l.IsOverdue(testNow.AddDate(0, 0, 14)) {
		t.Error("应还日期当天不算逾期")
	}
	if !l.IsOverdue(l.DueDate.Add(time.Minute)) {
		t.Error("超过应还日期应判定逾期")
	}

	// 已还记录不逾期
	l.Return(l.DueDate.AddDate(0, 0, 5), 100)
	if l.IsOverdue(l.DueDate.AddDate(0, 0, 10)) {
		t.Error("已还记录不应判定逾期")
	}
}

// TestLoan_DaysOverdue 测试逾期天数计算
func TestLoan_DaysOverdue(t *testing.T) {
	l := NewLoan(1, 2, testNow, 14)

	cases := []struct {
		at       time.Time
		expected int
	}{
		{l.DueDate, 0},
		{l.DueDate.Add(23 * time.Hour), 0},
		{l.DueDate.Add(24 * time.Hour), 1},
		{l.DueDate.AddDate(0, 0, 5), 5},
	}

	for _, c := range cases {
		if got := l.DaysOverdue(c.at); got != c.expected {
			t.Errorf("DaysOverdue(%v) = %d, expected %d", c.at, got, c.expected)
		}
	}
}

// TestParseStatus 测试状态令牌解析
func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusActive, StatusReturned, StatusOverdue, StatusLost, StatusCancelled} {
		parsed, err := ParseStatus(s.String())
		if err != nil {
			t.Fatalf("解析%s失败: %v", s, err)
		}
		if parsed != s {
			t.Errorf("往返解析错误: %s → %s", s, parsed)
		}
	}

	if _, err := ParseStatus("BORROWED"); err != ErrInvalidStatus {
		t.Errorf("期望ErrInvalidStatus, got=%v", err)
	}
}
