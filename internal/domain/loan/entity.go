package loan

import (
	"time"
)

// Status 借阅状态
// 教学要点:
// 1. 使用int类型而非string(节省存储空间,便于索引)
// 2. 定义为类型别名,便于添加方法
// 3. String()返回规范令牌(API与日志统一使用英文状态名)
type Status int

const (
	StatusActive    Status = 1 // 在借
	StatusReturned  Status = 2 // 已还
	StatusOverdue   Status = 3 // 逾期(由馆员标记或按应还日期即时判定)
	StatusLost      Status = 4 // 遗失
	StatusCancelled Status = 5 // 已取消(馆员撤销错误登记)
)

// String 实现Stringer接口,返回规范状态令牌
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusReturned:
		return "RETURNED"
	case StatusOverdue:
		return "OVERDUE"
	case StatusLost:
		return "LOST"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus 解析状态令牌(API入参)
func ParseStatus(s string) (Status, error) {
	switch s {
	case "ACTIVE":
		return StatusActive, nil
	case "RETURNED":
		return StatusReturned, nil
	case "OVERDUE":
		return StatusOverdue, nil
	case "LOST":
		return StatusLost, nil
	case "CANCELLED":
		return StatusCancelled, nil
	default:
		return 0, ErrInvalidStatus
	}
}

// IsTerminal 是否终态(已还/遗失/已取消)
// 终态借阅不再参与台账,允许被删除
func (s Status) IsTerminal() bool {
	return s == StatusReturned || s == StatusLost || s == StatusCancelled
}

// Loan 借阅实体(聚合根)
// 教学要点:
// 1. Loan记录一位读者对一本书的一次借阅全过程
// 2. FineAmount使用int64存储"分"为单位(避免浮点数精度问题)
// 3. 不直接关联User/Book对象,只保存ID(避免跨聚合引用)
// 4. OVERDUE是显式状态:馆员通过状态覆盖操作把逾期的在借记录标出来;
//    在此之前,逾期与否由IsOverdue(now)按DueDate即时判定
type Loan struct {
	ID           uint
	UserID       uint       // 读者用户ID
	BookID       uint       // 图书ID
	LoanDate     time.Time  // 借出日期
	DueDate      time.Time  // 应还日期
	ReturnDate   *time.Time // 实际归还日期(未还为nil)
	Status       Status     // 借阅状态
	RenewalCount int        // 已续借次数
	FineAmount   int64      // 罚款金额(分),归还时结算
	Notes        string     // 馆员备注
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLoan 创建新借阅(工厂方法)
// 教学要点:
// 1. 工厂方法封装创建逻辑,保证实体的有效性
// 2. now由调用方注入(时钟可注入,测试可控)
// 3. 初始状态为Active(在借)
func NewLoan(userID, bookID uint, now time.Time, durationDays int) *Loan {
	return &Loan{
		UserID:    userID,
		BookID:    bookID,
		LoanDate:  now,
		DueDate:   now.AddDate(0, 0, durationDays),
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
// 教学要点:状态机设计,防止非法状态跳转
// 例如:不能把"已还"的借阅改回"在借"
func (l *Loan) CanTransitionTo(target Status) bool {
	// 定义合法的状态转换规则
	transitions := map[Status][]Status{
		StatusActive:    {StatusReturned, StatusOverdue, StatusLost, StatusCancelled}, // 在借→已还/逾期/遗失/取消
		StatusOverdue:   {StatusReturned, StatusLost},                                 // 逾期→已还/遗失
		StatusReturned:  {},                                                           // 已还→无后续状态(终态)
		StatusLost:      {},                                                           // 遗失→无后续状态(终态)
		StatusCancelled: {},                                                           // 已取消→无后续状态(终态)
	}

	allowedTargets, exists := transitions[l.Status]
	if !exists {
		return false
	}

	for _, allowed := range allowedTargets {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
// 教学要点:
// 1. 先检查是否可以转换(业务规则校验)
// 2. 转换成功更新UpdatedAt(审计追踪)
func (l *Loan) TransitionTo(target Status) error {
	if !l.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	l.Status = target
	l.UpdatedAt = time.Now()
	return nil
}

// IsOverdue 按应还日期即时判定是否逾期
// 已显式标记为OVERDUE的记录恒为逾期;终态记录不逾期
func (l *Loan) IsOverdue(now time.Time) bool {
	if l.Status == StatusOverdue {
		return true
	}
	if l.Status != StatusActive {
		return false
	}
	return now.After(l.DueDate)
}

// DaysOverdue 逾期整天数(不足一天不计)
func (l *Loan) DaysOverdue(now time.Time) int {
	if !now.After(l.DueDate) {
		return 0
	}
	return int(now.Sub(l.DueDate).Hours() / 24)
}

// Return 归还(领域行为)
// 业务规则:
// 1. 只有在借/逾期状态可以归还
// 2. 逾期归还按整天数结算罚款(fineRateCents:分/天)
func (l *Loan) Return(now time.Time, fineRateCents int64) error {
	if l.Status != StatusActive && l.Status != StatusOverdue {
		return ErrLoanNotReturnable
	}

	if days := l.DaysOverdue(now); days > 0 {
		l.FineAmount = int64(days) * fineRateCents
	}

	returnDate := now
	l.ReturnDate = &returnDate
	return l.TransitionTo(StatusReturned)
}

// Renew 续借(领域行为)
// 业务规则:
// 1. 只有在借状态可以续借,逾期(含未标记的实际逾期)不能续借
// 2. 续借次数不能超过上限
// 3. 有未结清罚款不能续借
// 4. 新应还日期 = 原应还日期 + 借期天数
// 注意:图书是否有人排队预约需查询预约仓储,该校验在应用层完成
func (l *Loan) Renew(now time.Time, maxRenewals, durationDays int) error {
	if l.Status != StatusActive {
		return ErrRenewalNotAllowed
	}
	if now.After(l.DueDate) {
		return ErrRenewalOverdue
	}
	if l.RenewalCount >= maxRenewals {
		return ErrRenewalLimitReached
	}
	if l.FineAmount > 0 {
		return ErrRenewalNotAllowed
	}

	l.DueDate = l.DueDate.AddDate(0, 0, durationDays)
	l.RenewalCount++
	l.UpdatedAt = time.Now()
	return nil
}

// MarkOverdue 标记逾期(馆员状态覆盖操作)
func (l *Loan) MarkOverdue() error {
	return l.TransitionTo(StatusOverdue)
}

// MarkLost 标记遗失(领域行为)
func (l *Loan) MarkLost() error {
	return l.TransitionTo(StatusLost)
}

// IsOwnedBy 检查借阅是否属于指定用户
// 教学要点:权限校验,防止读者访问他人借阅记录
func (l *Loan) IsOwnedBy(userID uint) bool {
	return l.UserID == userID
}
