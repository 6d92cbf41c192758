package reservation

import (
	"time"
)

// Status 预约状态
// 教学要点:与借阅状态同样使用int常量+规范令牌,保持API风格一致
type Status int

const (
	StatusPending   Status = 1 // 排队中
	StatusActive    Status = 2 // 已确认(等待取书)
	StatusExpired   Status = 3 // 已过期(清扫任务标记)
	StatusCancelled Status = 4 // 已取消
)

// String 返回规范状态令牌
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusActive:
		return "ACTIVE"
	case StatusExpired:
		return "EXPIRED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus 解析状态令牌(API入参)
func ParseStatus(s string) (Status, error) {
	switch s {
	case "PENDING":
		return StatusPending, nil
	case "ACTIVE":
		return StatusActive, nil
	case "EXPIRED":
		return StatusExpired, nil
	case "CANCELLED":
		return StatusCancelled, nil
	default:
		return 0, ErrInvalidStatus
	}
}

// IsOpen 是否占用队列(排队中/已确认)
// 同一读者对同一本书最多只能有一条占用队列的预约
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusActive
}

// Reservation 预约实体(聚合根)
// 业务规则:
// 1. Priority是同一本书排队队列中的位次,从1开始,数字越小越先得
// 2. ExpiryDate到期未确认的排队预约由清扫任务标记为过期
// 3. NotifiedAt记录最近一次"有书可借"通知时间,用于去重
type Reservation struct {
	ID              uint
	UserID          uint       // 读者用户ID
	BookID          uint       // 图书ID
	ReservationDate time.Time  // 预约时间
	ExpiryDate      time.Time  // 排队有效期
	Status          Status     // 预约状态
	Priority        int        // 队列位次(1-based)
	NotifiedAt      *time.Time // 最近通知时间(未通知为nil)
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewReservation 创建新预约(工厂方法)
// priority由调用方在持有图书行锁的前提下按"当前排队数+1"计算
func NewReservation(userID, bookID uint, now time.Time, expireAfter time.Duration, priority int) *Reservation {
	return &Reservation{
		UserID:          userID,
		BookID:          bookID,
		ReservationDate: now,
		ExpiryDate:      now.Add(expireAfter),
		Status:          StatusPending,
		Priority:        priority,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
func (r *Reservation) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusPending:   {StatusActive, StatusExpired, StatusCancelled}, // 排队→确认/过期/取消
		StatusActive:    {StatusCancelled},                              // 已确认→取消
		StatusExpired:   {},                                             // 终态
		StatusCancelled: {},                                             // 终态
	}

	allowedTargets, exists := transitions[r.Status]
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
func (r *Reservation) TransitionTo(target Status) error {
	if !r.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	r.Status = target
	r.UpdatedAt = time.Now()
	return nil
}

// Cancel 取消预约(领域行为)
// 业务规则:只有排队中/已确认的预约可以取消
func (r *Reservation) Cancel() error {
	if !r.Status.IsOpen() {
		return ErrNotCancellable
	}
	return r.TransitionTo(StatusCancelled)
}

// Confirm 确认预约(领域行为)
// 业务规则:只有排队中的预约可以确认,确认同时视为已通知
func (r *Reservation) Confirm(now time.Time) error {
	if r.Status != StatusPending {
		return ErrNotConfirmable
	}
	if err := r.TransitionTo(StatusActive); err != nil {
		return err
	}
	notifiedAt := now
	r.NotifiedAt = &notifiedAt
	return nil
}

// Expire 标记过期(清扫任务)
func (r *Reservation) Expire() error {
	if r.Status != StatusPending {
		return ErrInvalidStatusTransition
	}
	return r.TransitionTo(StatusExpired)
}

// IsExpired 按有效期即时判定是否应当过期
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.Status == StatusPending && now.After(r.ExpiryDate)
}

// NeedsNotification 是否需要发送"有书可借"通知
// 去重规则:从未通知过,或上次通知早于本次预约时间(换书重约后重新通知)
func (r *Reservation) NeedsNotification() bool {
	if r.Status != StatusPending {
		return false
	}
	return r.NotifiedAt == nil || r.NotifiedAt.Before(r.ReservationDate)
}

// MarkNotified 记录通知时间(状态不变,确认仍需读者/馆员显式操作)
func (r *Reservation) MarkNotified(now time.Time) {
	notifiedAt := now
	r.NotifiedAt = &notifiedAt
	r.UpdatedAt = now
}

// IsOwnedBy 检查预约是否属于指定用户
func (r *Reservation) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}
