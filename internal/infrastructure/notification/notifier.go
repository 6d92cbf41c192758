package notification

import (
	"context"
	"time"
)

// LoanConfirmation 借阅成功通知内容
type LoanConfirmation struct {
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	BookID    uint      `json:"book_id"`
	BookTitle string    `json:"book_title"`
	DueDate   time.Time `json:"due_date"`
}

// ReservationAvailable "有书可借"通知内容
type ReservationAvailable struct {
	UserID        uint      `json:"user_id"`
	UserName      string    `json:"user_name"`
	UserEmail     string    `json:"user_email"`
	BookID        uint      `json:"book_id"`
	BookTitle     string    `json:"book_title"`
	ReservationID uint      `json:"reservation_id"`
	ExpiryDate    time.Time `json:"expiry_date"`
}

// Notifier 通知出口(端口)
// 设计说明:
// 1. 应用层只依赖这个接口,不关心通知走日志、邮件还是消息队列
// 2. 通知是尽力而为的:调用方记录失败日志后继续,绝不因通知失败回滚业务
// 3. 具体驱动由配置选择(notification.driver: log | amqp)
type Notifier interface {
	// SendLoanConfirmation 发送借阅成功通知
	SendLoanConfirmation(ctx context.Context, n LoanConfirmation) error

	// SendReservationAvailable 发送"有书可借"通知
	SendReservationAvailable(ctx context.Context, n ReservationAvailable) error
}
