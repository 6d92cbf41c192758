package notification

import (
	"context"
	"log"
)

// logNotifier 日志通知驱动
// 开发/测试环境的默认驱动:把通知内容打到日志,不依赖外部服务
type logNotifier struct{}

// NewLogNotifier 创建日志通知驱动
func NewLogNotifier() Notifier {
	return &logNotifier{}
}

// SendLoanConfirmation 发送借阅成功通知
func (n *logNotifier) SendLoanConfirmation(ctx context.Context, msg LoanConfirmation) error {
	log.Printf("[通知] 借阅成功: 用户%s(%d) 借出《%s》(%d), 应还日期 %s",
		msg.UserName, msg.UserID, msg.BookTitle, msg.BookID,
		msg.DueDate.Format("2006-01-02"))
	return nil
}

// SendReservationAvailable 发送"有书可借"通知
func (n *logNotifier) SendReservationAvailable(ctx context.Context, msg ReservationAvailable) error {
	log.Printf("[通知] 预约到书: 用户%s(%d) 预约的《%s》(%d)现在可借, 请在 %s 前确认",
		msg.UserName, msg.UserID, msg.BookTitle, msg.BookID,
		msg.ExpiryDate.Format("2006-01-02 15:04"))
	return nil
}
