package notification

import (
	"context"

	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
)

// 通知事件的路由键
// 下游的邮件/短信消费者按路由键订阅自己关心的事件
const (
	routingKeyLoanConfirmation     = "notification.loan.confirmed"
	routingKeyReservationAvailable = "notification.reservation.available"
)

// amqpNotifier RabbitMQ通知驱动
// 设计说明:
// 1. 只负责把通知事件发布到交换机,实际送达(邮件/短信)由独立消费者完成
// 2. 业务进程与通知渠道解耦:邮件服务宕机不影响借书
type amqpNotifier struct {
	publisher *mq.Publisher
	exchange  string
}

// NewAMQPNotifier 创建RabbitMQ通知驱动
func NewAMQPNotifier(url, exchange string) (Notifier, error) {
	publisher, err := mq.NewPublisher(url, exchange, "topic")
	if err != nil {
		return nil, err
	}
	return &amqpNotifier{publisher: publisher, exchange: exchange}, nil
}

// SendLoanConfirmation 发布借阅成功事件
func (n *amqpNotifier) SendLoanConfirmation(ctx context.Context, msg LoanConfirmation) error {
	if err := n.publisher.Publish(routingKeyLoanConfirmation, msg); err != nil {
		return err
	}
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
		"exchange":    n.exchange,
		"routing_key": routingKeyLoanConfirmation,
	})
	return nil
}

// SendReservationAvailable 发布"有书可借"事件
func (n *amqpNotifier) SendReservationAvailable(ctx context.Context, msg ReservationAvailable) error {
	if err := n.publisher.Publish(routingKeyReservationAvailable, msg); err != nil {
		return err
	}
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
		"exchange":    n.exchange,
		"routing_key": routingKeyReservationAvailable,
	})
	return nil
}
