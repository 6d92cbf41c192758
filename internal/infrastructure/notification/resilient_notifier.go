package notification

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/metrics"
)

// resilientNotifier 带熔断保护的通知装饰器
// 教学要点:
// 1. 装饰器模式:包装任意Notifier实现,对调用方透明
// 2. 通知渠道持续故障时熔断,避免每次借书都等待超时
// 3. 熔断状态变化同步到Prometheus指标
type resilientNotifier struct {
	inner   Notifier
	breaker *circuitbreaker.CircuitBreaker
}

// newResilientNotifier 用熔断器包装通知驱动
func newResilientNotifier(inner Notifier) Notifier {
	cb := circuitbreaker.NewCircuitBreaker("notifier", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		metrics.SetGaugeVec(metrics.CircuitBreakerState,
			map[string]string{"name": name}, float64(to))
	})

	return &resilientNotifier{inner: inner, breaker: cb}
}

// SendLoanConfirmation 发送借阅成功通知(熔断保护)
func (n *resilientNotifier) SendLoanConfirmation(ctx context.Context, msg LoanConfirmation) error {
	return n.breaker.Execute(func() error {
		return n.inner.SendLoanConfirmation(ctx, msg)
	})
}

// SendReservationAvailable 发送"有书可借"通知(熔断保护)
func (n *resilientNotifier) SendReservationAvailable(ctx context.Context, msg ReservationAvailable) error {
	return n.breaker.Execute(func() error {
		return n.inner.SendReservationAvailable(ctx, msg)
	})
}

// New 根据配置创建通知出口
// driver=log时不加熔断(本地日志不会故障),amqp驱动带熔断保护
func New(cfg config.NotificationConfig) (Notifier, error) {
	switch cfg.Driver {
	case "amqp":
		inner, err := NewAMQPNotifier(cfg.AMQPURL, cfg.Exchange)
		if err != nil {
			return nil, err
		}
		return newResilientNotifier(inner), nil
	default:
		return NewLogNotifier(), nil
	}
}
