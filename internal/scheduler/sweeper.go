package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	appreservation "github.com/xiebiao/library/internal/application/reservation"
	"github.com/xiebiao/library/pkg/metrics"
)

// Sweeper 后台清扫调度器
//
// 设计说明:
// 1. 两个清扫任务各占一个goroutine,按各自的间隔用time.Ticker驱动
// 2. 同一任务内串行执行(ticker天然单飞),两个任务之间互不阻塞
// 3. 单轮失败只记日志和指标,不影响下一轮;候选集下轮重新捞取
// 4. Stop等待在途的清扫轮次跑完再返回,保证优雅停机
type Sweeper struct {
	expireUseCase *appreservation.ExpireReservationsUseCase
	notifyUseCase *appreservation.NotifyAvailableReservationsUseCase

	expiryInterval time.Duration
	notifyInterval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper 创建清扫调度器
func NewSweeper(
	expireUseCase *appreservation.ExpireReservationsUseCase,
	notifyUseCase *appreservation.NotifyAvailableReservationsUseCase,
	expiryInterval, notifyInterval time.Duration,
) *Sweeper {
	if expiryInterval <= 0 {
		expiryInterval = time.Hour
	}
	if notifyInterval <= 0 {
		notifyInterval = 30 * time.Minute
	}
	return &Sweeper{
		expireUseCase:  expireUseCase,
		notifyUseCase:  notifyUseCase,
		expiryInterval: expiryInterval,
		notifyInterval: notifyInterval,
	}
}

// Start 启动两个清扫goroutine
func (s *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(2)
	go s.loop(ctx, "expiry", s.expiryInterval, func(ctx context.Context) (int, error) {
		return s.expireUseCase.Execute(ctx)
	})
	go s.loop(ctx, "notify", s.notifyInterval, func(ctx context.Context) (int, error) {
		return s.notifyUseCase.Execute(ctx)
	})

	log.Printf("清扫调度器已启动: expiry=%s notify=%s", s.expiryInterval, s.notifyInterval)
}

// Stop 停止调度并等待在途轮次结束
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	log.Println("清扫调度器已停止")
}

func (s *Sweeper) loop(ctx context.Context, name string, interval time.Duration, run func(context.Context) (int, error)) {
	defer s.wg.Done()

	// 启动时先跑一轮,积压不用等第一个tick
	s.runOnce(ctx, name, run)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, name, run)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context, name string, run func(context.Context) (int, error)) {
	start := time.Now()
	n, err := run(ctx)
	elapsed := time.Since(start)

	metrics.ObserveHistogramVec(metrics.SweepDuration, map[string]string{"sweep": name}, elapsed.Seconds())

	result := "success"
	if err != nil {
		result = "failure"
		log.Printf("清扫任务[%s]执行失败: %v (耗时%s)", name, err, elapsed)
	} else if n > 0 {
		log.Printf("清扫任务[%s]处理了%d条记录 (耗时%s)", name, n, elapsed)
	}
	metrics.IncCounterVec(metrics.SweepRunsTotal, map[string]string{"sweep": name, "result": result})
}
