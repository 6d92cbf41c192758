package reservation

import (
	"context"
	"errors"
	"log"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/notification"
	"github.com/xiebiao/library/pkg/clock"
	"github.com/xiebiao/library/pkg/metrics"
)

// 单次清扫最多处理的预约数,控制事务大小
const sweepBatchSize = 200

// ExpireReservationsUseCase 预约过期清扫用例
// 设计说明:
// 1. 先在事务外按批取出所有已过保留期的排队预约
// 2. 按图书分组,每本书一个事务:锁图书行→逐条置过期→重排一次队列
// 3. 单本书失败只记日志,不影响其它书的处理,下轮清扫会重试
type ExpireReservationsUseCase struct {
	reservationRepo reservation.Repository
	bookRepo        book.Repository
	txManager       TxManager
	clk             clock.Clock
}

// NewExpireReservationsUseCase 创建预约过期清扫用例
func NewExpireReservationsUseCase(
	reservationRepo reservation.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	clk clock.Clock,
) *ExpireReservationsUseCase {
	return &ExpireReservationsUseCase{
		reservationRepo: reservationRepo,
		bookRepo:        bookRepo,
		txManager:       txManager,
		clk:             clk,
	}
}

// Execute 执行一轮过期清扫,返回成功置为过期的预约数
func (uc *ExpireReservationsUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.clk.Now()

	expired, err := uc.reservationRepo.ListExpired(ctx, now, sweepBatchSize)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	// 按图书分组,每本书只锁一次、重排一次
	byBook := make(map[uint][]*reservation.Reservation)
	for _, r := range expired {
		byBook[r.BookID] = append(byBook[r.BookID], r)
	}

	total := 0
	for bookID, group := range byBook {
		count, err := uc.expireForBook(ctx, bookID, group)
		if err != nil {
			log.Printf("预约过期清扫失败(book_id=%d): %v", bookID, err)
			continue
		}
		total += count
	}

	if total > 0 {
		metrics.AddCounter(metrics.ReservationsExpiredTotal, float64(total))
	}
	return total, nil
}

func (uc *ExpireReservationsUseCase) expireForBook(ctx context.Context, bookID uint, group []*reservation.Reservation) (int, error) {
	count := 0
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.bookRepo.LockByID(txCtx, bookID); err != nil {
			return err
		}

		for _, r := range group {
			// 取锁后重读:清扫取出到加锁之间状态可能已变
			fresh, err := uc.reservationRepo.FindByID(txCtx, r.ID)
			if err != nil {
				if errors.Is(err, reservation.ErrReservationNotFound) {
					continue
				}
				return err
			}
			if !fresh.IsExpired(uc.clk.Now()) {
				continue
			}
			if err := fresh.Expire(); err != nil {
				continue
			}
			if err := uc.reservationRepo.Update(txCtx, fresh); err != nil {
				return err
			}
			count++
		}

		if count > 0 {
			return recalcPriorities(txCtx, uc.reservationRepo, bookID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// NotifyAvailableReservationsUseCase 到书提醒清扫用例
// 业务规则:
// 1. 图书有可借副本时,提醒其每一条尚未提醒过的排队预约
// 2. 提醒成功才落通知时间戳;发送失败不落戳,下轮清扫重试
// 3. 同一预约在再次排队前不会被重复提醒
type NotifyAvailableReservationsUseCase struct {
	reservationRepo reservation.Repository
	bookRepo        book.Repository
	userRepo        user.Repository
	notifier        notification.Notifier
	clk             clock.Clock
}

// NewNotifyAvailableReservationsUseCase 创建到书提醒清扫用例
func NewNotifyAvailableReservationsUseCase(
	reservationRepo reservation.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	notifier notification.Notifier,
	clk clock.Clock,
) *NotifyAvailableReservationsUseCase {
	return &NotifyAvailableReservationsUseCase{
		reservationRepo: reservationRepo,
		bookRepo:        bookRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		clk:             clk,
	}
}

// Execute 执行一轮到书提醒,返回成功提醒的预约数
func (uc *NotifyAvailableReservationsUseCase) Execute(ctx context.Context) (int, error) {
	candidates, err := uc.reservationRepo.ListNotifiable(ctx, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range candidates {
		if err := uc.notifyOne(ctx, r); err != nil {
			log.Printf("到书提醒发送失败(reservation_id=%d): %v", r.ID, err)
			continue
		}
		count++
	}

	if count > 0 {
		metrics.AddCounter(metrics.ReservationsNotifiedTotal, float64(count))
	}
	return count, nil
}

func (uc *NotifyAvailableReservationsUseCase) notifyOne(ctx context.Context, r *reservation.Reservation) error {
	u, err := uc.userRepo.FindByID(ctx, r.UserID)
	if err != nil {
		return err
	}
	b, err := uc.bookRepo.FindByID(ctx, r.BookID)
	if err != nil {
		return err
	}

	if err := uc.notifier.SendReservationAvailable(ctx, notification.ReservationAvailable{
		UserID:        u.ID,
		UserName:      u.FullName(),
		UserEmail:     u.Email,
		BookID:        b.ID,
		BookTitle:     b.Title,
		ReservationID: r.ID,
		ExpiryDate:    r.ExpiryDate,
	}); err != nil {
		return err
	}

	// 发送成功才落戳,保证失败后下轮重试
	r.MarkNotified(uc.clk.Now())
	return uc.reservationRepo.Update(ctx, r)
}
