package reservation

import (
	"context"
	"log"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/notification"
	"github.com/xiebiao/library/pkg/clock"
)

// ConfirmReservationUseCase 确认预约用例
// 业务规则:
// 1. 只有排队中的预约可以确认
// 2. 图书当前无可借副本时不能确认(先到书再确认)
// 3. 确认后预约转为已确认并记录通知时间,队列同步重排
type ConfirmReservationUseCase struct {
	reservationRepo reservation.Repository
	bookRepo        book.Repository
	userRepo        user.Repository
	txManager       TxManager
	notifier        notification.Notifier
	clk             clock.Clock
}

// NewConfirmReservationUseCase 创建确认预约用例
func NewConfirmReservationUseCase(
	reservationRepo reservation.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	txManager TxManager,
	notifier notification.Notifier,
	clk clock.Clock,
) *ConfirmReservationUseCase {
	return &ConfirmReservationUseCase{
		reservationRepo: reservationRepo,
		bookRepo:        bookRepo,
		userRepo:        userRepo,
		txManager:       txManager,
		notifier:        notifier,
		clk:             clk,
	}
}

// Execute 执行确认预约用例
func (uc *ConfirmReservationUseCase) Execute(ctx context.Context, reservationID uint) (*ReservationResponse, error) {
	now := uc.clk.Now()

	var confirmed *reservation.Reservation
	var reader *user.User
	var reserved *book.Book

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		r, err := uc.reservationRepo.FindByID(txCtx, reservationID)
		if err != nil {
			return err
		}

		// 锁定图书行:确认与创建/取消/重排串行化
		b, err := uc.bookRepo.LockByID(txCtx, r.BookID)
		if err != nil {
			return err
		}

		if !b.IsAvailable() {
			return book.ErrBookNotAvailable
		}

		if err := r.Confirm(now); err != nil {
			return err
		}
		if err := uc.reservationRepo.Update(txCtx, r); err != nil {
			return err
		}

		// 确认的预约离开排队队列,后面的读者位次前移
		if err := recalcPriorities(txCtx, uc.reservationRepo, r.BookID); err != nil {
			return err
		}

		u, err := uc.userRepo.FindByID(txCtx, r.UserID)
		if err != nil {
			return err
		}

		confirmed = r
		reader = u
		reserved = b
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 尽力而为通知:失败只记日志
	if err := uc.notifier.SendReservationAvailable(ctx, notification.ReservationAvailable{
		UserID:        reader.ID,
		UserName:      reader.FullName(),
		UserEmail:     reader.Email,
		BookID:        reserved.ID,
		BookTitle:     reserved.Title,
		ReservationID: confirmed.ID,
		ExpiryDate:    confirmed.ExpiryDate,
	}); err != nil {
		log.Printf("预约确认通知发送失败(reservation_id=%d): %v", confirmed.ID, err)
	}

	return toReservationResponse(confirmed), nil
}
