package reservation

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/reservation"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// CancelReservationUseCase 取消预约用例
// 取消后同一事务内重排该书队列:后面的读者位次前移
type CancelReservationUseCase struct {
	reservationRepo reservation.Repository
	bookRepo        book.Repository
	txManager       TxManager
}

// NewCancelReservationUseCase 创建取消预约用例
func NewCancelReservationUseCase(
	reservationRepo reservation.Repository,
	bookRepo book.Repository,
	txManager TxManager,
) *CancelReservationUseCase {
	return &CancelReservationUseCase{
		reservationRepo: reservationRepo,
		bookRepo:        bookRepo,
		txManager:       txManager,
	}
}

// CancelReservationRequest 取消预约请求DTO
type CancelReservationRequest struct {
	ReservationID uint // 预约ID
	ActorID       uint // 操作者用户ID(从JWT中提取)
	IsStaff       bool // 操作者是否馆员及以上
}

// Execute 执行取消预约用例
func (uc *CancelReservationUseCase) Execute(ctx context.Context, req CancelReservationRequest) (*ReservationResponse, error) {
	var cancelled *reservation.Reservation
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		r, err := uc.reservationRepo.FindByID(txCtx, req.ReservationID)
		if err != nil {
			return err
		}

		// 普通读者只能取消自己的预约
		if !req.IsStaff && !r.IsOwnedBy(req.ActorID) {
			return apperrors.ErrForbidden
		}

		// 先锁图书行再改队列,与创建/重排串行化
		if _, err := uc.bookRepo.LockByID(txCtx, r.BookID); err != nil {
			return err
		}

		if err := r.Cancel(); err != nil {
			return err
		}
		if err := uc.reservationRepo.Update(txCtx, r); err != nil {
			return err
		}

		// 同一事务内重排:后面的读者位次前移
		if err := recalcPriorities(txCtx, uc.reservationRepo, r.BookID); err != nil {
			return err
		}

		cancelled = r
		return nil
	})

	if err != nil {
		return nil, err
	}

	return toReservationResponse(cancelled), nil
}
