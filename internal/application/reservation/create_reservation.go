package reservation

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

// CreateReservationUseCase 创建预约用例
// 教学要点:
// 1. 位次 = 当前排队数 + 1,必须在持有图书行锁的前提下计算,
//    否则两个并发预约会拿到同一个位次
// 2. 同一读者对同一本书最多一条占用队列的预约
// 3. 已借出该书的读者无需预约
type CreateReservationUseCase struct {
	reservationRepo reservation.Repository
	loanRepo        loan.Repository
	bookRepo        book.Repository
	userRepo        user.Repository
	txManager       TxManager
	clk             clock.Clock
	expireAfter     time.Duration
}

// NewCreateReservationUseCase 创建预约用例
func NewCreateReservationUseCase(
	reservationRepo reservation.Repository,
	loanRepo loan.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	txManager TxManager,
	clk clock.Clock,
	expireAfter time.Duration,
) *CreateReservationUseCase {
	return &CreateReservationUseCase{
		reservationRepo: reservationRepo,
		loanRepo:        loanRepo,
		bookRepo:        bookRepo,
		userRepo:        userRepo,
		txManager:       txManager,
		clk:             clk,
		expireAfter:     expireAfter,
	}
}

// CreateReservationRequest 预约请求DTO
type CreateReservationRequest struct {
	UserID uint // 读者用户ID
	BookID uint // 图书ID
}

// Execute 执行创建预约用例
func (uc *CreateReservationUseCase) Execute(ctx context.Context, req CreateReservationRequest) (*ReservationResponse, error) {
	now := uc.clk.Now()

	var created *reservation.Reservation
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 读者校验
		u, err := uc.userRepo.FindByID(txCtx, req.UserID)
		if err != nil {
			return err
		}
		if !u.IsActive {
			return apperrors.New(apperrors.ErrCodeUserInactive, "账号已停用，无法预约")
		}

		// 2. 锁定图书行:同一本书的预约创建/取消/重排在这里串行化
		if _, err := uc.bookRepo.LockByID(txCtx, req.BookID); err != nil {
			return err
		}

		// 3. 重复预约校验
		exists, err := uc.reservationRepo.ExistsOpenForBook(txCtx, req.UserID, req.BookID)
		if err != nil {
			return err
		}
		if exists {
			return reservation.ErrDuplicateReservation
		}

		// 4. 已借出该书的读者无需预约
		borrowed, err := uc.loanRepo.ExistsActiveForBook(txCtx, req.UserID, req.BookID)
		if err != nil {
			return err
		}
		if borrowed {
			return reservation.ErrBookOnLoan
		}

		// 5. 计算位次并入队(行锁保证位次不会重复)
		pending, err := uc.reservationRepo.CountPendingByBook(txCtx, req.BookID)
		if err != nil {
			return err
		}

		r := reservation.NewReservation(req.UserID, req.BookID, now, uc.expireAfter, int(pending)+1)
		if err := uc.reservationRepo.Create(txCtx, r); err != nil {
			return err
		}

		created = r
		return nil
	})

	if err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.ReservationsCreatedTotal)
	return toReservationResponse(created), nil
}
