package loan

import (
	"context"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// RenewLoanUseCase 续借用例
// 业务规则:
// 1. 只有在借且未逾期的记录可以续借
// 2. 续借次数不超过上限,有未结清罚款不能续借(实体校验)
// 3. 图书有人排队预约时不能续借(把书尽快流转给排队读者)
type RenewLoanUseCase struct {
	loanRepo        loan.Repository
	reservationRepo reservation.Repository
	txManager       TxManager
	clk             clock.Clock
	policy          loan.Policy
}

// NewRenewLoanUseCase 创建续借用例
func NewRenewLoanUseCase(
	loanRepo loan.Repository,
	reservationRepo reservation.Repository,
	txManager TxManager,
	clk clock.Clock,
	policy loan.Policy,
) *RenewLoanUseCase {
	return &RenewLoanUseCase{
		loanRepo:        loanRepo,
		reservationRepo: reservationRepo,
		txManager:       txManager,
		clk:             clk,
		policy:          policy,
	}
}

// RenewLoanRequest 续借请求DTO
type RenewLoanRequest struct {
	LoanID  uint // 借阅记录ID
	ActorID uint // 操作者用户ID(从JWT中提取)
	IsStaff bool // 操作者是否馆员及以上
}

// Execute 执行续借用例
func (uc *RenewLoanUseCase) Execute(ctx context.Context, req RenewLoanRequest) (*LoanResponse, error) {
	now := uc.clk.Now()

	var renewed *loan.Loan
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		l, err := uc.loanRepo.FindByID(txCtx, req.LoanID)
		if err != nil {
			return err
		}

		// 普通读者只能续借自己的借阅
		if !req.IsStaff && !l.IsOwnedBy(req.ActorID) {
			return apperrors.ErrForbidden
		}

		// 有人排队预约时拒绝续借
		reserved, err := uc.reservationRepo.ExistsOpenByBook(txCtx, l.BookID)
		if err != nil {
			return err
		}
		if reserved {
			return loan.ErrRenewalNotAllowed
		}

		// 领域行为:状态/次数/罚款校验+顺延应还日期
		if err := l.Renew(now, uc.policy.MaxRenewals, uc.policy.DurationDays); err != nil {
			return err
		}

		if err := uc.loanRepo.Update(txCtx, l); err != nil {
			return err
		}

		renewed = l
		return nil
	})

	if err != nil {
		return nil, err
	}

	return toLoanResponse(renewed, now, uc.policy), nil
}
