package loan

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

// ReturnLoanUseCase 归还用例
// 业务规则:
// 1. 只有在借/逾期状态可以归还(归还不是幂等操作,重复归还报错)
// 2. 逾期归还按整天数结算罚款并落库
// 3. 归还与台账回补在同一事务:不会出现"书还了但台账没加回"
type ReturnLoanUseCase struct {
	loanRepo  loan.Repository
	bookRepo  book.Repository
	txManager TxManager
	clk       clock.Clock
	policy    loan.Policy
}

// NewReturnLoanUseCase 创建归还用例
func NewReturnLoanUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	clk clock.Clock,
	policy loan.Policy,
) *ReturnLoanUseCase {
	return &ReturnLoanUseCase{
		loanRepo:  loanRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		clk:       clk,
		policy:    policy,
	}
}

// ReturnLoanRequest 归还请求DTO
type ReturnLoanRequest struct {
	LoanID  uint // 借阅记录ID
	ActorID uint // 操作者用户ID(从JWT中提取)
	IsStaff bool // 操作者是否馆员及以上
}

// Execute 执行归还用例
func (uc *ReturnLoanUseCase) Execute(ctx context.Context, req ReturnLoanRequest) (*LoanResponse, error) {
	now := uc.clk.Now()

	var returned *loan.Loan
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		l, err := uc.loanRepo.FindByID(txCtx, req.LoanID)
		if err != nil {
			return err
		}

		// 普通读者只能归还自己的借阅
		if !req.IsStaff && !l.IsOwnedBy(req.ActorID) {
			return apperrors.ErrForbidden
		}

		// 领域行为:状态校验+罚款结算
		if err := l.Return(now, uc.policy.FineRateCents); err != nil {
			return err
		}

		if err := uc.loanRepo.Update(txCtx, l); err != nil {
			return err
		}

		// 台账回补(同一事务)
		if err := uc.bookRepo.IncrementAvailable(txCtx, l.BookID); err != nil {
			return err
		}

		returned = l
		return nil
	})

	if err != nil {
		return nil, err
	}

	overdueLabel := "false"
	if returned.FineAmount > 0 {
		overdueLabel = "true"
	}
	metrics.IncCounterVec(metrics.LoansReturnedTotal, map[string]string{"overdue": overdueLabel})

	return toLoanResponse(returned, now, uc.policy), nil
}
