package loan

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/clock"
)

// UpdateLoanStatusUseCase 状态覆盖用例(馆员操作)
// 教学要点:
// 1. 这是馆员的"手工修正"入口:标记逾期、登记遗失、撤销错误借阅
// 2. 状态转换合法性由实体的状态机校验,非法跳转直接报错
// 3. 每种目标状态附带对应的台账动作,保证台账与记录始终一致:
//    RETURNED → 按归还处理(结算罚款+台账回补)
//    LOST     → 副本退出流通(总数-1,可借数同步调整)
//    CANCELLED→ 台账回补(书实际未流出或已收回)
//    OVERDUE  → 仅改状态
type UpdateLoanStatusUseCase struct {
	loanRepo  loan.Repository
	bookRepo  book.Repository
	txManager TxManager
	clk       clock.Clock
	policy    loan.Policy
}

// NewUpdateLoanStatusUseCase 创建状态覆盖用例
func NewUpdateLoanStatusUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	clk clock.Clock,
	policy loan.Policy,
) *UpdateLoanStatusUseCase {
	return &UpdateLoanStatusUseCase{
		loanRepo:  loanRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		clk:       clk,
		policy:    policy,
	}
}

// UpdateLoanStatusRequest 状态覆盖请求DTO
type UpdateLoanStatusRequest struct {
	LoanID uint   // 借阅记录ID
	Status string // 目标状态令牌(RETURNED/OVERDUE/LOST/CANCELLED)
	Notes  string // 备注(追加说明,空则不变)
}

// Execute 执行状态覆盖用例
func (uc *UpdateLoanStatusUseCase) Execute(ctx context.Context, req UpdateLoanStatusRequest) (*LoanResponse, error) {
	now := uc.clk.Now()

	target, err := loan.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var updated *loan.Loan
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		l, err := uc.loanRepo.FindByID(txCtx, req.LoanID)
		if err != nil {
			return err
		}

		switch target {
		case loan.StatusReturned:
			// 与归还用例同一套领域规则(罚款结算+状态机)
			if err := l.Return(now, uc.policy.FineRateCents); err != nil {
				return err
			}
		default:
			if err := l.TransitionTo(target); err != nil {
				return err
			}
		}

		if req.Notes != "" {
			l.Notes = req.Notes
		}

		if err := uc.loanRepo.Update(txCtx, l); err != nil {
			return err
		}

		// 目标状态对应的台账动作(同一事务)
		switch target {
		case loan.StatusReturned, loan.StatusCancelled:
			if err := uc.bookRepo.IncrementAvailable(txCtx, l.BookID); err != nil {
				return err
			}
		case loan.StatusLost:
			// 在借副本遗失:从流通中彻底移除
			if err := uc.bookRepo.MarkCopyLost(txCtx, l.BookID); err != nil {
				return err
			}
		}

		updated = l
		return nil
	})

	if err != nil {
		return nil, err
	}

	return toLoanResponse(updated, now, uc.policy), nil
}
