package loan

import (
	"context"

	"github.com/xiebiao/library/internal/domain/loan"
)

// DeleteLoanUseCase 清除借阅记录用例(馆员操作)
// 业务规则:只有终态(已还/遗失/已取消)记录可以删除,
// 在借/逾期记录还在台账里,删除会造成账实不符
type DeleteLoanUseCase struct {
	loanRepo loan.Repository
}

// NewDeleteLoanUseCase 创建清除用例
func NewDeleteLoanUseCase(loanRepo loan.Repository) *DeleteLoanUseCase {
	return &DeleteLoanUseCase{loanRepo: loanRepo}
}

// Execute 执行清除用例
func (uc *DeleteLoanUseCase) Execute(ctx context.Context, loanID uint) error {
	l, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return err
	}

	if !l.Status.IsTerminal() {
		return loan.ErrLoanNotDeletable
	}

	return uc.loanRepo.Delete(ctx, loanID)
}
