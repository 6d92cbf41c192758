package loan

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/notification"
	"github.com/xiebiao/library/pkg/clock"
	"github.com/xiebiao/library/pkg/metrics"
)

// CreateLoanUseCase 创建借阅用例
// 教学要点:这是整个项目最核心的用例之一
// 涉及:事务处理、并发控制、资格校验、尽力而为通知
type CreateLoanUseCase struct {
	loanRepo  loan.Repository
	bookRepo  book.Repository
	userRepo  user.Repository
	txManager TxManager
	notifier  notification.Notifier
	clk       clock.Clock
	policy    loan.Policy
}

// NewCreateLoanUseCase 创建借阅用例
func NewCreateLoanUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	txManager TxManager,
	notifier notification.Notifier,
	clk clock.Clock,
	policy loan.Policy,
) *CreateLoanUseCase {
	return &CreateLoanUseCase{
		loanRepo:  loanRepo,
		bookRepo:  bookRepo,
		userRepo:  userRepo,
		txManager: txManager,
		notifier:  notifier,
		clk:       clk,
		policy:    policy,
	}
}

// CreateLoanRequest 借阅请求DTO
type CreateLoanRequest struct {
	UserID   uint       // 读者用户ID
	BookID   uint       // 图书ID
	LoanDate *time.Time // 指定借出日期(nil则取当前时间),用于补录线下借阅
	DueDate  *time.Time // 指定应还日期(nil则按借期策略计算)
	Notes    string     // 馆员备注
}

// Execute 执行借阅用例
// 教学重点:防止超借的完整流程
//
// 核心问题:最后一本的并发借出
// 场景:某书可借副本只剩1本,100人同时借阅
// 错误实现:
//  1. 查询可借数 → 1本
//  2. 判断够不够 → 够
//  3. 扣减可借数 → available = available - 1
//     结果:100个请求都通过了步骤2,同一本书借出100次
//
// 正确实现:条件UPDATE
//  1. 同一事务内完成资格校验
//  2. UPDATE ... SET available = available - 1 WHERE available > 0
//  3. RowsAffected=0则借阅失败,事务回滚
func (uc *CreateLoanUseCase) Execute(ctx context.Context, req CreateLoanRequest) (*LoanResponse, error) {
	start := time.Now()
	now := uc.clk.Now()

	var created *loan.Loan
	var borrower *user.User
	var borrowed *book.Book

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// ========================================
		// 步骤1:加载读者与图书(不存在则直接失败)
		// ========================================
		u, err := uc.userRepo.FindByID(txCtx, req.UserID)
		if err != nil {
			return err
		}

		b, err := uc.bookRepo.FindByID(txCtx, req.BookID)
		if err != nil {
			return err
		}

		// ========================================
		// 步骤2:资格校验(同一事务内读取计数)
		// ========================================
		activeLoans, err := uc.loanRepo.CountActiveByUser(txCtx, req.UserID)
		if err != nil {
			return err
		}

		hasOverdue, err := uc.loanRepo.HasOverdue(txCtx, req.UserID, now)
		if err != nil {
			return err
		}

		alreadyBorrowed, err := uc.loanRepo.ExistsActiveForBook(txCtx, req.UserID, req.BookID)
		if err != nil {
			return err
		}

		check := loan.BorrowCheck{
			UserActive:      u.IsActive,
			CopiesAvailable: b.IsAvailable(),
			ActiveLoans:     activeLoans,
			HasOverdue:      hasOverdue,
			AlreadyBorrowed: alreadyBorrowed,
		}
		if err := uc.policy.CheckBorrow(check); err != nil {
			metrics.IncCounter(metrics.LoansRejectedTotal)
			return err
		}

		// ========================================
		// 步骤3:扣减可借数量(条件UPDATE,并发安全)
		// ========================================
		// 即使步骤2读到"有可借副本",并发场景下真正的裁决在这里:
		// WHERE available_copies > 0 没命中就返回ErrBookNotAvailable回滚
		if err := uc.bookRepo.DecrementAvailable(txCtx, req.BookID); err != nil {
			metrics.IncCounter(metrics.LoansRejectedTotal)
			return err
		}

		// ========================================
		// 步骤4:创建借阅记录(事务自动COMMIT)
		// ========================================
		loanDate := now
		if req.LoanDate != nil {
			loanDate = *req.LoanDate
		}
		newLoan := loan.NewLoan(req.UserID, req.BookID, loanDate, uc.policy.DurationDays)
		if req.DueDate != nil {
			newLoan.DueDate = *req.DueDate
		}
		newLoan.Notes = req.Notes

		if err := uc.loanRepo.Create(txCtx, newLoan); err != nil {
			return err
		}

		created = newLoan
		borrower = u
		borrowed = b
		return nil
	})

	if err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.LoansCreatedTotal)
	metrics.ObserveHistogram(metrics.LoanCreationDuration, time.Since(start).Seconds())

	// 尽力而为通知:失败只记日志,绝不回滚已提交的借阅
	if err := uc.notifier.SendLoanConfirmation(ctx, notification.LoanConfirmation{
		UserID:    borrower.ID,
		UserName:  borrower.FullName(),
		UserEmail: borrower.Email,
		BookID:    borrowed.ID,
		BookTitle: borrowed.Title,
		DueDate:   created.DueDate,
	}); err != nil {
		log.Printf("借阅确认通知发送失败(loan_id=%d): %v", created.ID, err)
	}

	return toLoanResponse(created, now, uc.policy), nil
}
