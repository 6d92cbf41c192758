package loan

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// LoanQueryUseCase 借阅查询用例(纯读)
// 教学要点:
// 1. 查询不开事务,读到什么算什么
// 2. isOverdue/daysOverdue/canRenew在读取时刻计算
type LoanQueryUseCase struct {
	loanRepo        loan.Repository
	reservationRepo reservation.Repository
	clk             clock.Clock
	policy          loan.Policy
}

// NewLoanQueryUseCase 创建借阅查询用例
func NewLoanQueryUseCase(
	loanRepo loan.Repository,
	reservationRepo reservation.Repository,
	clk clock.Clock,
	policy loan.Policy,
) *LoanQueryUseCase {
	return &LoanQueryUseCase{
		loanRepo:        loanRepo,
		reservationRepo: reservationRepo,
		clk:             clk,
		policy:          policy,
	}
}

// Get 查询单条借阅记录
// 普通读者只能查看自己的借阅
func (uc *LoanQueryUseCase) Get(ctx context.Context, loanID, actorID uint, isStaff bool) (*LoanResponse, error) {
	l, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if !isStaff && !l.IsOwnedBy(actorID) {
		return nil, apperrors.ErrForbidden
	}

	return toLoanResponse(l, uc.clk.Now(), uc.policy), nil
}

// ListLoansRequest 借阅列表查询DTO
type ListLoansRequest struct {
	Page     int
	PageSize int
	UserID   uint       // 0表示不过滤(仅馆员可查他人)
	BookID   uint       // 0表示不过滤
	Status   string     // 空表示不过滤
	From     *time.Time // 借出日期范围下限
	To       *time.Time // 借出日期范围上限
}

// List 分页查询借阅列表
func (uc *LoanQueryUseCase) List(ctx context.Context, req ListLoansRequest) ([]*LoanResponse, int64, error) {
	params := loan.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		UserID:   req.UserID,
		BookID:   req.BookID,
		From:     req.From,
		To:       req.To,
	}

	if req.Status != "" {
		status, err := loan.ParseStatus(req.Status)
		if err != nil {
			return nil, 0, err
		}
		params.Status = &status
	}

	loans, total, err := uc.loanRepo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	now := uc.clk.Now()
	responses := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		responses[i] = toLoanResponse(l, now, uc.policy)
	}

	return responses, total, nil
}

// CanRenew 借阅是否可以续借(完整校验,含排队预约)
func (uc *LoanQueryUseCase) CanRenew(ctx context.Context, loanID uint) (bool, error) {
	l, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return false, err
	}

	if !canRenewLocally(l, uc.clk.Now(), uc.policy) {
		return false, nil
	}

	reserved, err := uc.reservationRepo.ExistsOpenByBook(ctx, l.BookID)
	if err != nil {
		return false, err
	}
	return !reserved, nil
}

// HasOverdueLoans 用户是否存在逾期未还
func (uc *LoanQueryUseCase) HasOverdueLoans(ctx context.Context, userID uint) (bool, error) {
	return uc.loanRepo.HasOverdue(ctx, userID, uc.clk.Now())
}

// ActiveLoanCount 用户未归还的借阅数
func (uc *LoanQueryUseCase) ActiveLoanCount(ctx context.Context, userID uint) (int64, error) {
	return uc.loanRepo.CountActiveByUser(ctx, userID)
}
