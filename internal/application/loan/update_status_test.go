package loan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/clock"
)

func newStatusUseCase(loanRepo *fakeLoanRepo, bookRepo *fakeBookRepo, clk clock.Clock) *UpdateLoanStatusUseCase {
	return NewUpdateLoanStatusUseCase(loanRepo, bookRepo, fakeTxManager{}, clk, testPolicy())
}

func TestUpdateLoanStatus_MarkOverdue(t *testing.T) {
	l := loan.NewLoan(1, 10, testNow, 14)
	l.ID = 1
	loanRepo := newFakeLoanRepo(l)
	bookRepo := newFakeBookRepo(shelfBook(10, 3, 2))
	uc := newStatusUseCase(loanRepo, bookRepo, clock.NewFake(testNow.AddDate(0, 0, 20)))

	resp, err := uc.Execute(context.Background(), UpdateLoanStatusRequest{LoanID: 1, Status: "OVERDUE", Notes: "电话催还未接"})
	require.NoError(t, err)
	assert.Equal(t, "OVERDUE", resp.Status)
	assert.Equal(t, "电话催还未接", resp.Notes)

	// 标记逾期不动台账
	b, _ := bookRepo.FindByID(context.Background(), 10)
	assert.Equal(t, 2, b.AvailableCopies)
}

func TestUpdateLoanStatus_MarkLost(t *testing.T) {
	l := loan.NewLoan(1, 10, testNow, 14)
	l.ID = 1
	loanRepo := newFakeLoanRepo(l)
	bookRepo := newFakeBookRepo(shelfBook(10, 3, 2))
	uc := newStatusUseCase(loanRepo, bookRepo, clock.NewFake(testNow.AddDate(0, 0, 30)))

	resp, err := uc.Execute(context.Background(), UpdateLoanStatusRequest{LoanID: 1, Status: "LOST"})
	require.NoError(t, err)
	assert.Equal(t, "LOST", resp.Status)

	// 遗失副本从流通中移除:总数-1,可借数同步-1
	b, _ := bookRepo.FindByID(context.Background(), 10)
	assert.Equal(t, 2, b.TotalCopies)
	assert.Equal(t, 1, b.AvailableCopies)
}

func TestUpdateLoanStatus_Cancel(t *testing.T) {
	l := loan.NewLoan(1, 10, testNow, 14)
	l.ID = 1
	loanRepo := newFakeLoanRepo(l)
	bookRepo := newFakeBookRepo(shelfBook(10, 3, 2))
	uc := newStatusUseCase(loanRepo, bookRepo, clock.NewFake(testNow))

	resp, err := uc.Execute(context.Background(), UpdateLoanStatusRequest{LoanID: 1, Status: "CANCELLED", Notes: "录错读者"})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)

	// 撤销错误登记:台账回补
	b, _ := bookRepo.FindByID(context.Background(), 10)
	assert.Equal(t, 3, b.AvailableCopies)
}

func TestUpdateLoanStatus_ReturnedSettlesFine(t *testing.T) {
	l := loan.NewLoan(1, 10, testNow, 14)
	l.ID = 1
	loanRepo := newFakeLoanRepo(l)
	bookRepo := newFakeBookRepo(shelfBook(10, 3, 2))
	// 逾期2天归还
	uc := newStatusUseCase(loanRepo, bookRepo, clock.NewFake(testNow.AddDate(0, 0, 16)))

	resp, err := uc.Execute(context.Background(), UpdateLoanStatusRequest{LoanID: 1, Status: "RETURNED"})
	require.NoError(t, err)
	assert.Equal(t, int64(200), resp.FineAmount)

	b, _ := bookRepo.FindByID(context.Background(), 10)
	assert.Equal(t, 3, b.AvailableCopies)
}

func TestUpdateLoanStatus_IllegalTransition(t *testing.T) {
	l := loan.NewLoan(1, 10, testNow, 14)
	l.ID = 1
	require.NoError(t, l.Return(testNow.AddDate(0, 0, 1), 100))
	loanRepo := newFakeLoanRepo(l)
	bookRepo := newFakeBookRepo(shelfBook(10, 3, 3))
	uc := newStatusUseCase(loanRepo, bookRepo, clock.NewFake(testNow.AddDate(0, 0, 2)))

	// 已还记录不能标遗失
	_, err := uc.Execute(context.Background(), UpdateLoanStatusRequest{LoanID: 1, Status: "LOST"})
	assert.ErrorIs(t, err, loan.ErrInvalidStatusTransition)

	// 未知状态令牌
	_, err = uc.Execute(context.Background(), UpdateLoanStatusRequest{LoanID: 1, Status: "MISSING"})
	assert.ErrorIs(t, err, loan.ErrInvalidStatus)
}

func TestDeleteLoan(t *testing.T) {
	active := loan.NewLoan(1, 10, testNow, 14)
	active.ID = 1
	returned := loan.NewLoan(1, 11, testNow, 14)
	returned.ID = 2
	require.NoError(t, returned.Return(testNow.AddDate(0, 0, 1), 100))
	loanRepo := newFakeLoanRepo(active, returned)
	uc := NewDeleteLoanUseCase(loanRepo)

	// 在借记录不能删除
	err := uc.Execute(context.Background(), 1)
	assert.ErrorIs(t, err, loan.ErrLoanNotDeletable)

	// 终态记录可以删除
	require.NoError(t, uc.Execute(context.Background(), 2))
	_, err = loanRepo.FindByID(context.Background(), 2)
	assert.ErrorIs(t, err, loan.ErrLoanNotFound)
}
