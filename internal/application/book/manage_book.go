package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// ManageBookUseCase 图书管理用例(详情/修改/调整馆藏/删除)
// 教学要点:
// 1. 调整馆藏总数走领域服务(行锁内读改写)
// 2. 删除前校验无未归还借阅,校验与删除放在同一事务
type ManageBookUseCase struct {
	bookService book.Service
	loanRepo    loan.Repository
	txManager   TxManager
}

// NewManageBookUseCase 创建图书管理用例
func NewManageBookUseCase(
	bookService book.Service,
	loanRepo loan.Repository,
	txManager TxManager,
) *ManageBookUseCase {
	return &ManageBookUseCase{
		bookService: bookService,
		loanRepo:    loanRepo,
		txManager:   txManager,
	}
}

// Get 查询图书详情
func (uc *ManageBookUseCase) Get(ctx context.Context, bookID uint) (*BookResponse, error) {
	b, err := uc.bookService.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}

// GetByISBN 根据ISBN查询图书
func (uc *ManageBookUseCase) GetByISBN(ctx context.Context, isbn string) (*BookResponse, error) {
	b, err := uc.bookService.GetBookByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}

// UpdateBookRequest 修改图书信息请求DTO
type UpdateBookRequest struct {
	BookID      uint
	Title       string
	Author      string
	Publisher   string
	Category    string
	Description string
}

// Update 修改图书信息(不动台账字段)
func (uc *ManageBookUseCase) Update(ctx context.Context, req UpdateBookRequest) (*BookResponse, error) {
	if err := uc.bookService.UpdateBookInfo(ctx, req.BookID, req.Title, req.Author, req.Publisher, req.Category, req.Description); err != nil {
		return nil, err
	}
	return uc.Get(ctx, req.BookID)
}

// AdjustCopies 调整馆藏总数
// 业务规则:新总数不能小于当前在借数(领域行为校验)
func (uc *ManageBookUseCase) AdjustCopies(ctx context.Context, bookID uint, newTotal int) (*BookResponse, error) {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		return uc.bookService.AdjustTotalCopies(txCtx, bookID, newTotal)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, bookID)
}

// Delete 删除图书
// 存在未归还借阅时拒绝删除(校验与删除同一事务,防止窗口期新借出)
func (uc *ManageBookUseCase) Delete(ctx context.Context, bookID uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		unreturned, err := uc.loanRepo.CountUnreturnedByBook(txCtx, bookID)
		if err != nil {
			return err
		}
		if unreturned > 0 {
			return apperrors.New(apperrors.ErrCodeOperationNotAllowed, "该图书存在未归还的借阅,不能删除")
		}

		return uc.bookService.DeleteBook(txCtx, bookID)
	})
}
