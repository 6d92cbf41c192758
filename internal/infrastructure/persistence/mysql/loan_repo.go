package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// loanRepository 借阅仓储实现(MySQL)
// 教学要点:
// 1. 资格校验所需的计数/存在性查询用COUNT下沉到数据库,不加载整行
// 2. "未归还"统一指在借+逾期两种状态
// 3. 事务通过context传递
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository 创建借阅仓储
func NewLoanRepository(db *gorm.DB) loan.Repository {
	return &loanRepository{db: db}
}

// unreturnedStatuses 未归还状态集合(在借+逾期)
var unreturnedStatuses = []int{int(loan.StatusActive), int(loan.StatusOverdue)}

// Create 创建借阅记录
func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	model := toLoanModel(l)

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建借阅记录失败")
	}

	// 回填自增ID
	l.ID = model.ID
	l.CreatedAt = model.CreatedAt
	l.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找借阅记录
func (r *loanRepository) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	var model LoanModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	return toLoanEntity(&model), nil
}

// Update 更新借阅记录
func (r *loanRepository) Update(ctx context.Context, l *loan.Loan) error {
	model := toLoanModel(l)

	if err := r.getDB(ctx).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新借阅记录失败")
	}

	l.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除借阅记录(硬删除)
// 只有终态记录可删,状态校验在应用层完成
func (r *loanRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&LoanModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除借阅记录失败")
	}

	if result.RowsAffected == 0 {
		return loan.ErrLoanNotFound
	}

	return nil
}

// List 分页查询借阅列表
func (r *loanRepository) List(ctx context.Context, params loan.ListParams) ([]*loan.Loan, int64, error) {
	var models []LoanModel
	var total int64

	query := r.getDB(ctx).Model(&LoanModel{})

	if params.UserID != 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.BookID != 0 {
		query = query.Where("book_id = ?", params.BookID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", int(*params.Status))
	}
	if params.From != nil {
		query = query.Where("loan_date >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("loan_date < ?", *params.To)
	}

	// 查询总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅总数失败")
	}

	// 分页查询,最近借阅在前
	offset := (params.Page - 1) * params.PageSize
	err := query.Order("loan_date DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅列表失败")
	}

	loans := make([]*loan.Loan, len(models))
	for i := range models {
		loans[i] = toLoanEntity(&models[i])
	}

	return loans, total, nil
}

// CountActiveByUser 统计用户未归还的借阅数
func (r *loanRepository) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&LoanModel{}).
		Where("user_id = ?", userID).
		Where("status IN ?", unreturnedStatuses).
		Count(&count).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计借阅数失败")
	}
	return count, nil
}

// HasOverdue 用户是否存在逾期未还
// 两类命中:已标记OVERDUE的,以及ACTIVE且应还日期早于now的
func (r *loanRepository) HasOverdue(ctx context.Context, userID uint, now time.Time) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&LoanModel{}).
		Where("user_id = ?", userID).
		Where("status = ? OR (status = ? AND due_date < ?)",
			int(loan.StatusOverdue), int(loan.StatusActive), now).
		Count(&count).Error

	if err != nil {
		return false, apperrors.Wrap(err, "查询逾期记录失败")
	}
	return count > 0, nil
}

// ExistsActiveForBook 用户是否已借该图书且未归还
func (r *loanRepository) ExistsActiveForBook(ctx context.Context, userID, bookID uint) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&LoanModel{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Where("status IN ?", unreturnedStatuses).
		Count(&count).Error

	if err != nil {
		return false, apperrors.Wrap(err, "查询借阅记录失败")
	}
	return count > 0, nil
}

// CountUnreturnedByBook 统计图书未归还的借阅数
func (r *loanRepository) CountUnreturnedByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&LoanModel{}).
		Where("book_id = ?", bookID).
		Where("status IN ?", unreturnedStatuses).
		Count(&count).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计借阅数失败")
	}
	return count, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toLoanModel 领域实体 → GORM模型
func toLoanModel(l *loan.Loan) *LoanModel {
	return &LoanModel{
		ID:           l.ID,
		UserID:       l.UserID,
		BookID:       l.BookID,
		LoanDate:     l.LoanDate,
		DueDate:      l.DueDate,
		ReturnDate:   l.ReturnDate,
		Status:       int(l.Status),
		RenewalCount: l.RenewalCount,
		FineAmount:   l.FineAmount,
		Notes:        l.Notes,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// toLoanEntity GORM模型 → 领域实体
func toLoanEntity(model *LoanModel) *loan.Loan {
	return &loan.Loan{
		ID:           model.ID,
		UserID:       model.UserID,
		BookID:       model.BookID,
		LoanDate:     model.LoanDate,
		DueDate:      model.DueDate,
		ReturnDate:   model.ReturnDate,
		Status:       loan.Status(model.Status),
		RenewalCount: model.RenewalCount,
		FineAmount:   model.FineAmount,
		Notes:        model.Notes,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *loanRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
