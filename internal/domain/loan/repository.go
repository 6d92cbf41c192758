package loan

import (
	"context"
	"time"
)

// Repository 借阅仓储接口(依赖倒置原则)
// 教学要点:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
// 3. 资格校验所需的计数/存在性查询下沉到数据库,避免全量加载
type Repository interface {
	// Create 创建借阅记录
	Create(ctx context.Context, loan *Loan) error

	// FindByID 根据ID查找借阅记录
	FindByID(ctx context.Context, id uint) (*Loan, error)

	// Update 更新借阅记录(主要用于状态更新)
	Update(ctx context.Context, loan *Loan) error

	// Delete 删除借阅记录(硬删除,仅终态记录,由应用层校验)
	Delete(ctx context.Context, id uint) error

	// List 分页查询借阅列表,支持按用户/图书/状态过滤
	List(ctx context.Context, params ListParams) ([]*Loan, int64, error)

	// CountActiveByUser 统计用户未归还的借阅数(ACTIVE+OVERDUE)
	CountActiveByUser(ctx context.Context, userID uint) (int64, error)

	// HasOverdue 用户是否存在逾期未还
	// 包含两类:已标记OVERDUE的,以及ACTIVE且应还日期早于now的
	HasOverdue(ctx context.Context, userID uint, now time.Time) (bool, error)

	// ExistsActiveForBook 用户是否已借该图书且未归还
	ExistsActiveForBook(ctx context.Context, userID, bookID uint) (bool, error)

	// CountUnreturnedByBook 统计图书未归还的借阅数(删除图书前校验)
	CountUnreturnedByBook(ctx context.Context, bookID uint) (int64, error)
}

// ListParams 借阅列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	UserID   uint       // 0表示不过滤
	BookID   uint       // 0表示不过滤
	Status   *Status    // nil表示不过滤
	From     *time.Time // 借出日期下限(含)
	To       *time.Time // 借出日期上限(不含)
}
