package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
// 3. 台账操作(DecrementAvailable等)必须是原子的条件UPDATE,
//    借助 available_copies > 0 这类WHERE条件在数据库层拒绝非法扣减
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// Update 更新图书信息
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书(软删除)
	Delete(ctx context.Context, id uint) error

	// List 分页查询图书列表
	// params包含:page, pageSize, keyword, category, availableOnly, sortBy
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByID 悲观锁查询图书(SELECT FOR UPDATE)
	// 借阅创建、预约队列重排等需要按图书串行化的操作先锁行
	LockByID(ctx context.Context, id uint) (*Book, error)

	// DecrementAvailable 借出一本(原子操作)
	// WHERE available_copies > 0,无可借副本时返回ErrBookNotAvailable
	DecrementAvailable(ctx context.Context, id uint) error

	// IncrementAvailable 归还一本(原子操作)
	// WHERE available_copies < total_copies,防止台账溢出
	IncrementAvailable(ctx context.Context, id uint) error

	// MarkCopyLost 标记在借副本遗失(原子操作)
	// total_copies减1,并保证available_copies不超过新总数
	MarkCopyLost(ctx context.Context, id uint) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page          int    // 页码(从1开始)
	PageSize      int    // 每页数量
	Keyword       string // 搜索关键词(搜索标题、作者、ISBN)
	Category      string // 分类过滤
	AvailableOnly bool   // 仅显示有可借副本的图书
	SortBy        string // 排序字段(title_asc, created_at_desc)
}
