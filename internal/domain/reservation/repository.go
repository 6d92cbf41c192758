package reservation

import (
	"context"
	"time"
)

// ListParams 预约列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	UserID   uint    // 0表示不过滤
	BookID   uint    // 0表示不过滤
	Status   *Status // nil表示不过滤
}

// Repository 预约仓储接口
// 教学要点:
// 1. 队列查询固定按(priority ASC, reservation_date ASC)排序,
//    保证插入、展示、位次计算、重排使用同一顺序
// 2. 清扫任务的两类候选查询(过期/可通知)放在仓储层,
//    让数据库完成过滤,应用层只处理命中的记录
type Repository interface {
	// Create 创建预约
	Create(ctx context.Context, r *Reservation) error

	// FindByID 根据ID查找预约
	FindByID(ctx context.Context, id uint) (*Reservation, error)

	// Update 更新预约
	Update(ctx context.Context, r *Reservation) error

	// UpdatePriority 只更新队列位次(重排时只写变化的行)
	UpdatePriority(ctx context.Context, id uint, priority int) error

	// List 分页查询预约列表
	List(ctx context.Context, params ListParams) ([]*Reservation, int64, error)

	// ListPendingByBook 某本书的排队队列,按(priority ASC, reservation_date ASC)排序
	ListPendingByBook(ctx context.Context, bookID uint) ([]*Reservation, error)

	// CountPendingByBook 某本书当前排队数(计算新预约的位次)
	CountPendingByBook(ctx context.Context, bookID uint) (int64, error)

	// ExistsOpenForBook 读者对某本书是否已有占用队列的预约(排队中/已确认)
	ExistsOpenForBook(ctx context.Context, userID, bookID uint) (bool, error)

	// ExistsOpenByBook 某本书是否有任何占用队列的预约(续借前校验)
	ExistsOpenByBook(ctx context.Context, bookID uint) (bool, error)

	// ListExpired 已超过有效期的排队预约(清扫任务候选)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*Reservation, error)

	// ListNotifiable 图书有可借副本且需要通知的排队预约(清扫任务候选)
	ListNotifiable(ctx context.Context, limit int) ([]*Reservation, error)
}
