package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/reservation"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// reservationRepository 预约仓储实现(MySQL)
// 教学要点:
// 1. 队列查询固定按(priority ASC, reservation_date ASC)排序
// 2. 可通知候选用JOIN让数据库完成"有可借副本"过滤
// 3. 事务通过context传递
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预约仓储
func NewReservationRepository(db *gorm.DB) reservation.Repository {
	return &reservationRepository{db: db}
}

// Create 创建预约
func (r *reservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	model := toReservationModel(res)

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建预约失败")
	}

	res.ID = model.ID
	res.CreatedAt = model.CreatedAt
	res.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找预约
func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*reservation.Reservation, error) {
	var model ReservationModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, apperrors.Wrap(err, "查询预约失败")
	}

	return toReservationEntity(&model), nil
}

// Update 更新预约
func (r *reservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	model := toReservationModel(res)

	if err := r.getDB(ctx).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新预约失败")
	}

	res.UpdatedAt = model.UpdatedAt
	return nil
}

// UpdatePriority 只更新队列位次
// 教学要点:重排队列时只写位次变化的行,减少无效写入
func (r *reservationRepository) UpdatePriority(ctx context.Context, id uint, priority int) error {
	result := r.getDB(ctx).Model(&ReservationModel{}).
		Where("id = ?", id).
		Update("priority", priority)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新队列位次失败")
	}

	if result.RowsAffected == 0 {
		return reservation.ErrReservationNotFound
	}

	return nil
}

// List 分页查询预约列表
func (r *reservationRepository) List(ctx context.Context, params reservation.ListParams) ([]*reservation.Reservation, int64, error) {
	var models []ReservationModel
	var total int64

	query := r.getDB(ctx).Model(&ReservationModel{})

	if params.UserID != 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.BookID != 0 {
		query = query.Where("book_id = ?", params.BookID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", int(*params.Status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询预约总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Order("reservation_date DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询预约列表失败")
	}

	reservations := make([]*reservation.Reservation, len(models))
	for i := range models {
		reservations[i] = toReservationEntity(&models[i])
	}

	return reservations, total, nil
}

// ListPendingByBook 某本书的排队队列
// 插入、展示、位次计算、重排都使用这一个排序
func (r *reservationRepository) ListPendingByBook(ctx context.Context, bookID uint) ([]*reservation.Reservation, error) {
	var models []ReservationModel
	err := r.getDB(ctx).
		Where("book_id = ? AND status = ?", bookID, int(reservation.StatusPending)).
		Order("priority ASC, reservation_date ASC").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询排队队列失败")
	}

	reservations := make([]*reservation.Reservation, len(models))
	for i := range models {
		reservations[i] = toReservationEntity(&models[i])
	}
	return reservations, nil
}

// CountPendingByBook 某本书当前排队数
func (r *reservationRepository) CountPendingByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&ReservationModel{}).
		Where("book_id = ? AND status = ?", bookID, int(reservation.StatusPending)).
		Count(&count).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计排队数失败")
	}
	return count, nil
}

// ExistsOpenForBook 读者对某本书是否已有占用队列的预约
func (r *reservationRepository) ExistsOpenForBook(ctx context.Context, userID, bookID uint) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&ReservationModel{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Where("status IN ?", []int{int(reservation.StatusPending), int(reservation.StatusActive)}).
		Count(&count).Error

	if err != nil {
		return false, apperrors.Wrap(err, "查询预约记录失败")
	}
	return count > 0, nil
}

// ExistsOpenByBook 某本书是否有任何占用队列的预约
// 续借校验:有人排队时不允许当前持有人续借
func (r *reservationRepository) ExistsOpenByBook(ctx context.Context, bookID uint) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&ReservationModel{}).
		Where("book_id = ?", bookID).
		Where("status IN ?", []int{int(reservation.StatusPending), int(reservation.StatusActive)}).
		Count(&count).Error

	if err != nil {
		return false, apperrors.Wrap(err, "查询预约记录失败")
	}
	return count > 0, nil
}

// ListExpired 已超过有效期的排队预约
// (status, expiry_date)复合索引让清扫任务的扫描走索引范围查询
func (r *reservationRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	var models []ReservationModel
	err := r.getDB(ctx).
		Where("status = ? AND expiry_date < ?", int(reservation.StatusPending), now).
		Order("expiry_date ASC").
		Limit(limit).
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询过期预约失败")
	}

	reservations := make([]*reservation.Reservation, len(models))
	for i := range models {
		reservations[i] = toReservationEntity(&models[i])
	}
	return reservations, nil
}

// ListNotifiable 图书有可借副本且需要通知的排队预约
// 教学要点:
// 1. JOIN books把"有可借副本"过滤交给数据库
// 2. 通知去重条件: notified_at IS NULL 或早于本次预约时间
func (r *reservationRepository) ListNotifiable(ctx context.Context, limit int) ([]*reservation.Reservation, error) {
	var models []ReservationModel
	err := r.getDB(ctx).Model(&ReservationModel{}).
		Joins("JOIN books ON books.id = reservations.book_id AND books.deleted_at IS NULL").
		Where("reservations.status = ?", int(reservation.StatusPending)).
		Where("books.available_copies > 0").
		Where("reservations.notified_at IS NULL OR reservations.notified_at < reservations.reservation_date").
		Order("reservations.book_id ASC, reservations.priority ASC").
		Limit(limit).
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询可通知预约失败")
	}

	reservations := make([]*reservation.Reservation, len(models))
	for i := range models {
		reservations[i] = toReservationEntity(&models[i])
	}
	return reservations, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toReservationModel 领域实体 → GORM模型
func toReservationModel(res *reservation.Reservation) *ReservationModel {
	return &ReservationModel{
		ID:              res.ID,
		UserID:          res.UserID,
		BookID:          res.BookID,
		ReservationDate: res.ReservationDate,
		ExpiryDate:      res.ExpiryDate,
		Status:          int(res.Status),
		Priority:        res.Priority,
		NotifiedAt:      res.NotifiedAt,
		CreatedAt:       res.CreatedAt,
		UpdatedAt:       res.UpdatedAt,
	}
}

// toReservationEntity GORM模型 → 领域实体
func toReservationEntity(model *ReservationModel) *reservation.Reservation {
	return &reservation.Reservation{
		ID:              model.ID,
		UserID:          model.UserID,
		BookID:          model.BookID,
		ReservationDate: model.ReservationDate,
		ExpiryDate:      model.ExpiryDate,
		Status:          reservation.Status(model.Status),
		Priority:        model.Priority,
		NotifiedAt:      model.NotifiedAt,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *reservationRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
