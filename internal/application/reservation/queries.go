package reservation

import (
	"context"

	"github.com/xiebiao/library/internal/domain/reservation"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// ReservationQueryUseCase 预约查询用例(只读,不开事务)
type ReservationQueryUseCase struct {
	reservationRepo reservation.Repository
}

// NewReservationQueryUseCase 创建预约查询用例
func NewReservationQueryUseCase(reservationRepo reservation.Repository) *ReservationQueryUseCase {
	return &ReservationQueryUseCase{reservationRepo: reservationRepo}
}

// Get 查询单条预约
// 普通读者只能查看自己的预约
func (uc *ReservationQueryUseCase) Get(ctx context.Context, reservationID, actorID uint, isStaff bool) (*ReservationResponse, error) {
	r, err := uc.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !isStaff && !r.IsOwnedBy(actorID) {
		return nil, apperrors.ErrForbidden
	}
	return toReservationResponse(r), nil
}

// ListReservationsRequest 预约列表查询请求DTO
type ListReservationsRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	UserID   uint   `form:"user_id"`
	BookID   uint   `form:"book_id"`
	Status   string `form:"status"`
}

// ListReservationsResponse 预约列表响应DTO
type ListReservationsResponse struct {
	Total        int64                  `json:"total"`
	Page         int                    `json:"page"`
	PageSize     int                    `json:"page_size"`
	Reservations []*ReservationResponse `json:"reservations"`
}

// List 分页查询预约
func (uc *ReservationQueryUseCase) List(ctx context.Context, req ListReservationsRequest) (*ListReservationsResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	params := reservation.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	params.UserID = req.UserID
	params.BookID = req.BookID
	if req.Status != "" {
		status, err := reservation.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		params.Status = &status
	}

	items, total, err := uc.reservationRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := &ListReservationsResponse{
		Total:        total,
		Page:         req.Page,
		PageSize:     req.PageSize,
		Reservations: make([]*ReservationResponse, 0, len(items)),
	}
	for _, r := range items {
		resp.Reservations = append(resp.Reservations, toReservationResponse(r))
	}
	return resp, nil
}

// QueuePosition 查询某预约在所属图书排队队列中的位次(1起)
// 预约不在排队队列中(已确认/过期/取消)时返回0
func (uc *ReservationQueryUseCase) QueuePosition(ctx context.Context, reservationID, actorID uint, isStaff bool) (int, error) {
	r, err := uc.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return 0, err
	}
	if !isStaff && !r.IsOwnedBy(actorID) {
		return 0, apperrors.ErrForbidden
	}
	if r.Status != reservation.StatusPending {
		return 0, nil
	}

	pending, err := uc.reservationRepo.ListPendingByBook(ctx, r.BookID)
	if err != nil {
		return 0, err
	}
	for i, p := range pending {
		if p.ID == r.ID {
			return i + 1, nil
		}
	}
	return 0, nil
}
