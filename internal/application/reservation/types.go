package reservation

import (
	"context"

	"github.com/xiebiao/library/internal/domain/reservation"
)

// TxManager 事务边界(与借阅用例相同的接口约定)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReservationResponse 预约响应DTO
type ReservationResponse struct {
	ID              uint   `json:"id"`
	UserID          uint   `json:"user_id"`
	BookID          uint   `json:"book_id"`
	ReservationDate string `json:"reservation_date"`
	ExpiryDate      string `json:"expiry_date"`
	Status          string `json:"status"`
	Priority        int    `json:"priority"`
	NotifiedAt      string `json:"notified_at,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// toReservationResponse 领域实体 → 响应DTO
func toReservationResponse(r *reservation.Reservation) *ReservationResponse {
	resp := &ReservationResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		BookID:          r.BookID,
		ReservationDate: r.ReservationDate.Format("2006-01-02 15:04:05"),
		ExpiryDate:      r.ExpiryDate.Format("2006-01-02 15:04:05"),
		Status:          r.Status.String(),
		Priority:        r.Priority,
		CreatedAt:       r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if r.NotifiedAt != nil {
		resp.NotifiedAt = r.NotifiedAt.Format("2006-01-02 15:04:05")
	}
	return resp
}
