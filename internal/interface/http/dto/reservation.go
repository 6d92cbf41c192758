package dto

// CreateReservationRequest HTTP预约请求
// 读者只能为自己预约,book_id为目标图书
type CreateReservationRequest struct {
	BookID uint `json:"book_id" binding:"required" example:"10"`
}

// ReservationResponse HTTP预约响应
type ReservationResponse struct {
	ID              uint   `json:"id" example:"1"`
	UserID          uint   `json:"user_id" example:"1"`
	BookID          uint   `json:"book_id" example:"10"`
	ReservationDate string `json:"reservation_date" example:"2024-03-01 10:30:00"`
	ExpiryDate      string `json:"expiry_date" example:"2024-03-03 10:30:00"`
	Status          string `json:"status" example:"PENDING"`
	Priority        int    `json:"priority" example:"1"`
	NotifiedAt      string `json:"notified_at,omitempty" example:""`
	CreatedAt       string `json:"created_at" example:"2024-03-01 10:30:00"`
}

// QueuePositionResponse HTTP排队位次响应
// position为0表示预约已不在排队队列中
type QueuePositionResponse struct {
	ReservationID uint `json:"reservation_id" example:"1"`
	Position      int  `json:"position" example:"2"`
}
