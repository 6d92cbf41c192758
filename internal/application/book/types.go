package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// TxManager 事务边界(与借阅/预约用例相同的接口约定)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BookResponse 图书响应DTO
type BookResponse struct {
	ID              uint   `json:"id"`
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Publisher       string `json:"publisher"`
	Category        string `json:"category"`
	PublicationYear int    `json:"publication_year"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	CopiesOnLoan    int    `json:"copies_on_loan"`
	IsAvailable     bool   `json:"is_available"`
	CoverURL        string `json:"cover_url"`
	Description     string `json:"description"`
	CreatedAt       string `json:"created_at"`
}

// toBookResponse 领域实体 → 响应DTO
func toBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:              b.ID,
		ISBN:            b.ISBN,
		Title:           b.Title,
		Author:          b.Author,
		Publisher:       b.Publisher,
		Category:        b.Category,
		PublicationYear: b.PublicationYear,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CopiesOnLoan:    b.CopiesOnLoan(),
		IsAvailable:     b.IsAvailable(),
		CoverURL:        b.CoverURL,
		Description:     b.Description,
		CreatedAt:       b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
