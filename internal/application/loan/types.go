package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/xiebiao/library/internal/domain/loan"
)

// TxManager 事务边界
// 教学要点:
// 1. 定义为接口而非直接依赖mysql.TxManager,单元测试可用直通实现替换
// 2. mysql.TxManager天然满足此接口
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// LoanResponse 借阅响应DTO
// 教学要点:
// isOverdue/daysOverdue/canRenew是读取时刻派生的,不落库
// (除fineAmount外,任何可推导的状态都不冗余存储)
type LoanResponse struct {
	ID           uint   `json:"id"`
	UserID       uint   `json:"user_id"`
	BookID       uint   `json:"book_id"`
	LoanDate     string `json:"loan_date"`
	DueDate      string `json:"due_date"`
	ReturnDate   string `json:"return_date,omitempty"`
	Status       string `json:"status"`
	RenewalCount int    `json:"renewal_count"`
	FineAmount   int64  `json:"fine_amount"`
	FineYuan     string `json:"fine_yuan"`
	Notes        string `json:"notes,omitempty"`
	IsOverdue    bool   `json:"is_overdue"`
	DaysOverdue  int    `json:"days_overdue"`
	CanRenew     bool   `json:"can_renew"`
	CreatedAt    string `json:"created_at"`
}

// toLoanResponse 领域实体 → 响应DTO(含读取时刻的派生字段)
// canRenew只做本记录可判定的部分(状态/次数/罚款/逾期),
// 图书是否有人排队在真正续借时校验
func toLoanResponse(l *loan.Loan, now time.Time, policy loan.Policy) *LoanResponse {
	resp := &LoanResponse{
		ID:           l.ID,
		UserID:       l.UserID,
		BookID:       l.BookID,
		LoanDate:     l.LoanDate.Format("2006-01-02"),
		DueDate:      l.DueDate.Format("2006-01-02"),
		Status:       l.Status.String(),
		RenewalCount: l.RenewalCount,
		FineAmount:   l.FineAmount,
		FineYuan:     formatFine(l.FineAmount),
		Notes:        l.Notes,
		IsOverdue:    l.IsOverdue(now),
		DaysOverdue:  l.DaysOverdue(now),
		CanRenew:     canRenewLocally(l, now, policy),
		CreatedAt:    l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if l.ReturnDate != nil {
		resp.ReturnDate = l.ReturnDate.Format("2006-01-02")
	}
	return resp
}

// canRenewLocally 仅凭借阅记录本身可判定的续借资格
func canRenewLocally(l *loan.Loan, now time.Time, policy loan.Policy) bool {
	return l.Status == loan.StatusActive &&
		!now.After(l.DueDate) &&
		l.RenewalCount < policy.MaxRenewals &&
		l.FineAmount == 0
}

// formatFine 格式化罚款金额(分→元)
func formatFine(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100.0)
}
