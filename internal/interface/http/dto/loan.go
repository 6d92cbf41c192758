package dto

// CreateLoanRequest HTTP借阅登记请求
// loan_date可选,用于补录线下借阅;due_date可选,不传则按借期策略计算(默认14天)
type CreateLoanRequest struct {
	UserID   uint   `json:"user_id" binding:"required" example:"1"`
	BookID   uint   `json:"book_id" binding:"required" example:"10"`
	LoanDate string `json:"loan_date" binding:"omitempty,datetime=2006-01-02" example:"2024-03-01"`
	DueDate  string `json:"due_date" binding:"omitempty,datetime=2006-01-02" example:"2024-03-15"`
	Notes    string `json:"notes" binding:"max=500" example:"读者证件已核验"`
}

// UpdateLoanStatusRequest HTTP状态覆盖请求
type UpdateLoanStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=RETURNED OVERDUE LOST CANCELLED" example:"LOST"`
	Notes  string `json:"notes" binding:"max=500" example:"读者报告图书遗失"`
}

// LoanResponse HTTP借阅响应
type LoanResponse struct {
	ID           uint   `json:"id" example:"1"`
	UserID       uint   `json:"user_id" example:"1"`
	BookID       uint   `json:"book_id" example:"10"`
	LoanDate     string `json:"loan_date" example:"2024-03-01"`
	DueDate      string `json:"due_date" example:"2024-03-15"`
	ReturnDate   string `json:"return_date,omitempty" example:"2024-03-10"`
	Status       string `json:"status" example:"ACTIVE"`
	RenewalCount int    `json:"renewal_count" example:"0"`
	FineAmount   int64  `json:"fine_amount" example:"0"`   // 罚款(分)
	FineYuan     string `json:"fine_yuan" example:"0.00"`  // 罚款(元),方便前端显示
	Notes        string `json:"notes,omitempty" example:""`
	IsOverdue    bool   `json:"is_overdue" example:"false"`
	DaysOverdue  int    `json:"days_overdue" example:"0"`
	CanRenew     bool   `json:"can_renew" example:"true"`
	CreatedAt    string `json:"created_at" example:"2024-03-01 10:30:00"`
}
