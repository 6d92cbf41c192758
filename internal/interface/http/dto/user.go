package dto

// RegisterRequest HTTP层注册请求
// 说明：HTTP层的DTO，包含参数验证tag
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50" example:"zhangsan"`
	Email     string `json:"email" binding:"required,email" example:"zhangsan@example.com"`
	Password  string `json:"password" binding:"required,min=8,max=20" example:"passw0rd123"`
	FirstName string `json:"first_name" binding:"max=50" example:"三"`
	LastName  string `json:"last_name" binding:"max=50" example:"张"`
}

// LoginRequest HTTP层登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"zhangsan"`
	Password string `json:"password" binding:"required" example:"passw0rd123"`
}

// UpdateProfileRequest HTTP层修改资料请求
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"max=50" example:"三"`
	LastName  string `json:"last_name" binding:"max=50" example:"张"`
	Email     string `json:"email" binding:"omitempty,email" example:"zhangsan@example.com"`
}

// SetActiveRequest HTTP层启用/停用账号请求
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required" example:"false"`
}

// UserResponse 用户响应（不包含密码）
type UserResponse struct {
	ID       uint   `json:"id" example:"1"`
	Username string `json:"username" example:"zhangsan"`
	Email    string `json:"email" example:"zhangsan@example.com"`
	FullName string `json:"full_name" example:"张三"`
	Role     string `json:"role" example:"USER"`
}
