package user

import (
	"time"
)

// Role 用户角色
type Role string

const (
	// RoleUser 普通读者
	RoleUser Role = "USER"
	// RoleLibrarian 图书管理员（可管理图书、处理他人借阅）
	RoleLibrarian Role = "LIBRARIAN"
	// RoleAdmin 系统管理员（额外可管理用户）
	RoleAdmin Role = "ADMIN"
)

// IsValid 角色合法性校验
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

// User 用户实体（聚合根）
// DDD设计说明：
// 1. User是用户聚合的根实体，包含用户的核心属性
// 2. 密码已加密存储（bcrypt），不应该有GetPassword()等方法暴露明文
// 3. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
// 4. IsActive是借阅资格的前置条件：停用用户不能借书、不能预约
type User struct {
	ID        uint
	Username  string
	Email     string
	Password  string // bcrypt哈希值
	FirstName string
	LastName  string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码，新用户默认为激活状态的普通读者
func NewUser(username, email, hashedPassword string) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		Role:      RoleUser,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateProfile 更新个人资料（领域行为）
func (u *User) UpdateProfile(firstName, lastName, email string) {
	u.FirstName = firstName
	u.LastName = lastName
	u.Email = email
	u.UpdatedAt = time.Now()
}

// FullName 姓名（通知模板使用）
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// Activate 激活用户（领域行为）
func (u *User) Activate() {
	u.IsActive = true
	u.UpdatedAt = time.Now()
}

// Deactivate 停用用户（领域行为）
// 停用后不能发起借阅和预约，已有借阅不受影响
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
}

// ChangeRole 变更角色（领域行为）
func (u *User) ChangeRole(role Role) {
	u.Role = role
	u.UpdatedAt = time.Now()
}

// IsLibrarian 是否具有馆员及以上权限
func (u *User) IsLibrarian() bool {
	return u.Role == RoleLibrarian || u.Role == RoleAdmin
}
