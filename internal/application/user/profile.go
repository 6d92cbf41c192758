package user

import (
	"context"

	"github.com/xiebiao/library/internal/domain/user"
)

// ProfileUseCase 读者资料用例(查看/修改个人信息、馆员管理读者)
type ProfileUseCase struct {
	userRepo user.Repository
}

// NewProfileUseCase 创建资料用例
func NewProfileUseCase(userRepo user.Repository) *ProfileUseCase {
	return &ProfileUseCase{userRepo: userRepo}
}

// Get 查询用户信息
func (uc *ProfileUseCase) Get(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// UpdateProfileRequest 修改资料请求
type UpdateProfileRequest struct {
	UserID    uint
	FirstName string
	LastName  string
	Email     string
}

// UpdateProfile 修改个人资料
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	email := u.Email
	if req.Email != "" {
		email = req.Email
	}
	u.UpdateProfile(req.FirstName, req.LastName, email)

	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// SetActive 启用/停用账号(馆员及以上)
// 停用后读者不能登录后的借阅/预约操作,已有借阅不受影响
func (uc *ProfileUseCase) SetActive(ctx context.Context, userID uint, active bool) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if active {
		u.Activate()
	} else {
		u.Deactivate()
	}

	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// List 分页查询用户列表(馆员及以上)
func (uc *ProfileUseCase) List(ctx context.Context, page, pageSize int) ([]*UserInfo, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	users, total, err := uc.userRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]*UserInfo, len(users))
	for i, u := range users {
		infos[i] = toUserInfo(u)
	}
	return infos, total, nil
}

func toUserInfo(u *user.User) *UserInfo {
	return &UserInfo{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName(),
		Role:     string(u.Role),
	}
}
