package service

import (
	"context"
	"strings"

	"github.com/bloom-miniapp/internal/cache"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/repository"
)

// AdminUserQuery 后台用户列表查询条件
type AdminUserQuery struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
}

// UserAdminService 后台用户管理服务
type UserAdminService struct {
	userRepo repository.UserRepository
}

// NewUserAdminService 创建后台用户管理服务
func NewUserAdminService(userRepo repository.UserRepository) *UserAdminService {
	return &UserAdminService{userRepo: userRepo}
}

// ListUsers 用户列表
func (s *UserAdminService) ListUsers(query AdminUserQuery) ([]models.User, int64, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 || query.PageSize > 100 {
		query.PageSize = 20
	}
	status := strings.ToLower(strings.TrimSpace(query.Status))
	if status != "" && !isKnownUserStatus(status) {
		return nil, 0, ErrUserStatusInvalid
	}
	return s.userRepo.List(repository.UserListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		Keyword:  query.Keyword,
		Status:   status,
	})
}

// GetUser 用户详情
func (s *UserAdminService) GetUser(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateUserStatus 启用或禁用用户；禁用时递增 TokenVersion 使已签发的 Token 立即失效
func (s *UserAdminService) UpdateUserStatus(ctx context.Context, id uint, status string) (*models.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !isKnownUserStatus(status) {
		return nil, ErrUserStatusInvalid
	}
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	if user.Status == status {
		return user, nil
	}
	user.Status = status
	if status == constants.UserStatusDisabled {
		user.TokenVersion++
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if err := cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user)); err != nil {
		logger.Warnw("user_auth_state_cache_set_failed", "user_id", user.ID, "error", err)
	}
	logger.Infow("user_status_updated", "user_id", user.ID, "status", status)
	return user, nil
}

func isKnownUserStatus(status string) bool {
	return status == constants.UserStatusActive || status == constants.UserStatusDisabled
}
