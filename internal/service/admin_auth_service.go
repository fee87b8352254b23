package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/bloom-miniapp/internal/authz"
	"github.com/bloom-miniapp/internal/cache"
	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var adminUsernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{2,31}$`)

// AdminJWTClaims 管理员 JWT 声明
type AdminJWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// AdminLoginResult 管理员登录结果
type AdminLoginResult struct {
	Admin     *models.Admin
	Token     string
	ExpiresAt time.Time
}

// CreateAdminInput 创建管理员输入
type CreateAdminInput struct {
	Username string
	Password string
	IsSuper  bool
	Roles    []string
}

// AdminView 管理员及其角色
type AdminView struct {
	models.Admin
	Roles []string `json:"roles"`
}

// AdminAuthService 管理员认证与账号服务
type AdminAuthService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
	authz     *authz.Service
	now       func() time.Time
}

// NewAdminAuthService 创建管理员认证服务
func NewAdminAuthService(cfg *config.Config, adminRepo repository.AdminRepository, authzService *authz.Service) *AdminAuthService {
	return &AdminAuthService{
		cfg:       cfg,
		adminRepo: adminRepo,
		authz:     authzService,
		now:       time.Now,
	}
}

// HashPassword 生成 bcrypt 哈希
func (s *AdminAuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 校验密码
func (s *AdminAuthService) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword 校验密码强度：达到最小长度且同时包含字母与数字
func (s *AdminAuthService) ValidatePassword(password string) error {
	minLength := s.cfg.Admin.PasswordMinLength
	if minLength <= 0 {
		minLength = 8
	}
	if len([]rune(password)) < minLength || len(password) > 72 {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

// NormalizeAdminUsername 规范化管理员账号
func NormalizeAdminUsername(username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !adminUsernamePattern.MatchString(username) {
		return "", ErrAdminUsernameInvalid
	}
	return username, nil
}

// Login 账号密码登录
func (s *AdminAuthService) Login(ctx context.Context, username, password string) (*AdminLoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	admin, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if admin == nil || !s.VerifyPassword(admin.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	admin.LastLoginAt = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, err
	}
	token, expiresAt, err := s.GenerateJWT(admin)
	if err != nil {
		return nil, err
	}
	s.refreshAuthState(ctx, admin)
	logger.Infow("admin_login", "admin_id", admin.ID, "username", admin.Username)
	return &AdminLoginResult{Admin: admin, Token: token, ExpiresAt: expiresAt}, nil
}

// GenerateJWT 生成管理员 JWT Token
func (s *AdminAuthService) GenerateJWT(admin *models.Admin) (string, time.Time, error) {
	now := s.now()
	hours := s.cfg.AdminJWT.ExpireHours
	if hours <= 0 {
		hours = 12
	}
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	claims := AdminJWTClaims{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.AdminJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseAdminJWT 使用指定密钥解析管理员 JWT Token
func ParseAdminJWT(tokenString, secret string) (*AdminJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &AdminJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.AdminID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GetAdmin 获取管理员
func (s *AdminAuthService) GetAdmin(id uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

// ChangePassword 修改密码，成功后此前签发的 Token 全部失效
func (s *AdminAuthService) ChangePassword(ctx context.Context, adminID uint, oldPassword, newPassword string) error {
	admin, err := s.GetAdmin(adminID)
	if err != nil {
		return err
	}
	if !s.VerifyPassword(admin.PasswordHash, oldPassword) {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	now := s.now()
	admin.PasswordHash = hash
	admin.TokenVersion++
	admin.TokenInvalidBefore = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}
	s.refreshAuthState(ctx, admin)
	logger.Infow("admin_password_changed", "admin_id", admin.ID)
	return nil
}

// EnsureBootstrapAdmin 库中没有管理员时按配置创建超级管理员
func (s *AdminAuthService) EnsureBootstrapAdmin(ctx context.Context) (*models.Admin, bool, error) {
	count, err := s.adminRepo.Count()
	if err != nil {
		return nil, false, err
	}
	if count > 0 {
		return nil, false, nil
	}
	if strings.TrimSpace(s.cfg.Admin.BootstrapPassword) == "" {
		logger.Warnw("admin_bootstrap_skipped", "reason", "admin.bootstrap_password is empty")
		return nil, false, nil
	}
	admin, err := s.CreateAdmin(ctx, CreateAdminInput{
		Username: s.cfg.Admin.BootstrapUsername,
		Password: s.cfg.Admin.BootstrapPassword,
		IsSuper:  true,
	})
	if err != nil {
		return nil, false, err
	}
	logger.Infow("admin_bootstrap_created", "admin_id", admin.ID, "username", admin.Username)
	return admin, true, nil
}

// CreateAdmin 创建管理员并分配角色
func (s *AdminAuthService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*models.Admin, error) {
	username, err := NormalizeAdminUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	existing, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAdminUsernameExists
	}
	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		Username:     username,
		PasswordHash: hash,
		IsSuper:      input.IsSuper,
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}
	if len(input.Roles) > 0 {
		if err := s.SetAdminRoles(admin.ID, input.Roles); err != nil {
			return nil, err
		}
	}
	return admin, nil
}

// ListAdmins 管理员列表（含角色）
func (s *AdminAuthService) ListAdmins() ([]AdminView, error) {
	admins, err := s.adminRepo.List()
	if err != nil {
		return nil, err
	}
	views := make([]AdminView, 0, len(admins))
	for _, admin := range admins {
		roles, err := s.AdminRoles(admin.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, AdminView{Admin: admin, Roles: roles})
	}
	return views, nil
}

// AdminRoles 获取管理员角色
func (s *AdminAuthService) AdminRoles(adminID uint) ([]string, error) {
	if s.authz == nil {
		return []string{}, nil
	}
	return s.authz.GetAdminRoles(adminID)
}

// SetAdminRoles 覆盖管理员角色
func (s *AdminAuthService) SetAdminRoles(adminID uint, roles []string) error {
	if _, err := s.GetAdmin(adminID); err != nil {
		return err
	}
	if s.authz == nil {
		return authz.ErrUnavailable
	}
	return s.authz.SetAdminRoles(adminID, roles)
}

// DeleteAdmin 删除管理员；不能删除自己，也不能删除最后一个超级管理员
func (s *AdminAuthService) DeleteAdmin(ctx context.Context, operatorID, targetID uint) error {
	if operatorID == targetID {
		return ErrAdminSelfDelete
	}
	target, err := s.GetAdmin(targetID)
	if err != nil {
		return err
	}
	if target.IsSuper {
		admins, err := s.adminRepo.List()
		if err != nil {
			return err
		}
		supers := 0
		for _, admin := range admins {
			if admin.IsSuper {
				supers++
			}
		}
		if supers <= 1 {
			return ErrAdminLastSuper
		}
	}
	if err := s.adminRepo.Delete(targetID); err != nil {
		return err
	}
	if s.authz != nil {
		if err := s.authz.RemoveAdmin(targetID); err != nil && !errors.Is(err, authz.ErrUnavailable) {
			return err
		}
	}
	if err := cache.DelAdminAuthState(ctx, targetID); err != nil {
		logger.Warnw("admin_auth_state_cache_del_failed", "admin_id", targetID, "error", err)
	}
	logger.Infow("admin_deleted", "admin_id", targetID, "operator_id", operatorID)
	return nil
}

func (s *AdminAuthService) refreshAuthState(ctx context.Context, admin *models.Admin) {
	if err := cache.SetAdminAuthState(ctx, cache.BuildAdminAuthState(admin)); err != nil {
		logger.Warnw("admin_auth_state_cache_set_failed", "admin_id", admin.ID, "error", err)
	}
}
