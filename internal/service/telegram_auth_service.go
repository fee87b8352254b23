package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bloom-miniapp/internal/cache"
	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

const telegramWebAppDataKey = "WebAppData"

// TelegramUser initData 中的 user 字段
type TelegramUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
	IsPremium    bool   `json:"is_premium"`
	PhotoURL     string `json:"photo_url"`
}

// TelegramInitData 校验通过的 initData
type TelegramInitData struct {
	QueryID    string
	StartParam string
	AuthDate   time.Time
	User       TelegramUser
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	TelegramID   int64  `json:"telegram_id"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// LoginResult 登录结果
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// TelegramAuthService Telegram Mini App 登录服务
type TelegramAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewTelegramAuthService 创建 Telegram 登录服务
func NewTelegramAuthService(cfg *config.Config, userRepo repository.UserRepository) *TelegramAuthService {
	return &TelegramAuthService{
		cfg:      cfg,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// VerifyInitData 校验 Telegram WebApp initData 签名与有效期
func (s *TelegramAuthService) VerifyInitData(raw string) (*TelegramInitData, error) {
	if !s.cfg.TelegramAuth.Enabled {
		return nil, ErrTelegramAuthDisabled
	}
	maxAge := time.Duration(s.cfg.TelegramAuth.LoginExpireSeconds) * time.Second
	return ParseTelegramInitData(raw, s.cfg.TelegramAuth.BotToken, maxAge, s.now())
}

// Login 校验 initData，按 telegram_id 创建或更新用户并签发 JWT
func (s *TelegramAuthService) Login(ctx context.Context, raw string) (*LoginResult, error) {
	data, err := s.VerifyInitData(raw)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByTelegramID(data.User.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if user == nil {
		user = &models.User{
			TelegramID: data.User.ID,
			Status:     constants.UserStatusActive,
		}
	}
	if !isActiveStatus(user.Status) && user.ID != 0 {
		return nil, ErrUserDisabled
	}
	user.Username = strings.TrimSpace(data.User.Username)
	user.FirstName = strings.TrimSpace(data.User.FirstName)
	user.LastName = strings.TrimSpace(data.User.LastName)
	user.Locale = ResolveTelegramLocale(data.User.LanguageCode)
	user.LastLoginAt = &now

	if user.ID == 0 {
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
		logger.Infow("telegram_user_created", "user_id", user.ID, "telegram_id", user.TelegramID)
	} else if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, err
	}
	if err := cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user)); err != nil {
		logger.Warnw("user_auth_state_cache_set_failed", "user_id", user.ID, "error", err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// GenerateUserJWT 生成用户 JWT Token
func (s *TelegramAuthService) GenerateUserJWT(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(time.Duration(resolveUserJWTExpireHours(s.cfg.UserJWT)) * time.Hour)
	claims := UserJWTClaims{
		UserID:       user.ID,
		TelegramID:   user.TelegramID,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析用户 JWT Token
func (s *TelegramAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	return ParseUserJWT(tokenString, s.cfg.UserJWT.SecretKey)
}

// GetUserByID 获取用户
func (s *TelegramAuthService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// ParseUserJWT 使用指定密钥解析用户 JWT Token
func ParseUserJWT(tokenString, secret string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseTelegramInitData 解析并校验 initData
// maxAge <= 0 时不检查 auth_date 有效期。
func ParseTelegramInitData(raw, botToken string, maxAge time.Duration, now time.Time) (*TelegramInitData, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.TrimSpace(botToken) == "" {
		return nil, ErrTelegramInitDataInvalid
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTelegramInitDataInvalid, err)
	}
	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrTelegramInitDataInvalid
	}
	expected := SignTelegramInitData(values, botToken)
	if !hmac.Equal([]byte(strings.ToLower(hash)), []byte(expected)) {
		return nil, ErrTelegramInitDataInvalid
	}

	authUnix, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil || authUnix <= 0 {
		return nil, ErrTelegramInitDataInvalid
	}
	authDate := time.Unix(authUnix, 0)
	if maxAge > 0 && now.Sub(authDate) > maxAge {
		return nil, ErrTelegramInitDataExpired
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return nil, fmt.Errorf("%w: user: %v", ErrTelegramInitDataInvalid, err)
	}
	if user.ID == 0 {
		return nil, ErrTelegramInitDataInvalid
	}
	return &TelegramInitData{
		QueryID:    values.Get("query_id"),
		StartParam: values.Get("start_param"),
		AuthDate:   authDate,
		User:       user,
	}, nil
}

// SignTelegramInitData 计算 initData 的 hash
// data-check-string 为除 hash 外所有字段按 key 排序后的 key=value，以换行连接；
// 密钥为 HMAC_SHA256(key="WebAppData", bot_token)。
func SignTelegramInitData(values url.Values, botToken string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+values.Get(key))
	}

	secret := hmac.New(sha256.New, []byte(telegramWebAppDataKey))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

// ResolveTelegramLocale 将 Telegram language_code 映射为站点语言
func ResolveTelegramLocale(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(code, "ru"):
		return "ru-RU"
	case strings.HasPrefix(code, "zh"):
		return "zh-CN"
	default:
		return "en-US"
	}
}

// IsTelegramAuthError 判断是否为 initData 校验类错误
func IsTelegramAuthError(err error) bool {
	return errors.Is(err, ErrTelegramInitDataInvalid) || errors.Is(err, ErrTelegramInitDataExpired)
}

func resolveUserJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}

func isActiveStatus(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == constants.UserStatusActive
}
