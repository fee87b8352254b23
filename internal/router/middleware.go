package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/bloom-miniapp/internal/authz"
	"github.com/bloom-miniapp/internal/cache"
	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/http/response"
	"github.com/bloom-miniapp/internal/i18n"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/repository"
	"github.com/bloom-miniapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"

	userIDContextKey     = "user_id"
	telegramIDContextKey = "telegram_id"

	adminIDContextKey       = "admin_id"
	adminUsernameContextKey = "admin_username"
	adminIsSuperContextKey  = "admin_is_super"
)

// CORSMiddleware 跨域中间件
// Mini App 运行在 Telegram WebView 中，来源通常为 https://web.telegram.org 或自定义域名。
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{"Content-Type", "Accept-Language", "Authorization", requestIDHeader, "X-Locale"}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		header := c.Writer.Header()
		if allowedOrigin != "" {
			header.Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				header.Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		header.Set("Access-Control-Allow-Headers", headersHeader)
		header.Set("Access-Control-Allow-Methods", methodsHeader)
		header.Set("Access-Control-Expose-Headers", requestIDHeader)
		if cfg.MaxAge > 0 {
			header.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	for _, allowed := range allowedOrigins {
		if allowed != "*" {
			continue
		}
		// 携带凭证时不能回写通配符
		if allowCredentials && origin != "" {
			return origin
		}
		return "*"
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if uid, ok := c.Get(userIDContextKey); ok {
			fields = append(fields, "user_id", uid)
		}
		if len(c.Errors) > 0 {
			sugar.Errorw("http_request", append(fields, "errors", c.Errors.String())...)
			return
		}
		sugar.Infow("http_request", fields...)
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// UserJWTAuthMiddleware 用户 JWT 鉴权中间件
// 优先使用 Redis 中的鉴权状态，未命中时回源数据库并回填缓存。
func UserJWTAuthMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		if userRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		tokenString, key := bearerToken(c.GetHeader("Authorization"))
		if key != "" {
			abortUnauthorized(c, key)
			return
		}

		claims, err := service.ParseUserJWT(tokenString, secretKey)
		if err != nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		ctx := c.Request.Context()
		state, hit, cacheErr := cache.GetUserAuthState(ctx, claims.UserID)
		if cacheErr != nil || !hit || state == nil {
			user, err := userRepo.GetByID(claims.UserID)
			if err != nil || user == nil {
				abortUnauthorized(c, "error.token_invalid")
				return
			}
			state = cache.BuildUserAuthState(user)
			_ = cache.SetUserAuthState(ctx, state)
		}
		if !isActiveUserStatus(state.Status) {
			abortUnauthorized(c, "error.user_disabled")
			return
		}
		if claims.TokenVersion != state.TokenVersion {
			abortUnauthorized(c, "error.token_revoked")
			return
		}

		c.Set(userIDContextKey, claims.UserID)
		c.Set(telegramIDContextKey, claims.TelegramID)
		c.Next()
	}
}

// AdminJWTAuthMiddleware 管理员 JWT 鉴权中间件
// 校验 TokenVersion 与 TokenInvalidBefore，改密或删除后旧 Token 立即失效。
func AdminJWTAuthMiddleware(secretKey string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		if adminRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		tokenString, key := bearerToken(c.GetHeader("Authorization"))
		if key != "" {
			abortUnauthorized(c, key)
			return
		}
		claims, err := service.ParseAdminJWT(tokenString, secretKey)
		if err != nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		ctx := c.Request.Context()
		state, hit, cacheErr := cache.GetAdminAuthState(ctx, claims.AdminID)
		if cacheErr != nil || !hit || state == nil {
			admin, err := adminRepo.GetByID(claims.AdminID)
			if err != nil || admin == nil {
				abortUnauthorized(c, "error.token_invalid")
				return
			}
			state = cache.BuildAdminAuthState(admin)
			_ = cache.SetAdminAuthState(ctx, state)
		}
		if claims.TokenVersion != state.TokenVersion || !issuedAfter(claims.IssuedAt, state.TokenInvalidBefore) {
			abortUnauthorized(c, "error.token_revoked")
			return
		}

		c.Set(adminIDContextKey, claims.AdminID)
		c.Set(adminUsernameContextKey, state.Username)
		c.Set(adminIsSuperContextKey, state.IsSuper)
		c.Next()
	}
}

// AdminRBACMiddleware 按路由模板与 HTTP 方法做 RBAC 判定，超级管理员直接放行
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if c.GetBool(adminIsSuperContextKey) {
			c.Next()
			return
		}
		adminID := c.GetUint(adminIDContextKey)
		if adminID == 0 {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"admin_id", adminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"admin_id", adminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.forbidden"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// issuedAfter 签发时间不早于失效时间点（秒级）
func issuedAfter(issuedAt *jwt.NumericDate, invalidBefore int64) bool {
	if invalidBefore <= 0 {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Unix() >= invalidBefore
}

// bearerToken 解析 Authorization 头，失败时返回错误文案 key
func bearerToken(header string) (string, string) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", "error.auth_header_missing"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", "error.auth_header_invalid"
	}
	return strings.TrimSpace(parts[1]), ""
}

func abortUnauthorized(c *gin.Context, key string) {
	response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}

func isActiveUserStatus(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == constants.UserStatusActive
}
