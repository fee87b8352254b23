package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/bloom-miniapp/internal/http/response"
	"github.com/bloom-miniapp/internal/i18n"
	"github.com/bloom-miniapp/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLog 携带 request_id 与 admin_id 的日志实例
func requestLog(c *gin.Context) *zap.SugaredLogger {
	kv := make([]interface{}, 0, 4)
	if id := c.GetString("request_id"); id != "" {
		kv = append(kv, "request_id", id)
	}
	if adminID, ok := c.Get("admin_id"); ok {
		kv = append(kv, "admin_id", adminID)
	}
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

func respondError(c *gin.Context, code int, key string, err error) {
	appErr := response.WrapError(code, i18n.T(i18n.ResolveLocale(c), key), err)
	if err != nil {
		requestLog(c).Errorw("admin_handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"path", c.FullPath(),
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// mappedHandlerError 业务错误到接口错误响应的映射
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, response.CodeInternal, fallbackKey, err)
}

// getAdminID 读取鉴权中间件写入的 admin_id
func getAdminID(c *gin.Context) (uint, bool) {
	adminID := c.GetUint("admin_id")
	if adminID == 0 {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	return adminID, true
}

func parseUintParam(c *gin.Context, name, invalidKey string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || value == 0 {
		respondError(c, response.CodeBadRequest, invalidKey, nil)
		return 0, false
	}
	return uint(value), true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return value
}

// queryUint 可选的正整数查询参数，缺省为 0，非法时写入错误响应
func queryUint(c *gin.Context, key string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(value), true
}

func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
