package public

import (
	"strconv"

	"github.com/bloom-miniapp/internal/http/response"
	"github.com/bloom-miniapp/internal/i18n"
	"github.com/bloom-miniapp/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLog 携带 request_id 与 user_id 的日志实例
func requestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	kv := make([]interface{}, 0, 4)
	if id := c.GetString("request_id"); id != "" {
		kv = append(kv, "request_id", id)
	}
	if userID, ok := c.Get("user_id"); ok {
		kv = append(kv, "user_id", userID)
	}
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// respondError 按请求语言返回错误；err 非空时记录原始错误
func respondError(c *gin.Context, code int, key string, err error) {
	respondErrorWithMsg(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		requestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"path", c.FullPath(),
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// getUserID 读取鉴权中间件写入的 user_id
func getUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	switch v := value.(type) {
	case uint:
		if v > 0 {
			return v, true
		}
	case int:
		if v > 0 {
			return uint(v), true
		}
	case float64:
		if v > 0 {
			return uint(v), true
		}
	default:
		respondError(c, response.CodeInternal, "error.user_id_type_invalid", nil)
		return 0, false
	}
	respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
	return 0, false
}

// parseUintParam 解析路径中的正整数 ID，失败时写入错误响应
func parseUintParam(c *gin.Context, name, invalidKey string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
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

// normalizePagination 页码从 1 开始，每页 1..100 条，默认 20
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
