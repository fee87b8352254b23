package public

import (
	"context"
	"net/http"
	"time"

	"github.com/bloom-miniapp/internal/cache"
	"github.com/bloom-miniapp/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	healthStatusOK       = "ok"
	healthStatusDown     = "down"
	healthStatusDisabled = "disabled"
	healthStatusDegraded = "degraded"

	healthCheckTimeout = 2 * time.Second
)

// HealthResponse 健康检查结果
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Health 探测数据库与 Redis
// 数据库不可用时返回 503；Redis 未启用视为正常。
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	result := HealthResponse{Status: healthStatusOK, Database: healthStatusOK, Redis: healthStatusDisabled}
	if err := models.PingDB(ctx, h.DB); err != nil {
		requestLog(c).Warnw("health_database_down", "error", err)
		result.Database = healthStatusDown
		result.Status = healthStatusDown
	}
	if cache.Enabled() {
		result.Redis = healthStatusOK
		if err := cache.Ping(ctx); err != nil {
			requestLog(c).Warnw("health_redis_down", "error", err)
			result.Redis = healthStatusDown
			if result.Status == healthStatusOK {
				result.Status = healthStatusDegraded
			}
		}
	}

	code := http.StatusOK
	if result.Database == healthStatusDown {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, result)
}
