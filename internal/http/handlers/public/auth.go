package public

import (
	"errors"
	"time"

	"github.com/bloom-miniapp/internal/http/response"
	"github.com/bloom-miniapp/internal/i18n"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/service"

	"github.com/gin-gonic/gin"
)

// TelegramLoginRequest Mini App 登录请求
type TelegramLoginRequest struct {
	InitData string `json:"init_data" binding:"required"`
}

// TelegramLogin 校验 Telegram initData 并签发用户 Token
func (h *Handler) TelegramLogin(c *gin.Context) {
	var req TelegramLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.TelegramAuthService.Login(c.Request.Context(), req.InitData)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTelegramAuthDisabled):
			respondError(c, response.CodeBadRequest, "error.telegram_auth_disabled", nil)
		case errors.Is(err, service.ErrTelegramInitDataExpired):
			respondError(c, response.CodeUnauthorized, "error.telegram_init_data_expired", nil)
		case errors.Is(err, service.ErrTelegramInitDataInvalid):
			requestLog(c).Warnw("telegram_login_init_data_invalid", "client_ip", c.ClientIP(), "error", err)
			respondError(c, response.CodeUnauthorized, "error.telegram_init_data_invalid", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeUnauthorized, "error.user_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.login_failed", err)
		}
		return
	}

	requestLog(c).Infow("telegram_login_succeeded", "user_id", result.User.ID, "telegram_id", result.User.TelegramID)
	response.Success(c, gin.H{
		"user":       userProfileResponse(result.User),
		"token":      result.Token,
		"expires_at": result.ExpiresAt.Format(time.RFC3339),
	})
}

// GetCurrentUser 当前用户信息
func (h *Handler) GetCurrentUser(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.TelegramAuthService.GetUserByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	i18n.SetLocale(c, user.Locale)
	response.Success(c, userProfileResponse(user))
}

func userProfileResponse(user *models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"telegram_id":   user.TelegramID,
		"username":      user.Username,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"display_name":  user.DisplayName(),
		"locale":        user.Locale,
		"phone":         user.Phone,
		"last_login_at": user.LastLoginAt,
	}
}
