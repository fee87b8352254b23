package admin

import (
	"errors"
	"time"

	"github.com/bloom-miniapp/internal/http/response"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

var captchaErrorRules = []mappedHandlerError{
	{target: service.ErrCaptchaRequired, code: response.CodeBadRequest, key: "error.captcha_required"},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, key: "error.captcha_invalid"},
}

var passwordErrorRules = []mappedHandlerError{
	{target: service.ErrAdminNotFound, code: response.CodeNotFound, key: "error.admin_not_found"},
	{target: service.ErrInvalidPassword, code: response.CodeBadRequest, key: "error.password_old_invalid"},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest, key: "error.password_weak"},
}

// GetCaptcha 获取登录图片验证码，未启用时只返回 enabled=false
func (h *Handler) GetCaptcha(c *gin.Context) {
	if !h.CaptchaService.Enabled() {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	challenge, err := h.CaptchaService.Generate()
	if err != nil {
		respondError(c, response.CodeInternal, "error.captcha_generate_failed", err)
		return
	}
	response.Success(c, gin.H{
		"enabled":      true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaCode); err != nil {
		respondWithMappedError(c, err, captchaErrorRules, "error.login_failed")
		return
	}

	result, err := h.AdminAuthService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			requestLog(c).Warnw("admin_login_invalid_credentials", "client_ip", c.ClientIP(), "username", req.Username)
			respondError(c, response.CodeUnauthorized, "error.admin_login_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.login_failed", err)
		return
	}
	response.Success(c, gin.H{
		"token":      result.Token,
		"expires_at": result.ExpiresAt.Format(time.RFC3339),
		"admin":      adminProfile(result.Admin),
	})
}

// GetMe 当前管理员信息
func (h *Handler) GetMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AdminAuthService.GetAdmin(adminID)
	if err != nil {
		if errors.Is(err, service.ErrAdminNotFound) {
			respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.admin_fetch_failed", err)
		return
	}
	response.Success(c, adminProfile(admin))
}

// ChangePassword 修改当前管理员密码
func (h *Handler) ChangePassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AdminAuthService.ChangePassword(c.Request.Context(), adminID, req.OldPassword, req.NewPassword); err != nil {
		respondWithMappedError(c, err, passwordErrorRules, "error.password_change_failed")
		return
	}
	response.Success(c, nil)
}

func adminProfile(admin *models.Admin) gin.H {
	return gin.H{
		"id":            admin.ID,
		"username":      admin.Username,
		"is_super":      admin.IsSuper,
		"last_login_at": admin.LastLoginAt,
	}
}
