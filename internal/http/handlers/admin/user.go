package admin

import (
	"github.com/bloom-miniapp/internal/http/response"
	"github.com/bloom-miniapp/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateUserStatusRequest 更新用户状态请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var userErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrUserStatusInvalid, code: response.CodeBadRequest, key: "error.user_status_invalid"},
}

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := normalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	users, total, err := h.UserAdminService.ListUsers(service.AdminUserQuery{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondWithMappedError(c, err, userErrorRules, "error.user_fetch_failed")
		return
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}

// GetUser 用户详情
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "error.user_not_found")
	if !ok {
		return
	}
	user, err := h.UserAdminService.GetUser(id)
	if err != nil {
		respondWithMappedError(c, err, userErrorRules, "error.user_fetch_failed")
		return
	}
	response.Success(c, user)
}

// UpdateUserStatus 启用或禁用用户
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "error.user_not_found")
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserAdminService.UpdateUserStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondWithMappedError(c, err, userErrorRules, "error.user_update_failed")
		return
	}
	requestLog(c).Infow("admin_user_status_updated", "user_id", user.ID, "status", user.Status)
	response.Success(c, user)
}
