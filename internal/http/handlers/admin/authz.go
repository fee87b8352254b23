package admin

import (
	"github.com/bloom-miniapp/internal/authz"
	"github.com/bloom-miniapp/internal/http/response"
	"github.com/bloom-miniapp/internal/service"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

type createAdminPayload struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	IsSuper  bool     `json:"is_super"`
	Roles    []string `json:"roles"`
}

var authzErrorRules = []mappedHandlerError{
	{target: authz.ErrRoleInvalid, code: response.CodeBadRequest, key: "error.role_invalid"},
	{target: authz.ErrActionRequired, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: authz.ErrAdminRequired, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: authz.ErrUnavailable, code: response.CodeUnavailable, key: "error.authz_unavailable"},
	{target: service.ErrAdminNotFound, code: response.CodeNotFound, key: "error.admin_not_found"},
	{target: service.ErrAdminUsernameInvalid, code: response.CodeBadRequest, key: "error.admin_username_invalid"},
	{target: service.ErrAdminUsernameExists, code: response.CodeConflict, key: "error.admin_username_exists"},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest, key: "error.password_weak"},
	{target: service.ErrAdminSelfDelete, code: response.CodeBadRequest, key: "error.admin_self_delete"},
	{target: service.ErrAdminLastSuper, code: response.CodeConflict, key: "error.admin_last_super"},
}

// GetAuthzMe 当前管理员的角色与生效策略
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.authz_fetch_failed")
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.authz_fetch_failed")
		return
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": c.GetBool("admin_is_super"),
		"roles":    roles,
		"policies": policies,
	})
}

// ListRoles 角色列表
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.authz_fetch_failed")
		return
	}
	response.Success(c, roles)
}

// CreateRole 创建角色
func (h *Handler) CreateRole(c *gin.Context) {
	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.authz_update_failed")
		return
	}
	requestLog(c).Infow("admin_authz_role_created", "role", role)
	response.Success(c, gin.H{"role": role})
}

// DeleteRole 删除角色及其授予关系
func (h *Handler) DeleteRole(c *gin.Context) {
	role := c.Param("role")
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.authz_update_failed")
		return
	}
	requestLog(c).Infow("admin_authz_role_deleted", "role", role)
	response.Success(c, nil)
}

// GetRolePolicies 角色策略
func (h *Handler) GetRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.authz_fetch_failed")
		return
	}
	response.Success(c, policies)
}

// GrantPolicy 授予角色策略
func (h *Handler) GrantPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.authz_update_failed")
		return
	}
	requestLog(c).Infow("admin_authz_policy_granted", "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, nil)
}

// RevokePolicy 撤销角色策略
func (h *Handler) RevokePolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.authz_update_failed")
		return
	}
	requestLog(c).Infow("admin_authz_policy_revoked", "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, nil)
}

// ListAdmins 管理员列表（含角色）
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.AdminAuthService.ListAdmins()
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.admin_fetch_failed")
		return
	}
	response.Success(c, admins)
}

// CreateAdmin 创建管理员
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req createAdminPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	admin, err := h.AdminAuthService.CreateAdmin(c.Request.Context(), service.CreateAdminInput{
		Username: req.Username,
		Password: req.Password,
		IsSuper:  req.IsSuper,
		Roles:    req.Roles,
	})
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.admin_save_failed")
		return
	}
	requestLog(c).Infow("admin_account_created", "target_admin_id", admin.ID, "username", admin.Username, "is_super", admin.IsSuper)
	response.Success(c, adminProfile(admin))
}

// DeleteAdmin 删除管理员
func (h *Handler) DeleteAdmin(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	targetID, ok := parseUintParam(c, "id", "error.admin_not_found")
	if !ok {
		return
	}
	if err := h.AdminAuthService.DeleteAdmin(c.Request.Context(), operatorID, targetID); err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.admin_delete_failed")
		return
	}
	response.Success(c, nil)
}

// SetAdminRoles 覆盖管理员角色
func (h *Handler) SetAdminRoles(c *gin.Context) {
	targetID, ok := parseUintParam(c, "id", "error.admin_not_found")
	if !ok {
		return
	}
	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AdminAuthService.SetAdminRoles(targetID, req.Roles); err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.authz_update_failed")
		return
	}
	roles, err := h.AdminAuthService.AdminRoles(targetID)
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, "error.authz_fetch_failed")
		return
	}
	requestLog(c).Infow("admin_authz_roles_set", "target_admin_id", targetID, "roles", roles)
	response.Success(c, gin.H{"admin_id": targetID, "roles": roles})
}
