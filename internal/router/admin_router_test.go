package router

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/provider"

	"github.com/gin-gonic/gin"
)

const (
	testAdminUsername = "admin"
	testAdminPassword = "florist2024"
)

func newAdminTestEngine(t *testing.T, captchaEnabled bool) (*gin.Engine, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, _ := newAuthTestDB(t)
	cfg := &config.Config{
		UserJWT:      config.JWTConfig{SecretKey: "router-secret", ExpireHours: 1},
		AdminJWT:     config.JWTConfig{SecretKey: "admin-router-secret", ExpireHours: 1},
		Admin:        config.AdminConfig{BootstrapUsername: testAdminUsername, BootstrapPassword: testAdminPassword, PasswordMinLength: 8},
		Captcha:      config.CaptchaConfig{Enabled: captchaEnabled},
		TelegramAuth: config.TelegramAuthConfig{Enabled: true, BotToken: testBotToken, LoginExpireSeconds: 3600},
		Cart:         config.CartConfig{StorageDriver: constants.CartStorageMemory, MaxQuantity: 99},
		Checkout:     config.CheckoutConfig{Mode: constants.CheckoutModeLocal},
		Order:        config.OrderConfig{Currency: "RUB", PaymentExpireMinutes: 30},
	}
	container, err := provider.NewContainerWithDB(cfg, db)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	if err := container.AuthzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	if _, created, err := container.AdminAuthService.EnsureBootstrapAdmin(context.Background()); err != nil || !created {
		t.Fatalf("bootstrap admin failed: created=%v err=%v", created, err)
	}
	return SetupRouter(cfg, container), container
}

func adminLogin(t *testing.T, engine *gin.Engine, username, password string) *apiClient {
	t.Helper()
	api := &apiClient{t: t, engine: engine}
	_, resp := api.do(http.MethodPost, "/api/v1/admin/login", gin.H{"username": username, "password": password})
	if resp.StatusCode != 0 {
		t.Fatalf("admin login %s failed: %+v", username, resp)
	}
	var login struct {
		Token string `json:"token"`
		Admin struct {
			Username string `json:"username"`
		} `json:"admin"`
	}
	api.decode(resp, &login)
	if login.Token == "" || login.Admin.Username != username {
		t.Fatalf("unexpected admin login payload: %+v", login)
	}
	api.token = login.Token
	return api
}

func TestAdminLoginAndSelfRoutes(t *testing.T) {
	engine, _ := newAdminTestEngine(t, false)
	anon := &apiClient{t: t, engine: engine}

	_, resp := anon.do(http.MethodGet, "/api/v1/admin/captcha", nil)
	var captcha struct {
		Enabled bool `json:"enabled"`
	}
	anon.decode(resp, &captcha)
	if resp.StatusCode != 0 || captcha.Enabled {
		t.Fatalf("captcha should be disabled: %+v", resp)
	}

	_, resp = anon.do(http.MethodPost, "/api/v1/admin/login", gin.H{"username": testAdminUsername, "password": "wrong-pass1"})
	if resp.StatusCode != 401 {
		t.Fatalf("wrong password want 401 got %d", resp.StatusCode)
	}
	_, resp = anon.do(http.MethodGet, "/api/v1/admin/categories", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("admin route without token want 401 got %d", resp.StatusCode)
	}

	userToken := &apiClient{t: t, engine: engine, token: issueTestToken(t, &models.User{ID: 1, TelegramID: 1})}
	_, resp = userToken.do(http.MethodGet, "/api/v1/admin/me", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("user token on admin route want 401 got %d", resp.StatusCode)
	}

	api := adminLogin(t, engine, "ADMIN", testAdminPassword)
	_, resp = api.do(http.MethodGet, "/api/v1/admin/me", nil)
	var me struct {
		Username string `json:"username"`
		IsSuper  bool   `json:"is_super"`
	}
	api.decode(resp, &me)
	if resp.StatusCode != 0 || me.Username != testAdminUsername || !me.IsSuper {
		t.Fatalf("unexpected me payload: %+v", resp)
	}

	_, resp = api.do(http.MethodPut, "/api/v1/admin/password", gin.H{"old_password": "nope", "new_password": "tulips2025"})
	if resp.StatusCode != 400 {
		t.Fatalf("wrong old password want 400 got %d", resp.StatusCode)
	}
	_, resp = api.do(http.MethodPut, "/api/v1/admin/password", gin.H{"old_password": testAdminPassword, "new_password": "tulips2025"})
	if resp.StatusCode != 0 {
		t.Fatalf("change password failed: %+v", resp)
	}
	_, resp = api.do(http.MethodGet, "/api/v1/admin/me", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("token issued before password change want 401 got %d", resp.StatusCode)
	}
	fresh := adminLogin(t, engine, testAdminUsername, "tulips2025")
	_, resp = fresh.do(http.MethodGet, "/api/v1/admin/me", nil)
	if resp.StatusCode != 0 {
		t.Fatalf("fresh token rejected: %+v", resp)
	}
}

func TestAdminLoginRequiresCaptchaWhenEnabled(t *testing.T) {
	engine, container := newAdminTestEngine(t, true)
	anon := &apiClient{t: t, engine: engine}

	_, resp := anon.do(http.MethodPost, "/api/v1/admin/login", gin.H{"username": testAdminUsername, "password": testAdminPassword})
	if resp.StatusCode != 400 {
		t.Fatalf("login without captcha want 400 got %d", resp.StatusCode)
	}

	_, resp = anon.do(http.MethodGet, "/api/v1/admin/captcha", nil)
	var challenge struct {
		Enabled     bool   `json:"enabled"`
		CaptchaID   string `json:"captcha_id"`
		ImageBase64 string `json:"image_base64"`
	}
	anon.decode(resp, &challenge)
	if !challenge.Enabled || challenge.CaptchaID == "" || challenge.ImageBase64 == "" {
		t.Fatalf("unexpected captcha payload: %+v", resp)
	}
	if err := container.CaptchaService.Verify(challenge.CaptchaID, "0000000"); err == nil {
		t.Fatalf("bogus captcha answer accepted")
	}
	_, resp = anon.do(http.MethodPost, "/api/v1/admin/login", gin.H{
		"username":     testAdminUsername,
		"password":     testAdminPassword,
		"captcha_id":   challenge.CaptchaID,
		"captcha_code": "0000000",
	})
	if resp.StatusCode != 400 {
		t.Fatalf("login with consumed captcha want 400 got %d", resp.StatusCode)
	}
}

func TestAdminManagementFlow(t *testing.T) {
	engine, _ := newAdminTestEngine(t, false)
	root := adminLogin(t, engine, testAdminUsername, testAdminPassword)

	_, resp := root.do(http.MethodPost, "/api/v1/admin/categories", gin.H{
		"slug": "Peonies",
		"name": gin.H{"ru-RU": "Пионы", "en-US": "Peonies"},
	})
	if resp.StatusCode != 0 {
		t.Fatalf("create category failed: %+v", resp)
	}
	var category struct {
		ID   uint   `json:"id"`
		Slug string `json:"slug"`
	}
	root.decode(resp, &category)
	if category.ID == 0 || category.Slug != "peonies" {
		t.Fatalf("unexpected category: %+v", category)
	}
	_, resp = root.do(http.MethodPost, "/api/v1/admin/categories", gin.H{"slug": "peonies", "name": gin.H{"en-US": "Dup"}})
	if resp.StatusCode != 409 {
		t.Fatalf("duplicate slug want 409 got %d", resp.StatusCode)
	}

	_, resp = root.do(http.MethodPost, "/api/v1/admin/products", gin.H{
		"category_id":  category.ID,
		"slug":         "pink-peonies-7",
		"title":        gin.H{"ru-RU": "7 розовых пионов", "en-US": "7 pink peonies"},
		"price_amount": "3200.005",
	})
	if resp.StatusCode != 0 {
		t.Fatalf("create product failed: %+v", resp)
	}
	var product struct {
		ID          uint   `json:"id"`
		PriceAmount string `json:"price_amount"`
		IsActive    bool   `json:"is_active"`
	}
	root.decode(resp, &product)
	if product.ID == 0 || product.PriceAmount != "3200.01" || !product.IsActive {
		t.Fatalf("unexpected product: %+v", product)
	}
	_, resp = root.do(http.MethodPut, fmt.Sprintf("/api/v1/admin/products/%d", product.ID), gin.H{"price_amount": "-1"})
	if resp.StatusCode != 400 {
		t.Fatalf("negative price want 400 got %d", resp.StatusCode)
	}
	_, resp = root.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/categories/%d", category.ID), nil)
	if resp.StatusCode != 409 {
		t.Fatalf("delete category in use want 409 got %d", resp.StatusCode)
	}

	// 顾客下单
	shopper := &apiClient{t: t, engine: engine}
	_, resp = shopper.do(http.MethodPost, "/api/v1/auth/telegram/login", gin.H{"init_data": telegramInitData(t, 4242)})
	var login struct {
		Token string `json:"token"`
	}
	shopper.decode(resp, &login)
	shopper.token = login.Token
	_, resp = shopper.do(http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": product.ID, "quantity": 1})
	if resp.StatusCode != 0 {
		t.Fatalf("add item failed: %+v", resp)
	}
	_, resp = shopper.do(http.MethodPost, "/api/v1/cart/checkout", gin.H{
		"customer_name": "Olga",
		"phone":         "+79990002233",
		"address":       "Liteyny 5",
	})
	var checkout struct {
		OrderID uint `json:"order_id"`
	}
	shopper.decode(resp, &checkout)
	if resp.StatusCode != 0 || checkout.OrderID == 0 {
		t.Fatalf("checkout failed: %+v", resp)
	}

	_, resp = root.do(http.MethodPost, "/api/v1/admin/authz/admins", gin.H{
		"username": "viewer",
		"password": "readonly42",
		"roles":    []string{"auditor"},
	})
	if resp.StatusCode != 0 {
		t.Fatalf("create auditor failed: %+v", resp)
	}
	_, resp = root.do(http.MethodPost, "/api/v1/admin/authz/admins", gin.H{
		"username": "courier-desk",
		"password": "orders2026",
		"roles":    []string{"order_manager"},
	})
	if resp.StatusCode != 0 {
		t.Fatalf("create order manager failed: %+v", resp)
	}

	viewer := adminLogin(t, engine, "viewer", "readonly42")
	_, resp = viewer.do(http.MethodGet, "/api/v1/admin/products", nil)
	if resp.StatusCode != 0 {
		t.Fatalf("auditor list products failed: %+v", resp)
	}
	_, resp = viewer.do(http.MethodPost, "/api/v1/admin/categories", gin.H{"slug": "tulips", "name": gin.H{"en-US": "Tulips"}})
	if resp.StatusCode != 403 {
		t.Fatalf("auditor create category want 403 got %d", resp.StatusCode)
	}
	_, resp = viewer.do(http.MethodPatch, fmt.Sprintf("/api/v1/admin/orders/%d", checkout.OrderID), gin.H{"status": constants.OrderStatusPaid})
	if resp.StatusCode != 403 {
		t.Fatalf("auditor update order want 403 got %d", resp.StatusCode)
	}
	_, resp = viewer.do(http.MethodGet, "/api/v1/admin/authz/me", nil)
	var perms struct {
		Roles []string `json:"roles"`
	}
	viewer.decode(resp, &perms)
	if resp.StatusCode != 0 || len(perms.Roles) != 1 || perms.Roles[0] != "auditor" {
		t.Fatalf("unexpected authz me: %+v", resp)
	}

	desk := adminLogin(t, engine, "courier-desk", "orders2026")
	orderPath := fmt.Sprintf("/api/v1/admin/orders/%d", checkout.OrderID)
	_, resp = desk.do(http.MethodPatch, orderPath, gin.H{"status": constants.OrderStatusCompleted})
	if resp.StatusCode != 409 {
		t.Fatalf("pending to completed want 409 got %d", resp.StatusCode)
	}
	for _, status := range []string{constants.OrderStatusPaid, constants.OrderStatusDelivering, constants.OrderStatusCompleted} {
		_, resp = desk.do(http.MethodPatch, orderPath, gin.H{"status": status})
		if resp.StatusCode != 0 {
			t.Fatalf("transition to %s failed: %+v", status, resp)
		}
	}
	_, resp = desk.do(http.MethodGet, orderPath, nil)
	var order struct {
		Status string `json:"status"`
		UserID uint   `json:"user_id"`
	}
	desk.decode(resp, &order)
	if order.Status != constants.OrderStatusCompleted || order.UserID == 0 {
		t.Fatalf("unexpected order: %+v", order)
	}
	userPath := fmt.Sprintf("/api/v1/admin/users/%d", order.UserID)
	_, resp = desk.do(http.MethodPatch, userPath, gin.H{"status": constants.UserStatusDisabled})
	if resp.StatusCode != 403 {
		t.Fatalf("order manager disable user want 403 got %d", resp.StatusCode)
	}

	_, resp = root.do(http.MethodPatch, userPath, gin.H{"status": "banned"})
	if resp.StatusCode != 400 {
		t.Fatalf("unknown user status want 400 got %d", resp.StatusCode)
	}
	_, resp = root.do(http.MethodPatch, userPath, gin.H{"status": constants.UserStatusDisabled})
	if resp.StatusCode != 0 {
		t.Fatalf("disable user failed: %+v", resp)
	}
	_, resp = shopper.do(http.MethodGet, "/api/v1/cart", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("disabled user cart want 401 got %d", resp.StatusCode)
	}

	_, resp = root.do(http.MethodGet, "/api/v1/admin/authz/admins", nil)
	var admins []struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	root.decode(resp, &admins)
	if len(admins) != 3 {
		t.Fatalf("want 3 admins got %+v", admins)
	}
	var viewerID uint
	for _, item := range admins {
		if item.Username == "viewer" {
			viewerID = item.ID
		}
	}
	_, resp = root.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/authz/admins/%d", viewerID), nil)
	if resp.StatusCode != 0 {
		t.Fatalf("delete admin failed: %+v", resp)
	}
	_, resp = viewer.do(http.MethodGet, "/api/v1/admin/products", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("deleted admin token want 401 got %d", resp.StatusCode)
	}
}
