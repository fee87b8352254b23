package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/provider"
	"github.com/bloom-miniapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const testBotToken = "123456:ROUTER"

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (a *apiClient) do(method, path string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		a.t.Fatalf("decode %s %s failed: %v body=%s", method, path, err, w.Body.String())
	}
	return w.Code, resp
}

func (a *apiClient) decode(resp envelope, dest interface{}) {
	a.t.Helper()
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		a.t.Fatalf("decode data failed: %v data=%s", err, string(resp.Data))
	}
}

func newTestEngine(t *testing.T) (*gin.Engine, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, _ := newAuthTestDB(t)
	cfg := &config.Config{
		UserJWT:      config.JWTConfig{SecretKey: "router-secret", ExpireHours: 1},
		TelegramAuth: config.TelegramAuthConfig{Enabled: true, BotToken: testBotToken, LoginExpireSeconds: 3600},
		Cart:         config.CartConfig{StorageDriver: constants.CartStorageMemory, MaxQuantity: 99},
		Checkout:     config.CheckoutConfig{Mode: constants.CheckoutModeLocal},
		Order:        config.OrderConfig{Currency: "RUB", PaymentExpireMinutes: 30},
	}
	container, err := provider.NewContainerWithDB(cfg, db)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	return SetupRouter(cfg, container), container
}

func telegramInitData(t *testing.T, telegramID int64) string {
	t.Helper()
	values := url.Values{}
	values.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	values.Set("query_id", "AAE")
	values.Set("user", fmt.Sprintf(`{"id":%d,"first_name":"Anna","username":"anna","language_code":"ru"}`, telegramID))
	values.Set("hash", service.SignTelegramInitData(values, testBotToken))
	return values.Encode()
}

func TestStorefrontCheckoutFlow(t *testing.T) {
	engine, container := newTestEngine(t)
	ctx := context.Background()
	category, err := container.CatalogService.CreateCategory(ctx, service.CreateCategoryInput{
		Slug:     "roses",
		NameJSON: map[string]interface{}{"ru-RU": "Розы", "en-US": "Roses"},
	})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product, err := container.CatalogService.CreateProduct(ctx, service.CreateProductInput{
		CategoryID:  category.ID,
		Slug:        "red-roses-15",
		TitleJSON:   map[string]interface{}{"ru-RU": "15 красных роз", "en-US": "15 red roses"},
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(2500)),
		Images:      []string{"/img/red-roses.jpg"},
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	api := &apiClient{t: t, engine: engine}

	_, resp := api.do(http.MethodGet, "/api/v1/public/products?category_id="+strconv.Itoa(int(category.ID)), nil)
	var products []models.Product
	api.decode(resp, &products)
	if resp.StatusCode != 0 || len(products) != 1 || products[0].ID != product.ID {
		t.Fatalf("unexpected product list: %+v", resp)
	}

	_, resp = api.do(http.MethodGet, "/api/v1/cart", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("cart without token want 401 got %d", resp.StatusCode)
	}

	_, resp = api.do(http.MethodPost, "/api/v1/auth/telegram/login", gin.H{"init_data": telegramInitData(t, 777)})
	if resp.StatusCode != 0 {
		t.Fatalf("login failed: %+v", resp)
	}
	var login struct {
		Token string `json:"token"`
		User  struct {
			TelegramID int64  `json:"telegram_id"`
			Locale     string `json:"locale"`
		} `json:"user"`
	}
	api.decode(resp, &login)
	if login.Token == "" || login.User.TelegramID != 777 || login.User.Locale != "ru-RU" {
		t.Fatalf("unexpected login payload: %+v", login)
	}
	api.token = login.Token

	_, resp = api.do(http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": product.ID, "quantity": 2})
	if resp.StatusCode != 0 {
		t.Fatalf("add item failed: %+v", resp)
	}
	_, resp = api.do(http.MethodPut, fmt.Sprintf("/api/v1/cart/items/%d", product.ID), gin.H{"quantity": 3})
	var snapshot struct {
		Items []struct {
			ID       uint   `json:"id"`
			Quantity int    `json:"quantity"`
			Name     string `json:"name"`
		} `json:"items"`
		TotalItems  int    `json:"total_items"`
		TotalAmount string `json:"total_amount"`
		IsEmpty     bool   `json:"is_empty"`
	}
	api.decode(resp, &snapshot)
	if snapshot.TotalItems != 3 || snapshot.TotalAmount != "7500.00" || snapshot.Items[0].ID != product.ID {
		t.Fatalf("unexpected cart after update: %+v", snapshot)
	}

	_, resp = api.do(http.MethodPut, "/api/v1/cart/items/9999", gin.H{"quantity": 1})
	if resp.StatusCode != 404 {
		t.Fatalf("update missing item want 404 got %d", resp.StatusCode)
	}
	_, resp = api.do(http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": product.ID, "quantity": 97})
	if resp.StatusCode != 400 {
		t.Fatalf("quantity above 99 want 400 got %d", resp.StatusCode)
	}

	_, resp = api.do(http.MethodPost, "/api/v1/cart/checkout", gin.H{"customer_name": "Anna"})
	if resp.StatusCode != 400 {
		t.Fatalf("checkout without phone want 400 got %d", resp.StatusCode)
	}
	_, resp = api.do(http.MethodGet, "/api/v1/cart", nil)
	api.decode(resp, &snapshot)
	if snapshot.TotalItems != 3 {
		t.Fatalf("failed checkout should keep the cart: %+v", snapshot)
	}

	_, resp = api.do(http.MethodPost, "/api/v1/cart/checkout", gin.H{
		"customer_name": "Anna",
		"phone":         "+79990001122",
		"address":       "Nevsky 1",
		"delivery_date": "2026-03-08",
		"extra":         gin.H{"card_text": "С праздником"},
	})
	if resp.StatusCode != 0 {
		t.Fatalf("checkout failed: %+v", resp)
	}
	var result struct {
		OrderID     uint   `json:"order_id"`
		OrderNo     string `json:"order_no"`
		Status      string `json:"status"`
		TotalAmount string `json:"total_amount"`
	}
	api.decode(resp, &result)
	if result.OrderID == 0 || result.Status != constants.OrderStatusPendingPayment || result.TotalAmount != "7500.00" {
		t.Fatalf("unexpected checkout result: %+v", result)
	}

	_, resp = api.do(http.MethodGet, "/api/v1/cart", nil)
	api.decode(resp, &snapshot)
	if !snapshot.IsEmpty {
		t.Fatalf("cart should be empty after checkout: %+v", snapshot)
	}

	_, resp = api.do(http.MethodPost, "/api/v1/cart/checkout", gin.H{"customer_name": "Anna", "phone": "+79990001122"})
	if resp.StatusCode != 400 {
		t.Fatalf("checkout of empty cart want 400 got %d", resp.StatusCode)
	}

	_, resp = api.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", result.OrderID), nil)
	var order models.Order
	api.decode(resp, &order)
	if order.OrderNo != result.OrderNo || order.Address != "Nevsky 1" || order.ExtraJSON["card_text"] != "С праздником" {
		t.Fatalf("unexpected order detail: %+v", order)
	}

	_, resp = api.do(http.MethodGet, "/api/v1/orders", nil)
	var orders []models.Order
	api.decode(resp, &orders)
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	engine, container := newTestEngine(t)
	ctx := context.Background()
	category, err := container.CatalogService.CreateCategory(ctx, service.CreateCategoryInput{Slug: "tulips", NameJSON: map[string]interface{}{"en-US": "Tulips"}})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product, err := container.CatalogService.CreateProduct(ctx, service.CreateProductInput{
		CategoryID:  category.ID,
		Slug:        "tulips-25",
		TitleJSON:   map[string]interface{}{"en-US": "25 tulips"},
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(1800)),
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	api := &apiClient{t: t, engine: engine}
	_, resp := api.do(http.MethodPost, "/api/v1/auth/telegram/login", gin.H{"init_data": telegramInitData(t, 888)})
	var login struct {
		Token string `json:"token"`
	}
	api.decode(resp, &login)
	api.token = login.Token

	_, resp = api.do(http.MethodPost, "/api/v1/orders", gin.H{
		"customer_name": "Ivan",
		"phone":         "+79990002233",
		"items":         []gin.H{{"product_id": product.ID, "quantity": 2, "price": "1800.00"}},
	})
	if resp.StatusCode != 0 {
		t.Fatalf("create order failed: %+v", resp)
	}
	var result struct {
		OrderID     uint   `json:"order_id"`
		TotalAmount string `json:"total_amount"`
	}
	api.decode(resp, &result)
	if result.OrderID == 0 || result.TotalAmount != "3600.00" {
		t.Fatalf("unexpected result: %+v", result)
	}

	_, resp = api.do(http.MethodPost, "/api/v1/orders", gin.H{
		"customer_name": "Ivan",
		"phone":         "+79990002233",
		"items":         []gin.H{{"product_id": product.ID, "quantity": 0}},
	})
	if resp.StatusCode != 400 {
		t.Fatalf("invalid line want 400 got %d", resp.StatusCode)
	}
}

func TestTelegramLoginRejectsForgedInitData(t *testing.T) {
	engine, _ := newTestEngine(t)
	api := &apiClient{t: t, engine: engine}

	forged := telegramInitData(t, 999) + "&start_param=admin"
	_, resp := api.do(http.MethodPost, "/api/v1/auth/telegram/login", gin.H{"init_data": forged})
	if resp.StatusCode != 401 {
		t.Fatalf("forged init data want 401 got %d", resp.StatusCode)
	}
	_, resp = api.do(http.MethodPost, "/api/v1/auth/telegram/login", gin.H{})
	if resp.StatusCode != 400 {
		t.Fatalf("missing init data want 400 got %d", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	engine, _ := newTestEngine(t)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status want 200 got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health failed: %v", err)
	}
	if body["status"] != "ok" || body["database"] != "ok" || body["redis"] != "disabled" {
		t.Fatalf("unexpected health body: %v", body)
	}
}
