package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/models"

	"github.com/redis/go-redis/v9"
)

func resetClient(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { UseClient(nil, "") })
}

func TestDisabledCacheIsNoop(t *testing.T) {
	resetClient(t)
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	ctx := context.Background()
	if Enabled() || Client() != nil {
		t.Fatalf("cache should be disabled")
	}
	var dest map[string]string
	hit, err := GetJSON(ctx, "k", &dest)
	if hit || err != nil {
		t.Fatalf("disabled get want miss without error, got hit=%v err=%v", hit, err)
	}
	if err := SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute); err != nil {
		t.Fatalf("disabled set should be no-op: %v", err)
	}
	if err := Ping(ctx); err != nil {
		t.Fatalf("disabled ping should succeed: %v", err)
	}
	if _, err := NewCartStorage("cart:1"); !errors.Is(err, ErrRedisDisabled) {
		t.Fatalf("cart storage without redis want ErrRedisDisabled got %v", err)
	}
	if CatalogVersion(ctx) != 0 {
		t.Fatalf("catalog version should be 0 when disabled")
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	resetClient(t)
	UseClient(nil, " shop ")
	if got := BuildKey("cart:7"); got != "shop:cart:7" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := BuildKey("  "); got != "shop" {
		t.Fatalf("empty key should return prefix, got %s", got)
	}
	UseClient(nil, "")
	if got := BuildKey("x"); got != "bloom:x" {
		t.Fatalf("default prefix mismatch: %s", got)
	}
}

func TestCatalogKeysChangeWithVersion(t *testing.T) {
	if CategoriesKey(1) == CategoriesKey(2) {
		t.Fatalf("categories key must include version")
	}
	if ProductKey(3, 10) == ProductKey(4, 10) {
		t.Fatalf("product key must include version")
	}
	if ProductsKey(1, "roses", "", 1, 20) == ProductsKey(1, "roses", "", 2, 20) {
		t.Fatalf("products key must include page")
	}
}

func TestNewCartStorageWithClientValidates(t *testing.T) {
	if _, err := NewCartStorageWithClient(nil, "cart:1"); !errors.Is(err, ErrRedisDisabled) {
		t.Fatalf("nil client want ErrRedisDisabled got %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })
	if _, err := NewCartStorageWithClient(client, "  "); err == nil {
		t.Fatalf("empty key should be rejected")
	}
}

// 需要真实 Redis：TEST_REDIS_ADDR=127.0.0.1:6379
func TestRedisCartStorageRoundTrip(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("skip redis test: TEST_REDIS_ADDR is empty")
	}
	resetClient(t)
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	UseClient(client, "bloom-test")

	ctx := context.Background()
	storage, err := NewCartStorage("cart:" + t.Name())
	if err != nil {
		t.Fatalf("new cart storage failed: %v", err)
	}
	if storage.Key() != "bloom-test:cart:"+t.Name() {
		t.Fatalf("unexpected key: %s", storage.Key())
	}
	t.Cleanup(func() { _ = storage.Clear(ctx) })

	if data, err := storage.Load(ctx); err != nil || data != nil {
		t.Fatalf("missing slot want nil,nil got %s,%v", data, err)
	}
	payload := []byte(`[{"id":1,"price":"10.00","quantity":2}]`)
	if err := storage.Save(ctx, payload); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := storage.Load(ctx)
	if err != nil || string(data) != string(payload) {
		t.Fatalf("load want %s got %s err=%v", payload, data, err)
	}

	before := CatalogVersion(ctx)
	if err := BumpCatalogVersion(ctx); err != nil {
		t.Fatalf("bump catalog version failed: %v", err)
	}
	if CatalogVersion(ctx) != before+1 {
		t.Fatalf("catalog version should increase")
	}
	_ = Del(ctx, catalogVersionKey)
}

func TestBuildAdminAuthState(t *testing.T) {
	if BuildAdminAuthState(nil) != nil {
		t.Fatalf("nil admin should build nil state")
	}
	invalidBefore := time.Unix(1700000000, 0)
	state := BuildAdminAuthState(&models.Admin{ID: 3, Username: "florist", IsSuper: true, TokenVersion: 2, TokenInvalidBefore: &invalidBefore})
	if state.AdminID != 3 || !state.IsSuper || state.TokenVersion != 2 || state.TokenInvalidBefore != 1700000000 {
		t.Fatalf("unexpected admin auth state: %+v", state)
	}

	resetClient(t)
	UseClient(nil, "")
	if err := SetAdminAuthState(context.Background(), state); err != nil {
		t.Fatalf("set admin state on disabled cache should be noop, got %v", err)
	}
	if _, hit, err := GetAdminAuthState(context.Background(), 3); hit || err != nil {
		t.Fatalf("disabled cache want miss, got hit=%v err=%v", hit, err)
	}
}
