package provider

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateDB(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func TestNewContainerWithDBLocalCheckout(t *testing.T) {
	cfg := &config.Config{
		Cart:     config.CartConfig{StorageDriver: constants.CartStorageDatabase},
		Checkout: config.CheckoutConfig{Mode: constants.CheckoutModeLocal},
	}
	c, err := NewContainerWithDB(cfg, newTestDB(t))
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	if c.CartService == nil || c.OrderService == nil || c.CatalogService == nil || c.TelegramAuthService == nil {
		t.Fatalf("services should be initialized: %+v", c)
	}
	if c.AdminAuthService == nil || c.AuthzService == nil || c.CaptchaService == nil || c.UserAdminService == nil {
		t.Fatalf("admin services should be initialized: %+v", c)
	}
	if c.OrderClient != nil {
		t.Fatalf("local checkout should not build an order client")
	}
	if c.QueueClient != nil {
		t.Fatalf("container without redis should not build a queue client")
	}
}

func TestNewContainerWithDBRemoteCheckout(t *testing.T) {
	cfg := &config.Config{
		Cart: config.CartConfig{StorageDriver: constants.CartStorageMemory},
		Checkout: config.CheckoutConfig{
			Mode:          constants.CheckoutModeRemote,
			RemoteBaseURL: "https://orders.example.com",
			RemoteToken:   "token",
		},
	}
	c, err := NewContainerWithDB(cfg, newTestDB(t))
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	if c.OrderClient == nil {
		t.Fatalf("remote checkout should build an order client")
	}
}

func TestNewContainerWithDBRejectsBadConfig(t *testing.T) {
	cases := map[string]*config.Config{
		"unknown cart driver": {Cart: config.CartConfig{StorageDriver: "s3"}},
		"redis without redis": {Cart: config.CartConfig{StorageDriver: constants.CartStorageRedis}},
		"remote without url": {
			Cart:     config.CartConfig{StorageDriver: constants.CartStorageMemory},
			Checkout: config.CheckoutConfig{Mode: constants.CheckoutModeRemote},
		},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewContainerWithDB(cfg, newTestDB(t)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
