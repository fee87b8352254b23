package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/queue"
	"github.com/bloom-miniapp/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	cfg      *config.Config
	catalog  *CatalogService
	orders   *OrderService
	auth     *TelegramAuthService
	userRepo *repository.GormUserRepository
	slotRepo *repository.GormCartSlotRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateDB(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{
		UserJWT:      config.JWTConfig{SecretKey: "test-secret", ExpireHours: 2},
		TelegramAuth: config.TelegramAuthConfig{Enabled: true, BotToken: "123456:TEST", LoginExpireSeconds: 3600},
		Cart:         config.CartConfig{StorageDriver: "memory", MaxQuantity: 99},
		Order:        config.OrderConfig{Currency: "RUB", PaymentExpireMinutes: 30},
	}
	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	return &testEnv{
		db:       db,
		cfg:      cfg,
		catalog:  NewCatalogService(repository.NewCategoryRepository(db), productRepo),
		orders:   NewOrderService(cfg.Order, repository.NewOrderRepository(db), productRepo, userRepo, queueClient),
		auth:     NewTelegramAuthService(cfg, userRepo),
		userRepo: userRepo,
		slotRepo: repository.NewCartSlotRepository(db),
	}
}

func (e *testEnv) createProduct(t *testing.T, slug string, price int64, active bool) *models.Product {
	t.Helper()
	ctx := context.Background()
	category, err := e.catalog.categoryRepo.GetBySlug("bouquets")
	if err != nil {
		t.Fatalf("get category failed: %v", err)
	}
	if category == nil {
		category, err = e.catalog.CreateCategory(ctx, CreateCategoryInput{
			Slug:     "bouquets",
			NameJSON: map[string]interface{}{"en-US": "Bouquets"},
		})
		if err != nil {
			t.Fatalf("create category failed: %v", err)
		}
	}
	product, err := e.catalog.CreateProduct(ctx, CreateProductInput{
		CategoryID:  category.ID,
		Slug:        slug,
		TitleJSON:   map[string]interface{}{"en-US": "Bouquet " + slug},
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Images:      []string{"/img/" + slug + ".jpg"},
		IsActive:    active,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func (e *testEnv) createUser(t *testing.T, telegramID int64) *models.User {
	t.Helper()
	user := &models.User{TelegramID: telegramID, FirstName: "Anna", Status: "active"}
	if err := e.userRepo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}
