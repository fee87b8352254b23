package main

import (
	"context"
	"errors"

	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/provider"
	"github.com/bloom-miniapp/internal/service"

	"github.com/shopspring/decimal"
)

type seedProduct struct {
	slug   string
	titles map[string]interface{}
	desc   map[string]interface{}
	price  string
	image  string
	tags   []string
}

type seedCategory struct {
	slug     string
	names    map[string]interface{}
	icon     string
	products []seedProduct
}

var catalog = []seedCategory{
	{
		slug:  "roses",
		names: map[string]interface{}{"ru-RU": "Розы", "en-US": "Roses", "zh-CN": "玫瑰"},
		icon:  "🌹",
		products: []seedProduct{
			{
				slug:   "red-roses-15",
				titles: map[string]interface{}{"ru-RU": "15 красных роз", "en-US": "15 red roses", "zh-CN": "15 朵红玫瑰"},
				desc:   map[string]interface{}{"ru-RU": "Классический букет из эквадорских роз", "en-US": "Classic bouquet of Ecuadorian roses"},
				price:  "3500.00",
				image:  "/img/red-roses-15.jpg",
				tags:   []string{"bestseller"},
			},
			{
				slug:   "white-roses-25",
				titles: map[string]interface{}{"ru-RU": "25 белых роз", "en-US": "25 white roses", "zh-CN": "25 朵白玫瑰"},
				price:  "5200.00",
				image:  "/img/white-roses-25.jpg",
			},
		},
	},
	{
		slug:  "peonies",
		names: map[string]interface{}{"ru-RU": "Пионы", "en-US": "Peonies", "zh-CN": "牡丹"},
		icon:  "🌸",
		products: []seedProduct{
			{
				slug:   "peonies-pink-9",
				titles: map[string]interface{}{"ru-RU": "9 розовых пионов", "en-US": "9 pink peonies", "zh-CN": "9 朵粉色牡丹"},
				price:  "4100.00",
				image:  "/img/peonies-pink-9.jpg",
				tags:   []string{"seasonal"},
			},
		},
	},
	{
		slug:  "tulips",
		names: map[string]interface{}{"ru-RU": "Тюльпаны", "en-US": "Tulips", "zh-CN": "郁金香"},
		icon:  "🌷",
		products: []seedProduct{
			{
				slug:   "tulips-mix-25",
				titles: map[string]interface{}{"ru-RU": "25 тюльпанов микс", "en-US": "25 mixed tulips", "zh-CN": "25 朵混色郁金香"},
				price:  "2700.00",
				image:  "/img/tulips-mix-25.jpg",
				tags:   []string{"spring"},
			},
		},
	},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	container, err := provider.NewContainerWithDB(cfg, models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to build container: %v", err)
	}
	created, err := seedCatalog(context.Background(), container)
	if err != nil {
		stdLog.Fatalf("Failed to seed catalog: %v", err)
	}
	logger.Infow("seed_completed", "created", created)
}

// seedCatalog 写入示例分类与商品，已存在的 slug 跳过
func seedCatalog(ctx context.Context, container *provider.Container) (int, error) {
	created := 0
	for _, cat := range catalog {
		category, err := container.CatalogService.CreateCategory(ctx, service.CreateCategoryInput{
			Slug:     cat.slug,
			NameJSON: cat.names,
			Icon:     cat.icon,
		})
		switch {
		case errors.Is(err, service.ErrSlugExists):
			category, err = container.CategoryRepo.GetBySlug(cat.slug)
			if err != nil {
				return created, err
			}
			if category == nil {
				return created, service.ErrCategoryNotFound
			}
			logger.Infow("seed_category_exists", "slug", cat.slug)
		case err != nil:
			return created, err
		default:
			created++
			logger.Infow("seed_category_created", "slug", cat.slug, "category_id", category.ID)
		}

		for i, item := range cat.products {
			price, err := decimal.NewFromString(item.price)
			if err != nil {
				return created, err
			}
			product, err := container.CatalogService.CreateProduct(ctx, service.CreateProductInput{
				CategoryID:      category.ID,
				Slug:            item.slug,
				TitleJSON:       item.titles,
				DescriptionJSON: item.desc,
				PriceAmount:     models.NewMoneyFromDecimal(price),
				Images:          []string{item.image},
				Tags:            item.tags,
				SortOrder:       len(cat.products) - i,
				IsActive:        true,
			})
			if errors.Is(err, service.ErrSlugExists) {
				logger.Infow("seed_product_exists", "slug", item.slug)
				continue
			}
			if err != nil {
				return created, err
			}
			created++
			logger.Infow("seed_product_created", "slug", item.slug, "product_id", product.ID)
		}
	}
	return created, nil
}
