package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bloom-miniapp/internal/cache"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/repository"
)

// ProductQuery 商品列表查询条件
type ProductQuery struct {
	CategoryID uint
	Search     string
	Page       int
	PageSize   int
}

// ProductPage 商品分页结果
type ProductPage struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
}

// CreateCategoryInput 创建分类输入
type CreateCategoryInput struct {
	Slug      string
	NameJSON  map[string]interface{}
	Icon      string
	SortOrder int
}

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	CategoryID      uint
	Slug            string
	TitleJSON       map[string]interface{}
	DescriptionJSON map[string]interface{}
	PriceAmount     models.Money
	PriceCurrency   string
	Images          []string
	Tags            []string
	SortOrder       int
	IsActive        bool
}

// CatalogService 商品目录服务
// 列表与详情在 Redis 启用时缓存 cache.CatalogTTL，写操作通过递增版本号失效。
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// ListCategories 分类列表
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	key := cache.CategoriesKey(cache.CatalogVersion(ctx))
	var cached []models.Category
	if hit, err := cache.GetJSON(ctx, key, &cached); err != nil {
		logger.Warnw("catalog_cache_get_failed", "key", key, "error", err)
	} else if hit {
		return cached, nil
	}

	categories, err := s.categoryRepo.List()
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, key, categories, cache.CatalogTTL); err != nil {
		logger.Warnw("catalog_cache_set_failed", "key", key, "error", err)
	}
	return categories, nil
}

// ListProducts 上架商品列表
func (s *CatalogService) ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	query = normalizeProductQuery(query)
	key := cache.ProductsKey(cache.CatalogVersion(ctx), categoryKeyPart(query.CategoryID), query.Search, query.Page, query.PageSize)
	var cached ProductPage
	if hit, err := cache.GetJSON(ctx, key, &cached); err != nil {
		logger.Warnw("catalog_cache_get_failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	products, total, err := s.productRepo.List(repository.ProductListFilter{
		Page:         query.Page,
		PageSize:     query.PageSize,
		CategoryID:   query.CategoryID,
		Search:       query.Search,
		OnlyActive:   true,
		WithCategory: true,
	})
	if err != nil {
		return nil, err
	}
	page := &ProductPage{Items: products, Total: total}
	if err := cache.SetJSON(ctx, key, page, cache.CatalogTTL); err != nil {
		logger.Warnw("catalog_cache_set_failed", "key", key, "error", err)
	}
	return page, nil
}

// GetProduct 获取上架商品详情
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrProductNotFound
	}
	key := cache.ProductKey(cache.CatalogVersion(ctx), id)
	var cached models.Product
	if hit, err := cache.GetJSON(ctx, key, &cached); err != nil {
		logger.Warnw("catalog_cache_get_failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	product, err := s.productRepo.GetByID(id, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if err := cache.SetJSON(ctx, key, product, cache.CatalogTTL); err != nil {
		logger.Warnw("catalog_cache_set_failed", "key", key, "error", err)
	}
	return product, nil
}

// GetActiveProductForSale 绕过缓存读取上架商品，用于加购与下单时的价格校验
func (s *CatalogService) GetActiveProductForSale(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrProductNotFound
	}
	product, err := s.productRepo.GetByID(id, false)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, ErrProductNotAvailable
	}
	return product, nil
}

// CreateCategory 创建分类
func (s *CatalogService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	slug, err := normalizeSlug(input.Slug)
	if err != nil {
		return nil, err
	}
	count, err := s.categoryRepo.CountBySlug(slug)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}
	category := models.Category{
		Slug:      slug,
		NameJSON:  models.JSON(input.NameJSON),
		Icon:      input.Icon,
		SortOrder: input.SortOrder,
	}
	if err := s.categoryRepo.Create(&category); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &category, nil
}

// CreateProduct 创建商品
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	slug, err := normalizeSlug(input.Slug)
	if err != nil {
		return nil, err
	}
	price, err := normalizePrice(input.PriceAmount)
	if err != nil {
		return nil, err
	}
	count, err := s.productRepo.CountBySlug(slug)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}
	currency := strings.ToUpper(strings.TrimSpace(input.PriceCurrency))
	if currency == "" {
		currency = "RUB"
	}
	product := models.Product{
		CategoryID:      category.ID,
		Slug:            slug,
		TitleJSON:       models.JSON(input.TitleJSON),
		DescriptionJSON: models.JSON(input.DescriptionJSON),
		PriceAmount:     price,
		PriceCurrency:   currency,
		Images:          models.StringArray(input.Images),
		Tags:            models.StringArray(input.Tags),
		IsActive:        true,
		SortOrder:       input.SortOrder,
	}
	if err := s.productRepo.Create(&product); err != nil {
		return nil, err
	}
	if !input.IsActive {
		product.IsActive = false
		if err := s.productRepo.Update(&product); err != nil {
			return nil, err
		}
	}
	s.invalidate(ctx)
	return &product, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := cache.BumpCatalogVersion(ctx); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "error", err)
	}
}

func normalizeProductQuery(query ProductQuery) ProductQuery {
	query.Search = strings.TrimSpace(query.Search)
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}
	return query
}

func categoryKeyPart(categoryID uint) string {
	if categoryID == 0 {
		return "all"
	}
	return strconv.FormatUint(uint64(categoryID), 10)
}
