package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// AdminProductQuery 后台商品列表查询条件（含下架商品）
type AdminProductQuery struct {
	CategoryID uint
	Search     string
	Page       int
	PageSize   int
}

// UpdateCategoryInput 更新分类输入，nil 字段保持不变
type UpdateCategoryInput struct {
	Slug      *string
	NameJSON  map[string]interface{}
	Icon      *string
	SortOrder *int
}

// UpdateProductInput 更新商品输入，nil 字段保持不变
type UpdateProductInput struct {
	CategoryID      *uint
	Slug            *string
	TitleJSON       map[string]interface{}
	DescriptionJSON map[string]interface{}
	PriceAmount     *models.Money
	PriceCurrency   *string
	Images          []string
	Tags            []string
	SortOrder       *int
	IsActive        *bool
}

// GetCategory 获取分类
func (s *CatalogService) GetCategory(id uint) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// UpdateCategory 更新分类
func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}
	if input.Slug != nil {
		slug, err := normalizeSlug(*input.Slug)
		if err != nil {
			return nil, err
		}
		if slug != category.Slug {
			count, err := s.categoryRepo.CountBySlug(slug)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrSlugExists
			}
			category.Slug = slug
		}
	}
	if input.NameJSON != nil {
		category.NameJSON = models.JSON(input.NameJSON)
	}
	if input.Icon != nil {
		category.Icon = strings.TrimSpace(*input.Icon)
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

// DeleteCategory 删除分类，分类下仍有商品（含下架）时拒绝
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.GetCategory(id); err != nil {
		return err
	}
	count, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.categoryRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	logger.Infow("catalog_category_deleted", "category_id", id)
	return nil
}

// ListAdminProducts 后台商品列表，不走缓存
func (s *CatalogService) ListAdminProducts(query AdminProductQuery) (*ProductPage, error) {
	normalized := normalizeProductQuery(ProductQuery(query))
	products, total, err := s.productRepo.List(repository.ProductListFilter{
		Page:         normalized.Page,
		PageSize:     normalized.PageSize,
		CategoryID:   normalized.CategoryID,
		Search:       normalized.Search,
		WithCategory: true,
	})
	if err != nil {
		return nil, err
	}
	return &ProductPage{Items: products, Total: total}, nil
}

// GetAdminProduct 获取商品（含下架）
func (s *CatalogService) GetAdminProduct(id uint) (*models.Product, error) {
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
	return product, nil
}

// UpdateProduct 更新商品
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, input UpdateProductInput) (*models.Product, error) {
	product, err := s.GetAdminProduct(id)
	if err != nil {
		return nil, err
	}
	if input.CategoryID != nil && *input.CategoryID != product.CategoryID {
		category, err := s.GetCategory(*input.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = category.ID
		product.Category = nil
	}
	if input.Slug != nil {
		slug, err := normalizeSlug(*input.Slug)
		if err != nil {
			return nil, err
		}
		if slug != product.Slug {
			count, err := s.productRepo.CountBySlug(slug)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrSlugExists
			}
			product.Slug = slug
		}
	}
	if input.PriceAmount != nil {
		price, err := normalizePrice(*input.PriceAmount)
		if err != nil {
			return nil, err
		}
		product.PriceAmount = price
	}
	if input.PriceCurrency != nil {
		if currency := strings.ToUpper(strings.TrimSpace(*input.PriceCurrency)); currency != "" {
			product.PriceCurrency = currency
		}
	}
	if input.TitleJSON != nil {
		product.TitleJSON = models.JSON(input.TitleJSON)
	}
	if input.DescriptionJSON != nil {
		product.DescriptionJSON = models.JSON(input.DescriptionJSON)
	}
	if input.Images != nil {
		product.Images = models.StringArray(input.Images)
	}
	if input.Tags != nil {
		product.Tags = models.StringArray(input.Tags)
	}
	if input.SortOrder != nil {
		product.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return product, nil
}

// DeleteProduct 软删除商品；已下单的订单项保留快照，不受影响
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.GetAdminProduct(id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	logger.Infow("catalog_product_deleted", "product_id", id)
	return nil
}

func normalizeSlug(raw string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(raw))
	if len(slug) > 100 || !slugPattern.MatchString(slug) {
		return "", ErrSlugInvalid
	}
	return slug, nil
}

// normalizePrice 价格不得为负，统一保留两位小数
func normalizePrice(price models.Money) (models.Money, error) {
	if price.Decimal.IsNegative() {
		return models.Money{}, ErrProductPriceInvalid
	}
	return models.NewMoneyFromDecimal(price.Decimal), nil
}
