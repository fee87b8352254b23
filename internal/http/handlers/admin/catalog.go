package admin

import (
	"strings"

	"github.com/bloom-miniapp/internal/http/response"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryRequest 创建或更新分类请求；更新时缺省字段保持不变
type CategoryRequest struct {
	Slug      *string                `json:"slug"`
	Name      map[string]interface{} `json:"name"`
	Icon      *string                `json:"icon"`
	SortOrder *int                   `json:"sort_order"`
}

// ProductRequest 创建或更新商品请求；更新时缺省字段保持不变
type ProductRequest struct {
	CategoryID    *uint                  `json:"category_id"`
	Slug          *string                `json:"slug"`
	Title         map[string]interface{} `json:"title"`
	Description   map[string]interface{} `json:"description"`
	PriceAmount   *models.Money          `json:"price_amount"`
	PriceCurrency *string                `json:"price_currency"`
	Images        []string               `json:"images"`
	Tags          []string               `json:"tags"`
	SortOrder     *int                   `json:"sort_order"`
	IsActive      *bool                  `json:"is_active"`
}

var catalogErrorRules = []mappedHandlerError{
	{target: service.ErrCategoryNotFound, code: response.CodeNotFound, key: "error.category_not_found"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrSlugExists, code: response.CodeConflict, key: "error.slug_exists"},
	{target: service.ErrSlugInvalid, code: response.CodeBadRequest, key: "error.slug_invalid"},
	{target: service.ErrProductPriceInvalid, code: response.CodeBadRequest, key: "error.product_price_invalid"},
	{target: service.ErrCategoryInUse, code: response.CodeConflict, key: "error.category_in_use"},
}

// ListCategories 分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CatalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Slug == nil || len(req.Name) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	input := service.CreateCategoryInput{Slug: *req.Slug, NameJSON: req.Name}
	if req.Icon != nil {
		input.Icon = strings.TrimSpace(*req.Icon)
	}
	if req.SortOrder != nil {
		input.SortOrder = *req.SortOrder
	}
	category, err := h.CatalogService.CreateCategory(c.Request.Context(), input)
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, "error.category_save_failed")
		return
	}
	requestLog(c).Infow("admin_category_created", "category_id", category.ID, "slug", category.Slug)
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "error.category_not_found")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CatalogService.UpdateCategory(c.Request.Context(), id, service.UpdateCategoryInput{
		Slug:      req.Slug,
		NameJSON:  req.Name,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, "error.category_save_failed")
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "error.category_not_found")
	if !ok {
		return
	}
	if err := h.CatalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondWithMappedError(c, err, catalogErrorRules, "error.category_delete_failed")
		return
	}
	requestLog(c).Infow("admin_category_deleted", "category_id", id)
	response.Success(c, nil)
}

// ListProducts 商品列表（含下架）
func (h *Handler) ListProducts(c *gin.Context) {
	categoryID, ok := queryUint(c, "category_id")
	if !ok {
		return
	}
	page, pageSize := normalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	result, err := h.CatalogService.ListAdminProducts(service.AdminProductQuery{
		CategoryID: categoryID,
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, result.Items, response.BuildPagination(page, pageSize, result.Total))
}

// GetProduct 商品详情（含下架）
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "error.product_not_found")
	if !ok {
		return
	}
	product, err := h.CatalogService.GetAdminProduct(id)
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, "error.product_fetch_failed")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品，is_active 缺省为上架
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.CategoryID == nil || req.Slug == nil || len(req.Title) == 0 || req.PriceAmount == nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	input := service.CreateProductInput{
		CategoryID:      *req.CategoryID,
		Slug:            *req.Slug,
		TitleJSON:       req.Title,
		DescriptionJSON: req.Description,
		PriceAmount:     *req.PriceAmount,
		Images:          req.Images,
		Tags:            req.Tags,
		IsActive:        true,
	}
	if req.PriceCurrency != nil {
		input.PriceCurrency = *req.PriceCurrency
	}
	if req.SortOrder != nil {
		input.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		input.IsActive = *req.IsActive
	}
	product, err := h.CatalogService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, "error.product_save_failed")
		return
	}
	requestLog(c).Infow("admin_product_created", "product_id", product.ID, "slug", product.Slug)
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "error.product_not_found")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.CatalogService.UpdateProduct(c.Request.Context(), id, service.UpdateProductInput{
		CategoryID:      req.CategoryID,
		Slug:            req.Slug,
		TitleJSON:       req.Title,
		DescriptionJSON: req.Description,
		PriceAmount:     req.PriceAmount,
		PriceCurrency:   req.PriceCurrency,
		Images:          req.Images,
		Tags:            req.Tags,
		SortOrder:       req.SortOrder,
		IsActive:        req.IsActive,
	})
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, "error.product_save_failed")
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "error.product_not_found")
	if !ok {
		return
	}
	if err := h.CatalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondWithMappedError(c, err, catalogErrorRules, "error.product_delete_failed")
		return
	}
	requestLog(c).Infow("admin_product_deleted", "product_id", id)
	response.Success(c, nil)
}
