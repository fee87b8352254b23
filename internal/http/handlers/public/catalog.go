package public

import (
	"errors"
	"strings"

	"github.com/bloom-miniapp/internal/http/response"
	"github.com/bloom-miniapp/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCategories 分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CatalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// GetProducts 上架商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	categoryID := queryInt(c, "category_id", 0)
	if categoryID < 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	query := service.ProductQuery{
		CategoryID: uint(categoryID),
		Search:     strings.TrimSpace(c.Query("search")),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 20),
	}
	query.Page, query.PageSize = normalizePagination(query.Page, query.PageSize)

	page, err := h.CatalogService.ListProducts(c.Request.Context(), query)
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, page.Items, response.BuildPagination(query.Page, query.PageSize, page.Total))
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "error.product_not_found")
	if !ok {
		return
	}
	product, err := h.CatalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.Success(c, product)
}
