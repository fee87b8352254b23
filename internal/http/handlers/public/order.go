package public

import (
	"errors"

	"github.com/bloom-miniapp/internal/cart"
	"github.com/bloom-miniapp/internal/http/response"
	"github.com/bloom-miniapp/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrder 按下单请求创建订单
// 请求体即购物车结算时发送的 {...meta, "items": [...]}，远端模式下由另一实例调用。
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req cart.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:   uid,
		Request:  req,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}
	response.Success(c, service.OrderResultFrom(order))
}

// ListOrders 当前用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := normalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	orders, total, err := h.OrderService.ListOrders(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id", "error.order_not_found")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(uid, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.Success(c, order)
}
