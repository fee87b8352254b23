package public

import (
	"strings"

	"github.com/bloom-miniapp/internal/cart"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 加入购物车请求
type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// CartQuantityRequest 修改数量请求
type CartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	CustomerName string                 `json:"customer_name"`
	Phone        string                 `json:"phone"`
	Address      string                 `json:"address"`
	DeliveryDate string                 `json:"delivery_date"`
	Comment      string                 `json:"comment"`
	Extra        map[string]interface{} `json:"extra"`
}

// toOrderMeta 转换为订单附加信息，空字段不写入
func (r CheckoutRequest) toOrderMeta(clientIP string) cart.OrderMeta {
	meta := cart.OrderMeta{}
	for key, value := range r.Extra {
		meta[key] = value
	}
	put := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			meta[key] = value
		}
	}
	put(constants.OrderMetaCustomerName, r.CustomerName)
	put(constants.OrderMetaPhone, r.Phone)
	put(constants.OrderMetaAddress, r.Address)
	put(constants.OrderMetaDeliveryDate, r.DeliveryDate)
	put(constants.OrderMetaComment, r.Comment)
	put(constants.OrderMetaClientIP, clientIP)
	return meta
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	snapshot, err := h.CartService.Get(uid)
	if err != nil {
		respondCartError(c, err, "error.cart_fetch_failed")
		return
	}
	response.Success(c, snapshot)
}

// AddCartItem 加入购物车，已存在时累加数量
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	snapshot, err := h.CartService.Add(uid, req.ProductID, req.Quantity)
	if err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, snapshot)
}

// UpdateCartItem 修改购物车商品数量，数量为 0 时移除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := parseUintParam(c, "product_id", "error.cart_item_not_found")
	if !ok {
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	snapshot, err := h.CartService.Update(uid, productID, *req.Quantity)
	if err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, snapshot)
}

// DeleteCartItem 移除购物车商品
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := parseUintParam(c, "product_id", "error.cart_item_not_found")
	if !ok {
		return
	}
	snapshot, err := h.CartService.Remove(uid, productID)
	if err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, snapshot)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	snapshot, err := h.CartService.Clear(uid)
	if err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, snapshot)
}

// Checkout 提交购物车下单，成功后购物车被清空
func (h *Handler) Checkout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.CartService.Checkout(c.Request.Context(), uid, req.toOrderMeta(c.ClientIP()))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	requestLog(c).Infow("cart_checkout_completed", "user_id", uid, "order_id", result.OrderID, "order_no", result.OrderNo)
	response.Success(c, result)
}
