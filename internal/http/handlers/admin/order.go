package admin

import (
	"strings"
	"time"

	"github.com/bloom-miniapp/internal/http/response"
	"github.com/bloom-miniapp/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 更新订单状态请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, key: "error.order_status_invalid"},
	{target: service.ErrOrderStatusTransition, code: response.CodeConflict, key: "error.order_status_transition"},
}

// ListOrders 订单列表，支持按用户、状态、订单号与创建时间（RFC3339）筛选
func (h *Handler) ListOrders(c *gin.Context) {
	userID, ok := queryUint(c, "user_id")
	if !ok {
		return
	}
	createdFrom, ok := queryTime(c, "created_from")
	if !ok {
		return
	}
	createdTo, ok := queryTime(c, "created_to")
	if !ok {
		return
	}
	page, pageSize := normalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	orders, total, err := h.OrderService.ListOrdersForAdmin(service.AdminOrderQuery{
		Page:        page,
		PageSize:    pageSize,
		UserID:      userID,
		Status:      c.Query("status"),
		OrderNo:     c.Query("order_no"),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, "error.order_fetch_failed")
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "error.order_not_found")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderForAdmin(id)
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 更新订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "error.order_not_found")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderService.UpdateOrderStatusForAdmin(id, req.Status)
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, "error.order_update_failed")
		return
	}
	response.Success(c, order)
}

func queryTime(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return nil, false
	}
	return &value, true
}
