package service

import (
	"strings"
	"time"

	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/repository"
)

// 后台允许的订单状态流转
var adminOrderTransitions = map[string][]string{
	constants.OrderStatusPendingPayment: {constants.OrderStatusPaid, constants.OrderStatusCanceled},
	constants.OrderStatusPaid:           {constants.OrderStatusDelivering, constants.OrderStatusCompleted, constants.OrderStatusCanceled},
	constants.OrderStatusDelivering:     {constants.OrderStatusCompleted},
}

// AdminOrderQuery 后台订单列表查询条件
type AdminOrderQuery struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ListOrdersForAdmin 后台订单列表
func (s *OrderService) ListOrdersForAdmin(query AdminOrderQuery) ([]models.Order, int64, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 || query.PageSize > 100 {
		query.PageSize = 20
	}
	status := strings.TrimSpace(query.Status)
	if status != "" && !isKnownOrderStatus(status) {
		return nil, 0, ErrOrderStatusInvalid
	}
	orders, total, err := s.orderRepo.ListAdmin(repository.OrderListFilter{
		Page:        query.Page,
		PageSize:    query.PageSize,
		UserID:      query.UserID,
		Status:      status,
		OrderNo:     strings.TrimSpace(query.OrderNo),
		CreatedFrom: query.CreatedFrom,
		CreatedTo:   query.CreatedTo,
	})
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	for i := range orders {
		s.ensureOrderCanceledIfExpired(&orders[i])
	}
	return orders, total, nil
}

// GetOrderForAdmin 后台订单详情
func (s *OrderService) GetOrderForAdmin(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	s.ensureOrderCanceledIfExpired(order)
	return order, nil
}

// UpdateOrderStatusForAdmin 后台更新订单状态
// 以当前状态为条件更新，期间状态被他人修改时返回 ErrOrderStatusTransition。
func (s *OrderService) UpdateOrderStatusForAdmin(orderID uint, target string) (*models.Order, error) {
	target = strings.TrimSpace(target)
	if !isKnownOrderStatus(target) {
		return nil, ErrOrderStatusInvalid
	}
	order, err := s.GetOrderForAdmin(orderID)
	if err != nil {
		return nil, err
	}
	if !canTransitOrderStatus(order.Status, target) {
		return nil, ErrOrderStatusTransition
	}
	now := s.now()
	updates := map[string]interface{}{"updated_at": now}
	if target == constants.OrderStatusCanceled {
		updates["canceled_at"] = now
	}
	ok, err := s.orderRepo.TransitionStatus(order.ID, order.Status, target, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderStatusTransition
	}
	logger.Infow("order_status_updated", "order_id", order.ID, "order_no", order.OrderNo, "from", order.Status, "to", target)
	return s.GetOrderForAdmin(order.ID)
}

func canTransitOrderStatus(from, to string) bool {
	for _, next := range adminOrderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func isKnownOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPendingPayment,
		constants.OrderStatusPaid,
		constants.OrderStatusDelivering,
		constants.OrderStatusCompleted,
		constants.OrderStatusCanceled:
		return true
	}
	return false
}
