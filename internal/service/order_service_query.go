package service

import (
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/repository"
)

// ListOrders 用户订单列表
func (s *OrderService) ListOrders(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	orders, total, err := s.orderRepo.ListByUser(repository.OrderListFilter{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	for i := range orders {
		s.ensureOrderCanceledIfExpired(&orders[i])
	}
	return orders, total, nil
}

// GetOrder 用户订单详情
func (s *OrderService) GetOrder(userID, orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	s.ensureOrderCanceledIfExpired(order)
	return order, nil
}

// CancelExpiredOrder 取消已过期的待支付订单，其他状态原样返回
func (s *OrderService) CancelExpiredOrder(orderID uint) (*models.Order, error) {
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
	canceled, err := s.orderRepo.CancelIfExpired(order.ID, s.now())
	if err != nil {
		return nil, err
	}
	if canceled {
		logger.Infow("order_timeout_canceled", "order_id", order.ID, "order_no", order.OrderNo)
		return s.orderRepo.GetByID(order.ID)
	}
	return order, nil
}

// MarkOrderNotified 记录新订单已通知
func (s *OrderService) MarkOrderNotified(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.NotifiedAt != nil {
		return order, nil
	}
	now := s.now()
	if err := s.orderRepo.MarkNotified(order.ID, now); err != nil {
		return nil, err
	}
	order.NotifiedAt = &now
	return order, nil
}

// ensureOrderCanceledIfExpired 读取时懒同步过期订单状态
func (s *OrderService) ensureOrderCanceledIfExpired(order *models.Order) {
	if order == nil || order.Status != constants.OrderStatusPendingPayment || order.ExpiresAt == nil {
		return
	}
	now := s.now()
	if order.ExpiresAt.After(now) {
		return
	}
	canceled, err := s.orderRepo.CancelIfExpired(order.ID, now)
	if err != nil {
		logger.Warnw("order_lazy_cancel_failed", "order_id", order.ID, "error", err)
		return
	}
	if canceled {
		order.Status = constants.OrderStatusCanceled
		canceledAt := now
		order.CanceledAt = &canceledAt
	}
}
