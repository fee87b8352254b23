package worker

import (
	"context"
	"errors"

	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/provider"
	"github.com/bloom-miniapp/internal/queue"
	"github.com/bloom-miniapp/internal/service"

	"github.com/hibiken/asynq"
)

// OrderTasks 任务处理所需的订单操作
type OrderTasks interface {
	MarkOrderNotified(orderID uint) (*models.Order, error)
	CancelExpiredOrder(orderID uint) (*models.Order, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	orders OrderTasks
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	if c == nil || c.OrderService == nil {
		return &Consumer{}
	}
	return &Consumer{orders: c.OrderService}
}

// NewConsumerWithOrders 使用指定订单操作创建消费者
func NewConsumerWithOrders(orders OrderTasks) *Consumer {
	return &Consumer{orders: orders}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderCreated, c.handleOrderCreated)
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
}

func (c *Consumer) handleOrderCreated(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_created_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderCreatedPayload(task.Payload())
	if err != nil {
		// 载荷无法解析，重试没有意义
		logger.Warnw("worker_order_created_invalid_payload", "error", err)
		return asynq.SkipRetry
	}
	if c.orders == nil {
		logger.Warnw("worker_order_created_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.orders.MarkOrderNotified(payload.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			logger.Debugw("worker_order_created_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_created_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	logger.Infow("worker_order_created_notified",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"customer_name", order.CustomerName,
		"total_amount", order.TotalAmount.String(),
		"currency", order.Currency,
	)
	return nil
}

func (c *Consumer) handleOrderTimeoutCancel(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderTimeoutCancelPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_order_timeout_cancel_invalid_payload", "error", err)
		return asynq.SkipRetry
	}
	if c.orders == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.orders.CancelExpiredOrder(payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_order_timeout_cancel_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrOrderFetchFailed):
			logger.Warnw("worker_order_timeout_cancel_fetch_failed", "order_id", payload.OrderID, "error", err)
			return err
		default:
			logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	logger.Debugw("worker_order_timeout_cancel_done", "order_id", order.ID, "status", order.Status)
	return nil
}
