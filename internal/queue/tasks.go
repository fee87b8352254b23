package queue

import (
	"encoding/json"
	"fmt"

	"github.com/bloom-miniapp/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderCreated 新订单通知任务
	TaskOrderCreated = constants.TaskOrderCreated
	// TaskOrderTimeoutCancel 超时取消任务
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
)

// OrderCreatedPayload 新订单通知任务载荷
type OrderCreatedPayload struct {
	OrderID uint   `json:"order_id"`
	OrderNo string `json:"order_no"`
}

// OrderTimeoutCancelPayload 超时取消任务载荷
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderCreatedTask 创建新订单通知任务
func NewOrderCreatedTask(payload OrderCreatedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCreated, body), nil
}

// NewOrderTimeoutCancelTask 创建超时取消任务
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutCancel, body), nil
}

// ParseOrderCreatedPayload 解析新订单通知任务载荷
func ParseOrderCreatedPayload(body []byte) (OrderCreatedPayload, error) {
	var payload OrderCreatedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %w", TaskOrderCreated, err)
	}
	if payload.OrderID == 0 {
		return payload, fmt.Errorf("decode %s payload: order_id is empty", TaskOrderCreated)
	}
	return payload, nil
}

// ParseOrderTimeoutCancelPayload 解析超时取消任务载荷
func ParseOrderTimeoutCancelPayload(body []byte) (OrderTimeoutCancelPayload, error) {
	var payload OrderTimeoutCancelPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %w", TaskOrderTimeoutCancel, err)
	}
	if payload.OrderID == 0 {
		return payload, fmt.Errorf("decode %s payload: order_id is empty", TaskOrderTimeoutCancel)
	}
	return payload, nil
}
