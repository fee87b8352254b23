package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 新订单通知使用的高优先级队列
	CriticalQueue = constants.QueueCritical
)

// 通知任务的最大重试次数
const orderCreatedMaxRetry = 5

// Client asynq 客户端封装，未启用时所有投递均为空操作
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(buildRedisOpt(cfg))}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderCreated 投递新订单通知，同一订单只投递一次
func (c *Client) EnqueueOrderCreated(payload OrderCreatedPayload) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderCreatedTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task,
		asynq.Queue(CriticalQueue),
		asynq.MaxRetry(orderCreatedMaxRetry),
		asynq.TaskID(orderTaskID(TaskOrderCreated, payload.OrderID)),
	)
}

// EnqueueOrderTimeoutCancel 投递延迟取消任务
func (c *Client) EnqueueOrderTimeoutCancel(payload OrderTimeoutCancelPayload, delay time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	if delay < 0 {
		delay = 0
	}
	task, err := NewOrderTimeoutCancelTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task,
		asynq.Queue(DefaultQueue),
		asynq.ProcessIn(delay),
		asynq.TaskID(orderTaskID(TaskOrderTimeoutCancel, payload.OrderID)),
	)
}

func (c *Client) enqueue(task *asynq.Task, opts ...asynq.Option) error {
	info, err := c.client.Enqueue(task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		logger.Debugw("queue_task_duplicate", "task_type", task.Type())
		return nil
	}
	if err != nil {
		return err
	}
	logger.Debugw("queue_task_enqueued", "task_type", task.Type(), "task_id", info.ID, "queue", info.Queue)
	return nil
}

func orderTaskID(taskType string, orderID uint) string {
	return fmt.Sprintf("%s:%d", taskType, orderID)
}

// BuildServerConfig 生成 worker 的 asynq 配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1, CriticalQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	log := logger.Component("worker")
	return buildRedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
		Logger:      log,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.Warnw("queue_task_failed",
				"task_type", task.Type(),
				"retried", retried,
				"max_retry", maxRetry,
				"error", err,
			)
		}),
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = fmt.Sprintf("%s:%d", host, port)
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
