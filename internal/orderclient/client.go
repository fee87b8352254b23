package orderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bloom-miniapp/internal/cart"
	"github.com/bloom-miniapp/internal/config"
)

var (
	// ErrConfigInvalid 远程下单配置无效
	ErrConfigInvalid = errors.New("order client config invalid")
	// ErrResponseInvalid 远程响应无法解析
	ErrResponseInvalid = errors.New("order client response invalid")
)

const (
	ordersPath     = "/api/v1/orders"
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
)

// APIError 远程订单服务返回的业务错误
type APIError struct {
	HTTPStatus int
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("order api: http %d, status_code %d: %s", e.HTTPStatus, e.StatusCode, e.Message)
}

// PublicMessage 可展示给用户的错误提示
func (e *APIError) PublicMessage() string {
	return e.Message
}

// envelope 统一响应结构
type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

// Client 远程下单客户端，实现 cart.OrderSubmitter
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New 创建远程下单客户端
func New(cfg config.CheckoutConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.RemoteBaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: remote_base_url is empty", ErrConfigInvalid)
	}
	timeout := defaultTimeout
	if cfg.RemoteTimeoutSec > 0 {
		timeout = time.Duration(cfg.RemoteTimeoutSec) * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.RemoteToken),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// WithHTTPClient 替换底层 HTTP 客户端
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	if httpClient != nil {
		c.http = httpClient
	}
	return c
}

// SubmitOrder 提交下单请求
// 非 2xx 或 status_code 非 0 时返回 *APIError，其 Message 取自响应 msg。
func (c *Client) SubmitOrder(ctx context.Context, req cart.OrderRequest) (*cart.OrderResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ordersPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("order api request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("order api read body: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(env.Msg)
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{HTTPStatus: resp.StatusCode, StatusCode: env.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, decodeErr)
	}
	if env.StatusCode != 0 {
		return nil, &APIError{HTTPStatus: resp.StatusCode, StatusCode: env.StatusCode, Message: strings.TrimSpace(env.Msg)}
	}

	var result cart.OrderResult
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: empty data", ErrResponseInvalid)
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return &result, nil
}

// ForUser 返回为请求附加 user_id 的协作方
func (c *Client) ForUser(userID uint) cart.OrderSubmitter {
	return cart.OrderSubmitterFunc(func(ctx context.Context, req cart.OrderRequest) (*cart.OrderResult, error) {
		meta := make(cart.OrderMeta, len(req.Meta)+1)
		for key, value := range req.Meta {
			meta[key] = value
		}
		meta["user_id"] = userID
		req.Meta = meta
		return c.SubmitOrder(ctx, req)
	})
}
