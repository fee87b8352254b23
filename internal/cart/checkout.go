package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bloom-miniapp/internal/models"
)

var (
	// ErrEmptyCart 购物车为空
	ErrEmptyCart = errors.New("cart is empty")
	// ErrSubmitterMissing 未配置下单协作方
	ErrSubmitterMissing = errors.New("order submitter not configured")
)

// OrderMeta 调用方附加的订单信息（收件人、电话、地址等）
type OrderMeta map[string]interface{}

// OrderLine 下单明细
type OrderLine struct {
	ProductID ItemID       `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Price     models.Money `json:"price"`
}

// OrderRequest 下单请求
// 序列化为 {...Meta, "items": [...]}，items 总是覆盖 Meta 中的同名字段。
type OrderRequest struct {
	Meta  OrderMeta
	Items []OrderLine
}

// MarshalJSON 展平输出
func (r OrderRequest) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Meta)+1)
	for key, value := range r.Meta {
		out[key] = value
	}
	items := r.Items
	if items == nil {
		items = []OrderLine{}
	}
	out["items"] = items
	return json.Marshal(out)
}

// UnmarshalJSON 解析展平的下单请求
func (r *OrderRequest) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var req OrderRequest
	if itemsRaw, ok := raw["items"]; ok {
		if err := json.Unmarshal(itemsRaw, &req.Items); err != nil {
			return err
		}
		delete(raw, "items")
	}
	if len(raw) > 0 {
		req.Meta = make(OrderMeta, len(raw))
		for key, value := range raw {
			var v interface{}
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
			req.Meta[key] = v
		}
	}
	*r = req
	return nil
}

// MetaString 读取字符串类型的附加信息
func (r OrderRequest) MetaString(key string) string {
	value, ok := r.Meta[key]
	if !ok || value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

// OrderResult 下单结果
type OrderResult struct {
	OrderID     uint         `json:"order_id"`
	OrderNo     string       `json:"order_no"`
	Status      string       `json:"status"`
	TotalAmount models.Money `json:"total_amount"`
	Currency    string       `json:"currency,omitempty"`
}

// OrderSubmitter 下单协作方
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)
}

// OrderSubmitterFunc 函数适配器
type OrderSubmitterFunc func(ctx context.Context, req OrderRequest) (*OrderResult, error)

// SubmitOrder 调用函数本身
func (f OrderSubmitterFunc) SubmitOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	return f(ctx, req)
}

// CheckoutError 结算失败
type CheckoutError struct {
	Message string
	Err     error
}

func (e *CheckoutError) Error() string {
	if e.Err == nil {
		return "checkout failed: " + e.Message
	}
	if e.Message == "" || e.Message == e.Err.Error() {
		return "checkout failed: " + e.Err.Error()
	}
	return "checkout failed: " + e.Message + ": " + e.Err.Error()
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// Checkout 以调用时刻的购物车快照下单
// 成功后清空购物车并返回协作方结果；失败时购物车保持不变，错误类型为 *CheckoutError。
// 等待协作方响应期间不持有锁，其他变更可以并发进行且不影响已提交的快照。
func (s *Store) Checkout(ctx context.Context, meta OrderMeta) (*OrderResult, error) {
	if s.submitter == nil {
		return nil, &CheckoutError{Message: ErrSubmitterMissing.Error(), Err: ErrSubmitterMissing}
	}

	s.mu.Lock()
	req := OrderRequest{
		Meta:  cloneMeta(meta),
		Items: buildOrderLines(s.items),
	}
	s.mu.Unlock()

	if len(req.Items) == 0 {
		return nil, &CheckoutError{Message: ErrEmptyCart.Error(), Err: ErrEmptyCart}
	}

	result, err := s.submitter.SubmitOrder(ctx, req)
	if err != nil {
		s.log.Warnw("cart_checkout_failed", "items", len(req.Items), "error", err)
		return nil, &CheckoutError{Message: MessageFrom(err), Err: err}
	}

	s.Clear()
	if result != nil {
		s.log.Infow("cart_checkout_succeeded", "order_id", result.OrderID, "order_no", result.OrderNo)
	}
	return result, nil
}

// MessageFrom 从错误中提取可展示的提示
// 错误链上实现 PublicMessage() string 的错误优先，其次使用错误文本。
func MessageFrom(err error) string {
	if err == nil {
		return ""
	}
	var public interface{ PublicMessage() string }
	if errors.As(err, &public) {
		if msg := strings.TrimSpace(public.PublicMessage()); msg != "" {
			return msg
		}
	}
	return err.Error()
}

func buildOrderLines(items []Item) []OrderLine {
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLine{
			ProductID: item.ID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return lines
}

func cloneMeta(meta OrderMeta) OrderMeta {
	if meta == nil {
		return nil
	}
	out := make(OrderMeta, len(meta))
	for key, value := range meta {
		out[key] = value
	}
	return out
}
