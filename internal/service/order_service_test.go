package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bloom-miniapp/internal/cart"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/models"

	"github.com/shopspring/decimal"
)

func customerMeta() cart.OrderMeta {
	return cart.OrderMeta{
		constants.OrderMetaCustomerName: "Anna",
		constants.OrderMetaPhone:        "+79990001122",
	}
}

func TestMergeOrderLines(t *testing.T) {
	lines := []cart.OrderLine{
		{ProductID: "1", Quantity: 1},
		{ProductID: "2", Quantity: 3},
		{ProductID: "1", Quantity: 2},
	}
	merged, err := mergeOrderLines(lines)
	if err != nil {
		t.Fatalf("mergeOrderLines error: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(merged))
	}
	if merged[0].productID != 1 || merged[0].quantity != 3 {
		t.Fatalf("unexpected first line: %+v", merged[0])
	}
	if merged[1].productID != 2 || merged[1].quantity != 3 {
		t.Fatalf("unexpected second line: %+v", merged[1])
	}

	invalid := [][]cart.OrderLine{
		nil,
		{{ProductID: "rose", Quantity: 1}},
		{{ProductID: "1", Quantity: 0}},
	}
	for _, lines := range invalid {
		if _, err := mergeOrderLines(lines); !errors.Is(err, ErrInvalidOrderItem) {
			t.Fatalf("lines %+v want ErrInvalidOrderItem got %v", lines, err)
		}
	}
}

func TestGenerateOrderNo(t *testing.T) {
	now := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)
	no := generateOrderNo(now)
	if !strings.HasPrefix(no, "BL20260308") || len(no) != 20 {
		t.Fatalf("unexpected order no: %s", no)
	}
	if strings.ToUpper(no) != no {
		t.Fatalf("order no should be upper case: %s", no)
	}
	if generateOrderNo(now) == no {
		t.Fatalf("order no should be unique")
	}
}

func TestCreateOrderUsesCatalogPrice(t *testing.T) {
	env := newTestEnv(t)
	roses := env.createProduct(t, "roses", 100, true)
	user := env.createUser(t, 1)

	meta := customerMeta()
	meta["gift_card_text"] = "Happy birthday"
	order, err := env.orders.CreateOrder(CreateOrderInput{
		UserID:   user.ID,
		ClientIP: "10.0.0.1",
		Request: cart.OrderRequest{
			Meta: meta,
			Items: []cart.OrderLine{
				{ProductID: cart.UintID(roses.ID), Quantity: 2, Price: models.NewMoneyFromDecimal(decimal.NewFromInt(1))},
				{ProductID: cart.UintID(roses.ID), Quantity: 1},
			},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.TotalAmount.String() != "300.00" || order.TotalItems != 3 {
		t.Fatalf("unexpected totals: amount=%s items=%d", order.TotalAmount.String(), order.TotalItems)
	}
	if len(order.Items) != 1 || order.Items[0].UnitPrice.String() != "100.00" {
		t.Fatalf("duplicate lines should merge at catalog price: %+v", order.Items)
	}
	if order.Status != constants.OrderStatusPendingPayment || order.Currency != "RUB" {
		t.Fatalf("unexpected order state: %+v", order)
	}
	if order.ClientIP != "10.0.0.1" {
		t.Fatalf("client ip want 10.0.0.1 got %s", order.ClientIP)
	}
	if order.ExtraJSON["gift_card_text"] != "Happy birthday" {
		t.Fatalf("unknown meta should be kept in extra: %+v", order.ExtraJSON)
	}
	if order.ExpiresAt == nil || order.ExpiresAt.Sub(order.CreatedAt) != 30*time.Minute {
		t.Fatalf("expires_at should be 30 minutes after creation: %v", order.ExpiresAt)
	}

	stored, err := env.userRepo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if stored.Phone != "+79990001122" {
		t.Fatalf("user phone should be remembered, got %q", stored.Phone)
	}
}

func TestCreateOrderRejections(t *testing.T) {
	env := newTestEnv(t)
	roses := env.createProduct(t, "roses", 100, true)
	hidden := env.createProduct(t, "hidden", 100, false)
	user := env.createUser(t, 1)

	cases := []struct {
		name  string
		input CreateOrderInput
		want  error
	}{
		{
			name:  "anonymous",
			input: CreateOrderInput{Request: cart.OrderRequest{Meta: customerMeta(), Items: []cart.OrderLine{{ProductID: cart.UintID(roses.ID), Quantity: 1}}}},
			want:  ErrInvalidToken,
		},
		{
			name:  "empty items",
			input: CreateOrderInput{UserID: user.ID, Request: cart.OrderRequest{Meta: customerMeta()}},
			want:  ErrInvalidOrderItem,
		},
		{
			name:  "missing customer",
			input: CreateOrderInput{UserID: user.ID, Request: cart.OrderRequest{Items: []cart.OrderLine{{ProductID: cart.UintID(roses.ID), Quantity: 1}}}},
			want:  ErrOrderCustomerRequired,
		},
		{
			name:  "inactive product",
			input: CreateOrderInput{UserID: user.ID, Request: cart.OrderRequest{Meta: customerMeta(), Items: []cart.OrderLine{{ProductID: cart.UintID(hidden.ID), Quantity: 1}}}},
			want:  ErrProductNotAvailable,
		},
		{
			name:  "unknown product",
			input: CreateOrderInput{UserID: user.ID, Request: cart.OrderRequest{Meta: customerMeta(), Items: []cart.OrderLine{{ProductID: "9999", Quantity: 1}}}},
			want:  ErrProductNotAvailable,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.orders.CreateOrder(tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
		})
	}

	orders, total, err := env.orders.ListOrders(user.ID, 1, 20)
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if total != 0 || len(orders) != 0 {
		t.Fatalf("rejected orders should not be stored, total=%d", total)
	}
}

func TestSubmitterForReturnsOrderResult(t *testing.T) {
	env := newTestEnv(t)
	roses := env.createProduct(t, "roses", 100, true)
	user := env.createUser(t, 1)

	result, err := env.orders.SubmitterFor(user.ID).SubmitOrder(context.Background(), cart.OrderRequest{
		Meta:  customerMeta(),
		Items: []cart.OrderLine{{ProductID: cart.UintID(roses.ID), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("submit order failed: %v", err)
	}
	if result.OrderID == 0 || !strings.HasPrefix(result.OrderNo, "BL") || result.Currency != "RUB" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestListOrdersCancelsExpired(t *testing.T) {
	env := newTestEnv(t)
	roses := env.createProduct(t, "roses", 100, true)
	user := env.createUser(t, 1)
	other := env.createUser(t, 2)

	order, err := env.orders.CreateOrder(CreateOrderInput{
		UserID:  user.ID,
		Request: cart.OrderRequest{Meta: customerMeta(), Items: []cart.OrderLine{{ProductID: cart.UintID(roses.ID), Quantity: 1}}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := env.orders.GetOrder(other.ID, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign order want ErrOrderNotFound got %v", err)
	}

	env.orders.now = func() time.Time { return time.Now().Add(time.Hour) }
	orders, total, err := env.orders.ListOrders(user.ID, 1, 20)
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if total != 1 || len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", total)
	}
	if orders[0].Status != constants.OrderStatusCanceled || orders[0].CanceledAt == nil {
		t.Fatalf("expired order should be canceled on read: %+v", orders[0])
	}

	stored, err := env.orders.GetOrder(user.ID, order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusCanceled {
		t.Fatalf("cancel should be persisted, got %s", stored.Status)
	}
}

func TestCancelExpiredOrder(t *testing.T) {
	env := newTestEnv(t)
	roses := env.createProduct(t, "roses", 100, true)
	user := env.createUser(t, 1)

	order, err := env.orders.CreateOrder(CreateOrderInput{
		UserID:  user.ID,
		Request: cart.OrderRequest{Meta: customerMeta(), Items: []cart.OrderLine{{ProductID: cart.UintID(roses.ID), Quantity: 1}}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	unchanged, err := env.orders.CancelExpiredOrder(order.ID)
	if err != nil {
		t.Fatalf("cancel before expiry failed: %v", err)
	}
	if unchanged.Status != constants.OrderStatusPendingPayment {
		t.Fatalf("order should stay pending before expiry, got %s", unchanged.Status)
	}

	env.orders.now = func() time.Time { return time.Now().Add(time.Hour) }
	canceled, err := env.orders.CancelExpiredOrder(order.ID)
	if err != nil {
		t.Fatalf("cancel after expiry failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled {
		t.Fatalf("order should be canceled after expiry, got %s", canceled.Status)
	}

	if _, err := env.orders.CancelExpiredOrder(0); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("zero id want ErrOrderNotFound got %v", err)
	}
	if _, err := env.orders.CancelExpiredOrder(9999); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("missing id want ErrOrderNotFound got %v", err)
	}
}

func TestMarkOrderNotifiedOnce(t *testing.T) {
	env := newTestEnv(t)
	roses := env.createProduct(t, "roses", 100, true)
	user := env.createUser(t, 1)

	order, err := env.orders.CreateOrder(CreateOrderInput{
		UserID:  user.ID,
		Request: cart.OrderRequest{Meta: customerMeta(), Items: []cart.OrderLine{{ProductID: cart.UintID(roses.ID), Quantity: 1}}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	first, err := env.orders.MarkOrderNotified(order.ID)
	if err != nil {
		t.Fatalf("mark notified failed: %v", err)
	}
	if first.NotifiedAt == nil {
		t.Fatalf("notified_at should be set")
	}

	env.orders.now = func() time.Time { return time.Now().Add(time.Hour) }
	second, err := env.orders.MarkOrderNotified(order.ID)
	if err != nil {
		t.Fatalf("second mark notified failed: %v", err)
	}
	if second.NotifiedAt == nil || second.NotifiedAt.Sub(*first.NotifiedAt) > time.Second {
		t.Fatalf("notified_at should not move: first=%v second=%v", first.NotifiedAt, second.NotifiedAt)
	}
}
