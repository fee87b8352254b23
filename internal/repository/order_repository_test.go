package repository

import (
	"testing"
	"time"

	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/models"

	"github.com/shopspring/decimal"
)

func createTestOrder(t *testing.T, repo *GormOrderRepository, userID uint, orderNo string, expiresAt *time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:     orderNo,
		UserID:      userID,
		Status:      constants.OrderStatusPendingPayment,
		Currency:    "RUB",
		TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
		TotalItems:  2,
		ExpiresAt:   expiresAt,
	}
	items := []models.OrderItem{{
		ProductID:  1,
		TitleJSON:  models.JSON{"en-US": "Roses"},
		UnitPrice:  models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Quantity:   2,
		TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
	}}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestOrderCreateAndQueryByUser(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)

	first := createTestOrder(t, repo, 1, "BL-1", nil)
	createTestOrder(t, repo, 1, "BL-2", nil)
	createTestOrder(t, repo, 2, "BL-3", nil)

	got, err := repo.GetByIDAndUser(first.ID, 1)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got == nil || len(got.Items) != 1 || got.Items[0].OrderID != first.ID {
		t.Fatalf("order items should be preloaded: %+v", got)
	}

	other, err := repo.GetByIDAndUser(first.ID, 2)
	if err != nil {
		t.Fatalf("get foreign order failed: %v", err)
	}
	if other != nil {
		t.Fatalf("order of another user should not be visible")
	}

	orders, total, err := repo.ListByUser(OrderListFilter{UserID: 1, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Fatalf("user orders want 2 got total=%d len=%d", total, len(orders))
	}
	if orders[0].OrderNo != "BL-2" {
		t.Fatalf("orders should be newest first, got %s", orders[0].OrderNo)
	}
}

func TestOrderCancelIfExpired(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	expired := createTestOrder(t, repo, 1, "BL-EXP", &past)
	fresh := createTestOrder(t, repo, 1, "BL-FRESH", &future)

	canceled, err := repo.CancelIfExpired(expired.ID, now)
	if err != nil {
		t.Fatalf("cancel expired failed: %v", err)
	}
	if !canceled {
		t.Fatalf("expired order should be canceled")
	}
	canceled, err = repo.CancelIfExpired(expired.ID, now)
	if err != nil || canceled {
		t.Fatalf("second cancel should be no-op, canceled=%v err=%v", canceled, err)
	}
	canceled, err = repo.CancelIfExpired(fresh.ID, now)
	if err != nil || canceled {
		t.Fatalf("fresh order should not be canceled, canceled=%v err=%v", canceled, err)
	}

	got, err := repo.GetByID(expired.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got.Status != constants.OrderStatusCanceled || got.CanceledAt == nil {
		t.Fatalf("order should be canceled with timestamp: %+v", got)
	}
}

func TestOrderMarkNotifiedOnlyOnce(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	order := createTestOrder(t, repo, 1, "BL-N", nil)

	first := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := repo.MarkNotified(order.ID, first); err != nil {
		t.Fatalf("mark notified failed: %v", err)
	}
	if err := repo.MarkNotified(order.ID, time.Now()); err != nil {
		t.Fatalf("mark notified again failed: %v", err)
	}
	got, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got.NotifiedAt == nil || !got.NotifiedAt.Equal(first) {
		t.Fatalf("notified_at should keep the first value, got %v", got.NotifiedAt)
	}
}
