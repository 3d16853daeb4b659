package domain

import (
	"errors"
	"testing"
	"time"
)

func testDelivery() DeliveryInfo {
	return DeliveryInfo{
		ReceiverName:    "Lin Mei",
		ReceiverPhone:   "0912345678",
		ShippingAddress: "No. 7, Sec. 1, Zhongshan Rd, Taipei",
		Method:          DeliveryMethodHome,
	}
}

func testItems(t *testing.T) []OrderItem {
	t.Helper()
	snapshot := ProductSnapshot{
		Name:          "Oolong Tea 300ml",
		Price:         MustMoney("25.00"),
		OriginalPrice: MustMoney("30.00"),
	}
	item, err := NewOrderItem(10, snapshot, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return []OrderItem{item}
}

func testOrder(t *testing.T) *Order {
	t.Helper()
	number, err := ParseOrderNumber("ORD20250101120000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order, err := NewOrder(1, 7, number, testItems(t), MustMoney("100.00"), testDelivery(), time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return order
}

func TestNewOrderItem(t *testing.T) {
	snapshot := ProductSnapshot{Name: "Tea", Price: MustMoney("19.99"), OriginalPrice: MustMoney("19.99")}

	item, err := NewOrderItem(10, snapshot, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Subtotal.String() != "59.97" {
		t.Errorf("expected subtotal 59.97, got %s", item.Subtotal)
	}

	if _, err := NewOrderItem(10, snapshot, 0); err == nil {
		t.Error("expected error for zero quantity")
	}
}

func TestProductSnapshot_Discount(t *testing.T) {
	discounted := ProductSnapshot{Price: MustMoney("25.00"), OriginalPrice: MustMoney("30.00")}
	if !discounted.HasDiscount() {
		t.Error("expected discount")
	}
	if discounted.Savings().String() != "5.00" {
		t.Errorf("expected savings 5.00, got %s", discounted.Savings())
	}

	fullPrice := ProductSnapshot{Price: MustMoney("30.00"), OriginalPrice: MustMoney("30.00")}
	if fullPrice.HasDiscount() {
		t.Error("expected no discount")
	}
	if !fullPrice.Savings().IsZero() {
		t.Errorf("expected zero savings, got %s", fullPrice.Savings())
	}
}

func TestNewOrder(t *testing.T) {
	number, _ := ParseOrderNumber("ORD20250101120000001")
	now := time.Now().UTC()

	t.Run("starts payment pending", func(t *testing.T) {
		order, err := NewOrder(1, 7, number, testItems(t), MustMoney("100.00"), testDelivery(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Status != OrderStatusPaymentPending {
			t.Errorf("expected PAYMENT_PENDING, got %s", order.Status)
		}
	})

	t.Run("rejects a total that disagrees with the lines", func(t *testing.T) {
		if _, err := NewOrder(1, 7, number, testItems(t), MustMoney("99.99"), testDelivery(), now); err == nil {
			t.Error("expected error for mismatched total")
		}
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		if _, err := NewOrder(1, 7, number, nil, ZeroMoney(), testDelivery(), now); !errors.Is(err, ErrEmptyCart) {
			t.Errorf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("rejects invalid delivery info", func(t *testing.T) {
		bad := testDelivery()
		bad.ReceiverPhone = " "
		if _, err := NewOrder(1, 7, number, testItems(t), MustMoney("100.00"), bad, now); err == nil {
			t.Error("expected error for missing phone")
		}
	})
}

func TestOrder_Transitions(t *testing.T) {
	t.Run("happy path to completed", func(t *testing.T) {
		order := testOrder(t)
		for _, step := range []func() error{order.MarkPaid, order.Ship, order.Complete} {
			if err := step(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if order.Status != OrderStatusCompleted {
			t.Errorf("expected COMPLETED, got %s", order.Status)
		}
		if !order.Status.IsFinal() {
			t.Error("completed must be final")
		}
	})

	t.Run("cannot ship an unpaid order", func(t *testing.T) {
		order := testOrder(t)
		if err := order.Ship(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("cancel records the reason", func(t *testing.T) {
		order := testOrder(t)
		if err := order.Cancel("changed my mind"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Status != OrderStatusCancelled {
			t.Errorf("expected CANCELLED, got %s", order.Status)
		}
		if order.CancellationReason != "changed my mind" {
			t.Errorf("unexpected reason: %s", order.CancellationReason)
		}
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		order := testOrder(t)
		if err := order.Cancel(" "); err == nil {
			t.Error("expected error for blank reason")
		}
	})

	t.Run("cannot cancel a paid order", func(t *testing.T) {
		order := testOrder(t)
		if err := order.MarkPaid(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := order.Cancel("too late"); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestOrder_BelongsToMember(t *testing.T) {
	order := testOrder(t)
	if !order.BelongsToMember(7) {
		t.Error("expected order to belong to member 7")
	}
	if order.BelongsToMember(8) {
		t.Error("order must not belong to member 8")
	}
}

func TestParseNumbers(t *testing.T) {
	if _, err := ParseOrderNumber("PAY20250101120000001"); err == nil {
		t.Error("order number must require the ORD prefix")
	}
	if _, err := ParsePaymentNumber("ORD20250101120000001"); err == nil {
		t.Error("payment number must require the PAY prefix")
	}
	if _, err := ParsePaymentNumber(""); err == nil {
		t.Error("empty number must be rejected")
	}
}
