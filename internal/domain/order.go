package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPaymentPending OrderStatus = "PAYMENT_PENDING"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

var orderTransitions = transitions[OrderStatus]{
	OrderStatusPaymentPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:           {OrderStatusShipped},
	OrderStatusShipped:        {OrderStatusCompleted},
}

func (s OrderStatus) IsCancellable() bool {
	return s == OrderStatusPaymentPending
}

func (s OrderStatus) IsShippable() bool {
	return s == OrderStatusPaid
}

func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type DeliveryMethod string

const (
	DeliveryMethodHome   DeliveryMethod = "HOME_DELIVERY"
	DeliveryMethodPickup DeliveryMethod = "STORE_PICKUP"
)

// DeliveryInfo is the member-supplied destination, frozen onto the order.
type DeliveryInfo struct {
	ReceiverName    string
	ReceiverPhone   string
	ShippingAddress string
	Method          DeliveryMethod
	Note            string
}

func (d DeliveryInfo) Validate() error {
	if strings.TrimSpace(d.ReceiverName) == "" {
		return errors.New("receiver name is required")
	}
	if strings.TrimSpace(d.ReceiverPhone) == "" {
		return errors.New("receiver phone is required")
	}
	if strings.TrimSpace(d.ShippingAddress) == "" {
		return errors.New("shipping address is required")
	}
	switch d.Method {
	case DeliveryMethodHome, DeliveryMethodPickup:
	default:
		return fmt.Errorf("unknown delivery method %q", d.Method)
	}
	return nil
}

// ProductSnapshot freezes the product data an order line was sold under.
// It never changes, even when the live product is repriced or deleted.
type ProductSnapshot struct {
	Name          string
	Price         Money
	OriginalPrice Money
	ImageURL      string
}

func (s ProductSnapshot) HasDiscount() bool {
	return s.Price.LessThan(s.OriginalPrice)
}

func (s ProductSnapshot) Savings() Money {
	if !s.HasDiscount() {
		return ZeroMoney()
	}
	savings, _ := s.OriginalPrice.Sub(s.Price)
	return savings
}

// OrderItem is an order line with its frozen product snapshot.
type OrderItem struct {
	ProductID int64
	Snapshot  ProductSnapshot
	Quantity  int
	Subtotal  Money
}

func NewOrderItem(productID int64, snapshot ProductSnapshot, quantity int) (OrderItem, error) {
	if quantity <= 0 {
		return OrderItem{}, fmt.Errorf("product %d: order quantity must be positive", productID)
	}
	subtotal, err := snapshot.Price.MulQuantity(quantity)
	if err != nil {
		return OrderItem{}, err
	}
	return OrderItem{
		ProductID: productID,
		Snapshot:  snapshot,
		Quantity:  quantity,
		Subtotal:  subtotal,
	}, nil
}

// Order is the aggregate produced from a cart. It is never deleted, only
// moved through its status machine.
type Order struct {
	ID                 int64
	MemberID           int64
	Number             OrderNumber
	Status             OrderStatus
	Items              []OrderItem
	Total              Money
	Delivery           DeliveryInfo
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewOrder assembles a payment-pending order. Use the orders.Factory to
// build one from a cart; this constructor only checks structural validity.
func NewOrder(id, memberID int64, number OrderNumber, items []OrderItem, total Money, delivery DeliveryInfo, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := delivery.Validate(); err != nil {
		return nil, err
	}

	sum := ZeroMoney()
	for _, item := range items {
		sum = sum.Add(item.Subtotal)
	}
	if !sum.Equal(total) {
		return nil, fmt.Errorf("order total %s does not match item subtotals %s", total, sum)
	}

	return &Order{
		ID:        id,
		MemberID:  memberID,
		Number:    number,
		Status:    OrderStatusPaymentPending,
		Items:     items,
		Total:     total,
		Delivery:  delivery,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (o *Order) transitionTo(to OrderStatus) error {
	if !orderTransitions.allows(o.Status, to) {
		return fmt.Errorf("order %s: %s -> %s: %w", o.Number, o.Status, to, ErrInvalidTransition)
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (o *Order) MarkPaid() error {
	return o.transitionTo(OrderStatusPaid)
}

func (o *Order) Ship() error {
	return o.transitionTo(OrderStatusShipped)
}

func (o *Order) Complete() error {
	return o.transitionTo(OrderStatusCompleted)
}

// Cancel moves a payment-pending order to cancelled and records why. The
// order row is kept; cancellation is a terminal status, not a delete.
func (o *Order) Cancel(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return errors.New("cancellation reason is required")
	}
	if err := o.transitionTo(OrderStatusCancelled); err != nil {
		return err
	}
	o.CancellationReason = reason
	return nil
}

func (o *Order) BelongsToMember(memberID int64) bool {
	return o.MemberID == memberID
}
