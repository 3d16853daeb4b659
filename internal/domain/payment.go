package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING_PAYMENT"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusExpired   PaymentStatus = "EXPIRED"
)

var paymentTransitions = transitions[PaymentStatus]{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusCancelled, PaymentStatusExpired},
}

// Payment tracks one order's payment attempt against the gateway. There is
// exactly one payment per order, and PAID, CANCELLED and EXPIRED are
// terminal.
type Payment struct {
	ID                    int64
	OrderID               int64
	Number                PaymentNumber
	Method                string
	Status                PaymentStatus
	Amount                Money
	ExternalTransactionID string
	ExpiredAt             time.Time
	PaidAt                time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewPayment opens a pending payment for an order. The amount must equal
// the order total; callers pass it through unchanged from the order.
func NewPayment(id, orderID int64, number PaymentNumber, amount Money, method string, expirationMinutes int, now time.Time) (*Payment, error) {
	if orderID == 0 {
		return nil, errors.New("order id is required")
	}
	if strings.TrimSpace(method) == "" {
		return nil, errors.New("payment method is required")
	}
	if expirationMinutes <= 0 {
		return nil, errors.New("expiration minutes must be positive")
	}

	return &Payment{
		ID:        id,
		OrderID:   orderID,
		Number:    number,
		Method:    method,
		Status:    PaymentStatusPending,
		Amount:    amount,
		ExpiredAt: now.Add(time.Duration(expirationMinutes) * time.Minute),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *Payment) transitionTo(to PaymentStatus) error {
	if !paymentTransitions.allows(p.Status, to) {
		return fmt.Errorf("payment %s: %s -> %s: %w", p.Number, p.Status, to, ErrInvalidTransition)
	}
	p.Status = to
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkPaid records a verified gateway callback. The callback amount must
// match the stored amount exactly.
func (p *Payment) MarkPaid(externalTransactionID string, callbackAmount Money) error {
	if p.Status != PaymentStatusPending {
		return fmt.Errorf("payment %s: mark paid in status %s: %w", p.Number, p.Status, ErrInvalidTransition)
	}
	if !p.Amount.Equal(callbackAmount) {
		return fmt.Errorf("payment %s: expected %s, callback carried %s: %w", p.Number, p.Amount, callbackAmount, ErrAmountMismatch)
	}

	if err := p.transitionTo(PaymentStatusPaid); err != nil {
		return err
	}
	p.ExternalTransactionID = externalTransactionID
	p.PaidAt = p.UpdatedAt
	return nil
}

func (p *Payment) Cancel() error {
	return p.transitionTo(PaymentStatusCancelled)
}

// Expire is used by the reconciliation sweep once the payment window has
// lapsed.
func (p *Payment) Expire() error {
	return p.transitionTo(PaymentStatusExpired)
}

func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

func (p *Payment) IsCancellable() bool {
	return p.Status == PaymentStatusPending
}

func (p *Payment) IsExpired(now time.Time) bool {
	return !p.ExpiredAt.IsZero() && now.After(p.ExpiredAt)
}
