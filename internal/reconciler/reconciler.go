// Package reconciler expires stale payments and cancels their orders. The
// sweep takes "now" as a parameter so the scheduler loop is the only piece
// that touches the wall clock.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mimimart/checkout/internal/domain"
)

const autoCancelReason = "payment expired, auto-cancelled"

type PaymentStore interface {
	FindExpiredPending(ctx context.Context, now time.Time) ([]*domain.Payment, error)
	Save(ctx context.Context, p *domain.Payment) error
}

type OrderStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Save(ctx context.Context, o *domain.Order) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Result struct {
	Succeeded int
	Failed    int
}

type Reconciler struct {
	payments PaymentStore
	orders   OrderStore
	producer EventPublisher
	logger   *slog.Logger
}

func New(payments PaymentStore, orders OrderStore, producer EventPublisher, logger *slog.Logger) *Reconciler {
	return &Reconciler{payments: payments, orders: orders, producer: producer, logger: logger}
}

// Sweep expires every pending payment whose window lapsed before now and
// cancels the matching order. Item failures are counted and logged but
// never abort the batch; a payment that stays pending is simply picked up
// by the next tick. Callers must not run two sweeps concurrently.
func (r *Reconciler) Sweep(ctx context.Context, now time.Time) (Result, error) {
	expired, err := r.payments.FindExpiredPending(ctx, now)
	if err != nil {
		return Result{}, fmt.Errorf("find expired payments: %w", err)
	}

	if len(expired) == 0 {
		return Result{}, nil
	}

	r.logger.Info("reconciling expired payments", "count", len(expired))

	var result Result
	for _, payment := range expired {
		order, err := r.reconcileOne(ctx, payment)
		if err != nil {
			r.logger.Error("failed to reconcile payment",
				"error", err,
				"payment_number", payment.Number.String(),
				"order_id", payment.OrderID,
			)
			result.Failed++
			continue
		}

		result.Succeeded++

		if r.producer != nil {
			event := domain.PaymentExpiredEvent{
				PaymentID:     payment.ID,
				PaymentNumber: payment.Number.String(),
				OrderID:       order.ID,
				OrderNumber:   order.Number.String(),
				MemberID:      order.MemberID,
				Timestamp:     now,
			}
			if err := r.producer.Publish(ctx, payment.Number.String(), event); err != nil {
				r.logger.Error("failed to publish payment expired event", "error", err, "payment_id", payment.ID)
			}
		}
	}

	r.logger.Info("sweep finished", "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, payment *domain.Payment) (*domain.Order, error) {
	if err := payment.Expire(); err != nil {
		return nil, err
	}
	if err := r.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}

	order, err := r.orders.GetByID(ctx, payment.OrderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %d not found", payment.OrderID)
	}
	if !order.Status.IsCancellable() {
		return nil, fmt.Errorf("order %d in status %s cannot be cancelled", order.ID, order.Status)
	}

	if err := order.Cancel(autoCancelReason); err != nil {
		return nil, err
	}
	if err := r.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	return order, nil
}
