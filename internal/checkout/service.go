// Package checkout drives the cart-to-order flow: it freezes the cart into
// an order, opens the payment window, prepares the shipment and clears the
// cart rows, all in one transaction.
package checkout

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mimimart/checkout/internal/cart"
	"github.com/mimimart/checkout/internal/domain"
	"github.com/mimimart/checkout/internal/identifier"
	"github.com/mimimart/checkout/internal/orders"
	"github.com/mimimart/checkout/internal/payments"
	"github.com/mimimart/checkout/internal/shipments"
)

// EventPublisher decouples the service from the message broker. A nil
// publisher disables events without touching the flow.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Config struct {
	PaymentExpiryMinutes int
	ShippingFee          domain.Money
}

type Service struct {
	db        *sql.DB
	carts     *cart.MemberRepository
	factory   *orders.Factory
	orders    *orders.Repository
	payments  *payments.Repository
	shipments *shipments.Repository
	ids       *identifier.Snowflake
	numbers   *identifier.NumberGenerator
	producer  EventPublisher
	logger    *slog.Logger
	cfg       Config
}

func NewService(
	db *sql.DB,
	carts *cart.MemberRepository,
	factory *orders.Factory,
	orderRepo *orders.Repository,
	paymentRepo *payments.Repository,
	shipmentRepo *shipments.Repository,
	ids *identifier.Snowflake,
	numbers *identifier.NumberGenerator,
	producer EventPublisher,
	logger *slog.Logger,
	cfg Config,
) *Service {
	return &Service{
		db:        db,
		carts:     carts,
		factory:   factory,
		orders:    orderRepo,
		payments:  paymentRepo,
		shipments: shipmentRepo,
		ids:       ids,
		numbers:   numbers,
		producer:  producer,
		logger:    logger,
		cfg:       cfg,
	}
}

// PlaceOrder converts the member's cart into an order with its pending
// payment and preparing shipment. The cart rows are deleted in the same
// transaction; the in-memory cart aggregate is simply discarded.
func (s *Service) PlaceOrder(ctx context.Context, memberID int64, delivery domain.DeliveryInfo, paymentMethod string) (*domain.Order, *domain.Payment, error) {
	memberCart, err := s.carts.Load(ctx, memberID)
	if err != nil {
		return nil, nil, fmt.Errorf("load cart: %w", err)
	}

	order, err := s.factory.CreateFromCart(ctx, memberCart, delivery)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()

	paymentNumber, err := s.numbers.NextPaymentNumber()
	if err != nil {
		return nil, nil, err
	}
	paymentID, err := s.ids.NextID()
	if err != nil {
		return nil, nil, err
	}
	payment, err := domain.NewPayment(paymentID, order.ID, paymentNumber, order.Total, paymentMethod, s.cfg.PaymentExpiryMinutes, now)
	if err != nil {
		return nil, nil, err
	}

	shipmentID, err := s.ids.NextID()
	if err != nil {
		return nil, nil, err
	}
	shipment, err := domain.NewShipment(shipmentID, order.ID, delivery, s.cfg.ShippingFee, now)
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.orders.CreateTx(ctx, tx, order); err != nil {
		return nil, nil, fmt.Errorf("insert order: %w", err)
	}
	if err := s.payments.CreateTx(ctx, tx, payment); err != nil {
		return nil, nil, fmt.Errorf("insert payment: %w", err)
	}
	if err := s.shipments.CreateTx(ctx, tx, shipment); err != nil {
		return nil, nil, fmt.Errorf("insert shipment: %w", err)
	}
	if err := s.carts.ClearTx(ctx, tx, memberID); err != nil {
		return nil, nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	if s.producer != nil {
		event := domain.OrderCreatedEvent{
			OrderID:     order.ID,
			OrderNumber: order.Number.String(),
			MemberID:    order.MemberID,
			Total:       order.Total,
			Timestamp:   order.CreatedAt,
		}
		if err := s.producer.Publish(ctx, order.Number.String(), event); err != nil {
			s.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	s.logger.Info("order placed",
		"order_id", order.ID,
		"order_number", order.Number.String(),
		"member_id", memberID,
		"total", order.Total.String(),
	)

	return order, payment, nil
}

// CancelOrder cancels a member's own payment-pending order along with its
// pending payment.
func (s *Service) CancelOrder(ctx context.Context, memberID, orderID int64, reason string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || !order.BelongsToMember(memberID) {
		return nil, ErrOrderNotFound
	}

	if err := order.Cancel(reason); err != nil {
		return nil, err
	}

	payment, err := s.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if payment != nil && payment.IsCancellable() {
		if err := payment.Cancel(); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.orders.SaveTx(ctx, tx, order); err != nil {
		return nil, err
	}
	if payment != nil {
		if err := s.payments.SaveTx(ctx, tx, payment); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled", "order_id", orderID, "reason", reason)
	return order, nil
}
