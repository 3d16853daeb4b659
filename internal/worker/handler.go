// Package worker turns checkout events into member notifications. It
// consumes from Kafka and posts to the notifier service over HTTP.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mimimart/checkout/internal/domain"
)

type NotificationHandler struct {
	notifierURL string
	httpClient  *http.Client
	logger      *slog.Logger
}

func NewNotificationHandler(notifierURL string, client *http.Client, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifierURL: notifierURL,
		httpClient:  client,
		logger:      logger,
	}
}

// HandleOrderCreated sends the order confirmation mail with payment
// instructions.
func (h *NotificationHandler) HandleOrderCreated(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event", "order_number", event.OrderNumber, "member_id", event.MemberID)

	err := h.send(ctx, event.MemberID,
		"Order received: "+event.OrderNumber,
		fmt.Sprintf("We received your order %s totalling %s. Please complete the payment before it expires.",
			event.OrderNumber, event.Total.String()),
	)
	if err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}

	return nil
}

// HandlePaymentExpired tells the member their order was cancelled because
// the payment window lapsed.
func (h *NotificationHandler) HandlePaymentExpired(ctx context.Context, payload []byte) error {
	var event domain.PaymentExpiredEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal payment expired event: %w", err)
	}

	h.logger.Info("processing payment expired event", "payment_number", event.PaymentNumber, "order_number", event.OrderNumber)

	err := h.send(ctx, event.MemberID,
		"Order cancelled: "+event.OrderNumber,
		fmt.Sprintf("Your order %s was cancelled because payment %s was not completed in time.",
			event.OrderNumber, event.PaymentNumber),
	)
	if err != nil {
		return fmt.Errorf("send cancellation notice: %w", err)
	}

	return nil
}

func (h *NotificationHandler) send(ctx context.Context, memberID int64, subject, body string) error {
	payload, err := json.Marshal(map[string]any{
		"member_id": memberID,
		"subject":   subject,
		"body":      body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.notifierURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notifier service returned status %d", resp.StatusCode)
	}

	return nil
}
