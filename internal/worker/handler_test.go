package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mimimart/checkout/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotificationHandler_HandleOrderCreated(t *testing.T) {
	t.Run("posts a confirmation to the notifier", func(t *testing.T) {
		var received map[string]any
		notifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/send" {
				t.Errorf("expected /send, got %s", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer notifier.Close()

		handler := NewNotificationHandler(notifier.URL, notifier.Client(), discardLogger())

		payload, _ := json.Marshal(domain.OrderCreatedEvent{
			OrderID:     1,
			OrderNumber: "ORD20250601134509001",
			MemberID:    7,
			Total:       domain.MustMoney("119.00"),
			Timestamp:   time.Now().UTC(),
		})

		if err := handler.HandleOrderCreated(context.Background(), payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if received["member_id"].(float64) != 7 {
			t.Errorf("unexpected member id: %v", received["member_id"])
		}
		if received["subject"] != "Order received: ORD20250601134509001" {
			t.Errorf("unexpected subject: %v", received["subject"])
		}
	})

	t.Run("fails on malformed payload", func(t *testing.T) {
		handler := NewNotificationHandler("http://unused", http.DefaultClient, discardLogger())
		if err := handler.HandleOrderCreated(context.Background(), []byte("not json")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("fails when the notifier rejects the send", func(t *testing.T) {
		notifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer notifier.Close()

		handler := NewNotificationHandler(notifier.URL, notifier.Client(), discardLogger())
		payload, _ := json.Marshal(domain.OrderCreatedEvent{OrderID: 1, OrderNumber: "ORD1", MemberID: 7})

		if err := handler.HandleOrderCreated(context.Background(), payload); err == nil {
			t.Error("expected error so the offset is not committed")
		}
	})
}

func TestNotificationHandler_HandlePaymentExpired(t *testing.T) {
	var received map[string]any
	notifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer notifier.Close()

	handler := NewNotificationHandler(notifier.URL, notifier.Client(), discardLogger())

	payload, _ := json.Marshal(domain.PaymentExpiredEvent{
		PaymentID:     2,
		PaymentNumber: "PAY20250601134509042",
		OrderID:       1,
		OrderNumber:   "ORD20250601134509001",
		MemberID:      7,
		Timestamp:     time.Now().UTC(),
	})

	if err := handler.HandlePaymentExpired(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received["subject"] != "Order cancelled: ORD20250601134509001" {
		t.Errorf("unexpected subject: %v", received["subject"])
	}
}
