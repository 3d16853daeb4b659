package notifier

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testHandler() *Handler {
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandler_HandleSend(t *testing.T) {
	t.Run("acknowledges a valid send", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/send",
			strings.NewReader(`{"member_id":7,"subject":"Order received","body":"hi"}`))
		rec := httptest.NewRecorder()

		testHandler().HandleSend(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["status"] != "sent" {
			t.Errorf("expected sent, got %s", resp["status"])
		}
	})

	t.Run("rejects a missing member id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(`{"subject":"x"}`))
		rec := httptest.NewRecorder()

		testHandler().HandleSend(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader("not json"))
		rec := httptest.NewRecorder()

		testHandler().HandleSend(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}
