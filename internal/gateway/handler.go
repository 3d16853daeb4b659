package gateway

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

type Handler struct {
	checkout *ServiceProxy
	adminKey string
	logger   *slog.Logger
}

func NewHandler(checkout *ServiceProxy, adminKey string, logger *slog.Logger) *Handler {
	return &Handler{
		checkout: checkout,
		adminKey: adminKey,
		logger:   logger,
	}
}

func (h *Handler) HandleStorefront(w http.ResponseWriter, r *http.Request) {
	h.proxyRequest(w, r)
}

// HandleAdmin requires the shared staff key before forwarding. Staff tooling
// sends it on the X-Admin-Key header.
func (h *Handler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Admin-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) != 1 {
		h.writeError(w, http.StatusUnauthorized, "invalid admin key")
		return
	}
	h.proxyRequest(w, r)
}

func (h *Handler) proxyRequest(w http.ResponseWriter, r *http.Request) {
	resp, err := h.checkout.ForwardRequest(r.Context(), r, r.URL.Path)
	if err != nil {
		h.logger.Error("failed to forward request", "error", err, "path", r.URL.Path)
		h.writeError(w, http.StatusBadGateway, "service unavailable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if sessionID := resp.Header.Get("X-Session-ID"); sessionID != "" {
		w.Header().Set("X-Session-ID", sessionID)
	}

	w.WriteHeader(resp.StatusCode)

	h.logger.Info("request proxied", "method", r.Method, "path", r.URL.Path, "status", resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Error("failed to copy response body", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}
