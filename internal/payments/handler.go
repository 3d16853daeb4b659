package payments

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mimimart/checkout/internal/domain"
	"github.com/mimimart/checkout/internal/orders"
)

type Handler struct {
	db       *sql.DB
	payments *Repository
	orders   *orders.Repository
	gateway  *Gateway
	logger   *slog.Logger
}

func NewHandler(db *sql.DB, payments *Repository, orderRepo *orders.Repository, gateway *Gateway, logger *slog.Logger) *Handler {
	return &Handler{db: db, payments: payments, orders: orderRepo, gateway: gateway, logger: logger}
}

type paymentResponse struct {
	ID                    int64  `json:"id"`
	OrderID               int64  `json:"order_id"`
	PaymentNumber         string `json:"payment_number"`
	Method                string `json:"method"`
	Status                string `json:"status"`
	Amount                string `json:"amount"`
	ExternalTransactionID string `json:"external_transaction_id,omitempty"`
	ExpiredAt             string `json:"expired_at"`
	PaidAt                string `json:"paid_at,omitempty"`
}

func toPaymentResponse(p *domain.Payment) paymentResponse {
	resp := paymentResponse{
		ID:                    p.ID,
		OrderID:               p.OrderID,
		PaymentNumber:         p.Number.String(),
		Method:                p.Method,
		Status:                string(p.Status),
		Amount:                p.Amount.String(),
		ExternalTransactionID: p.ExternalTransactionID,
		ExpiredAt:             p.ExpiredAt.Format(time.RFC3339),
	}
	if !p.PaidAt.IsZero() {
		resp.PaidAt = p.PaidAt.Format(time.RFC3339)
	}
	return resp
}

func (h *Handler) HandleGetByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(r.PathValue("orderID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	payment, err := h.payments.GetByOrderID(r.Context(), orderID)
	if err != nil {
		h.logger.Error("failed to get payment", "error", err, "order_id", orderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if payment == nil {
		h.writeError(w, http.StatusNotFound, "payment not found")
		return
	}

	h.writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}

// HandleCreateParams returns the signed parameter set the storefront posts
// to the gateway to open the hosted payment page.
func (h *Handler) HandleCreateParams(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(r.PathValue("orderID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	payment, err := h.payments.GetByOrderID(r.Context(), orderID)
	if err != nil {
		h.logger.Error("failed to get payment", "error", err, "order_id", orderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if payment == nil {
		h.writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	if !payment.IsCancellable() {
		h.writeError(w, http.StatusConflict, "payment is no longer pending")
		return
	}

	params := h.gateway.BuildCreateParams(payment, "mimimart order")
	h.writeJSON(w, http.StatusOK, params)
}

// HandleCallback processes the gateway's server-to-server payment
// notification. The checksum is verified before any state is read, then
// the payment and its order move to PAID in one transaction. The gateway
// expects the literal body 1|OK on success and 0|<reason> otherwise.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeCallbackResult(w, false, "bad form")
		return
	}

	if err := h.gateway.VerifyCallback(r.PostForm); err != nil {
		h.logger.Warn("rejected gateway callback", "error", err)
		h.writeCallbackResult(w, false, "checksum mismatch")
		return
	}

	info, err := ParseCallback(r.PostForm)
	if err != nil {
		h.logger.Warn("unparseable gateway callback", "error", err)
		h.writeCallbackResult(w, false, "bad payload")
		return
	}

	if !info.Succeeded {
		h.logger.Info("gateway reported failed trade", "merchant_trade_no", info.MerchantTradeNo)
		h.writeCallbackResult(w, true, "")
		return
	}

	number, err := domain.ParsePaymentNumber(info.MerchantTradeNo)
	if err != nil {
		h.writeCallbackResult(w, false, "bad trade number")
		return
	}

	if err := h.settle(r, number, info); err != nil {
		switch {
		case errors.Is(err, domain.ErrAmountMismatch):
			h.logger.Error("callback amount mismatch", "payment_number", number, "error", err)
			h.writeCallbackResult(w, false, "amount mismatch")
		case errors.Is(err, domain.ErrInvalidTransition):
			// Replayed callback for a settled payment; acknowledge so the
			// gateway stops retrying.
			h.logger.Info("callback for non-pending payment", "payment_number", number)
			h.writeCallbackResult(w, true, "")
		default:
			h.logger.Error("failed to settle payment", "error", err, "payment_number", number)
			h.writeCallbackResult(w, false, "internal error")
		}
		return
	}

	h.logger.Info("payment settled", "payment_number", number, "trade_no", info.TradeNo)
	h.writeCallbackResult(w, true, "")
}

func (h *Handler) settle(r *http.Request, number domain.PaymentNumber, info CallbackInfo) error {
	ctx := r.Context()

	payment, err := h.payments.GetByNumber(ctx, number)
	if err != nil {
		return err
	}
	if payment == nil {
		return errors.New("payment not found")
	}

	if err := payment.MarkPaid(info.TradeNo, info.Amount); err != nil {
		return err
	}

	order, err := h.orders.GetByID(ctx, payment.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return errors.New("order not found for payment")
	}
	if err := order.MarkPaid(); err != nil {
		return err
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := h.payments.SaveTx(ctx, tx, payment); err != nil {
		return err
	}
	if err := h.orders.SaveTx(ctx, tx, order); err != nil {
		return err
	}

	return tx.Commit()
}

func (h *Handler) writeCallbackResult(w http.ResponseWriter, ok bool, reason string) {
	w.Header().Set("Content-Type", "text/plain")
	if ok {
		_, _ = w.Write([]byte("1|OK"))
		return
	}
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte("0|" + reason))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
