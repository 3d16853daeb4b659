package checkout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mimimart/checkout/internal/domain"
	"github.com/mimimart/checkout/internal/orders"
)

var ErrOrderNotFound = errors.New("order not found")

type Handler struct {
	service *Service
	orders  *orders.Repository
	logger  *slog.Logger
}

func NewHandler(service *Service, orderRepo *orders.Repository, logger *slog.Logger) *Handler {
	return &Handler{service: service, orders: orderRepo, logger: logger}
}

type deliveryInfoRequest struct {
	ReceiverName    string `json:"receiver_name"`
	ReceiverPhone   string `json:"receiver_phone"`
	ShippingAddress string `json:"shipping_address"`
	Method          string `json:"delivery_method"`
	Note            string `json:"note"`
}

type createOrderRequest struct {
	Delivery      deliveryInfoRequest `json:"delivery_info"`
	PaymentMethod string              `json:"payment_method"`
}

type orderItemResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type orderResponse struct {
	ID                 int64               `json:"id"`
	OrderNumber        string              `json:"order_number"`
	MemberID           int64               `json:"member_id"`
	Status             string              `json:"status"`
	Items              []orderItemResponse `json:"items"`
	Total              string              `json:"total"`
	Delivery           deliveryInfoRequest `json:"delivery_info"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.Snapshot.Name,
			Price:       item.Snapshot.Price.String(),
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal.String(),
		})
	}
	return orderResponse{
		ID:          o.ID,
		OrderNumber: o.Number.String(),
		MemberID:    o.MemberID,
		Status:      string(o.Status),
		Items:       items,
		Total:       o.Total.String(),
		Delivery: deliveryInfoRequest{
			ReceiverName:    o.Delivery.ReceiverName,
			ReceiverPhone:   o.Delivery.ReceiverPhone,
			ShippingAddress: o.Delivery.ShippingAddress,
			Method:          string(o.Delivery.Method),
			Note:            o.Delivery.Note,
		},
		CancellationReason: o.CancellationReason,
		CreatedAt:          o.CreatedAt,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.memberID(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PaymentMethod == "" {
		h.writeError(w, http.StatusBadRequest, "missing payment method")
		return
	}

	delivery := domain.DeliveryInfo{
		ReceiverName:    req.Delivery.ReceiverName,
		ReceiverPhone:   req.Delivery.ReceiverPhone,
		ShippingAddress: req.Delivery.ShippingAddress,
		Method:          domain.DeliveryMethod(req.Delivery.Method),
		Note:            req.Delivery.Note,
	}
	if err := delivery.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, payment, err := h.service.PlaceOrder(r.Context(), memberID, delivery, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCart):
			h.writeError(w, http.StatusConflict, "cart is empty")
		case errors.Is(err, domain.ErrProductGone):
			// Catalog and cart disagree; this is corruption, not user error.
			h.logger.Error("cart references missing product", "error", err, "member_id", memberID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		default:
			h.logger.Error("failed to place order", "error", err, "member_id", memberID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"order":          toOrderResponse(order),
		"payment_number": payment.Number.String(),
		"expired_at":     payment.ExpiredAt.Format(time.RFC3339),
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.memberID(w, r)
	if !ok {
		return
	}

	orderID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", orderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if order == nil || !order.BelongsToMember(memberID) {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.memberID(w, r)
	if !ok {
		return
	}

	list, err := h.orders.ListByMember(r.Context(), memberID)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err, "member_id", memberID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	responses := make([]orderResponse, 0, len(list))
	for _, order := range list {
		responses = append(responses, toOrderResponse(order))
	}
	h.writeJSON(w, http.StatusOK, responses)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.memberID(w, r)
	if !ok {
		return
	}

	orderID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.CancelOrder(r.Context(), memberID, orderID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			h.writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			h.writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("failed to cancel order", "error", err, "order_id", orderID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) memberID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-Member-ID"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "missing or invalid member id")
		return 0, false
	}
	return id, true
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
