package shipments

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mimimart/checkout/internal/domain"
)

// Handler exposes the staff-facing shipment operations. Admin
// authentication sits in front of these routes, outside this service.
type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

type shipmentResponse struct {
	ID                    int64  `json:"id"`
	OrderID               int64  `json:"order_id"`
	ReceiverName          string `json:"receiver_name"`
	ReceiverPhone         string `json:"receiver_phone"`
	ShippingAddress       string `json:"shipping_address"`
	DeliveryMethod        string `json:"delivery_method"`
	DeliveryNote          string `json:"delivery_note,omitempty"`
	ShippingFee           string `json:"shipping_fee"`
	Carrier               string `json:"carrier,omitempty"`
	TrackingNumber        string `json:"tracking_number,omitempty"`
	ShippedAt             string `json:"shipped_at,omitempty"`
	EstimatedDeliveryDate string `json:"estimated_delivery_date,omitempty"`
	Status                string `json:"status"`
	ActualDeliveryDate    string `json:"actual_delivery_date,omitempty"`
	Notes                 string `json:"notes,omitempty"`
}

func toShipmentResponse(s *domain.Shipment) shipmentResponse {
	resp := shipmentResponse{
		ID:              s.ID,
		OrderID:         s.OrderID,
		ReceiverName:    s.ReceiverName,
		ReceiverPhone:   s.ReceiverPhone,
		ShippingAddress: s.ShippingAddress,
		DeliveryMethod:  string(s.DeliveryMethod),
		DeliveryNote:    s.DeliveryNote,
		ShippingFee:     s.ShippingFee.String(),
		Carrier:         s.Carrier,
		TrackingNumber:  s.TrackingNumber,
		Status:          string(s.Status),
		Notes:           s.Notes,
	}
	if !s.ShippedAt.IsZero() {
		resp.ShippedAt = s.ShippedAt.Format(time.RFC3339)
	}
	if !s.EstimatedDeliveryDate.IsZero() {
		resp.EstimatedDeliveryDate = s.EstimatedDeliveryDate.Format("2006-01-02")
	}
	if !s.ActualDeliveryDate.IsZero() {
		resp.ActualDeliveryDate = s.ActualDeliveryDate.Format(time.RFC3339)
	}
	return resp
}

func (h *Handler) HandleGetByOrder(w http.ResponseWriter, r *http.Request) {
	shipment, ok := h.loadShipment(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, toShipmentResponse(shipment))
}

type recordShippingRequest struct {
	Carrier               string `json:"carrier"`
	TrackingNumber        string `json:"tracking_number"`
	ShippedAt             string `json:"shipped_at"`
	EstimatedDeliveryDate string `json:"estimated_delivery_date"`
}

func (h *Handler) HandleRecordShipping(w http.ResponseWriter, r *http.Request) {
	shipment, ok := h.loadShipment(w, r)
	if !ok {
		return
	}

	var req recordShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	info := domain.ShippingInfo{
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
	}
	if req.ShippedAt != "" {
		shippedAt, err := time.Parse(time.RFC3339, req.ShippedAt)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid shipped_at")
			return
		}
		info.ShippedAt = shippedAt
	}
	if req.EstimatedDeliveryDate != "" {
		estimated, err := time.Parse("2006-01-02", req.EstimatedDeliveryDate)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid estimated_delivery_date")
			return
		}
		info.EstimatedDeliveryDate = estimated
	}

	h.apply(w, r, shipment, func() error { return shipment.RecordShipping(info) })
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	shipment, ok := h.loadShipment(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := domain.ParseDeliveryStatus(req.Status)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.apply(w, r, shipment, func() error { return shipment.UpdateStatus(status, req.Notes) })
}

type markDeliveredRequest struct {
	ActualDeliveryDate string `json:"actual_delivery_date"`
}

func (h *Handler) HandleMarkDelivered(w http.ResponseWriter, r *http.Request) {
	shipment, ok := h.loadShipment(w, r)
	if !ok {
		return
	}

	var req markDeliveredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deliveredAt, err := time.Parse(time.RFC3339, req.ActualDeliveryDate)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid actual_delivery_date")
		return
	}

	h.apply(w, r, shipment, func() error { return shipment.MarkDelivered(deliveredAt) })
}

func (h *Handler) loadShipment(w http.ResponseWriter, r *http.Request) (*domain.Shipment, bool) {
	orderID, err := strconv.ParseInt(r.PathValue("orderID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return nil, false
	}

	shipment, err := h.repo.GetByOrderID(r.Context(), orderID)
	if err != nil {
		h.logger.Error("failed to get shipment", "error", err, "order_id", orderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if shipment == nil {
		h.writeError(w, http.StatusNotFound, "shipment not found")
		return nil, false
	}

	return shipment, true
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, shipment *domain.Shipment, op func() error) {
	if err := op(); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.Save(r.Context(), shipment); err != nil {
		h.logger.Error("failed to save shipment", "error", err, "order_id", shipment.OrderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("shipment updated", "order_id", shipment.OrderID, "status", shipment.Status)
	h.writeJSON(w, http.StatusOK, toShipmentResponse(shipment))
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
