package cart

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mimimart/checkout/internal/domain"
)

// Handler exposes the member cart operations. Authentication is handled
// upstream; the member id arrives on the X-Member-ID header.
type Handler struct {
	members *MemberRepository
	guests  *GuestRepository
	logger  *slog.Logger
}

func NewHandler(members *MemberRepository, guests *GuestRepository, logger *slog.Logger) *Handler {
	return &Handler{members: members, guests: guests, logger: logger}
}

type cartItemResponse struct {
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

type cartResponse struct {
	MemberID       int64              `json:"member_id"`
	Items          []cartItemResponse `json:"items"`
	TotalItemCount int                `json:"total_item_count"`
	ItemSize       int                `json:"item_size"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	items := make([]cartItemResponse, 0, cart.ItemSize())
	for _, item := range cart.Items() {
		items = append(items, cartItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
		})
	}
	return cartResponse{
		MemberID:       cart.MemberID(),
		Items:          items,
		TotalItemCount: cart.TotalItemCount(),
		ItemSize:       cart.ItemSize(),
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.memberID(w, r)
	if !ok {
		return
	}

	cart, err := h.members.Load(r.Context(), memberID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "member_id", memberID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, toCartResponse(cart))
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.memberID(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.mutate(w, r, memberID, func(cart *domain.Cart) error {
		return cart.AddProduct(req.ProductID, req.Quantity)
	})
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.memberID(w, r)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(r.PathValue("productID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.mutate(w, r, memberID, func(cart *domain.Cart) error {
		return cart.UpdateQuantity(productID, req.Quantity)
	})
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.memberID(w, r)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(r.PathValue("productID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	h.mutate(w, r, memberID, func(cart *domain.Cart) error {
		return cart.RemoveProduct(productID)
	})
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.memberID(w, r)
	if !ok {
		return
	}

	h.mutate(w, r, memberID, func(cart *domain.Cart) error {
		cart.Clear()
		return nil
	})
}

type mergeRequest struct {
	SessionID string `json:"session_id"`
	Policy    string `json:"policy"`
}

// HandleMerge folds a guest session cart into the member cart and drops
// the guest copy once the merged cart is persisted.
func (h *Handler) HandleMerge(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.memberID(w, r)
	if !ok {
		return
	}

	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	policy, err := domain.ParseMergePolicy(req.Policy)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	guestCart, err := h.guests.Load(r.Context(), req.SessionID)
	if err != nil {
		h.logger.Error("failed to load guest cart", "error", err, "session_id", req.SessionID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	memberCart, err := h.members.Load(r.Context(), memberID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "member_id", memberID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	merged, err := domain.MergeCarts(memberCart, guestCart, policy)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.members.Replace(r.Context(), merged); err != nil {
		h.logger.Error("failed to save merged cart", "error", err, "member_id", memberID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.guests.Delete(r.Context(), req.SessionID); err != nil {
		h.logger.Error("failed to delete guest cart after merge", "error", err, "session_id", req.SessionID)
	}

	h.logger.Info("cart merged", "member_id", memberID, "policy", policy, "item_size", merged.ItemSize())
	h.writeJSON(w, http.StatusOK, toCartResponse(merged))
}

// Guest carts live in Redis under a session id minted on first write. The
// id travels on the X-Session-ID header in both directions.

func (h *Handler) HandleGuestGet(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	cart, err := h.guests.Load(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to load guest cart", "error", err, "session_id", sessionID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("X-Session-ID", sessionID)
	h.writeJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *Handler) HandleGuestAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	h.mutateGuest(w, r, sessionID, func(cart *domain.Cart) error {
		return cart.AddProduct(req.ProductID, req.Quantity)
	})
}

func (h *Handler) HandleGuestUpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	productID, err := strconv.ParseInt(r.PathValue("productID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.mutateGuest(w, r, sessionID, func(cart *domain.Cart) error {
		return cart.UpdateQuantity(productID, req.Quantity)
	})
}

func (h *Handler) HandleGuestRemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	productID, err := strconv.ParseInt(r.PathValue("productID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	h.mutateGuest(w, r, sessionID, func(cart *domain.Cart) error {
		return cart.RemoveProduct(productID)
	})
}

func (h *Handler) mutateGuest(w http.ResponseWriter, r *http.Request, sessionID string, op func(*domain.Cart) error) {
	cart, err := h.guests.Load(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to load guest cart", "error", err, "session_id", sessionID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := op(cart); err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := h.guests.Save(r.Context(), sessionID, cart); err != nil {
		h.logger.Error("failed to save guest cart", "error", err, "session_id", sessionID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("X-Session-ID", sessionID)
	h.writeJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, memberID int64, op func(*domain.Cart) error) {
	cart, err := h.members.Load(r.Context(), memberID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "member_id", memberID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := op(cart); err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := h.members.Replace(r.Context(), cart); err != nil {
		h.logger.Error("failed to save cart", "error", err, "member_id", memberID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *Handler) memberID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-Member-ID"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "missing or invalid member id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCartItemNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrQuantityOverCap):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrQuantityOutOfRange):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.writeError(w, http.StatusBadRequest, err.Error())
	}
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
