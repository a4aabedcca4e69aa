package v1

import (
	"net/http"

	"kinderstep-backend/internal/delivery/http/middleware"
	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/usecase"
	"kinderstep-backend/pkg/utils"
)

type OrderHandler struct {
	orderUC *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{orderUC: uc}
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	orders, err := h.orderUC.ListMine(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

// Checkout turns the account cart into an order.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.CheckoutRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.orderUC.Checkout(r.Context(), user.ID, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order)
}

// CreateOrder places an order from explicit lines. Guests identify themselves
// with the device session id.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.GuestOrderRequest
	if !decode(w, r, &req) {
		return
	}

	var userID *string
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		userID = &user.ID
	}

	order, err := h.orderUC.CreateOrder(r.Context(), userID, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order)
}

// SyncSession links guest orders of a device session to the caller.
func (h *OrderHandler) SyncSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.SessionSync
	if !decode(w, r, &req) {
		return
	}
	result, err := h.orderUC.SyncSession(r.Context(), user.ID, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
