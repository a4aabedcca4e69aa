package v1

import (
	"net/http"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/usecase"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"
)

type AdminOrderHandler struct {
	orderUC *usecase.OrderUsecase
}

func NewAdminOrderHandler(uc *usecase.OrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{orderUC: uc}
}

func (h *AdminOrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filter := domain.OrderFilter{
		Page:   page,
		Limit:  limit,
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
		UserID: r.URL.Query().Get("user_id"),
	}

	orders, total, err := h.orderUC.ListOrders(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writePage(w, orders, page, limit, total)
}

func (h *AdminOrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderUC.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.StatusUpdate
	if !decode(w, r, &req) {
		return
	}

	order, err := h.orderUC.UpdateStatus(r.Context(), r.PathValue("id"), req, admin.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	logger.WithContext(r.Context()).Info().
		Str("order_id", order.ID).
		Str("status", order.Status).
		Str("admin_id", admin.ID).
		Msg("Order status updated")
	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *AdminOrderHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.orderUC.GetOrderHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if history == nil {
		history = []domain.OrderHistory{}
	}
	utils.WriteJSON(w, http.StatusOK, history)
}
