package v1

import (
	"net/http"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/usecase"
	"kinderstep-backend/pkg/utils"
)

// CartHandler serves the account cart as the order-items resource.
type CartHandler struct {
	cartUC *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{cartUC: uc}
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.cartUC.List(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, items)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var line domain.CartLine
	if !decode(w, r, &line) {
		return
	}
	item, err := h.cartUC.Add(r.Context(), user.ID, line)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, item)
}

func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var changes domain.CartLineUpdate
	if !decode(w, r, &changes) {
		return
	}
	item, err := h.cartUC.Update(r.Context(), user.ID, r.PathValue("id"), changes)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, item)
}

func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.cartUC.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.cartUC.Clear(r.Context(), user.ID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Bulk merges guest cart lines into the account cart.
func (h *CartHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.BulkCartRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.cartUC.BulkAdd(r.Context(), user.ID, r.Header.Get(IdempotencyHeader), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
