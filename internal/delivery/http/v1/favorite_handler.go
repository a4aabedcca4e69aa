package v1

import (
	"net/http"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/usecase"
	"kinderstep-backend/pkg/utils"
)

type FavoriteHandler struct {
	favoriteUC *usecase.FavoriteUsecase
}

func NewFavoriteHandler(uc *usecase.FavoriteUsecase) *FavoriteHandler {
	return &FavoriteHandler{favoriteUC: uc}
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	favs, err := h.favoriteUC.List(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, favs)
}

func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.FavoriteRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.favoriteUC.Add(r.Context(), user.ID, req.ArticleNumber); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteMessage(w, http.StatusCreated, "Added to favorites")
}

func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.favoriteUC.Remove(r.Context(), user.ID, r.PathValue("articleNumber")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoriteHandler) Count(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	n, err := h.favoriteUC.Count(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Count{Count: n})
}

func (h *FavoriteHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.BulkFavoritesRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.favoriteUC.BulkAdd(r.Context(), user.ID, r.Header.Get(IdempotencyHeader), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
