package v1

import (
	"net/http"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/usecase"
	"kinderstep-backend/pkg/utils"
)

type UserHandler struct {
	userUC *usecase.UserUsecase
}

func NewUserHandler(uc *usecase.UserUsecase) *UserHandler {
	return &UserHandler{userUC: uc}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	me, err := h.userUC.Me(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, me)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.ProfileUpdate
	if !decode(w, r, &req) {
		return
	}
	updated, err := h.userUC.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.userUC.DeleteMe(r.Context(), user.ID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Admin ---

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	users, total, err := h.userUC.ListUsers(r.Context(), page, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writePage(w, users, page, limit, total)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userUC.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminUserUpdate
	if !decode(w, r, &req) {
		return
	}
	updated, err := h.userUC.UpdateUser(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.userUC.DeleteUser(r.Context(), admin.ID, r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
