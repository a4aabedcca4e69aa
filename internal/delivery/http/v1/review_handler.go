package v1

import (
	"net/http"
	"strconv"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/usecase"
	"kinderstep-backend/pkg/utils"
)

// AdminReviewHandler moderates reviews.
type AdminReviewHandler struct {
	reviewUC *usecase.ReviewUsecase
}

func NewAdminReviewHandler(uc *usecase.ReviewUsecase) *AdminReviewHandler {
	return &AdminReviewHandler{reviewUC: uc}
}

// ListReviews accepts ?article= and ?published=true|false.
func (h *AdminReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filter := domain.ReviewFilter{
		ArticleNumber: utils.NormalizeArticle(r.URL.Query().Get("article")),
		Limit:         limit,
		Offset:        (page - 1) * limit,
	}
	if val := r.URL.Query().Get("published"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			filter.Published = &b
		}
	}

	reviews, total, err := h.reviewUC.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writePage(w, reviews, page, limit, total)
}

func (h *AdminReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviewUC.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, review)
}

func (h *AdminReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var req domain.ReviewUpdate
	if !decode(w, r, &req) {
		return
	}
	review, err := h.reviewUC.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, review)
}

func (h *AdminReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.reviewUC.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
