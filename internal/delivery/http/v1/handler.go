package v1

import (
	"errors"
	"net/http"
	"strconv"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	// IdempotencyHeader carries the client key of a bulk submission.
	IdempotencyHeader = "X-Idempotency-Key"
)

// writeDomainError maps usecase errors to HTTP responses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.WriteError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyCart):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInsufficientStock):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		utils.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, err.Error())
	default:
		logger.WithContext(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decode reads the body into dst and answers 400 on malformed JSON.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.DecodeJSON(r, dst); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok || user == nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return user, true
}

// pageParams reads ?page and ?limit with defaults and an upper bound.
func pageParams(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func pathID(w http.ResponseWriter, r *http.Request) (int32, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 32)
	if err != nil || id <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return int32(id), true
}

func writePage[T any](w http.ResponseWriter, items []T, page, limit int, total int64) {
	if items == nil {
		items = []T{}
	}
	utils.WriteJSON(w, http.StatusOK, domain.Page[T]{
		Data:       items,
		Pagination: domain.NewPagination(page, limit, total),
	})
}
