package domain

// --- Shared Custom Types ---

// Pagination
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination derives the page count from the total.
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, TotalItems: total, TotalPages: pages}
}

// Page is the envelope of every list endpoint.
type Page[T any] struct {
	Data       []T        `json:"data" validate:"dive"`
	Pagination Pagination `json:"pagination"`
}

// Count is returned by counter endpoints such as /favorites/count.
type Count struct {
	Count int64 `json:"count" validate:"gte=0"`
}

// SessionSync links a guest session to the authenticated account.
type SessionSync struct {
	SessionID string `json:"sessionId" validate:"required,max=64"`
}

type SessionSyncResult struct {
	LinkedOrders int64 `json:"linkedOrders"`
}
