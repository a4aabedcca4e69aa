package domain

import (
	"context"
	"time"
)

// CartLine is a product+size pair with a quantity. On the server it is stored
// as an order item of the account cart.
type CartLine struct {
	ArticleNumber string `json:"articleNumber" validate:"required,max=32"`
	Size          string `json:"size" validate:"required,max=10"`
	Quantity      int    `json:"quantity" validate:"gte=1"`
}

// OrderItem is a line of the account cart (the "order-items" resource).
type OrderItem struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	ArticleNumber string    `json:"articleNumber" validate:"required,max=32"`
	Size          string    `json:"size" validate:"required,max=10"`
	Quantity      int       `json:"quantity" validate:"gte=1"`
	Product       *Product  `json:"product,omitempty"`
	Available     bool      `json:"available"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BulkCartResult reports what a bulk merge did with each submitted line.
type BulkCartResult struct {
	Items    []OrderItem   `json:"items" validate:"dive"`
	Merged   int           `json:"merged"`
	Skipped  []SkippedLine `json:"skipped" validate:"dive"`
	Replayed bool          `json:"replayed"`
}

type SkippedLine struct {
	CartLine
	Reason string `json:"reason"`
}

type BulkFavoritesResult struct {
	Favorites []Favorite `json:"favorites" validate:"dive"`
	Added     int        `json:"added"`
	Replayed  bool       `json:"replayed"`
}

type CartRepository interface {
	ListItems(ctx context.Context, userID string) ([]OrderItem, error)
	GetItem(ctx context.Context, userID, id string) (*OrderItem, error)
	FindItem(ctx context.Context, userID, articleNumber, size string) (*OrderItem, error)
	// UpsertItem sets the quantity of the (article, size) line, creating it if needed.
	UpsertItem(ctx context.Context, item *OrderItem) error
	UpdateItem(ctx context.Context, item *OrderItem) error
	DeleteItem(ctx context.Context, userID, id string) error
	ClearItems(ctx context.Context, userID string) error
}

// IdempotencyRepository remembers which bulk submissions were already applied.
type IdempotencyRepository interface {
	// Claim records the key and reports false when it was already recorded.
	Claim(ctx context.Context, userID, scope, key string) (bool, error)
}
