package domain

import (
	"context"
	"time"
)

// Favorite is one FavoriteRef of an account. Product is nil when the article
// no longer exists in the catalog.
type Favorite struct {
	ID            string    `json:"id"`
	ArticleNumber string    `json:"articleNumber" validate:"required,max=32"`
	Product       *Product  `json:"product,omitempty"`
	Available     bool      `json:"available"`
	AddedAt       time.Time `json:"addedAt"`
}

type FavoriteRepository interface {
	ListFavorites(ctx context.Context, userID string) ([]Favorite, error)
	// AddFavorite inserts the article, doing nothing when it is already present.
	AddFavorite(ctx context.Context, userID, articleNumber string) error
	AddFavorites(ctx context.Context, userID string, articleNumbers []string) (int, error)
	RemoveFavorite(ctx context.Context, userID, articleNumber string) error
	CountFavorites(ctx context.Context, userID string) (int64, error)
}
