package domain

import (
	"context"
	"time"
)

type Review struct {
	ID            string    `json:"id"`
	ArticleNumber string    `json:"articleNumber" validate:"required,max=32"`
	UserID        string    `json:"userId"`
	AuthorName    string    `json:"authorName,omitempty"`
	Rating        int       `json:"rating" validate:"gte=1,lte=5"`
	Comment       string    `json:"comment" validate:"max=2000"`
	IsPublished   bool      `json:"isPublished"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ReviewFilter struct {
	ArticleNumber string
	Published     *bool
	Limit         int
	Offset        int
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *Review) error
	GetReview(ctx context.Context, id string) (*Review, error)
	ListReviews(ctx context.Context, filter ReviewFilter) ([]Review, int64, error)
	UpdateReview(ctx context.Context, review *Review) error
	DeleteReview(ctx context.Context, id string) error
}
