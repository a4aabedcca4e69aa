package usecase

import (
	"context"
	"fmt"
	"strings"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"
	"kinderstep-backend/pkg/utils"
)

type ReviewUsecase struct {
	repo        domain.ReviewRepository
	productRepo domain.ProductRepository
	orderRepo   domain.OrderRepository
}

func NewReviewUsecase(repo domain.ReviewRepository, productRepo domain.ProductRepository, orderRepo domain.OrderRepository) *ReviewUsecase {
	return &ReviewUsecase{repo: repo, productRepo: productRepo, orderRepo: orderRepo}
}

// ListForProduct returns published reviews only.
func (u *ReviewUsecase) ListForProduct(ctx context.Context, articleNumber string, page, limit int) ([]domain.Review, int64, error) {
	published := true
	return u.list(ctx, domain.ReviewFilter{
		ArticleNumber: utils.NormalizeArticle(articleNumber),
		Published:     &published,
		Limit:         limit,
		Offset:        (page - 1) * limit,
	})
}

func (u *ReviewUsecase) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int64, error) {
	return u.list(ctx, filter)
}

func (u *ReviewUsecase) list(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int64, error) {
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	reviews, total, err := u.repo.ListReviews(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, total, nil
}

// Create stores a review. Reviews of verified buyers are published at once,
// the rest wait for moderation.
func (u *ReviewUsecase) Create(ctx context.Context, userID, articleNumber string, req domain.ReviewRequest) (*domain.Review, error) {
	if err := schema.Validate(req); err != nil {
		return nil, err
	}
	articleNumber = utils.NormalizeArticle(articleNumber)
	if _, err := u.productRepo.GetByArticle(ctx, articleNumber); err != nil {
		return nil, fmt.Errorf("product %s: %w", articleNumber, err)
	}

	purchased, err := u.orderRepo.HasPurchased(ctx, userID, articleNumber)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		ArticleNumber: articleNumber,
		UserID:        userID,
		Rating:        req.Rating,
		Comment:       strings.TrimSpace(req.Comment),
		IsPublished:   purchased,
	}
	if err := u.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (u *ReviewUsecase) Get(ctx context.Context, id string) (*domain.Review, error) {
	return u.repo.GetReview(ctx, id)
}

func (u *ReviewUsecase) Update(ctx context.Context, id string, changes domain.ReviewUpdate) (*domain.Review, error) {
	if err := schema.Validate(changes); err != nil {
		return nil, err
	}
	review, err := u.repo.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if changes.Rating != nil {
		review.Rating = *changes.Rating
	}
	if changes.Comment != nil {
		review.Comment = strings.TrimSpace(*changes.Comment)
	}
	if changes.IsPublished != nil {
		review.IsPublished = *changes.IsPublished
	}
	if err := u.repo.UpdateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (u *ReviewUsecase) Delete(ctx context.Context, id string) error {
	return u.repo.DeleteReview(ctx, id)
}
