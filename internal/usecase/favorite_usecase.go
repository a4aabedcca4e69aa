package usecase

import (
	"context"
	"fmt"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"
)

type FavoriteUsecase struct {
	repo        domain.FavoriteRepository
	productRepo domain.ProductRepository
	idemRepo    domain.IdempotencyRepository
	txManager   domain.TransactionManager
}

func NewFavoriteUsecase(repo domain.FavoriteRepository, productRepo domain.ProductRepository, idemRepo domain.IdempotencyRepository, txManager domain.TransactionManager) *FavoriteUsecase {
	return &FavoriteUsecase{
		repo:        repo,
		productRepo: productRepo,
		idemRepo:    idemRepo,
		txManager:   txManager,
	}
}

func (u *FavoriteUsecase) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	favs, err := u.repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	if favs == nil {
		favs = []domain.Favorite{}
	}
	return favs, nil
}

// Add favorites an existing product. Adding it twice is not an error.
func (u *FavoriteUsecase) Add(ctx context.Context, userID, articleNumber string) error {
	articleNumber = utils.NormalizeArticle(articleNumber)
	if err := schema.Validate(domain.FavoriteRequest{ArticleNumber: articleNumber}); err != nil {
		return err
	}
	if _, err := u.productRepo.GetByArticle(ctx, articleNumber); err != nil {
		return fmt.Errorf("product %s: %w", articleNumber, err)
	}
	return u.repo.AddFavorite(ctx, userID, articleNumber)
}

func (u *FavoriteUsecase) Remove(ctx context.Context, userID, articleNumber string) error {
	return u.repo.RemoveFavorite(ctx, userID, utils.NormalizeArticle(articleNumber))
}

func (u *FavoriteUsecase) Count(ctx context.Context, userID string) (int64, error) {
	return u.repo.CountFavorites(ctx, userID)
}

// BulkAdd unions the submitted articles into the account favorites. Unknown
// articles are kept; they show as unavailable. A repeated idempotency key
// returns the current favorites without applying the payload again.
func (u *FavoriteUsecase) BulkAdd(ctx context.Context, userID, idempotencyKey string, req domain.BulkFavoritesRequest) (*domain.BulkFavoritesResult, error) {
	for i, a := range req.ArticleNumbers {
		req.ArticleNumbers[i] = utils.NormalizeArticle(a)
	}
	if err := schema.Validate(req); err != nil {
		return nil, err
	}

	result := &domain.BulkFavoritesResult{}
	err := u.txManager.Do(ctx, func(ctx context.Context) error {
		if idempotencyKey != "" {
			fresh, err := u.idemRepo.Claim(ctx, userID, domain.ScopeFavoritesBulk, idempotencyKey)
			if err != nil {
				return err
			}
			if !fresh {
				result.Replayed = true
				return nil
			}
		}
		added, err := u.repo.AddFavorites(ctx, userID, dedupe(req.ArticleNumbers))
		if err != nil {
			return err
		}
		result.Added = added
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().
		Str("user_id", userID).
		Int("submitted", len(req.ArticleNumbers)).
		Int("added", result.Added).
		Bool("replayed", result.Replayed).
		Msg("Bulk favorites merged")

	favs, err := u.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.Favorites = favs
	return result, nil
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
