package usecase

import (
	"context"
	"errors"
	"fmt"

	"kinderstep-backend/config"
	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"
)

// Reasons reported for bulk lines that could not be merged.
const (
	SkipUnknownArticle = "unknown article"
	SkipUnknownSize    = "unknown size"
	SkipOutOfStock     = "out of stock"
)

// CartUsecase manages the account cart (the order-items resource).
type CartUsecase struct {
	repo        domain.CartRepository
	productRepo domain.ProductRepository
	idemRepo    domain.IdempotencyRepository
	txManager   domain.TransactionManager
	maxQuantity int
}

func NewCartUsecase(repo domain.CartRepository, productRepo domain.ProductRepository, idemRepo domain.IdempotencyRepository, txManager domain.TransactionManager, cfg *config.Config) *CartUsecase {
	return &CartUsecase{
		repo:        repo,
		productRepo: productRepo,
		idemRepo:    idemRepo,
		txManager:   txManager,
		maxQuantity: cfg.MaxCartQuantity,
	}
}

func (u *CartUsecase) List(ctx context.Context, userID string) ([]domain.OrderItem, error) {
	items, err := u.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.OrderItem{}
	}
	return items, nil
}

// clamp limits a wanted quantity to stock and the per-line maximum.
func (u *CartUsecase) clamp(want, stock int) int {
	if want > stock {
		want = stock
	}
	if u.maxQuantity > 0 && want > u.maxQuantity {
		want = u.maxQuantity
	}
	return want
}

func (u *CartUsecase) stockOf(ctx context.Context, articleNumber, size string) (int, error) {
	product, err := u.productRepo.GetByArticle(ctx, articleNumber)
	if err != nil {
		return 0, fmt.Errorf("product %s: %w", articleNumber, err)
	}
	if !product.IsActive {
		return 0, fmt.Errorf("product %s: %w", articleNumber, domain.ErrNotFound)
	}
	stock, ok := product.StockFor(size)
	if !ok {
		return 0, fmt.Errorf("%w: size %s is not offered for %s", domain.ErrInvalidInput, size, articleNumber)
	}
	if stock == 0 {
		return 0, fmt.Errorf("%w: %s size %s", domain.ErrInsufficientStock, articleNumber, size)
	}
	return stock, nil
}

// Add puts quantity pieces of (article, size) into the cart, adding to an
// existing line. The resulting quantity is clamped to stock.
func (u *CartUsecase) Add(ctx context.Context, userID string, line domain.CartLine) (*domain.OrderItem, error) {
	line.ArticleNumber = utils.NormalizeArticle(line.ArticleNumber)
	if err := schema.Validate(line); err != nil {
		return nil, err
	}

	stock, err := u.stockOf(ctx, line.ArticleNumber, line.Size)
	if err != nil {
		return nil, err
	}

	want := line.Quantity
	existing, err := u.repo.FindItem(ctx, userID, line.ArticleNumber, line.Size)
	switch {
	case err == nil:
		want += existing.Quantity
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	item := &domain.OrderItem{
		UserID:        userID,
		ArticleNumber: line.ArticleNumber,
		Size:          line.Size,
		Quantity:      u.clamp(want, stock),
		Available:     true,
	}
	if err := u.repo.UpsertItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update changes size and/or quantity of a line. Moving a line onto a size
// that is already in the cart merges both lines.
func (u *CartUsecase) Update(ctx context.Context, userID, id string, changes domain.CartLineUpdate) (*domain.OrderItem, error) {
	if err := schema.Validate(changes); err != nil {
		return nil, err
	}
	if changes.Size == nil && changes.Quantity == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}

	var result *domain.OrderItem
	err := u.txManager.Do(ctx, func(ctx context.Context) error {
		item, err := u.repo.GetItem(ctx, userID, id)
		if err != nil {
			return err
		}

		size := item.Size
		if changes.Size != nil {
			size = *changes.Size
		}
		qty := item.Quantity
		if changes.Quantity != nil {
			qty = *changes.Quantity
		}

		stock, err := u.stockOf(ctx, item.ArticleNumber, size)
		if err != nil {
			return err
		}

		if size != item.Size {
			other, err := u.repo.FindItem(ctx, userID, item.ArticleNumber, size)
			switch {
			case err == nil:
				other.Quantity = u.clamp(other.Quantity+qty, stock)
				if err := u.repo.DeleteItem(ctx, userID, item.ID); err != nil {
					return err
				}
				if err := u.repo.UpsertItem(ctx, other); err != nil {
					return err
				}
				result = other
				return nil
			case !errors.Is(err, domain.ErrNotFound):
				return err
			}
		}

		item.Size = size
		item.Quantity = u.clamp(qty, stock)
		if err := u.repo.UpdateItem(ctx, item); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Available = true
	return result, nil
}

func (u *CartUsecase) Delete(ctx context.Context, userID, id string) error {
	return u.repo.DeleteItem(ctx, userID, id)
}

func (u *CartUsecase) Clear(ctx context.Context, userID string) error {
	return u.repo.ClearItems(ctx, userID)
}

// BulkAdd merges guest cart lines into the account cart. Quantities add up
// per (article, size) and are clamped to stock; lines for unknown articles or
// sizes are skipped and reported. A repeated idempotency key returns the
// current cart without applying the payload again.
func (u *CartUsecase) BulkAdd(ctx context.Context, userID, idempotencyKey string, req domain.BulkCartRequest) (*domain.BulkCartResult, error) {
	for i := range req.Items {
		req.Items[i].ArticleNumber = utils.NormalizeArticle(req.Items[i].ArticleNumber)
	}
	if err := schema.Validate(req); err != nil {
		return nil, err
	}

	result := &domain.BulkCartResult{Skipped: []domain.SkippedLine{}}
	err := u.txManager.Do(ctx, func(ctx context.Context) error {
		if idempotencyKey != "" {
			fresh, err := u.idemRepo.Claim(ctx, userID, domain.ScopeCartBulk, idempotencyKey)
			if err != nil {
				return err
			}
			if !fresh {
				result.Replayed = true
				return nil
			}
		}

		articles := make([]string, 0, len(req.Items))
		for _, l := range req.Items {
			articles = append(articles, l.ArticleNumber)
		}
		products, err := u.productRepo.GetByArticles(ctx, dedupe(articles))
		if err != nil {
			return err
		}

		for _, line := range mergeLines(req.Items) {
			product, ok := products[line.ArticleNumber]
			if !ok || !product.IsActive {
				result.Skipped = append(result.Skipped, domain.SkippedLine{CartLine: line, Reason: SkipUnknownArticle})
				continue
			}
			stock, ok := product.StockFor(line.Size)
			if !ok {
				result.Skipped = append(result.Skipped, domain.SkippedLine{CartLine: line, Reason: SkipUnknownSize})
				continue
			}
			if stock == 0 {
				result.Skipped = append(result.Skipped, domain.SkippedLine{CartLine: line, Reason: SkipOutOfStock})
				continue
			}

			want := line.Quantity
			existing, err := u.repo.FindItem(ctx, userID, line.ArticleNumber, line.Size)
			switch {
			case err == nil:
				want += existing.Quantity
			case !errors.Is(err, domain.ErrNotFound):
				return err
			}

			item := &domain.OrderItem{
				UserID:        userID,
				ArticleNumber: line.ArticleNumber,
				Size:          line.Size,
				Quantity:      u.clamp(want, stock),
			}
			if err := u.repo.UpsertItem(ctx, item); err != nil {
				return err
			}
			result.Merged++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().
		Str("user_id", userID).
		Int("submitted", len(req.Items)).
		Int("merged", result.Merged).
		Int("skipped", len(result.Skipped)).
		Bool("replayed", result.Replayed).
		Msg("Bulk cart merged")

	items, err := u.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.Items = items
	return result, nil
}

// mergeLines sums duplicate (article, size) pairs, keeping first-seen order.
func mergeLines(lines []domain.CartLine) []domain.CartLine {
	index := make(map[[2]string]int, len(lines))
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		k := [2]string{l.ArticleNumber, l.Size}
		if i, ok := index[k]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[k] = len(out)
		out = append(out, l)
	}
	return out
}
