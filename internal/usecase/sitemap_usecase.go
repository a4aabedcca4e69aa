package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kinderstep-backend/config"
	"kinderstep-backend/internal/domain"
	"kinderstep-backend/pkg/cache"
)

type SitemapItem struct {
	Loc        string
	LastMod    string
	ChangeFreq string
	Priority   float32
}

type SitemapUsecase struct {
	productRepo domain.ProductRepository
	baseURL     string
	cache       cache.CacheService
	cfg         *config.Config
}

func NewSitemapUsecase(repo domain.ProductRepository, baseURL string, cache cache.CacheService, cfg *config.Config) *SitemapUsecase {
	return &SitemapUsecase{
		productRepo: repo,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		cache:       cache,
		cfg:         cfg,
	}
}

func (u *SitemapUsecase) GenerateSitemap(ctx context.Context) ([]SitemapItem, error) {
	if val, found := u.cache.Get(cacheKeySitemap); found {
		return val.([]SitemapItem), nil
	}

	var items []SitemapItem
	now := time.Now().Format("2006-01-02")

	// Empty string is the home page
	statics := []string{"", "/catalog", "/sale", "/favorites", "/cart", "/delivery", "/contacts"}
	for _, s := range statics {
		items = append(items, SitemapItem{
			Loc:        u.baseURL + s,
			LastMod:    now,
			ChangeFreq: "daily",
			Priority:   0.7,
		})
	}
	items[0].Priority = 1.0

	isActive := true
	products, _, err := u.productRepo.GetProducts(ctx, domain.ProductFilter{
		Limit:    5000,
		IsActive: &isActive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	for _, p := range products {
		items = append(items, SitemapItem{
			Loc:        fmt.Sprintf("%s/product/%s", u.baseURL, p.ArticleNumber),
			LastMod:    p.UpdatedAt.Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   0.9,
		})
	}

	categories, err := u.productRepo.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	for _, c := range categories {
		items = append(items, SitemapItem{
			Loc:        fmt.Sprintf("%s/catalog/%s", u.baseURL, c.Slug),
			LastMod:    now,
			ChangeFreq: "daily",
			Priority:   0.8,
		})
	}

	brands, err := u.productRepo.GetBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch brands: %w", err)
	}
	for _, b := range brands {
		items = append(items, SitemapItem{
			Loc:        fmt.Sprintf("%s/brand/%s", u.baseURL, b.Slug),
			LastMod:    now,
			ChangeFreq: "weekly",
			Priority:   0.6,
		})
	}

	u.cache.Set(cacheKeySitemap, items, u.cfg.CacheSitemapTTL)
	return items, nil
}
