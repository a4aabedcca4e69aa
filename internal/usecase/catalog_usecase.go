package usecase

import (
	"context"
	"fmt"
	"strings"

	"kinderstep-backend/config"
	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"
	"kinderstep-backend/pkg/cache"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/storage"
	"kinderstep-backend/pkg/utils"
)

const (
	cacheKeyProductList = "products:list:"
	cacheKeyProduct     = "product:"
	cacheKeyCategories  = "categories:all"
	cacheKeyBrands      = "brands:all"
	cacheKeySitemap     = "sitemap:items"
)

type CatalogUsecase struct {
	repo    domain.ProductRepository
	cache   cache.CacheService
	storage storage.ObjectStorage // optional; images are left in place when nil
	cfg     *config.Config
}

func NewCatalogUsecase(repo domain.ProductRepository, cache cache.CacheService, store storage.ObjectStorage, cfg *config.Config) *CatalogUsecase {
	return &CatalogUsecase{
		repo:    repo,
		cache:   cache,
		storage: store,
		cfg:     cfg,
	}
}

// productListKey builds a cache key from the dereferenced filter values.
func productListKey(f domain.ProductFilter) string {
	var b strings.Builder
	b.WriteString(cacheKeyProductList)
	fmt.Fprintf(&b, "q=%s|size=%s|g=%s|sale=%t|sort=%s|l=%d|o=%d", f.Query, f.Size, f.Gender, f.OnSale, f.Sort, f.Limit, f.Offset)
	if f.CategoryID != nil {
		fmt.Fprintf(&b, "|c=%d", *f.CategoryID)
	}
	if f.BrandID != nil {
		fmt.Fprintf(&b, "|b=%d", *f.BrandID)
	}
	if f.MinPrice != nil {
		fmt.Fprintf(&b, "|min=%s", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		fmt.Fprintf(&b, "|max=%s", f.MaxPrice.String())
	}
	if f.IsActive != nil {
		fmt.Fprintf(&b, "|active=%t", *f.IsActive)
	}
	return b.String()
}

type productPage struct {
	products []domain.Product
	total    int64
}

func (uc *CatalogUsecase) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	key := productListKey(filter)
	if val, found := uc.cache.Get(key); found {
		page := val.(productPage)
		return page.products, page.total, nil
	}

	products, total, err := uc.repo.GetProducts(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	uc.cache.Set(key, productPage{products: products, total: total}, uc.cfg.CacheCatalogTTL)
	return products, total, nil
}

func (uc *CatalogUsecase) GetProduct(ctx context.Context, articleNumber string) (*domain.Product, error) {
	articleNumber = utils.NormalizeArticle(articleNumber)
	key := cacheKeyProduct + articleNumber
	if val, found := uc.cache.Get(key); found {
		return val.(*domain.Product), nil
	}

	product, err := uc.repo.GetByArticle(ctx, articleNumber)
	if err != nil {
		return nil, err
	}
	uc.cache.Set(key, product, uc.cfg.CacheProductTTL)
	return product, nil
}

func (uc *CatalogUsecase) CreateProduct(ctx context.Context, product *domain.Product) error {
	product.ArticleNumber = utils.NormalizeArticle(product.ArticleNumber)
	product.IsActive = true
	if err := schema.Validate(product); err != nil {
		return err
	}
	if err := uc.repo.CreateProduct(ctx, product); err != nil {
		return err
	}
	uc.invalidateProduct(product.ArticleNumber)
	return nil
}

func (uc *CatalogUsecase) UpdateProduct(ctx context.Context, product *domain.Product) error {
	product.ArticleNumber = utils.NormalizeArticle(product.ArticleNumber)
	if err := schema.Validate(product); err != nil {
		return err
	}

	existing, err := uc.repo.GetByArticle(ctx, product.ArticleNumber)
	if err != nil {
		return err
	}
	if err := uc.repo.UpdateProduct(ctx, product); err != nil {
		return err
	}
	uc.invalidateProduct(product.ArticleNumber)
	uc.dropImages(ctx, removedImages(existing.Images, product.Images))
	return nil
}

func (uc *CatalogUsecase) DeleteProduct(ctx context.Context, articleNumber string) error {
	articleNumber = utils.NormalizeArticle(articleNumber)
	existing, err := uc.repo.GetByArticle(ctx, articleNumber)
	if err != nil {
		return err
	}
	if err := uc.repo.DeleteProduct(ctx, articleNumber); err != nil {
		return err
	}
	uc.invalidateProduct(articleNumber)
	uc.dropImages(ctx, existing.Images)
	return nil
}

func removedImages(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, u := range after {
		keep[u] = struct{}{}
	}
	var removed []string
	for _, u := range before {
		if _, ok := keep[u]; !ok {
			removed = append(removed, u)
		}
	}
	return removed
}

// dropImages deletes stored objects best-effort.
func (uc *CatalogUsecase) dropImages(ctx context.Context, urls []string) {
	if uc.storage == nil {
		return
	}
	for _, u := range urls {
		if err := uc.storage.DeleteFile(ctx, u); err != nil {
			logger.Warn().Err(err).Str("url", u).Msg("Failed to delete product image")
		}
	}
}

func (uc *CatalogUsecase) invalidateProduct(articleNumber string) {
	uc.cache.Delete(cacheKeyProduct + articleNumber)
	uc.cache.DeletePrefix(cacheKeyProductList)
	uc.cache.Delete(cacheKeySitemap)
}

// InvalidateCatalog drops every cached catalog entry (after imports or checkouts).
func (uc *CatalogUsecase) InvalidateCatalog() {
	uc.cache.DeletePrefix(cacheKeyProductList)
	uc.cache.DeletePrefix(cacheKeyProduct)
	uc.cache.Delete(cacheKeySitemap)
}

// --- Categories ---

func (uc *CatalogUsecase) GetCategories(ctx context.Context) ([]domain.Category, error) {
	if val, found := uc.cache.Get(cacheKeyCategories); found {
		return val.([]domain.Category), nil
	}
	cats, err := uc.repo.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	uc.cache.Set(cacheKeyCategories, cats, uc.cfg.CacheCatalogTTL)
	return cats, nil
}

func (uc *CatalogUsecase) CreateCategory(ctx context.Context, c *domain.Category) error {
	if c.Slug == "" {
		c.Slug = utils.GenerateSlug(c.Name)
	}
	if err := schema.Validate(c); err != nil {
		return err
	}
	if err := uc.repo.CreateCategory(ctx, c); err != nil {
		return err
	}
	uc.invalidateTaxonomy(cacheKeyCategories)
	return nil
}

func (uc *CatalogUsecase) UpdateCategory(ctx context.Context, c *domain.Category) error {
	if c.Slug == "" {
		c.Slug = utils.GenerateSlug(c.Name)
	}
	if err := schema.Validate(c); err != nil {
		return err
	}
	if err := uc.repo.UpdateCategory(ctx, c); err != nil {
		return err
	}
	uc.invalidateTaxonomy(cacheKeyCategories)
	return nil
}

func (uc *CatalogUsecase) DeleteCategory(ctx context.Context, id int32) error {
	if err := uc.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	uc.invalidateTaxonomy(cacheKeyCategories)
	return nil
}

// --- Brands ---

func (uc *CatalogUsecase) GetBrands(ctx context.Context) ([]domain.Brand, error) {
	if val, found := uc.cache.Get(cacheKeyBrands); found {
		return val.([]domain.Brand), nil
	}
	brands, err := uc.repo.GetBrands(ctx)
	if err != nil {
		return nil, err
	}
	if brands == nil {
		brands = []domain.Brand{}
	}
	uc.cache.Set(cacheKeyBrands, brands, uc.cfg.CacheCatalogTTL)
	return brands, nil
}

func (uc *CatalogUsecase) CreateBrand(ctx context.Context, b *domain.Brand) error {
	if b.Slug == "" {
		b.Slug = utils.GenerateSlug(b.Name)
	}
	if err := schema.Validate(b); err != nil {
		return err
	}
	if err := uc.repo.CreateBrand(ctx, b); err != nil {
		return err
	}
	uc.invalidateTaxonomy(cacheKeyBrands)
	return nil
}

func (uc *CatalogUsecase) UpdateBrand(ctx context.Context, b *domain.Brand) error {
	if b.Slug == "" {
		b.Slug = utils.GenerateSlug(b.Name)
	}
	if err := schema.Validate(b); err != nil {
		return err
	}
	if err := uc.repo.UpdateBrand(ctx, b); err != nil {
		return err
	}
	uc.invalidateTaxonomy(cacheKeyBrands)
	return nil
}

func (uc *CatalogUsecase) DeleteBrand(ctx context.Context, id int32) error {
	if err := uc.repo.DeleteBrand(ctx, id); err != nil {
		return err
	}
	uc.invalidateTaxonomy(cacheKeyBrands)
	return nil
}

// Products embed category and brand names, so those caches go too.
func (uc *CatalogUsecase) invalidateTaxonomy(key string) {
	uc.cache.Delete(key)
	uc.InvalidateCatalog()
}
