package v1

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"kinderstep-backend/config"
	"kinderstep-backend/internal/domain"
	memcache "kinderstep-backend/internal/infrastructure/cache"
	"kinderstep-backend/internal/schema"
	"kinderstep-backend/internal/usecase"
	"kinderstep-backend/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type txPassthrough struct{}

func (txPassthrough) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// productStub serves a fixed catalog. Methods the handlers under test do not
// reach are left to the embedded nil interface.
type productStub struct {
	domain.ProductRepository
	products []domain.Product
	cats     []domain.Category
}

func (s *productStub) GetProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	return s.products, int64(len(s.products)), nil
}

func (s *productStub) GetByArticle(ctx context.Context, article string) (*domain.Product, error) {
	for i := range s.products {
		if s.products[i].ArticleNumber == article {
			return &s.products[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *productStub) GetCategories(ctx context.Context) ([]domain.Category, error) {
	return s.cats, nil
}

func (s *productStub) GetBrands(ctx context.Context) ([]domain.Brand, error) {
	return nil, nil
}

type favoriteStore struct {
	mu   sync.Mutex
	sets map[string][]string
}

func (s *favoriteStore) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Favorite
	for _, a := range s.sets[userID] {
		out = append(out, domain.Favorite{ArticleNumber: a})
	}
	return out, nil
}

func (s *favoriteStore) AddFavorite(ctx context.Context, userID, article string) error {
	_, err := s.AddFavorites(ctx, userID, []string{article})
	return err
}

func (s *favoriteStore) AddFavorites(ctx context.Context, userID string, articles []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, a := range articles {
		present := false
		for _, have := range s.sets[userID] {
			if have == a {
				present = true
			}
		}
		if !present {
			s.sets[userID] = append(s.sets[userID], a)
			added++
		}
	}
	return added, nil
}

func (s *favoriteStore) RemoveFavorite(ctx context.Context, userID, article string) error {
	return nil
}

func (s *favoriteStore) CountFavorites(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.sets[userID])), nil
}

type idempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (s *idempotencyStore) Claim(ctx context.Context, userID, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := userID + "|" + scope + "|" + key
	if s.seen[k] {
		return false, nil
	}
	s.seen[k] = true
	return true, nil
}

func testServer(t *testing.T, products *productStub) http.Handler {
	t.Helper()
	utils.SetSecret("handler-test-secret")
	cfg := &config.Config{
		CacheCatalogTTL: time.Minute,
		CacheProductTTL: time.Minute,
		CacheSitemapTTL: time.Minute,
		MaxCartQuantity: 10,
		MaxUploadSizeMB: 1,
	}
	c := memcache.NewMemoryCache(time.Minute, 0)

	catalogUC := usecase.NewCatalogUsecase(products, c, nil, cfg)
	favoriteUC := usecase.NewFavoriteUsecase(
		&favoriteStore{sets: map[string][]string{}},
		products,
		&idempotencyStore{seen: map[string]bool{}},
		txPassthrough{},
	)

	mux := http.NewServeMux()
	RegisterRoutes(mux, Handlers{
		Catalog:      NewCatalogHandler(catalogUC, nil),
		AdminCatalog: NewAdminCatalogHandler(catalogUC),
		Favorite:     NewFavoriteHandler(favoriteUC),
		Upload:       NewUploadHandler(nil, 1),
		Sitemap:      NewSitemapHandler(usecase.NewSitemapUsecase(products, "https://shop.test", c, cfg)),
	})
	return mux
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := utils.GenerateJWT(userID, userID+"@example.com", role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(h http.Handler, method, path, auth string, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func catalog() *productStub {
	return &productStub{
		products: []domain.Product{
			{ArticleNumber: "KS-100", Name: "Sandal", Price: decimal.RequireFromString("40.00"), Discount: 25, IsActive: true,
				Sizes: []domain.SizeStock{{Size: "28", Stock: 3}}, UpdatedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
			{ArticleNumber: "KS-200", Name: "Boot", Price: decimal.RequireFromString("80.00"), IsActive: false},
		},
		cats: []domain.Category{{ID: 1, Name: "Sandals", Slug: "sandals"}},
	}
}

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{&schema.ValidationError{Fields: []schema.FieldError{{Field: "size", Rule: "required"}}}, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{domain.ErrEmptyCart, http.StatusBadRequest},
		{fmt.Errorf("product X: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrInsufficientStock, http.StatusConflict},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeDomainError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}

	rec := httptest.NewRecorder()
	writeDomainError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("secret detail"))
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestPageParams(t *testing.T) {
	page, limit := pageParams(httptest.NewRequest(http.MethodGet, "/?page=-3&limit=1000", nil))
	assert.Equal(t, 1, page)
	assert.Equal(t, maxPageLimit, limit)

	page, limit = pageParams(httptest.NewRequest(http.MethodGet, "/?page=2", nil))
	assert.Equal(t, 2, page)
	assert.Equal(t, defaultPageLimit, limit)
}

func TestListProducts_PageEnvelope(t *testing.T) {
	h := testServer(t, catalog())

	rec := do(h, http.MethodGet, "/api/v1/products?limit=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page domain.Page[domain.Product]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(2), page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestGetProduct_InactiveIsHidden(t *testing.T) {
	h := testServer(t, catalog())

	rec := do(h, http.MethodGet, "/api/v1/product/ks-100", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"articleNumber":"KS-100"`)

	rec = do(h, http.MethodGet, "/api/v1/product/KS-200", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodGet, "/api/v1/product/NOPE", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	h := testServer(t, catalog())

	rec := do(h, http.MethodPost, "/api/v1/products", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/products", bearer(t, "u1", domain.RoleCustomer), `{}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/products", bearer(t, "a1", domain.RoleAdmin), `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoritesBulk_ReplayedKey(t *testing.T) {
	h := testServer(t, catalog())
	auth := bearer(t, "u1", domain.RoleCustomer)
	body := `{"articleNumbers":["ks-100","GONE-1","KS-100"]}`

	rec := do(h, http.MethodPost, "/api/v1/favorites/bulk", auth, body, IdempotencyHeader, "key-1")
	require.Equal(t, http.StatusOK, rec.Code)
	var first domain.BulkFavoritesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, 2, first.Added)
	assert.False(t, first.Replayed)
	assert.Len(t, first.Favorites, 2)

	rec = do(h, http.MethodPost, "/api/v1/favorites/bulk", auth, body, IdempotencyHeader, "key-1")
	require.Equal(t, http.StatusOK, rec.Code)
	var second domain.BulkFavoritesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.True(t, second.Replayed)
	assert.Equal(t, 0, second.Added)
	assert.Len(t, second.Favorites, 2)

	rec = do(h, http.MethodGet, "/api/v1/favorites/count", auth, "")
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())
}

func TestFavoritesAdd_UnknownFieldRejected(t *testing.T) {
	h := testServer(t, catalog())
	rec := do(h, http.MethodPost, "/api/v1/favorites", bearer(t, "u1", domain.RoleCustomer), `{"articleNumber":"KS-100","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_WithoutStorage(t *testing.T) {
	h := testServer(t, catalog())
	rec := do(h, http.MethodPost, "/api/v1/upload", bearer(t, "a1", domain.RoleAdmin), "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSitemap(t *testing.T) {
	h := testServer(t, catalog())
	rec := do(h, http.MethodGet, "/sitemap.xml", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, "<loc>https://shop.test/product/KS-100</loc>")
	assert.Contains(t, body, "<loc>https://shop.test/catalog/sandals</loc>")
}

func TestUploadExcel_RejectsOtherFormats(t *testing.T) {
	h := NewReportHandler(nil, 1)
	var buf bytes.Buffer
	buf.WriteString("--b\r\nContent-Disposition: form-data; name=\"file\"; filename=\"x.csv\"\r\n\r\na,b\r\n--b--\r\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload-excel", &buf)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	rec := httptest.NewRecorder()
	h.UploadExcel(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
