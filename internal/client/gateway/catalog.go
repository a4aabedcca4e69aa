package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"kinderstep-backend/internal/domain"
)

// ProductQuery mirrors the catalog query string. Zero values are omitted.
type ProductQuery struct {
	Query      string
	CategoryID int32
	BrandID    int32
	Size       string
	Gender     string
	MinPrice   string
	MaxPrice   string
	OnSale     bool
	Sort       string
	Page       int
	Limit      int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("q", q.Query)
	if q.CategoryID > 0 {
		v.Set("category_id", strconv.Itoa(int(q.CategoryID)))
	}
	if q.BrandID > 0 {
		v.Set("brand_id", strconv.Itoa(int(q.BrandID)))
	}
	set("size", q.Size)
	set("gender", q.Gender)
	set("min_price", q.MinPrice)
	set("max_price", q.MaxPrice)
	if q.OnSale {
		v.Set("on_sale", "true")
	}
	set("sort", q.Sort)
	setPage(v, q.Page, q.Limit)
	return v
}

func setPage(v url.Values, page, limit int) {
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (domain.Page[domain.Product], error) {
	return call[domain.Page[domain.Product]](ctx, c, request{
		method: http.MethodGet, path: "/products", query: q.values(), validate: true,
	})
}

func (c *Client) GetProduct(ctx context.Context, articleNumber string) (domain.Product, error) {
	return call[domain.Product](ctx, c, request{
		method: http.MethodGet, path: "/product/" + escape(articleNumber), validate: true,
	})
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return callList[domain.Category](ctx, c, request{method: http.MethodGet, path: "/categories"})
}

func (c *Client) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return callList[domain.Brand](ctx, c, request{method: http.MethodGet, path: "/brands"})
}

func (c *Client) ListReviews(ctx context.Context, articleNumber string, page, limit int) (domain.Page[domain.Review], error) {
	v := url.Values{}
	setPage(v, page, limit)
	return call[domain.Page[domain.Review]](ctx, c, request{
		method: http.MethodGet, path: "/products/" + escape(articleNumber) + "/reviews", query: v, validate: true,
	})
}

func (c *Client) AddReview(ctx context.Context, articleNumber string, req domain.ReviewRequest) (domain.Review, error) {
	return call[domain.Review](ctx, c, request{
		method: http.MethodPost, path: "/products/" + escape(articleNumber) + "/reviews",
		auth: required, body: req, validate: true,
	})
}

// callList decodes a bare JSON array and validates each element.
func callList[T any](ctx context.Context, c *Client, req request) ([]T, error) {
	req.validate = true
	return call[[]T](ctx, c, req)
}
