package gateway

import (
	"context"
	"net/http"

	"kinderstep-backend/internal/domain"
)

func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResult, error) {
	return call[domain.AuthResult](ctx, c, request{
		method: http.MethodPost, path: "/auth/register", body: req, validate: true,
	})
}

func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResult, error) {
	return call[domain.AuthResult](ctx, c, request{
		method: http.MethodPost, path: "/auth/login", body: req, validate: true,
	})
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	return call[domain.User](ctx, c, request{
		method: http.MethodGet, path: "/user", auth: required, validate: true,
	})
}

func (c *Client) UpdateProfile(ctx context.Context, req domain.ProfileUpdate) (domain.User, error) {
	return call[domain.User](ctx, c, request{
		method: http.MethodPut, path: "/user", auth: required, body: req, validate: true,
	})
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	return exec(ctx, c, request{method: http.MethodDelete, path: "/user", auth: required})
}

// Favorites

func (c *Client) ListFavorites(ctx context.Context) ([]domain.Favorite, error) {
	return callList[domain.Favorite](ctx, c, request{method: http.MethodGet, path: "/favorites", auth: required})
}

func (c *Client) AddFavorite(ctx context.Context, articleNumber string) error {
	return exec(ctx, c, request{
		method: http.MethodPost, path: "/favorites", auth: required,
		body: domain.FavoriteRequest{ArticleNumber: articleNumber},
	})
}

func (c *Client) RemoveFavorite(ctx context.Context, articleNumber string) error {
	return exec(ctx, c, request{
		method: http.MethodDelete, path: "/favorites/" + escape(articleNumber), auth: required,
	})
}

func (c *Client) CountFavorites(ctx context.Context) (int64, error) {
	n, err := call[domain.Count](ctx, c, request{
		method: http.MethodGet, path: "/favorites/count", auth: required, validate: true,
	})
	return n.Count, err
}

// BulkFavorites submits a set of articles. Repeating a key replays the
// original outcome instead of applying the payload again.
func (c *Client) BulkFavorites(ctx context.Context, key string, articleNumbers []string) (domain.BulkFavoritesResult, error) {
	return call[domain.BulkFavoritesResult](ctx, c, request{
		method: http.MethodPost, path: "/favorites/bulk", auth: required, idemKey: key,
		body: domain.BulkFavoritesRequest{ArticleNumbers: articleNumbers}, validate: true,
	})
}

// Account cart

func (c *Client) ListCart(ctx context.Context) ([]domain.OrderItem, error) {
	return callList[domain.OrderItem](ctx, c, request{method: http.MethodGet, path: "/order-items", auth: required})
}

func (c *Client) AddCartItem(ctx context.Context, line domain.CartLine) (domain.OrderItem, error) {
	return call[domain.OrderItem](ctx, c, request{
		method: http.MethodPost, path: "/order-items", auth: required, body: line, validate: true,
	})
}

func (c *Client) UpdateCartItem(ctx context.Context, id string, changes domain.CartLineUpdate) (domain.OrderItem, error) {
	return call[domain.OrderItem](ctx, c, request{
		method: http.MethodPut, path: "/order-items/" + escape(id), auth: required, body: changes, validate: true,
	})
}

func (c *Client) DeleteCartItem(ctx context.Context, id string) error {
	return exec(ctx, c, request{method: http.MethodDelete, path: "/order-items/" + escape(id), auth: required})
}

func (c *Client) ClearCart(ctx context.Context) error {
	return exec(ctx, c, request{method: http.MethodDelete, path: "/order-items", auth: required})
}

// BulkCart merges lines into the account cart under an idempotency key.
func (c *Client) BulkCart(ctx context.Context, key string, lines []domain.CartLine) (domain.BulkCartResult, error) {
	return call[domain.BulkCartResult](ctx, c, request{
		method: http.MethodPost, path: "/order-items/bulk", auth: required, idemKey: key,
		body: domain.BulkCartRequest{Items: lines}, validate: true,
	})
}
