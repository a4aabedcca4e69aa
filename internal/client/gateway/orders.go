package gateway

import (
	"context"
	"net/http"

	"kinderstep-backend/internal/domain"
)

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return callList[domain.Order](ctx, c, request{method: http.MethodGet, path: "/orders", auth: required})
}

// Checkout places an order from the account cart.
func (c *Client) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	return call[domain.Order](ctx, c, request{
		method: http.MethodPost, path: "/orders/checkout", auth: required, body: req, validate: true,
	})
}

// CreateOrder places an order from explicit lines. The credential is sent
// when one is available.
func (c *Client) CreateOrder(ctx context.Context, req domain.GuestOrderRequest) (domain.Order, error) {
	return call[domain.Order](ctx, c, request{
		method: http.MethodPost, path: "/orders", auth: optional, body: req, validate: true,
	})
}

// SyncSession attaches orders placed as a guest to the signed-in account.
func (c *Client) SyncSession(ctx context.Context, sessionID string) (domain.SessionSyncResult, error) {
	return call[domain.SessionSyncResult](ctx, c, request{
		method: http.MethodPatch, path: "/orders/sync", auth: required,
		body: domain.SessionSync{SessionID: sessionID}, validate: true,
	})
}
