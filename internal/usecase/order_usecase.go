package usecase

import (
	"context"
	"fmt"
	"strings"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	cartRepo    domain.CartRepository
	txManager   domain.TransactionManager
	catalog     *CatalogUsecase // optional; stock changes invalidate its cache
}

func NewOrderUsecase(repo domain.OrderRepository, pRepo domain.ProductRepository, cartRepo domain.CartRepository, txManager domain.TransactionManager, catalog *CatalogUsecase) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   repo,
		productRepo: pRepo,
		cartRepo:    cartRepo,
		txManager:   txManager,
		catalog:     catalog,
	}
}

// statusRank orders the fulfilment pipeline; transitions only move forward.
var statusRank = map[string]int{
	domain.OrderStatusNew:       0,
	domain.OrderStatusConfirmed: 1,
	domain.OrderStatusPaid:      2,
	domain.OrderStatusShipped:   3,
	domain.OrderStatusDelivered: 4,
	domain.OrderStatusCompleted: 5,
}

// CanTransition reports whether an order may move from one status to another.
// Any non-terminal order may be cancelled.
func CanTransition(from, to string) bool {
	if from == domain.OrderStatusCancelled || from == domain.OrderStatusCompleted {
		return false
	}
	if to == domain.OrderStatusCancelled {
		return true
	}
	fromRank, ok1 := statusRank[from]
	toRank, ok2 := statusRank[to]
	return ok1 && ok2 && toRank > fromRank
}

func (u *OrderUsecase) ListMine(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := u.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// Checkout turns the account cart into an order and empties the cart.
func (u *OrderUsecase) Checkout(ctx context.Context, userID string, req domain.CheckoutRequest) (*domain.Order, error) {
	if err := schema.Validate(req); err != nil {
		return nil, err
	}

	var order *domain.Order
	err := u.txManager.Do(ctx, func(ctx context.Context) error {
		items, err := u.cartRepo.ListItems(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrEmptyCart
		}
		lines := make([]domain.CartLine, len(items))
		for i, it := range items {
			lines[i] = domain.CartLine{ArticleNumber: it.ArticleNumber, Size: it.Size, Quantity: it.Quantity}
		}

		order, err = u.placeOrder(ctx, &userID, "", req, lines)
		if err != nil {
			return err
		}
		return u.cartRepo.ClearItems(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	u.afterOrder(ctx, order)
	return order, nil
}

// CreateOrder places an order from explicit lines. userID is nil for guests,
// whose orders are tied to the device session id instead.
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID *string, req domain.GuestOrderRequest) (*domain.Order, error) {
	for i := range req.Lines {
		req.Lines[i].ArticleNumber = utils.NormalizeArticle(req.Lines[i].ArticleNumber)
	}
	if err := schema.Validate(req); err != nil {
		return nil, err
	}
	if userID == nil && req.SessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required for guest orders", domain.ErrInvalidInput)
	}

	var order *domain.Order
	err := u.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = u.placeOrder(ctx, userID, req.SessionID, req.CheckoutRequest, mergeLines(req.Lines))
		return err
	})
	if err != nil {
		return nil, err
	}
	u.afterOrder(ctx, order)
	return order, nil
}

// placeOrder must run inside a transaction: it decrements stock line by line.
func (u *OrderUsecase) placeOrder(ctx context.Context, userID *string, sessionID string, req domain.CheckoutRequest, lines []domain.CartLine) (*domain.Order, error) {
	articles := make([]string, 0, len(lines))
	for _, l := range lines {
		articles = append(articles, l.ArticleNumber)
	}
	products, err := u.productRepo.GetByArticles(ctx, dedupe(articles))
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:        userID,
		SessionID:     sessionID,
		Status:        domain.OrderStatusNew,
		Delivery:      req.Delivery,
		PaymentMethod: req.PaymentMethod,
		Comment:       strings.TrimSpace(req.Comment),
		Total:         decimal.Zero,
	}
	for _, l := range lines {
		product, ok := products[l.ArticleNumber]
		if !ok || !product.IsActive {
			return nil, fmt.Errorf("product %s: %w", l.ArticleNumber, domain.ErrNotFound)
		}
		if err := u.productRepo.DecrementStock(ctx, l.ArticleNumber, l.Size, l.Quantity); err != nil {
			return nil, err
		}
		unit := product.EffectivePrice()
		order.Lines = append(order.Lines, domain.OrderLine{
			ArticleNumber: l.ArticleNumber,
			Size:          l.Size,
			Quantity:      l.Quantity,
			UnitPrice:     unit,
			Discount:      product.Discount,
			Name:          product.Name,
		})
		order.Total = order.Total.Add(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	if err := u.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	if err := u.orderRepo.CreateOrderHistory(ctx, &domain.OrderHistory{
		OrderID:   order.ID,
		NewStatus: domain.OrderStatusNew,
		CreatedBy: userID,
	}); err != nil {
		return nil, err
	}
	return order, nil
}

func (u *OrderUsecase) afterOrder(ctx context.Context, order *domain.Order) {
	if u.catalog != nil {
		u.catalog.InvalidateCatalog()
	}
	logger.WithContext(ctx).Info().
		Str("order_id", order.ID).
		Int("lines", len(order.Lines)).
		Str("total", order.Total.StringFixed(2)).
		Bool("guest", order.UserID == nil).
		Msg("Order placed")
}

// SyncSession attaches guest orders of a device session to the account.
func (u *OrderUsecase) SyncSession(ctx context.Context, userID string, req domain.SessionSync) (*domain.SessionSyncResult, error) {
	if err := schema.Validate(req); err != nil {
		return nil, err
	}
	n, err := u.orderRepo.LinkSession(ctx, req.SessionID, userID)
	if err != nil {
		return nil, err
	}
	return &domain.SessionSyncResult{LinkedOrders: n}, nil
}

// --- Admin Methods ---

func (u *OrderUsecase) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	if filter.Status != "" && !domain.IsValidOrderStatus(filter.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	orders, total, err := u.orderRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, total, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return u.orderRepo.GetByID(ctx, id)
}

func (u *OrderUsecase) UpdateStatus(ctx context.Context, id string, req domain.StatusUpdate, adminID string) (*domain.Order, error) {
	if err := schema.Validate(req); err != nil {
		return nil, err
	}

	var order *domain.Order
	err := u.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = u.orderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(order.Status, req.Status) {
			return fmt.Errorf("%w: cannot move order from %s to %s", domain.ErrInvalidInput, order.Status, req.Status)
		}
		if err := u.orderRepo.UpdateStatus(ctx, id, req.Status); err != nil {
			return err
		}

		prev := order.Status
		history := &domain.OrderHistory{
			OrderID:        id,
			PreviousStatus: &prev,
			NewStatus:      req.Status,
		}
		if req.Note != "" {
			history.Note = &req.Note
		}
		if adminID != "" {
			history.CreatedBy = &adminID
		}
		order.Status = req.Status
		return u.orderRepo.CreateOrderHistory(ctx, history)
	})
	if err != nil {
		return nil, err
	}
	logger.WithContext(ctx).Info().Str("order_id", id).Str("status", req.Status).Msg("Order status updated")
	return order, nil
}

func (u *OrderUsecase) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	if _, err := u.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	history, err := u.orderRepo.GetOrderHistory(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.OrderHistory{}
	}
	return history, nil
}
