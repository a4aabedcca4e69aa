// Package storefront routes cart and favorites operations to whichever side
// is authoritative: the guest store while signed out, the account once a
// valid credential exists.
package storefront

import (
	"context"
	"errors"
	"fmt"

	"kinderstep-backend/internal/client/gateway"
	"kinderstep-backend/internal/client/gueststore"
	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"

	"golang.org/x/sync/errgroup"
)

type Gateway interface {
	GetProduct(ctx context.Context, articleNumber string) (domain.Product, error)

	ListCart(ctx context.Context) ([]domain.OrderItem, error)
	AddCartItem(ctx context.Context, line domain.CartLine) (domain.OrderItem, error)
	UpdateCartItem(ctx context.Context, id string, changes domain.CartLineUpdate) (domain.OrderItem, error)
	DeleteCartItem(ctx context.Context, id string) error
	ClearCart(ctx context.Context) error

	ListFavorites(ctx context.Context) ([]domain.Favorite, error)
	AddFavorite(ctx context.Context, articleNumber string) error
	RemoveFavorite(ctx context.Context, articleNumber string) error
	CountFavorites(ctx context.Context) (int64, error)

	Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error)
	CreateOrder(ctx context.Context, req domain.GuestOrderRequest) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

type Credentials interface {
	Resolve() string
}

type Mode int

const (
	Guest Mode = iota
	Account
)

func (m Mode) String() string {
	if m == Account {
		return "account"
	}
	return "guest"
}

// CartEntry is a cart line with its product. Product is nil and Available is
// false when the article is gone from the catalog.
type CartEntry struct {
	ItemID    string
	Line      domain.CartLine
	Product   *domain.Product
	Available bool
}

type FavoriteEntry struct {
	ArticleNumber string
	Product       *domain.Product
	Available     bool
}

type Badges struct {
	Cart      int
	Favorites int
}

type Service struct {
	api   Gateway
	creds Credentials
	guest *gueststore.GuestState
}

func NewService(api Gateway, creds Credentials, guest *gueststore.GuestState) *Service {
	return &Service{api: api, creds: creds, guest: guest}
}

// Mode resolves the credential, so an expired token switches to Guest.
func (s *Service) Mode() Mode {
	if s.creds.Resolve() == "" {
		return Guest
	}
	return Account
}

// Subscribe registers fn for badge events of both modes.
func (s *Service) Subscribe(fn func(gueststore.Event)) (unsubscribe func()) {
	return s.guest.Bus().Subscribe(fn)
}

func (s *Service) Badges(ctx context.Context) (Badges, error) {
	if s.Mode() == Guest {
		cart, favs := s.guest.Counts()
		return Badges{Cart: cart, Favorites: favs}, nil
	}

	var (
		b     Badges
		items []domain.OrderItem
		favs  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = s.api.ListCart(gctx)
		return err
	})
	g.Go(func() (err error) {
		favs, err = s.api.CountFavorites(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return b, err
	}
	for _, it := range items {
		b.Cart += it.Quantity
	}
	b.Favorites = int(favs)
	return b, nil
}

// notify publishes the account counters after a remote change. Guest
// mutations publish from the guest store itself.
func (s *Service) notify(ctx context.Context, kind gueststore.EventKind) {
	b, err := s.Badges(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not refresh badges")
		return
	}
	s.guest.Bus().Publish(gueststore.Event{Kind: kind, CartCount: b.Cart, FavoritesCount: b.Favorites})
}

// lookup fetches a product, reporting (nil, nil) for articles that no longer exist.
func (s *Service) lookup(ctx context.Context, article string) (*domain.Product, error) {
	p, err := s.api.GetProduct(ctx, article)
	if gateway.IsKind(err, gateway.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) lookupAll(ctx context.Context, articles []string) (map[string]*domain.Product, error) {
	products := make(map[string]*domain.Product, len(articles))
	for _, a := range articles {
		if _, seen := products[a]; seen {
			continue
		}
		p, err := s.lookup(ctx, a)
		if err != nil {
			return nil, err
		}
		products[a] = p
	}
	return products, nil
}

func lineAvailable(p *domain.Product, size string) bool {
	if p == nil || !p.IsActive {
		return false
	}
	stock, ok := p.StockFor(size)
	return ok && stock > 0
}

// Cart

func (s *Service) Cart(ctx context.Context) ([]CartEntry, error) {
	if s.Mode() == Account {
		items, err := s.api.ListCart(ctx)
		if err != nil {
			return nil, err
		}
		entries := make([]CartEntry, 0, len(items))
		for _, it := range items {
			entries = append(entries, CartEntry{
				ItemID:    it.ID,
				Line:      domain.CartLine{ArticleNumber: it.ArticleNumber, Size: it.Size, Quantity: it.Quantity},
				Product:   it.Product,
				Available: it.Available,
			})
		}
		return entries, nil
	}

	lines := s.guest.ReadCart()
	articles := make([]string, len(lines))
	for i, l := range lines {
		articles[i] = l.ArticleNumber
	}
	products, err := s.lookupAll(ctx, articles)
	if err != nil {
		return nil, err
	}
	entries := make([]CartEntry, 0, len(lines))
	for _, l := range lines {
		p := products[l.ArticleNumber]
		entries = append(entries, CartEntry{Line: l, Product: p, Available: lineAvailable(p, l.Size)})
	}
	return entries, nil
}

// AddToCart adds qty pairs of one size. Guest lines are clamped to the stock
// last seen in the catalog; when the catalog cannot be reached the line is
// stored unclamped and the server clamps it at merge time.
func (s *Service) AddToCart(ctx context.Context, article, size string, qty int) (domain.CartLine, error) {
	line := domain.CartLine{ArticleNumber: utils.NormalizeArticle(article), Size: size, Quantity: qty}
	if err := schema.Validate(line); err != nil {
		return line, err
	}

	if s.Mode() == Account {
		item, err := s.api.AddCartItem(ctx, line)
		if err != nil {
			return line, err
		}
		s.notify(ctx, gueststore.CartChanged)
		return domain.CartLine{ArticleNumber: item.ArticleNumber, Size: item.Size, Quantity: item.Quantity}, nil
	}

	stock := gueststore.UnknownStock
	p, err := s.lookup(ctx, line.ArticleNumber)
	switch {
	case gateway.IsKind(err, gateway.KindTransport):
		logger.Debug().Err(err).Str("article", line.ArticleNumber).Msg("Stock unknown, adding unclamped")
	case err != nil:
		return line, err
	case p == nil || !p.IsActive:
		return line, fmt.Errorf("%w: product %s", domain.ErrNotFound, line.ArticleNumber)
	default:
		n, ok := p.StockFor(size)
		if !ok {
			return line, fmt.Errorf("%w: size %s is not offered for %s", domain.ErrInvalidInput, size, line.ArticleNumber)
		}
		stock = n
	}
	return s.guest.AddCartLine(line.ArticleNumber, size, qty, stock)
}

func (s *Service) findItem(ctx context.Context, article, size string) ([]domain.OrderItem, error) {
	items, err := s.api.ListCart(ctx)
	if err != nil {
		return nil, err
	}
	var found []domain.OrderItem
	for _, it := range items {
		if it.ArticleNumber == article && (size == "" || it.Size == size) {
			found = append(found, it)
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s size %s", gueststore.ErrLineNotFound, article, size)
	}
	return found, nil
}

func (s *Service) UpdateCartLine(ctx context.Context, article, size string, changes domain.CartLineUpdate) error {
	article = utils.NormalizeArticle(article)
	if err := schema.Validate(changes); err != nil {
		return err
	}
	if s.Mode() == Guest {
		return s.guest.UpdateCartLine(article, size, changes)
	}

	items, err := s.findItem(ctx, article, size)
	if err != nil {
		return err
	}
	if _, err := s.api.UpdateCartItem(ctx, items[0].ID, changes); err != nil {
		return err
	}
	s.notify(ctx, gueststore.CartChanged)
	return nil
}

// RemoveFromCart removes one size, or every size of the article when size is "".
func (s *Service) RemoveFromCart(ctx context.Context, article, size string) error {
	article = utils.NormalizeArticle(article)
	if s.Mode() == Guest {
		return s.guest.RemoveCartLine(article, size)
	}

	items, err := s.findItem(ctx, article, size)
	if errors.Is(err, gueststore.ErrLineNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := s.api.DeleteCartItem(ctx, it.ID); err != nil && !gateway.IsKind(err, gateway.KindNotFound) {
			return err
		}
	}
	s.notify(ctx, gueststore.CartChanged)
	return nil
}

func (s *Service) ClearCart(ctx context.Context) error {
	if s.Mode() == Guest {
		return s.guest.ClearCart()
	}
	if err := s.api.ClearCart(ctx); err != nil {
		return err
	}
	s.notify(ctx, gueststore.CartChanged)
	return nil
}

// Favorites

func (s *Service) Favorites(ctx context.Context) ([]FavoriteEntry, error) {
	if s.Mode() == Account {
		favs, err := s.api.ListFavorites(ctx)
		if err != nil {
			return nil, err
		}
		entries := make([]FavoriteEntry, 0, len(favs))
		for _, f := range favs {
			entries = append(entries, FavoriteEntry{ArticleNumber: f.ArticleNumber, Product: f.Product, Available: f.Available})
		}
		return entries, nil
	}

	articles := s.guest.ReadFavorites()
	products, err := s.lookupAll(ctx, articles)
	if err != nil {
		return nil, err
	}
	entries := make([]FavoriteEntry, 0, len(articles))
	for _, a := range articles {
		p := products[a]
		entries = append(entries, FavoriteEntry{ArticleNumber: a, Product: p, Available: p != nil && p.IsActive})
	}
	return entries, nil
}

// AddFavorite is idempotent in both modes.
func (s *Service) AddFavorite(ctx context.Context, article string) error {
	article = utils.NormalizeArticle(article)
	if s.Mode() == Guest {
		_, err := s.guest.AddFavorite(article)
		return err
	}
	if err := s.api.AddFavorite(ctx, article); err != nil {
		return err
	}
	s.notify(ctx, gueststore.FavoritesChanged)
	return nil
}

// RemoveFavorite succeeds when the article is already absent.
func (s *Service) RemoveFavorite(ctx context.Context, article string) error {
	article = utils.NormalizeArticle(article)
	if s.Mode() == Guest {
		_, err := s.guest.RemoveFavorite(article)
		return err
	}
	err := s.api.RemoveFavorite(ctx, article)
	if gateway.IsKind(err, gateway.KindNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.notify(ctx, gueststore.FavoritesChanged)
	return nil
}

// Orders

// Checkout places an order from the authoritative cart. A guest order carries
// the device session id so it can be linked to an account later.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	if err := schema.Validate(req); err != nil {
		return domain.Order{}, err
	}

	if s.Mode() == Account {
		order, err := s.api.Checkout(ctx, req)
		if err != nil {
			return order, err
		}
		s.notify(ctx, gueststore.CartChanged)
		return order, nil
	}

	lines := s.guest.ReadCart()
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	sessionID, err := s.guest.SessionID()
	if err != nil {
		return domain.Order{}, fmt.Errorf("session id: %w", err)
	}
	order, err := s.api.CreateOrder(ctx, domain.GuestOrderRequest{CheckoutRequest: req, SessionID: sessionID, Lines: lines})
	if err != nil {
		return order, err
	}
	if err := s.guest.DrainCart(lines); err != nil {
		logger.Error().Err(err).Str("order_id", order.ID).Msg("Order placed but guest cart was not emptied")
	}
	return order, nil
}

// Orders lists the orders of the signed-in account.
func (s *Service) Orders(ctx context.Context) ([]domain.Order, error) {
	if s.Mode() == Guest {
		return nil, fmt.Errorf("list orders: %w", domain.ErrUnauthorized)
	}
	return s.api.ListOrders(ctx)
}
