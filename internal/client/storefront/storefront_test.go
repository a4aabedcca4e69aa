package storefront

import (
	"context"
	"testing"

	"kinderstep-backend/internal/client/gateway"
	"kinderstep-backend/internal/client/gueststore"
	"kinderstep-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenSource struct{ token string }

func (t *tokenSource) Resolve() string { return t.token }

// fakeAPI keeps an account cart and favorites in memory.
type fakeAPI struct {
	products     map[string]domain.Product
	productErr   error
	items        []domain.OrderItem
	favorites    []string
	guestOrders  []domain.GuestOrderRequest
	checkouts    int
	removeMissed bool
}

func newFakeAPI(products ...domain.Product) *fakeAPI {
	f := &fakeAPI{products: map[string]domain.Product{}}
	for _, p := range products {
		f.products[p.ArticleNumber] = p
	}
	return f
}

var errNotFound = &gateway.Error{Kind: gateway.KindNotFound, Status: 404, Message: "not found"}

func (f *fakeAPI) GetProduct(_ context.Context, article string) (domain.Product, error) {
	if f.productErr != nil {
		return domain.Product{}, f.productErr
	}
	p, ok := f.products[article]
	if !ok {
		return domain.Product{}, errNotFound
	}
	return p, nil
}

func (f *fakeAPI) ListCart(context.Context) ([]domain.OrderItem, error) { return f.items, nil }

func (f *fakeAPI) AddCartItem(_ context.Context, line domain.CartLine) (domain.OrderItem, error) {
	item := domain.OrderItem{ID: "i-" + line.ArticleNumber + "-" + line.Size, ArticleNumber: line.ArticleNumber, Size: line.Size, Quantity: line.Quantity}
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeAPI) UpdateCartItem(_ context.Context, id string, changes domain.CartLineUpdate) (domain.OrderItem, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			if changes.Quantity != nil {
				f.items[i].Quantity = *changes.Quantity
			}
			return f.items[i], nil
		}
	}
	return domain.OrderItem{}, errNotFound
}

func (f *fakeAPI) DeleteCartItem(_ context.Context, id string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (f *fakeAPI) ClearCart(context.Context) error {
	f.items = nil
	return nil
}

func (f *fakeAPI) ListFavorites(context.Context) ([]domain.Favorite, error) {
	out := make([]domain.Favorite, 0, len(f.favorites))
	for _, a := range f.favorites {
		out = append(out, domain.Favorite{ArticleNumber: a})
	}
	return out, nil
}

func (f *fakeAPI) AddFavorite(_ context.Context, article string) error {
	for _, a := range f.favorites {
		if a == article {
			return nil
		}
	}
	f.favorites = append(f.favorites, article)
	return nil
}

func (f *fakeAPI) RemoveFavorite(_ context.Context, article string) error {
	for i, a := range f.favorites {
		if a == article {
			f.favorites = append(f.favorites[:i], f.favorites[i+1:]...)
			return nil
		}
	}
	f.removeMissed = true
	return errNotFound
}

func (f *fakeAPI) CountFavorites(context.Context) (int64, error) { return int64(len(f.favorites)), nil }

func (f *fakeAPI) Checkout(context.Context, domain.CheckoutRequest) (domain.Order, error) {
	f.checkouts++
	f.items = nil
	return domain.Order{ID: "o-account", Status: domain.OrderStatusNew}, nil
}

func (f *fakeAPI) CreateOrder(_ context.Context, req domain.GuestOrderRequest) (domain.Order, error) {
	f.guestOrders = append(f.guestOrders, req)
	return domain.Order{ID: "o-guest", Status: domain.OrderStatusNew, SessionID: req.SessionID}, nil
}

func (f *fakeAPI) ListOrders(context.Context) ([]domain.Order, error) {
	return []domain.Order{{ID: "o-account"}}, nil
}

func boot(article string, sizes ...domain.SizeStock) domain.Product {
	return domain.Product{ArticleNumber: article, Name: "Boot " + article, Price: decimal.NewFromInt(50), IsActive: true, Sizes: sizes}
}

func newService(api *fakeAPI, token string) (*Service, *gueststore.GuestState, *tokenSource) {
	guest := gueststore.New(gueststore.NewMemoryStore(), nil)
	creds := &tokenSource{token: token}
	return NewService(api, creds, guest), guest, creds
}

func validCheckout() domain.CheckoutRequest {
	return domain.CheckoutRequest{
		Delivery:      domain.Delivery{Recipient: "Olena", Phone: "+380501234567", City: "Lviv", Method: "pickup"},
		PaymentMethod: "cash",
	}
}

func TestMode_FollowsCredential(t *testing.T) {
	svc, _, creds := newService(newFakeAPI(), "")
	assert.Equal(t, Guest, svc.Mode())
	creds.token = "tok"
	assert.Equal(t, Account, svc.Mode())
}

func TestGuestAddToCart_ClampsToStock(t *testing.T) {
	api := newFakeAPI(boot("A123", domain.SizeStock{Size: "36", Stock: 3}))
	svc, guest, _ := newService(api, "")

	var events []gueststore.Event
	svc.Subscribe(func(e gueststore.Event) { events = append(events, e) })

	line, err := svc.AddToCart(context.Background(), "a123", "36", 5)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, []domain.CartLine{{ArticleNumber: "A123", Size: "36", Quantity: 3}}, guest.ReadCart())
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].CartCount)
}

func TestGuestAddToCart_Rejections(t *testing.T) {
	api := newFakeAPI(boot("A123", domain.SizeStock{Size: "36", Stock: 0}))
	svc, guest, _ := newService(api, "")
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "A123", "36", 1)
	assert.ErrorIs(t, err, gueststore.ErrOutOfStock)

	_, err = svc.AddToCart(ctx, "A123", "40", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AddToCart(ctx, "Z999", "36", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.AddToCart(ctx, "A123", "36", 0)
	assert.Error(t, err)
	assert.Empty(t, guest.ReadCart())
}

func TestGuestAddToCart_OfflineStoresUnclamped(t *testing.T) {
	api := newFakeAPI()
	api.productErr = &gateway.Error{Kind: gateway.KindTransport, Message: "network error"}
	svc, guest, _ := newService(api, "")

	_, err := svc.AddToCart(context.Background(), "A123", "36", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, guest.ReadCart()[0].Quantity)
}

func TestGuestCart_DanglingLineIsUnavailable(t *testing.T) {
	api := newFakeAPI(boot("A123", domain.SizeStock{Size: "36", Stock: 2}))
	svc, guest, _ := newService(api, "")
	_, err := guest.AddCartLine("A123", "36", 1, gueststore.UnknownStock)
	require.NoError(t, err)
	_, err = guest.AddCartLine("GONE1", "30", 1, gueststore.UnknownStock)
	require.NoError(t, err)

	entries, err := svc.Cart(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Available)
	assert.False(t, entries[1].Available)
	assert.Nil(t, entries[1].Product)
}

func TestGuestFavorite_TwiceCountsOnce(t *testing.T) {
	svc, _, _ := newService(newFakeAPI(), "")
	var events int
	svc.Subscribe(func(gueststore.Event) { events++ })

	require.NoError(t, svc.AddFavorite(context.Background(), "A123"))
	require.NoError(t, svc.AddFavorite(context.Background(), "A123"))

	b, err := svc.Badges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, b.Favorites)
	assert.Equal(t, 1, events)
}

func TestAccountFavorites_PublishServerCounts(t *testing.T) {
	api := newFakeAPI()
	api.items = []domain.OrderItem{{ID: "i1", ArticleNumber: "B456", Size: "30", Quantity: 2}}
	svc, guest, _ := newService(api, "tok")
	var got []gueststore.Event
	svc.Subscribe(func(e gueststore.Event) { got = append(got, e) })

	require.NoError(t, svc.AddFavorite(context.Background(), "A123"))
	assert.Empty(t, guest.ReadFavorites())
	assert.Equal(t, []string{"A123"}, api.favorites)
	require.Len(t, got, 1)
	assert.Equal(t, gueststore.Event{Kind: gueststore.FavoritesChanged, CartCount: 2, FavoritesCount: 1}, got[0])
}

func TestAccountRemoveFavorite_AbsentIsSuccess(t *testing.T) {
	api := newFakeAPI()
	svc, _, _ := newService(api, "tok")

	require.NoError(t, svc.RemoveFavorite(context.Background(), "A123"))
	assert.True(t, api.removeMissed)
}

func TestAccountCart_UpdateAndRemoveBySize(t *testing.T) {
	api := newFakeAPI()
	api.items = []domain.OrderItem{
		{ID: "i1", ArticleNumber: "A123", Size: "30", Quantity: 1},
		{ID: "i2", ArticleNumber: "A123", Size: "31", Quantity: 1},
	}
	svc, _, _ := newService(api, "tok")
	ctx := context.Background()

	qty := 3
	require.NoError(t, svc.UpdateCartLine(ctx, "A123", "31", domain.CartLineUpdate{Quantity: &qty}))
	assert.Equal(t, 3, api.items[1].Quantity)

	err := svc.UpdateCartLine(ctx, "A123", "40", domain.CartLineUpdate{Quantity: &qty})
	assert.ErrorIs(t, err, gueststore.ErrLineNotFound)

	require.NoError(t, svc.RemoveFromCart(ctx, "A123", ""))
	assert.Empty(t, api.items)
}

func TestGuestCheckout_SendsLinesAndSession(t *testing.T) {
	api := newFakeAPI()
	svc, guest, _ := newService(api, "")
	_, err := guest.AddCartLine("A123", "36", 2, gueststore.UnknownStock)
	require.NoError(t, err)

	order, err := svc.Checkout(context.Background(), validCheckout())
	require.NoError(t, err)
	assert.Equal(t, "o-guest", order.ID)

	require.Len(t, api.guestOrders, 1)
	sessionID, err := guest.SessionID()
	require.NoError(t, err)
	assert.Equal(t, sessionID, api.guestOrders[0].SessionID)
	assert.Equal(t, []domain.CartLine{{ArticleNumber: "A123", Size: "36", Quantity: 2}}, api.guestOrders[0].Lines)
	assert.Empty(t, guest.ReadCart())
}

func TestCheckout_EmptyGuestCart(t *testing.T) {
	svc, _, _ := newService(newFakeAPI(), "")
	_, err := svc.Checkout(context.Background(), validCheckout())
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestAccountCheckout_UsesAccountCart(t *testing.T) {
	api := newFakeAPI()
	svc, _, _ := newService(api, "tok")

	order, err := svc.Checkout(context.Background(), validCheckout())
	require.NoError(t, err)
	assert.Equal(t, "o-account", order.ID)
	assert.Equal(t, 1, api.checkouts)
	assert.Empty(t, api.guestOrders)
}

func TestOrders_RequireAccount(t *testing.T) {
	svc, _, _ := newService(newFakeAPI(), "")
	_, err := svc.Orders(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
