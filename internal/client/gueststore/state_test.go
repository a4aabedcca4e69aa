package gueststore

import (
	"fmt"
	"math/rand"
	"testing"

	"kinderstep-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newState() (*GuestState, *[]Event) {
	bus := NewBus()
	var events []Event
	bus.Subscribe(func(e Event) { events = append(events, e) })
	return New(NewMemoryStore(), bus), &events
}

func ptr[T any](v T) *T { return &v }

func TestAddCartLine_InsertsAndIncrements(t *testing.T) {
	g, events := newState()

	line, err := g.AddCartLine("a123", "36", 2, UnknownStock)
	require.NoError(t, err)
	assert.Equal(t, domain.CartLine{ArticleNumber: "A123", Size: "36", Quantity: 2}, line)

	line, err = g.AddCartLine("A123", "36", 1, UnknownStock)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	assert.Equal(t, []domain.CartLine{{ArticleNumber: "A123", Size: "36", Quantity: 3}}, g.ReadCart())
	require.Len(t, *events, 2)
	assert.Equal(t, Event{Kind: CartChanged, CartCount: 3}, (*events)[1])
}

func TestAddCartLine_StockRules(t *testing.T) {
	g, events := newState()

	_, err := g.AddCartLine("A1", "30", 0, UnknownStock)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = g.AddCartLine("A1", "30", 1, 0)
	assert.ErrorIs(t, err, ErrOutOfStock)

	line, err := g.AddCartLine("A1", "30", 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	// Already at stock: nothing changes and nothing is published.
	line, err = g.AddCartLine("A1", "30", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
	assert.Len(t, *events, 1)
}

func TestRemoveCartLine(t *testing.T) {
	g, events := newState()
	_, _ = g.AddCartLine("A1", "30", 1, UnknownStock)
	_, _ = g.AddCartLine("A1", "31", 1, UnknownStock)
	_, _ = g.AddCartLine("B2", "30", 1, UnknownStock)

	require.NoError(t, g.RemoveCartLine("A1", "31"))
	assert.Len(t, g.ReadCart(), 2)

	require.NoError(t, g.RemoveCartLine("a1", ""))
	assert.Equal(t, []domain.CartLine{{ArticleNumber: "B2", Size: "30", Quantity: 1}}, g.ReadCart())

	n := len(*events)
	require.NoError(t, g.RemoveCartLine("ZZZ", ""))
	assert.Len(t, *events, n, "removing a missing line publishes nothing")
}

func TestUpdateCartLine(t *testing.T) {
	g, _ := newState()
	_, _ = g.AddCartLine("A1", "30", 2, UnknownStock)
	_, _ = g.AddCartLine("A1", "31", 1, UnknownStock)

	require.NoError(t, g.UpdateCartLine("A1", "30", domain.CartLineUpdate{Quantity: ptr(4)}))
	assert.Equal(t, 4, g.ReadCart()[0].Quantity)

	// Moving onto an existing size merges the lines.
	require.NoError(t, g.UpdateCartLine("A1", "30", domain.CartLineUpdate{Size: ptr("31")}))
	assert.Equal(t, []domain.CartLine{{ArticleNumber: "A1", Size: "31", Quantity: 5}}, g.ReadCart())

	err := g.UpdateCartLine("A1", "40", domain.CartLineUpdate{Quantity: ptr(1)})
	assert.ErrorIs(t, err, ErrLineNotFound)

	err = g.UpdateCartLine("A1", "31", domain.CartLineUpdate{Quantity: ptr(0)})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

// The cart always reflects the net effect of a sequence of adds and removes.
func TestCart_NetEffectOfRandomSequence(t *testing.T) {
	g, _ := newState()
	rng := rand.New(rand.NewSource(42))
	model := map[[2]string]int{}

	articles := []string{"A1", "B2", "C3"}
	sizes := []string{"28", "29"}
	for i := 0; i < 500; i++ {
		a := articles[rng.Intn(len(articles))]
		s := sizes[rng.Intn(len(sizes))]
		if rng.Intn(3) == 0 {
			require.NoError(t, g.RemoveCartLine(a, s))
			delete(model, [2]string{a, s})
			continue
		}
		q := rng.Intn(3) + 1
		_, err := g.AddCartLine(a, s, q, UnknownStock)
		require.NoError(t, err)
		model[[2]string{a, s}] += q
	}

	got := map[[2]string]int{}
	for _, l := range g.ReadCart() {
		key := [2]string{l.ArticleNumber, l.Size}
		_, dup := got[key]
		require.False(t, dup, "duplicate line %v", key)
		got[key] = l.Quantity
	}
	assert.Equal(t, model, got)
}

func TestAddFavorite_Idempotent(t *testing.T) {
	g, events := newState()

	added, err := g.AddFavorite("A123")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = g.AddFavorite("a123")
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, []string{"A123"}, g.ReadFavorites())
	require.Len(t, *events, 1, "the badge must not move twice")
	assert.Equal(t, 1, (*events)[0].FavoritesCount)

	removed, err := g.RemoveFavorite("A123")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = g.RemoveFavorite("A123")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, *events, 2)
}

func TestReads_TolerateCorruptStorage(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyCart, "{not json"))
	require.NoError(t, store.Set(KeyFavorites, `["A1","A1",""]`))
	g := New(store, nil)

	assert.Empty(t, g.ReadCart())
	assert.NotNil(t, g.ReadCart())
	assert.Equal(t, []string{"A1"}, g.ReadFavorites())

	// A corrupt cart is overwritten by the next add.
	_, err := g.AddCartLine("B1", "30", 1, UnknownStock)
	require.NoError(t, err)
	assert.Len(t, g.ReadCart(), 1)
}

func TestClear(t *testing.T) {
	g, events := newState()
	require.NoError(t, g.Clear())
	assert.Empty(t, *events)

	_, _ = g.AddCartLine("A1", "30", 1, UnknownStock)
	_, _ = g.AddFavorite("A1")
	require.NoError(t, g.Clear())
	assert.Empty(t, g.ReadCart())
	assert.Empty(t, g.ReadFavorites())
	assert.Equal(t, Event{Kind: Cleared}, (*events)[len(*events)-1])
}

func TestDrain_KeepsLinesAddedMeanwhile(t *testing.T) {
	g, _ := newState()
	_, _ = g.AddCartLine("A1", "30", 2, UnknownStock)
	submitted := g.ReadCart()
	_, _ = g.AddCartLine("A1", "30", 1, UnknownStock)
	_, _ = g.AddCartLine("B1", "30", 1, UnknownStock)

	require.NoError(t, g.DrainCart(submitted))
	assert.Equal(t, []domain.CartLine{
		{ArticleNumber: "A1", Size: "30", Quantity: 1},
		{ArticleNumber: "B1", Size: "30", Quantity: 1},
	}, g.ReadCart())

	_, _ = g.AddFavorite("A1")
	_, _ = g.AddFavorite("B1")
	require.NoError(t, g.DrainFavorites([]string{"A1"}))
	assert.Equal(t, []string{"B1"}, g.ReadFavorites())
}

func TestSessionID_Stable(t *testing.T) {
	g, _ := newState()
	first, err := g.SessionID()
	require.NoError(t, err)
	second, err := g.SessionID()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 36)
}

func TestSyncKey_BoundToDigest(t *testing.T) {
	g, _ := newState()
	k1, err := g.SyncKey(KeyCartSyncKey, "digest-1")
	require.NoError(t, err)
	k2, err := g.SyncKey(KeyCartSyncKey, "digest-1")
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	k3, err := g.SyncKey(KeyCartSyncKey, "digest-2")
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	require.NoError(t, g.ForgetSyncKey(KeyCartSyncKey))
	k4, err := g.SyncKey(KeyCartSyncKey, "digest-2")
	require.NoError(t, err)
	assert.NotEqual(t, k3, k4)
}

func TestBus_OrderAndUnsubscribe(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(func(e Event) { got = append(got, "first:"+string(e.Kind)) })
	unsub := bus.Subscribe(func(e Event) { got = append(got, "second:"+string(e.Kind)) })

	bus.Publish(Event{Kind: CartChanged})
	unsub()
	unsub()
	bus.Publish(Event{Kind: FavoritesChanged})

	assert.Equal(t, []string{"first:cart", "second:cart", "first:favorites"}, got)
}

func ExampleGuestState_AddFavorite() {
	g := New(NewMemoryStore(), nil)
	g.Bus().Subscribe(func(e Event) { fmt.Println("favorites:", e.FavoritesCount) })
	_, _ = g.AddFavorite("A123")
	_, _ = g.AddFavorite("A123")
	// Output: favorites: 1
}
