package gueststore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// UnknownStock tells AddCartLine that the caller could not look up stock.
const UnknownStock = -1

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrOutOfStock      = errors.New("size is out of stock")
	ErrLineNotFound    = errors.New("cart line not found")
)

// GuestState is the only writer of the guest cart and favorites. Every
// effective mutation publishes an Event; no-ops publish nothing.
type GuestState struct {
	store Store
	bus   *Bus

	mu sync.Mutex
}

func New(store Store, bus *Bus) *GuestState {
	if bus == nil {
		bus = NewBus()
	}
	return &GuestState{store: store, bus: bus}
}

func (g *GuestState) Bus() *Bus { return g.bus }

// Store exposes the underlying storage to collaborators sharing the device,
// such as the credential resolver.
func (g *GuestState) Store() Store { return g.store }

// --- reads ---

// ReadCart never fails; missing or corrupt data reads as an empty cart.
func (g *GuestState) ReadCart() []domain.CartLine {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.readCartLocked()
}

// ReadFavorites never fails; missing or corrupt data reads as no favorites.
func (g *GuestState) ReadFavorites() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.readFavoritesLocked()
}

func (g *GuestState) readCartLocked() []domain.CartLine {
	lines := []domain.CartLine{}
	raw, ok := g.store.Get(KeyCart)
	if !ok || raw == "" {
		return lines
	}
	var stored []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logger.Warn().Err(err).Msg("Ignoring corrupt guest cart")
		return lines
	}
	for _, l := range stored {
		// Drop entries a hand edit or older version could have left behind.
		if l.ArticleNumber == "" || l.Size == "" || l.Quantity < 1 {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func (g *GuestState) readFavoritesLocked() []string {
	favs := []string{}
	raw, ok := g.store.Get(KeyFavorites)
	if !ok || raw == "" {
		return favs
	}
	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logger.Warn().Err(err).Msg("Ignoring corrupt guest favorites")
		return favs
	}
	seen := make(map[string]struct{}, len(stored))
	for _, a := range stored {
		if _, dup := seen[a]; dup || a == "" {
			continue
		}
		seen[a] = struct{}{}
		favs = append(favs, a)
	}
	return favs
}

func cartCount(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// Counts returns the badge counters.
func (g *GuestState) Counts() (cart, favorites int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return cartCount(g.readCartLocked()), len(g.readFavoritesLocked())
}

// --- writes ---

func (g *GuestState) writeCartLocked(lines []domain.CartLine) error {
	if len(lines) == 0 {
		return g.store.Delete(KeyCart)
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return g.store.Set(KeyCart, string(raw))
}

func (g *GuestState) writeFavoritesLocked(favs []string) error {
	if len(favs) == 0 {
		return g.store.Delete(KeyFavorites)
	}
	raw, err := json.Marshal(favs)
	if err != nil {
		return err
	}
	return g.store.Set(KeyFavorites, string(raw))
}

// mutate runs fn under the lock and publishes kind when fn reports a change.
func (g *GuestState) mutate(kind EventKind, fn func() (bool, error)) error {
	g.mu.Lock()
	changed, err := fn()
	var e Event
	if changed && err == nil {
		e = Event{
			Kind:           kind,
			CartCount:      cartCount(g.readCartLocked()),
			FavoritesCount: len(g.readFavoritesLocked()),
		}
	}
	g.mu.Unlock()

	if err != nil {
		return err
	}
	if changed {
		g.bus.Publish(e)
	}
	return nil
}

func findLine(lines []domain.CartLine, article, size string) int {
	for i, l := range lines {
		if l.ArticleNumber == article && l.Size == size {
			return i
		}
	}
	return -1
}

// AddCartLine inserts the line or increments an existing one. When stock is
// known the resulting quantity is clamped to it. It returns the line as stored.
func (g *GuestState) AddCartLine(article, size string, qty, stock int) (domain.CartLine, error) {
	article = utils.NormalizeArticle(article)
	line := domain.CartLine{ArticleNumber: article, Size: size, Quantity: qty}
	if qty < 1 {
		return line, ErrInvalidQuantity
	}
	if stock == 0 {
		return line, ErrOutOfStock
	}

	err := g.mutate(CartChanged, func() (bool, error) {
		lines := g.readCartLocked()
		i := findLine(lines, article, size)
		if i < 0 {
			lines = append(lines, line)
			i = len(lines) - 1
		} else {
			lines[i].Quantity += qty
		}
		before := lines[i].Quantity - qty
		if stock > 0 && lines[i].Quantity > stock {
			lines[i].Quantity = stock
		}
		line = lines[i]
		if line.Quantity == before {
			return false, nil
		}
		return true, g.writeCartLocked(lines)
	})
	return line, err
}

// RemoveCartLine removes one size of an article, or every size when size is "".
func (g *GuestState) RemoveCartLine(article, size string) error {
	article = utils.NormalizeArticle(article)
	return g.mutate(CartChanged, func() (bool, error) {
		lines := g.readCartLocked()
		n := len(lines)
		kept := lines[:0]
		for _, l := range lines {
			if l.ArticleNumber == article && (size == "" || l.Size == size) {
				continue
			}
			kept = append(kept, l)
		}
		if len(kept) == n {
			return false, nil
		}
		return true, g.writeCartLocked(kept)
	})
}

// UpdateCartLine changes the quantity and/or size of a line. Moving a line
// onto a size that is already in the cart merges the two.
func (g *GuestState) UpdateCartLine(article, size string, changes domain.CartLineUpdate) error {
	article = utils.NormalizeArticle(article)
	if changes.Quantity != nil && *changes.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return g.mutate(CartChanged, func() (bool, error) {
		lines := g.readCartLocked()
		i := findLine(lines, article, size)
		if i < 0 {
			return false, fmt.Errorf("%w: %s size %s", ErrLineNotFound, article, size)
		}
		updated := lines[i]
		if changes.Quantity != nil {
			updated.Quantity = *changes.Quantity
		}
		if changes.Size != nil && *changes.Size != "" {
			updated.Size = *changes.Size
		}
		if updated == lines[i] {
			return false, nil
		}

		if updated.Size != size {
			if j := findLine(lines, article, updated.Size); j >= 0 {
				lines[j].Quantity += updated.Quantity
				lines = append(lines[:i], lines[i+1:]...)
				return true, g.writeCartLocked(lines)
			}
		}
		lines[i] = updated
		return true, g.writeCartLocked(lines)
	})
}

// AddFavorite reports whether the article was added. Adding a present
// article is a no-op.
func (g *GuestState) AddFavorite(article string) (bool, error) {
	article = utils.NormalizeArticle(article)
	if article == "" {
		return false, fmt.Errorf("%w: empty article number", domain.ErrInvalidInput)
	}
	added := false
	err := g.mutate(FavoritesChanged, func() (bool, error) {
		favs := g.readFavoritesLocked()
		for _, a := range favs {
			if a == article {
				return false, nil
			}
		}
		added = true
		return true, g.writeFavoritesLocked(append(favs, article))
	})
	return added && err == nil, err
}

// RemoveFavorite reports whether the article was present.
func (g *GuestState) RemoveFavorite(article string) (bool, error) {
	article = utils.NormalizeArticle(article)
	removed := false
	err := g.mutate(FavoritesChanged, func() (bool, error) {
		favs := g.readFavoritesLocked()
		kept := make([]string, 0, len(favs))
		for _, a := range favs {
			if a == article {
				removed = true
				continue
			}
			kept = append(kept, a)
		}
		if !removed {
			return false, nil
		}
		return true, g.writeFavoritesLocked(kept)
	})
	return removed && err == nil, err
}

func (g *GuestState) ClearCart() error {
	return g.mutate(CartChanged, func() (bool, error) {
		if len(g.readCartLocked()) == 0 {
			return false, nil
		}
		return true, g.writeCartLocked(nil)
	})
}

func (g *GuestState) ClearFavorites() error {
	return g.mutate(FavoritesChanged, func() (bool, error) {
		if len(g.readFavoritesLocked()) == 0 {
			return false, nil
		}
		return true, g.writeFavoritesLocked(nil)
	})
}

// Clear empties both collections.
func (g *GuestState) Clear() error {
	return g.mutate(Cleared, func() (bool, error) {
		if len(g.readCartLocked()) == 0 && len(g.readFavoritesLocked()) == 0 {
			return false, nil
		}
		if err := g.writeCartLocked(nil); err != nil {
			return false, err
		}
		return true, g.writeFavoritesLocked(nil)
	})
}

// DrainCart removes the submitted quantities from the cart. Lines added while
// the submission was in flight stay behind.
func (g *GuestState) DrainCart(submitted []domain.CartLine) error {
	return g.mutate(CartChanged, func() (bool, error) {
		lines := g.readCartLocked()
		changed := false
		for _, s := range submitted {
			if i := findLine(lines, s.ArticleNumber, s.Size); i >= 0 {
				lines[i].Quantity -= s.Quantity
				changed = true
			}
		}
		if !changed {
			return false, nil
		}
		kept := lines[:0]
		for _, l := range lines {
			if l.Quantity > 0 {
				kept = append(kept, l)
			}
		}
		return true, g.writeCartLocked(kept)
	})
}

// DrainFavorites removes the submitted articles from favorites.
func (g *GuestState) DrainFavorites(submitted []string) error {
	drop := make(map[string]struct{}, len(submitted))
	for _, a := range submitted {
		drop[a] = struct{}{}
	}
	return g.mutate(FavoritesChanged, func() (bool, error) {
		favs := g.readFavoritesLocked()
		kept := make([]string, 0, len(favs))
		for _, a := range favs {
			if _, ok := drop[a]; !ok {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(favs) {
			return false, nil
		}
		return true, g.writeFavoritesLocked(kept)
	})
}

// SessionID returns the device session id, creating it on first use.
func (g *GuestState) SessionID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.store.Get(KeySessionID); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	if err := g.store.Set(KeySessionID, id); err != nil {
		return "", err
	}
	return id, nil
}

type syncKey struct {
	Digest string `json:"digest"`
	Key    string `json:"key"`
}

// SyncKey returns the idempotency key stored under name for a payload digest.
// A different digest replaces the stored key with a fresh one.
func (g *GuestState) SyncKey(name, digest string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if raw, ok := g.store.Get(name); ok {
		var k syncKey
		if err := json.Unmarshal([]byte(raw), &k); err == nil && k.Digest == digest && k.Key != "" {
			return k.Key, nil
		}
	}
	k := syncKey{Digest: digest, Key: uuid.NewString()}
	raw, err := json.Marshal(k)
	if err != nil {
		return "", err
	}
	if err := g.store.Set(name, string(raw)); err != nil {
		return "", err
	}
	return k.Key, nil
}

func (g *GuestState) ForgetSyncKey(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Delete(name)
}

// Follow republishes writes made by other processes as ExternalChange events
// until ctx is done.
func (g *GuestState) Follow(ctx context.Context, w Watcher) error {
	return w.Watch(ctx, func() {
		cart, favs := g.Counts()
		g.bus.Publish(Event{Kind: ExternalChange, CartCount: cart, FavoritesCount: favs})
	})
}
