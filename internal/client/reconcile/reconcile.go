// Package reconcile merges the guest cart and favorites into the account that
// just signed in.
package reconcile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"kinderstep-backend/internal/client/gateway"
	"kinderstep-backend/internal/client/gueststore"
	"kinderstep-backend/internal/domain"
	"kinderstep-backend/pkg/logger"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Gateway is the subset of the API client used for reconciliation.
type Gateway interface {
	BulkCart(ctx context.Context, key string, lines []domain.CartLine) (domain.BulkCartResult, error)
	BulkFavorites(ctx context.Context, key string, articleNumbers []string) (domain.BulkFavoritesResult, error)
	SyncSession(ctx context.Context, sessionID string) (domain.SessionSyncResult, error)
}

type Options struct {
	AttemptTimeout  time.Duration
	MaxTries        int
	MaxElapsed      time.Duration
	InitialInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		AttemptTimeout:  10 * time.Second,
		MaxTries:        4,
		MaxElapsed:      time.Minute,
		InitialInterval: 500 * time.Millisecond,
	}
}

// Collection names a guest collection.
type Collection string

const (
	Cart      Collection = "cart"
	Favorites Collection = "favorites"
)

// Error lists the collections whose merge failed. Their guest data is intact.
type Error struct {
	Cart      error
	Favorites error
}

func (e *Error) Error() string {
	var parts []string
	if e.Cart != nil {
		parts = append(parts, fmt.Sprintf("cart: %v", e.Cart))
	}
	if e.Favorites != nil {
		parts = append(parts, fmt.Sprintf("favorites: %v", e.Favorites))
	}
	return "reconcile failed (" + strings.Join(parts, "; ") + ")"
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Cart != nil {
		errs = append(errs, e.Cart)
	}
	if e.Favorites != nil {
		errs = append(errs, e.Favorites)
	}
	return errs
}

// Failed reports whether the merge of c failed.
func (e *Error) Failed(c Collection) bool {
	switch c {
	case Cart:
		return e.Cart != nil
	case Favorites:
		return e.Favorites != nil
	}
	return false
}

// Report describes a completed run.
type Report struct {
	CartLines      int
	CartMerged     int
	CartSkipped    []domain.SkippedLine
	FavoritesSent  int
	FavoritesAdded int
	Replayed       bool
	LinkedOrders   int64
}

type Service struct {
	api   Gateway
	state *gueststore.GuestState
	opts  Options
	log   zerolog.Logger
}

func NewService(api Gateway, state *gueststore.GuestState, opts Options) *Service {
	def := DefaultOptions()
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = def.AttemptTimeout
	}
	if opts.MaxTries <= 0 {
		opts.MaxTries = def.MaxTries
	}
	if opts.MaxElapsed <= 0 {
		opts.MaxElapsed = def.MaxElapsed
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = def.InitialInterval
	}
	return &Service{api: api, state: state, opts: opts, log: logger.WithComponent("reconcile")}
}

// Run submits each non-empty guest collection once and drains each batch from
// the guest store only after the server accepted it. The two collections succeed
// or fail independently; failures are returned as *Error.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	cart := s.state.ReadCart()
	favs := s.state.ReadFavorites()
	report := &Report{CartLines: len(cart), FavoritesSent: len(favs)}

	var (
		g               errgroup.Group
		cartErr, favErr error
		cartRes         domain.BulkCartResult
		favRes          domain.BulkFavoritesResult
	)
	if len(cart) > 0 {
		g.Go(func() error {
			cartRes, cartErr = s.syncCart(ctx, cart)
			return nil
		})
	}
	if len(favs) > 0 {
		g.Go(func() error {
			favRes, favErr = s.syncFavorites(ctx, favs)
			return nil
		})
	}
	g.Wait()

	report.CartMerged = cartRes.Merged
	report.CartSkipped = cartRes.Skipped
	report.FavoritesAdded = favRes.Added
	report.Replayed = cartRes.Replayed || favRes.Replayed

	s.syncSession(ctx, report)

	if cartErr != nil || favErr != nil {
		s.log.Warn().AnErr("cart", cartErr).AnErr("favorites", favErr).Msg("Guest state kept for the next sign-in")
		return report, &Error{Cart: cartErr, Favorites: favErr}
	}
	s.log.Info().
		Int("cart_lines", report.CartLines).
		Int("cart_merged", report.CartMerged).
		Int("cart_skipped", len(report.CartSkipped)).
		Int("favorites", report.FavoritesSent).
		Bool("replayed", report.Replayed).
		Msg("Guest state merged")
	return report, nil
}

// syncCart submits lines in batches the server accepts. Batches go one at a
// time under a single key slot, so a failed batch keeps its key for the next
// run and every batch accepted before it is already drained.
func (s *Service) syncCart(ctx context.Context, lines []domain.CartLine) (domain.BulkCartResult, error) {
	var total domain.BulkCartResult
	for _, batch := range batches(lines, domain.MaxBulkCartLines) {
		res, err := s.syncCartBatch(ctx, batch)
		if err != nil {
			return total, err
		}
		total.Items = res.Items
		total.Merged += res.Merged
		total.Skipped = append(total.Skipped, res.Skipped...)
		total.Replayed = total.Replayed || res.Replayed
	}
	return total, nil
}

func (s *Service) syncCartBatch(ctx context.Context, lines []domain.CartLine) (domain.BulkCartResult, error) {
	key, err := s.keyFor(gueststore.KeyCartSyncKey, lines)
	if err != nil {
		return domain.BulkCartResult{}, err
	}
	res, err := retry(ctx, s, "cart", func(ctx context.Context) (domain.BulkCartResult, error) {
		return s.api.BulkCart(ctx, key, lines)
	})
	if err != nil {
		return res, err
	}
	if err := s.state.DrainCart(lines); err != nil {
		return res, fmt.Errorf("drain guest cart: %w", err)
	}
	s.forget(gueststore.KeyCartSyncKey)
	return res, nil
}

func (s *Service) syncFavorites(ctx context.Context, articles []string) (domain.BulkFavoritesResult, error) {
	var total domain.BulkFavoritesResult
	for _, batch := range batches(articles, domain.MaxBulkFavorites) {
		res, err := s.syncFavoritesBatch(ctx, batch)
		if err != nil {
			return total, err
		}
		total.Favorites = res.Favorites
		total.Added += res.Added
		total.Replayed = total.Replayed || res.Replayed
	}
	return total, nil
}

func (s *Service) syncFavoritesBatch(ctx context.Context, articles []string) (domain.BulkFavoritesResult, error) {
	key, err := s.keyFor(gueststore.KeyFavoritesSyncKey, articles)
	if err != nil {
		return domain.BulkFavoritesResult{}, err
	}
	res, err := retry(ctx, s, "favorites", func(ctx context.Context) (domain.BulkFavoritesResult, error) {
		return s.api.BulkFavorites(ctx, key, articles)
	})
	if err != nil {
		return res, err
	}
	if err := s.state.DrainFavorites(articles); err != nil {
		return res, fmt.Errorf("drain guest favorites: %w", err)
	}
	s.forget(gueststore.KeyFavoritesSyncKey)
	return res, nil
}

// batches splits items into consecutive chunks of at most size elements.
func batches[T any](items []T, size int) [][]T {
	var out [][]T
	for len(items) > size {
		out = append(out, items[:size:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}

// syncSession links guest orders to the account. Failure is only logged.
func (s *Service) syncSession(ctx context.Context, report *Report) {
	sessionID, ok := s.state.Store().Get(gueststore.KeySessionID)
	if !ok || sessionID == "" {
		return
	}
	actx, cancel := context.WithTimeout(ctx, s.opts.AttemptTimeout)
	defer cancel()
	res, err := s.api.SyncSession(actx, sessionID)
	if err != nil {
		s.log.Warn().Err(err).Msg("Session sync failed")
		return
	}
	report.LinkedOrders = res.LinkedOrders
}

// keyFor returns the idempotency key bound to the digest of payload. The same
// payload keeps its key across attempts and restarts.
func (s *Service) keyFor(name string, payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", name, err)
	}
	sum := sha256.Sum256(raw)
	return s.state.SyncKey(name, hex.EncodeToString(sum[:]))
}

func (s *Service) forget(name string) {
	if err := s.state.ForgetSyncKey(name); err != nil {
		s.log.Warn().Err(err).Str("key", name).Msg("Could not drop sync key")
	}
}

// retry runs op with a per-attempt timeout, retrying transport failures with
// exponential backoff. Any other failure stops immediately.
func retry[T any](ctx context.Context, s *Service, name string, op func(context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.InitialInterval

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		actx, cancel := context.WithTimeout(ctx, s.opts.AttemptTimeout)
		defer cancel()

		res, err := op(actx)
		if err == nil {
			return res, nil
		}
		if !gateway.Retryable(err) || errors.Is(ctx.Err(), context.Canceled) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(s.opts.MaxTries)),
		backoff.WithMaxElapsedTime(s.opts.MaxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.log.Debug().Err(err).Str("collection", name).Int("attempt", attempt).Dur("retry_in", next).Msg("Bulk sync attempt failed")
		}),
	)
}
