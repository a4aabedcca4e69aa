// Package session signs the storefront client in and out.
package session

import (
	"context"
	"fmt"

	"kinderstep-backend/internal/client/credential"
	"kinderstep-backend/internal/client/gueststore"
	"kinderstep-backend/internal/client/reconcile"
	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"
	"kinderstep-backend/pkg/logger"
)

type AuthGateway interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResult, error)
	Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResult, error)
}

// Merger moves guest state into the signed-in account.
type Merger interface {
	Run(ctx context.Context) (*reconcile.Report, error)
}

// Result of a successful sign-in. MergeErr is set when the guest state could
// not be merged; the sign-in itself still succeeded and the guest state is
// kept for the next attempt.
type Result struct {
	User     domain.User
	Merge    *reconcile.Report
	MergeErr error
}

type Service struct {
	api   AuthGateway
	creds *credential.Resolver
	merge Merger
	bus   *gueststore.Bus
}

func NewService(api AuthGateway, creds *credential.Resolver, merge Merger, bus *gueststore.Bus) *Service {
	return &Service{api: api, creds: creds, merge: merge, bus: bus}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*Result, error) {
	if err := schema.Validate(req); err != nil {
		return nil, err
	}
	auth, err := s.api.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.signedIn(ctx, auth)
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*Result, error) {
	if err := schema.Validate(req); err != nil {
		return nil, err
	}
	auth, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.signedIn(ctx, auth)
}

func (s *Service) signedIn(ctx context.Context, auth domain.AuthResult) (*Result, error) {
	if err := s.creds.Save(auth.Token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	logger.Info().Str("user_id", auth.User.ID).Msg("Signed in")

	res := &Result{User: auth.User}
	res.Merge, res.MergeErr = s.merge.Run(ctx)
	s.bus.Publish(gueststore.Event{Kind: gueststore.SessionChanged})
	return res, nil
}

// Sync retries the merge of guest state for an already signed-in user.
func (s *Service) Sync(ctx context.Context) (*reconcile.Report, error) {
	if s.creds.Resolve() == "" {
		return nil, fmt.Errorf("sync guest state: %w", domain.ErrUnauthorized)
	}
	report, err := s.merge.Run(ctx)
	s.bus.Publish(gueststore.Event{Kind: gueststore.SessionChanged})
	return report, err
}

// Logout forgets the token. Guest state on the device is left as it is.
func (s *Service) Logout() error {
	if err := s.creds.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.bus.Publish(gueststore.Event{Kind: gueststore.SessionChanged})
	return nil
}
