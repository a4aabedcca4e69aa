package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase struct {
	userRepo    domain.UserRepository
	tokenExpiry time.Duration
	bcryptCost  int
}

func NewAuthUsecase(userRepo domain.UserRepository, tokenExpiry time.Duration, bcryptCost int) *AuthUsecase {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthUsecase{
		userRepo:    userRepo,
		tokenExpiry: tokenExpiry,
		bcryptCost:  bcryptCost,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := schema.Validate(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), u.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: email is already registered", domain.ErrConflict)
		}
		return nil, err
	}
	logger.WithContext(ctx).Info().Str("user_id", user.ID).Msg("User registered")

	return u.issue(user)
}

func (u *AuthUsecase) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := schema.Validate(req); err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}

	return u.issue(user)
}

func (u *AuthUsecase) issue(user *domain.User) (*domain.AuthResult, error) {
	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, u.tokenExpiry)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{Token: token, User: *user}, nil
}

// HashPassword is shared with profile updates.
func (u *AuthUsecase) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
