package usecase

import (
	"context"
	"fmt"
	"strings"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"
)

type UserUsecase struct {
	userRepo domain.UserRepository
	auth     *AuthUsecase
}

func NewUserUsecase(userRepo domain.UserRepository, auth *AuthUsecase) *UserUsecase {
	return &UserUsecase{userRepo: userRepo, auth: auth}
}

func (u *UserUsecase) Me(ctx context.Context, userID string) (*domain.User, error) {
	return u.userRepo.GetByID(ctx, userID)
}

func (u *UserUsecase) applyProfile(user *domain.User, changes domain.ProfileUpdate) error {
	if changes.FirstName != nil {
		user.FirstName = strings.TrimSpace(*changes.FirstName)
	}
	if changes.LastName != nil {
		user.LastName = strings.TrimSpace(*changes.LastName)
	}
	if changes.Phone != nil {
		user.Phone = strings.TrimSpace(*changes.Phone)
	}
	if changes.Password != nil {
		hash, err := u.auth.HashPassword(*changes.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	return nil
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, userID string, changes domain.ProfileUpdate) (*domain.User, error) {
	if err := schema.Validate(changes); err != nil {
		return nil, err
	}
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.applyProfile(user, changes); err != nil {
		return nil, err
	}
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *UserUsecase) DeleteMe(ctx context.Context, userID string) error {
	return u.userRepo.Delete(ctx, userID)
}

// --- Admin Methods ---

func (u *UserUsecase) ListUsers(ctx context.Context, page, limit int) ([]domain.User, int64, error) {
	users, total, err := u.userRepo.GetAll(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, total, nil
}

func (u *UserUsecase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

func (u *UserUsecase) UpdateUser(ctx context.Context, id string, changes domain.AdminUserUpdate) (*domain.User, error) {
	if err := schema.Validate(changes); err != nil {
		return nil, err
	}
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.applyProfile(user, changes.ProfileUpdate); err != nil {
		return nil, err
	}
	if changes.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*changes.Email))
	}
	if changes.Role != nil {
		user.Role = *changes.Role
	}
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser refuses to let an admin delete their own account.
func (u *UserUsecase) DeleteUser(ctx context.Context, adminID, id string) error {
	if adminID == id {
		return fmt.Errorf("%w: admins cannot delete themselves", domain.ErrForbidden)
	}
	return u.userRepo.Delete(ctx, id)
}
