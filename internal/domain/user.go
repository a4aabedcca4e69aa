package domain

import (
	"context"
	"time"
)

type ContextKey string

const UserContextKey ContextKey = "user"

type User struct {
	ID           string    `json:"id"` // UUID
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role" validate:"omitempty,oneof=customer admin"`
	FirstName    string    `json:"firstName" validate:"max=80"`
	LastName     string    `json:"lastName" validate:"max=80"`
	Phone        string    `json:"phone" validate:"omitempty,max=20"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	Token string `json:"token" validate:"required"`
	User  User   `json:"user"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetAll(ctx context.Context, limit, offset int) ([]User, int64, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}
