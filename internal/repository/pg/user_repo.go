package pgrepo

import (
	"context"

	"kinderstep-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, role, first_name, last_name, phone, created_at, updated_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	var id pgtype.UUID
	err := row.Scan(&id, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
	u.ID = uuidToString(id)
	return u, err
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	var id pgtype.UUID
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO users (email, password_hash, role, first_name, last_name, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		user.Email, user.PasswordHash, user.Role, user.FirstName, user.LastName, user.Phone,
	).Scan(&id, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	user.ID = uuidToString(id)
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	uid, err := toUUID(id)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uid))
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *userRepository) GetAll(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	uid, err := toUUID(user.ID)
	if err != nil {
		return err
	}
	err = conn(ctx, r.db).QueryRow(ctx, `
		UPDATE users SET email = $2, password_hash = $3, role = $4, first_name = $5, last_name = $6,
			phone = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		uid, user.Email, user.PasswordHash, user.Role, user.FirstName, user.LastName, user.Phone,
	).Scan(&user.UpdatedAt)
	return mapErr(err)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	uid, err := toUUID(id)
	if err != nil {
		return err
	}
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM users WHERE id = $1`, uid)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
