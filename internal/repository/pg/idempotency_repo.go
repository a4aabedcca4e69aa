package pgrepo

import (
	"context"

	"kinderstep-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type idempotencyRepository struct {
	db *pgxpool.Pool
}

func NewIdempotencyRepository(db *pgxpool.Pool) domain.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

// Claim inserts the key; a conflicting row means the submission was already applied.
// Run inside the same transaction as the write it protects so a failed write
// releases the key again.
func (r *idempotencyRepository) Claim(ctx context.Context, userID, scope, key string) (bool, error) {
	uid, err := toUUID(userID)
	if err != nil {
		return false, err
	}
	tag, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO idempotency_keys (user_id, scope, key) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`, uid, scope, key)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() == 1, nil
}
