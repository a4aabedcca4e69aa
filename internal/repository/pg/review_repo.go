package pgrepo

import (
	"context"
	"fmt"
	"strings"

	"kinderstep-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reviewRepository struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) domain.ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewSelect = `
	SELECT r.id, r.article_number, r.user_id, trim(u.first_name || ' ' || u.last_name),
		r.rating, r.comment, r.is_published, r.created_at
	FROM reviews r JOIN users u ON u.id = r.user_id`

func scanReview(row pgx.Row) (domain.Review, error) {
	var rv domain.Review
	var id, uid pgtype.UUID
	err := row.Scan(&id, &rv.ArticleNumber, &uid, &rv.AuthorName, &rv.Rating, &rv.Comment, &rv.IsPublished, &rv.CreatedAt)
	rv.ID = uuidToString(id)
	rv.UserID = uuidToString(uid)
	return rv, err
}

func (r *reviewRepository) CreateReview(ctx context.Context, review *domain.Review) error {
	uid, err := toUUID(review.UserID)
	if err != nil {
		return err
	}
	var id pgtype.UUID
	err = conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO reviews (article_number, user_id, rating, comment, is_published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		review.ArticleNumber, uid, review.Rating, review.Comment, review.IsPublished,
	).Scan(&id, &review.CreatedAt)
	if err != nil {
		return mapErr(err)
	}
	review.ID = uuidToString(id)
	return nil
}

func (r *reviewRepository) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	rid, err := toUUID(id)
	if err != nil {
		return nil, err
	}
	rv, err := scanReview(conn(ctx, r.db).QueryRow(ctx, reviewSelect+` WHERE r.id = $1`, rid))
	if err != nil {
		return nil, mapErr(err)
	}
	return &rv, nil
}

func (r *reviewRepository) ListReviews(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int64, error) {
	var conds []string
	var args []any
	if filter.ArticleNumber != "" {
		args = append(args, filter.ArticleNumber)
		conds = append(conds, fmt.Sprintf("r.article_number = $%d", len(args)))
	}
	if filter.Published != nil {
		args = append(args, *filter.Published)
		conds = append(conds, fmt.Sprintf("r.is_published = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, `SELECT count(*) FROM reviews r`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	sql := reviewSelect + where + fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := conn(ctx, r.db).Query(ctx, sql, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Review, error) {
		return scanReview(row)
	})
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) UpdateReview(ctx context.Context, review *domain.Review) error {
	rid, err := toUUID(review.ID)
	if err != nil {
		return err
	}
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE reviews SET rating = $2, comment = $3, is_published = $4 WHERE id = $1`,
		rid, review.Rating, review.Comment, review.IsPublished)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reviewRepository) DeleteReview(ctx context.Context, id string) error {
	rid, err := toUUID(id)
	if err != nil {
		return err
	}
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM reviews WHERE id = $1`, rid)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
