package pgrepo

import (
	"context"

	"kinderstep-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type favoriteRepository struct {
	db       *pgxpool.Pool
	products *productRepository
}

func NewFavoriteRepository(db *pgxpool.Pool) domain.FavoriteRepository {
	return &favoriteRepository{db: db, products: &productRepository{db: db}}
}

func (r *favoriteRepository) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	uid, err := toUUID(userID)
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id, article_number, added_at FROM favorites
		WHERE user_id = $1 ORDER BY added_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favorites := []domain.Favorite{}
	var articles []string
	for rows.Next() {
		var f domain.Favorite
		var id pgtype.UUID
		if err := rows.Scan(&id, &f.ArticleNumber, &f.AddedAt); err != nil {
			return nil, err
		}
		f.ID = uuidToString(id)
		favorites = append(favorites, f)
		articles = append(articles, f.ArticleNumber)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	products, err := r.products.GetByArticles(ctx, articles)
	if err != nil {
		return nil, err
	}
	for i := range favorites {
		if p, ok := products[favorites[i].ArticleNumber]; ok {
			favorites[i].Product = p
			favorites[i].Available = p.IsActive
		}
	}
	return favorites, nil
}

func (r *favoriteRepository) AddFavorite(ctx context.Context, userID, articleNumber string) error {
	_, err := r.AddFavorites(ctx, userID, []string{articleNumber})
	return err
}

// AddFavorites inserts every article not yet present and returns how many were new.
func (r *favoriteRepository) AddFavorites(ctx context.Context, userID string, articleNumbers []string) (int, error) {
	uid, err := toUUID(userID)
	if err != nil {
		return 0, err
	}
	if len(articleNumbers) == 0 {
		return 0, nil
	}
	tag, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO favorites (user_id, article_number)
		SELECT $1, a FROM unnest($2::text[]) AS a
		ON CONFLICT (user_id, article_number) DO NOTHING`, uid, articleNumbers)
	if err != nil {
		return 0, mapErr(err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *favoriteRepository) RemoveFavorite(ctx context.Context, userID, articleNumber string) error {
	uid, err := toUUID(userID)
	if err != nil {
		return err
	}
	tag, err := conn(ctx, r.db).Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND article_number = $2`, uid, articleNumber)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *favoriteRepository) CountFavorites(ctx context.Context, userID string) (int64, error) {
	uid, err := toUUID(userID)
	if err != nil {
		return 0, err
	}
	var count int64
	err = conn(ctx, r.db).QueryRow(ctx, `SELECT count(*) FROM favorites WHERE user_id = $1`, uid).Scan(&count)
	return count, err
}
