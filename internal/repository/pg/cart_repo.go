package pgrepo

import (
	"context"

	"kinderstep-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type cartRepository struct {
	db       *pgxpool.Pool
	products *productRepository
}

func NewCartRepository(db *pgxpool.Pool) domain.CartRepository {
	return &cartRepository{db: db, products: &productRepository{db: db}}
}

const orderItemColumns = `id, user_id, article_number, size, quantity, created_at, updated_at`

func scanOrderItem(row pgx.Row) (*domain.OrderItem, error) {
	var it domain.OrderItem
	var id, uid pgtype.UUID
	if err := row.Scan(&id, &uid, &it.ArticleNumber, &it.Size, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	it.ID = uuidToString(id)
	it.UserID = uuidToString(uid)
	return &it, nil
}

// withProducts attaches catalog data; lines of deleted products stay unavailable.
func (r *cartRepository) withProducts(ctx context.Context, items []*domain.OrderItem) error {
	articles := make([]string, 0, len(items))
	for _, it := range items {
		articles = append(articles, it.ArticleNumber)
	}
	products, err := r.products.GetByArticles(ctx, articles)
	if err != nil {
		return err
	}
	for _, it := range items {
		if p, ok := products[it.ArticleNumber]; ok {
			it.Product = p
			_, hasSize := p.StockFor(it.Size)
			it.Available = p.IsActive && hasSize
		}
	}
	return nil
}

func (r *cartRepository) ListItems(ctx context.Context, userID string) ([]domain.OrderItem, error) {
	uid, err := toUUID(userID)
	if err != nil {
		return nil, err
	}
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE user_id = $1 ORDER BY created_at, article_number, size`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.withProducts(ctx, items); err != nil {
		return nil, err
	}

	result := make([]domain.OrderItem, len(items))
	for i, it := range items {
		result[i] = *it
	}
	return result, nil
}

func (r *cartRepository) GetItem(ctx context.Context, userID, id string) (*domain.OrderItem, error) {
	uid, err := toUUID(userID)
	if err != nil {
		return nil, err
	}
	itemID, err := toUUID(id)
	if err != nil {
		return nil, err
	}
	it, err := scanOrderItem(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE id = $1 AND user_id = $2`, itemID, uid))
	if err != nil {
		return nil, mapErr(err)
	}
	if err := r.withProducts(ctx, []*domain.OrderItem{it}); err != nil {
		return nil, err
	}
	return it, nil
}

func (r *cartRepository) FindItem(ctx context.Context, userID, articleNumber, size string) (*domain.OrderItem, error) {
	uid, err := toUUID(userID)
	if err != nil {
		return nil, err
	}
	it, err := scanOrderItem(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE user_id = $1 AND article_number = $2 AND size = $3`,
		uid, articleNumber, size))
	if err != nil {
		return nil, mapErr(err)
	}
	return it, nil
}

func (r *cartRepository) UpsertItem(ctx context.Context, item *domain.OrderItem) error {
	uid, err := toUUID(item.UserID)
	if err != nil {
		return err
	}
	var id pgtype.UUID
	err = conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO order_items (user_id, article_number, size, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, article_number, size) DO UPDATE SET
			quantity = EXCLUDED.quantity, updated_at = now()
		RETURNING id, created_at, updated_at`,
		uid, item.ArticleNumber, item.Size, item.Quantity,
	).Scan(&id, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	item.ID = uuidToString(id)
	return nil
}

func (r *cartRepository) UpdateItem(ctx context.Context, item *domain.OrderItem) error {
	uid, err := toUUID(item.UserID)
	if err != nil {
		return err
	}
	id, err := toUUID(item.ID)
	if err != nil {
		return err
	}
	err = conn(ctx, r.db).QueryRow(ctx, `
		UPDATE order_items SET size = $3, quantity = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`,
		id, uid, item.Size, item.Quantity,
	).Scan(&item.UpdatedAt)
	return mapErr(err)
}

func (r *cartRepository) DeleteItem(ctx context.Context, userID, id string) error {
	uid, err := toUUID(userID)
	if err != nil {
		return err
	}
	itemID, err := toUUID(id)
	if err != nil {
		return err
	}
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM order_items WHERE id = $1 AND user_id = $2`, itemID, uid)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *cartRepository) ClearItems(ctx context.Context, userID string) error {
	uid, err := toUUID(userID)
	if err != nil {
		return err
	}
	_, err = conn(ctx, r.db).Exec(ctx, `DELETE FROM order_items WHERE user_id = $1`, uid)
	return mapErr(err)
}
