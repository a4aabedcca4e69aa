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

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `
	id, user_id, session_id, status, total,
	recipient, phone, email, city, address, delivery_method,
	payment_method, comment, created_at, updated_at`

// --- Mappers ---

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		id, uid  pgtype.UUID
		total    pgtype.Numeric
		delivery = &o.Delivery
	)
	err := row.Scan(
		&id, &uid, &o.SessionID, &o.Status, &total,
		&delivery.Recipient, &delivery.Phone, &delivery.Email, &delivery.City, &delivery.Address, &delivery.Method,
		&o.PaymentMethod, &o.Comment, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.ID = uuidToString(id)
	o.UserID = uuidToStringPtr(uid)
	o.Total = numericToDecimal(total)
	o.Lines = []domain.OrderLine{}
	return &o, nil
}

func (r *orderRepository) attachLines(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Order, len(orders))
	ids := make([]pgtype.UUID, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		id, err := toUUID(o.ID)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id, order_id, article_number, size, quantity, unit_price, discount, name
		FROM order_lines WHERE order_id = ANY($1)
		ORDER BY article_number, size`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.OrderLine
		var id, orderID pgtype.UUID
		var price pgtype.Numeric
		if err := rows.Scan(&id, &orderID, &l.ArticleNumber, &l.Size, &l.Quantity, &price, &l.Discount, &l.Name); err != nil {
			return err
		}
		l.ID = uuidToString(id)
		l.OrderID = uuidToString(orderID)
		l.UnitPrice = numericToDecimal(price)
		if o, ok := byID[l.OrderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	return rows.Err()
}

func (r *orderRepository) queryOrders(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}

	result := make([]domain.Order, len(orders))
	for i, o := range orders {
		result[i] = *o
	}
	return result, nil
}

// --- Order Methods ---

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	db := conn(ctx, r.db)
	var id pgtype.UUID
	d := order.Delivery
	err := db.QueryRow(ctx, `
		INSERT INTO orders (user_id, session_id, status, total, recipient, phone, email, city, address,
			delivery_method, payment_method, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		optionalUUID(order.UserID), order.SessionID, order.Status, decimalToNumeric(order.Total),
		d.Recipient, d.Phone, d.Email, d.City, d.Address, d.Method, order.PaymentMethod, order.Comment,
	).Scan(&id, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	order.ID = uuidToString(id)

	for i := range order.Lines {
		line := &order.Lines[i]
		var lineID pgtype.UUID
		err := db.QueryRow(ctx, `
			INSERT INTO order_lines (order_id, article_number, size, quantity, unit_price, discount, name)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			id, line.ArticleNumber, line.Size, line.Quantity, decimalToNumeric(line.UnitPrice), line.Discount, line.Name,
		).Scan(&lineID)
		if err != nil {
			return mapErr(err)
		}
		line.ID = uuidToString(lineID)
		line.OrderID = order.ID
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := toUUID(id)
	if err != nil {
		return nil, err
	}
	orders, err := r.queryOrders(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1`, oid)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrNotFound
	}
	return &orders[0], nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	uid, err := toUUID(userID)
	if err != nil {
		return nil, err
	}
	return r.queryOrders(ctx, `SELECT`+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, uid)
}

// --- Admin Methods ---

func buildOrderWhere(filter domain.OrderFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.UserID != "" {
		if uid, err := toUUID(filter.UserID); err == nil {
			args = append(args, uid)
			conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
		}
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, s)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(id::text ILIKE $%[1]d || '%%' OR recipient ILIKE '%%' || $%[1]d || '%%' OR phone ILIKE '%%' || $%[1]d || '%%' OR email ILIKE '%%' || $%[1]d || '%%')", n))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *orderRepository) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	where, args := buildOrderWhere(filter)

	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := `SELECT` + orderColumns + ` FROM orders` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	orders, err := r.queryOrders(ctx, sql, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	oid, err := toUUID(id)
	if err != nil {
		return err
	}
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, oid, status)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepository) CreateOrderHistory(ctx context.Context, history *domain.OrderHistory) error {
	oid, err := toUUID(history.OrderID)
	if err != nil {
		return err
	}
	var id pgtype.UUID
	err = conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO order_history (order_id, previous_status, new_status, note, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		oid, history.PreviousStatus, history.NewStatus, history.Note, optionalUUID(history.CreatedBy),
	).Scan(&id, &history.CreatedAt)
	if err != nil {
		return mapErr(err)
	}
	history.ID = uuidToString(id)
	return nil
}

func (r *orderRepository) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	oid, err := toUUID(orderID)
	if err != nil {
		return nil, err
	}
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id, order_id, previous_status, new_status, note, created_by, created_at
		FROM order_history WHERE order_id = $1 ORDER BY created_at`, oid)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrderHistory, error) {
		var h domain.OrderHistory
		var id, orderID, createdBy pgtype.UUID
		if err := row.Scan(&id, &orderID, &h.PreviousStatus, &h.NewStatus, &h.Note, &createdBy, &h.CreatedAt); err != nil {
			return h, err
		}
		h.ID = uuidToString(id)
		h.OrderID = uuidToString(orderID)
		h.CreatedBy = uuidToStringPtr(createdBy)
		return h, nil
	})
}

func (r *orderRepository) LinkSession(ctx context.Context, sessionID, userID string) (int64, error) {
	uid, err := toUUID(userID)
	if err != nil {
		return 0, err
	}
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE orders SET user_id = $2, updated_at = now()
		WHERE session_id = $1 AND user_id IS NULL`, sessionID, uid)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}

func (r *orderRepository) HasPurchased(ctx context.Context, userID, articleNumber string) (bool, error) {
	uid, err := toUUID(userID)
	if err != nil {
		return false, err
	}
	var ok bool
	err = conn(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders o JOIN order_lines l ON l.order_id = o.id
			WHERE o.user_id = $1 AND l.article_number = $2 AND o.status <> 'cancelled'
		)`, uid, articleNumber).Scan(&ok)
	return ok, err
}
