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

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) domain.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `
	p.article_number, p.name, p.description, p.price, p.discount,
	p.category_id, c.name, c.slug,
	p.brand_id, b.name, b.slug, b.country,
	p.gender, p.season, p.images, p.is_active, p.created_at, p.updated_at`

const productFrom = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN brands b ON b.id = p.brand_id`

// --- Mappers ---

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p                    domain.Product
		price                pgtype.Numeric
		categoryID, brandID  pgtype.Int4
		catName, catSlug     *string
		brandName, brandSlug *string
		brandCountry         *string
	)
	err := row.Scan(
		&p.ArticleNumber, &p.Name, &p.Description, &price, &p.Discount,
		&categoryID, &catName, &catSlug,
		&brandID, &brandName, &brandSlug, &brandCountry,
		&p.Gender, &p.Season, &p.Images, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Price = numericToDecimal(price)
	p.FinalPrice = p.EffectivePrice()
	p.CategoryID = int4ToPtr(categoryID)
	if p.CategoryID != nil {
		p.Category = &domain.Category{ID: *p.CategoryID, Name: ptrString(catName), Slug: ptrString(catSlug)}
	}
	p.BrandID = int4ToPtr(brandID)
	if p.BrandID != nil {
		p.Brand = &domain.Brand{ID: *p.BrandID, Name: ptrString(brandName), Slug: ptrString(brandSlug), Country: ptrString(brandCountry)}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Sizes = []domain.SizeStock{}
	return &p, nil
}

// attachSizes loads size rows for all given products in one query.
func (r *productRepository) attachSizes(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	byArticle := make(map[string]*domain.Product, len(products))
	articles := make([]string, 0, len(products))
	for _, p := range products {
		byArticle[p.ArticleNumber] = p
		articles = append(articles, p.ArticleNumber)
	}

	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT article_number, size, stock FROM product_sizes
		WHERE article_number = ANY($1)
		ORDER BY article_number, size`, articles)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var article string
		var s domain.SizeStock
		if err := rows.Scan(&article, &s.Size, &s.Stock); err != nil {
			return err
		}
		if p, ok := byArticle[article]; ok {
			p.Sizes = append(p.Sizes, s)
		}
	}
	return rows.Err()
}

func (r *productRepository) queryProducts(ctx context.Context, sql string, args ...any) ([]*domain.Product, error) {
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSizes(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// buildProductWhere turns a filter into a WHERE clause and its arguments.
func buildProductWhere(filter domain.ProductFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.IsActive != nil {
		add("p.is_active = $%d", *filter.IsActive)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		add("(p.name ILIKE '%%' || $%[1]d || '%%' OR p.article_number ILIKE '%%' || $%[1]d || '%%')", q)
	}
	if filter.CategoryID != nil {
		add("p.category_id = $%d", *filter.CategoryID)
	}
	if filter.BrandID != nil {
		add("p.brand_id = $%d", *filter.BrandID)
	}
	if filter.Gender != "" {
		add("p.gender IN ($%d, 'unisex')", filter.Gender)
	}
	if filter.Size != "" {
		add("EXISTS (SELECT 1 FROM product_sizes ps WHERE ps.article_number = p.article_number AND ps.size = $%d AND ps.stock > 0)", filter.Size)
	}
	if filter.MinPrice != nil {
		add("p.price * (100 - p.discount) / 100 >= $%d", decimalPtrToNumeric(filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		add("p.price * (100 - p.discount) / 100 <= $%d", decimalPtrToNumeric(filter.MaxPrice))
	}
	if filter.OnSale {
		conds = append(conds, "p.discount > 0")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func productOrderBy(sort string) string {
	switch sort {
	case "price_asc":
		return " ORDER BY p.price * (100 - p.discount) ASC, p.article_number"
	case "price_desc":
		return " ORDER BY p.price * (100 - p.discount) DESC, p.article_number"
	case "discount":
		return " ORDER BY p.discount DESC, p.created_at DESC"
	default:
		return " ORDER BY p.created_at DESC, p.article_number"
	}
}

func (r *productRepository) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	where, args := buildProductWhere(filter)

	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, "SELECT count(*) FROM products p"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	pageArgs := append(args, limit, filter.Offset)
	sql := "SELECT" + productColumns + productFrom + where + productOrderBy(filter.Sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	products, err := r.queryProducts(ctx, sql, pageArgs...)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.Product, len(products))
	for i, p := range products {
		result[i] = *p
	}
	return result, total, nil
}

func (r *productRepository) GetByArticle(ctx context.Context, articleNumber string) (*domain.Product, error) {
	products, err := r.queryProducts(ctx, "SELECT"+productColumns+productFrom+" WHERE p.article_number = $1", articleNumber)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.ErrNotFound
	}
	return products[0], nil
}

// GetByArticles returns the products that exist; missing articles are absent from the map.
func (r *productRepository) GetByArticles(ctx context.Context, articleNumbers []string) (map[string]*domain.Product, error) {
	result := make(map[string]*domain.Product, len(articleNumbers))
	if len(articleNumbers) == 0 {
		return result, nil
	}
	products, err := r.queryProducts(ctx, "SELECT"+productColumns+productFrom+" WHERE p.article_number = ANY($1)", articleNumbers)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ArticleNumber] = p
	}
	return result, nil
}

func (r *productRepository) replaceSizes(ctx context.Context, db DBTX, p *domain.Product) error {
	if _, err := db.Exec(ctx, `DELETE FROM product_sizes WHERE article_number = $1`, p.ArticleNumber); err != nil {
		return err
	}
	for _, s := range p.Sizes {
		_, err := db.Exec(ctx, `
			INSERT INTO product_sizes (article_number, size, stock) VALUES ($1, $2, $3)`,
			p.ArticleNumber, s.Size, s.Stock)
		if err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func imagesOrEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}

func (r *productRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	db := conn(ctx, r.db)
	err := db.QueryRow(ctx, `
		INSERT INTO products (article_number, name, description, price, discount, category_id, brand_id, gender, season, images, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		p.ArticleNumber, p.Name, p.Description, decimalToNumeric(p.Price), p.Discount,
		ptrToInt4(p.CategoryID), ptrToInt4(p.BrandID), p.Gender, p.Season, imagesOrEmpty(p.Images), p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	p.FinalPrice = p.EffectivePrice()
	return r.replaceSizes(ctx, db, p)
}

func (r *productRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	db := conn(ctx, r.db)
	err := db.QueryRow(ctx, `
		UPDATE products SET
			name = $2, description = $3, price = $4, discount = $5, category_id = $6, brand_id = $7,
			gender = $8, season = $9, images = $10, is_active = $11, updated_at = now()
		WHERE article_number = $1
		RETURNING created_at, updated_at`,
		p.ArticleNumber, p.Name, p.Description, decimalToNumeric(p.Price), p.Discount,
		ptrToInt4(p.CategoryID), ptrToInt4(p.BrandID), p.Gender, p.Season, imagesOrEmpty(p.Images), p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	p.FinalPrice = p.EffectivePrice()
	return r.replaceSizes(ctx, db, p)
}

// UpsertProduct is used by the spreadsheet import.
func (r *productRepository) UpsertProduct(ctx context.Context, p *domain.Product) error {
	db := conn(ctx, r.db)
	err := db.QueryRow(ctx, `
		INSERT INTO products (article_number, name, description, price, discount, category_id, brand_id, gender, season, images, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (article_number) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
			discount = EXCLUDED.discount, category_id = EXCLUDED.category_id, brand_id = EXCLUDED.brand_id,
			gender = EXCLUDED.gender, season = EXCLUDED.season, is_active = EXCLUDED.is_active,
			updated_at = now()
		RETURNING created_at, updated_at`,
		p.ArticleNumber, p.Name, p.Description, decimalToNumeric(p.Price), p.Discount,
		ptrToInt4(p.CategoryID), ptrToInt4(p.BrandID), p.Gender, p.Season, imagesOrEmpty(p.Images), p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	p.FinalPrice = p.EffectivePrice()
	return r.replaceSizes(ctx, db, p)
}

func (r *productRepository) DeleteProduct(ctx context.Context, articleNumber string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM products WHERE article_number = $1`, articleNumber)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DecrementStock uses a guarded update so concurrent checkouts cannot oversell.
func (r *productRepository) DecrementStock(ctx context.Context, articleNumber, size string, qty int) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE product_sizes SET stock = stock - $3
		WHERE article_number = $1 AND size = $2 AND stock >= $3`,
		articleNumber, size, qty)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s size %s", domain.ErrInsufficientStock, articleNumber, size)
	}
	return nil
}

// --- Categories ---

func (r *productRepository) GetCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		var c domain.Category
		err := row.Scan(&c.ID, &c.Name, &c.Slug)
		return c, err
	})
}

func (r *productRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	err := conn(ctx, r.db).QueryRow(ctx,
		`INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id`, c.Name, c.Slug,
	).Scan(&c.ID)
	return mapErr(err)
}

func (r *productRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE categories SET name = $2, slug = $3 WHERE id = $1`, c.ID, c.Name, c.Slug)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) DeleteCategory(ctx context.Context, id int32) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- Brands ---

func (r *productRepository) GetBrands(ctx context.Context) ([]domain.Brand, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT id, name, slug, country FROM brands ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Brand, error) {
		var b domain.Brand
		err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.Country)
		return b, err
	})
}

func (r *productRepository) CreateBrand(ctx context.Context, b *domain.Brand) error {
	err := conn(ctx, r.db).QueryRow(ctx,
		`INSERT INTO brands (name, slug, country) VALUES ($1, $2, $3) RETURNING id`, b.Name, b.Slug, b.Country,
	).Scan(&b.ID)
	return mapErr(err)
}

func (r *productRepository) UpdateBrand(ctx context.Context, b *domain.Brand) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE brands SET name = $2, slug = $3, country = $4 WHERE id = $1`, b.ID, b.Name, b.Slug, b.Country)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) DeleteBrand(ctx context.Context, id int32) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
