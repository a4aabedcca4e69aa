package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// --- Interfaces ---

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type Category struct {
	ID   int32  `json:"id" validate:"gte=0"`
	Name string `json:"name" validate:"required,max=120"`
	Slug string `json:"slug" validate:"omitempty,max=140"`
}

type Brand struct {
	ID      int32  `json:"id" validate:"gte=0"`
	Name    string `json:"name" validate:"required,max=120"`
	Slug    string `json:"slug" validate:"omitempty,max=140"`
	Country string `json:"country,omitempty" validate:"max=80"`
}

// SizeStock is the available stock of one shoe size (EU label, e.g. "36").
type SizeStock struct {
	Size  string `json:"size" validate:"required,max=10"`
	Stock int    `json:"stock" validate:"gte=0"`
}

// Product is keyed by its article number, the natural key shared by catalog,
// cart, favorites and order records.
type Product struct {
	ArticleNumber string          `json:"articleNumber" validate:"required,max=32"`
	Name          string          `json:"name" validate:"required,max=200"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" validate:"gte=0"`
	Discount      int             `json:"discount" validate:"gte=0,lte=100"`
	FinalPrice    decimal.Decimal `json:"finalPrice"`
	CategoryID    *int32          `json:"categoryId"`
	Category      *Category       `json:"category,omitempty"`
	BrandID       *int32          `json:"brandId"`
	Brand         *Brand          `json:"brand,omitempty"`
	Gender        string          `json:"gender,omitempty" validate:"omitempty,oneof=girls boys unisex"`
	Season        string          `json:"season,omitempty" validate:"omitempty,oneof=summer winter demi all"`
	Images        []string        `json:"images"`
	Sizes         []SizeStock     `json:"sizes" validate:"dive"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// EffectivePrice applies the discount percentage to the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.Discount <= 0 {
		return p.Price
	}
	factor := decimal.NewFromInt(int64(100 - p.Discount)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Round(2)
}

// StockFor returns the stock of a size and whether the size exists at all.
func (p *Product) StockFor(size string) (int, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Stock, true
		}
	}
	return 0, false
}

// TotalStock sums stock over every size.
func (p *Product) TotalStock() int {
	total := 0
	for _, s := range p.Sizes {
		total += s.Stock
	}
	return total
}

type ProductFilter struct {
	Query      string
	CategoryID *int32
	BrandID    *int32
	Size       string
	Gender     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	OnSale     bool
	Sort       string // newest, price_asc, price_desc, discount
	Limit      int
	Offset     int
	IsActive   *bool // nil = all
}

type ProductRepository interface {
	GetProducts(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	GetByArticle(ctx context.Context, articleNumber string) (*Product, error)
	GetByArticles(ctx context.Context, articleNumbers []string) (map[string]*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, product *Product) error
	UpsertProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, articleNumber string) error
	// DecrementStock fails with ErrInsufficientStock when fewer than qty items are left.
	DecrementStock(ctx context.Context, articleNumber, size string, qty int) error

	GetCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int32) error

	GetBrands(ctx context.Context) ([]Brand, error)
	CreateBrand(ctx context.Context, b *Brand) error
	UpdateBrand(ctx context.Context, b *Brand) error
	DeleteBrand(ctx context.Context, id int32) error
}
