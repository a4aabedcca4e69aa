package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetProducts = "Products"
	SheetOrders   = "Orders"

	reportPageSize = 500
)

var productHeader = []interface{}{
	"Article", "Name", "Description", "Price", "Discount", "Final Price",
	"Category", "Brand", "Gender", "Season", "Sizes", "Active", "Images",
}

var orderHeader = []interface{}{
	"Order ID", "Created", "Status", "Recipient", "Phone", "City",
	"Delivery", "Payment", "Lines", "Total",
}

// ReportUsecase exports the catalog and orders to a workbook and imports
// products back from the same Products sheet layout.
type ReportUsecase struct {
	productRepo domain.ProductRepository
	orderRepo   domain.OrderRepository
	catalog     *CatalogUsecase
}

func NewReportUsecase(productRepo domain.ProductRepository, orderRepo domain.OrderRepository, catalog *CatalogUsecase) *ReportUsecase {
	return &ReportUsecase{productRepo: productRepo, orderRepo: orderRepo, catalog: catalog}
}

// FormatSizes renders "31:2, 32:0".
func FormatSizes(sizes []domain.SizeStock) string {
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = fmt.Sprintf("%s:%d", s.Size, s.Stock)
	}
	return strings.Join(parts, ", ")
}

// ParseSizes is the inverse of FormatSizes.
func ParseSizes(s string) ([]domain.SizeStock, error) {
	var sizes []domain.SizeStock
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		label, stock, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("size %q has no stock", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(stock))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("size %q has invalid stock", part)
		}
		sizes = append(sizes, domain.SizeStock{Size: strings.TrimSpace(label), Stock: n})
	}
	return sizes, nil
}

func (u *ReportUsecase) GenerateReport(ctx context.Context) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetProducts); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetOrders); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := u.writeProducts(ctx, f, bold); err != nil {
		return nil, fmt.Errorf("products sheet: %w", err)
	}
	if err := u.writeOrders(ctx, f, bold); err != nil {
		return nil, fmt.Errorf("orders sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func (u *ReportUsecase) writeProducts(ctx context.Context, f *excelize.File, headerStyle int) error {
	if err := writeRow(f, SheetProducts, 1, productHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetProducts, 1, 1, headerStyle); err != nil {
		return err
	}

	row := 2
	for offset := 0; ; offset += reportPageSize {
		products, _, err := u.productRepo.GetProducts(ctx, domain.ProductFilter{Limit: reportPageSize, Offset: offset})
		if err != nil {
			return err
		}
		for _, p := range products {
			category, brand := "", ""
			if p.Category != nil {
				category = p.Category.Name
			}
			if p.Brand != nil {
				brand = p.Brand.Name
			}
			price, _ := p.Price.Float64()
			final, _ := p.EffectivePrice().Float64()
			values := []interface{}{
				p.ArticleNumber, p.Name, p.Description, price, p.Discount, final,
				category, brand, p.Gender, p.Season, FormatSizes(sortedSizes(p.Sizes)), p.IsActive, strings.Join(p.Images, " "),
			}
			if err := writeRow(f, SheetProducts, row, values); err != nil {
				return err
			}
			row++
		}
		if len(products) < reportPageSize {
			return nil
		}
	}
}

func (u *ReportUsecase) writeOrders(ctx context.Context, f *excelize.File, headerStyle int) error {
	if err := writeRow(f, SheetOrders, 1, orderHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetOrders, 1, 1, headerStyle); err != nil {
		return err
	}

	row := 2
	for page := 1; ; page++ {
		orders, _, err := u.orderRepo.GetAll(ctx, domain.OrderFilter{Page: page, Limit: reportPageSize})
		if err != nil {
			return err
		}
		for _, o := range orders {
			lines := make([]string, len(o.Lines))
			for i, l := range o.Lines {
				lines[i] = fmt.Sprintf("%s/%s x%d", l.ArticleNumber, l.Size, l.Quantity)
			}
			total, _ := o.Total.Float64()
			values := []interface{}{
				o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Status, o.Delivery.Recipient, o.Delivery.Phone,
				o.Delivery.City, o.Delivery.Method, o.PaymentMethod, strings.Join(lines, "; "), total,
			}
			if err := writeRow(f, SheetOrders, row, values); err != nil {
				return err
			}
			row++
		}
		if len(orders) < reportPageSize {
			return nil
		}
	}
}

// ImportProducts upserts every row of the Products sheet. Unknown category
// and brand names are created. Row errors are collected, not fatal.
func (u *ReportUsecase) ImportProducts(ctx context.Context, r io.Reader) (*domain.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not a spreadsheet: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetProducts)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q missing", domain.ErrInvalidInput, SheetProducts)
	}

	lookup, err := u.newTaxonomyLookup(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.ImportResult{Errors: []domain.RowError{}}
	for i, cells := range rows {
		if i == 0 || isBlankRow(cells) {
			continue
		}
		rowNum := i + 1
		product, err := u.parseProductRow(ctx, cells, lookup)
		if err != nil {
			result.Errors = append(result.Errors, domain.RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		_, lookupErr := u.productRepo.GetByArticle(ctx, product.ArticleNumber)
		if err := u.productRepo.UpsertProduct(ctx, product); err != nil {
			result.Errors = append(result.Errors, domain.RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if lookupErr == nil {
			result.Updated++
		} else {
			result.Created++
		}
	}

	if u.catalog != nil {
		u.catalog.InvalidateCatalog()
	}
	logger.WithContext(ctx).Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("errors", len(result.Errors)).
		Msg("Product import finished")
	return result, nil
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return strings.TrimSpace(cells[i])
	}
	return ""
}

func (u *ReportUsecase) parseProductRow(ctx context.Context, cells []string, lookup *taxonomyLookup) (*domain.Product, error) {
	price, err := decimal.NewFromString(cellAt(cells, 3))
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", cellAt(cells, 3))
	}
	discount := 0
	if s := cellAt(cells, 4); s != "" {
		if discount, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("invalid discount %q", s)
		}
	}
	sizes, err := ParseSizes(cellAt(cells, 10))
	if err != nil {
		return nil, err
	}
	active := true
	if s := cellAt(cells, 11); s != "" {
		if active, err = strconv.ParseBool(strings.ToLower(s)); err != nil {
			return nil, fmt.Errorf("invalid active flag %q", s)
		}
	}

	p := &domain.Product{
		ArticleNumber: utils.NormalizeArticle(cellAt(cells, 0)),
		Name:          cellAt(cells, 1),
		Description:   cellAt(cells, 2),
		Price:         price,
		Discount:      discount,
		Gender:        strings.ToLower(cellAt(cells, 8)),
		Season:        strings.ToLower(cellAt(cells, 9)),
		Sizes:         sizes,
		IsActive:      active,
		Images:        strings.Fields(cellAt(cells, 12)),
	}
	if p.CategoryID, err = lookup.category(ctx, cellAt(cells, 6)); err != nil {
		return nil, err
	}
	if p.BrandID, err = lookup.brand(ctx, cellAt(cells, 7)); err != nil {
		return nil, err
	}
	if err := schema.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// taxonomyLookup resolves category and brand names, creating missing ones.
type taxonomyLookup struct {
	repo       domain.ProductRepository
	categories map[string]int32
	brands     map[string]int32
}

func (u *ReportUsecase) newTaxonomyLookup(ctx context.Context) (*taxonomyLookup, error) {
	l := &taxonomyLookup{repo: u.productRepo, categories: map[string]int32{}, brands: map[string]int32{}}
	cats, err := u.productRepo.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		l.categories[strings.ToLower(c.Name)] = c.ID
	}
	brands, err := u.productRepo.GetBrands(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range brands {
		l.brands[strings.ToLower(b.Name)] = b.ID
	}
	return l, nil
}

func (l *taxonomyLookup) category(ctx context.Context, name string) (*int32, error) {
	if name == "" {
		return nil, nil
	}
	if id, ok := l.categories[strings.ToLower(name)]; ok {
		return &id, nil
	}
	c := &domain.Category{Name: name, Slug: utils.GenerateSlug(name)}
	if err := l.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category %q: %w", name, err)
	}
	l.categories[strings.ToLower(name)] = c.ID
	return &c.ID, nil
}

func (l *taxonomyLookup) brand(ctx context.Context, name string) (*int32, error) {
	if name == "" {
		return nil, nil
	}
	if id, ok := l.brands[strings.ToLower(name)]; ok {
		return &id, nil
	}
	b := &domain.Brand{Name: name, Slug: utils.GenerateSlug(name)}
	if err := l.repo.CreateBrand(ctx, b); err != nil {
		return nil, fmt.Errorf("create brand %q: %w", name, err)
	}
	l.brands[strings.ToLower(name)] = b.ID
	return &b.ID, nil
}

// sortedSizes keeps the exported size column stable.
func sortedSizes(sizes []domain.SizeStock) []domain.SizeStock {
	out := append([]domain.SizeStock(nil), sizes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Size < out[j].Size })
	return out
}
