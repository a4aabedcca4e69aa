package view

import (
	"fmt"
	"strings"

	"kinderstep-backend/internal/client/storefront"
	"kinderstep-backend/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func Badges(b storefront.Badges) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		badgeStyle.Render(fmt.Sprintf("cart %d", b.Cart)),
		" ",
		badgeStyle.Render(fmt.Sprintf("♥ %d", b.Favorites)),
	)
}

func sizes(p domain.Product) string {
	var parts []string
	for _, s := range p.Sizes {
		if s.Stock > 0 {
			parts = append(parts, s.Size)
		}
	}
	if len(parts) == 0 {
		return unavailable.Render("sold out")
	}
	return strings.Join(parts, " ")
}

// ProductRow is one line of a catalog listing.
func ProductRow(p domain.Product) string {
	return fmt.Sprintf("%-12s %-36s %s  %s",
		p.ArticleNumber, truncate(p.Name, 36), PriceTagFor(p).Render(), mutedStyle.Render(sizes(p)))
}

func Catalog(page domain.Page[domain.Product]) string {
	if len(page.Data) == 0 {
		return mutedStyle.Render("No products found")
	}
	var b strings.Builder
	for _, p := range page.Data {
		b.WriteString(ProductRow(p))
		b.WriteByte('\n')
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("page %d of %d, %d products",
		page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.TotalItems)))
	return b.String()
}

func ProductDetail(p domain.Product) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Name))
	b.WriteString("  " + mutedStyle.Render(p.ArticleNumber) + "\n")
	if p.Brand != nil {
		b.WriteString("Brand:    " + p.Brand.Name + "\n")
	}
	if p.Category != nil {
		b.WriteString("Category: " + p.Category.Name + "\n")
	}
	b.WriteString("Price:    " + PriceTagFor(p).Render() + "\n")
	b.WriteString("Sizes:    " + sizes(p) + "\n")
	if !p.IsActive {
		b.WriteString(unavailable.Render("Not available for sale") + "\n")
	}
	if p.Description != "" {
		b.WriteString("\n" + p.Description + "\n")
	}
	return b.String()
}

func Cart(entries []storefront.CartEntry) string {
	if len(entries) == 0 {
		return mutedStyle.Render("Your cart is empty")
	}
	var (
		b     strings.Builder
		total decimal.Decimal
	)
	for _, e := range entries {
		if !e.Available || e.Product == nil {
			name := e.Line.ArticleNumber
			if e.Product != nil {
				name = e.Product.Name
			}
			fmt.Fprintf(&b, "%-12s size %-4s x%-3d %s\n", e.Line.ArticleNumber, e.Line.Size, e.Line.Quantity,
				unavailable.Render(truncate(name, 30)+" is unavailable"))
			continue
		}
		line := e.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(e.Line.Quantity)))
		total = total.Add(line)
		fmt.Fprintf(&b, "%-12s size %-4s x%-3d %-30s %s\n", e.Line.ArticleNumber, e.Line.Size, e.Line.Quantity,
			truncate(e.Product.Name, 30), PriceTagFor(*e.Product).Render())
	}
	b.WriteString(titleStyle.Render("Total: " + Money(total)))
	return b.String()
}

func Favorites(entries []storefront.FavoriteEntry) string {
	if len(entries) == 0 {
		return mutedStyle.Render("No favorites yet")
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		if !e.Available || e.Product == nil {
			b.WriteString(fmt.Sprintf("%-12s %s", e.ArticleNumber, unavailable.Render("unavailable")))
			continue
		}
		b.WriteString(ProductRow(*e.Product))
	}
	return b.String()
}

func Order(o domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n", titleStyle.Render("Order "+o.ID), statusLabel(o.Status), mutedStyle.Render(o.CreatedAt.Format("2006-01-02 15:04")))
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "  %-12s size %-4s x%-3d %s", l.ArticleNumber, l.Size, l.Quantity, Money(l.UnitPrice))
		if l.Discount > 0 {
			b.WriteString(discountStyle.Render(fmt.Sprintf(" (-%d%%)", l.Discount)))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  Total: %s", Money(o.Total))
	return b.String()
}

func Orders(orders []domain.Order) string {
	if len(orders) == 0 {
		return mutedStyle.Render("No orders yet")
	}
	parts := make([]string, len(orders))
	for i, o := range orders {
		parts[i] = Order(o)
	}
	return strings.Join(parts, "\n\n")
}

func statusLabel(status string) string {
	switch status {
	case domain.OrderStatusCancelled:
		return unavailable.Render(status)
	case domain.OrderStatusDelivered, domain.OrderStatusCompleted:
		return okStyle.Render(status)
	}
	return discountStyle.Render(status)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
