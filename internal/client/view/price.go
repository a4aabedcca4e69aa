package view

import (
	"fmt"

	"kinderstep-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const currency = "UAH"

// PriceTag is what a product card shows. Original is set only for a
// discounted product and is rendered struck through.
type PriceTag struct {
	Current  decimal.Decimal
	Original *decimal.Decimal
	Discount int
}

func PriceTagFor(p domain.Product) PriceTag {
	tag := PriceTag{Current: p.EffectivePrice()}
	if p.Discount > 0 {
		original := p.Price
		tag.Original = &original
		tag.Discount = p.Discount
	}
	return tag
}

func Money(d decimal.Decimal) string {
	return d.StringFixed(2) + " " + currency
}

func (t PriceTag) Render() string {
	if t.Original == nil {
		return priceStyle.Render(Money(t.Current))
	}
	return fmt.Sprintf("%s %s %s",
		salePriceStyle.Render(Money(t.Current)),
		originalStyle.Render(Money(*t.Original)),
		discountStyle.Render(fmt.Sprintf("-%d%%", t.Discount)),
	)
}
