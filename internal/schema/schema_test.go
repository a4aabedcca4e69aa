package schema

import (
	"testing"

	"kinderstep-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ProductRules(t *testing.T) {
	p := domain.Product{
		ArticleNumber: "A123",
		Name:          "Sandals",
		Price:         decimal.RequireFromString("49.90"),
		Discount:      10,
		Sizes:         []domain.SizeStock{{Size: "36", Stock: 4}},
	}
	require.NoError(t, Validate(p))

	p.Discount = 120
	err := Validate(&p)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "discount", verr.Fields[0].Field)
	assert.Equal(t, "lte", verr.Fields[0].Rule)
}

func TestValidate_NegativePriceRejected(t *testing.T) {
	p := domain.Product{ArticleNumber: "A1", Name: "Boots", Price: decimal.NewFromInt(-1)}
	err := Validate(p)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Fields[0].Field)
}

func TestValidate_SliceReportsIndex(t *testing.T) {
	lines := []domain.CartLine{
		{ArticleNumber: "A123", Size: "36", Quantity: 2},
		{ArticleNumber: "", Size: "37", Quantity: 1},
	}
	err := Validate(lines)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "[1].articleNumber", verr.Fields[0].Field)
	assert.Contains(t, err.Error(), "required")
}

func TestValidate_DeliveryPickupNeedsNoAddress(t *testing.T) {
	d := domain.Delivery{Recipient: "Ann", Phone: "+3801234567", City: "Kyiv", Method: domain.DeliveryPickup}
	assert.NoError(t, Validate(d))

	d.Method = domain.DeliveryCourier
	assert.Error(t, Validate(d))
}

func TestValidate_NilPointer(t *testing.T) {
	var p *domain.Product
	assert.Error(t, Validate(p))
}
