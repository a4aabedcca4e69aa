package pgrepo

import (
	"testing"

	"kinderstep-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuildProductWhere(t *testing.T) {
	active := true
	cat := int32(3)
	min := decimal.NewFromInt(10)
	where, args := buildProductWhere(domain.ProductFilter{
		IsActive:   &active,
		Query:      "boot",
		CategoryID: &cat,
		MinPrice:   &min,
		OnSale:     true,
	})

	assert.Contains(t, where, "p.is_active = $1")
	assert.Contains(t, where, "p.name ILIKE '%' || $2 || '%'")
	assert.Contains(t, where, "p.category_id = $3")
	assert.Contains(t, where, ">= $4")
	assert.Contains(t, where, "p.discount > 0")
	assert.Len(t, args, 4)
}

func TestBuildProductWhere_Empty(t *testing.T) {
	where, args := buildProductWhere(domain.ProductFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestProductOrderBy(t *testing.T) {
	assert.Contains(t, productOrderBy("price_asc"), "ASC")
	assert.Contains(t, productOrderBy("unknown"), "created_at DESC")
}

func TestBuildOrderWhere(t *testing.T) {
	where, args := buildOrderWhere(domain.OrderFilter{Status: "new", Search: "anna", UserID: "bad-id"})
	assert.Contains(t, where, "status = $1")
	assert.Contains(t, where, "recipient ILIKE '%' || $2 || '%'")
	assert.NotContains(t, where, "user_id")
	assert.Len(t, args, 2)
}
