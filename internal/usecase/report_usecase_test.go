package usecase

import (
	"bytes"
	"context"
	"testing"

	"kinderstep-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseSizes(t *testing.T) {
	sizes, err := ParseSizes("31:2, 32:0,")
	require.NoError(t, err)
	assert.Equal(t, []domain.SizeStock{{Size: "31", Stock: 2}, {Size: "32", Stock: 0}}, sizes)
	assert.Equal(t, "31:2, 32:0", FormatSizes(sizes))

	_, err = ParseSizes("31")
	assert.Error(t, err)
	_, err = ParseSizes("31:-1")
	assert.Error(t, err)
}

func TestReport_GenerateThenImport(t *testing.T) {
	products := new(productRepoMock)
	orders := new(orderRepoMock)
	uc := NewReportUsecase(products, orders, nil)
	ctx := context.Background()

	brandID := int32(3)
	p := shoe("KS-100", "1299.90", 15, size("32", 1), size("31", 4))
	p.Gender = "girls"
	p.Season = "winter"
	p.BrandID = &brandID
	p.Brand = &domain.Brand{ID: brandID, Name: "Kotofey"}

	products.On("GetProducts", mock.Anything, domain.ProductFilter{Limit: reportPageSize}).Return([]domain.Product{*p}, int64(1), nil)
	orders.On("GetAll", mock.Anything, domain.OrderFilter{Page: 1, Limit: reportPageSize}).Return([]domain.Order{{
		ID:            "o1",
		Status:        domain.OrderStatusNew,
		Total:         decimal.NewFromInt(80),
		PaymentMethod: domain.PaymentMethodCash,
		Lines:         []domain.OrderLine{{ArticleNumber: "KS-100", Size: "31", Quantity: 1}},
	}}, int64(1), nil)

	data, err := uc.GenerateReport(ctx)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	orderRows, err := f.GetRows(SheetOrders)
	require.NoError(t, err)
	require.Len(t, orderRows, 2)
	assert.Equal(t, "o1", orderRows[1][0])
	require.NoError(t, f.Close())

	products.On("GetCategories", mock.Anything).Return([]domain.Category{}, nil)
	products.On("GetBrands", mock.Anything).Return([]domain.Brand{{ID: brandID, Name: "Kotofey"}}, nil)
	products.On("GetByArticle", mock.Anything, "KS-100").Return(nil, domain.ErrNotFound)
	products.On("UpsertProduct", mock.Anything, mock.MatchedBy(func(got *domain.Product) bool {
		return got.ArticleNumber == "KS-100" &&
			got.Price.Equal(decimal.RequireFromString("1299.9")) &&
			got.Discount == 15 &&
			got.BrandID != nil && *got.BrandID == brandID &&
			got.CategoryID == nil &&
			len(got.Sizes) == 2 && got.Sizes[0].Size == "31" && got.Sizes[0].Stock == 4 &&
			got.IsActive && got.Gender == "girls"
	})).Return(nil)

	res, err := uc.ImportProducts(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Empty(t, res.Errors)
	products.AssertExpectations(t)
}

func TestImport_RowErrorsAreCollected(t *testing.T) {
	products := new(productRepoMock)
	uc := NewReportUsecase(products, new(orderRepoMock), nil)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetProducts))
	require.NoError(t, f.SetSheetRow(SheetProducts, "A1", &productHeader))
	require.NoError(t, f.SetSheetRow(SheetProducts, "A2", &[]interface{}{"X1", "Boot", "", "not-a-price"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	products.On("GetCategories", mock.Anything).Return([]domain.Category{}, nil)
	products.On("GetBrands", mock.Anything).Return([]domain.Brand{}, nil)

	res, err := uc.ImportProducts(context.Background(), buf)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Row)
	products.AssertNotCalled(t, "UpsertProduct", mock.Anything, mock.Anything)
}
