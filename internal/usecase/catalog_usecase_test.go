package usecase

import (
	"context"
	"testing"

	"kinderstep-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type storageMock struct{ mock.Mock }

func (m *storageMock) UploadBuffer(ctx context.Context, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *storageMock) DeleteFile(ctx context.Context, fileURL string) error {
	return m.Called(ctx, fileURL).Error(0)
}

func TestGetProduct_IsCached(t *testing.T) {
	products := new(productRepoMock)
	uc := NewCatalogUsecase(products, testCache(), nil, testConfig())

	products.On("GetByArticle", mock.Anything, "A1").Return(shoe("A1", "10", 0), nil).Once()

	for i := 0; i < 2; i++ {
		p, err := uc.GetProduct(context.Background(), "a1")
		require.NoError(t, err)
		assert.Equal(t, "A1", p.ArticleNumber)
	}
	products.AssertNumberOfCalls(t, "GetByArticle", 1)
}

func TestCreateProduct_RejectsBadDiscount(t *testing.T) {
	products := new(productRepoMock)
	uc := NewCatalogUsecase(products, testCache(), nil, testConfig())

	err := uc.CreateProduct(context.Background(), shoe("A1", "10", 120))
	assert.Error(t, err)
	products.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestDeleteProduct_DropsImagesAndCache(t *testing.T) {
	products := new(productRepoMock)
	store := new(storageMock)
	c := testCache()
	uc := NewCatalogUsecase(products, c, store, testConfig())

	p := shoe("A1", "10", 0)
	p.Images = []string{"https://cdn.test/products/a.webp"}
	c.Set(cacheKeyProduct+"A1", p, 0)
	c.Set(cacheKeyProductList+"x", productPage{}, 0)

	products.On("GetByArticle", mock.Anything, "A1").Return(p, nil)
	products.On("DeleteProduct", mock.Anything, "A1").Return(nil)
	store.On("DeleteFile", mock.Anything, "https://cdn.test/products/a.webp").Return(nil)

	require.NoError(t, uc.DeleteProduct(context.Background(), "A1"))
	_, ok := c.Get(cacheKeyProduct + "A1")
	assert.False(t, ok)
	_, ok = c.Get(cacheKeyProductList + "x")
	assert.False(t, ok)
	store.AssertExpectations(t)
}

func TestCreateCategory_GeneratesSlug(t *testing.T) {
	products := new(productRepoMock)
	uc := NewCatalogUsecase(products, testCache(), nil, testConfig())
	products.On("CreateCategory", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.Slug == "winter-boots"
	})).Return(nil)

	require.NoError(t, uc.CreateCategory(context.Background(), &domain.Category{Name: "Winter Boots"}))
	products.AssertExpectations(t)
}

func TestSitemap_IncludesProductsByArticle(t *testing.T) {
	products := new(productRepoMock)
	uc := NewSitemapUsecase(products, "https://shop.test/", testCache(), testConfig())

	products.On("GetProducts", mock.Anything, mock.Anything).Return([]domain.Product{*shoe("A1", "10", 0)}, int64(1), nil)
	products.On("GetCategories", mock.Anything).Return([]domain.Category{{Slug: "boots"}}, nil)
	products.On("GetBrands", mock.Anything).Return([]domain.Brand{}, nil)

	items, err := uc.GenerateSitemap(context.Background())
	require.NoError(t, err)

	var locs []string
	for _, it := range items {
		locs = append(locs, it.Loc)
	}
	assert.Contains(t, locs, "https://shop.test/product/A1")
	assert.Contains(t, locs, "https://shop.test/catalog/boots")
}
