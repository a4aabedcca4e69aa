package usecase

import (
	"context"
	"time"

	"kinderstep-backend/config"
	"kinderstep-backend/internal/domain"
	memcache "kinderstep-backend/internal/infrastructure/cache"
	"kinderstep-backend/pkg/cache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// txPassthrough runs fn directly; repositories are mocks.
type txPassthrough struct{}

func (txPassthrough) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testConfig() *config.Config {
	return &config.Config{
		CacheCatalogTTL: time.Minute,
		CacheProductTTL: time.Minute,
		CacheSitemapTTL: time.Minute,
		MaxCartQuantity: 10,
		FrontendURL:     "https://shop.test",
	}
}

func testCache() cache.CacheService {
	return memcache.NewMemoryCache(time.Minute, 0)
}

func shoe(article string, price string, discount int, sizes ...domain.SizeStock) *domain.Product {
	return &domain.Product{
		ArticleNumber: article,
		Name:          "Shoe " + article,
		Price:         decimal.RequireFromString(price),
		Discount:      discount,
		Sizes:         sizes,
		IsActive:      true,
	}
}

func size(label string, stock int) domain.SizeStock {
	return domain.SizeStock{Size: label, Stock: stock}
}

// --- Product repository ---

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	args := m.Called(ctx, filter)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) GetByArticle(ctx context.Context, articleNumber string) (*domain.Product, error) {
	args := m.Called(ctx, articleNumber)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) GetByArticles(ctx context.Context, articleNumbers []string) (map[string]*domain.Product, error) {
	args := m.Called(ctx, articleNumbers)
	products, _ := args.Get(0).(map[string]*domain.Product)
	return products, args.Error(1)
}

func (m *productRepoMock) CreateProduct(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *productRepoMock) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *productRepoMock) UpsertProduct(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *productRepoMock) DeleteProduct(ctx context.Context, articleNumber string) error {
	return m.Called(ctx, articleNumber).Error(0)
}

func (m *productRepoMock) DecrementStock(ctx context.Context, articleNumber, size string, qty int) error {
	return m.Called(ctx, articleNumber, size, qty).Error(0)
}

func (m *productRepoMock) GetCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]domain.Category)
	return cats, args.Error(1)
}

func (m *productRepoMock) CreateCategory(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *productRepoMock) UpdateCategory(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *productRepoMock) DeleteCategory(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}

func (m *productRepoMock) GetBrands(ctx context.Context) ([]domain.Brand, error) {
	args := m.Called(ctx)
	brands, _ := args.Get(0).([]domain.Brand)
	return brands, args.Error(1)
}

func (m *productRepoMock) CreateBrand(ctx context.Context, b *domain.Brand) error {
	return m.Called(ctx, b).Error(0)
}

func (m *productRepoMock) UpdateBrand(ctx context.Context, b *domain.Brand) error {
	return m.Called(ctx, b).Error(0)
}

func (m *productRepoMock) DeleteBrand(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}

// --- Cart repository ---

type cartRepoMock struct{ mock.Mock }

func (m *cartRepoMock) ListItems(ctx context.Context, userID string) ([]domain.OrderItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]domain.OrderItem)
	return items, args.Error(1)
}

func (m *cartRepoMock) GetItem(ctx context.Context, userID, id string) (*domain.OrderItem, error) {
	args := m.Called(ctx, userID, id)
	it, _ := args.Get(0).(*domain.OrderItem)
	return it, args.Error(1)
}

func (m *cartRepoMock) FindItem(ctx context.Context, userID, articleNumber, size string) (*domain.OrderItem, error) {
	args := m.Called(ctx, userID, articleNumber, size)
	it, _ := args.Get(0).(*domain.OrderItem)
	return it, args.Error(1)
}

func (m *cartRepoMock) UpsertItem(ctx context.Context, item *domain.OrderItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *cartRepoMock) UpdateItem(ctx context.Context, item *domain.OrderItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *cartRepoMock) DeleteItem(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *cartRepoMock) ClearItems(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// --- Favorites / idempotency ---

type favoriteRepoMock struct{ mock.Mock }

func (m *favoriteRepoMock) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	args := m.Called(ctx, userID)
	favs, _ := args.Get(0).([]domain.Favorite)
	return favs, args.Error(1)
}

func (m *favoriteRepoMock) AddFavorite(ctx context.Context, userID, articleNumber string) error {
	return m.Called(ctx, userID, articleNumber).Error(0)
}

func (m *favoriteRepoMock) AddFavorites(ctx context.Context, userID string, articleNumbers []string) (int, error) {
	args := m.Called(ctx, userID, articleNumbers)
	return args.Int(0), args.Error(1)
}

func (m *favoriteRepoMock) RemoveFavorite(ctx context.Context, userID, articleNumber string) error {
	return m.Called(ctx, userID, articleNumber).Error(0)
}

func (m *favoriteRepoMock) CountFavorites(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type idempotencyRepoMock struct{ mock.Mock }

func (m *idempotencyRepoMock) Claim(ctx context.Context, userID, scope, key string) (bool, error) {
	args := m.Called(ctx, userID, scope, key)
	return args.Bool(0), args.Error(1)
}

// --- Orders ---

type orderRepoMock struct{ mock.Mock }

func (m *orderRepoMock) CreateOrder(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *orderRepoMock) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *orderRepoMock) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) UpdateStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *orderRepoMock) CreateOrderHistory(ctx context.Context, history *domain.OrderHistory) error {
	return m.Called(ctx, history).Error(0)
}

func (m *orderRepoMock) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	args := m.Called(ctx, orderID)
	h, _ := args.Get(0).([]domain.OrderHistory)
	return h, args.Error(1)
}

func (m *orderRepoMock) LinkSession(ctx context.Context, sessionID, userID string) (int64, error) {
	args := m.Called(ctx, sessionID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) HasPurchased(ctx context.Context, userID, articleNumber string) (bool, error) {
	args := m.Called(ctx, userID, articleNumber)
	return args.Bool(0), args.Error(1)
}

// --- Reviews / users ---

type reviewRepoMock struct{ mock.Mock }

func (m *reviewRepoMock) CreateReview(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *reviewRepoMock) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*domain.Review)
	return r, args.Error(1)
}

func (m *reviewRepoMock) ListReviews(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, int64, error) {
	args := m.Called(ctx, filter)
	reviews, _ := args.Get(0).([]domain.Review)
	return reviews, args.Get(1).(int64), args.Error(2)
}

func (m *reviewRepoMock) UpdateReview(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *reviewRepoMock) DeleteReview(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *userRepoMock) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *userRepoMock) GetAll(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *userRepoMock) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
