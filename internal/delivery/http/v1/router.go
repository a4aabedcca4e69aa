package v1

import (
	"net/http"

	"kinderstep-backend/internal/delivery/http/middleware"
)

// Handlers groups every handler mounted under /api/v1.
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Catalog      *CatalogHandler
	AdminCatalog *AdminCatalogHandler
	Favorite     *FavoriteHandler
	Cart         *CartHandler
	Order        *OrderHandler
	AdminOrder   *AdminOrderHandler
	AdminReview  *AdminReviewHandler
	Report       *ReportHandler
	Upload       *UploadHandler
	Sitemap      *SitemapHandler
}

// RegisterRoutes mounts the storefront API on mux.
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	user := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(fn))
	}

	// Catalog (Public)
	mux.Handle("GET /sitemap.xml", h.Sitemap)
	mux.HandleFunc("GET /api/v1/products", h.Catalog.ListProducts)
	mux.HandleFunc("GET /api/v1/product/{articleNumber}", h.Catalog.GetProduct)
	mux.HandleFunc("GET /api/v1/categories", h.Catalog.GetCategories)
	mux.HandleFunc("GET /api/v1/brands", h.Catalog.GetBrands)
	mux.HandleFunc("GET /api/v1/products/{articleNumber}/reviews", h.Catalog.ListReviews)
	mux.Handle("POST /api/v1/products/{articleNumber}/reviews", user(h.Catalog.AddReview))

	// Catalog (Admin)
	mux.Handle("GET /api/v1/admin/products", admin(h.AdminCatalog.ListProducts))
	mux.Handle("POST /api/v1/products", admin(h.AdminCatalog.CreateProduct))
	mux.Handle("PUT /api/v1/product/{articleNumber}", admin(h.AdminCatalog.UpdateProduct))
	mux.Handle("DELETE /api/v1/product/{articleNumber}", admin(h.AdminCatalog.DeleteProduct))
	mux.Handle("POST /api/v1/categories", admin(h.AdminCatalog.CreateCategory))
	mux.Handle("PUT /api/v1/categories/{id}", admin(h.AdminCatalog.UpdateCategory))
	mux.Handle("DELETE /api/v1/categories/{id}", admin(h.AdminCatalog.DeleteCategory))
	mux.Handle("POST /api/v1/brands", admin(h.AdminCatalog.CreateBrand))
	mux.Handle("PUT /api/v1/brands/{id}", admin(h.AdminCatalog.UpdateBrand))
	mux.Handle("DELETE /api/v1/brands/{id}", admin(h.AdminCatalog.DeleteBrand))

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Auth.Logout)

	// Current user
	mux.Handle("GET /api/v1/user", user(h.User.Me))
	mux.Handle("PUT /api/v1/user", user(h.User.UpdateProfile))
	mux.Handle("DELETE /api/v1/user", user(h.User.DeleteMe))

	// Favorites
	mux.Handle("GET /api/v1/favorites", user(h.Favorite.List))
	mux.Handle("POST /api/v1/favorites", user(h.Favorite.Add))
	mux.Handle("GET /api/v1/favorites/count", user(h.Favorite.Count))
	mux.Handle("POST /api/v1/favorites/bulk", user(h.Favorite.Bulk))
	mux.Handle("DELETE /api/v1/favorites/{articleNumber}", user(h.Favorite.Remove))

	// Account cart
	mux.Handle("GET /api/v1/order-items", user(h.Cart.List))
	mux.Handle("POST /api/v1/order-items", user(h.Cart.Add))
	mux.Handle("DELETE /api/v1/order-items", user(h.Cart.Clear))
	mux.Handle("POST /api/v1/order-items/bulk", user(h.Cart.Bulk))
	mux.Handle("PUT /api/v1/order-items/{id}", user(h.Cart.Update))
	mux.Handle("DELETE /api/v1/order-items/{id}", user(h.Cart.Delete))

	// Orders
	mux.Handle("GET /api/v1/orders", user(h.Order.ListMine))
	mux.Handle("POST /api/v1/orders", middleware.OptionalAuthMiddleware(http.HandlerFunc(h.Order.CreateOrder)))
	mux.Handle("POST /api/v1/orders/checkout", user(h.Order.Checkout))
	mux.Handle("PATCH /api/v1/orders/sync", user(h.Order.SyncSession))

	// Admin users
	mux.Handle("GET /api/v1/admin/users", admin(h.User.ListUsers))
	mux.Handle("GET /api/v1/admin/users/{id}", admin(h.User.GetUser))
	mux.Handle("PUT /api/v1/admin/users/{id}", admin(h.User.UpdateUser))
	mux.Handle("DELETE /api/v1/admin/users/{id}", admin(h.User.DeleteUser))

	// Admin orders
	mux.Handle("GET /api/v1/admin/orders", admin(h.AdminOrder.ListOrders))
	mux.Handle("GET /api/v1/admin/orders/{id}", admin(h.AdminOrder.GetOrder))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/status", admin(h.AdminOrder.UpdateStatus))
	mux.Handle("GET /api/v1/admin/orders/{id}/history", admin(h.AdminOrder.GetHistory))

	// Admin reviews
	mux.Handle("GET /api/v1/admin/reviews", admin(h.AdminReview.ListReviews))
	mux.Handle("GET /api/v1/admin/reviews/{id}", admin(h.AdminReview.GetReview))
	mux.Handle("PUT /api/v1/admin/reviews/{id}", admin(h.AdminReview.UpdateReview))
	mux.Handle("DELETE /api/v1/admin/reviews/{id}", admin(h.AdminReview.DeleteReview))

	// Admin tools
	mux.Handle("GET /api/v1/generate-report", admin(h.Report.GenerateReport))
	mux.Handle("POST /api/v1/upload-excel", admin(h.Report.UploadExcel))
	mux.Handle("POST /api/v1/upload", admin(h.Upload.UploadFile))
}
