package gateway

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"kinderstep-backend/internal/domain"
)

// Catalog writes

func (c *Client) AdminListProducts(ctx context.Context, q ProductQuery, isActive *bool) (domain.Page[domain.Product], error) {
	v := q.values()
	if isActive != nil {
		v.Set("isActive", strconv.FormatBool(*isActive))
	}
	return call[domain.Page[domain.Product]](ctx, c, request{
		method: http.MethodGet, path: "/admin/products", query: v, auth: required, validate: true,
	})
}

func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	return call[domain.Product](ctx, c, request{
		method: http.MethodPost, path: "/products", auth: required, body: p, validate: true,
	})
}

func (c *Client) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	return call[domain.Product](ctx, c, request{
		method: http.MethodPut, path: "/product/" + escape(p.ArticleNumber), auth: required, body: p, validate: true,
	})
}

func (c *Client) DeleteProduct(ctx context.Context, articleNumber string) error {
	return exec(ctx, c, request{method: http.MethodDelete, path: "/product/" + escape(articleNumber), auth: required})
}

func (c *Client) CreateCategory(ctx context.Context, cat domain.Category) (domain.Category, error) {
	return call[domain.Category](ctx, c, request{
		method: http.MethodPost, path: "/categories", auth: required, body: cat, validate: true,
	})
}

func (c *Client) UpdateCategory(ctx context.Context, cat domain.Category) (domain.Category, error) {
	return call[domain.Category](ctx, c, request{
		method: http.MethodPut, path: "/categories/" + strconv.Itoa(int(cat.ID)), auth: required, body: cat, validate: true,
	})
}

func (c *Client) DeleteCategory(ctx context.Context, id int32) error {
	return exec(ctx, c, request{method: http.MethodDelete, path: "/categories/" + strconv.Itoa(int(id)), auth: required})
}

func (c *Client) CreateBrand(ctx context.Context, b domain.Brand) (domain.Brand, error) {
	return call[domain.Brand](ctx, c, request{
		method: http.MethodPost, path: "/brands", auth: required, body: b, validate: true,
	})
}

func (c *Client) UpdateBrand(ctx context.Context, b domain.Brand) (domain.Brand, error) {
	return call[domain.Brand](ctx, c, request{
		method: http.MethodPut, path: "/brands/" + strconv.Itoa(int(b.ID)), auth: required, body: b, validate: true,
	})
}

func (c *Client) DeleteBrand(ctx context.Context, id int32) error {
	return exec(ctx, c, request{method: http.MethodDelete, path: "/brands/" + strconv.Itoa(int(id)), auth: required})
}

// Users

func (c *Client) AdminListUsers(ctx context.Context, page, limit int) (domain.Page[domain.User], error) {
	v := url.Values{}
	setPage(v, page, limit)
	return call[domain.Page[domain.User]](ctx, c, request{
		method: http.MethodGet, path: "/admin/users", query: v, auth: required, validate: true,
	})
}

func (c *Client) AdminGetUser(ctx context.Context, id string) (domain.User, error) {
	return call[domain.User](ctx, c, request{
		method: http.MethodGet, path: "/admin/users/" + escape(id), auth: required, validate: true,
	})
}

func (c *Client) AdminUpdateUser(ctx context.Context, id string, req domain.AdminUserUpdate) (domain.User, error) {
	return call[domain.User](ctx, c, request{
		method: http.MethodPut, path: "/admin/users/" + escape(id), auth: required, body: req, validate: true,
	})
}

func (c *Client) AdminDeleteUser(ctx context.Context, id string) error {
	return exec(ctx, c, request{method: http.MethodDelete, path: "/admin/users/" + escape(id), auth: required})
}

// Orders

type OrderQuery struct {
	Status string
	Search string
	UserID string
	Page   int
	Limit  int
}

func (c *Client) AdminListOrders(ctx context.Context, q OrderQuery) (domain.Page[domain.Order], error) {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.UserID != "" {
		v.Set("user_id", q.UserID)
	}
	setPage(v, q.Page, q.Limit)
	return call[domain.Page[domain.Order]](ctx, c, request{
		method: http.MethodGet, path: "/admin/orders", query: v, auth: required, validate: true,
	})
}

func (c *Client) AdminGetOrder(ctx context.Context, id string) (domain.Order, error) {
	return call[domain.Order](ctx, c, request{
		method: http.MethodGet, path: "/admin/orders/" + escape(id), auth: required, validate: true,
	})
}

func (c *Client) AdminUpdateOrderStatus(ctx context.Context, id string, req domain.StatusUpdate) (domain.Order, error) {
	return call[domain.Order](ctx, c, request{
		method: http.MethodPatch, path: "/admin/orders/" + escape(id) + "/status", auth: required, body: req, validate: true,
	})
}

func (c *Client) AdminOrderHistory(ctx context.Context, id string) ([]domain.OrderHistory, error) {
	return callList[domain.OrderHistory](ctx, c, request{
		method: http.MethodGet, path: "/admin/orders/" + escape(id) + "/history", auth: required,
	})
}

// Reviews

func (c *Client) AdminListReviews(ctx context.Context, articleNumber string, published *bool, page, limit int) (domain.Page[domain.Review], error) {
	v := url.Values{}
	if articleNumber != "" {
		v.Set("article", articleNumber)
	}
	if published != nil {
		v.Set("published", strconv.FormatBool(*published))
	}
	setPage(v, page, limit)
	return call[domain.Page[domain.Review]](ctx, c, request{
		method: http.MethodGet, path: "/admin/reviews", query: v, auth: required, validate: true,
	})
}

func (c *Client) AdminGetReview(ctx context.Context, id string) (domain.Review, error) {
	return call[domain.Review](ctx, c, request{
		method: http.MethodGet, path: "/admin/reviews/" + escape(id), auth: required, validate: true,
	})
}

func (c *Client) AdminUpdateReview(ctx context.Context, id string, req domain.ReviewUpdate) (domain.Review, error) {
	return call[domain.Review](ctx, c, request{
		method: http.MethodPut, path: "/admin/reviews/" + escape(id), auth: required, body: req, validate: true,
	})
}

func (c *Client) AdminDeleteReview(ctx context.Context, id string) error {
	return exec(ctx, c, request{method: http.MethodDelete, path: "/admin/reviews/" + escape(id), auth: required})
}

// Reports and uploads

// GenerateReport downloads the products and orders workbook.
func (c *Client) GenerateReport(ctx context.Context) ([]byte, error) {
	resp, err := c.send(ctx, request{method: http.MethodGet, path: "/generate-report", auth: required})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Status: resp.StatusCode, Message: defaultMessage(KindTransport, 0), Err: err}
	}
	return data, nil
}

// UploadExcel imports the Products sheet of an .xlsx workbook.
func (c *Client) UploadExcel(ctx context.Context, filename string, r io.Reader) (domain.ImportResult, error) {
	body, ctype, err := multipartFile(filename, "", r)
	if err != nil {
		return domain.ImportResult{}, &Error{Kind: KindValidation, Message: "could not read file", Err: err}
	}
	return call[domain.ImportResult](ctx, c, request{
		method: http.MethodPost, path: "/upload-excel", auth: required, raw: body, ctype: ctype,
	})
}

// UploadImage stores a product image and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	body, ctype, err := multipartFile(filename, contentType, r)
	if err != nil {
		return "", &Error{Kind: KindValidation, Message: "could not read file", Err: err}
	}
	res, err := call[domain.UploadResult](ctx, c, request{
		method: http.MethodPost, path: "/upload", auth: required, raw: body, ctype: ctype, validate: true,
	})
	return res.URL, err
}
