package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Resolve() string { return string(s) }

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1", 2*time.Second, staticToken(token))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestListProducts_SendsFilterAndValidates(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products", r.URL.Path)
		assert.Equal(t, "36", r.URL.Query().Get("size"))
		assert.Equal(t, "true", r.URL.Query().Get("on_sale"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, domain.Page[domain.Product]{
			Data:       []domain.Product{{ArticleNumber: "KS-100", Name: "Sandal", Discount: 10}},
			Pagination: domain.NewPagination(2, 20, 21),
		})
	})

	page, err := client.ListProducts(context.Background(), ProductQuery{Size: "36", OnSale: true, Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "KS-100", page.Data[0].ArticleNumber)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestCall_RejectsResponseFailingSchema(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"articleNumber": "KS-1", "name": "Boot", "discount": 150,
		})
	})

	_, err := client.GetProduct(context.Background(), "KS-1")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	var verr *schema.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestBulkCart_RejectsMalformedResult(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"items":[{"articleNumber":"","size":"","quantity":-5}],`+
			`"skipped":[{"articleNumber":"","size":"","quantity":0,"reason":"gone"}],"merged":0}`)
	})

	_, err := client.BulkCart(context.Background(), "key-1", []domain.CartLine{{ArticleNumber: "KS-1", Size: "30", Quantity: 1}})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, strings.Join(fields, " "), "items[0].articleNumber")
}

func TestBulkFavorites_RejectsFavoriteWithoutArticle(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.BulkFavoritesResult{
			Favorites: []domain.Favorite{{ID: "f1", ArticleNumber: "KS-1"}, {ID: "f2"}},
			Added:     2,
		})
	})

	_, err := client.BulkFavorites(context.Background(), "key-1", []string{"KS-1", "KS-2"})
	assert.True(t, IsKind(err, KindValidation))
}

func TestAdminGetOrder_RejectsUnknownStatus(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.Order{ID: "o1", Status: "lost", PaymentMethod: "card",
			Delivery: domain.Delivery{Recipient: "A", Phone: "123456", City: "Kyiv", Method: "pickup"}})
	})

	_, err := client.AdminGetOrder(context.Background(), "o1")
	require.True(t, IsKind(err, KindValidation))
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "status", verr.Fields[0].Field)
	assert.Equal(t, "oneof", verr.Fields[0].Rule)
}

func TestCall_RejectsMalformedJSON(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "<html>oops</html>")
	})

	_, err := client.ListCategories(context.Background())
	assert.True(t, IsKind(err, KindValidation))
}

func TestListCategories_ValidatesEachElement(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.Category{{ID: 1, Name: "Sneakers"}, {ID: 2}})
	})

	_, err := client.ListCategories(context.Background())
	assert.True(t, IsKind(err, KindValidation))
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"Invalid token"}`, KindUnauthorized, "Invalid token"},
		{"forbidden", http.StatusForbidden, `{"error":"Admin access required"}`, KindUnauthorized, "Admin access required"},
		{"not found", http.StatusNotFound, `{"error":"Not found"}`, KindNotFound, "Not found"},
		{"bad request", http.StatusBadRequest, `{"message":"size is required"}`, KindValidation, "size is required"},
		{"conflict", http.StatusConflict, `{"error":"Insufficient stock"}`, KindValidation, "Insufficient stock"},
		{"rate limited", http.StatusTooManyRequests, `{"error":"Too many requests"}`, KindTransport, "Too many requests"},
		{"server error", http.StatusBadGateway, ``, KindTransport, "server error (502), please try again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.Me(context.Background())
			var gerr *Error
			require.True(t, errors.As(err, &gerr))
			assert.Equal(t, tt.kind, gerr.Kind)
			assert.Equal(t, tt.status, gerr.Status)
			assert.Equal(t, tt.message, gerr.Message)
		})
	}
}

func TestRequiredAuth_NoCredentialSendsNothing(t *testing.T) {
	var hits int32
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	_, err := client.ListFavorites(context.Background())
	assert.True(t, IsKind(err, KindUnauthorized))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := New(srv.URL, time.Second, staticToken("tok"))

	_, err := client.ListCart(context.Background())
	assert.True(t, IsKind(err, KindTransport))
	assert.True(t, Retryable(err))
}

func TestBulkCart_SendsKeyAndBearer(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/order-items/bulk", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "key-1", r.Header.Get(idempotencyHeader))

		var req domain.BulkCartRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []domain.CartLine{{ArticleNumber: "KS-1", Size: "30", Quantity: 2}}, req.Items)
		writeJSON(w, http.StatusOK, domain.BulkCartResult{Merged: 1})
	})

	res, err := client.BulkCart(context.Background(), "key-1", []domain.CartLine{{ArticleNumber: "KS-1", Size: "30", Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Merged)
}

func TestCreateOrder_OptionalAuth(t *testing.T) {
	handler := func(wantAuth string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, wantAuth, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusCreated, domain.Order{ID: "o1", Status: "new", PaymentMethod: "cash",
				Delivery: domain.Delivery{Recipient: "A", Phone: "123456", City: "Kyiv", Method: "pickup"}})
		}
	}
	req := domain.GuestOrderRequest{SessionID: "s1", Lines: []domain.CartLine{{ArticleNumber: "KS-1", Size: "30", Quantity: 1}}}

	guest := newTestClient(t, "", handler(""))
	_, err := guest.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	account := newTestClient(t, "tok", handler("Bearer tok"))
	_, err = account.CreateOrder(context.Background(), req)
	require.NoError(t, err)
}

func TestUploadImage_Multipart(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		assert.Equal(t, "boot.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		data, _ := io.ReadAll(file)
		assert.Equal(t, "png-bytes", string(data))
		writeJSON(w, http.StatusOK, domain.UploadResult{URL: "https://cdn.example.com/boot.webp"})
	})

	url, err := client.UploadImage(context.Background(), "boot.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/boot.webp", url)
}

func TestRemoveFavorite_EscapesArticle(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/favorites/KS%2F7", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.RemoveFavorite(context.Background(), "KS/7"))
}

func TestAdminGetReview_FetchesByID(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/admin/reviews/r%2F1", r.URL.EscapedPath())
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, domain.Review{ID: "r/1", ArticleNumber: "KS-1", AuthorName: "Ann", Rating: 5, Comment: "Fits well"})
	})

	review, err := client.AdminGetReview(context.Background(), "r/1")
	require.NoError(t, err)
	assert.Equal(t, "KS-1", review.ArticleNumber)
}
