package domain

// Request payloads shared by the HTTP handlers and the storefront gateway.

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"max=80"`
	LastName  string `json:"lastName" validate:"max=80"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate changes only the fields that are set.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,max=80"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,max=80"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

type AdminUserUpdate struct {
	ProfileUpdate
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Role  *string `json:"role,omitempty" validate:"omitempty,oneof=customer admin"`
}

// CartLineUpdate changes the size and/or quantity of a cart line.
type CartLineUpdate struct {
	Size     *string `json:"size,omitempty" validate:"omitempty,max=10"`
	Quantity *int    `json:"quantity,omitempty" validate:"omitempty,gte=1"`
}

type FavoriteRequest struct {
	ArticleNumber string `json:"articleNumber" validate:"required,max=32"`
}

// Bulk merge caps. They match the max rules on the request types below.
const (
	MaxBulkCartLines = 200
	MaxBulkFavorites = 500
)

type BulkCartRequest struct {
	Items []CartLine `json:"items" validate:"required,min=1,max=200,dive"`
}

type BulkFavoritesRequest struct {
	ArticleNumbers []string `json:"articleNumbers" validate:"required,min=1,max=500,dive,required,max=32"`
}

// CheckoutRequest places an order from the account cart.
type CheckoutRequest struct {
	Delivery      Delivery `json:"delivery"`
	PaymentMethod string   `json:"paymentMethod" validate:"required,oneof=card cash"`
	Comment       string   `json:"comment,omitempty" validate:"max=1000"`
}

// GuestOrderRequest places an order from lines held on the device.
type GuestOrderRequest struct {
	CheckoutRequest
	SessionID string     `json:"sessionId" validate:"omitempty,max=64"`
	Lines     []CartLine `json:"lines" validate:"required,min=1,max=200,dive"`
}

type StatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=new confirmed paid shipped delivered completed cancelled"`
	Note   string `json:"note,omitempty" validate:"max=500"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type ReviewUpdate struct {
	Rating      *int    `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	Comment     *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
	IsPublished *bool   `json:"isPublished,omitempty"`
}

// ImportResult summarises a spreadsheet upload.
type ImportResult struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors"`
}

type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type UploadResult struct {
	URL string `json:"url" validate:"required"`
}
