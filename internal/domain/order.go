package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderFilter struct {
	Page   int
	Limit  int
	Status string
	Search string
	UserID string
}

type Delivery struct {
	Recipient string `json:"recipient" validate:"required,max=120"`
	Phone     string `json:"phone" validate:"required,min=6,max=20"`
	Email     string `json:"email" validate:"omitempty,email"`
	City      string `json:"city" validate:"required,max=80"`
	Address   string `json:"address" validate:"required_unless=Method pickup,max=255"`
	Method    string `json:"method" validate:"required,oneof=courier pickup post"`
}

// OrderLine snapshots price and discount at the time the order was placed.
type OrderLine struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"orderId"`
	ArticleNumber string          `json:"articleNumber" validate:"required"`
	Size          string          `json:"size" validate:"required"`
	Quantity      int             `json:"quantity" validate:"gte=1"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Discount      int             `json:"discount"`
	Name          string          `json:"name"`
}

type Order struct {
	ID            string          `json:"id"`
	UserID        *string         `json:"userId"`
	SessionID     string          `json:"sessionId,omitempty"`
	Status        string          `json:"status" validate:"required,oneof=new confirmed paid shipped delivered completed cancelled"`
	Total         decimal.Decimal `json:"total"`
	Delivery      Delivery        `json:"delivery"`
	PaymentMethod string          `json:"paymentMethod" validate:"required,oneof=card cash"`
	Comment       string          `json:"comment,omitempty"`
	Lines         []OrderLine     `json:"lines" validate:"dive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type OrderHistory struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	PreviousStatus *string   `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	Note           *string   `json:"note"`
	CreatedBy      *string   `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByUserID(ctx context.Context, userID string) ([]Order, error)
	GetAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, id, status string) error
	CreateOrderHistory(ctx context.Context, history *OrderHistory) error
	GetOrderHistory(ctx context.Context, orderID string) ([]OrderHistory, error)
	// LinkSession attaches guest orders placed under sessionID to the user.
	LinkSession(ctx context.Context, sessionID, userID string) (int64, error)
	HasPurchased(ctx context.Context, userID, articleNumber string) (bool, error)
}
