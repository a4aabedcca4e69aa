package domain

// Order Statuses
const (
	OrderStatusNew       = "new"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Payment Methods
const (
	PaymentMethodCard = "card"
	PaymentMethodCash = "cash"
)

// Delivery Methods
const (
	DeliveryCourier = "courier"
	DeliveryPickup  = "pickup"
	DeliveryPost    = "post"
)

// Roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Idempotency scopes for bulk submissions.
const (
	ScopeCartBulk      = "order-items/bulk"
	ScopeFavoritesBulk = "favorites/bulk"
)

var OrderStatuses = []string{
	OrderStatusNew,
	OrderStatusConfirmed,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

var PaymentMethods = []string{
	PaymentMethodCard,
	PaymentMethodCash,
}

var DeliveryMethods = []string{
	DeliveryCourier,
	DeliveryPickup,
	DeliveryPost,
}

// IsValidOrderStatus reports whether s is one of OrderStatuses.
func IsValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}
