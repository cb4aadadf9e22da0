package order

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhajavat-web/efvb/internal/catalog"
)

var (
	// ErrNotFound is returned for an unknown order id.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidSignature is returned when a payment callback's
	// signature does not match.
	ErrInvalidSignature = errors.New("invalid payment signature")

	// ErrEmptyOrder is returned when an order carries no items.
	ErrEmptyOrder = errors.New("order has no items")
)

const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusShipped   = "SHIPPED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

// Customer is the checkout contact and shipping address, denormalized
// onto the order.
type Customer struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required"`
}

// Item is a priced order line, captured at the price in effect when
// the order was placed.
type Item struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Type      string  `json:"type"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// TimelineEvent records one status transition.
type TimelineEvent struct {
	Status string    `json:"status"`
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"at"`
}

// Order is a placed order with its full status history.
type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	Customer  Customer        `json:"customer"`
	Items     []Item          `json:"items"`
	Amount    float64         `json:"amount"`
	Status    string          `json:"status"`
	AWB       string          `json:"awb,omitempty"`
	Timeline  []TimelineEvent `json:"timeline"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewOrderID returns a customer-facing order id. The short suffix is
// what support staff read back over the phone.
func NewOrderID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:12]
	return "ORD-" + suffix
}

// HasPhysicalItems reports whether any line needs shipment.
func (o *Order) HasPhysicalItems() bool {
	for _, it := range o.Items {
		if !catalog.IsDigital(it.Type) {
			return true
		}
	}
	return false
}
