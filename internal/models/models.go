package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Category is static reference data for the catalog
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

// Product represents a catalog product. The storefront only reads products;
// catalog management writes them out-of-band.
type Product struct {
	ID            int64           `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Description   string          `db:"description" json:"description"`
	Price         decimal.Decimal `db:"price" json:"price"`
	StockQuantity int             `db:"stock_quantity" json:"stock_quantity"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	IsFeatured    bool            `db:"is_featured" json:"is_featured"`
	CategoryID    int64           `db:"category_id" json:"category_id"`
	Materials     pq.StringArray  `db:"materials" json:"materials"`
	Gemstones     pq.StringArray  `db:"gemstones" json:"gemstones"`
	ImageURL      string          `db:"image_url" json:"image_url"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// ProductWithCategory is a product joined with its category for detail views
type ProductWithCategory struct {
	Product
	CategoryName string `db:"category_name" json:"category_name"`
	CategorySlug string `db:"category_slug" json:"category_slug"`
}

// CartItem represents a session-scoped cart line
type CartItem struct {
	ID        int64     `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"-"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CartLine is a cart item joined with current product data. The joined price
// is for display; the charged price is snapshotted at order creation.
type CartLine struct {
	CartItem
	ProductName  string          `db:"product_name" json:"product_name"`
	ProductPrice decimal.Decimal `db:"product_price" json:"product_price"`
	ProductImage string          `db:"product_image" json:"product_image"`
}

// Order represents a customer order. TotalAmount is frozen at creation and
// never recomputed from the catalog.
type Order struct {
	ID              int64           `db:"id" json:"id"`
	SessionID       string          `db:"session_id" json:"-"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	Currency        string          `db:"currency" json:"currency"`
	ShippingAddress string          `db:"shipping_address" json:"shipping_address"`
	BillingAddress  string          `db:"billing_address" json:"billing_address"`
	CustomerEmail   string          `db:"customer_email" json:"customer_email"`
	CustomerPhone   string          `db:"customer_phone" json:"customer_phone"`
	PaymentIntentID string          `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	Status          string          `db:"status" json:"status"`
	IdempotencyKey  string          `db:"idempotency_key" json:"-"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderItem carries the unit price and product presentation snapshotted at
// order-creation time, independent of later catalog edits.
type OrderItem struct {
	ID           int64           `db:"id" json:"id"`
	OrderID      int64           `db:"order_id" json:"order_id"`
	ProductID    int64           `db:"product_id" json:"product_id"`
	ProductName  string          `db:"product_name" json:"product_name"`
	ProductImage string          `db:"product_image" json:"product_image"`
	Quantity     int             `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
}

// ContactSubmission is a write-once contact-form record
type ContactSubmission struct {
	ID             int64      `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Email          string     `db:"email" json:"email"`
	Subject        string     `db:"subject" json:"subject"`
	Message        string     `db:"message" json:"message"`
	Phone          string     `db:"phone" json:"phone,omitempty"`
	IsConsultation bool       `db:"is_consultation" json:"is_consultation"`
	PreferredDate  *time.Time `db:"preferred_date" json:"preferred_date,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

var statusRank = map[string]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

// ValidOrderStatus reports whether s is one of the five enumerated statuses.
func ValidOrderStatus(s string) bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
// The lifecycle is one-directional; cancellation is only reachable before
// shipment. Setting the same status again is a no-op and allowed.
func CanTransition(from, to string) bool {
	if !ValidOrderStatus(from) || !ValidOrderStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	if from == OrderStatusCancelled {
		return false
	}
	if to == OrderStatusCancelled {
		return from == OrderStatusPending || from == OrderStatusProcessing
	}
	return statusRank[to] > statusRank[from]
}

// CartTotal sums current price times quantity across cart lines.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, ln := range lines {
		total = total.Add(ln.ProductPrice.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	return total
}

// OrderItemsTotal sums snapshotted unit price times quantity.
func OrderItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// ProcessedEvent guards the audit consumer against event redelivery
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}

// OrderEvent is the audit-trail row written by the events worker
type OrderEvent struct {
	ID         int64     `db:"id"`
	EventID    string    `db:"event_id"`
	EventType  string    `db:"event_type"`
	OrderID    int64     `db:"order_id"`
	Payload    []byte    `db:"payload"`
	RecordedAt time.Time `db:"recorded_at"`
}
