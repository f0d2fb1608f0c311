package models

import "time"

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeContactReceived    = "CONTACT_RECEIVED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when a cart is converted into an order
type OrderPlacedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	SessionID   string          `json:"session_id"`
	TotalAmount string          `json:"total_amount"`
	Currency    string          `json:"currency"`
	Items       []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published on every status transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID   int64  `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// ContactReceivedEvent published when a contact submission is stored.
// Notification fan-out is an external consumer's concern.
type ContactReceivedEvent struct {
	BaseEvent
	SubmissionID   int64  `json:"submission_id"`
	Email          string `json:"email"`
	IsConsultation bool   `json:"is_consultation"`
}

// OrderItemData represents item data in events. Unit price travels as a
// decimal string to keep the snapshot exact.
type OrderItemData struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}
