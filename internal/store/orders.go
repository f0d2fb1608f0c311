package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lumiere-backend/internal/models"
)

// ErrEmptyCart signals that order creation found no cart lines for the
// session. No order artifact exists when it is returned.
var ErrEmptyCart = errors.New("cart is empty")

// CreateOrderFromCart converts the session's cart into an order inside a
// single transaction: lock and read the cart joined with products, freeze
// the total and per-line unit prices, insert the order header and items,
// then clear the cart. Any failure rolls the whole sequence back, leaving
// the cart untouched and no order visible.
//
// The FOR UPDATE lock on the cart rows serializes concurrent createOrder
// calls for the same session, so a duplicated cart read cannot charge twice.
func (s *Store) CreateOrderFromCart(ctx context.Context, order *models.Order) ([]models.OrderItem, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lines := []models.CartLine{}
	err = tx.SelectContext(ctx, &lines, cartLineSelect+`
		WHERE ci.session_id = $1 ORDER BY ci.id FOR UPDATE OF ci`, order.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	order.TotalAmount = models.CartTotal(lines)
	order.Status = models.OrderStatusPending

	err = tx.GetContext(ctx, order, `
		INSERT INTO orders (session_id, total_amount, currency, shipping_address, billing_address,
			customer_email, customer_phone, payment_intent_id, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		order.SessionID, order.TotalAmount, order.Currency, order.ShippingAddress,
		order.BillingAddress, order.CustomerEmail, order.CustomerPhone,
		order.PaymentIntentID, order.Status, order.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, ln := range lines {
		item := models.OrderItem{
			OrderID:      order.ID,
			ProductID:    ln.ProductID,
			ProductName:  ln.ProductName,
			ProductImage: ln.ProductImage,
			Quantity:     ln.Quantity,
			UnitPrice:    ln.ProductPrice,
		}
		err = tx.GetContext(ctx, &item.ID, `
			INSERT INTO order_items (order_id, product_id, product_name, product_image, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			item.OrderID, item.ProductID, item.ProductName, item.ProductImage,
			item.Quantity, item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		items = append(items, item)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM cart_items WHERE session_id = $1", order.SessionID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByIdempotencyKey retrieves an order by idempotency key, or nil
// when the key has not been seen.
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE idempotency_key = $1", key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersBySession retrieves the session's orders, oldest first
func (s *Store) GetOrdersBySession(ctx context.Context, sessionID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE session_id = $1 ORDER BY created_at ASC", sessionID)
	return orders, err
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// UpdateOrderStatus updates order status and, when given, the payment
// intent reference. The total is never touched here.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status, paymentIntentID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
			payment_intent_id = CASE WHEN $2 <> '' THEN $2 ELSE payment_intent_id END,
			updated_at = NOW()
		WHERE id = $3`,
		status, paymentIntentID, orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return nil
}

// CreateContactSubmission persists a write-once contact record
func (s *Store) CreateContactSubmission(ctx context.Context, submission *models.ContactSubmission) error {
	query := `
		INSERT INTO contact_submissions (name, email, subject, message, phone, is_consultation, preferred_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, submission, query,
		submission.Name, submission.Email, submission.Subject, submission.Message,
		submission.Phone, submission.IsConsultation, submission.PreferredDate)
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}

// RecordOrderEvent appends an event to the order audit trail
func (s *Store) RecordOrderEvent(ctx context.Context, eventID, eventType string, orderID int64, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO order_events (event_id, event_type, order_id, payload) VALUES ($1, $2, $3, $4)",
		eventID, eventType, orderID, payload)
	return err
}
