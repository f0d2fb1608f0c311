package store

import (
	"context"
	"database/sql"
	"fmt"

	"lumiere-backend/internal/models"
)

const cartLineSelect = `
	SELECT ci.*, p.name AS product_name, p.price AS product_price, p.image_url AS product_image
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id`

// GetCartItems retrieves the session's cart lines joined with current
// product data, in insertion order.
func (s *Store) GetCartItems(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := s.db.SelectContext(ctx, &lines,
		cartLineSelect+" WHERE ci.session_id = $1 ORDER BY ci.id", sessionID)
	return lines, err
}

// GetCartItemByID retrieves a single cart line scoped to the session, so a
// caller can never address another session's line.
func (s *Store) GetCartItemByID(ctx context.Context, sessionID string, itemID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.GetContext(ctx, &item,
		"SELECT * FROM cart_items WHERE id = $1 AND session_id = $2", itemID, sessionID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddCartItem creates a cart line or merges the quantity into an existing
// line for the same product. One line per product per session.
func (s *Store) AddCartItem(ctx context.Context, item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (session_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity, created_at`

	return s.db.GetContext(ctx, item, query,
		item.SessionID, item.ProductID, item.Quantity)
}

// UpdateCartItemQuantity sets a line's quantity
func (s *Store) UpdateCartItemQuantity(ctx context.Context, sessionID string, itemID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE id = $2 AND session_id = $3",
		quantity, itemID, sessionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
	}
	return nil
}

// DeleteCartItem deletes a single line. Deleting a missing line is a no-op.
func (s *Store) DeleteCartItem(ctx context.Context, sessionID string, itemID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id = $1 AND session_id = $2", itemID, sessionID)
	return err
}

// ClearCart deletes all lines for the session
func (s *Store) ClearCart(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE session_id = $1", sessionID)
	return err
}
