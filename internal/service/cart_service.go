package service

import (
	"context"
	"errors"

	"lumiere-backend/internal/models"
	"lumiere-backend/internal/store"
	"lumiere-backend/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartService handles session-scoped cart mutations
type CartService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store *store.Store) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CartView is the cart joined with current product data plus a display
// subtotal. The subtotal is informational; the charged amount is frozen at
// order creation.
type CartView struct {
	Items    []models.CartLine `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

// GetCart retrieves the session's cart
func (cs *CartService) GetCart(ctx context.Context, sessionID string) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	lines, err := cs.store.GetCartItems(ctx, sessionID)
	if err != nil {
		return nil, Internal(err)
	}

	return &CartView{
		Items:    lines,
		Subtotal: models.CartTotal(lines),
	}, nil
}

// AddItem adds quantity of a product to the session's cart, merging into an
// existing line for the same product.
func (cs *CartService) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	if quantity < 1 {
		return nil, Validation("quantity must be a positive integer")
	}

	product, err := cs.store.GetProductByID(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("product not found")
	}
	if err != nil {
		return nil, Internal(err)
	}
	if !product.IsActive {
		return nil, Validation("product is not available")
	}

	item := &models.CartItem{
		SessionID: sessionID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := cs.store.AddCartItem(ctx, item); err != nil {
		return nil, Internal(err)
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	cs.logger.Info("Cart item added",
		zap.String("session_id", sessionID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", item.Quantity))

	return item, nil
}

// UpdateQuantity sets a line's quantity. A quantity of zero or less removes
// the line so a client can decrement straight to empty.
func (cs *CartService) UpdateQuantity(ctx context.Context, sessionID string, itemID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateQuantity")
	defer span.End()

	if quantity <= 0 {
		if err := cs.store.DeleteCartItem(ctx, sessionID, itemID); err != nil {
			return Internal(err)
		}
		util.CartMutationsTotal.WithLabelValues("remove").Inc()
		return nil
	}

	err := cs.store.UpdateCartItemQuantity(ctx, sessionID, itemID, quantity)
	if errors.Is(err, store.ErrNotFound) {
		return NotFound("cart item not found")
	}
	if err != nil {
		return Internal(err)
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	return nil
}

// RemoveItem deletes a single line. Removing a missing line is a no-op.
func (cs *CartService) RemoveItem(ctx context.Context, sessionID string, itemID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveItem")
	defer span.End()

	if err := cs.store.DeleteCartItem(ctx, sessionID, itemID); err != nil {
		return Internal(err)
	}
	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	return nil
}

// ClearCart deletes all lines for the session
func (cs *CartService) ClearCart(ctx context.Context, sessionID string) error {
	ctx, span := util.StartSpan(ctx, "CartService.ClearCart")
	defer span.End()

	if err := cs.store.ClearCart(ctx, sessionID); err != nil {
		return Internal(err)
	}
	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	return nil
}
