package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lumiere-backend/internal/broker"
	"lumiere-backend/internal/models"
	"lumiere-backend/internal/store"
	"lumiere-backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService converts session carts into durable orders and manages the
// order lifecycle.
type OrderService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	currency       string
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, eventPublisher *broker.EventPublisher, currency string) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		currency:       currency,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"required"`
	BillingAddress  string `json:"billing_address"`
	CustomerEmail   string `json:"customer_email" binding:"required,email"`
	CustomerPhone   string `json:"customer_phone"`
	PaymentIntentID string `json:"payment_intent_id"`
	IdempotencyKey  string `json:"idempotency_key,omitempty"`
}

// OrderResponse is an order header with its items
type OrderResponse struct {
	Order *models.Order      `json:"order"`
	Items []models.OrderItem `json:"items"`
}

// CreateOrder converts the session's cart into an order. The cart read,
// price snapshot, order and item inserts, and cart clearing run in one
// database transaction, so a mid-sequence failure leaves no order behind
// and the cart intact. The unit prices and total written here are final;
// later catalog edits never change them.
func (os *OrderService) CreateOrder(ctx context.Context, sessionID string, req *CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	existing, err := os.store.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, Internal(fmt.Errorf("failed to check idempotency: %w", err))
	}
	if existing != nil {
		os.logger.Info("Duplicate order request detected",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.Int64("order_id", existing.ID))
		items, err := os.store.GetOrderItemsByOrderID(ctx, existing.ID)
		if err != nil {
			return nil, Internal(err)
		}
		return &OrderResponse{Order: existing, Items: items}, nil
	}

	billing := req.BillingAddress
	if billing == "" {
		billing = req.ShippingAddress
	}

	order := &models.Order{
		SessionID:       sessionID,
		Currency:        os.currency,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		PaymentIntentID: req.PaymentIntentID,
		IdempotencyKey:  req.IdempotencyKey,
	}

	items, err := os.store.CreateOrderFromCart(ctx, order)
	if errors.Is(err, store.ErrEmptyCart) {
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, Validation("cart is empty")
	}
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, Internal(fmt.Errorf("failed to create order: %w", err))
	}

	util.OrdersCreatedTotal.Inc()
	os.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.String("session_id", sessionID),
		zap.String("total", order.TotalAmount.String()))

	os.publishOrderPlaced(ctx, order, items)

	return &OrderResponse{Order: order, Items: items}, nil
}

func (os *OrderService) publishOrderPlaced(ctx context.Context, order *models.Order, items []models.OrderItem) {
	if os.eventPublisher == nil {
		return
	}

	eventItems := make([]models.OrderItemData, 0, len(items))
	for _, it := range items {
		eventItems = append(eventItems, models.OrderItemData{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.String(),
		})
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		SessionID:   order.SessionID,
		TotalAmount: order.TotalAmount.String(),
		Currency:    order.Currency,
		Items:       eventItems,
	}

	if err := os.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		os.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}
}

// GetOrder retrieves an order with its snapshotted items, scoped to the
// calling session.
func (os *OrderService) GetOrder(ctx context.Context, sessionID string, orderID int64) (*OrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	order, err := os.store.GetOrderByID(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("order not found")
	}
	if err != nil {
		return nil, Internal(err)
	}
	if order.SessionID != sessionID {
		// Another session's order is indistinguishable from a missing one.
		return nil, NotFound("order not found")
	}

	items, err := os.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, Internal(err)
	}

	return &OrderResponse{Order: order, Items: items}, nil
}

// ListOrders retrieves the session's orders, oldest first
func (os *OrderService) ListOrders(ctx context.Context, sessionID string) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := os.store.GetOrdersBySession(ctx, sessionID)
	if err != nil {
		return nil, Internal(err)
	}
	return orders, nil
}

// UpdateStatus applies a status transition. Unknown statuses and backward
// moves are rejected without touching the stored order; cancellation is
// only reachable before shipment.
func (os *OrderService) UpdateStatus(ctx context.Context, orderID int64, newStatus, paymentIntentID string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !models.ValidOrderStatus(newStatus) {
		return nil, Validation(fmt.Sprintf("invalid status %q", newStatus))
	}

	order, err := os.store.GetOrderByID(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("order not found")
	}
	if err != nil {
		return nil, Internal(err)
	}

	if !models.CanTransition(order.Status, newStatus) {
		return nil, Validation(fmt.Sprintf("cannot transition order from %q to %q", order.Status, newStatus))
	}

	oldStatus := order.Status
	if err := os.store.UpdateOrderStatus(ctx, orderID, newStatus, paymentIntentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFound("order not found")
		}
		return nil, Internal(err)
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(newStatus).Inc()
	os.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", oldStatus),
		zap.String("to", newStatus))

	if os.eventPublisher != nil && oldStatus != newStatus {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderStatusChanged,
				Timestamp: time.Now(),
			},
			OrderID:   orderID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
		}
		if err := os.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
			os.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
		}
	}

	updated, err := os.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, Internal(err)
	}
	return updated, nil
}
