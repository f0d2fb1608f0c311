package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartTotal(t *testing.T) {
	lines := []CartLine{
		{
			CartItem:     CartItem{ProductID: 1, Quantity: 2},
			ProductPrice: decimal.RequireFromString("90.00"),
		},
		{
			CartItem:     CartItem{ProductID: 2, Quantity: 1},
			ProductPrice: decimal.RequireFromString("1250.50"),
		},
	}

	total := CartTotal(lines)

	assert.True(t, decimal.RequireFromString("1430.50").Equal(total),
		"expected 1430.50, got %s", total)
}

func TestCartTotalEmpty(t *testing.T) {
	assert.True(t, CartTotal(nil).IsZero())
}

func TestCartTotalSingleLine(t *testing.T) {
	// Product at $90.00, quantity 2 => $180.00
	lines := []CartLine{
		{
			CartItem:     CartItem{ProductID: 7, Quantity: 2},
			ProductPrice: decimal.RequireFromString("90.00"),
		},
	}

	assert.Equal(t, "180", CartTotal(lines).String())
}

func TestOrderItemsTotalMatchesSnapshot(t *testing.T) {
	items := []OrderItem{
		{Quantity: 2, UnitPrice: decimal.RequireFromString("90.00")},
		{Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")},
	}

	assert.True(t, decimal.RequireFromString("239.97").Equal(OrderItemsTotal(items)))
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
		assert.True(t, ValidOrderStatus(s), s)
	}
	for _, s := range []string{"", "PENDING", "refunded", "paid"} {
		assert.False(t, ValidOrderStatus(s), s)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusDelivered, true},

		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},

		{OrderStatusDelivered, OrderStatusProcessing, false},
		{OrderStatusShipped, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},

		{OrderStatusPending, OrderStatusPending, true},
		{OrderStatusPending, "refunded", false},
		{"unknown", OrderStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
