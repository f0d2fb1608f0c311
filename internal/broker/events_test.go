package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"lumiere-backend/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: payload}
}

func TestHandleMessageRoutesOrderPlaced(t *testing.T) {
	eh := NewEventHandler()

	var got *models.OrderPlacedEvent
	eh.OnOrderPlaced(func(ctx context.Context, e *models.OrderPlacedEvent) error {
		got = e
		return nil
	})

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:     42,
		TotalAmount: "180.00",
		Currency:    "usd",
	}

	require.NoError(t, eh.HandleMessage(context.Background(), message(t, event)))
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.OrderID)
	assert.Equal(t, "180.00", got.TotalAmount)
}

func TestHandleMessageRoutesStatusChange(t *testing.T) {
	eh := NewEventHandler()

	var got *models.OrderStatusChangedEvent
	eh.OnOrderStatusChanged(func(ctx context.Context, e *models.OrderStatusChangedEvent) error {
		got = e
		return nil
	})

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-2", EventType: models.EventTypeOrderStatusChanged},
		OrderID:   7,
		OldStatus: models.OrderStatusPending,
		NewStatus: models.OrderStatusProcessing,
	}

	require.NoError(t, eh.HandleMessage(context.Background(), message(t, event)))
	require.NotNil(t, got)
	assert.Equal(t, models.OrderStatusProcessing, got.NewStatus)
}

func TestHandleMessageIgnoresUnknownType(t *testing.T) {
	eh := NewEventHandler()
	eh.OnOrderPlaced(func(ctx context.Context, e *models.OrderPlacedEvent) error {
		t.Fatal("handler should not fire for unknown event types")
		return nil
	})

	msg := kafka.Message{Value: []byte(`{"event_id":"x","event_type":"SOMETHING_ELSE"}`)}
	assert.NoError(t, eh.HandleMessage(context.Background(), msg))
}

func TestHandleMessageRejectsMalformedPayload(t *testing.T) {
	eh := NewEventHandler()
	msg := kafka.Message{Value: []byte(`not json`)}
	assert.Error(t, eh.HandleMessage(context.Background(), msg))
}
