package service

import (
	"context"
	"encoding/json"
	"fmt"

	"lumiere-backend/internal/models"
	"lumiere-backend/internal/store"
	"lumiere-backend/internal/util"

	"go.uber.org/zap"
)

// AuditService writes an idempotent audit trail of order lifecycle events
// consumed from the broker. Redelivered events are skipped via the
// processed-events guard.
type AuditService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(store *store.Store) *AuditService {
	return &AuditService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// HandleOrderPlaced records an OrderPlaced event
func (as *AuditService) HandleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return as.record(ctx, event.BaseEvent, event.OrderID, event)
}

// HandleOrderStatusChanged records an OrderStatusChanged event
func (as *AuditService) HandleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return as.record(ctx, event.BaseEvent, event.OrderID, event)
}

func (as *AuditService) record(ctx context.Context, base models.BaseEvent, orderID int64, event interface{}) error {
	ctx, span := util.StartSpan(ctx, "AuditService.record")
	defer span.End()

	processed, err := as.store.IsEventProcessed(ctx, base.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		as.logger.Info("Event already processed", zap.String("event_id", base.EventID))
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	if err := as.store.RecordOrderEvent(ctx, base.EventID, base.EventType, orderID, payload); err != nil {
		return fmt.Errorf("failed to record order event: %w", err)
	}

	if err := as.store.MarkEventProcessed(ctx, base.EventID, base.EventType); err != nil {
		as.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	as.logger.Info("Order event recorded",
		zap.String("event_id", base.EventID),
		zap.String("event_type", base.EventType),
		zap.Int64("order_id", orderID))
	return nil
}
