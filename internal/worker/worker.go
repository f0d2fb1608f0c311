package worker

import (
	"context"
	"log"

	"lumiere-backend/internal/broker"
	"lumiere-backend/internal/service"
)

// AuditWorker consumes order lifecycle events and feeds them to the audit
// trail.
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, auditService *service.AuditService) *AuditWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnOrderPlaced(auditService.HandleOrderPlaced)
	eventHandler.OnOrderStatusChanged(auditService.HandleOrderStatusChanged)

	return &AuditWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	log.Println("Starting audit worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	log.Println("Stopping audit worker...")
	return w.consumer.Close()
}
