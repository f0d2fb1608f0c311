package service

import (
	"context"
	"strings"
	"time"

	"lumiere-backend/internal/broker"
	"lumiere-backend/internal/models"
	"lumiere-backend/internal/store"
	"lumiere-backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactService stores contact-form submissions. Any follow-up (email,
// consultation scheduling) happens downstream of the published event.
type ContactService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewContactService creates a new contact service
func NewContactService(store *store.Store, eventPublisher *broker.EventPublisher) *ContactService {
	return &ContactService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// SubmitContactRequest represents a contact-form submission
type SubmitContactRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Subject        string `json:"subject" binding:"required"`
	Message        string `json:"message" binding:"required"`
	Phone          string `json:"phone"`
	IsConsultation bool   `json:"is_consultation"`
	PreferredDate  string `json:"preferred_date"`
}

// Submit validates and persists a write-once contact record
func (cs *ContactService) Submit(ctx context.Context, req *SubmitContactRequest) (*models.ContactSubmission, error) {
	ctx, span := util.StartSpan(ctx, "ContactService.Submit")
	defer span.End()

	for field, val := range map[string]string{
		"name":    req.Name,
		"email":   req.Email,
		"subject": req.Subject,
		"message": req.Message,
	} {
		if strings.TrimSpace(val) == "" {
			return nil, Validation(field + " is required")
		}
	}

	var preferredDate *time.Time
	if req.PreferredDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PreferredDate)
		if err != nil {
			return nil, Validation("preferred_date must be YYYY-MM-DD")
		}
		preferredDate = &parsed
	}

	submission := &models.ContactSubmission{
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Subject:        strings.TrimSpace(req.Subject),
		Message:        req.Message,
		Phone:          req.Phone,
		IsConsultation: req.IsConsultation,
		PreferredDate:  preferredDate,
	}

	if err := cs.store.CreateContactSubmission(ctx, submission); err != nil {
		return nil, Internal(err)
	}

	util.ContactSubmissionsTotal.Inc()
	cs.logger.Info("Contact submission stored",
		zap.Int64("submission_id", submission.ID),
		zap.Bool("is_consultation", submission.IsConsultation))

	if cs.eventPublisher != nil {
		event := &models.ContactReceivedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeContactReceived,
				Timestamp: time.Now(),
			},
			SubmissionID:   submission.ID,
			Email:          submission.Email,
			IsConsultation: submission.IsConsultation,
		}
		if err := cs.eventPublisher.PublishContactReceived(ctx, event); err != nil {
			cs.logger.Error("Failed to publish ContactReceived event", zap.Error(err))
		}
	}

	return submission, nil
}
