package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lumiere-backend/config"
	"lumiere-backend/internal/redisclient"
	"lumiere-backend/internal/util"

	"go.uber.org/zap"
)

// PaymentService bridges to the external payment processor. The processor
// call is opaque: the storefront stores the returned handle and never
// verifies payment completion itself.
type PaymentService struct {
	cfg        config.PaymentConfig
	redis      *redisclient.Client
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(cfg config.PaymentConfig, redis *redisclient.Client) *PaymentService {
	return &PaymentService{
		cfg:   cfg,
		redis: redis,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: util.GetLogger(),
	}
}

// CreateIntentRequest represents a payment-intent creation request.
// Amount is in currency minor units.
type CreateIntentRequest struct {
	Amount   int64             `json:"amount" binding:"required"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// PaymentIntent is the client-usable payment authorization handle
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type processorResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Error        struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIntent obtains a payment authorization handle from the processor.
// Error classes: invalid amount (validation), rate limited, processor
// rejected, processor unavailable.
func (ps *PaymentService) CreateIntent(ctx context.Context, sessionID string, req *CreateIntentRequest) (*PaymentIntent, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.CreateIntent")
	defer span.End()

	if req.Amount <= 0 {
		util.PaymentIntentsFailedTotal.WithLabelValues("invalid_amount").Inc()
		return nil, Validation("amount must be greater than zero")
	}

	currency := req.Currency
	if currency == "" {
		currency = ps.cfg.DefaultCurrency
	}

	if ps.redis != nil {
		allowed, err := ps.redis.AllowPaymentIntent(ctx, sessionID, ps.cfg.IntentsPerMinute)
		if err != nil {
			// A broken limiter should not block checkout.
			ps.logger.Warn("Rate limit check failed", zap.Error(err))
		} else if !allowed {
			util.PaymentIntentsFailedTotal.WithLabelValues("rate_limited").Inc()
			return nil, &Error{
				Code:    CodeUpstream,
				Message: "too many payment attempts, try again shortly",
				Status:  http.StatusTooManyRequests,
			}
		}
	}

	start := time.Now()
	defer func() {
		util.PaymentProcessorLatency.Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(map[string]interface{}{
		"amount":   req.Amount,
		"currency": currency,
		"metadata": req.Metadata,
	})
	if err != nil {
		return nil, Internal(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, ps.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, Internal(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+ps.cfg.SecretKey)

	resp, err := ps.httpClient.Do(httpReq)
	if err != nil {
		util.PaymentIntentsFailedTotal.WithLabelValues("unavailable").Inc()
		return nil, Upstream("payment processor unavailable", err)
	}
	defer resp.Body.Close()

	var body processorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && resp.StatusCode < 300 {
		util.PaymentIntentsFailedTotal.WithLabelValues("bad_response").Inc()
		return nil, Upstream("payment processor returned an invalid response", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		util.PaymentIntentsFailedTotal.WithLabelValues("rate_limited").Inc()
		return nil, &Error{
			Code:    CodeUpstream,
			Message: "payment processor rate limited the request",
			Status:  http.StatusTooManyRequests,
		}
	case resp.StatusCode >= 500:
		util.PaymentIntentsFailedTotal.WithLabelValues("unavailable").Inc()
		return nil, Upstream("payment processor unavailable",
			fmt.Errorf("processor status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		util.PaymentIntentsFailedTotal.WithLabelValues("rejected").Inc()
		msg := body.Error.Message
		if msg == "" {
			msg = "payment processor rejected the request"
		}
		return nil, &Error{
			Code:    CodeUpstream,
			Message: msg,
			Status:  http.StatusBadGateway,
		}
	}

	util.PaymentIntentsCreatedTotal.Inc()
	ps.logger.Info("Payment intent created",
		zap.String("intent_id", body.ID),
		zap.Int64("amount", req.Amount),
		zap.String("currency", currency))

	return &PaymentIntent{
		ID:           body.ID,
		ClientSecret: body.ClientSecret,
		Amount:       req.Amount,
		Currency:     currency,
	}, nil
}
