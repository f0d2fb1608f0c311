package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lumiere-backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaymentService(url string) *PaymentService {
	return NewPaymentService(config.PaymentConfig{
		APIURL:           url,
		SecretKey:        "sk_test_123",
		DefaultCurrency:  "usd",
		IntentsPerMinute: 10,
	}, nil)
}

func TestCreateIntentInvalidAmount(t *testing.T) {
	ps := newTestPaymentService("http://unused.invalid")

	for _, amount := range []int64{0, -500} {
		_, err := ps.CreateIntent(context.Background(), "session-1", &CreateIntentRequest{Amount: amount})
		require.Error(t, err)
		assert.Equal(t, CodeValidation, AsError(err).Code)
	}
}

func TestCreateIntentSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(18000), body["amount"])
		assert.Equal(t, "usd", body["currency"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"id":            "pi_test_1",
			"client_secret": "pi_test_1_secret",
		})
	}))
	defer srv.Close()

	ps := newTestPaymentService(srv.URL)

	intent, err := ps.CreateIntent(context.Background(), "session-1", &CreateIntentRequest{Amount: 18000})
	require.NoError(t, err)
	assert.Equal(t, "pi_test_1", intent.ID)
	assert.Equal(t, "pi_test_1_secret", intent.ClientSecret)
	assert.Equal(t, int64(18000), intent.Amount)
	assert.Equal(t, "usd", intent.Currency)
}

func TestCreateIntentProcessorRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "card declined"},
		})
	}))
	defer srv.Close()

	ps := newTestPaymentService(srv.URL)

	_, err := ps.CreateIntent(context.Background(), "session-1", &CreateIntentRequest{Amount: 100})
	require.Error(t, err)

	appErr := AsError(err)
	assert.Equal(t, CodeUpstream, appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.Equal(t, "card declined", appErr.Message)
}

func TestCreateIntentProcessorRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ps := newTestPaymentService(srv.URL)

	_, err := ps.CreateIntent(context.Background(), "session-1", &CreateIntentRequest{Amount: 100})
	require.Error(t, err)

	appErr := AsError(err)
	assert.Equal(t, CodeUpstream, appErr.Code)
	assert.Equal(t, http.StatusTooManyRequests, appErr.Status)
}

func TestCreateIntentProcessorUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ps := newTestPaymentService(srv.URL)

	_, err := ps.CreateIntent(context.Background(), "session-1", &CreateIntentRequest{Amount: 100})
	require.Error(t, err)
	assert.Equal(t, CodeUpstream, AsError(err).Code)
}

func TestCreateIntentNetworkError(t *testing.T) {
	ps := newTestPaymentService("http://127.0.0.1:1") // nothing listens here

	_, err := ps.CreateIntent(context.Background(), "session-1", &CreateIntentRequest{Amount: 100})
	require.Error(t, err)
	assert.Equal(t, CodeUpstream, AsError(err).Code)
}

func TestCreateIntentDefaultsCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "usd", body["currency"])
		json.NewEncoder(w).Encode(map[string]string{"id": "pi_2", "client_secret": "s"})
	}))
	defer srv.Close()

	ps := newTestPaymentService(srv.URL)

	intent, err := ps.CreateIntent(context.Background(), "session-1",
		&CreateIntentRequest{Amount: 100, Currency: ""})
	require.NoError(t, err)
	assert.Equal(t, "usd", intent.Currency)
}
