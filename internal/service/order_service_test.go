package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	os := NewOrderService(nil, nil, "usd")

	for _, status := range []string{"refunded", "PENDING", "", "complete"} {
		_, err := os.UpdateStatus(context.Background(), 1, status, "")
		require.Error(t, err, status)
		assert.Equal(t, CodeValidation, AsError(err).Code, status)
	}
}

func TestCartAddItemRejectsNonPositiveQuantity(t *testing.T) {
	cs := NewCartService(nil)

	for _, qty := range []int{0, -1} {
		_, err := cs.AddItem(context.Background(), "session-1", 1, qty)
		require.Error(t, err)
		assert.Equal(t, CodeValidation, AsError(err).Code)
	}
}

func TestContactSubmitRejectsMissingFields(t *testing.T) {
	cs := NewContactService(nil, nil)

	reqs := []*SubmitContactRequest{
		{Email: "a@b.com", Subject: "s", Message: "m"},
		{Name: "Ada", Subject: "s", Message: "m"},
		{Name: "Ada", Email: "a@b.com", Message: "m"},
		{Name: "Ada", Email: "a@b.com", Subject: "s"},
		{Name: "   ", Email: "a@b.com", Subject: "s", Message: "m"},
	}

	for i, req := range reqs {
		_, err := cs.Submit(context.Background(), req)
		require.Error(t, err, "case %d", i)
		assert.Equal(t, CodeValidation, AsError(err).Code)
	}
}

func TestContactSubmitRejectsBadPreferredDate(t *testing.T) {
	cs := NewContactService(nil, nil)

	_, err := cs.Submit(context.Background(), &SubmitContactRequest{
		Name:          "Ada",
		Email:         "a@b.com",
		Subject:       "consultation",
		Message:       "ring sizing",
		PreferredDate: "next tuesday",
	})
	require.Error(t, err)
	assert.Equal(t, CodeValidation, AsError(err).Code)
}
