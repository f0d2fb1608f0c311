package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsErrorPassthrough(t *testing.T) {
	err := Validation("bad input")
	assert.Equal(t, CodeValidation, AsError(err).Code)
	assert.Equal(t, "bad input", AsError(err).Message)
}

func TestAsErrorWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("missing"))
	assert.Equal(t, CodeNotFound, AsError(err).Code)
}

func TestAsErrorUnknownBecomesInternal(t *testing.T) {
	appErr := AsError(errors.New("pq: connection refused"))
	assert.Equal(t, CodeInternal, appErr.Code)
	// The storage detail stays out of the user-safe message.
	assert.Equal(t, "internal server error", appErr.Message)
}

func TestUpstreamKeepsCauseForLogs(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Upstream("payment processor unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "payment processor unavailable", err.Message)
	assert.Contains(t, err.Error(), "timeout")
}
