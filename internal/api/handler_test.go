package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lumiere-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  *service.Error
		want int
	}{
		{service.Validation("bad"), http.StatusBadRequest},
		{service.NotFound("missing"), http.StatusNotFound},
		{service.Conflict("duplicate"), http.StatusConflict},
		{service.Upstream("processor down", nil), http.StatusBadGateway},
		{service.Internal(nil), http.StatusInternalServerError},
		{&service.Error{Code: service.CodeUpstream, Message: "slow down", Status: http.StatusTooManyRequests}, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), string(tt.err.Code))
	}
}

func TestRespondErrorBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{logger: zap.NewNop()}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders", nil)

	h.respondError(c, service.NotFound("order not found"))

	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "order not found", body["error"])
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{logger: zap.NewNop()}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products", nil)

	h.respondError(c, assertAnError{})

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, body["error"], "pq:")
}

type assertAnError struct{}

func (assertAnError) Error() string { return "pq: relation does not exist" }
