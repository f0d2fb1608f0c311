package api

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSessionTokenHeaderWins(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.Header.Set(SessionHeader, "explicit-token")
	r.Header.Set("Authorization", "Bearer bearer-token")

	assert.Equal(t, "explicit-token", deriveSessionToken(r))
}

func TestDeriveSessionTokenBearerFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.Header.Set("Authorization", "Bearer bearer-token")

	assert.Equal(t, "bearer-token", deriveSessionToken(r))
}

func TestDeriveSessionTokenMintsWhenAbsent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/cart", nil)

	tok := deriveSessionToken(r)
	assert.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f]+$`), tok)

	// Each mint is a new session.
	assert.NotEqual(t, tok, deriveSessionToken(r))
}

func TestDeriveSessionTokenIgnoresEmptyBearer(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.Header.Set("Authorization", "Bearer ")

	tok := deriveSessionToken(r)
	assert.NotEmpty(t, tok)
	assert.NotEqual(t, "Bearer ", tok)
}

func TestSessionMiddlewareEchoesToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SessionMiddleware())

	var seen string
	router.GET("/cart", func(c *gin.Context) {
		seen = sessionID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.Header.Set(SessionHeader, "my-session")
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "my-session", seen)
	assert.Equal(t, "my-session", w.Header().Get(SessionHeader))
}

func TestSessionMiddlewareMintsAndEchoes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SessionMiddleware())
	router.GET("/cart", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f]+$`), w.Header().Get(SessionHeader))
}
