package api

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHeader carries the opaque client-correlation token. It scopes cart
// and order lookups; it is not an authentication credential.
const SessionHeader = "X-Session-Id"

const sessionContextKey = "session_id"

// SessionMiddleware derives the request's session token and echoes it back
// so clients can persist and resend it. Derivation is pure: nothing is
// stored server-side for a session until it writes to its cart.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := deriveSessionToken(c.Request)
		c.Set(sessionContextKey, token)
		c.Header(SessionHeader, token)
		c.Next()
	}
}

// deriveSessionToken resolves the session token: explicit session header,
// then bearer token, then a freshly minted one.
func deriveSessionToken(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get(SessionHeader)); tok != "" {
		return tok
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")); tok != "" {
			return tok
		}
	}

	return mintSessionToken()
}

// mintSessionToken builds a timestamp-plus-random token. Good enough for
// cart scoping, useless as a credential.
func mintSessionToken() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.New().String()[:16])
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}
