package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"fridge-backend/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// SessionHeader carries the token returned by login.
	SessionHeader = "X-Session-Id"

	userIDKey = "userID"
)

// RequireAuth resolves the session token to a user id or aborts with 401
// before any handler runs.
func RequireAuth(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c.Request)
		if token == "" {
			errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}

		userID, err := store.Get(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				_ = c.Error(err)
			}
			errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func sessionToken(r *http.Request) string {
	if tok := r.Header.Get(SessionHeader); tok != "" {
		return tok
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// currentUser returns the id stored by RequireAuth.
func currentUser(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// RequestLogger logs one line per request with zerolog.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP())
		if uid, ok := c.Get(userIDKey); ok {
			event = event.Int64("user_id", uid.(int64))
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("request")
	}
}

// CORS answers preflight requests and tags responses for the browser client.
func CORS(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+SessionHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
