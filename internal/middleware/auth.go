package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"asthma-care-server/internal/config"
	"asthma-care-server/internal/session"
	"asthma-care-server/internal/utils"
)

// SessionCookie is the cookie carrying the staff session token.
const SessionCookie = "asthma_session"

const sessionKey = "session"

// tokenFromRequest prefers the session cookie and falls back to a bearer
// token for API clients.
func tokenFromRequest(c *gin.Context) (string, bool) {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token, true
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware requires a live staff session.
func AuthMiddleware(cfg *config.Config, sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := tokenFromRequest(c)
		if !ok {
			utils.Unauthorized(c, "Login required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, cfg.SessionSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		s, err := sessions.Get(c.Request.Context(), claims.SessionID())
		if errors.Is(err, session.ErrNotFound) {
			utils.Unauthorized(c, "Session has ended, please log in again")
			c.Abort()
			return
		}
		if err != nil {
			_ = c.Error(err)
			utils.InternalServerError(c, "Failed to load session")
			c.Abort()
			return
		}

		c.Set(sessionKey, s)
		c.Next()
	}
}

// SessionFromContext returns the session loaded by AuthMiddleware.
func SessionFromContext(c *gin.Context) (session.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return session.Session{}, false
	}
	s, ok := v.(session.Session)
	return s, ok
}
