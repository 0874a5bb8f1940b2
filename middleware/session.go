package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	// ContextSessionIDKey is the gin context key holding the current session token.
	ContextSessionIDKey = "current_session_id"

	// SessionHeader carries the session token on service-to-service calls.
	// It is never placed in a URL so it cannot leak via logs or referrers.
	SessionHeader = "X-Session-ID"

	sessionCookieName = "chat_session"
	sessionIDValueKey = "session_id"
)

// RequireSessionHeader extracts the session token from the X-Session-ID
// header and puts it on the context. A missing header is a malformed internal
// call and fails with 400, distinct from the empty not-found result a wrong
// token produces downstream.
func RequireSessionHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.GetHeader(SessionHeader))
		if sid == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"msg": "session ID is required"})
			return
		}
		c.Set(ContextSessionIDKey, sid)
		c.Next()
	}
}

// BrowserSession loads the signed session cookie and exposes the stable
// per-browser session token on the context. First contact generates a new
// random token and sets it on the response.
func BrowserSession(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := store.Get(c.Request, sessionCookieName)
		sid, _ := sess.Values[sessionIDValueKey].(string)
		if sid == "" {
			sid = uuid.NewString()
			sess.Values[sessionIDValueKey] = sid
			if err := sess.Save(c.Request, c.Writer); err != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}
		c.Set(ContextSessionIDKey, sid)
		c.Next()
	}
}

// SessionID returns the session token set by RequireSessionHeader or
// BrowserSession, or "" when neither ran.
func SessionID(c *gin.Context) string {
	v, _ := c.Get(ContextSessionIDKey)
	sid, _ := v.(string)
	return sid
}
