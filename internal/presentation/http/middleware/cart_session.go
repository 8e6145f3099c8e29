package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CartSessionHeader carries the anonymous cart session chosen by the client
	CartSessionHeader  = "X-Cart-Session"
	ContextCartSession = "cart_session"

	maxCartSessionLen = 128
)

// Cart sessions from the header and from the signed-in identity live in
// separate namespaces. A client cannot name a user's cart through the header.
const (
	anonSessionPrefix = "anon:"
	userSessionPrefix = "user:"
)

// AnonymousCartSession is the session key for a client-chosen header value
func AnonymousCartSession(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if len(header) > maxCartSessionLen {
		header = header[:maxCartSessionLen]
	}
	return anonSessionPrefix + header
}

// UserCartSession is the session key for a signed-in user without a header
func UserCartSession(userID uuid.UUID) string {
	return userSessionPrefix + userID.String()
}

// CartSession resolves the cart session key from the X-Cart-Session header,
// falling back to the signed-in user id. Run it after the auth middleware.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := AnonymousCartSession(c.GetHeader(CartSessionHeader))
		if session == "" {
			if v, ok := c.Get(ContextUserID); ok {
				if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
					session = UserCartSession(id)
				}
			}
		}
		c.Set(ContextCartSession, session)
		c.Next()
	}
}
