package interceptors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log/level"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/services"
	"github.com/zynexa/go-zynexa-server/types"
)

const ctxSessionPublicKey = "sessionPublicKey"

// SessionMiddleware requires an authenticated session (cookie) and stores its public key in the context.
// The identity is re-read on every request, a session whose identity is gone is destroyed.
func SessionMiddleware(sessionService *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(global.Conf.Session.CookieName)

		identity, err := sessionService.CurrentIdentity(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, types.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "code": "unauthenticated", "error": "Not authenticated"})
				return
			}
			level.Error(global.Logger).Log("msg", "session lookup failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "code": "internal_error", "error": "Internal server error"})
			return
		}
		c.Set(ctxSessionPublicKey, identity.PublicKey)
		c.Next()
	}
}

// SessionPublicKey returns the public key bound to the session (empty when not authenticated)
func SessionPublicKey(c *gin.Context) string {
	return c.GetString(ctxSessionPublicKey)
}
