package interceptors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log/level"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/services"
	"github.com/zynexa/go-zynexa-server/util"
)

// FeatureMiddleware requires the session identity to have unlocked featureName. Must run after SessionMiddleware.
func FeatureMiddleware(featureService *services.FeatureService, featureName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		publicKey := SessionPublicKey(c)
		if publicKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "code": "unauthenticated", "error": "Not authenticated"})
			return
		}
		unlocked, err := featureService.IsUnlocked(c.Request.Context(), publicKey, featureName)
		if err != nil {
			level.Error(global.Logger).Log("msg", "feature check failed", "publicKey", util.ShortKey(publicKey), "feature", featureName, "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "code": "internal_error", "error": "Internal server error"})
			return
		}
		if !unlocked {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":      http.StatusForbidden,
				"code":        "feature_locked",
				"error":       "Feature verification required",
				"featureName": featureName,
			})
			return
		}
		c.Next()
	}
}
