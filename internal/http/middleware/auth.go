package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"alert-relay/internal/auth"
)

const (
	deviceIDContextKey  = "deviceID"
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer"
)

func Auth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawHeader := c.GetHeader(authorizationHeader)
		if rawHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header missing"})
			return
		}

		parts := strings.SplitN(rawHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		deviceID, err := tokens.Parse(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(deviceIDContextKey, deviceID)
		c.Next()
	}
}

// MustDeviceID extracts the authenticated device uuid set by Auth.
func MustDeviceID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(deviceIDContextKey)
	if !exists {
		return uuid.Nil, false
	}

	deviceID, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}

	return deviceID, true
}
