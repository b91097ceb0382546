package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const profileIDKey = "auth.profile_id"

// TokenParser validates an access token and yields the caller's profile id.
type TokenParser interface {
	Parse(token string) (uuid.UUID, error)
}

func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		profileID, err := parser.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(profileIDKey, profileID)
		c.Next()
	}
}

// MustProfile returns the authenticated caller's profile id set by Auth.
func MustProfile(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(profileIDKey)
	if !ok {
		return uuid.Nil, false
	}
	profileID, ok := value.(uuid.UUID)
	return profileID, ok
}
