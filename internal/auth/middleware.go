package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxClaimsKey = "auth_claims"

// CookieName holds the admin session token. The original admin panel kept
// its login in an httpOnly cookie, so the middleware checks that first and
// falls back to a bearer header for API clients.
const CookieName = "token"

func AuthMiddleware(tokens TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(CookieName)
		if err != nil || raw == "" {
			h := c.GetHeader("Authorization")
			if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
				c.Abort()
				return
			}
			raw = strings.TrimSpace(h[len("Bearer "):])
		}

		claims, err := tokens.Parse(raw)
		if err != nil || !claims.IsAdmin {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
