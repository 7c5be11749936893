package middleware

import (
	"net/http"
	"strings"

	"cribbage-live-go/internal/auth"
	"cribbage-live-go/internal/config"

	"github.com/gin-gonic/gin"
)

// RequireSession validates the player session token and stashes the player's
// identity on the gin context for handlers downstream.
func RequireSession(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := auth.ParseAndValidateToken(token, cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("playerID", claims.PlayerID)
		c.Set("gameID", claims.GameID)
		c.Set("seat", claims.Seat)
		c.Set("playerName", claims.Name)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	// Cookie-based auth takes precedence over Authorization headers:
	// - preferred for browser clients since the token is server-controlled (HttpOnly cookie),
	//   rather than trusting JS-supplied headers (more resilient to token exfil in XSS scenarios)
	// - cookie is set with HttpOnly and SameSite=Lax, and Secure is enabled outside development
	// - dev CORS middleware explicitly allows credentialed requests so cookies can be sent safely
	if v, err := c.Cookie(auth.SessionCookieName); err == nil {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	// Authorization: Bearer <token>
	authz := c.GetHeader("Authorization")
	if authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}
