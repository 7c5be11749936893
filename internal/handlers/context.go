package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// playerIdentity is the session identity set by middleware.RequireSession.
type playerIdentity struct {
	PlayerID string
	GameID   string
	Seat     int
	Name     string
}

func identityFromContext(c *gin.Context) (playerIdentity, bool) {
	var id playerIdentity
	if v, ok := c.Get("playerID"); ok {
		if s, ok2 := v.(string); ok2 {
			id.PlayerID = strings.TrimSpace(s)
		}
	}
	if v, ok := c.Get("gameID"); ok {
		if s, ok2 := v.(string); ok2 {
			id.GameID = strings.TrimSpace(s)
		}
	}
	if v, ok := c.Get("seat"); ok {
		if n, ok2 := v.(int); ok2 {
			id.Seat = n
		}
	}
	if v, ok := c.Get("playerName"); ok {
		if s, ok2 := v.(string); ok2 {
			id.Name = s
		}
	}
	return id, id.PlayerID != "" && id.GameID != ""
}

// requireGameIdentity resolves the session identity and rejects requests whose
// :id path segment names a different game than the token.
func requireGameIdentity(c *gin.Context) (playerIdentity, bool) {
	id, ok := identityFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return id, false
	}
	if gameID := c.Param("id"); gameID != "" && gameID != id.GameID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not a player"})
		return id, false
	}
	return id, true
}
