package handlers

import (
	"net/http"
	"strings"

	"cribbage-live-go/internal/auth"
	"cribbage-live-go/internal/config"
	"cribbage-live-go/internal/service"

	"github.com/gin-gonic/gin"
)

type createGameRequest struct {
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
}

// CreateGameHandler opens a table and seats the creator. The session token is
// returned in the body and also set as an HttpOnly cookie for browser clients.
func CreateGameHandler(svc *service.GameService, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createGameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.PlayerCount == 0 {
			req.PlayerCount = 2
		}
		created, err := svc.CreateGame(req.Name, req.PlayerCount)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		setSessionCookie(c, cfg, created.Token)
		c.JSON(http.StatusCreated, created)
	}
}

type joinGameRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func JoinGameHandler(svc *service.GameService, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req joinGameRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		joined, err := svc.JoinGame(req.Code, req.Name)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		setSessionCookie(c, cfg, joined.Token)
		if snap, err := svc.PublicSnapshot(joined.GameID); err == nil {
			broadcastState(joined.GameID, snap)
		}
		c.JSON(http.StatusOK, joined)
	}
}

// PreviewGameHandler is the unauthenticated lobby view: it accepts a join
// code (or game ID) and returns the spectator snapshot, so a prospective
// player can see seats and scores before joining.
func PreviewGameHandler(svc *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := svc.Preview(c.Param("id"))
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// GetGameHandler returns the caller's personalized view of their game.
func GetGameHandler(svc *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requireGameIdentity(c)
		if !ok {
			return
		}
		snap, err := svc.Snapshot(id.GameID, id.PlayerID)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// ValidPlaysHandler returns the caller's legal pegging cards right now.
func ValidPlaysHandler(svc *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requireGameIdentity(c)
		if !ok {
			return
		}
		plays, err := svc.ValidPlays(id.GameID, id.PlayerID)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid_plays": plays})
	}
}

func setSessionCookie(c *gin.Context, cfg config.Config, token string) {
	secure := cfg.AppEnv != "development"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, token, int(cfg.JWTTTL.Seconds()), "/", "", secure, true)
}
