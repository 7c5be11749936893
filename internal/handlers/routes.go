package handlers

import (
	"cribbage-live-go/internal/config"
	"cribbage-live-go/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterGameRoutes wires the REST surface. Create/join are open; everything
// else requires the session token minted on join.
func RegisterGameRoutes(open, protected *gin.RouterGroup, svc *service.GameService, cfg config.Config) {
	open.POST("/games", CreateGameHandler(svc, cfg))
	open.POST("/games/join", JoinGameHandler(svc, cfg))
	open.GET("/games/:id/preview", PreviewGameHandler(svc))

	protected.GET("/games/:id", GetGameHandler(svc))
	protected.GET("/games/:id/valid_plays", ValidPlaysHandler(svc))
	protected.POST("/games/:id/start", StartRoundHandler(svc))
	protected.POST("/games/:id/discard", DiscardHandler(svc))
	protected.POST("/games/:id/cut", CutHandler(svc))
	protected.POST("/games/:id/play", PlayCardHandler(svc))
	protected.POST("/games/:id/go", DeclareGoHandler(svc))
	protected.POST("/games/:id/score", ScoreHandsHandler(svc))
}
