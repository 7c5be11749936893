package handlers

import (
	"net/http"

	"cribbage-live-go/internal/service"

	"github.com/gin-gonic/gin"
)

// REST command endpoints mirror the websocket commands one-to-one, so clients
// without a socket (or tests) can drive a full game. Every successful command
// also broadcasts the refreshed public state to the game room.

func StartRoundHandler(svc *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requireGameIdentity(c)
		if !ok {
			return
		}
		res, err := svc.StartRound(id.GameID, id.PlayerID)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		broadcastRoundStarted(id.GameID, res)
		c.JSON(http.StatusOK, gin.H{
			"round_number": res.RoundNumber,
			"dealer_seat":  res.DealerSeat,
			"phase":        res.Phase,
			"your_hand":    handForSeat(res, id.Seat),
		})
	}
}

type discardRequest struct {
	Cards []string `json:"cards"`
}

func DiscardHandler(svc *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requireGameIdentity(c)
		if !ok {
			return
		}
		var req discardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		res, snap, err := svc.Discard(id.GameID, id.PlayerID, req.Cards)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		broadcastDiscard(id.GameID, id.Seat, res, snap)
		c.JSON(http.StatusOK, res)
	}
}

func CutHandler(svc *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requireGameIdentity(c)
		if !ok {
			return
		}
		res, snap, err := svc.Cut(id.GameID, id.PlayerID)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		broadcastCut(id.GameID, res, snap)
		c.JSON(http.StatusOK, res)
	}
}

type playCardRequest struct {
	Card string `json:"card"`
}

func PlayCardHandler(svc *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requireGameIdentity(c)
		if !ok {
			return
		}
		var req playCardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		res, snap, err := svc.PlayCard(id.GameID, id.PlayerID, req.Card)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		broadcastPegPlay(id.GameID, id.Seat, res, snap)
		c.JSON(http.StatusOK, res)
	}
}

func DeclareGoHandler(svc *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requireGameIdentity(c)
		if !ok {
			return
		}
		res, snap, err := svc.DeclareGo(id.GameID, id.PlayerID)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		broadcastPegGo(id.GameID, id.Seat, res, snap)
		c.JSON(http.StatusOK, res)
	}
}

func ScoreHandsHandler(svc *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requireGameIdentity(c)
		if !ok {
			return
		}
		results, snap, err := svc.ScoreHands(id.GameID, id.PlayerID)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		broadcastHandScores(id.GameID, results, snap)
		c.JSON(http.StatusOK, gin.H{"results": results, "state": snap})
	}
}

func handForSeat(res *service.RoundStarted, seat int) any {
	for _, h := range res.Hands {
		if h.Seat == seat {
			return h.Cards
		}
	}
	return nil
}
