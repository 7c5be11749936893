package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"cribbage-live-go/internal/game/common"
	"cribbage-live-go/internal/game/cribbage"
	"cribbage-live-go/internal/models"

	"github.com/gin-gonic/gin"
)

func writeAPIError(c *gin.Context, err error) {
	status, msg := apiErrorStatus(err)
	if status == http.StatusInternalServerError {
		// Unknown/internal errors: log details, return generic message.
		log.Printf("internal error: %v", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// apiErrorStatus maps sentinel errors to HTTP statuses without echoing raw
// error text for anything unrecognized.
func apiErrorStatus(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, "internal server error"
	}

	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrGameNotFound) ||
		errors.Is(err, models.ErrSessionNotFound) || errors.Is(err, models.ErrNoActiveRound) ||
		errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "not found"
	}

	switch {
	case errors.Is(err, models.ErrInvalidJSON):
		return http.StatusBadRequest, "invalid json"
	case errors.Is(err, models.ErrInvalidCard):
		return http.StatusBadRequest, "invalid card"
	case errors.Is(err, models.ErrNotAPlayer):
		return http.StatusForbidden, "not a player"
	case errors.Is(err, common.ErrInvalidPlayerCount):
		return http.StatusBadRequest, "player count must be between 2 and 4"
	case errors.Is(err, common.ErrNoCardsLeft):
		return http.StatusConflict, "no cards left in stock"
	case errors.Is(err, cribbage.ErrNotEnoughPlayers):
		return http.StatusConflict, "not enough players"
	case errors.Is(err, cribbage.ErrGameFull):
		return http.StatusConflict, "game is full"
	case errors.Is(err, cribbage.ErrGameAlreadyStarted):
		return http.StatusConflict, "game already started"
	case errors.Is(err, cribbage.ErrGameFinished):
		return http.StatusConflict, "game is finished"
	case errors.Is(err, cribbage.ErrNotInDiscardPhase):
		return http.StatusConflict, "not in discard phase"
	case errors.Is(err, cribbage.ErrNotInCutPhase):
		return http.StatusConflict, "not in cut phase"
	case errors.Is(err, cribbage.ErrNotInPeggingPhase):
		return http.StatusConflict, "not in pegging phase"
	case errors.Is(err, cribbage.ErrNotInScoringPhase):
		return http.StatusConflict, "not in hand scoring phase"
	case errors.Is(err, cribbage.ErrNotYourTurn):
		return http.StatusConflict, "not your turn"
	case errors.Is(err, cribbage.ErrWrongDiscardCount):
		return http.StatusBadRequest, "wrong discard count"
	case errors.Is(err, cribbage.ErrAlreadyDiscarded):
		return http.StatusConflict, "already discarded"
	case errors.Is(err, cribbage.ErrCardNotInHand):
		return http.StatusBadRequest, "card not in hand"
	case errors.Is(err, cribbage.ErrExceedsThirtyOne):
		return http.StatusBadRequest, "play would exceed 31"
	case errors.Is(err, cribbage.ErrMustPlayIfPossible):
		return http.StatusConflict, "you must play a card if possible"
	case errors.Is(err, cribbage.ErrMissingCutCard):
		return http.StatusConflict, "missing cut card"
	case errors.Is(err, cribbage.ErrInvalidSeat):
		return http.StatusBadRequest, "invalid seat"
	}

	return http.StatusInternalServerError, "internal server error"
}
