package models

import "errors"

// Persistence-level failures. Rules failures live in the cribbage package;
// handlers map both families to HTTP statuses / websocket error payloads.
var (
	ErrInvalidJSON = errors.New("invalid json")
	ErrInvalidCard = errors.New("invalid card")

	ErrNoActiveRound   = errors.New("no active round")
	ErrGameNotFound    = errors.New("game not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrNotAPlayer      = errors.New("not a player in this game")
	ErrNotFound        = errors.New("not found")
)
