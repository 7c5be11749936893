package cribbage

import "errors"

// Every failure the state machine reports is a local validation error: the
// command is rejected and state stays untouched. There is no retry policy
// here; callers resubmit with corrected input.
var (
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrGameFull           = errors.New("game is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGameFinished       = errors.New("game is finished")

	ErrNotInDiscardPhase = errors.New("not in discard phase")
	ErrNotInCutPhase     = errors.New("not in cut phase")
	ErrNotInPeggingPhase = errors.New("not in pegging phase")
	ErrNotInScoringPhase = errors.New("not in hand scoring phase")

	ErrNotYourTurn        = errors.New("not your turn")
	ErrWrongDiscardCount  = errors.New("wrong discard count")
	ErrAlreadyDiscarded   = errors.New("already discarded")
	ErrCardNotInHand      = errors.New("card not in hand")
	ErrExceedsThirtyOne   = errors.New("play would exceed 31")
	ErrMustPlayIfPossible = errors.New("you must play a card if possible")
	ErrMissingCutCard     = errors.New("missing cut card")
	ErrInvalidSeat        = errors.New("invalid seat")
)
