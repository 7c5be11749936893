package service

import (
	"database/sql"

	"cribbage-live-go/internal/game/cribbage"
	"cribbage-live-go/internal/models"

	"github.com/google/uuid"
)

// syncGameRow folds the session's mutable fields back into the games row
// struct before an UPDATE.
func syncGameRow(game *models.Game, session *cribbage.Session) {
	game.DealerSeat = session.DealerSeat
	game.Phase = string(session.Phase)
	game.PegCount = session.PegCount
	game.TurnSeat = nil
	if session.TurnSeat >= 0 {
		t := session.TurnSeat
		game.TurnSeat = &t
	}
	game.CutCard = nil
	if session.Round != nil && session.Round.Cut != nil {
		c := session.Round.Cut.String()
		game.CutCard = &c
	}
	switch session.Phase {
	case cribbage.PhaseWaiting:
		game.Status = "waiting"
	case cribbage.PhaseFinished:
		game.Status = "finished"
	default:
		game.Status = "playing"
	}
}

// persistState writes the session back out inside one transaction: the games
// row, the current round row, every hand row, and any score changes. Called
// with the entry lock held, after the command succeeded on a working copy.
func (s *GameService) persistState(entry *gameEntry, session *cribbage.Session) error {
	syncGameRow(entry.game, session)

	return s.withTx(func(tx *sql.Tx) error {
		if err := models.UpdateGameTx(tx, entry.game); err != nil {
			return err
		}
		if session.Round == nil || entry.round == nil {
			return nil
		}

		entry.round.Stock = session.Round.Stock
		entry.round.Crib = session.Round.Crib
		entry.round.PegHistory = session.Round.PegHistory
		if err := models.UpdateRoundTx(tx, entry.round); err != nil {
			return err
		}

		for i := range entry.hands {
			h := &entry.hands[i]
			sh := session.Round.Hands[h.Seat]
			h.Current = sh.Current
			h.Discarded = sh.Discarded
			h.Pegged = sh.Pegged
			if err := models.UpdateHandTx(tx, h); err != nil {
				return err
			}
		}

		for _, p := range entry.players {
			if p.Seat < 0 || p.Seat >= len(session.Scores) {
				continue
			}
			if err := models.UpdatePlayerScoreTx(tx, p.ID, session.Scores[p.Seat]); err != nil {
				return err
			}
		}
		return nil
	})
}

// persistNewRound inserts the round and hand rows for a fresh deal, plus the
// updated games row, in one transaction.
func (s *GameService) persistNewRound(entry *gameEntry, session *cribbage.Session) error {
	syncGameRow(entry.game, session)

	round := &models.Round{
		ID:         uuid.NewString(),
		GameID:     entry.game.ID,
		Number:     session.Round.Number,
		DealerSeat: session.Round.DealerSeat,
		Stock:      session.Round.Stock,
		Crib:       session.Round.Crib,
		PegHistory: session.Round.PegHistory,
	}
	hands := make([]models.PlayerHand, len(session.Round.Hands))
	for i, sh := range session.Round.Hands {
		var playerID string
		for _, p := range entry.players {
			if p.Seat == sh.Seat {
				playerID = p.ID
				break
			}
		}
		hands[i] = models.PlayerHand{
			ID:        uuid.NewString(),
			RoundID:   round.ID,
			PlayerID:  playerID,
			Seat:      sh.Seat,
			Dealt:     sh.Dealt,
			Current:   sh.Current,
			Discarded: sh.Discarded,
			Pegged:    sh.Pegged,
		}
	}

	err := s.withTx(func(tx *sql.Tx) error {
		if err := models.UpdateGameTx(tx, entry.game); err != nil {
			return err
		}
		if err := models.CreateRoundTx(tx, round); err != nil {
			return err
		}
		for i := range hands {
			if err := models.CreateHandTx(tx, &hands[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	entry.round = round
	entry.hands = hands
	return nil
}
