package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cribbage-live-go/internal/game/common"
	"cribbage-live-go/internal/game/cribbage"
)

// Round is the durable record of one deal: remaining stock, crib, and the
// ordered pegging log. The deck column is never exposed to clients.
type Round struct {
	ID         string              `json:"id"`
	GameID     string              `json:"game_id"`
	Number     int                 `json:"number"`
	DealerSeat int                 `json:"dealer_seat"`
	Stock      []common.Card       `json:"-"`
	Crib       []common.Card       `json:"-"`
	PegHistory []cribbage.PegEvent `json:"peg_history"`
	CreatedAt  time.Time           `json:"created_at"`
}

func CreateRoundTx(tx *sql.Tx, r *Round) error {
	stock, err := marshalCards(r.Stock)
	if err != nil {
		return err
	}
	crib, err := marshalCards(r.Crib)
	if err != nil {
		return err
	}
	history, err := marshalPegHistory(r.PegHistory)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO rounds(id, game_id, round_number, dealer_seat, stock, crib, peg_history) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GameID, r.Number, r.DealerSeat, stock, crib, history,
	)
	if err != nil {
		return fmt.Errorf("insert round %s: %w", r.ID, err)
	}
	return nil
}

// GetCurrentRound returns the highest-numbered round for a game.
func GetCurrentRound(db *sql.DB, gameID string) (*Round, error) {
	row := db.QueryRow(
		`SELECT id, game_id, round_number, dealer_seat, stock, crib, peg_history, created_at
		 FROM rounds WHERE game_id = ? ORDER BY round_number DESC LIMIT 1`,
		gameID,
	)
	var r Round
	var stock, crib, history string
	err := row.Scan(&r.ID, &r.GameID, &r.Number, &r.DealerSeat, &stock, &crib, &history, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveRound
	}
	if err != nil {
		return nil, fmt.Errorf("scan round (game=%s): %w", gameID, err)
	}
	if r.Stock, err = unmarshalCards(stock); err != nil {
		return nil, err
	}
	if r.Crib, err = unmarshalCards(crib); err != nil {
		return nil, err
	}
	if r.PegHistory, err = unmarshalPegHistory(history); err != nil {
		return nil, err
	}
	return &r, nil
}

func UpdateRoundTx(tx *sql.Tx, r *Round) error {
	stock, err := marshalCards(r.Stock)
	if err != nil {
		return err
	}
	crib, err := marshalCards(r.Crib)
	if err != nil {
		return err
	}
	history, err := marshalPegHistory(r.PegHistory)
	if err != nil {
		return err
	}
	res, err := tx.Exec(
		`UPDATE rounds SET stock = ?, crib = ?, peg_history = ? WHERE id = ?`,
		stock, crib, history, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update round %s: %w", r.ID, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if ra == 0 {
		return ErrNotFound
	}
	return nil
}
