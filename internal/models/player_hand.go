package models

import (
	"database/sql"
	"fmt"

	"cribbage-live-go/internal/game/common"
)

// PlayerHand is the durable per-round, per-seat card record. The four slices
// always partition the dealt cards.
type PlayerHand struct {
	ID        string        `json:"id"`
	RoundID   string        `json:"round_id"`
	PlayerID  string        `json:"player_id"`
	Seat      int           `json:"seat"`
	Dealt     []common.Card `json:"dealt"`
	Current   []common.Card `json:"current"`
	Discarded []common.Card `json:"discarded"`
	Pegged    []common.Card `json:"pegged"`
	HandScore *int          `json:"hand_score,omitempty"`
}

func CreateHandTx(tx *sql.Tx, h *PlayerHand) error {
	cols, err := handColumns(h)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO player_hands(id, round_id, player_id, seat, dealt, current, discarded, pegged) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.RoundID, h.PlayerID, h.Seat, cols[0], cols[1], cols[2], cols[3],
	)
	if err != nil {
		return fmt.Errorf("insert hand %s: %w", h.ID, err)
	}
	return nil
}

// ListHandsByRound returns every hand of a round in seat order.
func ListHandsByRound(db *sql.DB, roundID string) ([]PlayerHand, error) {
	rows, err := db.Query(
		`SELECT id, round_id, player_id, seat, dealt, current, discarded, pegged, hand_score
		 FROM player_hands WHERE round_id = ? ORDER BY seat ASC`,
		roundID,
	)
	if err != nil {
		return nil, fmt.Errorf("list hands (round=%s): %w", roundID, err)
	}
	defer rows.Close()

	var out []PlayerHand
	for rows.Next() {
		var h PlayerHand
		var dealt, current, discarded, pegged string
		var score sql.NullInt64
		if err := rows.Scan(&h.ID, &h.RoundID, &h.PlayerID, &h.Seat, &dealt, &current, &discarded, &pegged, &score); err != nil {
			return nil, fmt.Errorf("scan hand (round=%s): %w", roundID, err)
		}
		if h.Dealt, err = unmarshalCards(dealt); err != nil {
			return nil, err
		}
		if h.Current, err = unmarshalCards(current); err != nil {
			return nil, err
		}
		if h.Discarded, err = unmarshalCards(discarded); err != nil {
			return nil, err
		}
		if h.Pegged, err = unmarshalCards(pegged); err != nil {
			return nil, err
		}
		if score.Valid {
			v := int(score.Int64)
			h.HandScore = &v
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func UpdateHandTx(tx *sql.Tx, h *PlayerHand) error {
	cols, err := handColumns(h)
	if err != nil {
		return err
	}
	var score sql.NullInt64
	if h.HandScore != nil {
		score = sql.NullInt64{Int64: int64(*h.HandScore), Valid: true}
	}
	res, err := tx.Exec(
		`UPDATE player_hands SET current = ?, discarded = ?, pegged = ?, hand_score = ? WHERE id = ?`,
		cols[1], cols[2], cols[3], score, h.ID,
	)
	if err != nil {
		return fmt.Errorf("update hand %s: %w", h.ID, err)
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

func handColumns(h *PlayerHand) ([4]string, error) {
	var cols [4]string
	for i, cards := range [][]common.Card{h.Dealt, h.Current, h.Discarded, h.Pegged} {
		s, err := marshalCards(cards)
		if err != nil {
			return cols, err
		}
		cols[i] = s
	}
	return cols, nil
}
