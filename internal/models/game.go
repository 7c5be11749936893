package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Game struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Status      string    `json:"status"` // waiting|playing|finished
	PlayerCount int       `json:"player_count"`
	IsTeams     bool      `json:"is_teams"`
	DealerSeat  int       `json:"dealer_seat"`
	Phase       string    `json:"phase"`
	TurnSeat    *int      `json:"turn_seat,omitempty"`
	PegCount    int       `json:"peg_count"`
	CutCard     *string   `json:"cut_card,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func CreateGameTx(tx *sql.Tx, g *Game) error {
	_, err := tx.Exec(
		`INSERT INTO games(id, code, status, player_count, is_teams, dealer_seat, phase, turn_seat, peg_count, cut_card)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Code, g.Status, g.PlayerCount, boolToInt(g.IsTeams), g.DealerSeat, g.Phase, g.TurnSeat, g.PegCount, g.CutCard,
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", g.ID, err)
	}
	return nil
}

func GetGameByID(db *sql.DB, id string) (*Game, error) {
	return scanGame(db.QueryRow(gameSelect+` WHERE id = ?`, id))
}

func GetGameByCode(db *sql.DB, code string) (*Game, error) {
	return scanGame(db.QueryRow(gameSelect+` WHERE code = ?`, code))
}

const gameSelect = `SELECT id, code, status, player_count, is_teams, dealer_seat, phase, turn_seat, peg_count, cut_card, created_at, updated_at FROM games`

func scanGame(row *sql.Row) (*Game, error) {
	var g Game
	var isTeams int
	var turn sql.NullInt64
	var cut sql.NullString
	err := row.Scan(&g.ID, &g.Code, &g.Status, &g.PlayerCount, &isTeams, &g.DealerSeat, &g.Phase, &turn, &g.PegCount, &cut, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan game: %w", err)
	}
	g.IsTeams = isTeams != 0
	if turn.Valid {
		v := int(turn.Int64)
		g.TurnSeat = &v
	}
	if cut.Valid {
		v := cut.String
		g.CutCard = &v
	}
	return &g, nil
}

// UpdateGameTx persists the mutable session fields after a successful
// command. Card slices and hands are written by the round/hand records in
// the same transaction.
func UpdateGameTx(tx *sql.Tx, g *Game) error {
	res, err := tx.Exec(
		`UPDATE games SET status = ?, dealer_seat = ?, phase = ?, turn_seat = ?, peg_count = ?, cut_card = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		g.Status, g.DealerSeat, g.Phase, g.TurnSeat, g.PegCount, g.CutCard, g.ID,
	)
	if err != nil {
		return fmt.Errorf("update game %s: %w", g.ID, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if ra == 0 {
		return ErrGameNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
