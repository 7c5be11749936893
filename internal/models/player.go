package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Player struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	Name        string    `json:"name"`
	Seat        int       `json:"seat"`
	Team        *int      `json:"team,omitempty"`
	Score       int       `json:"score"`
	IsConnected bool      `json:"is_connected"`
	LastSeen    time.Time `json:"last_seen"`
}

func CreatePlayerTx(tx *sql.Tx, p *Player) error {
	_, err := tx.Exec(
		`INSERT INTO players(id, game_id, name, seat, team, score, is_connected) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.GameID, p.Name, p.Seat, p.Team, p.Score, boolToInt(p.IsConnected),
	)
	if err != nil {
		return fmt.Errorf("insert player %s: %w", p.ID, err)
	}
	return nil
}

func GetPlayerByID(db *sql.DB, id string) (*Player, error) {
	row := db.QueryRow(playerSelect+` WHERE id = ?`, id)
	p, err := scanPlayer(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return p, err
}

const playerSelect = `SELECT id, game_id, name, seat, team, score, is_connected, last_seen FROM players`

// ListPlayersByGame returns the seated players in seat order.
func ListPlayersByGame(db *sql.DB, gameID string) ([]Player, error) {
	rows, err := db.Query(playerSelect+` WHERE game_id = ? ORDER BY seat ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list players (game=%s): %w", gameID, err)
	}
	defer rows.Close()

	var out []Player
	for rows.Next() {
		p, err := scanPlayer(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan player (game=%s): %w", gameID, err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPlayer(scan func(...any) error) (*Player, error) {
	var p Player
	var team sql.NullInt64
	var connected int
	if err := scan(&p.ID, &p.GameID, &p.Name, &p.Seat, &team, &p.Score, &connected, &p.LastSeen); err != nil {
		return nil, err
	}
	if team.Valid {
		v := int(team.Int64)
		p.Team = &v
	}
	p.IsConnected = connected != 0
	return &p, nil
}

func UpdatePlayerScoreTx(tx *sql.Tx, playerID string, score int) error {
	res, err := tx.Exec(`UPDATE players SET score = ? WHERE id = ?`, score, playerID)
	if err != nil {
		return fmt.Errorf("update player score %s: %w", playerID, err)
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

// SetPlayerConnected flips the presence flag and bumps last_seen; used by the
// websocket layer on connect/disconnect.
func SetPlayerConnected(db *sql.DB, playerID string, connected bool) error {
	_, err := db.Exec(
		`UPDATE players SET is_connected = ?, last_seen = CURRENT_TIMESTAMP WHERE id = ?`,
		boolToInt(connected), playerID,
	)
	if err != nil {
		return fmt.Errorf("set player connected %s: %w", playerID, err)
	}
	return nil
}
