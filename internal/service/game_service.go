package service

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cribbage-live-go/internal/auth"
	"cribbage-live-go/internal/config"
	"cribbage-live-go/internal/game/common"
	"cribbage-live-go/internal/game/cribbage"
	"cribbage-live-go/internal/models"

	"github.com/google/uuid"
)

// GameService owns every live game. It serializes commands per game with one
// mutex per session, applies them to the in-memory rules engine, and persists
// the resulting state in a single transaction before replying. The database is
// the source of truth: a cache miss rehydrates the session from its rows.
type GameService struct {
	db  *sql.DB
	cfg config.Config

	mu      sync.Mutex
	entries map[string]*gameEntry
}

// gameEntry pairs one session with its durable rows. entry.mu serializes all
// commands and reads for the game.
type gameEntry struct {
	mu      sync.Mutex
	game    *models.Game
	session *cribbage.Session
	players []models.Player    // seat order
	round   *models.Round      // nil before the first deal
	hands   []models.PlayerHand // seat order, rows of the current round
}

func NewGameService(db *sql.DB, cfg config.Config) *GameService {
	return &GameService{db: db, cfg: cfg, entries: map[string]*gameEntry{}}
}

// CreatedGame is the reply to a create or join: the caller's identity plus a
// session token proving seat ownership.
type CreatedGame struct {
	GameID   string `json:"game_id"`
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
	Token    string `json:"token"`

	State *StateSnapshot `json:"state"`
}

// CreateGame opens a table for playerCount seats and sits the creator at seat 0.
func (s *GameService) CreateGame(name string, playerCount int) (*CreatedGame, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidJSON)
	}

	session, err := cribbage.NewSession(playerCount)
	if err != nil {
		return nil, err
	}
	seat, err := session.AddPlayer()
	if err != nil {
		return nil, err
	}

	code, err := newGameCode()
	if err != nil {
		return nil, err
	}
	game := &models.Game{
		ID:          uuid.NewString(),
		Code:        code,
		Status:      "waiting",
		PlayerCount: playerCount,
		IsTeams:     session.Rules.Teams,
		DealerSeat:  0,
		Phase:       string(session.Phase),
	}
	player := models.Player{
		ID:          uuid.NewString(),
		GameID:      game.ID,
		Name:        name,
		Seat:        seat,
		IsConnected: true,
	}
	if session.Rules.Teams {
		team := seat % 2
		player.Team = &team
	}

	err = s.withTx(func(tx *sql.Tx) error {
		if err := models.CreateGameTx(tx, game); err != nil {
			return err
		}
		return models.CreatePlayerTx(tx, &player)
	})
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(player.ID, game.ID, seat, name, s.cfg)
	if err != nil {
		return nil, err
	}

	entry := &gameEntry{game: game, session: session, players: []models.Player{player}}
	s.mu.Lock()
	s.entries[game.ID] = entry
	s.mu.Unlock()

	return &CreatedGame{
		GameID:   game.ID,
		Code:     game.Code,
		PlayerID: player.ID,
		Seat:     seat,
		Token:    token,
		State:    snapshotFor(entry, seat),
	}, nil
}

// JoinGame seats a player at the table identified by its join code. Filling
// the last seat moves the game out of waiting.
func (s *GameService) JoinGame(code, name string) (*CreatedGame, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidJSON)
	}
	game, err := models.GetGameByCode(s.db, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}

	entry, err := s.entry(game.ID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	seat, err := entry.session.AddPlayer()
	if err != nil {
		return nil, err
	}

	player := models.Player{
		ID:          uuid.NewString(),
		GameID:      game.ID,
		Name:        name,
		Seat:        seat,
		IsConnected: true,
	}
	if entry.session.Rules.Teams {
		team := seat % 2
		player.Team = &team
	}

	entry.game.Phase = string(entry.session.Phase)
	if entry.session.Phase != cribbage.PhaseWaiting {
		entry.game.Status = "playing"
	}
	err = s.withTx(func(tx *sql.Tx) error {
		if err := models.CreatePlayerTx(tx, &player); err != nil {
			if models.IsUniqueConstraint(err) {
				return cribbage.ErrGameFull
			}
			return err
		}
		return models.UpdateGameTx(tx, entry.game)
	})
	if err != nil {
		// Roll the in-memory seat back so the session stays in step with the rows.
		entry.session.Seated--
		if entry.session.Seated < entry.session.Rules.Players {
			entry.session.Phase = cribbage.PhaseWaiting
			entry.game.Phase = string(cribbage.PhaseWaiting)
			entry.game.Status = "waiting"
		}
		return nil, err
	}
	entry.players = append(entry.players, player)

	token, err := auth.GenerateToken(player.ID, game.ID, seat, name, s.cfg)
	if err != nil {
		return nil, err
	}
	return &CreatedGame{
		GameID:   game.ID,
		Code:     game.Code,
		PlayerID: player.ID,
		Seat:     seat,
		Token:    token,
		State:    snapshotFor(entry, seat),
	}, nil
}

// Preview resolves a join code (or game ID) to the spectator view, so a
// prospective player can inspect seats and scores before joining.
func (s *GameService) Preview(ref string) (*StateSnapshot, error) {
	ref = strings.TrimSpace(ref)
	game, err := models.GetGameByCode(s.db, strings.ToUpper(ref))
	if errors.Is(err, models.ErrGameNotFound) {
		game, err = models.GetGameByID(s.db, ref)
	}
	if err != nil {
		return nil, err
	}
	return s.PublicSnapshot(game.ID)
}

// Seat resolves a player ID to its seat, proving game membership.
func (s *GameService) Seat(gameID, playerID string) (int, error) {
	entry, err := s.entry(gameID)
	if err != nil {
		return 0, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.seatOf(playerID)
}

func (e *gameEntry) seatOf(playerID string) (int, error) {
	for _, p := range e.players {
		if p.ID == playerID {
			return p.Seat, nil
		}
	}
	return 0, models.ErrNotAPlayer
}

// entry returns the cached game entry, rehydrating it from the database when
// the process has not seen this game yet.
func (s *GameService) entry(gameID string) (*gameEntry, error) {
	s.mu.Lock()
	if e, ok := s.entries[gameID]; ok {
		s.mu.Unlock()
		return e, nil
	}
	s.mu.Unlock()

	e, err := s.rehydrate(gameID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another goroutine may have raced the rehydrate; first one in wins.
	if existing, ok := s.entries[gameID]; ok {
		return existing, nil
	}
	s.entries[gameID] = e
	return e, nil
}

// rehydrate rebuilds the in-memory session from the game's rows.
func (s *GameService) rehydrate(gameID string) (*gameEntry, error) {
	game, err := models.GetGameByID(s.db, gameID)
	if err != nil {
		return nil, err
	}
	players, err := models.ListPlayersByGame(s.db, gameID)
	if err != nil {
		return nil, err
	}

	session, err := cribbage.NewSession(game.PlayerCount)
	if err != nil {
		return nil, err
	}
	session.Seated = len(players)
	session.Phase = cribbage.Phase(game.Phase)
	session.DealerSeat = game.DealerSeat
	session.TurnSeat = -1
	if game.TurnSeat != nil {
		session.TurnSeat = *game.TurnSeat
	}
	session.PegCount = game.PegCount
	for _, p := range players {
		if p.Seat >= 0 && p.Seat < len(session.Scores) {
			session.Scores[p.Seat] = p.Score
		}
	}

	entry := &gameEntry{game: game, session: session, players: players}

	round, err := models.GetCurrentRound(s.db, gameID)
	if errors.Is(err, models.ErrNoActiveRound) {
		return entry, nil
	}
	if err != nil {
		return nil, err
	}
	hands, err := models.ListHandsByRound(s.db, round.ID)
	if err != nil {
		return nil, err
	}

	r := &cribbage.Round{
		Number:     round.Number,
		DealerSeat: round.DealerSeat,
		Stock:      round.Stock,
		Crib:       round.Crib,
		PegHistory: round.PegHistory,
		Hands:      make([]cribbage.PlayerHand, len(hands)),
	}
	for i, h := range hands {
		r.Hands[i] = cribbage.PlayerHand{
			Seat:      h.Seat,
			Dealt:     h.Dealt,
			Current:   h.Current,
			Discarded: h.Discarded,
			Pegged:    h.Pegged,
		}
	}
	if game.CutCard != nil {
		cut, err := common.ParseCard(*game.CutCard)
		if err != nil {
			return nil, fmt.Errorf("%w: stored cut card %q", models.ErrInvalidCard, *game.CutCard)
		}
		r.Cut = &cut
	}
	session.Round = r
	session.RoundNumber = round.Number

	entry.round = round
	entry.hands = hands
	return entry, nil
}

func (s *GameService) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// newGameCode mints a short join code. The alphabet skips 0/O and 1/I to keep
// codes readable over voice.
func newGameCode() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate game code: %w", err)
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}
