package service

import (
	"path/filepath"
	"testing"
	"time"

	"cribbage-live-go/internal/auth"
	"cribbage-live-go/internal/config"
	"cribbage-live-go/internal/database"
	"cribbage-live-go/internal/game/common"
	"cribbage-live-go/internal/game/cribbage"
	"cribbage-live-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Addr:         ":0",
		DatabasePath: "unused",
		JWTSecret:    "test-secret",
		JWTIssuer:    "cribbage-live-test",
		JWTTTL:       time.Hour,
		AppEnv:       "development",
	}
}

func testService(t *testing.T) *GameService {
	t.Helper()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewGameService(db, testConfig())
}

func TestCreateGameMintsSessionToken(t *testing.T) {
	svc := testService(t)

	created, err := svc.CreateGame("alice", 2)
	require.NoError(t, err)
	assert.Len(t, created.Code, 8)
	assert.Equal(t, 0, created.Seat)
	require.NotNil(t, created.State)
	assert.Equal(t, cribbage.PhaseWaiting, created.State.Phase)

	claims, err := auth.ParseAndValidateToken(created.Token, testConfig())
	require.NoError(t, err)
	assert.Equal(t, created.PlayerID, claims.PlayerID)
	assert.Equal(t, created.GameID, claims.GameID)
	assert.Equal(t, 0, claims.Seat)
	assert.Equal(t, "alice", claims.Name)
}

func TestCreateGameValidation(t *testing.T) {
	svc := testService(t)

	_, err := svc.CreateGame("", 2)
	assert.ErrorIs(t, err, models.ErrInvalidJSON)

	_, err = svc.CreateGame("alice", 5)
	assert.ErrorIs(t, err, common.ErrInvalidPlayerCount)
}

func TestPreviewGame(t *testing.T) {
	svc := testService(t)
	created, err := svc.CreateGame("alice", 2)
	require.NoError(t, err)

	// Preview by join code needs no session and never carries cards.
	snap, err := svc.Preview(created.Code)
	require.NoError(t, err)
	assert.Equal(t, created.GameID, snap.GameID)
	assert.Equal(t, -1, snap.YourSeat)
	assert.Empty(t, snap.YourHand)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "alice", snap.Players[0].Name)

	byID, err := svc.Preview(created.GameID)
	require.NoError(t, err)
	assert.Equal(t, snap.GameID, byID.GameID)

	_, err = svc.Preview("NOTACODE")
	assert.ErrorIs(t, err, models.ErrGameNotFound)
}

func TestJoinGame(t *testing.T) {
	svc := testService(t)
	created, err := svc.CreateGame("alice", 2)
	require.NoError(t, err)

	_, err = svc.JoinGame("WRONGCOD", "bob")
	assert.ErrorIs(t, err, models.ErrGameNotFound)

	joined, err := svc.JoinGame(created.Code, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, joined.Seat)
	assert.Equal(t, cribbage.PhaseDeal, joined.State.Phase, "full table is ready to deal")
	require.Len(t, joined.State.Players, 2)

	_, err = svc.JoinGame(created.Code, "carol")
	assert.ErrorIs(t, err, cribbage.ErrGameAlreadyStarted)
}

// TestFullRoundThroughService drives create/join/deal/discard/cut/peg against
// real SQLite rows, then rehydrates a cold service from the same database and
// checks the game picks up where it left off.
func TestFullRoundThroughService(t *testing.T) {
	svc := testService(t)

	alice, err := svc.CreateGame("alice", 2)
	require.NoError(t, err)
	bob, err := svc.JoinGame(alice.Code, "bob")
	require.NoError(t, err)
	gameID := alice.GameID

	// Only seated players may act.
	_, err = svc.StartRound(gameID, "nobody")
	assert.ErrorIs(t, err, models.ErrNotAPlayer)

	started, err := svc.StartRound(gameID, bob.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, 1, started.RoundNumber)
	assert.Equal(t, cribbage.PhaseDiscard, started.Phase)
	require.Len(t, started.Hands, 2)
	for _, h := range started.Hands {
		assert.Len(t, h.Cards, 6)
	}
	assert.Equal(t, 40, started.State.StockSize)
	assert.Empty(t, started.State.YourHand, "public state never carries cards")

	// Each player discards the first two cards of their own view.
	for _, p := range []*CreatedGame{alice, bob} {
		snap, err := svc.Snapshot(gameID, p.PlayerID)
		require.NoError(t, err)
		require.Len(t, snap.YourHand, 6)
		res, _, err := svc.Discard(gameID, p.PlayerID, common.Strings(snap.YourHand[:2]))
		require.NoError(t, err)
		assert.Len(t, res.Remaining, 4)
	}

	snap, err := svc.Snapshot(gameID, alice.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, cribbage.PhaseCut, snap.Phase)
	assert.Equal(t, 4, snap.CribSize)
	assert.Equal(t, 1, snap.TurnSeat, "non-dealer cuts")

	// The dealer cannot cut out of turn.
	_, _, err = svc.Cut(gameID, alice.PlayerID)
	assert.ErrorIs(t, err, cribbage.ErrNotYourTurn)

	cut, _, err := svc.Cut(gameID, bob.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, cribbage.PhasePegging, cut.Phase)

	// Whoever holds the turn pegs one card from their legal plays.
	snap, err = svc.Snapshot(gameID, bob.PlayerID)
	require.NoError(t, err)
	require.Equal(t, 1, snap.TurnSeat)
	plays, err := svc.ValidPlays(gameID, bob.PlayerID)
	require.NoError(t, err)
	require.NotEmpty(t, plays)

	play, _, err := svc.PlayCard(gameID, bob.PlayerID, plays[0].String())
	require.NoError(t, err)
	assert.Equal(t, plays[0], play.Card)
	assert.Equal(t, plays[0].Value15(), play.NewCount)

	// A cold process over the same database sees the identical game.
	cold := NewGameService(svc.db, testConfig())
	coldSnap, err := cold.Snapshot(gameID, bob.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, cribbage.PhasePegging, coldSnap.Phase)
	assert.Equal(t, play.NewCount, coldSnap.PegCount)
	assert.ElementsMatch(t, snapHand(t, svc, gameID, bob.PlayerID), coldSnap.YourHand)
	require.NotNil(t, coldSnap.Cut)
	assert.Equal(t, *snap.Cut, *coldSnap.Cut)
}

func snapHand(t *testing.T, svc *GameService, gameID, playerID string) []common.Card {
	t.Helper()
	snap, err := svc.Snapshot(gameID, playerID)
	require.NoError(t, err)
	return snap.YourHand
}

func TestSetConnected(t *testing.T) {
	svc := testService(t)
	created, err := svc.CreateGame("alice", 2)
	require.NoError(t, err)

	require.NoError(t, svc.SetConnected(created.GameID, created.PlayerID, false))
	snap, err := svc.Snapshot(created.GameID, created.PlayerID)
	require.NoError(t, err)
	require.Len(t, snap.Players, 1)
	assert.False(t, snap.Players[0].IsConnected)

	err = svc.SetConnected(created.GameID, "nobody", true)
	assert.ErrorIs(t, err, models.ErrNotAPlayer)
}
