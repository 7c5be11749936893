package models

import (
	"database/sql"
	"path/filepath"
	"testing"

	"cribbage-live-go/internal/database"
	"cribbage-live-go/internal/game/common"
	"cribbage-live-go/internal/game/cribbage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) {
	t.Helper()
	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, fn(tx))
	require.NoError(t, tx.Commit())
}

func mustCards(t *testing.T, codes ...string) []common.Card {
	t.Helper()
	cs, err := common.ParseCards(codes)
	require.NoError(t, err)
	return cs
}

func TestGameRoundTrip(t *testing.T) {
	db := testDB(t)

	turn := 1
	cut := "KD"
	g := &Game{
		ID:          uuid.NewString(),
		Code:        "TESTCODE",
		Status:      "playing",
		PlayerCount: 2,
		DealerSeat:  0,
		Phase:       "pegging",
		TurnSeat:    &turn,
		PegCount:    15,
		CutCard:     &cut,
	}
	inTx(t, db, func(tx *sql.Tx) error { return CreateGameTx(tx, g) })

	got, err := GetGameByID(db, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Code, got.Code)
	assert.Equal(t, "pegging", got.Phase)
	require.NotNil(t, got.TurnSeat)
	assert.Equal(t, 1, *got.TurnSeat)
	require.NotNil(t, got.CutCard)
	assert.Equal(t, "KD", *got.CutCard)

	byCode, err := GetGameByCode(db, "TESTCODE")
	require.NoError(t, err)
	assert.Equal(t, g.ID, byCode.ID)

	got.Phase = "hand_scoring"
	got.TurnSeat = nil
	inTx(t, db, func(tx *sql.Tx) error { return UpdateGameTx(tx, got) })

	again, err := GetGameByID(db, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "hand_scoring", again.Phase)
	assert.Nil(t, again.TurnSeat)

	_, err = GetGameByID(db, uuid.NewString())
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestDuplicateGameCodeRejected(t *testing.T) {
	db := testDB(t)
	g := &Game{ID: uuid.NewString(), Code: "SAMECODE", Status: "waiting", PlayerCount: 2, Phase: "waiting"}
	inTx(t, db, func(tx *sql.Tx) error { return CreateGameTx(tx, g) })

	dup := &Game{ID: uuid.NewString(), Code: "SAMECODE", Status: "waiting", PlayerCount: 2, Phase: "waiting"}
	tx, err := db.Begin()
	require.NoError(t, err)
	err = CreateGameTx(tx, dup)
	require.Error(t, err)
	assert.True(t, IsUniqueConstraint(err))
	_ = tx.Rollback()
}

func TestPlayerRoundTrip(t *testing.T) {
	db := testDB(t)
	g := &Game{ID: uuid.NewString(), Code: "PLAYERS1", Status: "waiting", PlayerCount: 2, Phase: "waiting"}
	inTx(t, db, func(tx *sql.Tx) error { return CreateGameTx(tx, g) })

	p0 := Player{ID: uuid.NewString(), GameID: g.ID, Name: "dana", Seat: 0, IsConnected: true}
	p1 := Player{ID: uuid.NewString(), GameID: g.ID, Name: "kim", Seat: 1}
	inTx(t, db, func(tx *sql.Tx) error {
		if err := CreatePlayerTx(tx, &p1); err != nil {
			return err
		}
		return CreatePlayerTx(tx, &p0)
	})

	players, err := ListPlayersByGame(db, g.ID)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, 0, players[0].Seat, "seat order regardless of insert order")
	assert.Equal(t, "dana", players[0].Name)
	assert.True(t, players[0].IsConnected)
	assert.False(t, players[1].IsConnected)

	inTx(t, db, func(tx *sql.Tx) error { return UpdatePlayerScoreTx(tx, p0.ID, 42) })
	got, err := GetPlayerByID(db, p0.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, got.Score)

	require.NoError(t, SetPlayerConnected(db, p1.ID, true))
	got, err = GetPlayerByID(db, p1.ID)
	require.NoError(t, err)
	assert.True(t, got.IsConnected)

	_, err = GetPlayerByID(db, uuid.NewString())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRoundAndHandsRoundTrip(t *testing.T) {
	db := testDB(t)
	g := &Game{ID: uuid.NewString(), Code: "ROUNDS01", Status: "playing", PlayerCount: 2, Phase: "discard"}
	player := Player{ID: uuid.NewString(), GameID: g.ID, Name: "dana", Seat: 0}
	inTx(t, db, func(tx *sql.Tx) error {
		if err := CreateGameTx(tx, g); err != nil {
			return err
		}
		return CreatePlayerTx(tx, &player)
	})

	fiveS := common.Card{Rank: 5, Suit: common.Spades}
	r := &Round{
		ID:         uuid.NewString(),
		GameID:     g.ID,
		Number:     1,
		DealerSeat: 0,
		Stock:      mustCards(t, "KD", "9C"),
		Crib:       mustCards(t, "2H", "3H"),
		PegHistory: []cribbage.PegEvent{
			{Type: cribbage.PegPlay, Seat: 0, Card: &fiveS},
			{Type: cribbage.PegReset, Seat: -1},
		},
	}
	hand := &PlayerHand{
		ID:        uuid.NewString(),
		RoundID:   r.ID,
		PlayerID:  player.ID,
		Seat:      0,
		Dealt:     mustCards(t, "AS", "2S", "3S", "4S", "5S", "6S"),
		Current:   mustCards(t, "AS", "2S", "3S", "4S"),
		Discarded: mustCards(t, "5S", "6S"),
		Pegged:    []common.Card{},
	}
	inTx(t, db, func(tx *sql.Tx) error {
		if err := CreateRoundTx(tx, r); err != nil {
			return err
		}
		return CreateHandTx(tx, hand)
	})

	got, err := GetCurrentRound(db, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Number)
	assert.Equal(t, mustCards(t, "KD", "9C"), got.Stock)
	require.Len(t, got.PegHistory, 2)
	assert.Equal(t, cribbage.PegPlay, got.PegHistory[0].Type)
	require.NotNil(t, got.PegHistory[0].Card)
	assert.Equal(t, fiveS, *got.PegHistory[0].Card)
	assert.Equal(t, cribbage.PegReset, got.PegHistory[1].Type)

	hands, err := ListHandsByRound(db, r.ID)
	require.NoError(t, err)
	require.Len(t, hands, 1)
	assert.Equal(t, hand.Dealt, hands[0].Dealt)
	assert.Equal(t, hand.Discarded, hands[0].Discarded)
	assert.Nil(t, hands[0].HandScore)

	score := 12
	hands[0].HandScore = &score
	hands[0].Current = []common.Card{}
	inTx(t, db, func(tx *sql.Tx) error { return UpdateHandTx(tx, &hands[0]) })

	hands, err = ListHandsByRound(db, r.ID)
	require.NoError(t, err)
	require.NotNil(t, hands[0].HandScore)
	assert.Equal(t, 12, *hands[0].HandScore)
	assert.Empty(t, hands[0].Current)

	// Highest-numbered round wins.
	r2 := &Round{ID: uuid.NewString(), GameID: g.ID, Number: 2, DealerSeat: 1}
	inTx(t, db, func(tx *sql.Tx) error { return CreateRoundTx(tx, r2) })
	got, err = GetCurrentRound(db, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Number)

	_, err = GetCurrentRound(db, uuid.NewString())
	assert.ErrorIs(t, err, ErrNoActiveRound)
}
