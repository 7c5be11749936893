package cribbage

import (
	"testing"

	"cribbage-live-go/internal/game/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// riggedDeck builds a full 52-card deck with the given cards on top, so Deal
// hands them out in order.
func riggedDeck(t *testing.T, top ...string) []common.Card {
	t.Helper()
	deck := cards(t, top...)
	onTop := map[common.Card]bool{}
	for _, c := range deck {
		require.False(t, onTop[c], "duplicate rigged card %s", c)
		onTop[c] = true
	}
	for _, c := range common.NewStandardDeck() {
		if !onTop[c] {
			deck = append(deck, c)
		}
	}
	require.Len(t, deck, 52)
	return deck
}

func fullSession(t *testing.T, players int) *Session {
	t.Helper()
	s, err := NewSession(players)
	require.NoError(t, err)
	for i := 0; i < players; i++ {
		seat, err := s.AddPlayer()
		require.NoError(t, err)
		assert.Equal(t, i, seat)
	}
	return s
}

func TestNewSessionPlayerCount(t *testing.T) {
	for _, n := range []int{1, 5} {
		_, err := NewSession(n)
		assert.ErrorIs(t, err, common.ErrInvalidPlayerCount)
	}
	s, err := NewSession(4)
	require.NoError(t, err)
	assert.True(t, s.Rules.Teams)
}

func TestAddPlayerFillsTable(t *testing.T) {
	s, err := NewSession(2)
	require.NoError(t, err)
	assert.Equal(t, PhaseWaiting, s.Phase)

	_, err = s.StartRound()
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	_, err = s.AddPlayer()
	require.NoError(t, err)
	assert.Equal(t, PhaseWaiting, s.Phase)

	_, err = s.AddPlayer()
	require.NoError(t, err)
	assert.Equal(t, PhaseDeal, s.Phase)

	_, err = s.AddPlayer()
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestDiscardValidation(t *testing.T) {
	s := fullSession(t, 2)
	deck := riggedDeck(t,
		"AS", "2S", "3S", "4S", "5S", "6S",
		"AH", "2H", "3H", "4H", "5H", "6H",
	)
	_, err := s.startRoundWith(deck)
	require.NoError(t, err)
	assert.Equal(t, PhaseDiscard, s.Phase)

	_, err = s.Discard(0, cards(t, "5S"))
	assert.ErrorIs(t, err, ErrWrongDiscardCount)

	_, err = s.Discard(0, cards(t, "5H", "6H"))
	assert.ErrorIs(t, err, ErrCardNotInHand)

	_, err = s.Discard(0, cards(t, "5S", "5S"))
	assert.ErrorIs(t, err, ErrCardNotInHand, "duplicate discard")

	_, err = s.Discard(7, cards(t, "5S", "6S"))
	assert.ErrorIs(t, err, ErrInvalidSeat)

	res, err := s.Discard(0, cards(t, "5S", "6S"))
	require.NoError(t, err)
	assert.False(t, res.AllDiscarded)
	assert.Len(t, res.Remaining, 4)

	_, err = s.Discard(0, cards(t, "AS", "2S"))
	assert.ErrorIs(t, err, ErrAlreadyDiscarded)

	res, err = s.Discard(1, cards(t, "5H", "6H"))
	require.NoError(t, err)
	assert.True(t, res.AllDiscarded)
	assert.Equal(t, PhaseCut, s.Phase)
	assert.Equal(t, 1, s.TurnSeat, "seat left of dealer cuts")
}

// TestTwoPlayerFullRound drives a complete deterministic round: rigged deal,
// fixed cut, scripted pegging, then the official scoring order.
func TestTwoPlayerFullRound(t *testing.T) {
	s := fullSession(t, 2)
	s.randIndex = func(n int) (int, error) { return 0, nil }

	deck := riggedDeck(t,
		"AS", "2S", "3S", "4S", "5S", "6S", // seat 0
		"AH", "2H", "3H", "4H", "5H", "6H", // seat 1
		"KD", // cut
	)
	_, err := s.startRoundWith(deck)
	require.NoError(t, err)
	assert.Equal(t, 1, s.RoundNumber)
	assert.Equal(t, 0, s.DealerSeat)

	_, err = s.Discard(0, cards(t, "5S", "6S"))
	require.NoError(t, err)
	_, err = s.Discard(1, cards(t, "5H", "6H"))
	require.NoError(t, err)

	// Cut is turn-bound to the seat left of the dealer.
	_, err = s.Cut(0)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	cut, err := s.Cut(1)
	require.NoError(t, err)
	assert.Equal(t, "KD", cut.Cut.String())
	assert.Zero(t, cut.DealerPoints)
	assert.Equal(t, PhasePegging, s.Phase)
	assert.Equal(t, 1, s.TurnSeat, "non-dealer leads the pegging")

	// Mirrored hands: every seat-0 reply pairs the previous card.
	type play struct {
		seat   int
		card   string
		points int
		count  int
	}
	script := []play{
		{1, "4H", 0, 4},
		{0, "4S", 2, 8},
		{1, "3H", 0, 11},
		{0, "3S", 2, 14},
		{1, "2H", 0, 16},
		{0, "2S", 2, 18},
		{1, "AH", 0, 19},
	}
	for _, p := range script {
		res, err := s.PlayCard(p.seat, card(t, p.card))
		require.NoError(t, err, p.card)
		assert.Equal(t, p.points, res.Points, p.card)
		assert.Equal(t, p.count, res.NewCount, p.card)
	}

	// Final card: pair for 2, then last card for 1 since the count is not 31.
	res, err := s.PlayCard(0, card(t, "AS"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Points)
	assert.Equal(t, 20, res.NewCount)
	assert.Equal(t, PhaseHandScoring, s.Phase)
	assert.Equal(t, []int{9, 0}, s.Scores, "four pegging pairs plus last card")
	assert.Equal(t, 1, s.TurnSeat, "scoring starts left of the dealer")

	results, err := s.ScoreHands()
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Non-dealer first: A-2-3-4 hearts with KD cut.
	assert.Equal(t, 1, results[0].Seat)
	assert.Equal(t, 12, results[0].Breakdown.Total, "two fifteens, run of four, flush")
	assert.False(t, results[0].IsCrib)

	// Dealer's hand, then the crib to the dealer.
	assert.Equal(t, 0, results[1].Seat)
	assert.Equal(t, 12, results[1].Breakdown.Total)
	assert.Equal(t, 0, results[2].Seat)
	assert.True(t, results[2].IsCrib)
	assert.Equal(t, 8, results[2].Breakdown.Total, "two jack-less fifteens and two pairs")

	assert.Equal(t, []int{29, 12}, s.Scores)
	assert.Equal(t, PhaseDeal, s.Phase, "round cycles back to deal")
	assert.Equal(t, 1, s.DealerSeat, "deal rotates")
	assert.Equal(t, -1, s.TurnSeat)
}

func TestHisHeelsAwardsDealer(t *testing.T) {
	s := fullSession(t, 2)
	s.randIndex = func(n int) (int, error) { return 0, nil }

	deck := riggedDeck(t,
		"AS", "2S", "3S", "4S", "5S", "6S",
		"AH", "2H", "3H", "4H", "5H", "6H",
		"JD", // his heels
	)
	_, err := s.startRoundWith(deck)
	require.NoError(t, err)
	_, err = s.Discard(0, cards(t, "5S", "6S"))
	require.NoError(t, err)
	_, err = s.Discard(1, cards(t, "5H", "6H"))
	require.NoError(t, err)

	res, err := s.Cut(1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.DealerPoints)
	assert.Equal(t, []int{2, 0}, s.Scores)
	assert.Equal(t, PhasePegging, s.Phase)
}

func TestDeclareGoRequiresNoLegalPlay(t *testing.T) {
	s := peggingSession(t, [][]string{{"AS"}, {"KH"}}, 28, 1)

	_, err := s.DeclareGo(0)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	res, err := s.DeclareGo(1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.NextTurnSeat, "turn passes to the seat that can play")

	_, err = s.DeclareGo(0)
	assert.ErrorIs(t, err, ErrMustPlayIfPossible)
}

func TestGlobalGoResetsCount(t *testing.T) {
	// Nobody can play under 31: the count resets and the next seat with any
	// card leads the new segment.
	s := peggingSession(t, [][]string{{"KS"}, {"KH"}}, 28, 1)

	res, err := s.DeclareGo(1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.NextTurnSeat)
	assert.Equal(t, 0, s.PegCount)

	play, err := s.PlayCard(0, card(t, "KS"))
	require.NoError(t, err)
	assert.Equal(t, 10, play.NewCount)
}

func TestThirtyOneResetsWithoutLastCard(t *testing.T) {
	s := peggingSession(t, [][]string{{"3S", "AS"}, {"AH"}}, 28, 0)

	res, err := s.PlayCard(0, card(t, "3S"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Points, "31 for 2, no separate last-card point")
	assert.Equal(t, 0, s.PegCount, "count resets after 31")
	assert.Equal(t, 1, res.NextTurnSeat)

	// The new segment starts clean: no pair credit across the reset fence.
	prev := s.Round.PegHistory[len(s.Round.PegHistory)-1]
	assert.Equal(t, PegReset, prev.Type)
}

func TestExceedsThirtyOneRejected(t *testing.T) {
	s := peggingSession(t, [][]string{{"5S"}, {"AH"}}, 28, 0)
	_, err := s.PlayCard(0, card(t, "5S"))
	assert.ErrorIs(t, err, ErrExceedsThirtyOne)
}

func TestPeggingWinEndsGameImmediately(t *testing.T) {
	s := peggingSession(t, [][]string{{"5S", "2S"}, {"KH", "QH"}}, 10, 0)
	s.Scores[0] = 119

	res, err := s.PlayCard(0, card(t, "5S"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Points, "fifteen for 2")
	assert.Equal(t, PhaseFinished, s.Phase)
	winner, ok := s.Winner()
	require.True(t, ok)
	assert.Equal(t, 0, winner)

	_, err = s.PlayCard(1, card(t, "KH"))
	assert.ErrorIs(t, err, ErrNotInPeggingPhase)
}

func TestScoreHandsWinShortCircuits(t *testing.T) {
	s := fullSession(t, 2)
	cut := card(t, "KD")
	s.Phase = PhaseHandScoring
	s.TurnSeat = 1
	s.Scores = []int{0, 119}
	s.RoundNumber = 1
	s.Round = &Round{
		Number:     1,
		DealerSeat: 0,
		Cut:        &cut,
		Crib:       cards(t, "5S", "6S", "5H", "6H"),
		Hands: []PlayerHand{
			{Seat: 0, Dealt: cards(t, "AS", "2S", "3S", "4S")},
			{Seat: 1, Dealt: cards(t, "AH", "2H", "3H", "4H")},
		},
	}

	results, err := s.ScoreHands()
	require.NoError(t, err)
	require.Len(t, results, 1, "dealer's hand and crib are never counted")
	assert.Equal(t, 1, results[0].Seat)
	assert.Equal(t, PhaseFinished, s.Phase)
	winner, ok := s.Winner()
	require.True(t, ok)
	assert.Equal(t, 1, winner)

	_, err = s.ScoreHands()
	assert.ErrorIs(t, err, ErrNotInScoringPhase)
}

func TestThreePlayerTurnRotation(t *testing.T) {
	s := fullSession(t, 3)
	deck := riggedDeck(t,
		"AS", "2S", "3S", "4S", "5S", // seat 0
		"AH", "2H", "3H", "4H", "5H", // seat 1
		"AD", "2D", "3D", "4D", "5D", // seat 2
		"KD", // cut
	)
	s.randIndex = func(n int) (int, error) { return 0, nil }
	_, err := s.startRoundWith(deck)
	require.NoError(t, err)

	// Three players discard one card each.
	for seat, discard := range []string{"5S", "5H", "5D"} {
		_, err := s.Discard(seat, cards(t, discard))
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseCut, s.Phase)
	assert.Len(t, s.Round.Crib, 3, "three-player crib stays at three cards")

	_, err = s.Cut(1)
	require.NoError(t, err)

	// Pegging rotates 1 -> 2 -> 0.
	_, err = s.PlayCard(1, card(t, "4H"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.TurnSeat)
	_, err = s.PlayCard(2, card(t, "4D"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.TurnSeat)
}

func TestCloneIsDeep(t *testing.T) {
	s := peggingSession(t, [][]string{{"5S", "2S"}, {"KH"}}, 0, 0)
	cp := s.Clone()

	_, err := s.PlayCard(0, card(t, "5S"))
	require.NoError(t, err)

	assert.Len(t, cp.Round.Hands[0].Current, 2, "clone unaffected by later plays")
	assert.Empty(t, cp.Round.PegHistory)
	assert.Zero(t, cp.PegCount)
}

// peggingSession builds a session mid-pegging with the given current hands,
// running count, and turn seat. History is seeded with filler plays so the
// count matches without influencing pair/run scans.
func peggingSession(t *testing.T, hands [][]string, count, turnSeat int) *Session {
	t.Helper()
	s := fullSession(t, len(hands))
	s.Phase = PhasePegging
	s.TurnSeat = turnSeat
	s.PegCount = count
	s.RoundNumber = 1
	cut := card(t, "9C")
	s.Round = &Round{Number: 1, DealerSeat: 0, Cut: &cut}
	for seat, hand := range hands {
		cs := cards(t, hand...)
		s.Round.Hands = append(s.Round.Hands, PlayerHand{
			Seat:    seat,
			Dealt:   append([]common.Card(nil), cs...),
			Current: append([]common.Card(nil), cs...),
		})
	}
	if count > 0 {
		// Seed the log with face cards summing to the count so segment sums
		// line up; face filler never extends pairs or runs of the test hands.
		remaining := count
		fillers := cards(t, "KC", "QC", "JC", "KD", "QD", "JD")
		for i := 0; remaining > 0 && i < len(fillers); i++ {
			c := fillers[i]
			if remaining < 10 {
				// Use a low card for the remainder.
				c = card(t, []string{"", "AC", "2C", "3C", "4C", "5C", "6C", "7C", "8C", "9D"}[remaining])
				remaining = 0
			} else {
				remaining -= 10
			}
			cc := c
			s.Round.PegHistory = append(s.Round.PegHistory, PegEvent{Type: PegPlay, Seat: 0, Card: &cc})
		}
	}
	return s
}
