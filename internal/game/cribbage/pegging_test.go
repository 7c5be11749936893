package cribbage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPegPlays(t *testing.T) {
	hand := cards(t, "KH", "5S", "AD")

	assert.Equal(t, hand, ValidPegPlays(hand, 0))
	assert.Equal(t, cards(t, "5S", "AD"), ValidPegPlays(hand, 25))
	assert.Equal(t, cards(t, "AD"), ValidPegPlays(hand, 30))
	assert.Empty(t, ValidPegPlays(hand, 31))
}

func TestScorePegPlayFifteen(t *testing.T) {
	res := ScorePegPlay(cards(t, "KH"), card(t, "5S"))
	assert.Equal(t, 2, res.Points)
	assert.Equal(t, []string{"fifteen for 2"}, res.Breakdown)
	assert.Equal(t, 15, res.NewCount)
}

func TestScorePegPlayThirtyOne(t *testing.T) {
	res := ScorePegPlay(cards(t, "KH", "QD", "8S"), card(t, "3C"))
	assert.Equal(t, 2, res.Points)
	assert.Equal(t, []string{"31 for 2"}, res.Breakdown)
	assert.Equal(t, 31, res.NewCount)
}

func TestScorePegPlayPairs(t *testing.T) {
	res := ScorePegPlay(cards(t, "AS"), card(t, "AH"))
	assert.Equal(t, 2, res.Points)
	assert.Equal(t, []string{"pair for 2"}, res.Breakdown)

	res = ScorePegPlay(cards(t, "AS", "AH"), card(t, "AD"))
	assert.Equal(t, 6, res.Points)
	assert.Equal(t, []string{"three of a kind for 6"}, res.Breakdown)

	res = ScorePegPlay(cards(t, "7S", "7H", "7D"), card(t, "7C"))
	assert.Equal(t, 12, res.Points)
	assert.Equal(t, []string{"four of a kind for 12"}, res.Breakdown)
}

func TestScorePegPlayPairBrokenByInterleave(t *testing.T) {
	res := ScorePegPlay(cards(t, "4S", "9H"), card(t, "4D"))
	assert.Equal(t, 0, res.Points)
}

func TestScorePegPlayRunOutOfOrder(t *testing.T) {
	// 4, 6, 5: order of play does not matter for the run.
	res := ScorePegPlay(cards(t, "4S", "6H"), card(t, "5D"))
	assert.Equal(t, 5, res.Points) // run of 3 plus fifteen
	assert.Contains(t, res.Breakdown, "run of 3 for 3")
	assert.Contains(t, res.Breakdown, "fifteen for 2")
}

func TestScorePegPlayLongestRunOnly(t *testing.T) {
	res := ScorePegPlay(cards(t, "2S", "3H", "4D"), card(t, "5C"))
	assert.Equal(t, 4, res.Points)
	assert.Equal(t, []string{"run of 4 for 4"}, res.Breakdown)
}

func TestScorePegPlayDuplicateRankBlocksRun(t *testing.T) {
	// A, A, 2 is not a run: the duplicate ace disqualifies the window.
	res := ScorePegPlay(cards(t, "AS", "AH"), card(t, "2D"))
	assert.Equal(t, 0, res.Points)
}

func TestScorePegPlayRunSkipsBrokenWindow(t *testing.T) {
	// 3, 5, 4, 5: the 4-card window repeats a 5, but 5-4-5 fails too; only
	// the trailing 5-4 plus the 3 would need the full window. No run.
	res := ScorePegPlay(cards(t, "3S", "5H", "4D"), card(t, "5C"))
	assert.NotContains(t, res.Breakdown, "run of 3 for 3")
	assert.NotContains(t, res.Breakdown, "run of 4 for 4")

	// 5, 3, 4 at the tail still runs even with an unrelated lead card.
	res = ScorePegPlay(cards(t, "KS", "5H", "3D"), card(t, "4C"))
	assert.Contains(t, res.Breakdown, "run of 3 for 3")
}

func TestScorePegPlayFaceCardsDoNotRunIntoTens(t *testing.T) {
	// 10, J, Q is a real run (10-11-12), not three tens.
	res := ScorePegPlay(cards(t, "10S", "JH"), card(t, "QD"))
	assert.Contains(t, res.Breakdown, "run of 3 for 3")
	assert.NotContains(t, res.Breakdown, "three of a kind for 6")
}
