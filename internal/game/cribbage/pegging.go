package cribbage

import (
	"fmt"
	"sort"

	"cribbage-live-go/internal/game/common"
)

const (
	// MaxCount is the running-count ceiling for a pegging segment.
	MaxCount = 31

	// LastCardPoints goes to whoever played the final card of a segment or
	// of the round, unless the count landed exactly on 31.
	LastCardPoints = 1
)

// PegResult reports one scored pegging play.
type PegResult struct {
	Points    int      `json:"points"`
	Breakdown []string `json:"breakdown"`
	NewCount  int      `json:"new_count"`
}

// ValidPegPlays returns the cards in hand whose value keeps the running count
// at or under 31.
func ValidPegPlays(hand []common.Card, currentCount int) []common.Card {
	var out []common.Card
	for _, c := range hand {
		if currentCount+c.Value15() <= MaxCount {
			out = append(out, c)
		}
	}
	return out
}

// ScorePegPlay scores newCard against the plays of the current unreset
// segment (oldest first). The caller validates the 31 ceiling beforehand via
// ValidPegPlays; ScorePegPlay only counts.
func ScorePegPlay(playHistory []common.Card, newCard common.Card) PegResult {
	all := make([]common.Card, 0, len(playHistory)+1)
	all = append(all, playHistory...)
	all = append(all, newCard)

	newCount := 0
	for _, c := range all {
		newCount += c.Value15()
	}

	res := PegResult{Breakdown: []string{}, NewCount: newCount}

	if newCount == 15 {
		res.Points += 2
		res.Breakdown = append(res.Breakdown, "fifteen for 2")
	}
	if newCount == MaxCount {
		res.Points += 2
		res.Breakdown = append(res.Breakdown, "31 for 2")
	}

	switch pts := pegPairPoints(all); pts {
	case 2:
		res.Points += 2
		res.Breakdown = append(res.Breakdown, "pair for 2")
	case 6:
		res.Points += 6
		res.Breakdown = append(res.Breakdown, "three of a kind for 6")
	case 12:
		res.Points += 12
		res.Breakdown = append(res.Breakdown, "four of a kind for 12")
	}

	if run := pegRunPoints(all); run > 0 {
		res.Points += run
		res.Breakdown = append(res.Breakdown, fmt.Sprintf("run of %d for %d", run, run))
	}

	return res
}

// pegPairPoints counts consecutive same-rank cards at the end of the
// sequence: c of a kind scores c*(c-1). The walk stops at the first rank
// mismatch, so an interleaved card breaks the pair.
func pegPairPoints(cards []common.Card) int {
	if len(cards) < 2 {
		return 0
	}
	last := cards[len(cards)-1].Rank
	c := 1
	for i := len(cards) - 2; i >= 0; i-- {
		if cards[i].Rank != last {
			break
		}
		c++
	}
	if c < 2 {
		return 0
	}
	return c * (c - 1)
}

// pegRunPoints finds the longest end-anchored window whose ranks sort into a
// strictly consecutive sequence; order of play does not matter but duplicate
// ranks disqualify the window. Only the longest match scores.
func pegRunPoints(cards []common.Card) int {
	for n := len(cards); n >= 3; n-- {
		window := cards[len(cards)-n:]
		ranks := make([]int, n)
		for i, c := range window {
			ranks[i] = c.RunOrder()
		}
		sort.Ints(ranks)
		isRun := true
		for i := 1; i < n; i++ {
			if ranks[i] != ranks[i-1]+1 {
				isRun = false
				break
			}
		}
		if isRun {
			return n
		}
	}
	return 0
}
