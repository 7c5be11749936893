package cribbage

import (
	"math/bits"
	"sort"

	"cribbage-live-go/internal/game/common"
)

// ScoreBreakdown is the result of counting a settled hand against the cut.
// Fifteens and Pairs arrive pre-doubled (2 points per fifteen, 2 per pair).
type ScoreBreakdown struct {
	Fifteens int `json:"fifteens"`
	Pairs    int `json:"pairs"`
	Runs     int `json:"runs"`
	Flush    int `json:"flush"`
	Nobs     int `json:"nobs"`
	Total    int `json:"total"`
}

// ScoreHand counts a kept 4-card hand (or the crib) plus the cut card.
func ScoreHand(hand []common.Card, cut common.Card, isCrib bool) ScoreBreakdown {
	all := make([]common.Card, 0, len(hand)+1)
	all = append(all, hand...)
	all = append(all, cut)

	sb := ScoreBreakdown{
		Fifteens: countFifteens(all),
		Pairs:    countPairs(all),
		Runs:     countRuns(all),
		Flush:    countFlush(hand, cut, isCrib),
		Nobs:     countNobs(hand, cut),
	}
	sb.Total = sb.Fifteens + sb.Pairs + sb.Runs + sb.Flush + sb.Nobs
	return sb
}

// HisHeels is the dealer bonus when the cut itself is a jack. It is checked
// once at cut time, before any hand counting.
func HisHeels(cut common.Card) int {
	if cut.Rank == common.Jack {
		return 2
	}
	return 0
}

// countFifteens awards 2 points per distinct card subset (size 2..5) whose
// counting values sum to exactly 15.
func countFifteens(cards []common.Card) int {
	values := make([]int, len(cards))
	for i, c := range cards {
		values[i] = c.Value15()
	}
	points := 0
	for mask := 1; mask < 1<<len(values); mask++ {
		if bits.OnesCount(uint(mask)) < 2 {
			continue
		}
		sum := 0
		for i, v := range values {
			if mask&(1<<i) != 0 {
				sum += v
			}
		}
		if sum == 15 {
			points += 2
		}
	}
	return points
}

// countPairs awards k*(k-1) points per rank appearing k times
// (each of the k-choose-2 pairs is worth 2).
func countPairs(cards []common.Card) int {
	count := map[common.Rank]int{}
	for _, c := range cards {
		count[c.Rank]++
	}
	points := 0
	for _, k := range count {
		points += k * (k - 1)
	}
	return points
}

// countRuns scores only the longest run of 3+ consecutive ranks, counted once
// per combination of duplicates: length times the product of the rank
// multiplicities inside the run. Shorter runs nested in a longer one never
// score separately.
func countRuns(cards []common.Card) int {
	mult := map[int]int{}
	for _, c := range cards {
		mult[c.RunOrder()]++
	}
	ranks := make([]int, 0, len(mult))
	for r := range mult {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)

	best := 0
	for start := 0; start < len(ranks); start++ {
		length := 1
		product := mult[ranks[start]]
		for i := start + 1; i < len(ranks) && ranks[i] == ranks[i-1]+1; i++ {
			length++
			product *= mult[ranks[i]]
		}
		if length >= 3 && length*product > best {
			best = length * product
		}
	}
	return best
}

// countFlush: 4 matching kept cards score 4 (5 with a matching cut); a crib
// flush needs all 5 cards, so 4 matching crib cards with a mismatched cut
// score nothing.
func countFlush(hand []common.Card, cut common.Card, isCrib bool) int {
	if len(hand) != 4 {
		return 0
	}
	s := hand[0].Suit
	for _, c := range hand[1:] {
		if c.Suit != s {
			return 0
		}
	}
	if cut.Suit == s {
		return 5
	}
	if isCrib {
		return 0
	}
	return 4
}

// countNobs: 1 point for holding the jack of the cut suit. A jack as the cut
// card does not trigger nobs (that is his heels, scored at cut time).
func countNobs(hand []common.Card, cut common.Card) int {
	for _, c := range hand {
		if c.Rank == common.Jack && c.Suit == cut.Suit {
			return 1
		}
	}
	return 0
}
