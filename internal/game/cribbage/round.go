package cribbage

import "cribbage-live-go/internal/game/common"

// Phase is the strictly-ordered per-round state. Rounds cycle back to deal
// via dealer rotation until someone reaches the target score.
type Phase string

const (
	PhaseWaiting     Phase = "waiting"
	PhaseDeal        Phase = "deal"
	PhaseDiscard     Phase = "discard"
	PhaseCut         Phase = "cut"
	PhasePegging     Phase = "pegging"
	PhaseHandScoring Phase = "hand_scoring"
	PhaseFinished    Phase = "finished"
)

type PegEventType string

const (
	PegPlay  PegEventType = "play"
	PegGo    PegEventType = "go"
	PegReset PegEventType = "reset"
)

// PegEvent is one entry of the ordered pegging log. Reset markers fence the
// backward scans of the pegging engine so pairs and runs never cross a 31 or
// a global Go. Seat is -1 for reset markers.
type PegEvent struct {
	Type PegEventType `json:"type"`
	Seat int          `json:"seat"`
	Card *common.Card `json:"card,omitempty"`
}

// PlayerHand tracks one seat's cards through a round.
// Invariant: Dealt is always the disjoint union of Current, Discarded and
// Pegged; a card moves between those sets and is never duplicated.
type PlayerHand struct {
	Seat      int           `json:"seat"`
	Dealt     []common.Card `json:"dealt"`
	Current   []common.Card `json:"current"`
	Discarded []common.Card `json:"discarded"`
	Pegged    []common.Card `json:"pegged"`
}

// KeptCards reconstructs the 4-card counting hand: dealt minus what went to
// the crib. Plain set difference is safe because a single deck never holds
// duplicate cards.
func (h *PlayerHand) KeptCards() []common.Card {
	kept := make([]common.Card, 0, len(h.Dealt)-len(h.Discarded))
	for _, c := range h.Dealt {
		if !containsCard(h.Discarded, c) {
			kept = append(kept, c)
		}
	}
	return kept
}

func (h *PlayerHand) holds(c common.Card) bool {
	return containsCard(h.Current, c)
}

// removeCurrent moves a card out of Current; callers validate presence first.
func (h *PlayerHand) removeCurrent(c common.Card) bool {
	for i, hc := range h.Current {
		if hc == c {
			h.Current = append(h.Current[:i], h.Current[i+1:]...)
			return true
		}
	}
	return false
}

func containsCard(cards []common.Card, c common.Card) bool {
	for _, hc := range cards {
		if hc == c {
			return true
		}
	}
	return false
}

// Round is the per-deal mutable state. Once hand scoring completes it becomes
// immutable history; exactly one round is current per game.
type Round struct {
	Number     int           `json:"number"`
	DealerSeat int           `json:"dealer_seat"`
	Stock      []common.Card `json:"stock"`
	Crib       []common.Card `json:"crib"`
	Cut        *common.Card  `json:"cut,omitempty"`
	PegHistory []PegEvent    `json:"peg_history"`
	Hands      []PlayerHand  `json:"hands"`
}

func (r *Round) hand(seat int) *PlayerHand {
	if seat < 0 || seat >= len(r.Hands) {
		return nil
	}
	return &r.Hands[seat]
}

// currentSegment returns the cards played since the last reset marker,
// oldest first. Go entries carry no card and are skipped.
func (r *Round) currentSegment() []common.Card {
	start := 0
	for i := len(r.PegHistory) - 1; i >= 0; i-- {
		if r.PegHistory[i].Type == PegReset {
			start = i + 1
			break
		}
	}
	var seq []common.Card
	for _, ev := range r.PegHistory[start:] {
		if ev.Type == PegPlay && ev.Card != nil {
			seq = append(seq, *ev.Card)
		}
	}
	return seq
}

func (r *Round) allHandsEmpty() bool {
	for i := range r.Hands {
		if len(r.Hands[i].Current) > 0 {
			return false
		}
	}
	return true
}

func (r *Round) allHandsAt(size int) bool {
	for i := range r.Hands {
		if len(r.Hands[i].Current) != size {
			return false
		}
	}
	return true
}
