package common

import (
	"fmt"
	"strconv"
	"strings"
)

type Suit string

const (
	Spades   Suit = "S"
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
)

var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

type Rank int

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

// Card is an immutable (rank, suit) value. Rank carries the run order
// (A=1 .. K=13); Value15 is the separate counting value.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func (c Card) String() string {
	var r string
	switch c.Rank {
	case Ace:
		r = "A"
	case Jack:
		r = "J"
	case Queen:
		r = "Q"
	case King:
		r = "K"
	default:
		r = fmt.Sprintf("%d", int(c.Rank))
	}
	return r + string(c.Suit)
}

// ParseCard accepts "AS", "10D"/"TD", "5h" etc.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	suit := Suit(s[len(s)-1:])
	rankStr := s[:len(s)-1]
	var r Rank
	switch rankStr {
	case "A":
		r = Ace
	case "T":
		r = 10
	case "J":
		r = Jack
	case "Q":
		r = Queen
	case "K":
		r = King
	default:
		// Digits only: "+5" or "2S" must not slip through as valid ranks.
		for i := 0; i < len(rankStr); i++ {
			if rankStr[i] < '0' || rankStr[i] > '9' {
				return Card{}, fmt.Errorf("invalid rank %q", rankStr)
			}
		}
		v, err := strconv.Atoi(rankStr)
		if err != nil || v < 2 || v > 10 {
			return Card{}, fmt.Errorf("invalid rank %q", rankStr)
		}
		r = Rank(v)
	}
	switch suit {
	case Spades, Hearts, Diamonds, Clubs:
	default:
		return Card{}, fmt.Errorf("invalid suit %q", string(suit))
	}
	return Card{Rank: r, Suit: suit}, nil
}

// ParseCards parses a batch, failing on the first bad entry.
func ParseCards(ss []string) ([]Card, error) {
	out := make([]Card, 0, len(ss))
	for _, s := range ss {
		c, err := ParseCard(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Value15 is the card's counting value for 15s and pegging totals:
// ace is 1, faces are 10.
func (c Card) Value15() int {
	if c.Rank >= 10 {
		return 10
	}
	return int(c.Rank)
}

// RunOrder is the card's position for run adjacency (A=1 .. K=13).
// Never use this for pegging totals.
func (c Card) RunOrder() int {
	return int(c.Rank)
}

// Strings renders a card slice for logs and wire payloads.
func Strings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
