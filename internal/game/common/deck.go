package common

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrInvalidPlayerCount = errors.New("player count must be 2, 3, or 4")
	ErrNoCardsLeft        = errors.New("no cards left")
)

// NewStandardDeck returns the 52-card deck in suit-major order. The order is
// irrelevant in practice since every deal shuffles first.
func NewStandardDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for r := 1; r <= 13; r++ {
			deck = append(deck, Card{Rank: Rank(r), Suit: s})
		}
	}
	return deck
}

// Shuffle performs an in-place crypto-secure Fisher-Yates shuffle.
// The cut card comes from this deck and must not be predictable, so a failing
// CSPRNG is a hard error rather than something to paper over with a seed.
func Shuffle(cards []Card) error {
	for i := len(cards) - 1; i > 0; i-- {
		j, err := RandIndex(i + 1)
		if err != nil {
			return fmt.Errorf("shuffle: %w", err)
		}
		cards[i], cards[j] = cards[j], cards[i]
	}
	return nil
}

// RandIndex returns a uniform random int in [0, n).
func RandIndex(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("rand index: invalid bound %d", n)
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(nBig.Int64()), nil
}

// Deal splits the top of the deck into one hand per seat (6 cards each for
// two players, 5 otherwise) and returns the undealt remainder as stock.
// Seats are dealt in order 0..n-1.
func Deal(deck []Card, playerCount int) (hands [][]Card, stock []Card, err error) {
	if playerCount < 2 || playerCount > 4 {
		return nil, nil, ErrInvalidPlayerCount
	}
	perPlayer := 5
	if playerCount == 2 {
		perPlayer = 6
	}
	if len(deck) < playerCount*perPlayer {
		return nil, nil, ErrNoCardsLeft
	}

	hands = make([][]Card, playerCount)
	rest := deck
	for p := 0; p < playerCount; p++ {
		hands[p] = append([]Card(nil), rest[:perPlayer]...)
		rest = rest[perPlayer:]
	}
	stock = append([]Card(nil), rest...)
	return hands, stock, nil
}

// DrawAt removes and returns the card at index i, preserving stock order.
func DrawAt(stock []Card, i int) (Card, []Card, error) {
	if len(stock) == 0 {
		return Card{}, nil, ErrNoCardsLeft
	}
	if i < 0 || i >= len(stock) {
		return Card{}, nil, fmt.Errorf("draw: index %d out of range", i)
	}
	c := stock[i]
	rest := make([]Card, 0, len(stock)-1)
	rest = append(rest, stock[:i]...)
	rest = append(rest, stock[i+1:]...)
	return c, rest, nil
}
