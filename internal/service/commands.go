package service

import (
	"fmt"

	"cribbage-live-go/internal/game/common"
	"cribbage-live-go/internal/game/cribbage"
	"cribbage-live-go/internal/models"
)

// Commands follow one shape: resolve the seat, apply the rules engine to a
// working copy of the session, persist the outcome, then swap the copy in.
// A failed persist evicts the cache entry so the next command rehydrates from
// the database instead of trusting half-written memory.

// StartRound deals the next hand. Any seated player may start the round once
// the table is full.
func (s *GameService) StartRound(gameID, playerID string) (*RoundStarted, error) {
	entry, err := s.entry(gameID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if _, err := entry.seatOf(playerID); err != nil {
		return nil, err
	}

	work := entry.session.Clone()
	if _, err := work.StartRound(); err != nil {
		return nil, err
	}
	if err := s.persistNewRound(entry, work); err != nil {
		s.evict(gameID)
		return nil, err
	}
	entry.session = work

	return &RoundStarted{
		RoundNumber: work.RoundNumber,
		DealerSeat:  work.DealerSeat,
		Phase:       work.Phase,
		Hands:       dealtHands(work),
		State:       snapshotPublic(entry),
	}, nil
}

// Discard moves the named cards into the crib.
func (s *GameService) Discard(gameID, playerID string, cardCodes []string) (*cribbage.DiscardResult, *StateSnapshot, error) {
	entry, err := s.entry(gameID)
	if err != nil {
		return nil, nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	seat, err := entry.seatOf(playerID)
	if err != nil {
		return nil, nil, err
	}
	cards, err := parseCardCodes(cardCodes)
	if err != nil {
		return nil, nil, err
	}

	work := entry.session.Clone()
	res, err := work.Discard(seat, cards)
	if err != nil {
		return nil, nil, err
	}
	if err := s.persistState(entry, work); err != nil {
		s.evict(gameID)
		return nil, nil, err
	}
	entry.session = work
	return res, snapshotPublic(entry), nil
}

// Cut draws the starter card.
func (s *GameService) Cut(gameID, playerID string) (*cribbage.CutResult, *StateSnapshot, error) {
	entry, err := s.entry(gameID)
	if err != nil {
		return nil, nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	seat, err := entry.seatOf(playerID)
	if err != nil {
		return nil, nil, err
	}

	work := entry.session.Clone()
	res, err := work.Cut(seat)
	if err != nil {
		return nil, nil, err
	}
	if err := s.persistState(entry, work); err != nil {
		s.evict(gameID)
		return nil, nil, err
	}
	entry.session = work
	return res, snapshotPublic(entry), nil
}

// PlayCard pegs one card.
func (s *GameService) PlayCard(gameID, playerID, cardCode string) (*cribbage.PlayResult, *StateSnapshot, error) {
	entry, err := s.entry(gameID)
	if err != nil {
		return nil, nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	seat, err := entry.seatOf(playerID)
	if err != nil {
		return nil, nil, err
	}
	card, err := common.ParseCard(cardCode)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %q", models.ErrInvalidCard, cardCode)
	}

	work := entry.session.Clone()
	res, err := work.PlayCard(seat, card)
	if err != nil {
		return nil, nil, err
	}
	if err := s.persistState(entry, work); err != nil {
		s.evict(gameID)
		return nil, nil, err
	}
	entry.session = work
	return res, snapshotPublic(entry), nil
}

// DeclareGo records that the turn holder cannot play.
func (s *GameService) DeclareGo(gameID, playerID string) (*cribbage.GoResult, *StateSnapshot, error) {
	entry, err := s.entry(gameID)
	if err != nil {
		return nil, nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	seat, err := entry.seatOf(playerID)
	if err != nil {
		return nil, nil, err
	}

	work := entry.session.Clone()
	res, err := work.DeclareGo(seat)
	if err != nil {
		return nil, nil, err
	}
	if err := s.persistState(entry, work); err != nil {
		s.evict(gameID)
		return nil, nil, err
	}
	entry.session = work
	return res, snapshotPublic(entry), nil
}

// ScoreHands counts every hand and the crib in official order and either
// rotates the deal or ends the game.
func (s *GameService) ScoreHands(gameID, playerID string) ([]cribbage.HandScore, *StateSnapshot, error) {
	entry, err := s.entry(gameID)
	if err != nil {
		return nil, nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if _, err := entry.seatOf(playerID); err != nil {
		return nil, nil, err
	}

	work := entry.session.Clone()
	results, err := work.ScoreHands()
	if err != nil {
		return nil, nil, err
	}

	for _, hs := range results {
		if hs.IsCrib {
			continue
		}
		for i := range entry.hands {
			if entry.hands[i].Seat == hs.Seat {
				total := hs.Breakdown.Total
				entry.hands[i].HandScore = &total
				break
			}
		}
	}

	if err := s.persistState(entry, work); err != nil {
		s.evict(gameID)
		return nil, nil, err
	}
	entry.session = work
	return results, snapshotPublic(entry), nil
}

// ValidPlays is a read-only query for the caller's current legal pegging cards.
func (s *GameService) ValidPlays(gameID, playerID string) ([]common.Card, error) {
	entry, err := s.entry(gameID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	seat, err := entry.seatOf(playerID)
	if err != nil {
		return nil, err
	}
	plays := entry.session.ValidPlays(seat)
	if plays == nil {
		plays = []common.Card{}
	}
	return plays, nil
}

// Snapshot returns the personalized view for one player.
func (s *GameService) Snapshot(gameID, playerID string) (*StateSnapshot, error) {
	entry, err := s.entry(gameID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	seat, err := entry.seatOf(playerID)
	if err != nil {
		return nil, err
	}
	return snapshotFor(entry, seat), nil
}

// PublicSnapshot returns the spectator view: no hole cards.
func (s *GameService) PublicSnapshot(gameID string) (*StateSnapshot, error) {
	entry, err := s.entry(gameID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return snapshotPublic(entry), nil
}

// SetConnected flips the presence flag; broadcast to the room by the caller.
func (s *GameService) SetConnected(gameID, playerID string, connected bool) error {
	entry, err := s.entry(gameID)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if _, err := entry.seatOf(playerID); err != nil {
		return err
	}
	if err := models.SetPlayerConnected(s.db, playerID, connected); err != nil {
		return err
	}
	for i := range entry.players {
		if entry.players[i].ID == playerID {
			entry.players[i].IsConnected = connected
			break
		}
	}
	return nil
}

func (s *GameService) evict(gameID string) {
	s.mu.Lock()
	delete(s.entries, gameID)
	s.mu.Unlock()
}

func parseCardCodes(codes []string) ([]common.Card, error) {
	cards := make([]common.Card, 0, len(codes))
	for _, code := range codes {
		c, err := common.ParseCard(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidCard, code)
		}
		cards = append(cards, c)
	}
	return cards, nil
}
