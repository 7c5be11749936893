package cribbage

import (
	"cribbage-live-go/internal/game/common"
)

// Session is the server-authoritative state machine for one game. It is the
// only mutator of Game/Round/PlayerHand state; the scoring and pegging
// functions it calls are pure. Callers serialize commands per game (the
// service layer holds one mutex per session), so Session itself is not
// goroutine safe.
type Session struct {
	Rules Rules `json:"rules"`

	Seated      int   `json:"seated"`
	Phase       Phase `json:"phase"`
	DealerSeat  int   `json:"dealer_seat"`
	TurnSeat    int   `json:"turn_seat"` // -1 when no seat holds the turn
	PegCount    int   `json:"peg_count"`
	Scores      []int `json:"scores"`
	RoundNumber int   `json:"round_number"`

	Round *Round `json:"round,omitempty"`

	// randIndex picks the cut card; overridable for deterministic tests.
	randIndex func(n int) (int, error)
}

func NewSession(players int) (*Session, error) {
	if players < 2 || players > 4 {
		return nil, common.ErrInvalidPlayerCount
	}
	return &Session{
		Rules:    NewRules(players),
		Phase:    PhaseWaiting,
		TurnSeat: -1,
		Scores:   make([]int, players),
	}, nil
}

// AddPlayer seats the next player and returns the assigned seat. Once the
// table is full the game leaves waiting and is ready to deal.
func (s *Session) AddPlayer() (int, error) {
	if s.Phase != PhaseWaiting {
		return 0, ErrGameAlreadyStarted
	}
	if s.Seated >= s.Rules.Players {
		return 0, ErrGameFull
	}
	seat := s.Seated
	s.Seated++
	if s.Seated == s.Rules.Players {
		s.Phase = PhaseDeal
	}
	return seat, nil
}

// DiscardResult reports one discard command.
type DiscardResult struct {
	Remaining    []common.Card `json:"remaining"`
	AllDiscarded bool          `json:"all_discarded"`
	Phase        Phase         `json:"phase"`
}

// CutResult reports the cut card and any his-heels points for the dealer.
type CutResult struct {
	Cut          common.Card `json:"cut"`
	DealerSeat   int         `json:"dealer_seat"`
	DealerPoints int         `json:"dealer_points"`
	Phase        Phase       `json:"phase"`
}

// PlayResult reports one scored pegging play and the follow-up turn.
type PlayResult struct {
	Card         common.Card `json:"card"`
	Points       int         `json:"points"`
	Breakdown    []string    `json:"breakdown"`
	NewCount     int         `json:"new_count"`
	NextTurnSeat int         `json:"next_turn_seat"`
	Phase        Phase       `json:"phase"`
}

// GoResult reports turn advancement after a declared Go.
type GoResult struct {
	NextTurnSeat int   `json:"next_turn_seat"`
	Phase        Phase `json:"phase"`
}

// HandScore is one entry of the end-of-round count: each player's hand in
// scoring order, then the crib credited to the dealer.
type HandScore struct {
	Seat      int            `json:"seat"`
	Cards     []common.Card  `json:"cards"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	NewTotal  int            `json:"new_total"`
	IsCrib    bool           `json:"is_crib"`
}

// StartRound shuffles a fresh deck, deals, and opens the discard phase.
// Callable once all seats are filled (initial deal) and again after each
// hand-scoring phase rotates back to deal.
func (s *Session) StartRound() (*Round, error) {
	if s.Phase == PhaseFinished {
		return nil, ErrGameFinished
	}
	if s.Seated < s.Rules.Players {
		return nil, ErrNotEnoughPlayers
	}
	if s.Phase != PhaseDeal {
		return nil, ErrGameAlreadyStarted
	}
	deck := common.NewStandardDeck()
	if err := common.Shuffle(deck); err != nil {
		return nil, err
	}
	return s.startRoundWith(deck)
}

// startRoundWith deals from an already-ordered deck. Split out so tests can
// drive a full round deterministically.
func (s *Session) startRoundWith(deck []common.Card) (*Round, error) {
	hands, stock, err := common.Deal(deck, s.Rules.Players)
	if err != nil {
		return nil, err
	}

	r := &Round{
		Number:     s.RoundNumber + 1,
		DealerSeat: s.DealerSeat,
		Stock:      stock,
		Crib:       []common.Card{},
		Hands:      make([]PlayerHand, s.Rules.Players),
	}
	for seat, h := range hands {
		r.Hands[seat] = PlayerHand{
			Seat:    seat,
			Dealt:   append([]common.Card(nil), h...),
			Current: append([]common.Card(nil), h...),
		}
	}

	s.Round = r
	s.RoundNumber = r.Number
	s.Phase = PhaseDiscard
	s.TurnSeat = -1
	s.PegCount = 0
	return r, nil
}

// Discard moves the required cards (2 each for two players, 1 otherwise)
// from a hand into the dealer's crib. When every hand is down to 4 cards the
// phase advances to cut and the seat left of the dealer becomes the cutter.
func (s *Session) Discard(seat int, cards []common.Card) (*DiscardResult, error) {
	if s.Phase != PhaseDiscard {
		return nil, ErrNotInDiscardPhase
	}
	hand := s.Round.hand(seat)
	if hand == nil {
		return nil, ErrInvalidSeat
	}
	need := s.Rules.DiscardCount()
	if len(hand.Discarded) >= need {
		return nil, ErrAlreadyDiscarded
	}
	if len(cards) != need {
		return nil, ErrWrongDiscardCount
	}
	// Validate fully before mutating anything.
	for i, c := range cards {
		if !hand.holds(c) {
			return nil, ErrCardNotInHand
		}
		for _, prev := range cards[:i] {
			if prev == c {
				return nil, ErrCardNotInHand
			}
		}
	}

	for _, c := range cards {
		hand.removeCurrent(c)
		hand.Discarded = append(hand.Discarded, c)
		s.Round.Crib = append(s.Round.Crib, c)
	}

	allDone := s.Round.allHandsAt(s.Rules.KeptSize())
	if allDone {
		s.Phase = PhaseCut
		s.TurnSeat = (s.DealerSeat + 1) % s.Rules.Players
	}
	return &DiscardResult{
		Remaining:    append([]common.Card(nil), hand.Current...),
		AllDiscarded: allDone,
		Phase:        s.Phase,
	}, nil
}

// Cut lets the designated cutter draw the starter uniformly at random from
// the remaining stock. His heels (a jack) scores 2 for the dealer on the
// spot, which can itself end the game.
func (s *Session) Cut(seat int) (*CutResult, error) {
	if s.Phase != PhaseCut {
		return nil, ErrNotInCutPhase
	}
	if seat != s.TurnSeat {
		return nil, ErrNotYourTurn
	}
	if len(s.Round.Stock) == 0 {
		return nil, common.ErrNoCardsLeft
	}
	i, err := s.drawIndex(len(s.Round.Stock))
	if err != nil {
		return nil, err
	}
	card, rest, err := common.DrawAt(s.Round.Stock, i)
	if err != nil {
		return nil, err
	}
	s.Round.Stock = rest
	s.Round.Cut = &card

	res := &CutResult{Cut: card, DealerSeat: s.DealerSeat}
	if pts := HisHeels(card); pts > 0 {
		res.DealerPoints = pts
		if s.award(s.DealerSeat, pts) {
			res.Phase = s.Phase
			return res, nil
		}
	}

	s.Phase = PhasePegging
	s.TurnSeat = (s.DealerSeat + 1) % s.Rules.Players
	s.PegCount = 0
	res.Phase = s.Phase
	return res, nil
}

// PlayCard validates and scores one pegging play, then advances the turn.
func (s *Session) PlayCard(seat int, card common.Card) (*PlayResult, error) {
	if s.Phase != PhasePegging {
		return nil, ErrNotInPeggingPhase
	}
	if seat != s.TurnSeat {
		return nil, ErrNotYourTurn
	}
	hand := s.Round.hand(seat)
	if hand == nil {
		return nil, ErrInvalidSeat
	}
	if !hand.holds(card) {
		return nil, ErrCardNotInHand
	}
	if s.PegCount+card.Value15() > MaxCount {
		return nil, ErrExceedsThirtyOne
	}

	peg := ScorePegPlay(s.Round.currentSegment(), card)

	hand.removeCurrent(card)
	hand.Pegged = append(hand.Pegged, card)
	c := card
	s.Round.PegHistory = append(s.Round.PegHistory, PegEvent{Type: PegPlay, Seat: seat, Card: &c})
	s.PegCount = peg.NewCount

	res := &PlayResult{
		Card:      card,
		Points:    peg.Points,
		Breakdown: peg.Breakdown,
		NewCount:  peg.NewCount,
	}
	if peg.Points > 0 && s.award(seat, peg.Points) {
		res.NextTurnSeat = s.TurnSeat
		res.Phase = s.Phase
		return res, nil
	}

	s.advancePegTurn(seat)
	res.NextTurnSeat = s.TurnSeat
	res.Phase = s.Phase
	return res, nil
}

// DeclareGo records that the turn holder has no legal play. Declaring with a
// legal play in hand is an error; the advancement scan then discovers whether
// anyone else can still play under the current count.
func (s *Session) DeclareGo(seat int) (*GoResult, error) {
	if s.Phase != PhasePegging {
		return nil, ErrNotInPeggingPhase
	}
	if seat != s.TurnSeat {
		return nil, ErrNotYourTurn
	}
	hand := s.Round.hand(seat)
	if hand == nil {
		return nil, ErrInvalidSeat
	}
	if len(ValidPegPlays(hand.Current, s.PegCount)) > 0 {
		return nil, ErrMustPlayIfPossible
	}

	s.Round.PegHistory = append(s.Round.PegHistory, PegEvent{Type: PegGo, Seat: seat})
	s.advancePegTurn(seat)
	return &GoResult{NextTurnSeat: s.TurnSeat, Phase: s.Phase}, nil
}

// advancePegTurn implements the post-play/post-go turn policy:
//  1. all hands empty: last-card point (unless the count sits at 31, which
//     already scored), then on to hand scoring
//  2. count at 31: reset, fence the log, next playable seat leads
//  3. otherwise next seat with a legal play at the current count; if nobody
//     has one (global Go) reset and hand the lead to the next seat holding
//     any card at all
func (s *Session) advancePegTurn(fromSeat int) {
	n := s.Rules.Players

	if s.Round.allHandsEmpty() {
		if s.PegCount != MaxCount {
			if s.award(fromSeat, LastCardPoints) {
				return
			}
		}
		s.Phase = PhaseHandScoring
		s.TurnSeat = (s.DealerSeat + 1) % n
		return
	}

	if s.PegCount == MaxCount {
		s.resetCount()
	}

	for i := 1; i <= n; i++ {
		next := (fromSeat + i) % n
		if len(ValidPegPlays(s.Round.hand(next).Current, s.PegCount)) > 0 {
			s.TurnSeat = next
			return
		}
	}

	// Global Go: nobody can stay under 31. Reset and lead with anyone still
	// holding cards (count is 0, so any card is legal).
	s.resetCount()
	for i := 1; i <= n; i++ {
		next := (fromSeat + i) % n
		if len(s.Round.hand(next).Current) > 0 {
			s.TurnSeat = next
			return
		}
	}
}

func (s *Session) resetCount() {
	s.PegCount = 0
	s.Round.PegHistory = append(s.Round.PegHistory, PegEvent{Type: PegReset, Seat: -1})
}

// ScoreHands counts every hand in official order (seats left of the dealer
// first, dealer last, then the crib for the dealer) and either rotates the
// deal or finishes the game. Counting stops the moment anyone reaches the
// target: later hands and the crib are simply never scored.
func (s *Session) ScoreHands() ([]HandScore, error) {
	if s.Phase != PhaseHandScoring {
		return nil, ErrNotInScoringPhase
	}
	if s.Round == nil || s.Round.Cut == nil {
		return nil, ErrMissingCutCard
	}
	cut := *s.Round.Cut
	n := s.Rules.Players

	var results []HandScore
	for off := 1; off <= n; off++ {
		seat := (s.DealerSeat + off) % n
		kept := s.Round.hand(seat).KeptCards()
		bd := ScoreHand(kept, cut, false)
		won := s.award(seat, bd.Total)
		results = append(results, HandScore{
			Seat:      seat,
			Cards:     kept,
			Breakdown: bd,
			NewTotal:  s.Scores[seat],
		})
		if won {
			return results, nil
		}
	}

	crib := append([]common.Card(nil), s.Round.Crib...)
	bd := ScoreHand(crib, cut, true)
	won := s.award(s.DealerSeat, bd.Total)
	results = append(results, HandScore{
		Seat:      s.DealerSeat,
		Cards:     crib,
		Breakdown: bd,
		NewTotal:  s.Scores[s.DealerSeat],
		IsCrib:    true,
	})
	if won {
		return results, nil
	}

	s.DealerSeat = (s.DealerSeat + 1) % n
	s.Phase = PhaseDeal
	s.TurnSeat = -1
	return results, nil
}

// ValidPlays is a pure query: the cards the seat could legally peg right now.
func (s *Session) ValidPlays(seat int) []common.Card {
	if s.Phase != PhasePegging {
		return nil
	}
	hand := s.Round.hand(seat)
	if hand == nil {
		return nil
	}
	return ValidPegPlays(hand.Current, s.PegCount)
}

// Winner returns the winning seat once the game is finished.
func (s *Session) Winner() (int, bool) {
	if s.Phase != PhaseFinished {
		return 0, false
	}
	for seat, sc := range s.Scores {
		if sc >= s.Rules.TargetScore {
			return seat, true
		}
	}
	return 0, false
}

// award adds points and reports whether the game just ended. Win detection
// runs after every point-awarding event; on a win the phase freezes at
// finished and no further state advances.
func (s *Session) award(seat, points int) bool {
	s.Scores[seat] += points
	if s.Scores[seat] >= s.Rules.TargetScore {
		s.Phase = PhaseFinished
		s.TurnSeat = -1
		return true
	}
	return false
}

func (s *Session) drawIndex(n int) (int, error) {
	if s.randIndex != nil {
		return s.randIndex(n)
	}
	return common.RandIndex(n)
}

// Clone returns a deep copy. The service layer applies each command to a
// clone and only swaps it in once the new state is persisted, so a failed
// write never leaves a half-mutated session behind.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Scores = append([]int(nil), s.Scores...)
	if s.Round != nil {
		r := *s.Round
		r.Stock = append([]common.Card(nil), s.Round.Stock...)
		r.Crib = append([]common.Card(nil), s.Round.Crib...)
		if s.Round.Cut != nil {
			c := *s.Round.Cut
			r.Cut = &c
		}
		r.PegHistory = append([]PegEvent(nil), s.Round.PegHistory...)
		r.Hands = make([]PlayerHand, len(s.Round.Hands))
		for i, h := range s.Round.Hands {
			r.Hands[i] = PlayerHand{
				Seat:      h.Seat,
				Dealt:     append([]common.Card(nil), h.Dealt...),
				Current:   append([]common.Card(nil), h.Current...),
				Discarded: append([]common.Card(nil), h.Discarded...),
				Pegged:    append([]common.Card(nil), h.Pegged...),
			}
		}
		cp.Round = &r
	}
	return &cp
}
