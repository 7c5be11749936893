package service

import (
	"cribbage-live-go/internal/game/common"
	"cribbage-live-go/internal/game/cribbage"
)

// StateSnapshot is the wire view of one game. Personalized snapshots include
// the viewer's own cards; every other hand (and the stock and crib) is
// reduced to counts so nothing hidden ever crosses the wire.
type StateSnapshot struct {
	GameID      string         `json:"game_id"`
	Code        string         `json:"code"`
	Status      string         `json:"status"`
	Phase       cribbage.Phase `json:"phase"`
	PlayerCount int            `json:"player_count"`
	IsTeams     bool           `json:"is_teams"`

	RoundNumber int          `json:"round_number"`
	DealerSeat  int          `json:"dealer_seat"`
	TurnSeat    int          `json:"turn_seat"`
	PegCount    int          `json:"peg_count"`
	Cut         *common.Card `json:"cut,omitempty"`
	TargetScore int          `json:"target_score"`

	Players []PlayerView `json:"players"`
	Hands   []HandView   `json:"hands,omitempty"`

	// PegSegment is the play log since the last count reset; PegHistory is the
	// full round log including reset fences.
	PegSegment []cribbage.PegEvent `json:"peg_segment,omitempty"`
	PegHistory []cribbage.PegEvent `json:"peg_history,omitempty"`

	StockSize int `json:"stock_size"`
	CribSize  int `json:"crib_size"`

	YourSeat   int           `json:"your_seat"`
	YourHand   []common.Card `json:"your_hand,omitempty"`
	WinnerSeat *int          `json:"winner_seat,omitempty"`
}

type PlayerView struct {
	Seat        int    `json:"seat"`
	Name        string `json:"name"`
	Team        *int   `json:"team,omitempty"`
	Score       int    `json:"score"`
	IsConnected bool   `json:"is_connected"`
}

// HandView exposes card counts for every seat; actual cards only for the
// snapshot's viewer.
type HandView struct {
	Seat      int           `json:"seat"`
	CardCount int           `json:"card_count"`
	Pegged    []common.Card `json:"pegged"`
	Cards     []common.Card `json:"cards,omitempty"`
}

// RoundStarted reports a fresh deal. Hands carries every seat's dealt cards;
// the websocket layer fans each hand out privately to its owner.
type RoundStarted struct {
	RoundNumber int            `json:"round_number"`
	DealerSeat  int            `json:"dealer_seat"`
	Phase       cribbage.Phase `json:"phase"`
	Hands       []DealtHand    `json:"-"`
	State       *StateSnapshot `json:"state"`
}

type DealtHand struct {
	Seat  int           `json:"seat"`
	Cards []common.Card `json:"cards"`
}

func dealtHands(session *cribbage.Session) []DealtHand {
	out := make([]DealtHand, 0, len(session.Round.Hands))
	for _, h := range session.Round.Hands {
		out = append(out, DealtHand{
			Seat:  h.Seat,
			Cards: append([]common.Card(nil), h.Dealt...),
		})
	}
	return out
}

// snapshotFor builds the personalized view for a seat; pass viewerSeat -1 for
// the public (spectator) view. Called with the entry lock held.
func snapshotFor(entry *gameEntry, viewerSeat int) *StateSnapshot {
	session := entry.session
	snap := &StateSnapshot{
		GameID:      entry.game.ID,
		Code:        entry.game.Code,
		Status:      entry.game.Status,
		Phase:       session.Phase,
		PlayerCount: session.Rules.Players,
		IsTeams:     session.Rules.Teams,
		RoundNumber: session.RoundNumber,
		DealerSeat:  session.DealerSeat,
		TurnSeat:    session.TurnSeat,
		PegCount:    session.PegCount,
		TargetScore: session.Rules.TargetScore,
		YourSeat:    viewerSeat,
	}

	for _, p := range entry.players {
		snap.Players = append(snap.Players, PlayerView{
			Seat:        p.Seat,
			Name:        p.Name,
			Team:        p.Team,
			Score:       scoreAt(session, p.Seat),
			IsConnected: p.IsConnected,
		})
	}

	if winner, ok := session.Winner(); ok {
		w := winner
		snap.WinnerSeat = &w
	}

	r := session.Round
	if r == nil {
		return snap
	}
	if r.Cut != nil {
		c := *r.Cut
		snap.Cut = &c
	}
	snap.StockSize = len(r.Stock)
	snap.CribSize = len(r.Crib)
	snap.PegHistory = append([]cribbage.PegEvent(nil), r.PegHistory...)
	snap.PegSegment = currentSegment(r.PegHistory)

	for _, h := range r.Hands {
		hv := HandView{
			Seat:      h.Seat,
			CardCount: len(h.Current),
			Pegged:    append([]common.Card(nil), h.Pegged...),
		}
		if h.Seat == viewerSeat {
			hv.Cards = append([]common.Card(nil), h.Current...)
			snap.YourHand = hv.Cards
		}
		snap.Hands = append(snap.Hands, hv)
	}
	return snap
}

func snapshotPublic(entry *gameEntry) *StateSnapshot {
	return snapshotFor(entry, -1)
}

func scoreAt(session *cribbage.Session, seat int) int {
	if seat < 0 || seat >= len(session.Scores) {
		return 0
	}
	return session.Scores[seat]
}

// currentSegment mirrors the engine's reset fences: only plays since the last
// reset count toward the running total shown to clients.
func currentSegment(history []cribbage.PegEvent) []cribbage.PegEvent {
	start := 0
	for i, ev := range history {
		if ev.Type == cribbage.PegReset {
			start = i + 1
		}
	}
	return append([]cribbage.PegEvent(nil), history[start:]...)
}
