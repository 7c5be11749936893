package handlers

import (
	"cribbage-live-go/internal/game/cribbage"
	"cribbage-live-go/internal/service"
	ws "cribbage-live-go/pkg/websocket"
)

// hubProvider is set by main at startup so HTTP handlers can broadcast
// realtime updates alongside their JSON replies.
var hubProvider func() (*ws.Hub, bool)

func SetHubProvider(p func() (*ws.Hub, bool)) {
	hubProvider = p
}

func liveHub() (*ws.Hub, bool) {
	if hubProvider == nil {
		return nil, false
	}
	return hubProvider()
}

func gameRoom(gameID string) string {
	return "game:" + gameID
}

// broadcastRoundStarted fans the deal out: each seat's cards go only to that
// seat's connection, the room sees the public state.
func broadcastRoundStarted(gameID string, res *service.RoundStarted) {
	hub, ok := liveHub()
	if !ok {
		return
	}
	room := gameRoom(gameID)
	for _, h := range res.Hands {
		hub.SendToSeat(room, h.Seat, "hand_updated", h)
	}
	hub.Broadcast(room, "phase_change", map[string]any{
		"phase":        res.Phase,
		"round_number": res.RoundNumber,
		"dealer_seat":  res.DealerSeat,
	})
	hub.Broadcast(room, "state_sync", res.State)
}

func broadcastDiscard(gameID string, seat int, res *cribbage.DiscardResult, snap *service.StateSnapshot) {
	hub, ok := liveHub()
	if !ok {
		return
	}
	room := gameRoom(gameID)
	// The discarded cards stay private; the room only learns who is done.
	hub.Broadcast(room, "player_discarded", map[string]any{"seat": seat})
	if res.AllDiscarded {
		hub.Broadcast(room, "discard_complete", map[string]any{"phase": res.Phase})
		hub.Broadcast(room, "phase_change", map[string]any{"phase": res.Phase})
	}
	hub.Broadcast(room, "state_sync", snap)
}

func broadcastCut(gameID string, res *cribbage.CutResult, snap *service.StateSnapshot) {
	hub, ok := liveHub()
	if !ok {
		return
	}
	room := gameRoom(gameID)
	hub.Broadcast(room, "cut_card", res)
	if res.Phase == cribbage.PhaseFinished {
		hub.Broadcast(room, "game_over", snap)
	} else {
		hub.Broadcast(room, "phase_change", map[string]any{"phase": res.Phase})
	}
	hub.Broadcast(room, "state_sync", snap)
}

func broadcastPegPlay(gameID string, seat int, res *cribbage.PlayResult, snap *service.StateSnapshot) {
	hub, ok := liveHub()
	if !ok {
		return
	}
	room := gameRoom(gameID)
	hub.Broadcast(room, "peg_play", map[string]any{
		"seat":           seat,
		"card":           res.Card,
		"points":         res.Points,
		"breakdown":      res.Breakdown,
		"count":          res.NewCount,
		"next_turn_seat": res.NextTurnSeat,
		"phase":          res.Phase,
	})
	if res.Phase == cribbage.PhaseFinished {
		hub.Broadcast(room, "game_over", snap)
	} else if res.Phase == cribbage.PhaseHandScoring {
		hub.Broadcast(room, "phase_change", map[string]any{"phase": res.Phase})
	}
	hub.Broadcast(room, "state_sync", snap)
}

func broadcastPegGo(gameID string, seat int, res *cribbage.GoResult, snap *service.StateSnapshot) {
	hub, ok := liveHub()
	if !ok {
		return
	}
	room := gameRoom(gameID)
	hub.Broadcast(room, "peg_go", map[string]any{
		"seat":           seat,
		"next_turn_seat": res.NextTurnSeat,
		"phase":          res.Phase,
	})
	if res.Phase == cribbage.PhaseHandScoring {
		hub.Broadcast(room, "phase_change", map[string]any{"phase": res.Phase})
	}
	hub.Broadcast(room, "state_sync", snap)
}

func broadcastHandScores(gameID string, results []cribbage.HandScore, snap *service.StateSnapshot) {
	hub, ok := liveHub()
	if !ok {
		return
	}
	room := gameRoom(gameID)
	for _, hs := range results {
		event := "hand_scored"
		if hs.IsCrib {
			event = "crib_scored"
		}
		hub.Broadcast(room, event, hs)
	}
	if snap.WinnerSeat != nil {
		hub.Broadcast(room, "game_over", snap)
	} else {
		hub.Broadcast(room, "phase_change", map[string]any{"phase": snap.Phase})
	}
	hub.Broadcast(room, "state_sync", snap)
}

func broadcastState(gameID string, snap *service.StateSnapshot) {
	hub, ok := liveHub()
	if !ok {
		return
	}
	hub.Broadcast(gameRoom(gameID), "state_sync", snap)
}

func broadcastPlayerStatus(gameID string, seat int, name string, connected bool) {
	hub, ok := liveHub()
	if !ok {
		return
	}
	hub.Broadcast(gameRoom(gameID), "player_status", map[string]any{
		"seat":         seat,
		"name":         name,
		"is_connected": connected,
	})
}
