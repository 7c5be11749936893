package models

import (
	"encoding/json"
	"fmt"

	"cribbage-live-go/internal/game/common"
	"cribbage-live-go/internal/game/cribbage"
)

// Card sequences live in SQLite as JSON text columns, but every record type
// exposes them as []common.Card; the (de)serialization stays inside this
// package so nothing upstream ever re-parses strings.

func marshalCards(cards []common.Card) (string, error) {
	if cards == nil {
		cards = []common.Card{}
	}
	b, err := json.Marshal(cards)
	if err != nil {
		return "", fmt.Errorf("marshal cards: %w", err)
	}
	return string(b), nil
}

func unmarshalCards(s string) ([]common.Card, error) {
	if s == "" {
		return []common.Card{}, nil
	}
	var cards []common.Card
	if err := json.Unmarshal([]byte(s), &cards); err != nil {
		return nil, fmt.Errorf("unmarshal cards: %w", err)
	}
	return cards, nil
}

func marshalPegHistory(events []cribbage.PegEvent) (string, error) {
	if events == nil {
		events = []cribbage.PegEvent{}
	}
	b, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("marshal peg history: %w", err)
	}
	return string(b), nil
}

func unmarshalPegHistory(s string) ([]cribbage.PegEvent, error) {
	if s == "" {
		return []cribbage.PegEvent{}, nil
	}
	var events []cribbage.PegEvent
	if err := json.Unmarshal([]byte(s), &events); err != nil {
		return nil, fmt.Errorf("unmarshal peg history: %w", err)
	}
	return events, nil
}
