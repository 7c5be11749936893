package cribbage

// WinningScore is the fixed target: first player (or team seat) to reach or
// pass it ends the game.
const WinningScore = 121

// Rules captures the per-game constants that vary with seat count.
type Rules struct {
	Players     int  `json:"players"` // 2-4
	Teams       bool `json:"teams"`   // 4 players pair into teams by seat parity
	TargetScore int  `json:"target_score"`
}

func NewRules(players int) Rules {
	return Rules{
		Players:     players,
		Teams:       players == 4,
		TargetScore: WinningScore,
	}
}

// HandSize is the dealt hand size: 6 for two players, 5 otherwise.
func (r Rules) HandSize() int {
	if r.Players == 2 {
		return 6
	}
	return 5
}

// DiscardCount is the number of cards each player sends to the crib.
func (r Rules) DiscardCount() int {
	if r.Players == 2 {
		return 2
	}
	return 1
}

// KeptSize is the hand size everyone pegs and counts with.
func (r Rules) KeptSize() int {
	return 4
}
