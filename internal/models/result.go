package models

import (
	"encoding/json"
	"fmt"
)

// ClaimedResult is the caller-submitted description of a finished round,
// pending server-side verification. Amounts stay float64 on the wire; the
// ledger converts to decimal after the claim has been validated.
type ClaimedResult struct {
	GameType   GameType        `json:"gameType"`
	BetAmount  float64         `json:"betAmount"`
	Multiplier float64         `json:"multiplier"`
	WinAmount  float64         `json:"winAmount"`
	Profit     float64         `json:"profit"`
	GameData   json.RawMessage `json:"gameData,omitempty"`
	IsWin      bool            `json:"isWin"`
}

// ShapeViolations lists schema problems with the claim. An empty result means
// the payload is well-formed; whether the numbers are mathematically
// consistent is the validator's job, not this one.
func (c *ClaimedResult) ShapeViolations() []string {
	var violations []string

	if !c.GameType.Valid() {
		violations = append(violations, fmt.Sprintf("unknown game type %q", c.GameType))
	}
	if c.BetAmount <= 0 {
		violations = append(violations, "betAmount must be positive")
	}
	if c.Multiplier < 0 {
		violations = append(violations, "multiplier must not be negative")
	}
	if c.WinAmount < 0 {
		violations = append(violations, "winAmount must not be negative")
	}

	return violations
}

// Per-game payload shapes. Required fields are pointers so a missing field is
// distinguishable from a legitimate zero (a mines claim may reveal 0 tiles,
// a hi-lo claim may carry streak 0).

type MinesData struct {
	MineCount     *int `json:"mineCount"`
	TilesRevealed *int `json:"tilesRevealed"`
}

type LimboData struct {
	TargetMultiplier *float64 `json:"targetMultiplier"`
	ResultMultiplier *float64 `json:"resultMultiplier"`
}

type BlackjackData struct {
	PlayerCards json.RawMessage `json:"playerCards"`
	DealerCards json.RawMessage `json:"dealerCards"`
	Result      *string         `json:"result"`
	PlayerTotal *int            `json:"playerTotal"`
	DealerTotal int             `json:"dealerTotal"`
}

type HiLoData struct {
	Streak          *int    `json:"streak"`
	FinalMultiplier float64 `json:"finalMultiplier"`
}
