package services

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/KP12130/KPCasinoAI/internal/models"
)

// Tolerance for comparing claimed and expected currency amounts. Clients
// round to two decimal places before submitting, so anything within one cent
// counts as equal.
const amountTolerance = 0.01

type ValidationOutcome struct {
	OK     bool
	Reason string
}

func valid() ValidationOutcome {
	return ValidationOutcome{OK: true}
}

func invalid(reason string) ValidationOutcome {
	return ValidationOutcome{Reason: reason}
}

// ValidateOutcome re-derives whether a claimed result is mathematically
// consistent with its declared game type. It is pure: no I/O, no clock, no
// stored state. A rejection carries a human-readable reason.
func ValidateOutcome(claim models.ClaimedResult) ValidationOutcome {
	if out := validateCommon(claim); !out.OK {
		return out
	}

	switch claim.GameType {
	case models.GameTypeCrash:
		return validateCrash(claim)
	case models.GameTypeMines:
		return validateMines(claim)
	case models.GameTypeLimbo:
		return validateLimbo(claim)
	case models.GameTypeBlackjack:
		return validateBlackjack(claim)
	case models.GameTypeHiLo:
		return validateHiLo(claim)
	default:
		return invalid(fmt.Sprintf("no validation rule for game type %q", claim.GameType))
	}
}

// validateCommon applies the checks shared by every game kind: a positive
// bet, an internally consistent profit figure, and a win flag that agrees
// with the amounts.
func validateCommon(claim models.ClaimedResult) ValidationOutcome {
	if claim.BetAmount <= 0 {
		return invalid("invalid bet amount")
	}
	if !near(claim.Profit, claim.WinAmount-claim.BetAmount) {
		return invalid("invalid profit calculation")
	}
	if claim.IsWin != (claim.WinAmount > claim.BetAmount) {
		return invalid("win flag contradicts amounts")
	}
	return valid()
}

func validateCrash(claim models.ClaimedResult) ValidationOutcome {
	if claim.IsWin && claim.Multiplier <= 0 {
		return invalid("cannot win with 0x multiplier")
	}
	if claim.Multiplier > 1000 {
		return invalid("multiplier too high")
	}
	if !claim.IsWin && claim.WinAmount > 0 {
		return invalid("lost game cannot have winnings")
	}
	return checkPayout(claim, claim.Multiplier)
}

func validateMines(claim models.ClaimedResult) ValidationOutcome {
	var data models.MinesData
	if err := json.Unmarshal(claim.GameData, &data); err != nil || data.MineCount == nil || data.TilesRevealed == nil {
		return invalid("missing game data")
	}

	mineCount, tilesRevealed := *data.MineCount, *data.TilesRevealed
	if mineCount < 1 || mineCount > 24 {
		return invalid("invalid mine count")
	}
	if tilesRevealed < 0 || tilesRevealed > 25-mineCount {
		return invalid("invalid tiles revealed")
	}

	if claim.IsWin {
		if tilesRevealed == 0 {
			return invalid("cannot win without revealing tiles")
		}
		safeTiles := float64(25 - mineCount)
		expected := math.Pow(1+float64(mineCount)/safeTiles, float64(tilesRevealed))
		if !near(claim.Multiplier, expected) {
			return invalid("invalid multiplier calculation")
		}
	}

	return checkPayout(claim, claim.Multiplier)
}

func validateLimbo(claim models.ClaimedResult) ValidationOutcome {
	var data models.LimboData
	if err := json.Unmarshal(claim.GameData, &data); err != nil || data.TargetMultiplier == nil || data.ResultMultiplier == nil {
		return invalid("missing game data")
	}

	target, result := *data.TargetMultiplier, *data.ResultMultiplier
	if target <= 1 {
		return invalid("target multiplier must be greater than 1")
	}
	if result <= 0 {
		return invalid("invalid result multiplier")
	}

	if claim.IsWin != (result >= target) {
		return invalid("win flag contradicts result multiplier")
	}

	expectedMultiplier := 0.0
	if claim.IsWin {
		expectedMultiplier = target
	}
	if !near(claim.Multiplier, expectedMultiplier) {
		return invalid("invalid multiplier")
	}

	return checkPayout(claim, expectedMultiplier)
}

func validateBlackjack(claim models.ClaimedResult) ValidationOutcome {
	var data models.BlackjackData
	if err := json.Unmarshal(claim.GameData, &data); err != nil ||
		len(data.PlayerCards) == 0 || len(data.DealerCards) == 0 ||
		data.Result == nil || data.PlayerTotal == nil {
		return invalid("missing game data")
	}

	if *data.PlayerTotal < 2 || *data.PlayerTotal > 30 {
		return invalid("invalid player total")
	}

	var expectedMultiplier float64
	switch *data.Result {
	case "blackjack":
		expectedMultiplier = 2.5
	case "win", "dealer-bust":
		expectedMultiplier = 2
	case "push":
		expectedMultiplier = 1
	case "lose", "bust":
		expectedMultiplier = 0
	default:
		return invalid("invalid game result")
	}

	if !near(claim.Multiplier, expectedMultiplier) {
		return invalid("invalid multiplier for result")
	}
	if claim.IsWin != (expectedMultiplier > 1) {
		return invalid("win flag contradicts result")
	}

	// Blackjack pays on a push too, so the payout applies regardless of the
	// win flag.
	expectedWin := claim.BetAmount * expectedMultiplier
	if !near(claim.WinAmount, expectedWin) {
		return invalid("invalid win amount calculation")
	}
	return valid()
}

func validateHiLo(claim models.ClaimedResult) ValidationOutcome {
	var data models.HiLoData
	if err := json.Unmarshal(claim.GameData, &data); err != nil || data.Streak == nil {
		return invalid("missing game data")
	}

	streak := *data.Streak
	if streak < 0 {
		return invalid("invalid streak")
	}
	if claim.IsWin && streak == 0 {
		return invalid("cannot win with 0 streak")
	}

	expectedMultiplier := 0.0
	if claim.IsWin {
		expectedMultiplier = 1 + float64(streak)*0.3
	}
	if !near(claim.Multiplier, expectedMultiplier) {
		return invalid("invalid multiplier calculation")
	}

	return checkPayout(claim, expectedMultiplier)
}

// checkPayout verifies winAmount == bet × multiplier on a win and 0 on a
// loss. Games with non-standard payout tables (blackjack's push) check their
// amounts directly instead.
func checkPayout(claim models.ClaimedResult, multiplier float64) ValidationOutcome {
	expectedWin := 0.0
	if claim.IsWin {
		expectedWin = claim.BetAmount * multiplier
	}
	if !near(claim.WinAmount, expectedWin) {
		return invalid("invalid win amount calculation")
	}
	return valid()
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= amountTolerance
}
