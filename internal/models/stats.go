package models

import "github.com/shopspring/decimal"

// AccountStats aggregates an account's settled games. ProfitByDay buckets by
// UTC calendar day in YYYY-MM-DD form. WinRate is a percentage, 0 when the
// account has no games.
type AccountStats struct {
	TotalGames  int                        `json:"totalGames"`
	GamesByType map[GameType]int           `json:"gamesByType"`
	ProfitByDay map[string]decimal.Decimal `json:"profitByDay"`
	WinRate     float64                    `json:"winRate"`
}
