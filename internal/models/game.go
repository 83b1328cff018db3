package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettledGame is one immutable history record. Records are append-only: the
// storage layer exposes no update or delete for them.
type SettledGame struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"accountId"`

	GameType   GameType        `json:"gameType"`
	BetAmount  decimal.Decimal `json:"betAmount"`
	Multiplier decimal.Decimal `json:"multiplier"`
	WinAmount  decimal.Decimal `json:"winAmount"`
	Profit     decimal.Decimal `json:"profit"`
	GameData   json.RawMessage `json:"gameData,omitempty"`
	IsWin      bool            `json:"isWin"`

	CreatedAt time.Time `json:"createdAt"`
}

// SettlementInput carries one validated result into the store. The store
// assigns the record id and creation timestamp and applies the balance
// mutation and the history append in a single transaction.
type SettlementInput struct {
	AccountID  uuid.UUID
	GameType   GameType
	BetAmount  decimal.Decimal
	Multiplier decimal.Decimal
	WinAmount  decimal.Decimal
	Profit     decimal.Decimal
	GameData   json.RawMessage
	IsWin      bool
}
