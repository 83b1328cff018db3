package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StartingBalance is credited when an account is provisioned on first login.
var StartingBalance = decimal.RequireFromString("1000.00")

type Account struct {
	ID          uuid.UUID `json:"id"`
	SubjectID   string    `json:"-"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`

	Balance      decimal.Decimal `json:"balance"`
	TotalWagered decimal.Decimal `json:"totalWagered"`
	TotalWon     decimal.Decimal `json:"totalWon"`
	GamesPlayed  int             `json:"gamesPlayed"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
