package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/KP12130/KPCasinoAI/internal/models"
)

// Broadcaster pushes settled facts to connected clients. Implementations must
// not block the settlement path.
type Broadcaster interface {
	BroadcastSettlement(accountID uuid.UUID, game models.SettledGame, newBalance decimal.Decimal)
}
