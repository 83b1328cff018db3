package models_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/KP12130/KPCasinoAI/internal/models"
)

func TestGameTypeValid(t *testing.T) {
	for _, gt := range []models.GameType{
		models.GameTypeCrash, models.GameTypeMines, models.GameTypeLimbo,
		models.GameTypeBlackjack, models.GameTypeHiLo, models.GameTypePlinko,
		models.GameTypeWheel, models.GameTypeKeno, models.GameTypePoker,
		models.GameTypeChicken, models.GameTypePump, models.GameTypeDragon,
	} {
		if !gt.Valid() {
			t.Errorf("%q should be a valid game type", gt)
		}
	}

	for _, gt := range []models.GameType{"", "roulette", "CRASH"} {
		if gt.Valid() {
			t.Errorf("%q should not be a valid game type", gt)
		}
	}
}

func TestShapeViolations(t *testing.T) {
	claim := models.ClaimedResult{
		GameType:   models.GameTypeCrash,
		BetAmount:  10,
		Multiplier: 2,
		WinAmount:  20,
	}
	if v := claim.ShapeViolations(); len(v) != 0 {
		t.Errorf("Expected no violations, got %v", v)
	}

	bad := models.ClaimedResult{
		GameType:   "roulette",
		BetAmount:  0,
		Multiplier: -1,
		WinAmount:  -5,
	}
	if v := bad.ShapeViolations(); len(v) != 4 {
		t.Errorf("Expected 4 violations, got %v", v)
	}
}

func TestAccountJSONHidesSubjectID(t *testing.T) {
	account := models.Account{
		ID:        uuid.New(),
		SubjectID: "firebase-uid-secret",
		Email:     "p1@example.com",
		Balance:   models.StartingBalance,
	}

	data, err := json.Marshal(account)
	if err != nil {
		t.Fatalf("Failed to marshal account: %v", err)
	}

	if strings.Contains(string(data), "firebase-uid-secret") {
		t.Error("Subject ID should not appear in JSON output")
	}
	if !strings.Contains(string(data), `"balance":"1000.00"`) {
		t.Errorf("Balance should marshal as a decimal string, got %s", data)
	}
}
