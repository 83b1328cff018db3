package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/KP12130/KPCasinoAI/internal/models"
)

func NewMemory() *Memory {
	return &Memory{
		accounts:  make(map[uuid.UUID]models.Account),
		bySubject: make(map[string]uuid.UUID),
	}
}

// Memory implements the same contract as Postgres without a database. One
// mutex guards all state, which trivially satisfies the per-account
// serialization guarantee; only the Postgres store offers cross-account
// concurrency. Used by tests and as a dev fallback when no DATABASE_URL is
// configured.
type Memory struct {
	mu        sync.Mutex
	accounts  map[uuid.UUID]models.Account
	bySubject map[string]uuid.UUID
	games     []models.SettledGame
}

func (m *Memory) AccountBySubject(_ context.Context, subjectID string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.bySubject[subjectID]
	if !ok {
		return models.Account{}, fmt.Errorf("%w: account for subject %s", ErrNotFound, subjectID)
	}
	return m.accounts[id], nil
}

func (m *Memory) CreateAccount(_ context.Context, subjectID, email, displayName string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bySubject[subjectID]; ok {
		return models.Account{}, fmt.Errorf("%w: account for subject %s", ErrAlreadyExists, subjectID)
	}

	now := time.Now().UTC()
	account := models.Account{
		ID:           uuid.New(),
		SubjectID:    subjectID,
		Email:        email,
		DisplayName:  displayName,
		Balance:      models.StartingBalance,
		TotalWagered: decimal.Zero,
		TotalWon:     decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.accounts[account.ID] = account
	m.bySubject[subjectID] = account.ID

	return account, nil
}

func (m *Memory) Settle(_ context.Context, in models.SettlementInput) (models.Account, models.SettledGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[in.AccountID]
	if !ok {
		return models.Account{}, models.SettledGame{}, fmt.Errorf("%w: account %s", ErrNotFound, in.AccountID)
	}

	if account.Balance.LessThan(in.BetAmount) {
		return models.Account{}, models.SettledGame{}, fmt.Errorf("%w: balance %s, bet %s",
			ErrInsufficientBalance, account.Balance, in.BetAmount)
	}

	account.Balance = account.Balance.Sub(in.BetAmount).Add(in.WinAmount)
	account.TotalWagered = account.TotalWagered.Add(in.BetAmount)
	account.TotalWon = account.TotalWon.Add(in.WinAmount)
	account.GamesPlayed++
	account.UpdatedAt = time.Now().UTC()
	m.accounts[account.ID] = account

	game := models.SettledGame{
		ID:         uuid.New(),
		AccountID:  in.AccountID,
		GameType:   in.GameType,
		BetAmount:  in.BetAmount,
		Multiplier: in.Multiplier,
		WinAmount:  in.WinAmount,
		Profit:     in.Profit,
		GameData:   in.GameData,
		IsWin:      in.IsWin,
		CreatedAt:  time.Now().UTC(),
	}
	m.games = append(m.games, game)

	return account, game, nil
}

func (m *Memory) RecentGames(_ context.Context, accountID uuid.UUID, limit int) ([]models.SettledGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Appends are chronological, so walking backwards yields newest first
	// even when timestamps collide.
	var games []models.SettledGame
	for i := len(m.games) - 1; i >= 0 && len(games) < limit; i-- {
		if m.games[i].AccountID == accountID {
			games = append(games, m.games[i])
		}
	}

	return games, nil
}

func (m *Memory) AccountStats(_ context.Context, accountID uuid.UUID) (models.AccountStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := models.AccountStats{
		GamesByType: make(map[models.GameType]int),
		ProfitByDay: make(map[string]decimal.Decimal),
	}

	var wins int
	for _, g := range m.games {
		if g.AccountID != accountID {
			continue
		}

		stats.TotalGames++
		if g.IsWin {
			wins++
		}
		stats.GamesByType[g.GameType]++

		day := g.CreatedAt.UTC().Format("2006-01-02")
		stats.ProfitByDay[day] = stats.ProfitByDay[day].Add(g.Profit)
	}

	if stats.TotalGames > 0 {
		stats.WinRate = float64(wins) / float64(stats.TotalGames) * 100
	}

	return stats, nil
}
