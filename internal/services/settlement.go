package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/KP12130/KPCasinoAI/internal/models"
	"github.com/KP12130/KPCasinoAI/internal/storage"
)

var ErrTooFrequent = errors.New("settlements submitted too frequently")

// InvalidOutcomeError marks a claim the validator rejected. Treated as a
// potential fraud signal and logged separately from ordinary user error.
type InvalidOutcomeError struct {
	Reason string
}

func (e *InvalidOutcomeError) Error() string {
	return fmt.Sprintf("invalid game result: %s", e.Reason)
}

// MalformedRequestError lists schema violations in a claim.
type MalformedRequestError struct {
	Violations []string
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("malformed request: %s", strings.Join(e.Violations, "; "))
}

type Store interface {
	AccountBySubject(ctx context.Context, subjectID string) (models.Account, error)
	CreateAccount(ctx context.Context, subjectID, email, displayName string) (models.Account, error)
	Settle(ctx context.Context, in models.SettlementInput) (models.Account, models.SettledGame, error)
	RecentGames(ctx context.Context, accountID uuid.UUID, limit int) ([]models.SettledGame, error)
	AccountStats(ctx context.Context, accountID uuid.UUID) (models.AccountStats, error)
}

type Limiter interface {
	Allow(ctx context.Context, accountID uuid.UUID) (bool, error)
}

func NewSettlement(store Store, limiter Limiter, feed Broadcaster) *Settlement {
	return &Settlement{
		store:   store,
		limiter: limiter,
		feed:    feed,
	}
}

// Settlement orchestrates the pipeline for one claimed result:
// authenticate (done by middleware) → rate limit → shape check → outcome
// validation → atomic funds check + ledger mutation + history append.
// Every failure is terminal and leaves no partial state behind.
type Settlement struct {
	store   Store
	limiter Limiter
	feed    Broadcaster
}

// SetFeed attaches the live feed after construction. The feed needs the
// settlement service for balance snapshots, so the two are wired in stages.
func (s *Settlement) SetFeed(feed Broadcaster) {
	s.feed = feed
}

func (s *Settlement) SettleGame(ctx context.Context, subjectID string, claim models.ClaimedResult) (models.Account, models.SettledGame, error) {
	account, err := s.store.AccountBySubject(ctx, subjectID)
	if err != nil {
		return models.Account{}, models.SettledGame{}, fmt.Errorf("resolve account: %w", err)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, account.ID)
		if err != nil {
			// Settlement availability wins over rate enforcement when the
			// limiter backend is down.
			slog.WarnContext(ctx, "rate limiter unavailable, allowing settlement",
				"account_id", account.ID, "error", err)
		} else if !allowed {
			return models.Account{}, models.SettledGame{}, ErrTooFrequent
		}
	}

	if violations := claim.ShapeViolations(); len(violations) > 0 {
		return models.Account{}, models.SettledGame{}, &MalformedRequestError{Violations: violations}
	}

	if outcome := ValidateOutcome(claim); !outcome.OK {
		slog.WarnContext(ctx, "rejected settlement claim",
			"account_id", account.ID,
			"game_type", claim.GameType,
			"reason", outcome.Reason,
		)
		return models.Account{}, models.SettledGame{}, &InvalidOutcomeError{Reason: outcome.Reason}
	}

	bet := decimal.NewFromFloat(claim.BetAmount).Round(2)
	win := decimal.NewFromFloat(claim.WinAmount).Round(2)

	account, game, err := s.store.Settle(ctx, models.SettlementInput{
		AccountID:  account.ID,
		GameType:   claim.GameType,
		BetAmount:  bet,
		Multiplier: decimal.NewFromFloat(claim.Multiplier).Round(4),
		WinAmount:  win,
		// Derived rather than copied from the claim so the ledger stays
		// internally consistent to the cent.
		Profit:   win.Sub(bet),
		GameData: claim.GameData,
		IsWin:    claim.IsWin,
	})
	if err != nil {
		return models.Account{}, models.SettledGame{}, fmt.Errorf("settle: %w", err)
	}

	slog.InfoContext(ctx, "settled game",
		"account_id", account.ID,
		"game_type", game.GameType,
		"bet", game.BetAmount,
		"win", game.WinAmount,
		"is_win", game.IsWin,
	)

	if s.feed != nil {
		s.feed.BroadcastSettlement(account.ID, game, account.Balance)
	}

	return account, game, nil
}

// Provision returns the caller's account, creating it with the starting
// balance on first login. Creation races resolve by re-reading.
func (s *Settlement) Provision(ctx context.Context, identity Identity) (models.Account, error) {
	account, err := s.store.AccountBySubject(ctx, identity.SubjectID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, fmt.Errorf("resolve account: %w", err)
	}

	account, err = s.store.CreateAccount(ctx, identity.SubjectID, identity.Email, identity.Name)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return s.store.AccountBySubject(ctx, identity.SubjectID)
		}
		return models.Account{}, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "provisioned account",
		"account_id", account.ID,
		"starting_balance", account.Balance,
	)

	return account, nil
}

func (s *Settlement) Profile(ctx context.Context, subjectID string) (models.Account, error) {
	return s.store.AccountBySubject(ctx, subjectID)
}

func (s *Settlement) History(ctx context.Context, subjectID string, limit int) ([]models.SettledGame, error) {
	account, err := s.store.AccountBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	return s.store.RecentGames(ctx, account.ID, limit)
}

func (s *Settlement) Stats(ctx context.Context, subjectID string) (models.AccountStats, error) {
	account, err := s.store.AccountBySubject(ctx, subjectID)
	if err != nil {
		return models.AccountStats{}, fmt.Errorf("resolve account: %w", err)
	}

	return s.store.AccountStats(ctx, account.ID)
}
