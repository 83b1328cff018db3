package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/KP12130/KPCasinoAI/internal/models"
)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Postgres persists accounts and settled games. Settlements take a row lock
// on the account so concurrent settlements for the same account serialize,
// while different accounts proceed independently.
type Postgres struct {
	pool *pgxpool.Pool
}

const accountColumns = `id, subject_id, email, display_name, balance, total_wagered, total_won, games_played, created_at, updated_at`

func (p *Postgres) AccountBySubject(ctx context.Context, subjectID string) (models.Account, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE subject_id = $1`,
		subjectID,
	)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, fmt.Errorf("%w: account for subject %s", ErrNotFound, subjectID)
		}
		return models.Account{}, fmt.Errorf("fetch account: %w", err)
	}

	return account, nil
}

func (p *Postgres) CreateAccount(ctx context.Context, subjectID, email, displayName string) (models.Account, error) {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO accounts (id, subject_id, email, display_name, balance)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+accountColumns,
		uuid.New(), subjectID, email, nullable(displayName), models.StartingBalance,
	)

	account, err := scanAccount(row)
	if err != nil {
		if isPgCode(err, "23505") {
			return models.Account{}, fmt.Errorf("%w: %v", ErrAlreadyExists, err)
		}
		return models.Account{}, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

// Settle applies one settlement atomically: lock the account row, verify
// funds, apply the balance change and counters, append the history record.
// The funds check runs under the same lock as the mutation, so two
// simultaneous claims against the same balance cannot both pass it.
func (p *Postgres) Settle(ctx context.Context, in models.SettlementInput) (models.Account, models.SettledGame, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return models.Account{}, models.SettledGame{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback settlement", "error", err)
		}
	}()

	var balance decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`,
		in.AccountID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, models.SettledGame{}, fmt.Errorf("%w: account %s", ErrNotFound, in.AccountID)
		}
		return models.Account{}, models.SettledGame{}, fmt.Errorf("lock account: %w", err)
	}

	if balance.LessThan(in.BetAmount) {
		return models.Account{}, models.SettledGame{}, fmt.Errorf("%w: balance %s, bet %s",
			ErrInsufficientBalance, balance, in.BetAmount)
	}

	row := tx.QueryRow(ctx,
		`UPDATE accounts
		 SET balance = balance - $2 + $3,
		     total_wagered = total_wagered + $2,
		     total_won = total_won + $3,
		     games_played = games_played + 1,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+accountColumns,
		in.AccountID, in.BetAmount, in.WinAmount,
	)
	account, err := scanAccount(row)
	if err != nil {
		return models.Account{}, models.SettledGame{}, fmt.Errorf("update account: %w", err)
	}

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
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO settled_games (id, account_id, game_type, bet_amount, multiplier, win_amount, profit, game_data, is_win)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		game.ID, game.AccountID, game.GameType, game.BetAmount, game.Multiplier,
		game.WinAmount, game.Profit, game.GameData, game.IsWin,
	).Scan(&game.CreatedAt)
	if err != nil {
		return models.Account{}, models.SettledGame{}, fmt.Errorf("append history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Account{}, models.SettledGame{}, fmt.Errorf("commit tx: %w", err)
	}

	return account, game, nil
}

func (p *Postgres) RecentGames(ctx context.Context, accountID uuid.UUID, limit int) ([]models.SettledGame, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, account_id, game_type, bet_amount, multiplier, win_amount, profit, game_data, is_win, created_at
		 FROM settled_games
		 WHERE account_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		accountID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer rows.Close()

	var games []models.SettledGame
	for rows.Next() {
		var g models.SettledGame
		if err := rows.Scan(&g.ID, &g.AccountID, &g.GameType, &g.BetAmount, &g.Multiplier,
			&g.WinAmount, &g.Profit, &g.GameData, &g.IsWin, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return games, nil
}

func (p *Postgres) AccountStats(ctx context.Context, accountID uuid.UUID) (models.AccountStats, error) {
	stats := models.AccountStats{
		GamesByType: make(map[models.GameType]int),
		ProfitByDay: make(map[string]decimal.Decimal),
	}

	var wins int
	err := p.pool.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE is_win)
		 FROM settled_games WHERE account_id = $1`,
		accountID,
	).Scan(&stats.TotalGames, &wins)
	if err != nil {
		return models.AccountStats{}, fmt.Errorf("count games: %w", err)
	}
	if stats.TotalGames > 0 {
		stats.WinRate = float64(wins) / float64(stats.TotalGames) * 100
	}

	rows, err := p.pool.Query(ctx,
		`SELECT game_type, count(*) FROM settled_games WHERE account_id = $1 GROUP BY game_type`,
		accountID,
	)
	if err != nil {
		return models.AccountStats{}, fmt.Errorf("count games by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var gameType models.GameType
		var count int
		if err := rows.Scan(&gameType, &count); err != nil {
			return models.AccountStats{}, fmt.Errorf("scan type count: %w", err)
		}
		stats.GamesByType[gameType] = count
	}
	if err := rows.Err(); err != nil {
		return models.AccountStats{}, fmt.Errorf("iterate type counts: %w", err)
	}

	dayRows, err := p.pool.Query(ctx,
		`SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD'), sum(profit)
		 FROM settled_games WHERE account_id = $1
		 GROUP BY 1`,
		accountID,
	)
	if err != nil {
		return models.AccountStats{}, fmt.Errorf("sum profit by day: %w", err)
	}
	defer dayRows.Close()
	for dayRows.Next() {
		var day string
		var profit decimal.Decimal
		if err := dayRows.Scan(&day, &profit); err != nil {
			return models.AccountStats{}, fmt.Errorf("scan day profit: %w", err)
		}
		stats.ProfitByDay[day] = profit
	}
	if err := dayRows.Err(); err != nil {
		return models.AccountStats{}, fmt.Errorf("iterate day profits: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (models.Account, error) {
	var a models.Account
	var displayName *string
	err := row.Scan(&a.ID, &a.SubjectID, &a.Email, &displayName, &a.Balance,
		&a.TotalWagered, &a.TotalWon, &a.GamesPlayed, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return models.Account{}, err
	}
	if displayName != nil {
		a.DisplayName = *displayName
	}
	return a, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isPgCode(err error, code string) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == code
}
