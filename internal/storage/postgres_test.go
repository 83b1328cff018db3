package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/KP12130/KPCasinoAI/internal/models"
	"github.com/KP12130/KPCasinoAI/internal/storage"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		os.Exit(m.Run())
	}
	if os.Getenv("CI") == "" && !isDockerAvailable() {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(
		ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("casino"),
		tcpostgres.WithUsername("casino"),
		tcpostgres.WithPassword("casino"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		os.Exit(m.Run())
	}

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(context.Background())
		os.Exit(1)
	}

	pgxConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		container.Terminate(context.Background())
		os.Exit(1)
	}
	pgxConfig.AfterConnect = func(ctx context.Context, c *pgx.Conn) error {
		pgxdecimal.Register(c.TypeMap())
		return nil
	}

	testPool, err = pgxpool.NewWithConfig(ctx, pgxConfig)
	if err != nil {
		container.Terminate(context.Background())
		os.Exit(1)
	}

	if err := applyMigrations(ctx, testPool); err != nil {
		container.Terminate(context.Background())
		os.Exit(1)
	}

	code := m.Run()

	testPool.Close()
	container.Terminate(context.Background())
	os.Exit(code)
}

func isDockerAvailable() (ok bool) {
	// testcontainers panics (rather than returning an error) when no Docker
	// host can be found; treat that as Docker being unavailable.
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return false
	}
	defer provider.Close()

	_, err = provider.DaemonHost(ctx)
	return err == nil
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.up.sql"))
	if err != nil {
		return err
	}

	for _, file := range files {
		sql, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return err
		}
	}
	return nil
}

func newPostgres(t *testing.T) *storage.Postgres {
	t.Helper()
	if testPool == nil {
		t.Skip("postgres not available")
	}
	return storage.NewPostgres(testPool)
}

func TestPostgres_AccountLifecycle(t *testing.T) {
	p := newPostgres(t)
	ctx := context.Background()

	account, err := p.CreateAccount(ctx, "pg-subject-1", "p1@example.com", "Player One")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(models.StartingBalance), "balance = %s", account.Balance)
	assert.Equal(t, "Player One", account.DisplayName)

	_, err = p.CreateAccount(ctx, "pg-subject-1", "p1@example.com", "Player One")
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	found, err := p.AccountBySubject(ctx, "pg-subject-1")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)

	_, err = p.AccountBySubject(ctx, "pg-missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPostgres_SettleRoundTrip(t *testing.T) {
	p := newPostgres(t)
	ctx := context.Background()

	account, err := p.CreateAccount(ctx, "pg-subject-2", "", "")
	require.NoError(t, err)

	in := settlementInput(account.ID, "10", "25.50", true)
	in.Multiplier = decimal.RequireFromString("2.55")
	in.GameData = []byte(`{"crashPoint": 2.61}`)

	updated, game, err := p.Settle(ctx, in)
	require.NoError(t, err)

	assert.True(t, updated.Balance.Equal(decimal.RequireFromString("1015.50")), "balance = %s", updated.Balance)
	assert.Equal(t, 1, updated.GamesPlayed)
	assert.False(t, game.CreatedAt.IsZero())

	games, err := p.RecentGames(ctx, account.ID, 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, game.ID, games[0].ID)
	assert.True(t, games[0].Profit.Equal(decimal.RequireFromString("15.50")))
	assert.JSONEq(t, `{"crashPoint": 2.61}`, string(games[0].GameData))
}

func TestPostgres_SettleInsufficientBalance(t *testing.T) {
	p := newPostgres(t)
	ctx := context.Background()

	account, err := p.CreateAccount(ctx, "pg-subject-3", "", "")
	require.NoError(t, err)

	_, _, err = p.Settle(ctx, settlementInput(account.ID, "1000.01", "0", false))
	require.ErrorIs(t, err, storage.ErrInsufficientBalance)

	found, err := p.AccountBySubject(ctx, "pg-subject-3")
	require.NoError(t, err)
	assert.True(t, found.Balance.Equal(models.StartingBalance))

	games, err := p.RecentGames(ctx, account.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestPostgres_ConcurrentSettlesSerialize(t *testing.T) {
	p := newPostgres(t)
	ctx := context.Background()

	account, err := p.CreateAccount(ctx, "pg-subject-4", "", "")
	require.NoError(t, err)

	// Whole balance staked on each attempt; the row lock must let exactly one
	// through.
	const attempts = 8
	errs := make(chan error, attempts)
	for range attempts {
		go func() {
			_, _, err := p.Settle(ctx, settlementInput(account.ID, "1000", "0", false))
			errs <- err
		}()
	}

	var succeeded int
	for range attempts {
		err := <-errs
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, storage.ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 1, succeeded)

	found, err := p.AccountBySubject(ctx, "pg-subject-4")
	require.NoError(t, err)
	assert.True(t, found.Balance.IsZero(), "balance = %s", found.Balance)
}

func TestPostgres_AccountStats(t *testing.T) {
	p := newPostgres(t)
	ctx := context.Background()

	account, err := p.CreateAccount(ctx, "pg-subject-5", "", "")
	require.NoError(t, err)

	_, _, err = p.Settle(ctx, settlementInput(account.ID, "10", "30", true))
	require.NoError(t, err)

	in := settlementInput(account.ID, "10", "0", false)
	in.GameType = models.GameTypeMines
	_, _, err = p.Settle(ctx, in)
	require.NoError(t, err)

	stats, err := p.AccountStats(ctx, account.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalGames)
	assert.Equal(t, 1, stats.GamesByType[models.GameTypeCrash])
	assert.Equal(t, 1, stats.GamesByType[models.GameTypeMines])
	assert.InDelta(t, 50.0, stats.WinRate, 0.001)

	var total decimal.Decimal
	for _, profit := range stats.ProfitByDay {
		total = total.Add(profit)
	}
	assert.True(t, total.Equal(decimal.RequireFromString("10")), "total profit = %s", total)
}
