package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/KP12130/KPCasinoAI/internal/config"
	"github.com/KP12130/KPCasinoAI/internal/handlers"
	"github.com/KP12130/KPCasinoAI/internal/middleware"
	"github.com/KP12130/KPCasinoAI/internal/services"
	"github.com/KP12130/KPCasinoAI/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	var limiter services.Limiter
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// The settlement service falls back to no rate limiting rather than
		// refusing to start.
		slog.WarnContext(ctx, "redis unavailable, rate limiting disabled", "error", err)
	} else {
		limiter = services.NewRateLimiter(redisClient, cfg.SettleInterval)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret)

	settlement := services.NewSettlement(store, limiter, nil)
	wsHandler := handlers.NewWebSocketHandler(settlement)
	settlement.SetFeed(wsHandler)

	userHandler := handlers.NewUserHandler(settlement)
	gameHandler := handlers.NewGameHandler(settlement)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LogRequests())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.POST("/user", userHandler.Provision)
		protected.GET("/user/profile", userHandler.Profile)
		protected.GET("/user/stats", userHandler.Stats)

		protected.POST("/game/result", gameHandler.SubmitResult)
		protected.GET("/game/history", gameHandler.History)

		protected.GET("/ws", wsHandler.HandleWebSocket)
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	slog.InfoContext(ctx, "starting server", "addr", cfg.Addr, "env", cfg.Env)
	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.InfoContext(ctx, "stopping server")
		if err := server.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to shutdown server", "error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func newStore(ctx context.Context, cfg *config.Config) (services.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		slog.WarnContext(ctx, "no database configured, using in-memory store")
		return storage.NewMemory(), func() {}, nil
	}

	pgxConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database config: %w", err)
	}
	pgxConfig.AfterConnect = func(ctx context.Context, c *pgx.Conn) error {
		pgxdecimal.Register(c.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	return storage.NewPostgres(pool), pool.Close, nil
}
