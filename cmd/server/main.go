package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fernet/fernet-go"
	"google.golang.org/genai"

	"github.com/stocktrackhq/stocktrack-backend/internal/api"
	"github.com/stocktrackhq/stocktrack-backend/internal/config"
	"github.com/stocktrackhq/stocktrack-backend/internal/database"
	"github.com/stocktrackhq/stocktrack-backend/internal/logger"
	"github.com/stocktrackhq/stocktrack-backend/internal/marketdata"
	"github.com/stocktrackhq/stocktrack-backend/internal/repository"
	"github.com/stocktrackhq/stocktrack-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel)

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to apply migrations")
	}
	log.WithField("path", cfg.Database.Path).Info("database ready")

	// Create repositories
	userRepo := repository.NewUserRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	watchlistRepo := repository.NewWatchlistRepository(db)

	// Quote provider
	provider := marketdata.NewMockProvider(cfg.Quotes.CacheTTL)

	// Create services
	systemService := service.NewSystemService(db)

	sessionKey := cfg.Session.Key
	if sessionKey == "" {
		var key fernet.Key
		if err := key.Generate(); err != nil {
			log.WithError(err).Fatal("failed to generate session key")
		}
		sessionKey = key.Encode()
		log.Warn("SESSION_KEY not set, using an ephemeral key; sessions will not survive restarts")
	}
	authService, err := service.NewAuthService(userRepo, sessionKey, cfg.Session.TTL, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize auth")
	}
	portfolioService := service.NewPortfolioService(db, portfolioRepo, holdingRepo, provider, cfg.Quotes.Timeout, log)
	tradingService := service.NewTradingService(db, portfolioService, portfolioRepo, holdingRepo, transactionRepo, provider, cfg.Quotes.Timeout, log)
	watchlistService := service.NewWatchlistService(db, watchlistRepo, provider, cfg.Quotes.Timeout, log)
	stockService := service.NewStockService(provider, cfg.Quotes.Timeout, log)

	// Optional Gemini client for commentary
	var aiClient *genai.Client
	if cfg.AI.APIKey != "" {
		aiClient, err = genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  cfg.AI.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.WithError(err).Warn("failed to initialize Gemini client, commentary disabled")
			aiClient = nil
		}
	}
	aiService := service.NewAIService(aiClient, cfg.AI.Model, cfg.AI.Timeout, provider, portfolioService, log)

	// Background quote cache refresh
	refresher := service.NewQuoteRefresher(provider, holdingRepo, cfg.Quotes.RefreshSpec, log)
	if err := refresher.Start(); err != nil {
		log.WithError(err).Fatal("failed to start quote refresher")
	}
	defer refresher.Stop()

	// Create router
	router := api.NewRouter(api.Services{
		Auth:      authService,
		Portfolio: portfolioService,
		Trading:   tradingService,
		Watchlist: watchlistService,
		Stock:     stockService,
		AI:        aiService,
		System:    systemService,
	}, cfg, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}
