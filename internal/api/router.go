package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/handlers"
	custommiddleware "github.com/stocktrackhq/stocktrack-backend/internal/api/middleware"
	"github.com/stocktrackhq/stocktrack-backend/internal/config"
	"github.com/stocktrackhq/stocktrack-backend/internal/service"
)

// Services bundles everything the router needs.
type Services struct {
	Auth      *service.AuthService
	Portfolio *service.PortfolioService
	Trading   *service.TradingService
	Watchlist *service.WatchlistService
	Stock     *service.StockService
	AI        *service.AIService
	System    *service.SystemService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.NewLogger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	requireAuth := custommiddleware.RequireAuth(svc.Auth)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/auth", func(r chi.Router) {
			authHandler := handlers.NewAuthHandler(svc.Auth)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
				r.Post("/password", authHandler.ChangePassword)
			})
		})

		r.Route("/stock", func(r chi.Router) {
			stockHandler := handlers.NewStockHandler(svc.Stock)
			r.Get("/search", stockHandler.Search)
			r.Get("/{symbol}/quote", stockHandler.Quote)
			r.Get("/{symbol}/info", stockHandler.Info)
			r.Get("/{symbol}/kline", stockHandler.Candles)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Use(requireAuth)
			portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio)
			r.Get("/", portfolioHandler.List)
			r.Post("/", portfolioHandler.Create)
			r.Get("/summary", portfolioHandler.Summary)
			r.Get("/default", portfolioHandler.Default)
			r.Get("/{id}", portfolioHandler.Detail)
			r.Put("/{id}", portfolioHandler.Update)
			r.Put("/{id}/default", portfolioHandler.SetDefault)
			r.Delete("/{id}", portfolioHandler.Delete)
			r.Post("/{id}/holding", portfolioHandler.AddHolding)
			r.Put("/holding/{holdingId}", portfolioHandler.UpdateHolding)
			r.Delete("/holding/{holdingId}", portfolioHandler.RemoveHolding)
		})

		r.Route("/trading", func(r chi.Router) {
			r.Use(requireAuth)
			tradingHandler := handlers.NewTradingHandler(svc.Trading)
			r.Post("/buy", tradingHandler.Buy)
			r.Post("/sell", tradingHandler.Sell)
			r.Get("/transactions", tradingHandler.Transactions)
			r.Get("/transactions/{id}", tradingHandler.Transaction)
			r.Get("/stats", tradingHandler.Stats)
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Use(requireAuth)
			watchlistHandler := handlers.NewWatchlistHandler(svc.Watchlist)
			r.Get("/", watchlistHandler.List)
			r.Post("/", watchlistHandler.Create)
			r.Get("/default", watchlistHandler.Default)
			r.Get("/{id}", watchlistHandler.Detail)
			r.Put("/{id}", watchlistHandler.Update)
			r.Delete("/{id}", watchlistHandler.Delete)
			r.Post("/{id}/symbols", watchlistHandler.AddSymbol)
			r.Delete("/{id}/symbols/{symbol}", watchlistHandler.RemoveSymbol)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(requireAuth)
			aiHandler := handlers.NewAIHandler(svc.AI)
			r.Get("/status", aiHandler.Status)
			r.Post("/ask", aiHandler.Ask)
			r.Post("/market", aiHandler.AnalyzeMarket)
			r.Get("/stock/{symbol}", aiHandler.AnalyzeStock)
			r.Get("/portfolio/{id}", aiHandler.AnalyzePortfolio)
		})
	})

	return r
}
