package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Stockbroker-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Stockbroker-Backend/internal/api/middleware"
	"github.com/ndewijer/Stockbroker-Backend/internal/config"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/ndewijer/Stockbroker-Backend/internal/service"
)

// Services bundles the services the HTTP layer delegates to.
type Services struct {
	System      *service.SystemService
	Portfolio   *service.PortfolioService
	Allocation  *service.AllocationService
	Transaction *service.TransactionService
	Strategy    *service.StrategyService
	Performance *service.PerformanceService
	// Now reports the current time for queries without a date. Nil uses time.Now.
	Now func() time.Time
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, logger *logging.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(svc.System)
	portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio, svc.Allocation, svc.Now)
	transactionHandler := handlers.NewTransactionHandler(svc.Transaction)
	strategyHandler := handlers.NewStrategyHandler(svc.Strategy)
	performanceHandler := handlers.NewPerformanceHandler(svc.Performance)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/", portfolioHandler.CreatePortfolio)

			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", portfolioHandler.GetPortfolio)
				r.Get("/composition", portfolioHandler.Composition)
				r.Get("/value", portfolioHandler.Value)
				r.Get("/cost-basis", portfolioHandler.CostBasis)
				r.Get("/summary", portfolioHandler.Summary)
				r.Post("/invest", portfolioHandler.Invest)

				r.Get("/performance", performanceHandler.Performance)
				r.Get("/performance/chart", performanceHandler.Chart)

				r.Get("/transactions", transactionHandler.Transactions)
				r.Post("/transactions", transactionHandler.CreateTransaction)
			})
		})

		r.Route("/strategy", func(r chi.Router) {
			r.Get("/", strategyHandler.Strategies)
			r.Post("/", strategyHandler.CreateStrategy)
			r.Get("/{name}", strategyHandler.GetStrategy)
		})
	})

	return r
}
