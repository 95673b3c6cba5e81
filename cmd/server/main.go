package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/cotiza3d/internal/config"
	"github.com/Simplici0/cotiza3d/internal/db"
	"github.com/Simplici0/cotiza3d/internal/exchange"
	"github.com/Simplici0/cotiza3d/internal/migrations"
	"github.com/Simplici0/cotiza3d/internal/seed"
	"github.com/Simplici0/cotiza3d/internal/store"
)

// rateSource returns how many units of a currency one USD buys.
type rateSource interface {
	Rate(ctx context.Context, code string) (float64, error)
}

type server struct {
	auth  *authService
	store *store.Store
	rates rateSource
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	database, err := openDatabase(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to prepare database: %v", err)
	}
	defer database.Close()

	var cache exchange.Cache
	if cfg.RedisAddr != "" {
		rc, err := exchange.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("warning: redis unavailable, caching exchange rates in memory: %v", err)
		} else {
			defer rc.Close()
			cache = rc
		}
	}
	rates := exchange.NewClient(cfg.ExchangeRateURL, cfg.ExchangeRateTTL, &http.Client{Timeout: cfg.HTTPTimeout}, cache)

	srv := &server{
		auth:  newAuthService(cfg.AdminEmail, cfg.AdminPassword, cfg.SessionSecret, !cfg.IsDev()),
		store: store.New(database),
		rates: rates,
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// openDatabase opens the SQLite file, applies the embedded migrations and
// seeds the defaults.
func openDatabase(ctx context.Context, path string) (*sql.DB, error) {
	database, err := db.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(ctx, database); err != nil {
		database.Close()
		return nil, err
	}

	stats, err := seed.Run(ctx, database)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("seed database: %w", err)
	}
	if stats.Inserts > 0 {
		log.Printf("seeded %d records", stats.Inserts)
	}
	return database, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.auth.middleware)

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", s.handleCalculate)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		r.Get("/materials", s.handleListMaterials)
		r.Post("/materials", s.handleCreateMaterial)
		r.Get("/materials/{id}", s.handleGetMaterial)
		r.Put("/materials/{id}", s.handleUpdateMaterial)
		r.Delete("/materials/{id}", s.handleDeleteMaterial)

		r.Get("/machines", s.handleListMachines)
		r.Post("/machines", s.handleCreateMachine)
		r.Get("/machines/{id}", s.handleGetMachine)
		r.Put("/machines/{id}", s.handleUpdateMachine)
		r.Delete("/machines/{id}", s.handleDeleteMachine)

		r.Get("/clients", s.handleListClients)
		r.Post("/clients", s.handleCreateClient)
		r.Get("/clients/stats", s.handleClientStats)
		r.Get("/clients/{id}", s.handleGetClient)
		r.Put("/clients/{id}", s.handleUpdateClient)
		r.Delete("/clients/{id}", s.handleDeleteClient)
		r.Get("/clients/{id}/history", s.handleClientHistory)

		r.Get("/quotes", s.handleListQuotes)
		r.Post("/quotes", s.handleCreateQuote)
		r.Get("/quotes/{id}", s.handleGetQuote)
		r.Put("/quotes/{id}", s.handleUpdateQuote)
		r.Delete("/quotes/{id}", s.handleDeleteQuote)
		r.Patch("/quotes/{id}/status", s.handleQuoteStatus)
		r.Get("/quotes/{id}/text", s.handleQuoteText)
		r.Get("/quotes/{id}/pdf", s.handleQuotePDF)
		r.Get("/quotes/{id}/xlsx", s.handleQuoteXLSX)

		r.Get("/designs", s.handleListDesigns)
		r.Post("/designs", s.handleCreateDesign)
		r.Get("/designs/{id}", s.handleGetDesign)
		r.Put("/designs/{id}", s.handleUpdateDesign)
		r.Delete("/designs/{id}", s.handleDeleteDesign)
		r.Get("/designs/{id}/pdf", s.handleDesignPDF)

		r.Get("/investments", s.handleListInvestments)
		r.Post("/investments", s.handleCreateInvestment)
		r.Get("/investments/summary", s.handleInvestmentSummary)
		r.Put("/investments/{id}", s.handleUpdateInvestment)
		r.Delete("/investments/{id}", s.handleDeleteInvestment)

		r.Get("/purchases", s.handleListPurchases)
		r.Post("/purchases", s.handleCreatePurchase)
		r.Get("/purchases/{id}", s.handleGetPurchase)
		r.Put("/purchases/{id}", s.handleUpdatePurchase)
		r.Delete("/purchases/{id}", s.handleDeletePurchase)
		r.Post("/purchases/{id}/convert", s.handleConvertPurchase)

		r.Get("/links", s.handleListLinks)
		r.Post("/links", s.handleCreateLink)
		r.Put("/links/{id}", s.handleUpdateLink)
		r.Delete("/links/{id}", s.handleDeleteLink)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/exchange-rate", s.handleExchangeRate)
		r.Get("/currencies", s.handleCurrencies)
	})

	return r
}
