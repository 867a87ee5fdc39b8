package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"solpass.app/cloud/internal/config"
	"solpass.app/cloud/internal/events"
	"solpass.app/cloud/internal/metrics"
	"solpass.app/cloud/internal/ratelimit"
	"solpass.app/cloud/internal/solana"
	"solpass.app/cloud/internal/wallet"
	"solpass.app/cloud/models"
	"solpass.app/cloud/subscriptions"
)

// SolanaReader is the read-only RPC surface the balance and history screens
// need. The concrete client lives in internal/solana; tests substitute a
// stub.
type SolanaReader interface {
	GetBalance(ctx context.Context, address string) (float64, error)
	GetSignatures(ctx context.Context, address string, limit int) ([]solana.SignatureInfo, error)
}

type Server struct {
	Router        chi.Router
	Subscriptions *subscriptions.Service
	Wallets       *wallet.Registry
	Solana        SolanaReader
	Bus           *events.Bus
	Config        *config.Config

	version string
}

func NewServer(cfg *config.Config, subs *subscriptions.Service, wallets *wallet.Registry, rpc SolanaReader, bus *events.Bus, version string) *Server {
	s := &Server{
		Router:        chi.NewRouter(),
		Subscriptions: subs,
		Wallets:       wallets,
		Solana:        rpc,
		Bus:           bus,
		Config:        cfg,
		version:       version,
	}

	limiter := ratelimit.New(cfg.RateLimitMax, time.Minute)

	s.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "https://solpass.app"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Session-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.Router.Use(metrics.Middleware)

	s.Router.Get("/health", s.Health)
	s.Router.Handle("/metrics", metrics.Handler())

	s.Router.Route("/api/v1", func(r chi.Router) {
		r.Get("/plans", s.ListPlans)
		r.Get("/events", s.EventStream)

		r.Get("/wallet/session", s.GetSession)
		r.Get("/wallets/{address}/subscriptions", s.ListSubscriptions)
		r.Get("/wallets/{address}/subscriptions/{id}", s.GetSubscription)
		r.Get("/wallets/{address}/balance", s.GetBalance)
		r.Get("/wallets/{address}/transactions", s.ListTransactions)

		// mutating routes sit behind the rate limiter
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/wallet/connect", s.ConnectWallet)
			r.Delete("/wallet/session", s.DisconnectWallet)
			r.Post("/wallets/{address}/subscriptions", s.CreateSubscription)
			r.Patch("/wallets/{address}/subscriptions/{id}", s.UpdateSubscription)
			r.Delete("/wallets/{address}/subscriptions", s.ClearSubscriptions)
			r.Post("/wallets/{address}/billing/run", s.RunBilling)
			r.Post("/wallets/{address}/transactions/notify", s.NotifyTransaction)
		})
	})

	return s
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   s.version,
		Timestamp: time.Now(),
	})
}

func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": models.Plans()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
