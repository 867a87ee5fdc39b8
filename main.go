package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"solpass.app/cloud/handlers"
	"solpass.app/cloud/internal/config"
	"solpass.app/cloud/internal/events"
	"solpass.app/cloud/internal/logger"
	"solpass.app/cloud/internal/metrics"
	"solpass.app/cloud/internal/solana"
	"solpass.app/cloud/internal/wallet"
	"solpass.app/cloud/storage"
	"solpass.app/cloud/subscriptions"
)

var version = "dev"

func main() {
	if versionBytes, err := os.ReadFile("VERSION"); err == nil {
		version = strings.TrimSpace(string(versionBytes))
	}

	godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("config: %s", err)
	}

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	var store storage.Store
	if cfg.DatabasePath != "" {
		sqlite, err := storage.NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("storage: %s", err)
		}
		store = sqlite
		logger.Info("Using SQLite storage", map[string]interface{}{
			"path": cfg.DatabasePath,
		})
	} else {
		store = storage.NewMemoryStore()
		logger.Info("Using in-memory storage", nil)
	}
	defer store.Close()

	metrics.Register()

	bus := events.NewBus()
	subs := subscriptions.NewService(store, bus)
	wallets := wallet.NewRegistry()
	rpc := solana.NewClient(cfg.SolanaRPCURL)

	server := handlers.NewServer(cfg, subs, wallets, rpc, bus, version)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("SolPass Cloud API starting", map[string]interface{}{
			"version": version,
			"port":    cfg.Port,
		})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %s", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", map[string]interface{}{"error": err.Error()})
	}
}
