/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Bloomday pricing-engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse environment config
  2. Build the zap logger
  3. Open the SQLite store and parse the venue rule sheet
  4. Wire cache (Redis when REDIS_ADDR is set, in-process otherwise),
     guest-count store, and delta engine
  5. Start the HTTP server with graceful shutdown

ENVIRONMENT:
  PORT        HTTP server port (default 8080)
  DB_PATH     SQLite database path (default bloomday.db, ":memory:" works)
  RULES_PATH  Venue rule sheet JSON; empty uses the built-in sheet
  REDIS_ADDR  Optional shared guest-count cache
  LOG_MODE    "prod" for JSON logs, anything else for development output

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the database, exit.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bloomday/pricing-engine/api"
	"github.com/bloomday/pricing-engine/delta"
	"github.com/bloomday/pricing-engine/factory"
	"github.com/bloomday/pricing-engine/guestcount"
	redisstore "github.com/bloomday/pricing-engine/store/redis"
	"github.com/bloomday/pricing-engine/store/sqlite"
)

type config struct {
	Port      int    `env:"PORT" envDefault:"8080"`
	DBPath    string `env:"DB_PATH" envDefault:"bloomday.db"`
	RulesPath string `env:"RULES_PATH"`
	RedisAddr string `env:"REDIS_ADDR"`
	LogMode   string `env:"LOG_MODE" envDefault:"dev"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogMode)
	defer logger.Sync()
	log := logger.Sugar()

	// Storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to initialize database", "err", err)
	}
	defer store.Close()

	// Venue rule sheet
	sheet, err := loadSheet(cfg.RulesPath)
	if err != nil {
		log.Fatalw("failed to load rule sheet", "path", cfg.RulesPath, "err", err)
	}

	// Local cache layer: shared Redis when configured, in-process otherwise.
	var cache guestcount.Cache = guestcount.NewMemoryCache()
	if client := redisstore.NewClient(context.Background()); client != nil {
		defer client.Close()
		cache = redisstore.NewCache(client)
		log.Infow("using redis guest-count cache", "addr", cfg.RedisAddr)
	}

	counts := guestcount.NewStore(cache, store, guestcount.WithLogger(log))
	engine := delta.NewEngine(store, counts, sheet.Registry)
	engine.PlannerTiers = sheet.PlannerTiers
	engine.Log = log

	handler := api.NewHandler(store, counts, engine, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
	log.Info("server stopped")
}

func newLogger(mode string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if mode == "prod" || mode == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func loadSheet(path string) (*factory.SheetResult, error) {
	if path == "" {
		return factory.DefaultSheet()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	registry, planner, err := factory.NewRuleFactory().ParseSheet(string(raw))
	if err != nil {
		return nil, err
	}
	return &factory.SheetResult{Registry: registry, PlannerTiers: planner}, nil
}
