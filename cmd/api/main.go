package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/watchtowerhq/watchtower/api/config"
	"github.com/watchtowerhq/watchtower/api/handlers"
	"github.com/watchtowerhq/watchtower/api/metrics"
	"github.com/watchtowerhq/watchtower/pkg/classify"
	"github.com/watchtowerhq/watchtower/pkg/llm"
	"github.com/watchtowerhq/watchtower/pkg/pipeline"
	"github.com/watchtowerhq/watchtower/pkg/router"
	"github.com/watchtowerhq/watchtower/pkg/shape"
	"github.com/watchtowerhq/watchtower/pkg/store"
	"github.com/watchtowerhq/watchtower/pkg/synth"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)

	var client llm.Client
	var oracle handlers.OracleChecker
	switch cfg.Provider {
	case config.ProviderAnthropic:
		client = llm.NewAnthropicClient(anthropic.Model(cfg.AnthropicModel), 1024, log)
		log.Info("using anthropic completion provider", "model", cfg.AnthropicModel)
	default:
		ollama := llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaTimeout, log)
		client = ollama
		oracle = ollama
		log.Info("using ollama completion provider", "url", cfg.OllamaURL, "model", cfg.OllamaModel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.NewPostgres(ctx, cfg.PostgresDSN(), log, store.WithQueryTimeout(cfg.QueryTimeout))
	cancel()
	if err != nil {
		log.Error("failed to connect to postgres", "host", cfg.PostgresHost, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	classifier := classify.New(client, log)
	rt, err := router.New(classifier, log)
	if err != nil {
		log.Error("failed to build router", "error", err)
		os.Exit(1)
	}
	det := shape.NewDetector(classifier, log)
	gen := synth.NewGenerator(client, log)
	p := pipeline.New(classifier, rt, gen, st, det, log)
	h := handlers.New(p, st, oracle, log)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Post("/query", h.Query)
	r.Post("/debug-query", h.Debug)
	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("API server starting", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := <-shutdown
	log.Info("shutting down gracefully", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown error", "error", err)
		return
	}
	log.Info("server stopped gracefully")
}
