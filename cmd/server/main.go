package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/analytics"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/api"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/cache"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/config"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/event"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/ingestion"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/metrics"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/storage"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/ticker"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/websocket"
	"github.com/dennisdiepolder/monti/salesmetrics/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	storeCfg := storage.LoadConfig()

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Str("store_backend", string(storeCfg.Backend)).
		Str("timeseries_strategy", cfg.TimeSeriesStrategy).
		Msg("starting sales metrics server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create record store
	store, err := storage.NewStore(ctx, storeCfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize record store")
	}

	// Create metrics engine
	svc := analytics.NewService(store, analytics.Options{
		Strategy:         analytics.Strategy(cfg.TimeSeriesStrategy),
		FetchConcurrency: cfg.FetchConcurrency,
		MaxWindowDays:    cfg.MaxWindowDays,
	}, log.Logger)

	// Create ingestion pipeline
	dirty := cache.NewDirtySet()
	processor := ingestion.NewDefaultProcessor(store, dirty, log.Logger)
	eventReceiver := event.NewReceiver(processor, log.Logger)

	if cfg.NATSURL != "" {
		var source ingestion.EventSource = ingestion.NewNATSSource(cfg.NATSURL, cfg.NATSCallsSubject, log.Logger)
		if err := source.Start(ctx, processor); err != nil {
			log.Fatal().Err(err).Str("source", source.Name()).Msg("failed to start event source")
		}
	}

	// Create live dashboard publisher
	hub := websocket.NewHub(log.Logger)
	publisher := ticker.NewPublisher(hub, svc, dirty, cfg.Thresholds(), cfg.DashboardInterval, log.Logger)
	hub.OnRegister(func(workspaceID string) {
		publisher.Snapshot(ctx, workspaceID)
	})
	go hub.Run()
	go publisher.Start(ctx)

	r := newRouter(cfg, routes{
		metrics:   api.NewMetricsHandler(svc, cfg.DefaultWindowDays, log.Logger),
		admin:     api.NewAdminHandler(store, hub, log.Logger),
		receiver:  eventReceiver,
		websocket: websocket.NewHandler(hub, cfg, log.Logger),
	}, log.Logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop publisher and event sources
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// routes bundles the handlers mounted by newRouter
type routes struct {
	metrics   *api.MetricsHandler
	admin     *api.AdminHandler
	receiver  *event.Receiver
	websocket http.Handler
}

// newRouter builds the HTTP surface of the service
func newRouter(cfg *config.Config, h routes, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Get().Handler())
	r.Method(http.MethodGet, "/ws", h.websocket)

	// Internal routes for booking and CRM integrations
	r.Route("/internal", func(r chi.Router) {
		r.Post("/calls", h.receiver.HandleEvent)
		r.Get("/calls/stats", h.receiver.GetStats)
		r.Post("/admin/wipe", h.admin.WipeStore)
	})

	r.Route("/api", func(r chi.Router) {
		h.metrics.Routes(r)
		r.Post("/classify", api.Classify)
	})

	return r
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"salesmetrics"}`)
}
