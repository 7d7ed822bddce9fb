package main

import (
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/user/shadow-market/config"
	"github.com/user/shadow-market/internal/blackmarket"
	"github.com/user/shadow-market/internal/interfaces"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "./config/config.json", "Path to configuration file")
	flag.Parse()

	// Load configuration; on failure the defaults still carry a usable log level
	cfg, cfgErr := config.LoadConfig(*configPath)

	// Set up logger
	logger := setupLogger(cfg.Server.LogLevel)
	defer logger.Sync()

	if cfgErr != nil {
		logger.Fatal("Failed to load configuration", zap.Error(cfgErr))
	}

	// Initialize market manager
	marketManager := blackmarket.NewMarketManager(cfg)
	marketManager.SetLogger(logger)

	// Restore the last snapshot if one exists
	storage := blackmarket.NewMarketStorage(cfg.Storage.SavePath)
	snapshot, err := storage.Load()
	if err != nil {
		logger.Error("Failed to load snapshot, starting fresh", zap.Error(err))
	} else if snapshot != nil {
		if err := marketManager.RestoreSnapshot(snapshot); err != nil {
			logger.Error("Failed to restore snapshot, starting fresh", zap.Error(err))
		} else {
			logger.Info("Restored market snapshot",
				zap.Int64("tick", marketManager.CurrentTick()))
		}
	}

	// Initialize the game-loop runner
	runner := blackmarket.NewRunner(marketManager, storage, cfg)
	runner.SetLogger(logger)

	// Set up HTTP server
	server := setupHTTPServer(cfg, marketManager, runner, logger)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	// Start the tick loop after everything else is initialized
	runner.Start()
	defer runner.Stop()

	// Wait for shutdown signal
	waitForShutdown(logger)
}

func setupLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(parsed)
	}
	logger, _ := config.Build()
	return logger
}

func setupHTTPServer(cfg config.Config, market interfaces.Market, runner *blackmarket.Runner, logger *zap.Logger) *http.Server {
	// Create router
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Set up routes
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	router.Get("/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"tick":                runner.CurrentTick(),
			"wealth":              runner.Wealth(),
			"heat":                market.HeatStatus(),
			"reputation":          market.Reputation(),
			"deals_available":     len(market.Deals()),
			"open_investigations": len(market.Investigations()),
			"active_effects":      len(market.Effects()),
		})
	})

	router.Get("/deals", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, market.Deals())
	})

	router.Post("/deals/{instanceID}/accept", func(w http.ResponseWriter, r *http.Request) {
		instanceID := chi.URLParam(r, "instanceID")

		result, err := runner.AcceptDeal(instanceID)
		if err != nil {
			logger.Info("Deal acceptance rejected",
				zap.String("instance_id", instanceID),
				zap.Error(err))
			writeError(w, err.Error(), statusForError(err))
			return
		}

		writeJSON(w, result)
	})

	router.Get("/contacts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, market.Contacts())
	})

	router.Post("/contacts/{contactID}/abilities/{abilityID}", func(w http.ResponseWriter, r *http.Request) {
		contactID := chi.URLParam(r, "contactID")
		abilityID := chi.URLParam(r, "abilityID")

		result, err := runner.InvokeAbility(contactID, abilityID)
		if err != nil {
			logger.Info("Ability invocation rejected",
				zap.String("contact_id", contactID),
				zap.String("ability_id", abilityID),
				zap.Error(err))
			writeError(w, err.Error(), statusForError(err))
			return
		}

		writeJSON(w, result)
	})

	router.Get("/investigations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, market.Investigations())
	})

	router.Get("/effects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, market.Effects())
	})

	router.Get("/log", func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				writeError(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		writeJSON(w, market.Log(limit))
	})

	router.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, market.Stats())
	})

	router.Post("/save", func(w http.ResponseWriter, r *http.Request) {
		if err := runner.SaveNow(); err != nil {
			logger.Error("Failed to save snapshot", zap.Error(err))
			writeError(w, "failed to save snapshot", http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]interface{}{
			"saved": true,
			"tick":  runner.CurrentTick(),
		})
	})

	// Create HTTP server
	return &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusForError maps validation rejections to HTTP statuses: unknown
// ids are 404, every other rejection is 400.
func statusForError(err error) int {
	switch {
	case errors.Is(err, blackmarket.ErrUnknownDeal),
		errors.Is(err, blackmarket.ErrUnknownContact),
		errors.Is(err, blackmarket.ErrUnknownAbility):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func waitForShutdown(logger *zap.Logger) {
	// Set up channel for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	// Perform cleanup
	logger.Info("Shutting down")
}
