package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"hauskasse/internal/backend"
	"hauskasse/internal/config"
	"hauskasse/internal/events"
	apphttp "hauskasse/internal/http"
	"hauskasse/internal/ledger"
	"hauskasse/internal/log"
)

func main() {
	// A missing .env is fine; the environment itself still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Failed to load configuration", log.FieldError, err)
		os.Exit(1)
	}

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.App.LogLevel),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", log.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger)
	storeResult, err := factory.CreateStore(ctx, backend.Config{
		Type:         backend.Type(cfg.Store.Backend),
		SQLiteDBPath: cfg.Store.SQLiteDBPath,
	})
	if err != nil {
		return err
	}
	if storeResult.Cleanup != nil {
		defer func() {
			if cerr := storeResult.Cleanup(); cerr != nil {
				logger.Warn("Store cleanup failed", log.FieldError, cerr)
			}
		}()
	}
	logger.Info("Store ready", "backend", cfg.Store.Backend)

	// Event publishing is optional and best-effort: without a broker the
	// ledger still works, mutations just go unannounced.
	var publisher ledger.EventPublisher
	if cfg.AMQP.URL != "" {
		client, err := events.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			logger.Warn("Event publishing disabled, broker unavailable", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Event publishing enabled", "exchange", cfg.AMQP.Exchange)
		}
	}

	expenses := ledger.NewExpenseService(storeResult.Store, publisher)
	summaries := ledger.NewSummaryService(storeResult.Store)

	srv := apphttp.NewServer(expenses, summaries, apphttp.Options{
		Port:           cfg.App.Port,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		Logger:         logger.WithComponent(log.ComponentHTTP),
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
