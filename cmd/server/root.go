package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/examcraft/backend/internal/api"
	"github.com/examcraft/backend/internal/domain/studydeck"
	"github.com/examcraft/backend/internal/generator"
	"github.com/examcraft/backend/internal/infrastructure/config"
	"github.com/examcraft/backend/internal/infrastructure/logging"
	"github.com/examcraft/backend/internal/service"
	"github.com/examcraft/backend/internal/store"
)

// app holds what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *store.SQLiteStore
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	db, err := store.NewSQLite(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open database", zap.String("path", cfg.Database.Path), zap.Error(err))
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "examcraft",
		Short: "ExamCraft flashcard study server",
		Long: `Serves the ExamCraft HTTP API.

Configuration is read from flag defaults, an optional YAML file (--config),
a .env file, EXAMCRAFT_ environment variables and command-line flags, in
increasing priority. Nested keys use a double underscore in the
environment: EXAMCRAFT_LLM__API_KEY sets llm.api_key.`,
		SilenceUsage: true,
		RunE:         runServer,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newImportCmd(), newExportCmd())
	return root
}

func newGenerator(ctx context.Context, cfg config.LLMConfig) (generator.Generator, error) {
	switch cfg.Provider {
	case "gemini":
		g, err := generator.NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return generator.NewOpenAIGenerator(cfg.URL, cfg.Model, cfg.APIKey, cfg.Timeout), nil
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, logger := a.cfg, a.logger

	// ── Dependencies ────────────────────────────────────────────────
	llm, err := newGenerator(cmd.Context(), cfg.LLM)
	if err != nil {
		logger.Error("failed to create generator", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		return err
	}

	generation := service.NewGenerationService(a.db, llm, cfg.Generation.Workers, cfg.Generation.QueueSize, logger)
	defer generation.Close()

	study := service.NewStudyService(a.db, studydeck.NewComposer(), logger)
	handler := api.NewHandler(a.db, study, generation, service.NewTransferService(a.db), logger)

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           api.NewRouter(handler),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("address", cfg.Server.Address),
			zap.String("llm_provider", cfg.LLM.Provider),
			zap.String("llm_model", llm.Model()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed to start", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}
	return nil
}
