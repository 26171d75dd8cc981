package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/collection-climate-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/collection-climate-etl/internal/adapter/kafka"
	"github.com/couchcryptid/collection-climate-etl/internal/config"
	"github.com/couchcryptid/collection-climate-etl/internal/domain"
	"github.com/couchcryptid/collection-climate-etl/internal/materials"
	"github.com/couchcryptid/collection-climate-etl/internal/observability"
	"github.com/couchcryptid/collection-climate-etl/internal/pipeline"
	"github.com/couchcryptid/collection-climate-etl/internal/psychro"
	"github.com/couchcryptid/collection-climate-etl/internal/risk"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	if envErr != nil {
		logger.Info("no .env file loaded, using process environment")
	}

	table, err := loadProfiles(cfg)
	if err != nil {
		logger.Error("failed to load material profiles", "error", err, "path", cfg.MaterialProfilesPath)
		os.Exit(1)
	}
	if _, ok := table.Get(cfg.DefaultMaterial); !ok {
		logger.Warn("default material not in profile table, falling back to general", "material", cfg.DefaultMaterial)
	}

	var solver psychro.StateSolver = psychro.NewSolver(psychro.Options{
		Tolerance:     cfg.SolverTolerance,
		MaxIterations: cfg.SolverMaxIterations,
	})
	if cfg.SolverCacheSize > 0 {
		solver = psychro.NewCachedSolver(solver, cfg.SolverCacheSize, metrics.ObserveCacheLookup)
	}
	logger.Info("solver configured",
		"tolerance", cfg.SolverTolerance,
		"max_iterations", cfg.SolverMaxIterations,
		"cache_size", cfg.SolverCacheSize,
		"profiles", len(table.Keys()),
	)

	assessor := domain.NewAssessor(solver, risk.NewAnalyzer(table), cfg.DefaultMaterial)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger, metrics)
	transformer := pipeline.NewTransformer(assessor, logger, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, httpadapter.API{
		Solver:   solver,
		Assessor: assessor,
		Profiles: table,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// loadProfiles reads MATERIAL_PROFILES_PATH when set, otherwise the embedded
// table.
func loadProfiles(cfg *config.Config) (*materials.Table, error) {
	if cfg.MaterialProfilesPath == "" {
		return materials.Default(), nil
	}
	return materials.LoadFile(cfg.MaterialProfilesPath)
}
