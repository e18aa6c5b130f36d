package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/web-core/config"
	"github.com/upb/web-core/internal/masking"
	"github.com/upb/web-core/internal/observability"
	"github.com/upb/web-core/middleware"
	"github.com/upb/web-core/models"
	"github.com/upb/web-core/repositories/postgres"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB // nil when no datasource is configured
	Logger *zap.Logger  // masks sensitive fields on every entry

	// Observability
	Masker        *masking.Masker
	ContextLogger *observability.ContextLogger
	Metrics       observability.Metrics
	TrafficLogger *middleware.TrafficLogger

	// Demo data served by the user API
	Users []models.User
}

// NewDependencies creates and wires up all application dependencies.
// The given logger is wrapped so that sensitive fields are masked.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Users:  models.SampleUsers(),
	}

	deps.initObservability(cfg, logger)

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.Logger.Info("all dependencies initialized successfully",
		zap.Strings("mask_fields", deps.Masker.Fields().Names()),
		zap.Bool("traffic_log_enabled", cfg.TrafficLog.Enabled),
		zap.Bool("metrics_enabled", cfg.Observability.MetricsEnabled))
	return deps, nil
}

// NewMasker builds the masker for the configured field names, falling back
// to the default sensitive fields when none are configured
func NewMasker(cfg config.ObservabilityConfig) *masking.Masker {
	fields := masking.NewFieldSet(cfg.MaskFields...)
	if fields.Len() == 0 {
		fields = masking.DefaultFieldSet()
	}
	return masking.New(fields)
}

// initObservability sets up masking, the context logger, metrics and the traffic logger
func (d *Dependencies) initObservability(cfg *config.Config, logger *zap.Logger) {
	d.Masker = NewMasker(cfg.Observability)
	d.Logger = logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return observability.NewMaskingCore(core, d.Masker)
	}))
	d.ContextLogger = observability.NewContextLogger(d.Logger, d.Masker)
	d.Metrics = observability.NewMetrics(cfg.Observability.MetricsEnabled)
	d.TrafficLogger = middleware.NewTrafficLogger(d.ContextLogger, d.Masker, d.Metrics, cfg.TrafficLog)
}

// initDatabase opens the PostgreSQL pool when a datasource is configured
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if cfg.Database == nil {
		d.Logger.Info("no datasource configured, database disabled")
		return nil
	}

	db, err := postgres.NewDB(ctx, *cfg.Database, d.Logger)
	if err != nil {
		return err
	}
	d.DB = db
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	if d.Logger != nil {
		d.Logger.Info("shutting down dependencies")
	}

	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %w", errors.Join(errs...))
	}

	return nil
}
