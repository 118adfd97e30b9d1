// Package container provides dependency injection for the paycycle application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"fjacquet/paycycle/internal/advisor"
	"fjacquet/paycycle/internal/api"
	"fjacquet/paycycle/internal/bnpl"
	"fjacquet/paycycle/internal/config"
	"fjacquet/paycycle/internal/extractor"
	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/scheduler"
	"fjacquet/paycycle/internal/snapshot"
	"fjacquet/paycycle/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	store      store.Repository
	reconciler *bnpl.Reconciler
	builder    *snapshot.Builder
	renderer   *snapshot.Renderer
	extractor  *extractor.CSVExtractor
	advisor    advisor.Advisor
	scheduler  *scheduler.Scheduler
}

// NewContainer creates and wires all application dependencies, opening the
// configured store.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := config.ConfigureLoggingFromConfig(cfg)

	repo, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	c, err := build(ctx, cfg, repo, logger)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithRepository wires the application around an existing
// repository. The container takes ownership of repo and closes it in Close.
func NewContainerWithRepository(ctx context.Context, cfg *config.Config, repo store.Repository, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository cannot be nil")
	}
	if logger == nil {
		logger = config.ConfigureLoggingFromConfig(cfg)
	}
	return build(ctx, cfg, repo, logger)
}

func build(ctx context.Context, cfg *config.Config, repo store.Repository, logger logging.Logger) (*Container, error) {
	reconciler := bnpl.NewReconciler(repo, logger)
	builder := snapshot.NewBuilder(repo, cfg.MinimumPaymentPolicy(), cfg.AnomalyPolicy(), cfg.Forecast.Currency, logger)

	var adv advisor.Advisor = advisor.Disabled{}
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		gemini, err := advisor.NewGeminiAdvisor(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AITimeout(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create advisor: %w", err)
		}
		adv = gemini
		logger.Info("AI advisor enabled", logging.F("model", cfg.AI.Model))
	} else {
		logger.Debug("AI advisor disabled")
	}

	sched, err := scheduler.New(cfg.Reconcile.Schedule, reconciler, nil, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("Container initialized",
		logging.F(logging.FieldDriver, cfg.Store.Driver),
		logging.F("ai_enabled", cfg.AI.Enabled))

	return &Container{
		logger:     logger,
		config:     cfg,
		store:      repo,
		reconciler: reconciler,
		builder:    builder,
		renderer:   snapshot.NewRenderer(logger),
		extractor:  extractor.NewCSVExtractor(cfg.CSVDelimiter(), logger),
		advisor:    adv,
		scheduler:  sched,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the repository.
func (c *Container) GetStore() store.Repository {
	return c.store
}

// GetReconciler returns the BNPL reconciler.
func (c *Container) GetReconciler() *bnpl.Reconciler {
	return c.reconciler
}

// GetSnapshotBuilder returns the snapshot builder.
func (c *Container) GetSnapshotBuilder() *snapshot.Builder {
	return c.builder
}

// GetRenderer returns the snapshot renderer.
func (c *Container) GetRenderer() *snapshot.Renderer {
	return c.renderer
}

// GetExtractor returns the transaction CSV extractor.
func (c *Container) GetExtractor() *extractor.CSVExtractor {
	return c.extractor
}

// GetAdvisor returns the advisory collaborator. It is advisor.Disabled when
// AI is not enabled.
func (c *Container) GetAdvisor() advisor.Advisor {
	return c.advisor
}

// GetScheduler returns the reconciliation scheduler. It is not started.
func (c *Container) GetScheduler() *scheduler.Scheduler {
	return c.scheduler
}

// HTTPHandler returns the API router.
func (c *Container) HTTPHandler() http.Handler {
	h := api.NewHandler(c.builder, c.reconciler, nil, c.logger).WithScheduler(c.scheduler)
	return api.NewRouter(h)
}

// Close releases the advisor client and the store.
func (c *Container) Close() error {
	if closer, ok := c.advisor.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close advisor")
		}
	}
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	c.logger.Debug("Container closed")
	return nil
}
