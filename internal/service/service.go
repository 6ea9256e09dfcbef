// Package service assembles the augmentation pipeline from configuration.
package service

import (
	"context"
	"fmt"

	"dataprep/internal/augment"
	"dataprep/internal/catalog"
	"dataprep/internal/domain"
	"dataprep/internal/expand"
	"dataprep/internal/infra"
	"dataprep/internal/pipeline"
	"dataprep/internal/split"
	"dataprep/internal/storage"
)

// Catalog is the lookup surface plus listing, served by both backends.
type Catalog interface {
	domain.Catalog
	DataSources(ctx context.Context) ([]domain.DataSource, error)
}

// Service holds the wired pipeline. Close releases the database pool when
// the postgres catalog is in use.
type Service struct {
	Catalog  Catalog
	Registry *augment.Registry
	Expander *expand.Expander
	Executor *pipeline.Executor

	close func()
}

func New(ctx context.Context, cfg *infra.Config, logger infra.Logger) (*Service, error) {
	cat, closeCatalog, err := NewCatalog(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	sink, err := NewSink(ctx, cfg)
	if err != nil {
		closeCatalog()
		return nil, err
	}

	registry := augment.Default()
	executor := pipeline.NewExecutor(registry, sink, split.NewAssigner(), logger, pipeline.Options{
		Cascade:     pipeline.Cascade(cfg.CascadeMode),
		Concurrency: cfg.WorkerConcurrency,
		Buffer:      cfg.TicketBuffer,
	})

	logger.Info().
		Str("catalog", cfg.CatalogBackend).
		Str("output", cfg.OutputBackend).
		Str("cascade", cfg.CascadeMode).
		Str("expansion", cfg.ExpansionMode).
		Int("workers", cfg.WorkerConcurrency).
		Strs("stages", registry.Refs()).
		Msg("service: pipeline ready")

	return &Service{
		Catalog:  cat,
		Registry: registry,
		Expander: expand.NewExpander(cat, logger, expand.Mode(cfg.ExpansionMode)),
		Executor: executor,
		close:    closeCatalog,
	}, nil
}

func (s *Service) Close() {
	if s.close != nil {
		s.close()
	}
}

// NewCatalog opens the configured catalog backend. The returned func closes
// any underlying connection pool.
func NewCatalog(ctx context.Context, cfg *infra.Config, logger infra.Logger) (Catalog, func(), error) {
	switch cfg.CatalogBackend {
	case infra.CatalogBackendPostgres:
		pg, closePool, err := OpenPostgresCatalog(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return pg, closePool, nil
	default:
		fc, err := catalog.NewFileCatalog(cfg.CatalogPath)
		if err != nil {
			return nil, nil, err
		}
		return fc, func() {}, nil
	}
}

// OpenPostgresCatalog connects to DATABASE_URL and routes every statement
// through the marker-checking SQL runner.
func OpenPostgresCatalog(ctx context.Context, cfg *infra.Config, logger infra.Logger) (*catalog.PostgresCatalog, func(), error) {
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres catalog: %w", err)
	}
	return catalog.NewPostgresCatalog(infra.NewSQLRunner(pool, logger)), pool.Close, nil
}

// NewSink builds the configured output sink.
func NewSink(ctx context.Context, cfg *infra.Config) (storage.Sink, error) {
	switch cfg.OutputBackend {
	case infra.OutputBackendMinIO:
		store, err := storage.NewObjectStore(ctx, storage.ObjectConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Region:    cfg.MinIORegion,
			Bucket:    cfg.MinIOBucket,
			Prefix:    cfg.MinIOPrefix,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("object sink: %w", err)
		}
		return store, nil
	default:
		return storage.NewFileStore(), nil
	}
}
