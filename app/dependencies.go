package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/upb/proof-layer/config"
	"github.com/upb/proof-layer/internal/chunker"
	"github.com/upb/proof-layer/internal/embedding"
	"github.com/upb/proof-layer/internal/objectstore"
	"github.com/upb/proof-layer/internal/rag"
	"github.com/upb/proof-layer/repositories"
	"github.com/upb/proof-layer/repositories/postgres"
	"github.com/upb/proof-layer/repositories/sqlite"
	"github.com/upb/proof-layer/services/ask"
	"github.com/upb/proof-layer/services/ingest"
	"github.com/upb/proof-layer/services/upload"
)

// Dependencies holds all application dependencies.
// This is the central wiring point shared by the API, the worker and the CLI.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	Store  repositories.Store

	// Pipeline components
	Embedder embedding.Provider
	Chunker  *chunker.Chunker
	Objects  *objectstore.Client
	Engine   *rag.Engine

	// Services
	Ask    *ask.Service
	Upload *upload.Service
	Ingest *ingest.Service
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.Store = store

	if err := deps.initPipeline(ctx, cfg); err != nil {
		_ = store.Close()
		return nil, err
	}

	deps.initServices(cfg)

	logger.Info("all dependencies initialized successfully",
		zap.String("store_backend", cfg.Storage.Backend),
		zap.String("embedding_mode", deps.Embedder.Name()),
		zap.Int("embedding_dimension", deps.Embedder.Dimension()),
		zap.Float64("similarity_threshold", cfg.Retrieval.SimilarityThreshold))
	return deps, nil
}

// OpenStore opens the configured vector store backend
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.Store, error) {
	switch cfg.Storage.Backend {
	case config.StoreBackendSQLite:
		store, err := sqlite.NewStore(ctx, cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.StoreBackendPostgres, "":
		factory, err := postgres.NewRepositoryFactory(cfg, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Database.InitSchema {
			if err := factory.InitSchema(ctx); err != nil {
				_ = factory.Close()
				return nil, err
			}
		}
		return factory, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Storage.Backend)
	}
}

func (d *Dependencies) initPipeline(ctx context.Context, cfg *config.Config) error {
	embedder, err := embedding.New(embedding.Config{
		Mode:       cfg.Embedding.Mode,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Timeout:    cfg.Embedding.Timeout,
		Dimension:  cfg.Embedding.Dimension,
		MaxRetries: cfg.Embedding.MaxRetries,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	d.Embedder = embedder

	c, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return fmt.Errorf("failed to initialize chunker: %w", err)
	}
	d.Chunker = c

	objects, err := objectstore.New(ctx, objectstore.Config{
		Region:     cfg.Storage.Region,
		Endpoint:   cfg.Storage.Endpoint,
		PresignTTL: cfg.Storage.PresignTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}
	d.Objects = objects

	repos := d.Store.Repositories()
	d.Engine = rag.NewEngine(rag.Config{
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
		MinTopK:             cfg.Retrieval.MinTopK,
		MaxTopK:             cfg.Retrieval.MaxTopK,
		Debug:               cfg.Retrieval.Debug,
	}, embedder, repos.Chunks, repos, d.Logger)

	return nil
}

func (d *Dependencies) initServices(cfg *config.Config) {
	d.Ask = ask.NewService(d.Engine, cfg.Retrieval.DefaultTopK, d.Logger)
	d.Ingest = ingest.NewService(d.Objects, d.Store, d.Chunker, d.Embedder, d.Logger)

	if cfg.Storage.Bucket == "" {
		d.Logger.Warn("S3_BUCKET_NAME not set, presigned uploads disabled")
		d.Upload = upload.NewService(nil, "", d.Logger)
		return
	}
	d.Logger.Info("S3 configuration",
		zap.String("region", cfg.Storage.Region),
		zap.String("bucket", cfg.Storage.Bucket))
	d.Upload = upload.NewService(d.Objects, cfg.Storage.Bucket, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %w", errors.Join(errs...))
	}
	return nil
}
