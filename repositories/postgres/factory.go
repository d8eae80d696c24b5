package postgres

import (
	"context"

	"go.uber.org/zap"

	"github.com/upb/proof-layer/config"
	"github.com/upb/proof-layer/repositories"
)

// RepositoryFactory owns the pool and hands out repositories bound to it.
// It implements repositories.Store.
type RepositoryFactory struct {
	db     *DB
	dim    int
	repos  *repositories.Repositories
	txMgr  *TransactionManager
	logger *zap.Logger
}

// NewRepositoryFactory connects to Postgres and creates the repositories
func NewRepositoryFactory(cfg *config.Config, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return NewRepositoryFactoryFromDB(db, cfg.Embedding.Dimension, logger), nil
}

// NewRepositoryFactoryFromDB builds the factory on an existing pool
func NewRepositoryFactoryFromDB(db *DB, dim int, logger *zap.Logger) *RepositoryFactory {
	return &RepositoryFactory{
		db:  db,
		dim: dim,
		repos: &repositories.Repositories{
			Documents: NewDocumentRepository(db, logger),
			Chunks:    NewChunkRepository(db, logger),
		},
		txMgr:  NewTransactionManager(db, logger),
		logger: logger,
	}
}

// Repositories returns the repository set
func (f *RepositoryFactory) Repositories() *repositories.Repositories {
	return f.repos
}

// TransactionManager returns the transaction manager
func (f *RepositoryFactory) TransactionManager() repositories.TransactionManager {
	return f.txMgr
}

// HealthCheck pings the database
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	return f.db.HealthCheck(ctx)
}

// InitSchema creates the tables sized for the configured embedding dimension
func (f *RepositoryFactory) InitSchema(ctx context.Context) error {
	return f.db.InitSchema(ctx, f.dim)
}

// GetDB returns the database connection
func (f *RepositoryFactory) GetDB() *DB {
	return f.db
}

// Close closes the database connection
func (f *RepositoryFactory) Close() error {
	return f.db.Close()
}
