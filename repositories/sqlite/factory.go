package sqlite

import (
	"context"

	"go.uber.org/zap"

	"github.com/upb/proof-layer/repositories"
)

// Store implements repositories.Store on a SQLite file
type Store struct {
	db     *DB
	repos  *repositories.Repositories
	txMgr  *TransactionManager
	logger *zap.Logger
}

// NewStore opens the database at path and creates the schema
func NewStore(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	db, err := Open(path, logger)
	if err != nil {
		return nil, err
	}
	s := &Store{
		db: db,
		repos: &repositories.Repositories{
			Documents: &DocumentRepository{db: db},
			Chunks:    &ChunkRepository{db: db},
		},
		txMgr:  &TransactionManager{db: db, logger: logger},
		logger: logger,
	}
	if err := s.InitSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Repositories() *repositories.Repositories {
	return s.repos
}

func (s *Store) TransactionManager() repositories.TransactionManager {
	return s.txMgr
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *Store) InitSchema(ctx context.Context) error {
	return s.db.InitSchema(ctx)
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.db.Path()
}

func (s *Store) Close() error {
	return s.db.Close()
}
