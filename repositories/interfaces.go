package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/upb/proof-layer/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// DocumentRepository handles source document records
type DocumentRepository interface {
	// Insert stores a document and returns its ID
	Insert(ctx context.Context, doc *models.Document) (uuid.UUID, error)

	// GetByTraceID returns the documents ingested under a trace id
	GetByTraceID(ctx context.Context, traceID string) ([]*models.Document, error)

	// CountDocuments returns the number of stored documents
	CountDocuments(ctx context.Context) (int, error)
}

// ChunkRepository handles chunk text and embeddings
type ChunkRepository interface {
	// InsertChunks stores texts[i] with vectors[i] as chunk i of the document.
	// The slices must have the same length.
	InsertChunks(ctx context.Context, documentID uuid.UUID, traceID string, texts []string, vectors [][]float64) error

	// Search returns up to topK chunks ordered by descending cosine similarity to vec
	Search(ctx context.Context, vec []float64, topK int) ([]models.RetrievedChunk, error)

	// CountChunks returns the number of stored chunks
	CountChunks(ctx context.Context) (int, error)
}

// Repositories groups the repositories of one store
type Repositories struct {
	Documents DocumentRepository
	Chunks    ChunkRepository
}

// CountChunks delegates to the chunk repository
func (r *Repositories) CountChunks(ctx context.Context) (int, error) {
	return r.Chunks.CountChunks(ctx)
}

// CountDocuments delegates to the document repository
func (r *Repositories) CountDocuments(ctx context.Context) (int, error) {
	return r.Documents.CountDocuments(ctx)
}

// TableCounts returns the row counts of both tables
func (r *Repositories) TableCounts(ctx context.Context) (models.TableCounts, error) {
	chunks, err := r.CountChunks(ctx)
	if err != nil {
		return models.TableCounts{}, err
	}
	docs, err := r.CountDocuments(ctx)
	if err != nil {
		return models.TableCounts{}, err
	}
	return models.TableCounts{Chunks: chunks, Documents: docs}, nil
}

// Store is a vector store backend
type Store interface {
	Repositories() *Repositories
	TransactionManager() TransactionManager
	HealthCheck(ctx context.Context) error
	InitSchema(ctx context.Context) error
	Close() error
}
