package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/proof-layer/models"
)

// DocumentRepository implements repositories.DocumentRepository
type DocumentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

// Insert stores a document. A nil ID or zero CreatedAt is filled in.
func (r *DocumentRepository) Insert(ctx context.Context, doc *models.Document) (uuid.UUID, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO documents (id, trace_id, source_bucket, source_key, filename, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id uuid.UUID
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query,
		doc.ID,
		doc.TraceID,
		doc.SourceBucket,
		doc.SourceKey,
		doc.Filename,
		doc.CreatedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert document: %w", err)
	}

	r.logger.Debug("document inserted", zap.String("id", id.String()), zap.String("trace_id", doc.TraceID))
	return id, nil
}

// GetByTraceID returns the documents ingested under traceID, oldest first
func (r *DocumentRepository) GetByTraceID(ctx context.Context, traceID string) ([]*models.Document, error) {
	query := `
		SELECT id, trace_id, COALESCE(source_bucket, ''), source_key, COALESCE(filename, ''), created_at
		FROM documents
		WHERE trace_id = $1
		ORDER BY created_at ASC
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, traceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		if err := rows.Scan(&doc.ID, &doc.TraceID, &doc.SourceBucket, &doc.SourceKey, &doc.Filename, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// CountDocuments returns the number of stored documents
func (r *DocumentRepository) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := GetExecutor(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}
