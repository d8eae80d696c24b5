package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/upb/proof-layer/models"
)

// DocumentRepository implements repositories.DocumentRepository
type DocumentRepository struct {
	db *DB
}

// Insert stores a document. A nil ID or zero CreatedAt is filled in.
func (r *DocumentRepository) Insert(ctx context.Context, doc *models.Document) (uuid.UUID, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	_, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO documents (id, trace_id, source_bucket, source_key, filename, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID.String(), doc.TraceID, doc.SourceBucket, doc.SourceKey, doc.Filename, doc.CreatedAt.UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert document: %w", err)
	}
	return doc.ID, nil
}

// GetByTraceID returns the documents ingested under traceID, oldest first
func (r *DocumentRepository) GetByTraceID(ctx context.Context, traceID string) ([]*models.Document, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT id, trace_id, source_bucket, source_key, filename, created_at
		 FROM documents WHERE trace_id = ? ORDER BY created_at ASC, rowid ASC`, traceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var id string
		doc := &models.Document{}
		if err := rows.Scan(&id, &doc.TraceID, &doc.SourceBucket, &doc.SourceKey, &doc.Filename, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if doc.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid document id %q: %w", id, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CountDocuments returns the number of stored documents
func (r *DocumentRepository) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := getExecutor(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}
