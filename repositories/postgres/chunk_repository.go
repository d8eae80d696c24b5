package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/proof-layer/models"
	"github.com/upb/proof-layer/services"
)

// insertBatchSize bounds the rows per INSERT statement
const insertBatchSize = 100

// ChunkRepository implements repositories.ChunkRepository on pgvector
type ChunkRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewChunkRepository creates a new chunk repository
func NewChunkRepository(db *DB, logger *zap.Logger) *ChunkRepository {
	return &ChunkRepository{db: db, logger: logger}
}

// InsertChunks stores the chunks of one document in index order
func (r *ChunkRepository) InsertChunks(ctx context.Context, documentID uuid.UUID, traceID string, texts []string, vectors [][]float64) error {
	if len(texts) != len(vectors) {
		return services.NewDomainError(services.ErrorTypeValidation, "chunks and embeddings must have same length", services.ErrLengthMismatch).
			WithDetail("chunks", len(texts)).
			WithDetail("embeddings", len(vectors))
	}
	if len(texts) == 0 {
		return nil
	}

	chunks := models.NewChunks(documentID, traceID, texts, vectors)
	executor := GetExecutor(ctx, r.db)

	for start := 0; start < len(chunks); start += insertBatchSize {
		batch := chunks[start:min(start+insertBatchSize, len(chunks))]

		var sb strings.Builder
		sb.WriteString("INSERT INTO chunks (id, document_id, trace_id, chunk_index, content, embedding) VALUES ")
		args := make([]interface{}, 0, len(batch)*6)
		for i, c := range batch {
			if i > 0 {
				sb.WriteString(", ")
			}
			n := i * 6
			fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d::vector)", n+1, n+2, n+3, n+4, n+5, n+6)
			args = append(args, c.ID, c.DocumentID, c.TraceID, c.ChunkIndex, c.Content, formatVector(c.Embedding))
		}

		if _, err := executor.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("failed to insert chunks: %w", err)
		}
	}

	r.logger.Debug("chunks inserted",
		zap.String("document_id", documentID.String()),
		zap.Int("count", len(chunks)))
	return nil
}

// Search returns the topK chunks closest to vec by cosine distance
func (r *ChunkRepository) Search(ctx context.Context, vec []float64, topK int) ([]models.RetrievedChunk, error) {
	if topK <= 0 {
		return nil, services.WrapValidation(fmt.Sprintf("top_k must be positive, got %d", topK), services.ErrTopKOutOfRange)
	}
	if len(vec) == 0 {
		return nil, services.WrapValidation("query embedding is empty", services.ErrInvalidInput)
	}

	query := `
		SELECT c.id, c.document_id, c.content, c.trace_id, c.chunk_index,
		       1 - (c.embedding <=> $1::vector) AS similarity
		FROM chunks c
		ORDER BY c.embedding <=> $1::vector
		LIMIT $2
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, formatVector(vec), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	results := make([]models.RetrievedChunk, 0, topK)
	for rows.Next() {
		var c models.RetrievedChunk
		if err := rows.Scan(&c.ChunkID, &c.DocID, &c.Content, &c.TraceID, &c.ChunkIndex, &c.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}

	return results, nil
}

// CountChunks returns the number of stored chunks
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	var n int
	if err := GetExecutor(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}
