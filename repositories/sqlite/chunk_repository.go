package sqlite

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/upb/proof-layer/models"
	"github.com/upb/proof-layer/services"
)

// ChunkRepository implements repositories.ChunkRepository with a full scan
type ChunkRepository struct {
	db *DB
}

// InsertChunks stores the chunks of one document in index order
func (r *ChunkRepository) InsertChunks(ctx context.Context, documentID uuid.UUID, traceID string, texts []string, vectors [][]float64) error {
	if len(texts) != len(vectors) {
		return services.NewDomainError(services.ErrorTypeValidation, "chunks and embeddings must have same length", services.ErrLengthMismatch).
			WithDetail("chunks", len(texts)).
			WithDetail("embeddings", len(vectors))
	}

	exec := getExecutor(ctx, r.db)
	for _, c := range models.NewChunks(documentID, traceID, texts, vectors) {
		embedding, err := json.Marshal(c.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
		_, err = exec.ExecContext(ctx,
			`INSERT INTO chunks (id, document_id, trace_id, chunk_index, content, embedding, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID.String(), c.DocumentID.String(), c.TraceID, c.ChunkIndex, c.Content, string(embedding), c.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", c.ChunkIndex, err)
		}
	}
	return nil
}

// Search ranks every stored chunk by cosine similarity to vec and returns the
// best topK. Ties keep insertion order.
func (r *ChunkRepository) Search(ctx context.Context, vec []float64, topK int) ([]models.RetrievedChunk, error) {
	if topK <= 0 {
		return nil, services.WrapValidation(fmt.Sprintf("top_k must be positive, got %d", topK), services.ErrTopKOutOfRange)
	}
	if len(vec) == 0 {
		return nil, services.WrapValidation("query embedding is empty", services.ErrInvalidInput)
	}

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT id, document_id, content, trace_id, chunk_index, embedding FROM chunks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var results []models.RetrievedChunk
	for rows.Next() {
		var c models.RetrievedChunk
		var raw string
		if err := rows.Scan(&c.ChunkID, &c.DocID, &c.Content, &c.TraceID, &c.ChunkIndex, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		var embedding []float64
		if err := json.Unmarshal([]byte(raw), &embedding); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embedding for chunk %s: %w", c.ChunkID, err)
		}
		if len(embedding) != len(vec) {
			return nil, fmt.Errorf("different vector dimensions %d and %d", len(embedding), len(vec))
		}
		c.Similarity = cosineSimilarity(vec, embedding)
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}

	slices.SortStableFunc(results, func(a, b models.RetrievedChunk) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
	if len(results) > topK {
		results = results[:topK]
	}
	if results == nil {
		results = []models.RetrievedChunk{}
	}
	return results, nil
}

// CountChunks returns the number of stored chunks
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	var n int
	if err := getExecutor(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// cosineSimilarity returns 0 when either vector has zero norm
func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
