package rag

import (
	"context"

	"github.com/upb/proof-layer/models"
)

// Searcher returns the topK chunks most similar to vec, best first
type Searcher interface {
	Search(ctx context.Context, vec []float64, topK int) ([]models.RetrievedChunk, error)
}

// ChunkCounter reports how many chunks are stored
type ChunkCounter interface {
	CountChunks(ctx context.Context) (int, error)
}

// DocumentCounter is optionally implemented by a ChunkCounter to report
// document totals in debug output.
type DocumentCounter interface {
	CountDocuments(ctx context.Context) (int, error)
}

// Embedder embeds the question text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// TopKLimit is the largest top_k any deployment may serve
const TopKLimit = 20

// Config controls the retrieval policy
type Config struct {
	SimilarityThreshold float64
	MinTopK             int
	MaxTopK             int
	Debug               bool
}

// DefaultConfig returns the default retrieval policy
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.5,
		MinTopK:             1,
		MaxTopK:             TopKLimit,
	}
}

// Citation points at a chunk used in an answer
type Citation struct {
	DocID   string  `json:"doc_id"`
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
	Excerpt string  `json:"excerpt"`
}

// Outcome is the result of answering one question. A refused outcome has an
// empty answer, no citations and a reason.
type Outcome struct {
	TraceID       string     `json:"trace_id"`
	Answer        string     `json:"answer"`
	Citations     []Citation `json:"citations"`
	Refused       bool       `json:"refused"`
	RefusalReason *string    `json:"refusal_reason"`
	LowConfidence bool       `json:"-"`
	Debug         *Debug     `json:"debug,omitempty"`
}

// Debug carries diagnostics returned when debug mode is on
type Debug struct {
	TableCounts      *models.TableCounts `json:"table_counts,omitempty"`
	TableCountsError string              `json:"table_counts_error,omitempty"`
	TopSimilarities  []SimilarityHit     `json:"top_similarities,omitempty"`
}

// SimilarityHit is one entry of the debug similarity list
type SimilarityHit struct {
	Similarity float64 `json:"similarity"`
	TraceID    string  `json:"trace_id"`
}
