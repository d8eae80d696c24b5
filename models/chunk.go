package models

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is one persisted segment of a document together with its embedding
type Chunk struct {
	ID         uuid.UUID `json:"id" db:"id"`
	DocumentID uuid.UUID `json:"document_id" db:"document_id"`
	TraceID    string    `json:"trace_id" db:"trace_id"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Content    string    `json:"content" db:"content"`
	Embedding  []float64 `json:"-" db:"embedding"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Chunk model
func (Chunk) TableName() string {
	return "chunks"
}

// NewChunks pairs chunk texts with their embeddings in order. The caller is
// responsible for checking that both slices have the same length.
func NewChunks(documentID uuid.UUID, traceID string, texts []string, vectors [][]float64) []*Chunk {
	now := time.Now()
	chunks := make([]*Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &Chunk{
			ID:         uuid.New(),
			DocumentID: documentID,
			TraceID:    traceID,
			ChunkIndex: i,
			Content:    text,
			Embedding:  vectors[i],
			CreatedAt:  now,
		}
	}
	return chunks
}

// RetrievedChunk is a search hit returned by the similarity search backend.
// Similarity is cosine similarity in [-1, 1].
type RetrievedChunk struct {
	ChunkID    string  `json:"chunk_id"`
	DocID      string  `json:"doc_id"`
	Content    string  `json:"content"`
	TraceID    string  `json:"trace_id"`
	ChunkIndex int     `json:"chunk_index"`
	Similarity float64 `json:"similarity"`
}

// TableCounts holds row counts of the knowledge base tables
type TableCounts struct {
	Chunks    int `json:"chunks"`
	Documents int `json:"documents"`
}
