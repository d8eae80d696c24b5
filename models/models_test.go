package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Document tests
func TestNewDocument(t *testing.T) {
	doc := NewDocument("trace-1", "bucket", "uploads/2024/01/01/trace-1/a.txt", "a.txt")

	assert.NotEqual(t, uuid.Nil, doc.ID)
	assert.Equal(t, "trace-1", doc.TraceID)
	assert.Equal(t, "bucket", doc.SourceBucket)
	assert.Equal(t, "a.txt", doc.Filename)
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestDocument_TableName(t *testing.T) {
	assert.Equal(t, "documents", Document{}.TableName())
}

func TestDocument_SourceRef(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		key    string
		want   string
	}{
		{"bucket and key", "b", "k/x.txt", "b/k/x.txt"},
		{"key only", "", "k/x.txt", "k/x.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{SourceBucket: tt.bucket, SourceKey: tt.key}
			assert.Equal(t, tt.want, doc.SourceRef())
		})
	}
}

// Chunk tests
func TestNewChunks(t *testing.T) {
	docID := uuid.New()
	texts := []string{"first", "second"}
	vectors := [][]float64{{1, 0}, {0, 1}}

	chunks := NewChunks(docID, "trace-1", texts, vectors)

	require.Len(t, chunks, 2)
	for i, c := range chunks {
		assert.NotEqual(t, uuid.Nil, c.ID)
		assert.Equal(t, docID, c.DocumentID)
		assert.Equal(t, "trace-1", c.TraceID)
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, texts[i], c.Content)
		assert.Equal(t, vectors[i], c.Embedding)
	}
	assert.NotEqual(t, chunks[0].ID, chunks[1].ID)
	assert.Equal(t, chunks[0].CreatedAt, chunks[1].CreatedAt)
}

func TestNewChunks_Empty(t *testing.T) {
	assert.Empty(t, NewChunks(uuid.New(), "t", nil, nil))
}

func TestChunk_TableName(t *testing.T) {
	assert.Equal(t, "chunks", Chunk{}.TableName())
}

func TestChunk_JSONOmitsEmbedding(t *testing.T) {
	c := Chunk{ID: uuid.New(), Content: "text", Embedding: []float64{0.1, 0.2}}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "embedding")
	assert.Equal(t, "text", decoded["content"])
}
