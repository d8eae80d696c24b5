package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/proof-layer/models"
	"github.com/upb/proof-layer/repositories"
	"github.com/upb/proof-layer/services"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ingest(t *testing.T, s *Store, traceID string, texts []string, vectors [][]float64) {
	t.Helper()
	repos := s.Repositories()
	err := services.WithTransaction(context.Background(), s.TransactionManager(),
		func(ctx context.Context, tx repositories.Transaction) error {
			id, err := repos.Documents.Insert(ctx, models.NewDocument(traceID, "bucket", "uploads/"+traceID, "doc.txt"))
			if err != nil {
				return err
			}
			return repos.Chunks.InsertChunks(ctx, id, traceID, texts, vectors)
		})
	require.NoError(t, err)
}

func TestStore_InsertAndSearch(t *testing.T) {
	s := newTestStore(t)
	ingest(t, s, "trace-a", []string{"north", "east", "diag"}, [][]float64{{0, 1}, {1, 0}, {1, 1}})

	results, err := s.Repositories().Chunks.Search(context.Background(), []float64{1, 0}, 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "east", results[0].Content)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
	assert.Equal(t, "diag", results[1].Content)
	assert.InDelta(t, 0.7071, results[1].Similarity, 1e-4)
	assert.Equal(t, "trace-a", results[0].TraceID)
	assert.Equal(t, 1, results[0].ChunkIndex)
	assert.NotEmpty(t, results[0].DocID)
}

func TestStore_SearchEmpty(t *testing.T) {
	s := newTestStore(t)

	results, err := s.Repositories().Chunks.Search(context.Background(), []float64{1, 0}, 5)

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestStore_SearchErrors(t *testing.T) {
	s := newTestStore(t)
	ingest(t, s, "t", []string{"x"}, [][]float64{{1, 0, 0}})
	chunks := s.Repositories().Chunks

	_, err := chunks.Search(context.Background(), []float64{1, 0}, 3)
	assert.ErrorContains(t, err, "different vector dimensions")

	_, err = chunks.Search(context.Background(), []float64{1, 0, 0}, 0)
	assert.True(t, services.IsValidationError(err))
}

func TestStore_SearchTiesKeepInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ingest(t, s, "t", []string{"first", "second", "third"}, [][]float64{{1, 0}, {2, 0}, {3, 0}})

	results, err := s.Repositories().Chunks.Search(context.Background(), []float64{1, 0}, 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{results[0].Content, results[1].Content, results[2].Content})
}

func TestStore_TransactionRollback(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repositories()

	err := s.TransactionManager().InTransaction(context.Background(),
		func(ctx context.Context, tx repositories.Transaction) error {
			if _, err := repos.Documents.Insert(ctx, models.NewDocument("t", "", "k", "f")); err != nil {
				return err
			}
			return errors.New("embedding failed")
		})
	require.Error(t, err)

	counts, err := repos.TableCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.TableCounts{}, counts)
}

func TestStore_LengthMismatch(t *testing.T) {
	s := newTestStore(t)

	err := s.Repositories().Chunks.InsertChunks(context.Background(), uuid.New(), "t", []string{"a"}, nil)

	assert.ErrorIs(t, err, services.ErrLengthMismatch)
}

func TestStore_DocumentsAndCounts(t *testing.T) {
	s := newTestStore(t)
	ingest(t, s, "trace-1", []string{"a", "b"}, [][]float64{{1}, {1}})
	ingest(t, s, "trace-2", []string{"c"}, [][]float64{{1}})

	docs, err := s.Repositories().Documents.GetByTraceID(context.Background(), "trace-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "bucket/uploads/trace-1", docs[0].SourceRef())
	assert.Equal(t, "doc.txt", docs[0].Filename)

	counts, err := s.Repositories().TableCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.TableCounts{Chunks: 3, Documents: 2}, counts)

	assert.NoError(t, s.HealthCheck(context.Background()))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 2}, []float64{2, 4}), 1e-12)
	assert.InDelta(t, -1.0, cosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-12)
	assert.Equal(t, 0.0, cosineSimilarity([]float64{0, 0}, []float64{1, 0}))
}
