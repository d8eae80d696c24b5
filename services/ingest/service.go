// Package ingest turns uploaded objects into stored, embedded chunks.
package ingest

import (
	"context"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/proof-layer/internal/chunker"
	"github.com/upb/proof-layer/internal/embedding"
	"github.com/upb/proof-layer/internal/extract"
	"github.com/upb/proof-layer/internal/trace"
	"github.com/upb/proof-layer/models"
	"github.com/upb/proof-layer/repositories"
	"github.com/upb/proof-layer/services"
)

// progressEvery controls how often embedding progress is logged
const progressEvery = 10

// ObjectGetter downloads objects from object storage
type ObjectGetter interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// Result summarises one ingested document
type Result struct {
	TraceID    string    `json:"trace_id"`
	DocumentID uuid.UUID `json:"document_id"`
	Bucket     string    `json:"bucket"`
	Key        string    `json:"key"`
	Filename   string    `json:"filename"`
	Chunks     int       `json:"chunks"`
	Duration   string    `json:"duration"`
}

// Service runs the ingestion pipeline: download, extract, chunk, embed, store
type Service struct {
	objects  ObjectGetter
	repos    *repositories.Repositories
	txMgr    repositories.TransactionManager
	chunker  *chunker.Chunker
	embedder embedding.Provider
	logger   *zap.Logger
	newID    func() string
}

// NewService creates an ingestion service. objects may be nil when only
// IngestData is used.
func NewService(
	objects ObjectGetter,
	store repositories.Store,
	c *chunker.Chunker,
	embedder embedding.Provider,
	logger *zap.Logger,
) *Service {
	return &Service{
		objects:  objects,
		repos:    store.Repositories(),
		txMgr:    store.TransactionManager(),
		chunker:  c,
		embedder: embedder,
		logger:   logger,
		newID:    trace.NewID,
	}
}

// Ingest downloads bucket/key and ingests it
func (s *Service) Ingest(ctx context.Context, bucket, key string) (*Result, error) {
	traceID := s.resolveTraceID(key)
	logger := s.logger.With(zap.String("trace_id", traceID))
	logger.Info("ingest_started", zap.String("bucket", bucket), zap.String("key", key))

	if s.objects == nil {
		err := services.WrapConfiguration("object storage is not configured", services.ErrStorageNotConfigured)
		logger.Error("ingest_failed", zap.Error(err))
		return nil, err
	}

	data, err := s.objects.Get(ctx, bucket, key)
	if err != nil {
		logger.Error("ingest_failed", zap.Error(err))
		return nil, err
	}

	return s.process(ctx, logger, traceID, bucket, key, data)
}

// IngestData ingests content that is already in memory, such as a local file
func (s *Service) IngestData(ctx context.Context, bucket, key string, data []byte) (*Result, error) {
	traceID := s.resolveTraceID(key)
	logger := s.logger.With(zap.String("trace_id", traceID))
	logger.Info("ingest_started", zap.String("bucket", bucket), zap.String("key", key))

	return s.process(ctx, logger, traceID, bucket, key, data)
}

// Documents returns the documents stored under traceID
func (s *Service) Documents(ctx context.Context, traceID string) ([]*models.Document, error) {
	docs, err := s.repos.Documents.GetByTraceID(ctx, traceID)
	if err != nil {
		return nil, services.WrapInternal("failed to look up documents", err)
	}
	if len(docs) == 0 {
		return nil, services.NewDomainError(services.ErrorTypeNotFound,
			"no documents for trace_id "+traceID, services.ErrDocumentNotFound)
	}
	return docs, nil
}

func (s *Service) resolveTraceID(key string) string {
	if id, ok := trace.ExtractFromKey(key); ok {
		return id
	}
	id := s.newID()
	s.logger.Warn("trace_id_not_in_key", zap.String("trace_id", id), zap.String("key", key))
	return id
}

func (s *Service) process(ctx context.Context, logger *zap.Logger, traceID, bucket, key string, data []byte) (res *Result, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			logger.Error("ingest_failed", zap.Error(err))
		}
	}()

	logger.Info("document_downloaded", zap.Int("size_bytes", len(data)))

	text, err := extract.Text(key, data)
	if err != nil {
		return nil, err
	}

	chunks := s.chunker.Chunk(text)
	logger.Info("text_chunked", zap.Int("chunk_count", len(chunks)))

	vectors, err := embedding.EmbedAll(ctx, s.embedder, chunks, func(done, total int) {
		if done%progressEvery == 0 {
			logger.Info("embeddings_progress", zap.Int("processed", done), zap.Int("total", total))
		}
	})
	if err != nil {
		return nil, err
	}
	logger.Info("embeddings_generated", zap.Int("count", len(vectors)))

	filename := path.Base(key)
	docID, err := services.WithTransactionResult(ctx, s.txMgr,
		func(ctx context.Context, tx repositories.Transaction) (uuid.UUID, error) {
			id, err := s.repos.Documents.Insert(ctx, models.NewDocument(traceID, bucket, key, filename))
			if err != nil {
				return uuid.Nil, err
			}
			logger.Info("document_inserted", zap.String("doc_id", id.String()))

			if err := s.repos.Chunks.InsertChunks(ctx, id, traceID, chunks, vectors); err != nil {
				return uuid.Nil, err
			}
			return id, nil
		})
	if err != nil {
		return nil, err
	}
	logger.Info("chunks_inserted", zap.Int("count", len(chunks)))

	elapsed := time.Since(start)
	logger.Info("ingest_completed", zap.Duration("duration", elapsed))

	return &Result{
		TraceID:    traceID,
		DocumentID: docID,
		Bucket:     bucket,
		Key:        key,
		Filename:   filename,
		Chunks:     len(chunks),
		Duration:   elapsed.String(),
	}, nil
}
