package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/upb/proof-layer/internal/trace"
	"github.com/upb/proof-layer/models"
	"github.com/upb/proof-layer/services"
)

// Engine applies the confidence-tiered retrieval policy.
// It holds no per-query state and is safe for concurrent use.
type Engine struct {
	cfg      Config
	embedder Embedder
	searcher Searcher
	counter  ChunkCounter
	logger   *zap.Logger
	newID    func() string
}

// NewEngine creates an Engine. Zero top_k bounds fall back to DefaultConfig
// and MaxTopK is capped at TopKLimit.
func NewEngine(cfg Config, embedder Embedder, searcher Searcher, counter ChunkCounter, logger *zap.Logger) *Engine {
	def := DefaultConfig()
	if cfg.MinTopK <= 0 {
		cfg.MinTopK = def.MinTopK
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = def.MaxTopK
	}
	if cfg.MaxTopK > TopKLimit {
		cfg.MaxTopK = TopKLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:      cfg,
		embedder: embedder,
		searcher: searcher,
		counter:  counter,
		logger:   logger,
		newID:    trace.NewID,
	}
}

// Config returns the engine's policy
func (e *Engine) Config() Config { return e.cfg }

// Answer embeds question, retrieves up to topK chunks and returns either an
// answer with citations or a refusal.
func (e *Engine) Answer(ctx context.Context, question string, topK int) (*Outcome, error) {
	if strings.TrimSpace(question) == "" {
		return nil, services.WrapValidation("question cannot be empty", services.ErrEmptyQuestion)
	}
	if topK < e.cfg.MinTopK || topK > e.cfg.MaxTopK {
		return nil, services.NewDomainError(services.ErrorTypeValidation,
			fmt.Sprintf("top_k must be between %d and %d, got %d", e.cfg.MinTopK, e.cfg.MaxTopK, topK),
			services.ErrTopKOutOfRange)
	}

	traceID := e.newID()
	logger := e.logger.With(zap.String("trace_id", traceID))
	threshold := e.cfg.SimilarityThreshold
	floor := LowConfidenceFloor(threshold)

	vec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, asProvider("embed question", services.ErrEmbeddingFailed, err)
	}

	var debug *Debug
	if e.cfg.Debug {
		logger.Info("rag_query", zap.Int("dimension", len(vec)), zap.Float64("threshold", threshold))
		debug = e.debugCounts(ctx, logger)
	}

	all, err := e.searcher.Search(ctx, vec, topK)
	if err != nil {
		return nil, asProvider("similarity search", services.ErrSearchFailed, err)
	}
	filtered := AboveThreshold(all, threshold)

	best := 0.0
	if len(all) > 0 {
		best = all[0].Similarity
	}
	decision := Decide(all, threshold)

	logger.Info("rag_retrieval",
		zap.Int("top_k", topK),
		zap.Float64("similarity_threshold", threshold),
		zap.Float64("best_similarity", best),
		zap.Float64("fallback_floor", floor),
		zap.Int("returned_chunks", len(filtered)),
		zap.String("decision", decision.String()),
	)

	if debug != nil {
		n := min(debugTopSimilarities, len(all))
		for _, c := range all[:n] {
			debug.TopSimilarities = append(debug.TopSimilarities, SimilarityHit{Similarity: c.Similarity, TraceID: c.TraceID})
		}
	}

	out := &Outcome{TraceID: traceID, Citations: []Citation{}, Debug: debug}

	switch decision {
	case DecisionAnswer:
		out.Answer, out.Citations = compose(filtered)
	case DecisionLowConfidence:
		out.Answer, out.Citations = compose(all[:min(lowConfidenceChunks, len(all))])
		out.Answer = lowConfidencePrefix(best, threshold) + out.Answer
		out.LowConfidence = true
	default:
		var reason string
		if len(all) == 0 {
			total, err := e.counter.CountChunks(ctx)
			if err != nil {
				return nil, services.WrapInternal("count chunks", err)
			}
			reason = noChunksReason(total)
		} else {
			reason = belowFloorReason(best, floor, threshold)
		}
		out.Refused = true
		out.RefusalReason = &reason
	}

	return out, nil
}

func (e *Engine) debugCounts(ctx context.Context, logger *zap.Logger) *Debug {
	debug := &Debug{}
	chunks, err := e.counter.CountChunks(ctx)
	if err != nil {
		logger.Warn("table counts unavailable", zap.Error(err))
		debug.TableCountsError = err.Error()
		return debug
	}
	counts := models.TableCounts{Chunks: chunks}
	if dc, ok := e.counter.(DocumentCounter); ok {
		docs, err := dc.CountDocuments(ctx)
		if err != nil {
			logger.Warn("table counts unavailable", zap.Error(err))
			debug.TableCountsError = err.Error()
			return debug
		}
		counts.Documents = docs
	}
	debug.TableCounts = &counts
	return debug
}

// asProvider keeps the type of domain errors and marks everything else as a
// provider failure tagged with sentinel.
func asProvider(op string, sentinel, err error) error {
	if services.GetErrorType(err) != "" {
		return fmt.Errorf("%s: %w", op, err)
	}
	return services.WrapProvider(op, fmt.Errorf("%w: %w", sentinel, err))
}
