// Package ask answers questions against the knowledge base.
package ask

import (
	"context"

	"go.uber.org/zap"

	"github.com/upb/proof-layer/internal/rag"
)

// Answerer is implemented by rag.Engine
type Answerer interface {
	Answer(ctx context.Context, question string, topK int) (*rag.Outcome, error)
}

// Request is the body of POST /ask
type Request struct {
	Question string `json:"question" validate:"required"`
	TopK     *int   `json:"top_k,omitempty" validate:"omitempty,min=1"`
}

// Service wraps the retrieval engine with request defaults and query logging
type Service struct {
	engine      Answerer
	defaultTopK int
	logger      *zap.Logger
}

// NewService creates an ask service
func NewService(engine Answerer, defaultTopK int, logger *zap.Logger) *Service {
	if defaultTopK <= 0 {
		defaultTopK = 10
	}
	return &Service{engine: engine, defaultTopK: defaultTopK, logger: logger}
}

// Ask answers req.Question. A nil TopK uses the configured default.
func (s *Service) Ask(ctx context.Context, req Request) (*rag.Outcome, error) {
	topK := s.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	out, err := s.engine.Answer(ctx, req.Question, topK)
	if err != nil {
		s.logger.Error("ask_failed", zap.Error(err), zap.Int("top_k", topK))
		return nil, err
	}

	s.logger.Info("ask_query",
		zap.String("trace_id", out.TraceID),
		zap.String("question", req.Question),
		zap.Bool("refused", out.Refused),
		zap.Int("citations_count", len(out.Citations)))

	return out, nil
}
