// Package embedding turns text into fixed-length float vectors.
//
// The set of providers is closed: a deterministic hash-based provider for
// tests and local runs, and the OpenAI embeddings API. The variant is chosen
// once, at construction, by New.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/upb/proof-layer/services"
)

// Supported embedding modes
const (
	ModeFake   = "fake"
	ModeOpenAI = "openai"
)

// DefaultDimension is the vector length produced by the default model
const DefaultDimension = 1536

// Provider embeds text into a fixed-length vector.
// Implementations are safe for concurrent use.
type Provider interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Config selects and configures a Provider
type Config struct {
	Mode       string
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	Dimension  int
	MaxRetries int
}

// New returns the provider selected by cfg.Mode
func New(cfg Config) (Provider, error) {
	switch cfg.Mode {
	case ModeFake, "":
		return NewDeterministic(cfg.Dimension), nil
	case ModeOpenAI:
		return NewOpenAI(cfg)
	default:
		return nil, services.WrapConfiguration(
			fmt.Sprintf("unsupported embedding mode %q (use %q or %q)", cfg.Mode, ModeFake, ModeOpenAI),
			services.ErrInvalidEmbedMode,
		)
	}
}

// EmbedAll embeds each text in order. It stops at the first failure.
// progress, when non-nil, is called after every embedded text.
func EmbedAll(ctx context.Context, p Provider, texts []string, progress func(done, total int)) ([][]float64, error) {
	vectors := make([][]float64, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := p.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		if len(vec) != p.Dimension() {
			return nil, services.NewDomainError(services.ErrorTypeValidation, "embedding dimension mismatch", services.ErrDimensionMismatch).
				WithDetail("chunk_index", i).
				WithDetail("expected", p.Dimension()).
				WithDetail("actual", len(vec))
		}
		vectors = append(vectors, vec)
		if progress != nil {
			progress(i+1, len(texts))
		}
	}
	return vectors, nil
}
