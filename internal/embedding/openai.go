package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/upb/proof-layer/services"
)

// DefaultOpenAIModel is used when no model is configured
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAI embeds text with the OpenAI embeddings endpoint
type OpenAI struct {
	client openai.Client
	model  string
	dim    int
}

// NewOpenAI creates an OpenAI provider. A missing API key is a configuration error.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.WrapConfiguration("OPENAI_API_KEY is required when EMBEDDING_MODE=openai", services.ErrMissingCredential)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	dim := cfg.Dimension
	if dim <= 0 {
		dim = DefaultDimension
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
		dim:    dim,
	}, nil
}

func (o *OpenAI) Name() string { return ModeOpenAI }

func (o *OpenAI) Dimension() int { return o.dim }

// Model returns the configured embedding model
func (o *OpenAI) Model() string { return o.model }

// Embed requests one embedding. Remote failures and malformed payloads are provider errors.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = apiErr.Error()
			}
			return nil, services.NewDomainError(services.ErrorTypeProvider,
				fmt.Sprintf("OpenAI API error (%d): %s", apiErr.StatusCode, msg), services.ErrEmbeddingFailed).
				WithDetail("status", apiErr.StatusCode)
		}
		return nil, services.WrapProvider("OpenAI embedding request failed", err)
	}

	if resp == nil || len(resp.Data) == 0 {
		return nil, services.WrapProvider("OpenAI returned no embedding data", services.ErrMalformedEmbedding)
	}
	vec := resp.Data[0].Embedding
	if len(vec) == 0 {
		return nil, services.WrapProvider("OpenAI returned an empty embedding", services.ErrMalformedEmbedding)
	}
	if len(vec) != o.dim {
		return nil, services.NewDomainError(services.ErrorTypeProvider,
			fmt.Sprintf("OpenAI returned %d dimensions, expected %d", len(vec), o.dim), services.ErrMalformedEmbedding)
	}
	return vec, nil
}
