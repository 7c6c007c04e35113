// Package llm wraps the text-completion and embedding providers.
package llm

import (
	"context"
	"fmt"

	"github.com/BerylCAtieno/document-qa-api/internal/config"
	"github.com/BerylCAtieno/document-qa-api/internal/utils"
)

// Client completes a single prompt.
type Client interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Embedder turns text into vectors. The same instance must be used for
// indexing and querying so both sides share one embedding space.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	ModelName() string
	Dimension() int
}

// Provider bundles the client and embedder of one vendor.
type Provider struct {
	Client   Client
	Embedder Embedder
	close    func() error
}

func (p *Provider) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

func NewProvider(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*Provider, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		opts := OpenAIOptions{APIKey: cfg.LLMAPIKey, BaseURL: cfg.LLMBaseURL}
		return &Provider{
			Client:   NewOpenAIClient(opts, cfg.LLMModel, logger),
			Embedder: NewOpenAIEmbedder(opts, cfg.EmbeddingModel, cfg.EmbeddingDimension),
		}, nil
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.LLMAPIKey, cfg.LLMModel, logger)
		if err != nil {
			return nil, err
		}
		return &Provider{
			Client:   client,
			Embedder: client.Embedder(cfg.EmbeddingModel, cfg.EmbeddingDimension),
			close:    client.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
