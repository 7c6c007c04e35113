package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/document-qa-api/internal/utils"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client *genai.Client
	model  string
	logger *utils.Logger
}

// NewGeminiClient connects with an API key. Extra options (endpoint, HTTP
// client) are appended after it.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger *utils.Logger, opts ...option.ClientOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	model := c.client.GenerativeModel(c.model)

	temp := float32(temperature)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: &temp,
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.logger.Error("Gemini generation failed", "model", c.model, "error", err)
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}

	return b.String(), nil
}

// Embedder returns an embedder that shares this client's connection.
func (c *GeminiClient) Embedder(model string, dimension int) *GeminiEmbedder {
	return &GeminiEmbedder{
		model:     c.client.EmbeddingModel(model),
		name:      model,
		dimension: dimension,
	}
}

type GeminiEmbedder struct {
	model     *genai.EmbeddingModel
	name      string
	dimension int
}

func (e *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxEmbeddingBatch {
		batch := e.model.NewBatch()
		for _, text := range texts[start:min(start+maxEmbeddingBatch, len(texts))] {
			batch.AddContent(genai.Text(text))
		}

		res, err := e.model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("gemini batch embedding request failed: %w", err)
		}
		for _, emb := range res.Embeddings {
			vectors = append(vectors, emb.Values)
		}
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}

	return vectors, nil
}

func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	res, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}

	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding data received from gemini")
	}
	return res.Embedding.Values, nil
}

func (e *GeminiEmbedder) ModelName() string {
	return e.name
}

func (e *GeminiEmbedder) Dimension() int {
	return e.dimension
}

var (
	_ Client   = (*GeminiClient)(nil)
	_ Embedder = (*GeminiEmbedder)(nil)
)
