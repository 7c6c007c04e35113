package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/document-qa-api/internal/utils"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// maxEmbeddingBatch is the largest input array the embeddings API accepts.
const maxEmbeddingBatch = 100

// OpenAIOptions configures any OpenAI-compatible endpoint. A BaseURL such as
// https://openrouter.ai/api/v1 routes requests through OpenRouter.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string
}

func (o OpenAIOptions) client() openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(o.APIKey),
		// Failures surface to the caller; nothing is retried.
		option.WithMaxRetries(0),
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	return openai.NewClient(opts...)
}

type OpenAIClient struct {
	client openai.Client
	model  string
	logger *utils.Logger
}

func NewOpenAIClient(opts OpenAIOptions, model string, logger *utils.Logger) *OpenAIClient {
	return &OpenAIClient{
		client: opts.client(),
		model:  model,
		logger: logger,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		c.logger.Error("Chat completion failed", "model", c.model, "status", apiStatus(err), "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	c.logger.Debug("Chat completion finished",
		"model", c.model,
		"total_tokens", completion.Usage.TotalTokens)

	return completion.Choices[0].Message.Content, nil
}

type OpenAIEmbedder struct {
	client    openai.Client
	model     string
	dimension int
}

func NewOpenAIEmbedder(opts OpenAIOptions, model string, dimension int) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:    opts.client(),
		model:     model,
		dimension: dimension,
	}
}

func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxEmbeddingBatch {
		batch := texts[start:min(start+maxEmbeddingBatch, len(texts))]
		embedded, err := e.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, embedded...)
	}

	return vectors, nil
}

func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	}
	// ada-002 rejects the dimensions parameter
	if e.dimension > 0 && !strings.HasSuffix(e.model, "ada-002") {
		params.Dimensions = openai.Int(int64(e.dimension))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || int(data.Index) >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		vector := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vector[i] = float32(v)
		}
		vectors[data.Index] = vector
	}

	return vectors, nil
}

func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

func apiStatus(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

var (
	_ Client   = (*OpenAIClient)(nil)
	_ Embedder = (*OpenAIEmbedder)(nil)
)
