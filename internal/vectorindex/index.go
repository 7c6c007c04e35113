// Package vectorindex stores chunk embeddings and answers filtered
// similarity queries.
package vectorindex

import (
	"context"
	"fmt"

	"github.com/BerylCAtieno/document-qa-api/internal/llm"
	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/BerylCAtieno/document-qa-api/internal/utils"
)

// Filter restricts a query to records whose metadata holds every key with
// the given value.
type Filter map[string]string

func DocumentFilter(documentID string) Filter {
	return Filter{models.MetaDocumentID: documentID}
}

// Record is one stored chunk.
type Record struct {
	ID       string
	Text     string
	Vector   []float32
	Metadata map[string]any
	Score    float64
}

// Store is a vector database backend.
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, k int, filter Filter) ([]Record, error)
}

// VectorIndex is what the orchestrators depend on.
type VectorIndex interface {
	AddChunks(ctx context.Context, chunks []models.Chunk) error
	SimilaritySearch(ctx context.Context, query string, k int, filter Filter) ([]models.Chunk, error)
}

// Index embeds with a single Embedder for both writes and queries.
type Index struct {
	embedder llm.Embedder
	store    Store
	logger   *utils.Logger
}

func New(embedder llm.Embedder, store Store, logger *utils.Logger) *Index {
	return &Index{
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// AddChunks embeds every chunk and writes them in one upsert.
func (i *Index) AddChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for n, c := range chunks {
		texts[n] = c.Text
	}

	vectors, err := i.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	records := make([]Record, len(chunks))
	for n, c := range chunks {
		records[n] = Record{
			ID:       utils.GenerateID(),
			Text:     c.Text,
			Vector:   vectors[n],
			Metadata: c.Metadata,
		}
	}

	if err := i.store.Upsert(ctx, records); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}

	i.logger.Info("Indexed chunks",
		"chunk_count", len(records),
		"embedding_model", i.embedder.ModelName())

	return nil
}

// SimilaritySearch returns up to k chunks matching filter, most similar first.
func (i *Index) SimilaritySearch(ctx context.Context, query string, k int, filter Filter) ([]models.Chunk, error) {
	vector, err := i.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	records, err := i.store.Query(ctx, vector, k, filter)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	chunks := make([]models.Chunk, len(records))
	for n, r := range records {
		chunks[n] = models.Chunk{Text: r.Text, Metadata: r.Metadata}
	}

	return chunks, nil
}

var _ VectorIndex = (*Index)(nil)
