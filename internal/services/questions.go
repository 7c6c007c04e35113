package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/document-qa-api/internal/llm"
	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/BerylCAtieno/document-qa-api/internal/utils"
	"github.com/BerylCAtieno/document-qa-api/internal/vectorindex"
)

// QuestionService answers questions about one ingested document.
type QuestionService interface {
	Ask(ctx context.Context, req *models.QuestionRequest) (*models.Answer, error)
}

type questionService struct {
	index       vectorindex.VectorIndex
	llm         llm.Client
	topK        int
	temperature float64
	logger      *utils.Logger
}

func NewQuestionService(index vectorindex.VectorIndex, client llm.Client, topK int, temperature float64, logger *utils.Logger) QuestionService {
	return &questionService{
		index:       index,
		llm:         client,
		topK:        topK,
		temperature: temperature,
		logger:      logger,
	}
}

// Ask retrieves the document's most relevant chunks and asks the LLM to
// answer from them. When nothing matches, the LLM is not called and the
// answer is NoRelevantAnswer with Found unset.
func (s *questionService) Ask(ctx context.Context, req *models.QuestionRequest) (*models.Answer, error) {
	if req == nil || strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.DocumentID) == "" {
		return nil, utils.NewValidationError("Question and documentId are required.")
	}

	logger := s.logger.With("doc_id", req.DocumentID)

	chunks, err := s.index.SimilaritySearch(ctx, req.Question, s.topK, vectorindex.DocumentFilter(req.DocumentID))
	if err != nil {
		logger.Error("Similarity search failed", "error", err)
		return nil, utils.NewUpstreamError(ProcessingFailedMessage, fmt.Errorf("search: %w", err))
	}

	if len(chunks) == 0 {
		logger.Info("No relevant chunks found")
		return &models.Answer{Text: NoRelevantAnswer}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	answer, err := s.llm.Complete(ctx, answerPrompt(strings.Join(texts, "\n"), req.Question), s.temperature)
	if err != nil {
		logger.Error("Failed to generate answer", "error", err)
		return nil, utils.NewUpstreamError(ProcessingFailedMessage, fmt.Errorf("answer: %w", err))
	}

	logger.Info("Question answered", "chunk_count", len(chunks))

	return &models.Answer{Text: answer, Found: true}, nil
}
