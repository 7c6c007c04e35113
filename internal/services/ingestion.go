package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/BerylCAtieno/document-qa-api/internal/chunker"
	"github.com/BerylCAtieno/document-qa-api/internal/extractor"
	"github.com/BerylCAtieno/document-qa-api/internal/llm"
	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/BerylCAtieno/document-qa-api/internal/storage"
	"github.com/BerylCAtieno/document-qa-api/internal/utils"
	"github.com/BerylCAtieno/document-qa-api/internal/vectorindex"
)

// IngestionService turns an uploaded file into indexed, tagged chunks and a
// summary.
type IngestionService interface {
	Ingest(ctx context.Context, req *models.UploadRequest) (*models.IngestionResult, error)
}

type IngestionDeps struct {
	Extractor   extractor.Extractor
	Splitter    *chunker.Splitter
	Index       vectorindex.VectorIndex
	LLM         llm.Client
	Archive     storage.Storage // optional
	Temperature float64
	Logger      *utils.Logger
}

type ingestionService struct {
	IngestionDeps
}

func NewIngestionService(deps IngestionDeps) IngestionService {
	return &ingestionService{IngestionDeps: deps}
}

// Ingest extracts pages, splits each page, tags every chunk with a new
// document id, summarizes the first chunk and writes all chunks in one
// batch. Nothing is rolled back when a later step fails.
func (s *ingestionService) Ingest(ctx context.Context, req *models.UploadRequest) (*models.IngestionResult, error) {
	if req == nil || len(req.File) == 0 {
		return nil, utils.NewValidationError("No file provided")
	}

	docID := chunker.NewDocumentID()
	logger := s.Logger.With("doc_id", docID, "filename", req.Filename)

	pages, err := s.Extractor.Extract(req.File, req.ContentType)
	if err != nil {
		logger.Error("Failed to extract text", "content_type", req.ContentType, "error", err)
		return nil, extractionError(req.ContentType, err)
	}
	if len(pages) == 0 {
		return nil, utils.NewNoContentError("No text could be extracted from the document", extractor.ErrNoText)
	}

	chunks := s.Splitter.SplitPages(pages)
	if len(chunks) == 0 {
		logger.Warn("Document produced no chunks", "page_count", len(pages))
		return nil, utils.NewNoContentError("No text could be extracted from the document", extractor.ErrNoText)
	}

	tagged := chunker.Tag(chunks, docID)

	summary, err := s.LLM.Complete(ctx, summaryPrompt(tagged[0].Text), s.Temperature)
	if err != nil {
		logger.Error("Failed to summarize document", "error", err)
		return nil, utils.NewUpstreamError(UploadFailedMessage, fmt.Errorf("summarize: %w", err))
	}

	var archiveKey string
	if s.Archive != nil {
		archiveKey = storage.DocumentKey(docID, req.Filename)
		if err := s.Archive.Upload(ctx, archiveKey, req.File, req.ContentType); err != nil {
			logger.Error("Failed to archive upload", "key", archiveKey, "error", err)
			return nil, utils.NewUpstreamError(UploadFailedMessage, err)
		}
	}

	if err := s.Index.AddChunks(ctx, tagged); err != nil {
		logger.Error("Failed to index chunks", "chunk_count", len(tagged), "error", err)
		return nil, utils.NewUpstreamError(UploadFailedMessage, fmt.Errorf("index: %w", err))
	}

	logger.Info("Document ingested",
		"page_count", len(pages),
		"chunk_count", len(tagged),
		"summary_length", len(summary))

	return &models.IngestionResult{
		Summary:    summary,
		DocumentID: docID,
		PageCount:  len(pages),
		ArchiveKey: archiveKey,
	}, nil
}

func extractionError(contentType string, err error) error {
	switch {
	case errors.Is(err, extractor.ErrUnsupportedType):
		return utils.NewValidationError(fmt.Sprintf("Unsupported file type '%s'", contentType))
	case errors.Is(err, extractor.ErrNoText):
		return utils.NewNoContentError("No text could be extracted from the document", err)
	default:
		return utils.NewUpstreamError(UploadFailedMessage, fmt.Errorf("extract: %w", err))
	}
}
