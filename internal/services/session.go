package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/BerylCAtieno/document-qa-api/internal/repository"
	"github.com/BerylCAtieno/document-qa-api/internal/storage"
	"github.com/BerylCAtieno/document-qa-api/internal/utils"
)

// SessionService holds the single user's working set: the documents
// uploaded since start, the current selection and a transcript per document.
// Documents live in memory; transcripts go through the history repository.
type SessionService interface {
	Upload(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error)
	Documents() ([]models.Document, string)
	Select(ctx context.Context, documentID string) (*models.DocumentView, error)
	History(ctx context.Context, documentID string) ([]models.ChatMessage, error)
	SendMessage(ctx context.Context, documentID, content string) (*models.ChatMessage, error)
	ClearHistory(ctx context.Context, documentID string) error
	OriginalFile(ctx context.Context, documentID string) (*models.Document, []byte, string, error)
}

type sessionService struct {
	ingestion IngestionService
	questions QuestionService
	history   repository.HistoryRepository
	archive   storage.Storage
	logger    *utils.Logger
	now       func() time.Time

	mu        sync.RWMutex
	documents []models.Document
	current   string

	// serializes transcript read-modify-write
	historyMu sync.Mutex
}

func NewSessionService(
	ingestion IngestionService,
	questions QuestionService,
	history repository.HistoryRepository,
	archive storage.Storage,
	logger *utils.Logger,
) SessionService {
	return &sessionService{
		ingestion: ingestion,
		questions: questions,
		history:   history,
		archive:   archive,
		logger:    logger,
		now:       time.Now,
	}
}

// Upload ingests the file, records the document and selects it.
func (s *sessionService) Upload(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error) {
	result, err := s.ingestion.Ingest(ctx, req)
	if err != nil {
		return nil, err
	}

	doc := models.Document{
		ID:          result.DocumentID,
		Filename:    req.Filename,
		FileSize:    int64(len(req.File)),
		ContentType: req.ContentType,
		PageCount:   result.PageCount,
		Summary:     result.Summary,
		ArchiveKey:  result.ArchiveKey,
		UploadedAt:  s.now(),
	}

	s.mu.Lock()
	s.documents = append(s.documents, doc)
	s.current = doc.ID
	s.mu.Unlock()

	return &models.UploadResponse{
		Summary:    result.Summary,
		DocumentID: result.DocumentID,
		PageCount:  result.PageCount,
	}, nil
}

// Documents returns the session documents in upload order and the id of
// the selected one.
func (s *sessionService) Documents() ([]models.Document, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]models.Document, len(s.documents))
	copy(docs, s.documents)
	return docs, s.current
}

func (s *sessionService) Select(ctx context.Context, documentID string) (*models.DocumentView, error) {
	doc, ok := s.lookup(documentID)
	if !ok {
		return nil, utils.NewNotFoundError("Document not found")
	}

	messages, err := s.History(ctx, documentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = doc.ID
	s.mu.Unlock()

	return &models.DocumentView{
		Document: doc,
		Summary:  doc.Summary,
		Messages: messages,
	}, nil
}

func (s *sessionService) History(ctx context.Context, documentID string) ([]models.ChatMessage, error) {
	messages, err := s.history.Get(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to load chat history", "doc_id", documentID, "error", err)
		return nil, utils.NewUpstreamError("Failed to load chat history", err)
	}
	return messages, nil
}

// SendMessage records the user's question, asks it and records the reply.
// A failed question still leaves an assistant turn carrying the failure text
// and the error is returned alongside it.
func (s *sessionService) SendMessage(ctx context.Context, documentID, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, utils.NewValidationError("Message content is required")
	}
	if _, ok := s.lookup(documentID); !ok {
		return nil, utils.NewNotFoundError("Document not found")
	}

	if err := s.appendMessage(ctx, documentID, s.newMessage(documentID, models.RoleUser, content)); err != nil {
		return nil, err
	}

	answer, askErr := s.questions.Ask(ctx, &models.QuestionRequest{Question: content, DocumentID: documentID})

	reply := s.newMessage(documentID, models.RoleAssistant, ProcessingFailedMessage)
	if askErr == nil {
		reply.Content = answer.Text
	}

	if err := s.appendMessage(ctx, documentID, reply); err != nil {
		return nil, errors.Join(askErr, err)
	}

	return &reply, askErr
}

func (s *sessionService) ClearHistory(ctx context.Context, documentID string) error {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	if err := s.history.Delete(ctx, documentID); err != nil {
		s.logger.Error("Failed to clear chat history", "doc_id", documentID, "error", err)
		return utils.NewUpstreamError("Failed to clear chat history", err)
	}

	s.logger.Info("Chat history cleared", "doc_id", documentID)
	return nil
}

// OriginalFile returns the archived upload of a session document.
func (s *sessionService) OriginalFile(ctx context.Context, documentID string) (*models.Document, []byte, string, error) {
	doc, ok := s.lookup(documentID)
	if !ok || s.archive == nil || doc.ArchiveKey == "" {
		return nil, nil, "", utils.NewNotFoundError("Document file not found")
	}

	data, contentType, err := s.archive.Download(ctx, doc.ArchiveKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, "", utils.NewNotFoundError("Document file not found")
	}
	if err != nil {
		s.logger.Error("Failed to download archived file", "doc_id", documentID, "error", err)
		return nil, nil, "", utils.NewUpstreamError("Failed to retrieve document file", err)
	}
	if contentType == "" {
		contentType = doc.ContentType
	}

	return &doc, data, contentType, nil
}

func (s *sessionService) appendMessage(ctx context.Context, documentID string, msg models.ChatMessage) error {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	messages, err := s.history.Get(ctx, documentID)
	if err == nil {
		err = s.history.Put(ctx, documentID, append(messages, msg))
	}
	if err != nil {
		s.logger.Error("Failed to save chat history", "doc_id", documentID, "error", err)
		return utils.NewUpstreamError("Failed to save chat history", err)
	}
	return nil
}

func (s *sessionService) newMessage(documentID string, role models.Role, content string) models.ChatMessage {
	return models.ChatMessage{
		ID:         utils.GenerateID(),
		Role:       role,
		Content:    content,
		Timestamp:  s.now(),
		DocumentID: documentID,
	}
}

func (s *sessionService) lookup(documentID string) (models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.documents {
		if d.ID == documentID {
			return d, true
		}
	}
	return models.Document{}, false
}
