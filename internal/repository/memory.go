package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
)

type memoryHistoryRepository struct {
	mu        sync.RWMutex
	histories map[string][]models.ChatMessage
}

// NewMemoryHistoryRepository keeps transcripts in process only.
func NewMemoryHistoryRepository() HistoryRepository {
	return &memoryHistoryRepository{histories: make(map[string][]models.ChatMessage)}
}

func (r *memoryHistoryRepository) Get(_ context.Context, documentID string) ([]models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if messages, ok := r.histories[documentID]; ok {
		return slices.Clone(messages), nil
	}
	return []models.ChatMessage{}, nil
}

func (r *memoryHistoryRepository) Put(_ context.Context, documentID string, messages []models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.histories[documentID] = slices.Clone(messages)
	return nil
}

func (r *memoryHistoryRepository) Delete(_ context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.histories, documentID)
	return nil
}
