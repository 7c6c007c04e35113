package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// HistoryRepository is a key-value store of chat transcripts keyed by
// document id. Put replaces the whole transcript.
type HistoryRepository interface {
	Get(ctx context.Context, documentID string) ([]models.ChatMessage, error)
	Put(ctx context.Context, documentID string, messages []models.ChatMessage) error
	Delete(ctx context.Context, documentID string) error
}

type historyRepository struct {
	db *sqlx.DB
}

func NewHistoryRepository(db *sqlx.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// Get returns an empty transcript for unknown documents.
func (r *historyRepository) Get(ctx context.Context, documentID string) ([]models.ChatMessage, error) {
	var encoded string

	query := `
		SELECT messages
		FROM chat_histories
		WHERE document_id = ?
	`

	err := r.db.GetContext(ctx, &encoded, query, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.ChatMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	messages := []models.ChatMessage{}
	if encoded != "" {
		if err := json.Unmarshal([]byte(encoded), &messages); err != nil {
			return nil, fmt.Errorf("corrupt chat history for %s: %w", documentID, err)
		}
	}

	return messages, nil
}

func (r *historyRepository) Put(ctx context.Context, documentID string, messages []models.ChatMessage) error {
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	encoded, err := json.Marshal(messages)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO chat_histories (document_id, messages, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE
		SET messages = excluded.messages, updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, documentID, string(encoded), time.Now().UTC())
	return err
}

func (r *historyRepository) Delete(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_histories WHERE document_id = ?`, documentID)
	return err
}
