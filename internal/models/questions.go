package models

import "time"

type QuestionRequest struct {
	Question   string `json:"question"`
	DocumentID string `json:"documentId"`
}

// Answer is the outcome of a question. Found is false when no chunk of the
// document matched and Text holds the fallback answer.
type Answer struct {
	Text  string
	Found bool
}

type AnswerResponse struct {
	Answer string `json:"answer"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of the conversation about a document.
type ChatMessage struct {
	ID         string    `json:"id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	DocumentID string    `json:"documentId"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

type SendMessageResponse struct {
	Message ChatMessage `json:"message"`
}

// DocumentView is the selected document together with its transcript.
type DocumentView struct {
	Document Document      `json:"document"`
	Summary  string        `json:"summary"`
	Messages []ChatMessage `json:"messages"`
}
