package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/BerylCAtieno/document-qa-api/internal/services"
	"github.com/BerylCAtieno/document-qa-api/internal/utils"
)

type QuestionHandler struct {
	responder
	service services.QuestionService
}

func NewQuestionHandler(service services.QuestionService, logger *utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		responder: responder{logger: logger},
		service:   service,
	}
}

// AskQuestion answers {question, documentId}. A document with no matching
// content yields 404 with the fallback answer.
func (h *QuestionHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, utils.NewValidationError("Question and documentId are required."), services.ProcessingFailedMessage)
		return
	}

	answer, err := h.service.Ask(context.WithoutCancel(r.Context()), &req)
	if err != nil {
		h.respondError(w, err, services.ProcessingFailedMessage)
		return
	}

	status := http.StatusOK
	if !answer.Found {
		status = http.StatusNotFound
	}
	h.respondJSON(w, status, models.AnswerResponse{Answer: answer.Text})
}
