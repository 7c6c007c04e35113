package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/BerylCAtieno/document-qa-api/internal/services"
	"github.com/BerylCAtieno/document-qa-api/internal/utils"
	"github.com/gorilla/mux"
)

type HistoryHandler struct {
	responder
	session services.SessionService
}

func NewHistoryHandler(session services.SessionService, logger *utils.Logger) *HistoryHandler {
	return &HistoryHandler{
		responder: responder{logger: logger},
		session:   session,
	}
}

type messageList struct {
	Messages []models.ChatMessage `json:"messages"`
}

func (h *HistoryHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.session.History(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err, "Internal server error")
		return
	}
	h.respondJSON(w, http.StatusOK, messageList{Messages: messages})
}

func (h *HistoryHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, utils.NewValidationError("Message content is required"), services.ProcessingFailedMessage)
		return
	}

	reply, err := h.session.SendMessage(context.WithoutCancel(r.Context()), mux.Vars(r)["id"], req.Content)
	if err != nil {
		h.respondError(w, err, services.ProcessingFailedMessage)
		return
	}

	h.respondJSON(w, http.StatusOK, models.SendMessageResponse{Message: *reply})
}

func (h *HistoryHandler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ClearHistory(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondError(w, err, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
