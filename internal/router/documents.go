package router

import (
	"net/http"

	"github.com/BerylCAtieno/document-qa-api/internal/handlers"
	"github.com/BerylCAtieno/document-qa-api/internal/middleware"
	"github.com/BerylCAtieno/document-qa-api/internal/services"
	"github.com/BerylCAtieno/document-qa-api/internal/utils"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
)

type Options struct {
	MaxFileSize        int64
	AllowedUploadTypes []string
}

func NewRouter(session services.SessionService, questions services.QuestionService, opts Options, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))

	docHandler := handlers.NewDocumentHandler(session, opts.MaxFileSize, opts.AllowedUploadTypes, logger)
	questionHandler := handlers.NewQuestionHandler(questions, logger)
	historyHandler := handlers.NewHistoryHandler(session, logger)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Ingestion and question answering
	api.HandleFunc("/upload", docHandler.UploadDocument).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/question", questionHandler.AskQuestion).Methods(http.MethodPost, http.MethodOptions)

	// Session
	api.HandleFunc("/documents", docHandler.ListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", docHandler.SelectDocument).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/file", docHandler.DownloadDocument).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/messages", historyHandler.GetMessages).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/messages", historyHandler.SendMessage).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/documents/{id}/messages", historyHandler.ClearMessages).Methods(http.MethodDelete, http.MethodOptions)

	return r
}
