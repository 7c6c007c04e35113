package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BerylCAtieno/document-qa-api/internal/extractor"
	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/BerylCAtieno/document-qa-api/internal/services"
	"github.com/BerylCAtieno/document-qa-api/internal/utils"
	"github.com/gorilla/mux"
)

type DocumentHandler struct {
	responder
	session      services.SessionService
	maxFileSize  int64
	allowedTypes []string
}

func NewDocumentHandler(session services.SessionService, maxFileSize int64, allowedTypes []string, logger *utils.Logger) *DocumentHandler {
	normalized := make([]string, 0, len(allowedTypes))
	for _, t := range allowedTypes {
		normalized = append(normalized, extractor.Normalize(t))
	}

	return &DocumentHandler{
		responder:    responder{logger: logger},
		session:      session,
		maxFileSize:  maxFileSize,
		allowedTypes: normalized,
	}
}

// UploadDocument ingests the multipart "file" field.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	tooLarge := utils.NewValidationError(fmt.Sprintf("File size exceeds %dMB limit", h.maxFileSize>>20))

	if r.ContentLength > h.maxFileSize+(1<<20) {
		h.respondError(w, tooLarge, services.UploadFailedMessage)
		return
	}

	// allow room for multipart framing
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+(1<<20))

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			h.respondError(w, tooLarge, services.UploadFailedMessage)
			return
		}
		h.respondError(w, utils.NewValidationError("No file provided"), services.UploadFailedMessage)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, utils.NewValidationError("No file provided"), services.UploadFailedMessage)
		return
	}
	defer file.Close()

	contentType := determineContentType(header.Filename, header.Header.Get("Content-Type"))

	h.logger.Info("File upload attempt",
		"filename", header.Filename,
		"reported_content_type", header.Header.Get("Content-Type"),
		"determined_content_type", contentType)

	if !slices.Contains(h.allowedTypes, contentType) {
		h.respondError(w, utils.NewValidationError(fmt.Sprintf("Unsupported file type '%s'", contentType)), services.UploadFailedMessage)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		h.respondError(w, utils.NewUpstreamError(services.UploadFailedMessage, err), services.UploadFailedMessage)
		return
	}
	if int64(len(data)) > h.maxFileSize {
		h.respondError(w, tooLarge, services.UploadFailedMessage)
		return
	}
	if len(data) == 0 {
		h.respondError(w, utils.NewValidationError("No file provided"), services.UploadFailedMessage)
		return
	}

	req := &models.UploadRequest{
		File:        data,
		Filename:    header.Filename,
		ContentType: contentType,
	}

	// an issued upload runs to completion even if the client goes away
	resp, err := h.session.Upload(context.WithoutCancel(r.Context()), req)
	if err != nil {
		h.respondError(w, err, services.UploadFailedMessage)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

type documentList struct {
	Documents         []models.Document `json:"documents"`
	CurrentDocumentID string            `json:"currentDocumentId,omitempty"`
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, current := h.session.Documents()
	h.respondJSON(w, http.StatusOK, documentList{Documents: docs, CurrentDocumentID: current})
}

// SelectDocument makes the document current and returns its summary and
// transcript.
func (h *DocumentHandler) SelectDocument(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.Select(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err, "Internal server error")
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// DownloadDocument streams the archived original upload.
func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	doc, data, contentType, err := h.session.OriginalFile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// determineContentType prefers the file extension and falls back to the
// reported part header.
func determineContentType(filename, headerContentType string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractor.TypePDF
	case ".docx":
		return extractor.TypeDOCX
	case ".txt":
		return extractor.TypeTXT
	case ".doc":
		return "application/msword"
	}
	return extractor.Normalize(headerContentType)
}
