package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/BerylCAtieno/document-qa-api/internal/services"
	"github.com/BerylCAtieno/document-qa-api/internal/utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	uploads   []*models.UploadRequest
	uploadErr error
	view      *models.DocumentView
	messages  []models.ChatMessage
	reply     *models.ChatMessage
	err       error
	cleared   []string
}

func (f *fakeSession) Upload(_ context.Context, req *models.UploadRequest) (*models.UploadResponse, error) {
	f.uploads = append(f.uploads, req)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &models.UploadResponse{Summary: "It is a report.", DocumentID: "doc-1", PageCount: 3}, nil
}

func (f *fakeSession) Documents() ([]models.Document, string) {
	return []models.Document{{ID: "doc-1", Filename: "a.pdf", PageCount: 3}}, "doc-1"
}

func (f *fakeSession) Select(_ context.Context, id string) (*models.DocumentView, error) {
	if f.view == nil || f.view.Document.ID != id {
		return nil, utils.NewNotFoundError("Document not found")
	}
	return f.view, nil
}

func (f *fakeSession) History(context.Context, string) ([]models.ChatMessage, error) {
	return f.messages, f.err
}

func (f *fakeSession) SendMessage(_ context.Context, _ string, content string) (*models.ChatMessage, error) {
	if f.err != nil {
		return f.reply, f.err
	}
	return f.reply, nil
}

func (f *fakeSession) ClearHistory(_ context.Context, id string) error {
	f.cleared = append(f.cleared, id)
	return f.err
}

func (f *fakeSession) OriginalFile(context.Context, string) (*models.Document, []byte, string, error) {
	if f.err != nil {
		return nil, nil, "", f.err
	}
	return &models.Document{Filename: "a.pdf"}, []byte("%PDF"), "application/pdf", nil
}

type fakeQuestions struct {
	answer *models.Answer
	err    error
}

func (f *fakeQuestions) Ask(context.Context, *models.QuestionRequest) (*models.Answer, error) {
	return f.answer, f.err
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newDocumentHandler(session *fakeSession) *DocumentHandler {
	return NewDocumentHandler(session, 10<<20, []string{"application/pdf"}, utils.NopLogger())
}

func TestUploadDocument_NoFile(t *testing.T) {
	h := newDocumentHandler(&fakeSession{})

	body, ct := multipartBody(t, "", "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.UploadDocument(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file provided", decodeBody(t, rec)["error"])
}

func TestUploadDocument_NotMultipart(t *testing.T) {
	h := newDocumentHandler(&fakeSession{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.UploadDocument(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file provided", decodeBody(t, rec)["error"])
}

func TestUploadDocument_EmptyFile(t *testing.T) {
	h := newDocumentHandler(&fakeSession{})

	body, ct := multipartBody(t, "file", "empty.pdf", "application/pdf", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.UploadDocument(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file provided", decodeBody(t, rec)["error"])
}

func TestUploadDocument_UnsupportedType(t *testing.T) {
	session := &fakeSession{}
	h := newDocumentHandler(session)

	body, ct := multipartBody(t, "file", "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.UploadDocument(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "Unsupported file type")
	assert.Empty(t, session.uploads)
}

func TestUploadDocument_TooLarge(t *testing.T) {
	h := NewDocumentHandler(&fakeSession{}, 1<<20, []string{"application/pdf"}, utils.NopLogger())

	body, ct := multipartBody(t, "file", "big.pdf", "application/pdf", bytes.Repeat([]byte("x"), (1<<20)+10))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.UploadDocument(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "File size exceeds")
}

func TestUploadDocument_Success(t *testing.T) {
	session := &fakeSession{}
	h := newDocumentHandler(session)

	body, ct := multipartBody(t, "file", "report.pdf", "application/octet-stream", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.UploadDocument(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "It is a report.", resp["summary"])
	assert.Equal(t, "doc-1", resp["documentId"])
	assert.Equal(t, float64(3), resp["pageCount"])

	require.Len(t, session.uploads, 1)
	assert.Equal(t, "application/pdf", session.uploads[0].ContentType)
	assert.Equal(t, "report.pdf", session.uploads[0].Filename)
}

func TestUploadDocument_Failures(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{utils.NewUpstreamError(services.UploadFailedMessage, errors.New("llm down")), http.StatusInternalServerError, "Error uploading file"},
		{utils.NewNoContentError("No text could be extracted from the document", nil), http.StatusUnprocessableEntity, "No text could be extracted from the document"},
		{errors.New("unexpected"), http.StatusInternalServerError, "Error uploading file"},
	}

	for _, tc := range cases {
		h := newDocumentHandler(&fakeSession{uploadErr: tc.err})

		body, ct := multipartBody(t, "file", "report.pdf", "application/pdf", []byte("%PDF-1.4"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		h.UploadDocument(rec, req)

		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, tc.message, decodeBody(t, rec)["error"])
		assert.NotContains(t, rec.Body.String(), "llm down")
	}
}

func askQuestion(t *testing.T, questions *fakeQuestions, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewQuestionHandler(questions, utils.NopLogger())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/question", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.AskQuestion(rec, req)
	return rec
}

func TestAskQuestion_Answered(t *testing.T) {
	rec := askQuestion(t, &fakeQuestions{answer: &models.Answer{Text: "Forty euros.", Found: true}},
		`{"question":"Total?","documentId":"doc-1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Forty euros.", decodeBody(t, rec)["answer"])
}

func TestAskQuestion_NoRelevantChunks(t *testing.T) {
	rec := askQuestion(t, &fakeQuestions{answer: &models.Answer{Text: services.NoRelevantAnswer}},
		`{"question":"Anything?","documentId":"unknown"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]any{"answer": "I wasn't able to find relevant answers to your questions."}, decodeBody(t, rec))
}

func TestAskQuestion_Invalid(t *testing.T) {
	rec := askQuestion(t, &fakeQuestions{}, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Question and documentId are required.", decodeBody(t, rec)["error"])

	rec = askQuestion(t, &fakeQuestions{err: utils.NewValidationError("Question and documentId are required.")},
		`{"question":"","documentId":"doc-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Question and documentId are required.", decodeBody(t, rec)["error"])
}

func TestAskQuestion_Failure(t *testing.T) {
	for _, err := range []error{
		utils.NewUpstreamError(services.ProcessingFailedMessage, errors.New("index unreachable")),
		errors.New("unexpected"),
	} {
		rec := askQuestion(t, &fakeQuestions{err: err}, `{"question":"Total?","documentId":"doc-1"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "An error occurred while processing your request.", decodeBody(t, rec)["error"])
	}
}

func withID(req *http.Request, id string) *http.Request {
	return mux.SetURLVars(req, map[string]string{"id": id})
}

func TestSelectDocument(t *testing.T) {
	session := &fakeSession{view: &models.DocumentView{
		Document: models.Document{ID: "doc-1", Summary: "s"},
		Summary:  "s",
		Messages: []models.ChatMessage{},
	}}
	h := newDocumentHandler(session)

	rec := httptest.NewRecorder()
	h.SelectDocument(rec, withID(httptest.NewRequest(http.MethodGet, "/api/v1/documents/doc-1", nil), "doc-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s", decodeBody(t, rec)["summary"])

	rec = httptest.NewRecorder()
	h.SelectDocument(rec, withID(httptest.NewRequest(http.MethodGet, "/api/v1/documents/nope", nil), "nope"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListDocuments(t *testing.T) {
	h := newDocumentHandler(&fakeSession{})

	rec := httptest.NewRecorder()
	h.ListDocuments(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "doc-1", body["currentDocumentId"])
	assert.Len(t, body["documents"], 1)
}

func TestDownloadDocument(t *testing.T) {
	h := newDocumentHandler(&fakeSession{})

	rec := httptest.NewRecorder()
	h.DownloadDocument(rec, withID(httptest.NewRequest(http.MethodGet, "/api/v1/documents/doc-1/file", nil), "doc-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename=a.pdf`)
	assert.Equal(t, "%PDF", rec.Body.String())
}

func TestHistoryHandlers(t *testing.T) {
	session := &fakeSession{
		messages: []models.ChatMessage{{ID: "m1", Role: models.RoleUser, Content: "hi"}},
		reply:    &models.ChatMessage{ID: "m2", Role: models.RoleAssistant, Content: "hello"},
	}
	h := NewHistoryHandler(session, utils.NopLogger())

	rec := httptest.NewRecorder()
	h.GetMessages(rec, withID(httptest.NewRequest(http.MethodGet, "/", nil), "doc-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["messages"], 1)

	rec = httptest.NewRecorder()
	h.SendMessage(rec, withID(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"hi"}`)), "doc-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", decodeBody(t, rec)["message"].(map[string]any)["content"])

	rec = httptest.NewRecorder()
	h.ClearMessages(rec, withID(httptest.NewRequest(http.MethodDelete, "/", nil), "doc-1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"doc-1"}, session.cleared)
}

func TestSendMessage_Failure(t *testing.T) {
	session := &fakeSession{
		reply: &models.ChatMessage{Role: models.RoleAssistant, Content: services.ProcessingFailedMessage},
		err:   utils.NewUpstreamError(services.ProcessingFailedMessage, errors.New("boom")),
	}
	h := NewHistoryHandler(session, utils.NopLogger())

	rec := httptest.NewRecorder()
	h.SendMessage(rec, withID(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"hi"}`)), "doc-1"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, services.ProcessingFailedMessage, decodeBody(t, rec)["error"])
}
