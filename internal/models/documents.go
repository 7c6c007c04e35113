package models

import (
	"time"
)

// Metadata keys attached to chunks.
const (
	MetaDocumentID = "documentId"
	MetaPageNumber = "pageNumber"
	MetaChunkIndex = "chunkIndex"
)

// Document is a successfully ingested upload as the session knows it.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	FileSize    int64     `json:"fileSizeBytes"`
	ContentType string    `json:"contentType"`
	PageCount   int       `json:"pageCount"`
	Summary     string    `json:"summary"`
	ArchiveKey  string    `json:"-"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// Page is one unit of extracted text. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Chunk is a bounded window of page text plus metadata. After tagging,
// Metadata[MetaDocumentID] names the owning document.
type Chunk struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

func (c Chunk) DocumentID() string {
	id, _ := c.Metadata[MetaDocumentID].(string)
	return id
}

type UploadRequest struct {
	File        []byte
	Filename    string
	ContentType string
}

// IngestionResult is what the ingestion pipeline produces for one upload.
type IngestionResult struct {
	Summary    string
	DocumentID string
	PageCount  int
	ArchiveKey string
}

type UploadResponse struct {
	Summary    string `json:"summary"`
	DocumentID string `json:"documentId"`
	PageCount  int    `json:"pageCount"`
}
