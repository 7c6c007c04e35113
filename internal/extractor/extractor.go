package extractor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
)

var (
	// ErrUnsupportedType is returned for media types no extractor handles.
	ErrUnsupportedType = errors.New("unsupported media type")
	// ErrNoText is returned when a document decodes but holds no text.
	ErrNoText = errors.New("no text could be extracted")
)

const (
	TypePDF  = "application/pdf"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeTXT  = "text/plain"
)

// Extractor turns an uploaded blob into ordered pages of text.
type Extractor interface {
	Extract(data []byte, mediaType string) ([]models.Page, error)
}

type extractor struct{}

func New() Extractor {
	return extractor{}
}

func (extractor) Extract(data []byte, mediaType string) ([]models.Page, error) {
	switch Normalize(mediaType) {
	case TypePDF:
		return ExtractPDF(data)
	case TypeDOCX:
		return ExtractDOCX(data)
	case TypeTXT:
		return ExtractTXT(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, mediaType)
	}
}

// Normalize maps the MIME variants browsers send onto the canonical type.
func Normalize(mediaType string) string {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}

	switch mediaType {
	case "application/x-pdf":
		return TypePDF
	case TypeDOCX,
		"application/vnd.openxmlformats-officedocument.wordprocessingml",
		"application/docx",
		"application/x-docx":
		return TypeDOCX
	case "text/txt", "application/txt", "application/x-txt":
		return TypeTXT
	}
	return mediaType
}

func singlePage(text string) []models.Page {
	return []models.Page{{Number: 1, Text: text}}
}
