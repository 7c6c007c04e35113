package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/ledongthuc/pdf"
)

// ExtractPDF returns one page per PDF page, in document order. Pages whose
// text cannot be read are kept with empty text so numbering stays aligned.
func ExtractPDF(data []byte) ([]models.Page, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	numPages := pdfReader.NumPage()
	pages := make([]models.Page, 0, numPages)
	hasText := false

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)

		var text string
		if !page.V.IsNull() {
			if plain, err := page.GetPlainText(nil); err == nil {
				text = strings.TrimSpace(plain)
			}
		}

		if text != "" {
			hasText = true
		}
		pages = append(pages, models.Page{Number: i, Text: text})
	}

	if !hasText {
		return nil, fmt.Errorf("pdf: %w", ErrNoText)
	}

	return pages, nil
}
