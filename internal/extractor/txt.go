package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ExtractTXT decodes a plain-text upload (UTF-8, UTF-16 with BOM or a
// Windows-1252 fallback) into a single page.
func ExtractTXT(data []byte) ([]models.Page, error) {
	if err := validateTXT(data); err != nil {
		return nil, err
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode text file: %w", err)
	}

	text = cleanText(text)
	if text == "" {
		return nil, fmt.Errorf("txt: %w", ErrNoText)
	}

	return singlePage(text), nil
}

func decodeText(data []byte) (string, error) {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return string(data[3:]), nil
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return transformString(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), data)
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return transformString(unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder(), data)
	case utf8.Valid(data):
		return string(data), nil
	}

	if s, err := transformString(charmap.Windows1252.NewDecoder(), data); err == nil {
		return s, nil
	}
	return transformString(charmap.ISO8859_1.NewDecoder(), data)
}

func transformString(t transform.Transformer, data []byte) (string, error) {
	decoded, _, err := transform.Bytes(t, data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// validateTXT rejects data whose leading bytes look binary. UTF-16 input is
// recognised by its BOM and skipped.
func validateTXT(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("txt: %w", ErrNoText)
	}
	if len(data) >= 2 && ((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)) {
		return nil
	}

	sample := data[:min(len(data), 512)]
	printable := 0
	for _, b := range sample {
		if (b >= 32 && b != 127) || b == '\t' || b == '\n' || b == '\r' {
			printable++
		}
	}

	if float64(printable)/float64(len(sample)) < 0.8 {
		return fmt.Errorf("file does not appear to be valid text")
	}
	return nil
}
