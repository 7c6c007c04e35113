package chunker

import (
	"maps"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/BerylCAtieno/document-qa-api/internal/utils"
)

// NewDocumentID returns a fresh random document identifier.
func NewDocumentID() string {
	return utils.GenerateID()
}

// Tag returns copies of chunks whose metadata carries documentID. The input
// slice and its metadata maps are left untouched, and tagging an already
// tagged slice with the same id yields an equal result.
func Tag(chunks []models.Chunk, documentID string) []models.Chunk {
	tagged := make([]models.Chunk, len(chunks))

	for i, c := range chunks {
		meta := make(map[string]any, len(c.Metadata)+1)
		maps.Copy(meta, c.Metadata)
		meta[models.MetaDocumentID] = documentID

		tagged[i] = models.Chunk{
			Text:     c.Text,
			Metadata: meta,
		}
	}

	return tagged
}
