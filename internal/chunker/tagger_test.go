package chunker

import (
	"testing"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChunks() []models.Chunk {
	return []models.Chunk{
		{Text: "first", Metadata: map[string]any{models.MetaPageNumber: 1}},
		{Text: "second", Metadata: map[string]any{models.MetaPageNumber: 2}},
		{Text: "no metadata"},
	}
}

func TestTag_AddsDocumentID(t *testing.T) {
	tagged := Tag(sampleChunks(), "doc-1")

	require.Len(t, tagged, 3)
	for _, c := range tagged {
		assert.Equal(t, "doc-1", c.DocumentID())
	}
	assert.Equal(t, "first", tagged[0].Text)
	assert.Equal(t, 2, tagged[1].Metadata[models.MetaPageNumber])
}

func TestTag_DoesNotMutateInput(t *testing.T) {
	in := sampleChunks()
	_ = Tag(in, "doc-1")

	assert.NotContains(t, in[0].Metadata, models.MetaDocumentID)
	assert.NotContains(t, in[1].Metadata, models.MetaDocumentID)
	assert.Nil(t, in[2].Metadata)
}

func TestTag_Idempotent(t *testing.T) {
	once := Tag(sampleChunks(), "doc-1")
	twice := Tag(once, "doc-1")
	assert.Equal(t, once, twice)
}

func TestTag_Empty(t *testing.T) {
	assert.Empty(t, Tag(nil, "doc-1"))
}

func TestNewDocumentID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewDocumentID()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
