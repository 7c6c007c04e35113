package services

import (
	"context"
	"sync"

	"github.com/BerylCAtieno/document-qa-api/internal/models"
	"github.com/BerylCAtieno/document-qa-api/internal/vectorindex"
)

type fakeExtractor struct {
	pages []models.Page
	err   error
}

func (f *fakeExtractor) Extract(_ []byte, _ string) ([]models.Page, error) {
	return f.pages, f.err
}

type completion struct {
	prompt      string
	temperature float64
}

type fakeLLM struct {
	mu       sync.Mutex
	calls    []completion
	response string
	err      error
}

func (f *fakeLLM) Complete(_ context.Context, prompt string, temperature float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, completion{prompt: prompt, temperature: temperature})
	return f.response, f.err
}

type search struct {
	query  string
	k      int
	filter vectorindex.Filter
}

type fakeIndex struct {
	mu       sync.Mutex
	batches  [][]models.Chunk
	searches []search
	results  []models.Chunk
	addErr   error
	queryErr error
}

func (f *fakeIndex) AddChunks(_ context.Context, chunks []models.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.batches = append(f.batches, chunks)
	return nil
}

func (f *fakeIndex) SimilaritySearch(_ context.Context, query string, k int, filter vectorindex.Filter) ([]models.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, search{query: query, k: k, filter: filter})
	return f.results, f.queryErr
}

type fakeArchive struct {
	objects map[string][]byte
	err     error
}

func (f *fakeArchive) Upload(_ context.Context, key string, data []byte, _ string) error {
	if f.err != nil {
		return f.err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = data
	return nil
}

func (f *fakeArchive) Download(_ context.Context, key string) ([]byte, string, error) {
	return f.objects[key], "application/pdf", f.err
}
