package vectorindex

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
)

// MemoryStore keeps records in process and scores them by brute-force
// cosine similarity. Contents are lost on restart.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	records   []Record
}

func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{dimension: dimension}
}

func (s *MemoryStore) Upsert(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if s.dimension > 0 && len(r.Vector) != s.dimension {
			return fmt.Errorf("vector dimension %d does not match index dimension %d", len(r.Vector), s.dimension)
		}
	}

	for _, r := range records {
		idx := slices.IndexFunc(s.records, func(existing Record) bool { return existing.ID == r.ID })
		if idx >= 0 {
			s.records[idx] = r
			continue
		}
		s.records = append(s.records, r)
	}

	return nil
}

func (s *MemoryStore) Query(_ context.Context, vector []float32, k int, filter Filter) ([]Record, error) {
	if s.dimension > 0 && len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(vector), s.dimension)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Record
	for _, r := range s.records {
		if !filter.matches(r.Metadata) {
			continue
		}
		r.Score = cosineSimilarity(vector, r.Vector)
		matches = append(matches, r)
	}

	slices.SortStableFunc(matches, func(a, b Record) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (f Filter) matches(metadata map[string]any) bool {
	for key, want := range f {
		got, ok := metadata[key]
		if !ok || fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
