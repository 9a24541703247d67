package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"secondbrain-backend/internal/core"
)

var _ core.VectorStore = (*MemoryStore)(nil)

// MemoryStore is a brute-force cosine-similarity VectorStore with the same
// filter semantics as PGStore. It backs unit tests and local runs without a
// database.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]core.VectorRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]core.VectorRecord)}
}

func (s *MemoryStore) Upsert(ctx context.Context, records []core.VectorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if rec.Metadata.User == "" {
			return fmt.Errorf("%w: record %s has no tenant", core.ErrVectorStore, rec.ID)
		}
		s.records[rec.ID] = rec
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, tenantID string, embedding []float32, documentID string, topK int) ([]core.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", core.ErrVectorStore)
	}
	if topK <= 0 {
		topK = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Match
	for _, rec := range s.records {
		if rec.Metadata.User != tenantID {
			continue
		}
		if documentID != "" && rec.Metadata.DocumentID != documentID {
			continue
		}
		out = append(out, core.Match{
			ID:       rec.ID,
			Score:    cosine(embedding, rec.Values),
			Metadata: rec.Metadata,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

// Len reports the stored record count.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
