package reportsource

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/reportarchive"
)

// MemorySource keeps report documents in process memory. Useful for tests and local dev.
type MemorySource struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemorySource constructs an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{docs: make(map[string][]byte)}
}

// Put stores a copy of payload under name.
func (s *MemorySource) Put(name string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = append([]byte(nil), payload...)
}

// List implements reportarchive.Source.
func (s *MemorySource) List(_ context.Context) ([]reportarchive.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]reportarchive.Entry, 0, len(s.docs))
	for name := range s.docs {
		out = append(out, reportarchive.NewEntry(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Read implements reportarchive.Source.
func (s *MemorySource) Read(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.docs[name]
	if !ok {
		return nil, reportarchive.ErrNotFound
	}
	return append([]byte(nil), payload...), nil
}

var _ reportarchive.Source = (*MemorySource)(nil)
