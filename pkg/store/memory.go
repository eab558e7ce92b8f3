package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/casetrace/linkboard/pkg/errors"
)

// MemoryStore keeps records in process memory. Records cross the same
// JSON boundary as the persistent backends, so callers never share
// slices with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	headers map[string]Summary
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
		headers: make(map[string]Summary),
	}
}

// Save writes a record.
func (s *MemoryStore) Save(ctx context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing Summary
	if rec.ID != "" {
		existing = s.headers[rec.ID]
	}
	rec = prepare(rec, existing.CreatedAt)

	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "encode graph %s", rec.ID)
	}
	s.records[rec.ID] = data
	s.headers[rec.ID] = Summarize(rec)
	return rec, nil
}

// Get retrieves a record by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	data, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return Record{}, errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "decode graph %s", id)
	}
	return rec, nil
}

// List returns summaries, most recently updated first.
func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	sums := make([]Summary, 0, len(s.headers))
	for _, h := range s.headers {
		sums = append(sums, h)
	}
	s.mu.RUnlock()

	sortSummaries(sums)
	return sums, nil
}

// Delete removes a record.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id)
	}
	delete(s.records, id)
	delete(s.headers, id)
	return nil
}

// Close does nothing.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
