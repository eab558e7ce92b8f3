package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/casetrace/linkboard/pkg/errors"
)

// FileStore persists one JSON file per graph under a directory. The
// file name is the record id, so ids are validated before they touch
// the filesystem.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create store directory %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes a record.
func (s *FileStore) Save(ctx context.Context, rec Record) (Record, error) {
	if rec.ID != "" {
		if err := errors.ValidateGraphID(rec.ID); err != nil {
			return Record{}, err
		}
	}

	var existing Record
	if rec.ID != "" {
		if prev, err := s.Get(ctx, rec.ID); err == nil {
			existing = prev
		}
	}
	rec = prepare(rec, existing.CreatedAt)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "encode graph %s", rec.ID)
	}
	if err := os.WriteFile(s.path(rec.ID), data, 0644); err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "write graph %s", rec.ID)
	}
	return rec, nil
}

// Get retrieves a record by id.
func (s *FileStore) Get(ctx context.Context, id string) (Record, error) {
	if err := errors.ValidateGraphID(id); err != nil {
		return Record{}, err
	}

	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return Record{}, errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id)
	}
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "read graph %s", id)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "decode graph %s", id)
	}
	return rec, nil
}

// List returns summaries, most recently updated first. Files that fail
// to decode are skipped rather than failing the whole listing.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list store directory %s", s.dir)
	}

	sums := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		rec, err := s.Get(ctx, id)
		if err != nil {
			continue
		}
		sums = append(sums, Summarize(rec))
	}

	sortSummaries(sums)
	return sums, nil
}

// Delete removes a record.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateGraphID(id); err != nil {
		return err
	}

	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete graph %s", id)
	}
	return nil
}

// Close does nothing.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
