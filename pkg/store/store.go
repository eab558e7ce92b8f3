package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/casetrace/linkboard/pkg/graph"
)

// Record is a stored investigation graph.
type Record struct {
	ID        string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Graph     graph.Document `json:"graph"`
}

// Summary is the listing header of a stored graph.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists graph records.
type Store interface {
	// Save writes a record. An empty id gets a fresh uuid; an existing id
	// is replaced with its original creation time preserved. The stored
	// record is returned.
	Save(ctx context.Context, rec Record) (Record, error)

	// Get retrieves a record by id. Unknown ids fail with
	// [errors.ErrCodeGraphNotFound].
	Get(ctx context.Context, id string) (Record, error)

	// List returns summaries of all stored graphs, most recently
	// updated first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a record. Unknown ids fail with
	// [errors.ErrCodeGraphNotFound].
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Summarize reduces a record to its listing header.
func Summarize(rec Record) Summary {
	return Summary{
		ID:        rec.ID,
		Name:      rec.Name,
		Nodes:     len(rec.Graph.Nodes),
		Edges:     len(rec.Graph.Edges),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// prepare assigns identity and timestamps ahead of a write. existing is
// the creation time of the record currently stored under the same id,
// or zero when the id is new.
func prepare(rec Record, existing time.Time) Record {
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Name == "" {
		rec.Name = rec.Graph.Name
	}
	if existing.IsZero() {
		rec.CreatedAt = now
	} else {
		rec.CreatedAt = existing
	}
	rec.UpdatedAt = now
	return rec
}

// sortSummaries orders listings most recently updated first, with ids
// breaking ties so equal timestamps still list deterministically.
func sortSummaries(sums []Summary) {
	sort.Slice(sums, func(i, j int) bool {
		if !sums[i].UpdatedAt.Equal(sums[j].UpdatedAt) {
			return sums[i].UpdatedAt.After(sums[j].UpdatedAt)
		}
		return sums[i].ID < sums[j].ID
	})
}
