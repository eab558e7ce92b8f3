package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/graph"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", name, err)
	}
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestFileStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		s, err := NewFileStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileStore() error: %v", err)
		}
		return s
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		s, err := NewSQLiteStore(":memory:")
		if err != nil {
			t.Fatalf("NewSQLiteStore() error: %v", err)
		}
		return s
	})
}

func boardDocument() graph.Document {
	return graph.Document{
		Name: "acme-case",
		Nodes: []graph.DocumentNode{
			{ID: "a", Label: "Alpha Ltd", Type: "company"},
			{ID: "b", Label: "B. Freeman", Type: "person"},
		},
		Edges: []graph.DocumentEdge{
			{Source: "a", Target: "b", Label: "director"},
		},
	}
}

func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("SaveAssignsIdentity", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		rec, err := s.Save(ctx, Record{Graph: boardDocument()})
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		if rec.ID == "" {
			t.Error("Save() left id empty")
		}
		if rec.Name != "acme-case" {
			t.Errorf("Save() name = %q, want graph name fallback %q", rec.Name, "acme-case")
		}
		if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
			t.Error("Save() left timestamps zero")
		}
	})

	t.Run("GetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		saved, err := s.Save(ctx, Record{Name: "board one", Graph: boardDocument()})
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}

		got, err := s.Get(ctx, saved.ID)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if got.ID != saved.ID || got.Name != "board one" {
			t.Errorf("Get() = {%s %s}, want {%s %s}", got.ID, got.Name, saved.ID, "board one")
		}
		if len(got.Graph.Nodes) != 2 || len(got.Graph.Edges) != 1 {
			t.Errorf("Get() graph has %d nodes, %d edges, want 2 and 1",
				len(got.Graph.Nodes), len(got.Graph.Edges))
		}
		if got.Graph.Nodes[0].Label != "Alpha Ltd" {
			t.Errorf("Get() node label = %q, want %q", got.Graph.Nodes[0].Label, "Alpha Ltd")
		}
		if !got.CreatedAt.Equal(saved.CreatedAt) || !got.UpdatedAt.Equal(saved.UpdatedAt) {
			t.Errorf("Get() timestamps %v/%v, want %v/%v",
				got.CreatedAt, got.UpdatedAt, saved.CreatedAt, saved.UpdatedAt)
		}
	})

	t.Run("GetUnknownFails", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		_, err := s.Get(context.Background(), "missing")
		if err == nil {
			t.Fatal("Get() of unknown id succeeded")
		}
		if code := errors.GetCode(err); code != errors.ErrCodeGraphNotFound {
			t.Errorf("error code = %v, want %v", code, errors.ErrCodeGraphNotFound)
		}
	})

	t.Run("SaveExistingKeepsCreation", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		first, err := s.Save(ctx, Record{Graph: boardDocument()})
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}

		time.Sleep(2 * time.Millisecond)
		doc := boardDocument()
		doc.Nodes = append(doc.Nodes, graph.DocumentNode{ID: "c", Label: "Cayman Acct", Type: "account"})
		second, err := s.Save(ctx, Record{ID: first.ID, Name: "revised", Graph: doc})
		if err != nil {
			t.Fatalf("Save() update error: %v", err)
		}

		if !second.CreatedAt.Equal(first.CreatedAt) {
			t.Errorf("update changed creation time %v -> %v", first.CreatedAt, second.CreatedAt)
		}
		if !second.UpdatedAt.After(first.UpdatedAt) {
			t.Errorf("update time %v not after %v", second.UpdatedAt, first.UpdatedAt)
		}

		got, err := s.Get(ctx, first.ID)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if len(got.Graph.Nodes) != 3 {
			t.Errorf("updated graph has %d nodes, want 3", len(got.Graph.Nodes))
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		older, err := s.Save(ctx, Record{Name: "older", Graph: boardDocument()})
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
		newer, err := s.Save(ctx, Record{Name: "newer", Graph: boardDocument()})
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}

		sums, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(sums) != 2 {
			t.Fatalf("List() returned %d summaries, want 2", len(sums))
		}
		if sums[0].ID != newer.ID || sums[1].ID != older.ID {
			t.Errorf("List() order = [%s %s], want [%s %s]",
				sums[0].Name, sums[1].Name, "newer", "older")
		}
		if sums[0].Nodes != 2 || sums[0].Edges != 1 {
			t.Errorf("summary counts = %d nodes, %d edges, want 2 and 1",
				sums[0].Nodes, sums[0].Edges)
		}

		// Updating the older record moves it to the front.
		time.Sleep(2 * time.Millisecond)
		if _, err := s.Save(ctx, Record{ID: older.ID, Name: "older", Graph: boardDocument()}); err != nil {
			t.Fatalf("Save() update error: %v", err)
		}
		sums, err = s.List(ctx)
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if sums[0].ID != older.ID {
			t.Errorf("List()[0] = %s, want the freshly updated record", sums[0].Name)
		}
	})

	t.Run("ListEmpty", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		sums, err := s.List(context.Background())
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(sums) != 0 {
			t.Errorf("List() on empty store returned %d summaries", len(sums))
		}
	})

	t.Run("DeleteRemoves", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		rec, err := s.Save(ctx, Record{Graph: boardDocument()})
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}

		if err := s.Delete(ctx, rec.ID); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if _, err := s.Get(ctx, rec.ID); errors.GetCode(err) != errors.ErrCodeGraphNotFound {
			t.Errorf("Get() after delete error = %v, want graph not found", err)
		}
		if err := s.Delete(ctx, rec.ID); errors.GetCode(err) != errors.ErrCodeGraphNotFound {
			t.Errorf("second Delete() error = %v, want graph not found", err)
		}
	})
}

func TestFileStoreRejectsUnsafeIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	for _, id := range []string{"../escape", "a/b", ".hidden"} {
		if _, err := s.Get(ctx, id); errors.GetCode(err) != errors.ErrCodeInvalidInput {
			t.Errorf("Get(%q) error = %v, want invalid input", id, err)
		}
		if _, err := s.Save(ctx, Record{ID: id, Graph: boardDocument()}); errors.GetCode(err) != errors.ErrCodeInvalidInput {
			t.Errorf("Save(%q) error = %v, want invalid input", id, err)
		}
	}
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Save(ctx, Record{Name: "real", Graph: boardDocument()}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	writeFile(t, dir, "notes.txt", "not a graph")
	writeFile(t, dir, "broken.json", "{not json")

	sums, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(sums) != 1 || sums[0].Name != "real" {
		t.Errorf("List() = %d summaries, want just the real record", len(sums))
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := t.TempDir() + "/graphs.db"
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	rec, err := s.Save(ctx, Record{Name: "durable", Graph: boardDocument()})
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get() after reopen error: %v", err)
	}
	if got.Name != "durable" || len(got.Graph.Nodes) != 2 {
		t.Errorf("reopened record = {%s, %d nodes}, want {durable, 2 nodes}", got.Name, len(got.Graph.Nodes))
	}
}
