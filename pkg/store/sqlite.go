package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/casetrace/linkboard/pkg/errors"
)

// SQLiteStore persists graphs in a single-file embedded database. The
// driver is pure Go, so the backend works without cgo or a system
// sqlite installation.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path, creating it and the schema
// if needed. Pass ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open database %s", path)
	}
	// A pooled second connection would open a distinct :memory: database.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "migrate database %s", path)
	}
	return s, nil
}

// migrate creates the schema if it doesn't exist.
func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS graphs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		node_count INTEGER NOT NULL DEFAULT 0,
		edge_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		document TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_graphs_updated ON graphs(updated_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save writes a record.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) (Record, error) {
	var existing time.Time
	if rec.ID != "" {
		var stamp string
		err := s.db.QueryRowContext(ctx,
			`SELECT created_at FROM graphs WHERE id = ?`, rec.ID,
		).Scan(&stamp)
		switch {
		case err == sql.ErrNoRows:
		case err != nil:
			return Record{}, errors.Wrap(errors.ErrCodeStore, err, "look up graph %s", rec.ID)
		default:
			existing, err = parseStamp(stamp)
			if err != nil {
				return Record{}, err
			}
		}
	}
	rec = prepare(rec, existing)

	doc, err := json.Marshal(rec.Graph)
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "encode graph %s", rec.ID)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO graphs (id, name, node_count, edge_count, created_at, updated_at, document)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   node_count = excluded.node_count,
		   edge_count = excluded.edge_count,
		   updated_at = excluded.updated_at,
		   document = excluded.document`,
		rec.ID, rec.Name, len(rec.Graph.Nodes), len(rec.Graph.Edges),
		formatStamp(rec.CreatedAt), formatStamp(rec.UpdatedAt), string(doc),
	)
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "write graph %s", rec.ID)
	}
	return rec, nil
}

// Get retrieves a record by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, created_at, updated_at, document FROM graphs WHERE id = ?`, id,
	)

	var rec Record
	var created, updated, doc string
	err := row.Scan(&rec.Name, &created, &updated, &doc)
	if err == sql.ErrNoRows {
		return Record{}, errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id)
	}
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "read graph %s", id)
	}

	rec.ID = id
	if rec.CreatedAt, err = parseStamp(created); err != nil {
		return Record{}, err
	}
	if rec.UpdatedAt, err = parseStamp(updated); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(doc), &rec.Graph); err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "decode graph %s", id)
	}
	return rec, nil
}

// List returns summaries, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, node_count, edge_count, created_at, updated_at
		 FROM graphs ORDER BY updated_at DESC, id ASC`,
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list graphs")
	}
	defer rows.Close()

	var sums []Summary
	for rows.Next() {
		var (
			sum              Summary
			created, updated string
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Nodes, &sum.Edges, &created, &updated); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "scan graph summary")
		}
		if sum.CreatedAt, err = parseStamp(created); err != nil {
			return nil, err
		}
		if sum.UpdatedAt, err = parseStamp(updated); err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list graphs")
	}
	return sums, nil
}

// Delete removes a record.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM graphs WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete graph %s", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// stampLayout is RFC 3339 with a fixed-width fraction: RFC3339Nano
// trims trailing zeros, which would break the lexical ORDER BY on the
// updated_at column.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatStamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

func parseStamp(s string) (time.Time, error) {
	t, err := time.Parse(stampLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeStore, err, "parse stored timestamp %q", s)
	}
	return t, nil
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
