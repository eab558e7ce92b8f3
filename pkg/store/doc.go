// Package store persists investigation graphs.
//
// # Overview
//
// A [Store] keeps graph documents with identity and timestamps so boards
// can be listed, reopened, and shared between the CLI and the preview
// server. Four backends implement the interface:
//
//   - [MemoryStore]: process-local, for tests and throwaway sessions
//   - [FileStore]: one JSON file per graph under a directory
//   - [SQLiteStore]: single-file embedded database
//   - [MongoStore]: shared database for team deployments
//
// Stores persist the graph document only. Layout positions, viewport
// state, and selections are session state and never written here.
//
// # Basic Usage
//
//	st, err := store.NewFileStore("~/.local/share/linkboard/graphs")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	rec, err := st.Save(ctx, store.Record{Name: "acme-case", Graph: doc})
//	if err != nil {
//	    return err
//	}
//	fmt.Println("saved", rec.ID)
//
// Save assigns a uuid when the record has no id and stamps timestamps;
// saving an existing id replaces the document but keeps its creation
// time. Lookups of unknown ids fail with [errors.ErrCodeGraphNotFound].
package store
