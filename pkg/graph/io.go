package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Graph File API
// =============================================================================

// Write encodes a graph as an indented JSON document and writes it to w.
// The output can be re-imported with [Read] for round-trip processing.
func Write(g *Graph, w io.Writer) error {
	doc := FromGraph(g)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Export writes a graph to a JSON file at path.
// This is a convenience wrapper around [Write] for file-based output.
func Export(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// Read decodes a JSON graph document from r and returns the derived graph.
// Malformed records inside a well-formed document are dropped leniently;
// only undecodable JSON is an error.
func Read(r io.Reader, opts ...BuildOption) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToGraph(doc, opts...), nil
}

// Import reads a JSON graph document from the file at path.
// This is a convenience wrapper around [Read] for file-based input.
func Import(path string, opts ...BuildOption) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, opts...)
}
