package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/httputil"
)

// Load resolves the document named by the options and applies size caps.
func Load(ctx context.Context, client *httputil.Client, opts Options) (graph.Document, error) {
	raw, err := fetchSource(ctx, client, opts)
	if err != nil {
		return graph.Document{}, err
	}
	return parseDocument(raw, opts)
}

// fetchSource returns the raw document bytes from whichever input the
// options carry. In-memory documents serialize through the same byte path
// so all three inputs share one content hash.
func fetchSource(ctx context.Context, client *httputil.Client, opts Options) ([]byte, error) {
	switch {
	case opts.Document != nil:
		data, err := json.Marshal(opts.Document)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "serialize document")
		}
		return data, nil

	case isRemote(opts.Source):
		if client == nil {
			client = httputil.NewClient(httputil.WithLogger(opts.Logger))
		}
		return client.Fetch(ctx, opts.Source)

	default:
		data, err := os.ReadFile(opts.Source)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.New(errors.ErrCodeFileNotFound, "document file not found: %s", opts.Source)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read document %s", opts.Source)
		}
		return data, nil
	}
}

// parseDocument decodes raw document bytes and applies the size caps.
func parseDocument(raw []byte, opts Options) (graph.Document, error) {
	doc, err := graph.UnmarshalDocument(raw)
	if err != nil {
		return graph.Document{}, errors.Wrap(errors.ErrCodeInvalidGraph, err, "parse graph document")
	}

	doc, droppedNodes, droppedEdges := capDocument(doc, opts.MaxNodes, opts.MaxEdges)
	if (droppedNodes > 0 || droppedEdges > 0) && opts.Logger != nil {
		opts.Logger.Warn("document exceeds size caps",
			"kept_nodes", len(doc.Nodes),
			"dropped_nodes", droppedNodes,
			"kept_edges", len(doc.Edges),
			"dropped_edges", droppedEdges)
	}
	return doc, nil
}

// capDocument truncates the document to the given budgets. Nodes keep
// document order; edges referencing a dropped node are removed before the
// edge budget applies.
func capDocument(doc graph.Document, maxNodes, maxEdges int) (graph.Document, int, int) {
	droppedNodes := 0
	if maxNodes > 0 && len(doc.Nodes) > maxNodes {
		droppedNodes = len(doc.Nodes) - maxNodes
		doc.Nodes = doc.Nodes[:maxNodes]
	}

	kept := make(map[string]struct{}, len(doc.Nodes))
	for _, n := range doc.Nodes {
		kept[n.ID] = struct{}{}
	}

	edges := make([]graph.DocumentEdge, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		if _, ok := kept[e.Source]; !ok {
			continue
		}
		if _, ok := kept[e.Target]; !ok {
			continue
		}
		edges = append(edges, e)
	}
	droppedEdges := len(doc.Edges) - len(edges)

	if maxEdges > 0 && len(edges) > maxEdges {
		droppedEdges = droppedEdges + len(edges) - maxEdges
		edges = edges[:maxEdges]
	}
	doc.Edges = edges

	return doc, droppedNodes, droppedEdges
}

// isRemote reports whether the source names an http(s) URL.
func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
