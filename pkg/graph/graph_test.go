package graph

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode(t *testing.T) {
	tests := []struct {
		name    string
		node    Node
		setup   func(g *Graph)
		wantErr error
	}{
		{
			name: "Valid",
			node: Node{ID: "person-1", Type: "person"},
		},
		{
			name:    "EmptyID",
			node:    Node{ID: ""},
			wantErr: ErrInvalidNodeID,
		},
		{
			name: "Duplicate",
			node: Node{ID: "person-1"},
			setup: func(g *Graph) {
				_ = g.AddNode(Node{ID: "person-1"})
			},
			wantErr: ErrDuplicateNodeID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			if tt.setup != nil {
				tt.setup(g)
			}
			err := g.AddNode(tt.node)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddNode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddNodeInitializesMeta(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	n, ok := g.Node("a")
	if !ok {
		t.Fatal("Node(a) not found")
	}
	if n.Meta == nil {
		t.Error("Meta should be initialized, got nil")
	}
}

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name    string
		edge    Edge
		wantErr error
	}{
		{
			name: "Valid",
			edge: Edge{Source: "a", Target: "b"},
		},
		{
			name:    "UnknownSource",
			edge:    Edge{Source: "ghost", Target: "b"},
			wantErr: ErrUnknownSourceNode,
		},
		{
			name:    "UnknownTarget",
			edge:    Edge{Source: "a", Target: "ghost"},
			wantErr: ErrUnknownTargetNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			_ = g.AddNode(Node{ID: "a"})
			_ = g.AddNode(Node{ID: "b"})
			err := g.AddEdge(tt.edge)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNodesKeepInsertionOrder(t *testing.T) {
	g := New(nil)
	ids := []string{"delta", "alpha", "charlie", "bravo"}
	for _, id := range ids {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}

	if got := g.NodeIDs(); !slices.Equal(got, ids) {
		t.Errorf("NodeIDs() = %v, want %v", got, ids)
	}

	nodes := g.Nodes()
	for i, n := range nodes {
		if n.ID != ids[i] {
			t.Errorf("Nodes()[%d].ID = %s, want %s", i, n.ID, ids[i])
		}
	}
}

func TestNeighborsDeduplicateParallelEdges(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddNode(Node{ID: "c"})

	// Three parallel edges plus the reverse direction: still one neighbor.
	_ = g.AddEdge(Edge{Source: "a", Target: "b"})
	_ = g.AddEdge(Edge{Source: "a", Target: "b"})
	_ = g.AddEdge(Edge{Source: "b", Target: "a"})
	_ = g.AddEdge(Edge{Source: "a", Target: "c"})

	if got := g.Neighbors("a"); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("Neighbors(a) = %v, want [b c]", got)
	}
	if got := g.Degree("a"); got != 2 {
		t.Errorf("Degree(a) = %d, want 2", got)
	}
	if got := g.Degree("b"); got != 1 {
		t.Errorf("Degree(b) = %d, want 1", got)
	}
}

func TestSelfLoopAddsNoNeighbor(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddEdge(Edge{Source: "a", Target: "a"})

	if got := g.Degree("a"); got != 0 {
		t.Errorf("Degree(a) = %d, want 0", got)
	}
	if got := len(g.Incident("a")); got != 1 {
		t.Errorf("len(Incident(a)) = %d, want 1", got)
	}
}

func TestIncidentCoversBothDirections(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddNode(Node{ID: "c"})
	_ = g.AddEdge(Edge{Source: "a", Target: "b", Label: "out"})
	_ = g.AddEdge(Edge{Source: "c", Target: "a", Label: "in"})
	_ = g.AddEdge(Edge{Source: "b", Target: "c", Label: "far"})

	inc := g.Incident("a")
	if len(inc) != 2 {
		t.Fatalf("len(Incident(a)) = %d, want 2", len(inc))
	}
	if inc[0].Label != "out" || inc[1].Label != "in" {
		t.Errorf("Incident(a) labels = [%s %s], want [out in]", inc[0].Label, inc[1].Label)
	}
}

func TestEdgeKey(t *testing.T) {
	e := Edge{Source: "person-1", Target: "acct-9"}
	if got := e.Key(); got != "person-1-acct-9" {
		t.Errorf("Key() = %s, want person-1-acct-9", got)
	}
	if got := EdgeKey("a", "b"); got != "a-b" {
		t.Errorf("EdgeKey(a, b) = %s, want a-b", got)
	}
}

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"LabelSet", Node{ID: "n1", Label: "Dana Reyes"}, "Dana Reyes"},
		{"LabelEmpty", Node{ID: "n1"}, "n1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.DisplayLabel(); got != tt.want {
				t.Errorf("DisplayLabel() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSizeVal(t *testing.T) {
	if got := (Node{}).SizeVal(); got != 1 {
		t.Errorf("zero Val SizeVal() = %v, want 1", got)
	}
	if got := (Node{Val: 2.5}).SizeVal(); got != 2.5 {
		t.Errorf("SizeVal() = %v, want 2.5", got)
	}
}

func TestValidate(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{Source: "a", Target: "b"})

	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	// Corrupt the arena directly to simulate a bad deserialization.
	delete(g.nodes, "b")
	if err := g.Validate(); !errors.Is(err, ErrInvalidEdgeEndpoint) {
		t.Errorf("Validate() = %v, want ErrInvalidEdgeEndpoint", err)
	}
}
