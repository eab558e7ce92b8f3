package graph

import (
	"math"
	"slices"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuildDropsUnknownEndpoints(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}}
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "ghost"},
		{Source: "ghost", Target: "b"},
		{Source: "", Target: "a"},
	}

	g := Build(nodes, edges)

	if got := g.EdgeCount(); got != 1 {
		t.Errorf("EdgeCount() = %d, want 1", got)
	}
	if got := g.DroppedEdges(); got != 3 {
		t.Errorf("DroppedEdges() = %d, want 3", got)
	}
}

func TestBuildDropsDuplicateNodes(t *testing.T) {
	nodes := []Node{
		{ID: "a", Label: "first"},
		{ID: "a", Label: "second"},
		{ID: "b"},
	}

	g := Build(nodes, nil)

	if got := g.NodeCount(); got != 2 {
		t.Errorf("NodeCount() = %d, want 2", got)
	}
	if got := g.DroppedNodes(); got != 1 {
		t.Errorf("DroppedNodes() = %d, want 1", got)
	}
	n, _ := g.Node("a")
	if n.Label != "first" {
		t.Errorf("kept node label = %s, want first", n.Label)
	}
}

func TestCurvatureFansParallelEdges(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge
		want  []float64
	}{
		{
			name:  "LoneEdgeStaysStraight",
			edges: []Edge{{Source: "a", Target: "b"}},
			want:  []float64{0},
		},
		{
			name: "PairSplitsSymmetrically",
			edges: []Edge{
				{Source: "a", Target: "b"},
				{Source: "a", Target: "b"},
			},
			want: []float64{-0.1, 0.1},
		},
		{
			name: "TripleKeepsCenterStraight",
			edges: []Edge{
				{Source: "a", Target: "b"},
				{Source: "a", Target: "b"},
				{Source: "a", Target: "b"},
			},
			want: []float64{-0.2, 0, 0.2},
		},
		{
			name: "OppositeDirectionsShareGroup",
			edges: []Edge{
				{Source: "a", Target: "b"},
				{Source: "b", Target: "a"},
			},
			want: []float64{-0.1, 0.1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build([]Node{{ID: "a"}, {ID: "b"}}, tt.edges)

			got := make([]float64, 0, g.EdgeCount())
			for _, e := range g.Edges() {
				got = append(got, e.Curvature)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("edge count = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !approxEqual(got[i], tt.want[i]) {
					t.Errorf("curvature[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCurvatureValuesAreDistinctWithinGroup(t *testing.T) {
	edges := make([]Edge, 5)
	for i := range edges {
		edges[i] = Edge{Source: "a", Target: "b"}
	}

	g := Build([]Node{{ID: "a"}, {ID: "b"}}, edges)

	seen := make(map[float64]bool)
	sum := 0.0
	for _, e := range g.Edges() {
		if seen[e.Curvature] {
			t.Errorf("curvature %v assigned twice", e.Curvature)
		}
		seen[e.Curvature] = true
		sum += e.Curvature
	}
	if !approxEqual(sum, 0) {
		t.Errorf("curvature sum = %v, want 0", sum)
	}
}

func TestCurvatureLeavesIndependentPairsAlone(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "a", Target: "c"},
	}

	g := Build(nodes, edges)

	for _, e := range g.Edges() {
		if e.Curvature != 0 {
			t.Errorf("edge %s curvature = %v, want 0", e.Key(), e.Curvature)
		}
		if e.GroupSize != 1 {
			t.Errorf("edge %s group size = %d, want 1", e.Key(), e.GroupSize)
		}
	}
}

func TestWithCurvatureStep(t *testing.T) {
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "b"},
	}

	g := Build([]Node{{ID: "a"}, {ID: "b"}}, edges, WithCurvatureStep(0.5))

	got := g.Edges()
	if !approxEqual(got[0].Curvature, -0.25) || !approxEqual(got[1].Curvature, 0.25) {
		t.Errorf("curvatures = [%v %v], want [-0.25 0.25]", got[0].Curvature, got[1].Curvature)
	}
}

func TestWeightList(t *testing.T) {
	nodes := []Node{{ID: "hub"}, {ID: "leaf"}, {ID: "mid"}, {ID: "lone"}}
	edges := []Edge{
		{Source: "hub", Target: "leaf"},
		{Source: "hub", Target: "mid"},
		{Source: "hub", Target: "lone"},
		{Source: "mid", Target: "leaf"},
	}

	g := Build(nodes, edges)

	want := []string{"hub", "leaf", "mid", "lone"}
	if got := g.WeightList(); !slices.Equal(got, want) {
		t.Errorf("WeightList() = %v, want %v", got, want)
	}
}

func TestWeightListTiesKeepInsertionOrder(t *testing.T) {
	nodes := []Node{{ID: "z"}, {ID: "a"}, {ID: "m"}}
	g := Build(nodes, nil)

	want := []string{"z", "a", "m"}
	if got := g.WeightList(); !slices.Equal(got, want) {
		t.Errorf("WeightList() = %v, want %v", got, want)
	}
}
