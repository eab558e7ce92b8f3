package declutter_test

import (
	"fmt"
	"sort"

	"github.com/casetrace/linkboard/pkg/declutter"
	"github.com/casetrace/linkboard/pkg/viewport"
)

// ExampleSelect runs the full declutter pass over three candidates: two
// crowd one spot, the third stands apart. The selected node wins its spot
// regardless of priority.
func ExampleSelect() {
	vp := viewport.New(800, 600)
	cfg := declutter.DefaultConfig()

	cands := []declutter.Candidate{
		{ID: "suspect", X: 400, Y: 300, Radius: 5, Label: "D. Reyes", Degree: 1},
		{ID: "rival", X: 405, Y: 302, Radius: 5, Label: "Shell Co", Degree: 18},
		{ID: "bank", X: 100, Y: 100, Radius: 5, Label: "Bank", Degree: 3},
	}

	boxes := declutter.ComputeBoxes(cands, vp, 1, cfg)
	selected := map[string]struct{}{"suspect": {}}
	visible := declutter.Select(boxes, selected, nil, len(cands), cfg)

	shown := make([]string, 0, len(visible))
	for id := range visible {
		shown = append(shown, id)
	}
	sort.Strings(shown)
	fmt.Println(shown)
	// Output: [bank suspect]
}
