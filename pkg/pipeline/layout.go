package pipeline

import (
	"context"

	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/layout"
)

// =============================================================================
// Layout Computation
// =============================================================================

// ComputeLayout computes settled world-space positions for the graph using
// the engine named by the options.
//
// The force engine runs its full cooldown before returning, so batch runs
// always see the equilibrium the live view animates toward. The dot engine
// is settled from the start.
func ComputeLayout(ctx context.Context, g *graph.Graph, opts Options) (layout.Positions, error) {
	if opts.IsDot() {
		eng, err := layout.NewDot(ctx, g)
		if err != nil {
			return nil, err
		}
		return eng.Positions(), nil
	}
	return settleForce(ctx, g, opts.Force)
}

// settleForce runs the force simulation until the cooldown budget is
// spent. The context is checked between ticks; large boards spend most of
// their layout time here.
func settleForce(ctx context.Context, g *graph.Graph, cfg layout.ForceConfig) (layout.Positions, error) {
	sim := layout.NewForce(g, cfg)
	for sim.Step() {
		select {
		case <-ctx.Done():
			sim.Stop()
			return nil, ctx.Err()
		default:
		}
	}
	return sim.Positions(), nil
}
