package layout

import (
	"math"

	"github.com/casetrace/linkboard/pkg/graph"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

const (
	// DefaultRepulsion scales the pairwise push between nodes.
	DefaultRepulsion = 2000.0

	// DefaultSpringLength is the rest length of edge springs in world
	// units.
	DefaultSpringLength = 80.0

	// DefaultSpringStiffness scales the pull of edge springs.
	DefaultSpringStiffness = 0.05

	// DefaultGravity pulls nodes toward the origin to prevent drift.
	DefaultGravity = 0.01

	// DefaultVelocityDecay damps velocity each tick, in (0,1).
	DefaultVelocityDecay = 0.4

	// DefaultCooldownTicks is the tick budget before the simulation
	// settles.
	DefaultCooldownTicks = 300

	// seedRadius and goldenAngle place nodes on a deterministic spiral
	// before the first tick.
	seedRadius  = 10.0
	goldenAngle = math.Pi * (3 - 2.2360679774997896) // pi * (3 - sqrt 5)

	tickDT = 1.0
)

// ForceConfig tunes the force simulation. Zero fields fall back to the
// defaults above.
type ForceConfig struct {
	Repulsion       float64
	SpringLength    float64
	SpringStiffness float64
	Gravity         float64
	VelocityDecay   float64
	CooldownTicks   int
}

func (c ForceConfig) withDefaults() ForceConfig {
	if c.Repulsion <= 0 {
		c.Repulsion = DefaultRepulsion
	}
	if c.SpringLength <= 0 {
		c.SpringLength = DefaultSpringLength
	}
	if c.SpringStiffness <= 0 {
		c.SpringStiffness = DefaultSpringStiffness
	}
	if c.Gravity <= 0 {
		c.Gravity = DefaultGravity
	}
	if c.VelocityDecay <= 0 || c.VelocityDecay >= 1 {
		c.VelocityDecay = DefaultVelocityDecay
	}
	if c.CooldownTicks <= 0 {
		c.CooldownTicks = DefaultCooldownTicks
	}
	return c
}

// =============================================================================
// Force Engine
// =============================================================================

// Force is a force-directed layout: pairwise repulsion, springs along
// edges, a weak centering gravity, and velocity damping, advanced one tick
// per frame until the cooldown budget runs out.
//
// Nodes seed deterministically on a spiral around the origin, so two runs
// over the same graph produce identical positions.
type Force struct {
	cfg    ForceConfig
	ids    []string
	index  map[string]int
	edges  [][2]int
	px, py []float64
	vx, vy []float64
	pinned map[int]Point
	ticks  int
}

// NewForce builds a force engine over the graph with the cooldown budget
// fully charged.
func NewForce(g *graph.Graph, cfg ForceConfig) *Force {
	cfg = cfg.withDefaults()

	ids := g.NodeIDs()
	f := &Force{
		cfg:    cfg,
		ids:    ids,
		index:  make(map[string]int, len(ids)),
		px:     make([]float64, len(ids)),
		py:     make([]float64, len(ids)),
		vx:     make([]float64, len(ids)),
		vy:     make([]float64, len(ids)),
		pinned: make(map[int]Point),
		ticks:  cfg.CooldownTicks,
	}
	for i, id := range ids {
		f.index[id] = i
		// Phyllotaxis seeding: radius grows with sqrt(i), angle by the
		// golden angle, which spreads nodes without collisions.
		r := seedRadius * math.Sqrt(float64(i))
		a := float64(i) * goldenAngle
		f.px[i] = r * math.Cos(a)
		f.py[i] = r * math.Sin(a)
	}
	for _, e := range g.Edges() {
		si, okS := f.index[e.Source]
		ti, okT := f.index[e.Target]
		if !okS || !okT || si == ti {
			continue
		}
		f.edges = append(f.edges, [2]int{si, ti})
	}
	return f
}

// Positions implements [Engine]. The returned map is a snapshot.
func (f *Force) Positions() Positions {
	out := make(Positions, len(f.ids))
	for i, id := range f.ids {
		out[id] = Point{X: f.px[i], Y: f.py[i]}
	}
	return out
}

// Step implements [Engine]: one simulation tick, false once settled.
func (f *Force) Step() bool {
	if f.ticks <= 0 || len(f.ids) == 0 {
		return false
	}
	f.ticks--
	f.tick()
	return true
}

// Reheat implements [Engine], recharging the cooldown budget.
func (f *Force) Reheat() {
	f.ticks = f.cfg.CooldownTicks
}

// Stop implements [Engine], settling the simulation immediately.
func (f *Force) Stop() {
	f.ticks = 0
}

// Pin implements [Engine]: the node holds p through subsequent ticks.
func (f *Force) Pin(id string, p Point) {
	i, ok := f.index[id]
	if !ok {
		return
	}
	f.pinned[i] = p
	f.px[i], f.py[i] = p.X, p.Y
	f.vx[i], f.vy[i] = 0, 0
}

// Unpin implements [Engine], releasing the node to the simulation.
func (f *Force) Unpin(id string) {
	if i, ok := f.index[id]; ok {
		delete(f.pinned, i)
	}
}

func (f *Force) tick() {
	n := len(f.ids)

	// Pairwise repulsion, inverse-square with a floor against blowup.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := f.px[j] - f.px[i]
			dy := f.py[j] - f.py[i]
			dist2 := dx*dx + dy*dy + 0.01
			force := f.cfg.Repulsion / dist2
			invDist := 1.0 / math.Sqrt(dist2)
			fx := force * dx * invDist
			fy := force * dy * invDist
			f.vx[i] -= fx
			f.vy[i] -= fy
			f.vx[j] += fx
			f.vy[j] += fy
		}
	}

	// Springs along edges toward the rest length.
	for _, e := range f.edges {
		si, ti := e[0], e[1]
		dx := f.px[ti] - f.px[si]
		dy := f.py[ti] - f.py[si]
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			continue
		}
		diff := dist - f.cfg.SpringLength
		fx := f.cfg.SpringStiffness * diff * dx / dist
		fy := f.cfg.SpringStiffness * diff * dy / dist
		f.vx[si] += fx
		f.vy[si] += fy
		f.vx[ti] -= fx
		f.vy[ti] -= fy
	}

	// Centering gravity toward the origin.
	for i := 0; i < n; i++ {
		f.vx[i] -= f.px[i] * f.cfg.Gravity
		f.vy[i] -= f.py[i] * f.cfg.Gravity
	}

	// Integrate with damping; pinned nodes hold their point.
	damping := 1 - f.cfg.VelocityDecay
	for i := 0; i < n; i++ {
		if p, ok := f.pinned[i]; ok {
			f.px[i], f.py[i] = p.X, p.Y
			f.vx[i], f.vy[i] = 0, 0
			continue
		}
		f.vx[i] *= damping
		f.vy[i] *= damping
		f.px[i] += f.vx[i] * tickDT
		f.py[i] += f.vy[i] * tickDT
	}
}

var _ Engine = (*Force)(nil)
