package layout

import "testing"

func TestStaticServesFixedPositions(t *testing.T) {
	s := NewStatic(Positions{
		"a": {X: 10, Y: 20},
		"b": {X: -5, Y: 0},
	})

	if s.Step() {
		t.Error("Step() = true, static layouts are always settled")
	}

	pos := s.Positions()
	if len(pos) != 2 {
		t.Fatalf("Positions() has %d entries, want 2", len(pos))
	}
	if pos["a"] != (Point{X: 10, Y: 20}) {
		t.Errorf("Positions()[a] = %+v, want {10 20}", pos["a"])
	}

	// Snapshots are copies.
	pos["a"] = Point{X: 999, Y: 999}
	if got := s.Positions()["a"]; got != (Point{X: 10, Y: 20}) {
		t.Errorf("mutating a snapshot changed the engine: %+v", got)
	}
}

func TestStaticPinOverlay(t *testing.T) {
	s := NewStatic(Positions{"a": {X: 1, Y: 1}})

	s.Pin("a", Point{X: 50, Y: 60})
	if got := s.Positions()["a"]; got != (Point{X: 50, Y: 60}) {
		t.Errorf("pinned position = %+v, want {50 60}", got)
	}

	s.Unpin("a")
	if got := s.Positions()["a"]; got != (Point{X: 1, Y: 1}) {
		t.Errorf("position after unpin = %+v, want {1 1}", got)
	}

	// Pinning an id the layout doesn't know leaves the snapshot alone.
	s.Pin("ghost", Point{X: 7, Y: 7})
	if _, ok := s.Positions()["ghost"]; ok {
		t.Error("Positions() grew an entry for an unknown pin")
	}
}
