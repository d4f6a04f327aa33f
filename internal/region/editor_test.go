package region

import "testing"

func TestDrawGesture(t *testing.T) {
	commits := 0
	e := NewEditor(func() { commits++ })

	e.SetDrawMode(true)
	e.PointerDown(Point{X: 10, Y: 80})
	if e.State() != StateDrawing {
		t.Fatalf("expected drawing state, got %v", e.State())
	}

	e.PointerMove(Point{X: 25, Y: 90})
	if commits != 0 {
		t.Error("drag positions must not commit")
	}

	e.PointerUp(Point{X: 40, Y: 95})
	if e.State() != StateIdle {
		t.Errorf("expected idle state, got %v", e.State())
	}

	regions := e.Regions()
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	want := Region{X: 10, Y: 80, Width: 30, Height: 15}
	if regions[0] != want {
		t.Errorf("drawn region = %+v, want %+v", regions[0], want)
	}
	if commits != 1 {
		t.Errorf("expected exactly 1 commit, got %d", commits)
	}
	if e.DrawMode() {
		t.Error("draw mode should end after a successful draw")
	}
}

func TestDrawFromAnyCorner(t *testing.T) {
	e := NewEditor(nil)
	e.SetDrawMode(true)

	// drag up and to the left
	e.PointerDown(Point{X: 40, Y: 95})
	e.PointerUp(Point{X: 10, Y: 80})

	regions := e.Regions()
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	want := Region{X: 10, Y: 80, Width: 30, Height: 15}
	if regions[0] != want {
		t.Errorf("drawn region = %+v, want %+v", regions[0], want)
	}
}

func TestTinyDrawIsDiscarded(t *testing.T) {
	commits := 0
	e := NewEditor(func() { commits++ })

	e.SetDrawMode(true)
	e.PointerDown(Point{X: 50, Y: 50})
	e.PointerUp(Point{X: 50.2, Y: 50.2})

	if len(e.Regions()) != 0 {
		t.Error("sub-minimum draw should be discarded")
	}
	if commits != 0 {
		t.Error("discarded draw must not commit")
	}
	if e.State() != StateIdle {
		t.Errorf("expected idle state, got %v", e.State())
	}
}

func TestMoveGesture(t *testing.T) {
	commits := 0
	e := NewEditor(func() { commits++ })
	e.SetRegions([]Region{{X: 10, Y: 10, Width: 20, Height: 20}})

	e.PointerDown(Point{X: 15, Y: 15})
	if e.State() != StateMoving {
		t.Fatalf("expected moving state, got %v", e.State())
	}
	if e.Selected() != 0 {
		t.Errorf("expected region 0 selected, got %d", e.Selected())
	}

	e.PointerMove(Point{X: 45, Y: 45})
	e.PointerMove(Point{X: 55, Y: 55})
	if commits != 0 {
		t.Error("drag positions must not commit")
	}

	e.PointerUp(Point{X: 55, Y: 55})

	regions := e.Regions()
	want := Region{X: 50, Y: 50, Width: 20, Height: 20}
	if regions[0] != want {
		t.Errorf("moved region = %+v, want %+v", regions[0], want)
	}
	if commits != 1 {
		t.Errorf("expected exactly 1 commit per gesture, got %d", commits)
	}
	if e.Selected() != 0 {
		t.Error("selection must survive the gesture")
	}
}

func TestMoveClampsToFrame(t *testing.T) {
	e := NewEditor(nil)
	e.SetRegions([]Region{{X: 10, Y: 10, Width: 30, Height: 30}})

	e.PointerDown(Point{X: 25, Y: 25})
	e.PointerUp(Point{X: 100, Y: 100})

	r := e.Regions()[0]
	if r.X != 70 || r.Y != 70 {
		t.Errorf("expected origin clamped to (70,70), got (%v,%v)", r.X, r.Y)
	}
	if r.Width != 30 || r.Height != 30 {
		t.Errorf("size must not change while moving, got %vx%v", r.Width, r.Height)
	}
}

func TestResizeGesture(t *testing.T) {
	commits := 0
	e := NewEditor(func() { commits++ })
	e.SetRegions([]Region{{X: 10, Y: 10, Width: 20, Height: 20}})

	// select first
	e.PointerDown(Point{X: 15, Y: 15})
	e.PointerUp(Point{X: 15, Y: 15})
	commits = 0

	// grab the bottom-right handle
	e.PointerDown(Point{X: 30, Y: 30})
	if e.State() != StateResizing {
		t.Fatalf("expected resizing state, got %v", e.State())
	}

	e.PointerMove(Point{X: 60, Y: 50})
	e.PointerUp(Point{X: 60, Y: 50})

	r := e.Regions()[0]
	want := Region{X: 10, Y: 10, Width: 50, Height: 40}
	if r != want {
		t.Errorf("resized region = %+v, want %+v", r, want)
	}
	if commits != 1 {
		t.Errorf("expected exactly 1 commit, got %d", commits)
	}
}

func TestResizeEnforcesMinimumSize(t *testing.T) {
	e := NewEditor(nil)
	e.SetRegions([]Region{{X: 10, Y: 10, Width: 20, Height: 20}})

	e.PointerDown(Point{X: 15, Y: 15})
	e.PointerUp(Point{X: 15, Y: 15})

	e.PointerDown(Point{X: 30, Y: 30})
	e.PointerUp(Point{X: 5, Y: 5}) // drag past the origin

	r := e.Regions()[0]
	if r.Width != MinResizeSize || r.Height != MinResizeSize {
		t.Errorf(
			"expected size floored at %v, got %vx%v",
			MinResizeSize, r.Width, r.Height,
		)
	}
}

func TestResizeNearFrameEdgeBoundWins(t *testing.T) {
	e := NewEditor(nil)
	e.SetRegions([]Region{{X: 99.5, Y: 10, Width: 0.5, Height: 20}})

	e.PointerDown(Point{X: 99.7, Y: 15})
	e.PointerUp(Point{X: 99.7, Y: 15})

	e.PointerDown(Point{X: 100, Y: 30})
	if e.State() != StateResizing {
		t.Fatalf("expected resizing state, got %v", e.State())
	}
	e.PointerUp(Point{X: 100, Y: 60})

	r := e.Regions()[0]
	// the origin sits closer than MinResizeSize to the edge, so the frame
	// bound overrides the floor
	if r.Width != 0.5 {
		t.Errorf("expected width capped at the frame edge, got %v", r.Width)
	}
	if r.Height != 50 {
		t.Errorf("height = %v, want 50", r.Height)
	}
	if r.X+r.Width > 100 || r.Y+r.Height > 100 {
		t.Errorf("region exceeds the frame: %+v", r)
	}
}

func TestPointerDownOnEmptySpaceClearsSelection(t *testing.T) {
	e := NewEditor(nil)
	e.SetRegions([]Region{{X: 10, Y: 10, Width: 20, Height: 20}})

	e.PointerDown(Point{X: 15, Y: 15})
	e.PointerUp(Point{X: 15, Y: 15})
	if e.Selected() != 0 {
		t.Fatal("expected region selected")
	}

	e.PointerDown(Point{X: 90, Y: 90})
	if e.Selected() != NoSelection {
		t.Error("clicking empty space should clear the selection")
	}
}

func TestRemoveSelected(t *testing.T) {
	commits := 0
	e := NewEditor(func() { commits++ })
	e.SetRegions([]Region{
		{X: 10, Y: 10, Width: 20, Height: 20},
		{X: 50, Y: 50, Width: 20, Height: 20},
	})

	if e.RemoveSelected() {
		t.Error("removing with no selection should report false")
	}

	e.PointerDown(Point{X: 55, Y: 55})
	e.PointerUp(Point{X: 55, Y: 55})
	commits = 0

	if !e.RemoveSelected() {
		t.Fatal("expected removal to succeed")
	}
	if len(e.Regions()) != 1 {
		t.Errorf("expected 1 region left, got %d", len(e.Regions()))
	}
	if e.Selected() != NoSelection {
		t.Error("selection should clear after removal")
	}
	if commits != 1 {
		t.Errorf("expected exactly 1 commit, got %d", commits)
	}
}

func TestSetRegionsResetsGestureState(t *testing.T) {
	e := NewEditor(nil)
	e.SetRegions([]Region{{X: 10, Y: 10, Width: 20, Height: 20}})

	e.PointerDown(Point{X: 15, Y: 15}) // mid-gesture
	e.SetRegions(nil)

	if e.State() != StateIdle {
		t.Errorf("expected idle after restore, got %v", e.State())
	}
	if e.Selected() != NoSelection {
		t.Error("expected selection cleared after restore")
	}
	if len(e.Regions()) != 0 {
		t.Error("expected empty region list")
	}
}

func TestPointerDownIgnoredMidGesture(t *testing.T) {
	e := NewEditor(nil)
	e.SetDrawMode(true)
	e.PointerDown(Point{X: 10, Y: 10})

	// second down while drawing must not restart the gesture
	e.PointerDown(Point{X: 50, Y: 50})
	e.PointerUp(Point{X: 30, Y: 30})

	regions := e.Regions()
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if regions[0].X != 10 || regions[0].Y != 10 {
		t.Errorf("anchor moved mid-gesture: %+v", regions[0])
	}
}

func TestEnteringDrawModeClearsSelection(t *testing.T) {
	e := NewEditor(nil)
	e.SetRegions([]Region{{X: 10, Y: 10, Width: 20, Height: 20}})

	e.PointerDown(Point{X: 15, Y: 15})
	e.PointerUp(Point{X: 15, Y: 15})

	e.SetDrawMode(true)
	if e.Selected() != NoSelection {
		t.Error("entering draw mode should clear the selection")
	}
}
