package region

import "math"

// State is the editor's pointer-interaction state.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateMoving
	StateResizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateMoving:
		return "moving"
	case StateResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Point is a pointer position in percent-of-frame units.
type Point struct {
	X float64
	Y float64
}

// handleRadius is the hit tolerance, in percent units, around the selected
// region's bottom-right corner that starts a resize.
const handleRadius = 2.0

// NoSelection is the selection index when no region is selected.
const NoSelection = -1

// Editor owns the mask region list and the gesture state machine that
// creates, selects, moves and resizes regions. Pointer handlers return
// immediately and never block.
//
// Every completed gesture that adds, moves, resizes or removes a region
// fires the commit callback exactly once; intermediate drag positions never
// commit, or history would grow per pixel of movement.
type Editor struct {
	regions  []Region
	state    State
	drawMode bool
	selected int

	anchor Point // draw gesture origin
	offset Point // pointer-to-origin offset while moving

	onCommit func()
}

// NewEditor creates an editor. onCommit may be nil.
func NewEditor(onCommit func()) *Editor {
	return &Editor{
		selected: NoSelection,
		onCommit: onCommit,
	}
}

// State returns the current gesture state.
func (e *Editor) State() State { return e.state }

// Selected returns the index of the selected region, or NoSelection.
func (e *Editor) Selected() int { return e.selected }

// DrawMode reports whether the next pointer-down starts a new region.
func (e *Editor) DrawMode() bool { return e.drawMode }

// SetDrawMode toggles draw mode. Entering draw mode clears the selection.
func (e *Editor) SetDrawMode(on bool) {
	e.drawMode = on
	if on {
		e.selected = NoSelection
	}
}

// Regions returns a copy of the current region list.
func (e *Editor) Regions() []Region {
	return Clone(e.regions)
}

// SetRegions replaces the region list, used when restoring a history
// snapshot. Any in-flight gesture and selection are dropped.
func (e *Editor) SetRegions(regions []Region) {
	e.regions = Clone(regions)
	e.state = StateIdle
	e.selected = NoSelection
}

// PointerDown starts a gesture at p.
func (e *Editor) PointerDown(p Point) {
	if e.state != StateIdle {
		return
	}
	p = clampPoint(p)

	if e.drawMode {
		e.state = StateDrawing
		e.anchor = p
		return
	}

	if e.selected != NoSelection && e.onHandle(p) {
		e.state = StateResizing
		return
	}

	for i := range e.regions {
		if e.regions[i].Contains(p.X, p.Y) {
			e.selected = i
			e.state = StateMoving
			e.offset = Point{X: p.X - e.regions[i].X, Y: p.Y - e.regions[i].Y}
			return
		}
	}

	e.selected = NoSelection
}

// PointerMove updates the in-flight gesture. Drag positions mutate the
// region in place but are never committed individually.
func (e *Editor) PointerMove(p Point) {
	p = clampPoint(p)

	switch e.state {
	case StateMoving:
		r := &e.regions[e.selected]
		r.X = clamp(p.X-e.offset.X, 0, 100-r.Width)
		r.Y = clamp(p.Y-e.offset.Y, 0, 100-r.Height)
	case StateResizing:
		// frame bound wins over the size floor: a region whose origin sits
		// within MinResizeSize of the frame edge can only grow to the edge
		r := &e.regions[e.selected]
		r.Width = clamp(math.Max(p.X-r.X, MinResizeSize), 0, 100-r.X)
		r.Height = clamp(math.Max(p.Y-r.Y, MinResizeSize), 0, 100-r.Y)
	}
}

// PointerUp completes the gesture at p.
func (e *Editor) PointerUp(p Point) {
	p = clampPoint(p)

	switch e.state {
	case StateDrawing:
		e.state = StateIdle
		r := rectFrom(e.anchor, p)
		if r.Width < MinDrawSize || r.Height < MinDrawSize {
			return // too small, discard silently
		}
		e.regions = append(e.regions, r)
		e.drawMode = false
		e.commit()
	case StateMoving, StateResizing:
		e.PointerMove(p)
		e.state = StateIdle
		// selection survives the gesture
		e.commit()
	}
}

// RemoveSelected deletes the selected region and reports whether anything
// was removed.
func (e *Editor) RemoveSelected() bool {
	if e.selected == NoSelection || e.state != StateIdle {
		return false
	}
	i := e.selected
	e.regions = append(e.regions[:i], e.regions[i+1:]...)
	e.selected = NoSelection
	e.commit()
	return true
}

func (e *Editor) onHandle(p Point) bool {
	r := e.regions[e.selected]
	cornerX := r.X + r.Width
	cornerY := r.Y + r.Height
	return math.Abs(p.X-cornerX) <= handleRadius &&
		math.Abs(p.Y-cornerY) <= handleRadius
}

func (e *Editor) commit() {
	if e.onCommit != nil {
		e.onCommit()
	}
}

func rectFrom(a, b Point) Region {
	r := Region{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
	return r.Clamped()
}

func clampPoint(p Point) Point {
	return Point{X: clamp(p.X, 0, 100), Y: clamp(p.Y, 0, 100)}
}
