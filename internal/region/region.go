package region

// Region is a rectangle marking video area to mask, in percent-of-frame
// units. Every coordinate lives in [0,100]. Regions have no identity beyond
// their position in the list.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

const (
	// MinDrawSize is the smallest width/height, in percent units, a newly
	// drawn region may have. Smaller draws are discarded.
	MinDrawSize = 0.5

	// MinResizeSize is the floor applied to width/height while resizing.
	// The [0,100] frame bound takes precedence: a region anchored within
	// this distance of the frame edge resizes only up to the edge.
	MinResizeSize = 1.0
)

// Clamped returns the region with all coordinates forced into [0,100],
// shrinking width/height so the rectangle fits the frame.
func (r Region) Clamped() Region {
	r.X = clamp(r.X, 0, 100)
	r.Y = clamp(r.Y, 0, 100)
	r.Width = clamp(r.Width, 0, 100-r.X)
	r.Height = clamp(r.Height, 0, 100-r.Y)
	return r
}

// Contains reports whether the point (x, y) falls inside the region.
func (r Region) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Primary returns the index of the bottom-most region, the one eligible to
// host burned-in subtitle text. The primary region is always derived from
// the current list, never stored.
func Primary(regions []Region) (int, bool) {
	if len(regions) == 0 {
		return 0, false
	}
	best := 0
	for i := 1; i < len(regions); i++ {
		if regions[i].Y > regions[best].Y {
			best = i
		}
	}
	return best, true
}

// Clone returns a value copy of the region list.
func Clone(regions []Region) []Region {
	if regions == nil {
		return nil
	}
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// Equal reports structural equality of two region lists.
func Equal(a, b []Region) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
