package tonefx

// Rect is an axis-aligned rectangle in signed integer pixel coordinates,
// with an explicit width/height rather than a second corner point. This
// mirrors the plane-relative rectangles used throughout the imaging runtime
// (Bitmap sub-rects, GPU tile regions, layer bounds).
type Rect struct {
	X, Y          int
	Width, Height int
}

// NewRect creates a Rect from its top-left corner and dimensions.
func NewRect(x, y, width, height int) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Area returns width*height, or 0 for a degenerate (negative-size) rect.
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Empty reports whether the rect encloses no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right returns the exclusive right edge (X + Width).
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge (Y + Height).
func (r Rect) Bottom() int { return r.Y + r.Height }

// ContainsPoint reports whether (x, y) falls within the rect.
func (r Rect) ContainsPoint(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Contains reports whether other is entirely enclosed by r.
func (r Rect) Contains(other Rect) bool {
	if other.Empty() {
		return true
	}
	return other.X >= r.X && other.Y >= r.Y &&
		other.Right() <= r.Right() && other.Bottom() <= r.Bottom()
}

// Intersect returns the overlapping region of r and other using
// Sutherland-Cohen-style axis clipping (clip each edge independently), and
// reports whether the result is non-empty.
func (r Rect) Intersect(other Rect) (Rect, bool) {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.Right(), other.Right())
	y1 := min(r.Bottom(), other.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// ValidFor reports whether r is a valid, in-bounds rect against a plane of
// the given dimensions: the invariant from spec §3 for an "image-valid rect".
func (r Rect) ValidFor(planeWidth, planeHeight int) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= planeWidth && r.Bottom() <= planeHeight
}
