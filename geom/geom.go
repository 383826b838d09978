// Package geom provides the geometric primitives used by the layout engine.
// All values are in typographic points with the origin at the top-left of a
// page and y growing downward.
package geom

// Point is a position on a page.
type Point struct {
	X, Y float64
}

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Contains returns true if the point (x, y) lies within the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Inset returns r shrunk by the given insets. Width and height are floored
// at zero.
func (r Rect) Inset(in Insets) Rect {
	out := Rect{
		X: r.X + in.Left,
		Y: r.Y + in.Top,
		W: r.W - in.Left - in.Right,
		H: r.H - in.Top - in.Bottom,
	}
	if out.W < 0 {
		out.W = 0
	}
	if out.H < 0 {
		out.H = 0
	}
	return out
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Insets describes per-edge distances, e.g. margins or padding.
type Insets struct {
	Top, Right, Bottom, Left float64
}

// Horizontal returns the sum of the left and right insets.
func (i Insets) Horizontal() float64 { return i.Left + i.Right }

// Vertical returns the sum of the top and bottom insets.
func (i Insets) Vertical() float64 { return i.Top + i.Bottom }

// UniformInsets returns insets with the same value on every edge.
func UniformInsets(v float64) Insets {
	return Insets{Top: v, Right: v, Bottom: v, Left: v}
}
