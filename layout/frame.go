package layout

import (
	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/render"
)

// Frame is one region of a page that content flows into. A cursor tracks how
// much of the frame's height has been consumed.
type Frame struct {
	Rect   geom.Rect
	cursor float64
}

// NewFrame returns a frame over the given page region.
func NewFrame(r geom.Rect) *Frame { return &Frame{Rect: r} }

// Remaining returns the unused height, floored at zero.
func (f *Frame) Remaining() float64 {
	rem := f.Rect.H - f.cursor
	if rem < 0 {
		return 0
	}
	return rem
}

// Empty reports whether nothing has been placed yet.
func (f *Frame) Empty() bool { return f.cursor == 0 }

// Reset rewinds the cursor for reuse on a new page.
func (f *Frame) Reset() { f.cursor = 0 }

// Fits reports whether a flowable's wrapped height fits the remaining space.
func (f *Frame) Fits(fl Flowable) bool {
	sz := fl.Wrap(f.Rect.W, f.Remaining())
	return sz.H <= f.Remaining()+sizeEpsilon
}

// Place draws the flowable at the cursor and advances it. It returns false
// without drawing when the flowable does not fit.
func (f *Frame) Place(c render.Canvas, fl Flowable) bool {
	rem := f.Remaining()
	sz := fl.Wrap(f.Rect.W, rem)
	if sz.H > rem+sizeEpsilon {
		return false
	}
	fl.Draw(c, f.Rect.X, f.Rect.Y+f.cursor, f.Rect.W, rem)
	f.cursor += sz.H
	return true
}

// ForcePlace draws the flowable at the cursor regardless of fit, clamping
// the cursor to the frame height. Content taller than the frame overflows
// its bottom edge.
func (f *Frame) ForcePlace(c render.Canvas, fl Flowable) {
	rem := f.Remaining()
	sz := fl.Wrap(f.Rect.W, rem)
	fl.Draw(c, f.Rect.X, f.Rect.Y+f.cursor, f.Rect.W, rem)
	f.cursor += sz.H
	if f.cursor > f.Rect.H {
		f.cursor = f.Rect.H
	}
}
