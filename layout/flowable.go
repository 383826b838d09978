// Package layout implements the flow layout and pagination engine. A tree of
// flowables (paragraphs, images, containers, tables, flex boxes) is measured,
// split across fixed-size frames, and drawn into a render.Canvas by the
// DocTemplate pagination driver.
package layout

import (
	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/render"
)

// BreakMode controls forced page breaks before or after a flowable.
type BreakMode int

const (
	BreakAuto BreakMode = iota
	BreakPage
)

// BreakInsideMode controls whether a flowable may be divided across frames.
type BreakInsideMode int

const (
	InsideAuto BreakInsideMode = iota
	InsideAvoid
	InsideAvoidPage
)

// Pagination carries the break hints attached to a flowable.
type Pagination struct {
	BreakBefore BreakMode
	BreakAfter  BreakMode
	BreakInside BreakInsideMode

	// Orphans and Widows are the minimum number of lines kept before and
	// after a forced text split. Zero means the default of 2; values below
	// one are raised to one.
	Orphans int
	Widows  int
}

// OrphanLines returns the effective orphan minimum.
func (p Pagination) OrphanLines() int { return normLines(p.Orphans) }

// WidowLines returns the effective widow minimum.
func (p Pagination) WidowLines() int { return normLines(p.Widows) }

func normLines(n int) int {
	if n == 0 {
		return 2
	}
	if n < 1 {
		return 1
	}
	return n
}

// Flowable is a unit of document content. Implementations must be cheap to
// clone and Wrap must be a pure function of the node and its arguments, since
// results may be cached per (width, height) pair.
type Flowable interface {
	// Name identifies the node kind in diagnostics.
	Name() string

	// Wrap measures the node within the available width and height without
	// drawing anything.
	Wrap(availW, availH float64) geom.Size

	// Split divides the node so that the first part's wrap height fits
	// availH. The two parts are independent subtrees whose visual
	// concatenation equals the original. ok is false if the node cannot be
	// usefully split.
	Split(availW, availH float64) (first, rest Flowable, ok bool)

	// Draw emits the node's drawing commands with its top-left corner at
	// (x, y). It may reuse a layout cached for the same avail dimensions.
	Draw(c render.Canvas, x, y, availW, availH float64)

	// Pagination returns the node's break hints.
	Pagination() Pagination

	// IntrinsicWidth returns the node's natural (max-content) width, used
	// for shrink-to-fit sizing and flex bases. ok is false if the node has
	// no natural width.
	IntrinsicWidth() (w float64, ok bool)

	// OutOfFlow reports whether the node is excluded from normal block flow.
	OutOfFlow() bool

	// ZIndex orders out-of-flow nodes into stacking tiers.
	ZIndex() int

	// Clone duplicates the subtree. Layout caches may be shared between
	// clones; everything else is independent.
	Clone() Flowable
}

// sizeEpsilon absorbs float rounding when comparing measured heights against
// remaining space.
const sizeEpsilon = 1e-6

// base supplies the default flowable behaviors. Concrete nodes embed it and
// expose Breaks for pagination hints.
type base struct {
	Breaks Pagination
}

func (b *base) Pagination() Pagination          { return b.Breaks }
func (b *base) IntrinsicWidth() (float64, bool) { return 0, false }
func (b *base) OutOfFlow() bool                 { return false }
func (b *base) ZIndex() int                     { return 0 }

// Spacer is fixed-size vertical whitespace between flowables.
type Spacer struct {
	base
	Width, Height float64
}

// NewSpacer returns a spacer of the given size.
func NewSpacer(w, h float64) *Spacer { return &Spacer{Width: w, Height: h} }

func (s *Spacer) Name() string { return "Spacer" }

func (s *Spacer) Wrap(availW, availH float64) geom.Size {
	w := s.Width
	if w > availW {
		w = availW
	}
	return geom.Size{W: w, H: s.Height}
}

func (s *Spacer) Split(availW, availH float64) (Flowable, Flowable, bool) {
	return nil, nil, false
}

func (s *Spacer) Draw(c render.Canvas, x, y, availW, availH float64) {}

func (s *Spacer) Clone() Flowable {
	out := *s
	return &out
}

// childLister is implemented by nodes with children; the build walk uses it
// for nesting-depth checks and table ID assignment.
type childLister interface {
	childFlowables() []Flowable
}

// zOrder returns the out-of-flow children of a node partitioned into the
// negative, zero and positive stacking tiers, each ordered by ascending
// z-index with source order breaking ties.
func zOrder(children []Flowable) (neg, zero, pos []Flowable) {
	type entry struct {
		f   Flowable
		z   int
		src int
	}
	var all []entry
	for i, c := range children {
		if c.OutOfFlow() {
			all = append(all, entry{f: c, z: c.ZIndex(), src: i})
		}
	}
	// Insertion sort keeps the implementation allocation-free for the tiny
	// slices involved and is stable on (z, source order).
	for i := 1; i < len(all); i++ {
		for j := i; j > 0; j-- {
			a, b := all[j-1], all[j]
			if a.z > b.z || (a.z == b.z && a.src > b.src) {
				all[j-1], all[j] = b, a
			} else {
				break
			}
		}
	}
	for _, e := range all {
		switch {
		case e.z < 0:
			neg = append(neg, e.f)
		case e.z > 0:
			pos = append(pos, e.f)
		default:
			zero = append(zero, e.f)
		}
	}
	return neg, zero, pos
}

func cloneAll(children []Flowable) []Flowable {
	if children == nil {
		return nil
	}
	out := make([]Flowable, len(children))
	for i, c := range children {
		out[i] = c.Clone()
	}
	return out
}
