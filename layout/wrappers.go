package layout

import (
	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/render"
)

// ListItem draws a bullet (or ordinal) in the gutter and indents its child.
type ListItem struct {
	base
	Bullet string
	Style  TextStyle
	Indent float64
	Child  Flowable

	metrics fonts.Metrics
	font    fonts.Font
}

// NewListItem builds a list item. A zero indent defaults to 18 points.
func NewListItem(m fonts.Metrics, bullet string, style TextStyle, child Flowable) *ListItem {
	return &ListItem{
		Bullet:  bullet,
		Style:   style,
		Indent:  18,
		Child:   child,
		metrics: m,
		font:    resolveFont(m, style),
	}
}

func (li *ListItem) Name() string { return "ListItem" }

func (li *ListItem) Wrap(availW, availH float64) geom.Size {
	sz := li.Child.Wrap(availW-li.Indent, availH)
	h := sz.H
	if lh := li.Style.lineHeight(li.metrics, li.font); li.Bullet != "" && lh > h {
		h = lh
	}
	return geom.Size{W: sz.W + li.Indent, H: h}
}

func (li *ListItem) IntrinsicWidth() (float64, bool) {
	if w, ok := li.Child.IntrinsicWidth(); ok {
		return w + li.Indent, true
	}
	return 0, false
}

// Split keeps the bullet with the first part.
func (li *ListItem) Split(availW, availH float64) (Flowable, Flowable, bool) {
	cf, cr, ok := li.Child.Split(availW-li.Indent, availH)
	if !ok {
		return nil, nil, false
	}
	head := li.shallow()
	head.Child = cf
	tail := li.shallow()
	tail.Child = cr
	tail.Bullet = ""
	return head, tail, true
}

func (li *ListItem) shallow() *ListItem {
	out := *li
	return &out
}

func (li *ListItem) Draw(c render.Canvas, x, y, availW, availH float64) {
	if li.Bullet != "" {
		c.DrawString(li.Bullet, x, y+li.Style.size(), render.TextOptions{
			Font:     fontName(li.font, li.Style),
			FontSize: li.Style.size(),
			Color:    li.Style.Color,
		})
	}
	li.Child.Draw(c, x+li.Indent, y, availW-li.Indent, availH)
}

func (li *ListItem) Clone() Flowable {
	out := *li
	out.Child = li.Child.Clone()
	return &out
}

func (li *ListItem) childFlowables() []Flowable { return []Flowable{li.Child} }

// Tagged wraps a child in a logical structure tag. Measurement and
// pagination delegate to the child; drawing is bracketed by BeginTag/EndTag
// and optional page metadata.
type Tagged struct {
	Tag      string
	Attrs    map[string]string
	Metadata map[string]string
	Child    Flowable
}

func (t *Tagged) Name() string { return "Tagged(" + t.Child.Name() + ")" }

func (t *Tagged) Wrap(availW, availH float64) geom.Size { return t.Child.Wrap(availW, availH) }

func (t *Tagged) Pagination() Pagination { return t.Child.Pagination() }

func (t *Tagged) IntrinsicWidth() (float64, bool) { return t.Child.IntrinsicWidth() }

func (t *Tagged) OutOfFlow() bool { return t.Child.OutOfFlow() }

func (t *Tagged) ZIndex() int { return t.Child.ZIndex() }

// Split wraps both halves so the tag survives pagination.
func (t *Tagged) Split(availW, availH float64) (Flowable, Flowable, bool) {
	cf, cr, ok := t.Child.Split(availW, availH)
	if !ok {
		return nil, nil, false
	}
	return &Tagged{Tag: t.Tag, Attrs: t.Attrs, Metadata: t.Metadata, Child: cf},
		&Tagged{Tag: t.Tag, Attrs: t.Attrs, Metadata: t.Metadata, Child: cr}, true
}

func (t *Tagged) Draw(c render.Canvas, x, y, availW, availH float64) {
	for k, v := range t.Metadata {
		c.SetMetadata(k, v)
	}
	c.BeginTag(t.Tag, t.Attrs)
	t.Child.Draw(c, x, y, availW, availH)
	c.EndTag()
}

func (t *Tagged) Clone() Flowable {
	return &Tagged{Tag: t.Tag, Attrs: t.Attrs, Metadata: t.Metadata, Child: t.Child.Clone()}
}

func (t *Tagged) childFlowables() []Flowable { return []Flowable{t.Child} }

// Positioned places its child out of the normal flow at a fixed offset. A
// Fixed Positioned node in a story becomes a page overlay drawn on every
// finalized page, after the body. Z orders overlapping out-of-flow nodes.
type Positioned struct {
	base
	X, Y  float64
	Z     int
	Fixed bool
	Child Flowable
}

func (a *Positioned) Name() string { return "Positioned(" + a.Child.Name() + ")" }

// Wrap implements Flowable. Out-of-flow nodes contribute no flow height.
func (a *Positioned) Wrap(availW, availH float64) geom.Size { return geom.Size{} }

func (a *Positioned) OutOfFlow() bool { return true }

func (a *Positioned) ZIndex() int { return a.Z }

func (a *Positioned) Split(availW, availH float64) (Flowable, Flowable, bool) {
	return nil, nil, false
}

func (a *Positioned) Draw(c render.Canvas, x, y, availW, availH float64) {
	a.Child.Draw(c, x+a.X, y+a.Y, availW-a.X, availH-a.Y)
}

func (a *Positioned) Clone() Flowable {
	out := *a
	out.Child = a.Child.Clone()
	return &out
}

func (a *Positioned) childFlowables() []Flowable { return []Flowable{a.Child} }
