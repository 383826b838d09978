package layout

import (
	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/render"
)

// Edges holds one resolved value per box edge, in points.
type Edges struct {
	Top, Right, Bottom, Left float64
}

func (e Edges) horizontal() float64 { return e.Left + e.Right }
func (e Edges) vertical() float64   { return e.Top + e.Bottom }

// EdgeLengths holds one length specification per box edge.
type EdgeLengths struct {
	Top, Right, Bottom, Left Length
}

// UniformEdges applies the same length to all four edges.
func UniformEdges(l Length) EdgeLengths {
	return EdgeLengths{Top: l, Right: l, Bottom: l, Left: l}
}

func (e EdgeLengths) resolve(avail, em, rem float64) Edges {
	return Edges{
		Top:    e.Top.ResolveDefault(avail, em, rem, 0),
		Right:  e.Right.ResolveDefault(avail, em, rem, 0),
		Bottom: e.Bottom.ResolveDefault(avail, em, rem, 0),
		Left:   e.Left.ResolveDefault(avail, em, rem, 0),
	}
}

// BoxSizing selects whether Width/Height refer to the content box or the
// border box.
type BoxSizing int

const (
	ContentBox BoxSizing = iota
	BorderBox
)

// Overflow controls whether children may paint outside the padding box.
type Overflow int

const (
	OverflowVisible Overflow = iota
	OverflowHidden
)

// Background paints the border box with a solid color or linear gradient.
type Background struct {
	Color    render.Color
	Gradient *render.Gradient
}

// Shadow is one box shadow. Outer shadows are approximated by concentric
// alpha-decaying rounded rectangles; inset shadows are clipped to the box.
type Shadow struct {
	OffsetX, OffsetY float64
	Blur, Spread     float64
	Color            render.Color
	Inset            bool
}

// BoxStyle is the visual style of a Container.
type BoxStyle struct {
	Margin, Padding EdgeLengths
	Border          Edges
	BorderColor     render.Color
	Radius          float64

	Width, MaxWidth, Height Length
	Sizing                  BoxSizing

	Background *Background
	Shadows    []Shadow
	Overflow   Overflow

	// FontSize and RootFontSize anchor em/rem lengths; zero means 12.
	FontSize, RootFontSize float64
}

func (s BoxStyle) em() float64 {
	if s.FontSize == 0 {
		return defaultFontSize
	}
	return s.FontSize
}

func (s BoxStyle) rem() float64 {
	if s.RootFontSize == 0 {
		return defaultFontSize
	}
	return s.RootFontSize
}

// Container lays out children in block flow inside a CSS-like box.
type Container struct {
	base
	Style    BoxStyle
	Children []Flowable
}

// NewContainer builds a container over the given children.
func NewContainer(style BoxStyle, children ...Flowable) *Container {
	return &Container{Style: style, Children: children}
}

func (ct *Container) Name() string { return "Container" }

func (ct *Container) childFlowables() []Flowable { return ct.Children }

type resolvedBox struct {
	margin, padding, border Edges
	borderBoxW, contentW    float64
	marginBoxW              float64
}

func (rb resolvedBox) topInset() float64 {
	return rb.margin.Top + rb.border.Top + rb.padding.Top
}

func (rb resolvedBox) bottomInset() float64 {
	return rb.margin.Bottom + rb.border.Bottom + rb.padding.Bottom
}

// resolve computes the box edges and widths for the available width,
// including CSS-style auto-margin handling.
func (ct *Container) resolve(availW float64) resolvedBox {
	em, rem := ct.Style.em(), ct.Style.rem()
	pad := ct.Style.Padding.resolve(availW, em, rem)
	border := ct.Style.Border

	autoLeft := ct.Style.Margin.Left.IsAuto()
	autoRight := ct.Style.Margin.Right.IsAuto()
	margin := ct.Style.Margin.resolve(availW, em, rem)

	var borderBoxW float64
	if ct.Style.Width.IsSet() {
		w := ct.Style.Width.Resolve(availW, em, rem)
		if ct.Style.Sizing == ContentBox {
			w += pad.horizontal() + border.horizontal()
		}
		borderBoxW = w
	} else {
		borderBoxW = availW - margin.horizontal()
	}
	if ct.Style.MaxWidth.IsSet() {
		mw := ct.Style.MaxWidth.Resolve(availW, em, rem)
		if ct.Style.Sizing == ContentBox {
			mw += pad.horizontal() + border.horizontal()
		}
		if borderBoxW > mw {
			borderBoxW = mw
		}
	}
	if borderBoxW < 0 {
		borderBoxW = 0
	}

	if leftover := availW - borderBoxW - margin.horizontal(); leftover > 0 {
		switch {
		case autoLeft && autoRight:
			margin.Left += leftover / 2
			margin.Right += leftover / 2
		case autoLeft:
			margin.Left += leftover
		case autoRight:
			margin.Right += leftover
		}
	}

	contentW := borderBoxW - pad.horizontal() - border.horizontal()
	if contentW < 0 {
		contentW = 0
	}
	return resolvedBox{
		margin:     margin,
		padding:    pad,
		border:     border,
		borderBoxW: borderBoxW,
		contentW:   contentW,
		marginBoxW: borderBoxW + margin.horizontal(),
	}
}

// flowHeight lays out the in-flow children vertically and returns the total
// content height.
func (ct *Container) flowHeight(rb resolvedBox, inner float64) float64 {
	used := 0.0
	for _, child := range ct.Children {
		if child.OutOfFlow() {
			continue
		}
		remaining := inner - used
		if remaining < 0 {
			remaining = 0
		}
		sz := child.Wrap(rb.contentW, remaining)
		used += sz.H
	}
	return used
}

// contentHeight resolves the explicit height if set, else measures children.
func (ct *Container) contentHeight(rb resolvedBox, availH float64) float64 {
	if ct.Style.Height.IsSet() {
		h := ct.Style.Height.Resolve(availH, ct.Style.em(), ct.Style.rem())
		if ct.Style.Sizing == BorderBox {
			h -= rb.padding.vertical() + rb.border.vertical()
		}
		if h < 0 {
			h = 0
		}
		return h
	}
	inner := availH - rb.topInset() - rb.bottomInset()
	if inner < 0 {
		inner = 0
	}
	return ct.flowHeight(rb, inner)
}

// Wrap implements Flowable.
func (ct *Container) Wrap(availW, availH float64) geom.Size {
	rb := ct.resolve(availW)
	h := ct.contentHeight(rb, availH)
	return geom.Size{
		W: rb.marginBoxW,
		H: h + rb.padding.vertical() + rb.border.vertical() + rb.margin.vertical(),
	}
}

// IntrinsicWidth implements Flowable: the widest child's natural width plus
// the horizontal insets, or the explicit absolute width.
func (ct *Container) IntrinsicWidth() (float64, bool) {
	if ct.Style.Width.Kind == Absolute {
		return ct.Style.Width.Value, true
	}
	em, rem := ct.Style.em(), ct.Style.rem()
	pad := ct.Style.Padding.resolve(0, em, rem)
	margin := ct.Style.Margin.resolve(0, em, rem)
	maxW := 0.0
	any := false
	for _, child := range ct.Children {
		if child.OutOfFlow() {
			continue
		}
		if w, ok := child.IntrinsicWidth(); ok {
			any = true
			if w > maxW {
				maxW = w
			}
		}
	}
	if !any {
		return 0, false
	}
	return maxW + pad.horizontal() + ct.Style.Border.horizontal() + margin.horizontal(), true
}

// Split implements Flowable. The first part keeps everything that fits and
// loses its bottom edge; the remainder loses its top edge, so a closed
// border is not drawn twice across the break.
func (ct *Container) Split(availW, availH float64) (Flowable, Flowable, bool) {
	if ct.Style.Height.IsSet() {
		// Fixed-height boxes move whole.
		return nil, nil, false
	}
	rb := ct.resolve(availW)
	budget := availH - rb.topInset()
	if budget <= 0 {
		return nil, nil, false
	}

	var firstKids, restKids []Flowable
	acc := 0.0
	placed := false
	broke := false
	for i, child := range ct.Children {
		if child.OutOfFlow() {
			firstKids = append(firstKids, child)
			continue
		}
		remaining := budget - acc
		if remaining < 0 {
			remaining = 0
		}
		sz := child.Wrap(rb.contentW, remaining)
		if sz.H <= remaining+sizeEpsilon {
			acc += sz.H
			firstKids = append(firstKids, child)
			placed = true
			continue
		}
		if cf, cr, ok := child.Split(rb.contentW, remaining); ok {
			firstKids = append(firstKids, cf)
			restKids = append(restKids, cr)
			placed = true
		} else {
			restKids = append(restKids, child)
		}
		restKids = append(restKids, ct.Children[i+1:]...)
		broke = true
		break
	}
	if !broke || !placed || len(restKids) == 0 {
		return nil, nil, false
	}

	head := &Container{base: ct.base, Style: ct.Style, Children: firstKids}
	head.Style.Margin.Bottom = Pt(0)
	head.Style.Padding.Bottom = Pt(0)
	head.Style.Border.Bottom = 0
	head.Breaks.BreakAfter = BreakAuto

	tail := &Container{base: ct.base, Style: ct.Style, Children: restKids}
	tail.Style.Margin.Top = Pt(0)
	tail.Style.Padding.Top = Pt(0)
	tail.Style.Border.Top = 0
	tail.Breaks.BreakBefore = BreakAuto
	return head, tail, true
}

// Draw implements Flowable.
func (ct *Container) Draw(c render.Canvas, x, y, availW, availH float64) {
	rb := ct.resolve(availW)
	contentH := ct.contentHeight(rb, availH)
	bx := x + rb.margin.Left
	by := y + rb.margin.Top
	bw := rb.borderBoxW
	bh := contentH + rb.padding.vertical() + rb.border.vertical()

	for _, s := range ct.Style.Shadows {
		if !s.Inset {
			ct.drawOuterShadow(c, bx, by, bw, bh, s)
		}
	}
	ct.drawBackground(c, bx, by, bw, bh)
	for _, s := range ct.Style.Shadows {
		if s.Inset {
			ct.drawInsetShadow(c, bx, by, bw, bh, s)
		}
	}
	ct.drawBorder(c, bx, by, bw, bh)

	cx := bx + rb.border.Left + rb.padding.Left
	cy := by + rb.border.Top + rb.padding.Top
	clipped := ct.Style.Overflow == OverflowHidden
	if clipped {
		c.Save()
		c.Clip(bx+rb.border.Left, by+rb.border.Top,
			bw-rb.border.horizontal(), bh-rb.border.vertical(), ct.Style.Radius)
	}

	neg, zero, pos := zOrder(ct.Children)
	for _, child := range neg {
		child.Draw(c, cx, cy, rb.contentW, contentH)
	}
	used := 0.0
	for _, child := range ct.Children {
		if child.OutOfFlow() {
			continue
		}
		remaining := contentH - used
		if remaining < 0 {
			remaining = 0
		}
		sz := child.Wrap(rb.contentW, remaining)
		child.Draw(c, cx, cy+used, rb.contentW, sz.H)
		used += sz.H
	}
	for _, child := range zero {
		child.Draw(c, cx, cy, rb.contentW, contentH)
	}
	for _, child := range pos {
		child.Draw(c, cx, cy, rb.contentW, contentH)
	}

	if clipped {
		c.Restore()
	}
}

const shadowRings = 4

func (ct *Container) drawOuterShadow(c render.Canvas, x, y, w, h float64, s Shadow) {
	// Largest, most transparent ring first so inner rings darken the core.
	for i := 0; i < shadowRings; i++ {
		t := float64(i+1) / shadowRings
		grow := s.Spread + s.Blur*(1-t)
		col := s.Color
		col.A = s.Color.A * t / 2
		c.Rect(x+s.OffsetX-grow, y+s.OffsetY-grow, w+2*grow, h+2*grow, render.RectOptions{
			FillColor: col,
			Fill:      true,
			Radius:    ct.Style.Radius + grow,
		})
	}
}

func (ct *Container) drawInsetShadow(c render.Canvas, x, y, w, h float64, s Shadow) {
	c.Save()
	c.Clip(x, y, w, h, ct.Style.Radius)
	for i := 0; i < shadowRings; i++ {
		t := float64(i+1) / shadowRings
		inset := s.Spread + s.Blur*(1-t)
		col := s.Color
		col.A = s.Color.A * t / 2
		c.Rect(x+s.OffsetX+inset, y+s.OffsetY+inset, w-2*inset, h-2*inset, render.RectOptions{
			StrokeColor: col,
			Stroke:      true,
			LineWidth:   s.Blur / shadowRings,
			Radius:      ct.Style.Radius,
		})
	}
	c.Restore()
}

func (ct *Container) drawBackground(c render.Canvas, x, y, w, h float64) {
	bg := ct.Style.Background
	if bg == nil {
		return
	}
	if bg.Gradient != nil {
		c.FillGradient(x, y, w, h, *bg.Gradient)
		return
	}
	if bg.Color.A == 0 {
		return
	}
	c.Rect(x, y, w, h, render.RectOptions{
		FillColor: bg.Color,
		Fill:      true,
		Radius:    ct.Style.Radius,
	})
}

func (ct *Container) drawBorder(c render.Canvas, x, y, w, h float64) {
	b := ct.Style.Border
	if b.Top == 0 && b.Right == 0 && b.Bottom == 0 && b.Left == 0 {
		return
	}
	if ct.Style.Radius > 0 {
		// Uniform rounded stroke inset by half the stroke width.
		lw := b.Top
		r := ct.Style.Radius - lw/2
		if r < 0 {
			r = 0
		}
		c.Rect(x+lw/2, y+lw/2, w-lw, h-lw, render.RectOptions{
			StrokeColor: ct.Style.BorderColor,
			Stroke:      true,
			LineWidth:   lw,
			Radius:      r,
		})
		return
	}
	fill := func(fx, fy, fw, fh float64) {
		if fw <= 0 || fh <= 0 {
			return
		}
		c.Rect(fx, fy, fw, fh, render.RectOptions{FillColor: ct.Style.BorderColor, Fill: true})
	}
	fill(x, y, w, b.Top)
	fill(x, y+h-b.Bottom, w, b.Bottom)
	fill(x, y, b.Left, h)
	fill(x+w-b.Right, y, b.Right, h)
}

// Clone implements Flowable.
func (ct *Container) Clone() Flowable {
	return &Container{base: ct.base, Style: ct.Style, Children: cloneAll(ct.Children)}
}
