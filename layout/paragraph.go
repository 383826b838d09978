package layout

import (
	"math"
	"strings"

	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/render"
)

// Paragraph is a block of styled text. It keeps per-instance caches for line
// layouts and string widths; clones produced by pagination splits share the
// caches of the node they were derived from only when the text is unchanged.
type Paragraph struct {
	base
	Text  string
	Style TextStyle

	metrics   fonts.Metrics
	font      fonts.Font
	fallbacks []fonts.Font
	caches    *textCaches
}

// NewParagraph builds a paragraph, resolving its font against the metrics
// oracle. An unknown family degrades to heuristic measurement rather than
// failing; callers that need strict resolution use fonts.Metrics directly.
func NewParagraph(m fonts.Metrics, text string, style TextStyle) *Paragraph {
	return &Paragraph{
		Text:      text,
		Style:     style,
		metrics:   m,
		font:      resolveFont(m, style),
		fallbacks: resolveFallbacks(m, style),
		caches:    &textCaches{},
	}
}

func (p *Paragraph) Name() string { return "Paragraph" }

func (p *Paragraph) measurer() measurer {
	return measurer{
		metrics:   p.metrics,
		font:      p.font,
		fallbacks: p.fallbacks,
		size:      p.Style.size(),
		cache:     &p.caches.widths,
	}
}

func (p *Paragraph) lines(availW float64) []string {
	m := p.measurer()
	return p.caches.lines.get(availW, func() []string {
		return breakLines(m, p.Text, availW, p.Style.Wrap, p.Style.BreakLongWords)
	})
}

func (p *Paragraph) lineHeight() float64 {
	return p.Style.lineHeight(p.metrics, p.font)
}

// Wrap implements Flowable.
func (p *Paragraph) Wrap(availW, availH float64) geom.Size {
	lines := p.lines(availW)
	m := p.measurer()
	maxW := 0.0
	for _, ln := range lines {
		if p.Style.Wrap == WrapNone {
			ln = truncateEllipsis(m, ln, availW)
		}
		if w := m.width(ln); w > maxW {
			maxW = w
		}
	}
	return geom.Size{W: maxW, H: float64(len(lines)) * p.lineHeight()}
}

// IntrinsicWidth implements Flowable: the width of the text with no wrapping.
func (p *Paragraph) IntrinsicWidth() (float64, bool) {
	m := p.measurer()
	maxW := 0.0
	for _, seg := range strings.Split(p.Text, "\n") {
		seg = strings.Join(strings.Fields(seg), " ")
		if w := m.width(seg); w > maxW {
			maxW = w
		}
	}
	return maxW, true
}

// minContentWidth is the widest unbreakable unit, used by table column
// sizing.
func (p *Paragraph) minContentWidth() float64 {
	m := p.measurer()
	maxW := 0.0
	for _, word := range strings.Fields(p.Text) {
		if w := m.width(word); w > maxW {
			maxW = w
		}
	}
	return maxW
}

// Split implements Flowable, honoring the orphan/widow minimums.
func (p *Paragraph) Split(availW, availH float64) (Flowable, Flowable, bool) {
	lines := p.lines(availW)
	lh := p.lineHeight()
	if lh <= 0 {
		return nil, nil, false
	}
	fit := int(math.Floor(availH / lh))
	first, ok := splitLineCounts(len(lines), fit, p.Breaks)
	if !ok || first >= len(lines) {
		return nil, nil, false
	}

	head := p.derive(strings.Join(lines[:first], "\n"))
	tail := p.derive(strings.Join(lines[first:], "\n"))
	head.Breaks.BreakAfter = BreakAuto
	tail.Breaks.BreakBefore = BreakAuto
	return head, tail, true
}

// derive builds a paragraph with the same style and fonts but new text and
// fresh caches.
func (p *Paragraph) derive(text string) *Paragraph {
	out := *p
	out.Text = text
	out.caches = &textCaches{}
	return &out
}

// Draw implements Flowable.
func (p *Paragraph) Draw(c render.Canvas, x, y, availW, availH float64) {
	m := p.measurer()
	lines := p.lines(availW)
	lh := p.lineHeight()
	size := p.Style.size()

	for i, ln := range lines {
		if p.Style.Wrap == WrapNone {
			ln = truncateEllipsis(m, ln, availW)
		}
		if ln == "" {
			continue
		}
		offset := 0.0
		switch p.Style.Align {
		case AlignCenter:
			offset = (availW - m.width(ln)) / 2
		case AlignRight:
			offset = availW - m.width(ln)
		}
		if offset < 0 {
			offset = 0
		}
		baseline := y + float64(i)*lh + size
		p.drawLine(c, ln, x+offset, baseline)
	}
}

func (p *Paragraph) drawLine(c render.Canvas, ln string, x, baseline float64) {
	opts := render.TextOptions{
		Font:     fontName(p.font, p.Style),
		FontSize: p.Style.size(),
		Color:    p.Style.Color,
	}
	if p.metrics == nil || p.font == nil || len(p.fallbacks) == 0 {
		c.DrawString(ln, x, baseline, opts)
		return
	}
	// Fallback fonts: draw per run, advancing by each run's width.
	cur := x
	for _, run := range p.metrics.SplitRuns(p.font, p.fallbacks, ln) {
		runOpts := opts
		runOpts.Font = run.Font.Name()
		c.DrawString(run.Text, cur, baseline, runOpts)
		cur += p.metrics.TextWidth(run.Font, p.Style.size(), run.Text)
	}
}

// Clone implements Flowable. The clone shares the layout caches, which are
// safe for concurrent reads.
func (p *Paragraph) Clone() Flowable {
	out := *p
	return &out
}
