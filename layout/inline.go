package layout

import (
	"math"
	"strings"
	"sync"

	"golang.org/x/image/math/fixed"

	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/render"
)

// Span is a run of text with one style inside an InlineGroup.
type Span struct {
	Text  string
	Style TextStyle
}

// InlineGroup flows differently styled spans into shared lines, like a
// paragraph with mixed formatting.
type InlineGroup struct {
	base
	Spans []Span

	metrics fonts.Metrics
	fnts    []fonts.Font
	widths  *widthCache

	mu      sync.Mutex
	memoKey fixed.Int26_6
	memo    []inlineLine
}

type inlineFrag struct {
	text  string
	span  int
	width float64
}

type inlineLine struct {
	frags  []inlineFrag
	width  float64
	height float64
}

// NewInlineGroup builds an inline group, resolving each span's font.
func NewInlineGroup(m fonts.Metrics, spans ...Span) *InlineGroup {
	g := &InlineGroup{Spans: spans, metrics: m, widths: &widthCache{}}
	g.fnts = make([]fonts.Font, len(spans))
	for i, sp := range spans {
		g.fnts[i] = resolveFont(m, sp.Style)
	}
	return g
}

func (g *InlineGroup) Name() string { return "InlineGroup" }

func (g *InlineGroup) spanMeasurer(i int) measurer {
	return measurer{
		metrics: g.metrics,
		font:    g.fnts[i],
		size:    g.Spans[i].Style.size(),
		cache:   g.widths,
	}
}

func (g *InlineGroup) spanLineHeight(i int) float64 {
	return g.Spans[i].Style.lineHeight(g.metrics, g.fnts[i])
}

// layout flows the spans into lines at the given width. The result for the
// most recent width is memoized; a mismatched key overwrites it.
func (g *InlineGroup) layout(availW float64) []inlineLine {
	key := quantizeWidth(availW)
	g.mu.Lock()
	if g.memo != nil && g.memoKey == key {
		lines := g.memo
		g.mu.Unlock()
		return lines
	}
	g.mu.Unlock()

	lines := g.flow(availW)

	g.mu.Lock()
	g.memoKey = key
	g.memo = lines
	g.mu.Unlock()
	return lines
}

func (g *InlineGroup) flow(availW float64) []inlineLine {
	var lines []inlineLine
	var cur inlineLine

	flush := func() {
		// Trailing spaces at a break carry no visual weight.
		for len(cur.frags) > 0 && strings.TrimSpace(cur.frags[len(cur.frags)-1].text) == "" {
			cur.width -= cur.frags[len(cur.frags)-1].width
			cur.frags = cur.frags[:len(cur.frags)-1]
		}
		if len(cur.frags) == 0 {
			return
		}
		for _, f := range cur.frags {
			if lh := g.spanLineHeight(f.span); lh > cur.height {
				cur.height = lh
			}
		}
		lines = append(lines, cur)
		cur = inlineLine{}
	}

	for si, sp := range g.Spans {
		m := g.spanMeasurer(si)
		for _, token := range tokenizeInline(sp.Text) {
			w := m.width(token)
			if token == " " {
				if cur.width+w > availW {
					flush()
				} else if len(cur.frags) > 0 {
					cur.frags = append(cur.frags, inlineFrag{text: token, span: si, width: w})
					cur.width += w
				}
				continue
			}
			if len(cur.frags) > 0 && cur.width+w > availW {
				flush()
			}
			cur.frags = append(cur.frags, inlineFrag{text: token, span: si, width: w})
			cur.width += w
		}
	}
	flush()
	if len(lines) == 0 {
		lines = []inlineLine{{}}
	}
	return lines
}

// tokenizeInline splits text into words and single-space tokens, collapsing
// whitespace runs the way inline flow does.
func tokenizeInline(text string) []string {
	var tokens []string
	var cur strings.Builder
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
			if n := len(tokens); n == 0 || tokens[n-1] != " " {
				tokens = append(tokens, " ")
			}
		} else {
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// Wrap implements Flowable.
func (g *InlineGroup) Wrap(availW, availH float64) geom.Size {
	var w, h float64
	for _, ln := range g.layout(availW) {
		if ln.width > w {
			w = ln.width
		}
		h += ln.height
	}
	return geom.Size{W: w, H: h}
}

// IntrinsicWidth implements Flowable: all spans on one unwrapped line.
func (g *InlineGroup) IntrinsicWidth() (float64, bool) {
	lines := g.flow(math.MaxFloat64)
	var w float64
	for _, ln := range lines {
		if ln.width > w {
			w = ln.width
		}
	}
	return w, true
}

// Split implements Flowable at a line boundary, honoring orphans/widows.
func (g *InlineGroup) Split(availW, availH float64) (Flowable, Flowable, bool) {
	lines := g.layout(availW)
	fit := 0
	used := 0.0
	for _, ln := range lines {
		if used+ln.height > availH {
			break
		}
		used += ln.height
		fit++
	}
	first, ok := splitLineCounts(len(lines), fit, g.Breaks)
	if !ok || first >= len(lines) {
		return nil, nil, false
	}
	head := g.fromLines(lines[:first])
	tail := g.fromLines(lines[first:])
	head.Breaks.BreakAfter = BreakAuto
	tail.Breaks.BreakBefore = BreakAuto
	return head, tail, true
}

// fromLines rebuilds an inline group from laid-out lines, merging adjacent
// fragments of the same span.
func (g *InlineGroup) fromLines(lines []inlineLine) *InlineGroup {
	var spans []Span
	var fnts []fonts.Font
	for li, ln := range lines {
		for fi, f := range ln.frags {
			text := f.text
			if li > 0 && fi == 0 && len(spans) > 0 {
				// Line break replaces the collapsed space.
				text = " " + text
			}
			if n := len(spans); n > 0 && fnts[n-1] == g.fnts[f.span] && sameTextStyle(spans[n-1].Style, g.Spans[f.span].Style) {
				spans[n-1].Text += text
				continue
			}
			spans = append(spans, Span{Text: text, Style: g.Spans[f.span].Style})
			fnts = append(fnts, g.fnts[f.span])
		}
	}
	out := &InlineGroup{
		base:    g.base,
		Spans:   spans,
		metrics: g.metrics,
		fnts:    fnts,
		widths:  g.widths,
	}
	return out
}

// sameTextStyle reports whether two styles draw identically, ignoring the
// fallback font lists.
func sameTextStyle(a, b TextStyle) bool {
	return a.Family == b.Family && a.Weight == b.Weight && a.Style == b.Style &&
		a.Size == b.Size && a.Leading == b.Leading && a.Color == b.Color &&
		a.Align == b.Align && a.Wrap == b.Wrap && a.BreakLongWords == b.BreakLongWords
}

// Draw implements Flowable.
func (g *InlineGroup) Draw(c render.Canvas, x, y, availW, availH float64) {
	top := y
	for _, ln := range g.layout(availW) {
		cur := x
		for _, f := range ln.frags {
			sp := g.Spans[f.span]
			baseline := top + sp.Style.size()
			c.DrawString(f.text, cur, baseline, render.TextOptions{
				Font:     fontName(g.fnts[f.span], sp.Style),
				FontSize: sp.Style.size(),
				Color:    sp.Style.Color,
			})
			cur += f.width
		}
		top += ln.height
	}
}

// Clone implements Flowable, sharing the width cache.
func (g *InlineGroup) Clone() Flowable {
	return &InlineGroup{
		base:    g.base,
		Spans:   append([]Span(nil), g.Spans...),
		metrics: g.metrics,
		fnts:    append([]fonts.Font(nil), g.fnts...),
		widths:  g.widths,
	}
}
