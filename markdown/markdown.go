// Package markdown converts markdown documents into a flowable story the
// layout engine can paginate. Parsing is done by goldmark with the GFM table
// extension enabled.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/layout"
)

// Converter maps markdown blocks onto flowables.
type Converter struct {
	Metrics fonts.Metrics
	// Body is the base text style; headings scale its size.
	Body layout.TextStyle
	// Code is the style for code blocks. Its wrap mode is forced to
	// WrapPreserve so indentation survives.
	Code layout.TextStyle
	// BlockSpacing is the vertical gap inserted after each block.
	BlockSpacing float64
}

// New returns a converter with the default styles.
func New(m fonts.Metrics) *Converter {
	return &Converter{
		Metrics:      m,
		Body:         layout.TextStyle{Family: "Helvetica", Size: 12},
		Code:         layout.TextStyle{Family: "Courier", Size: 10},
		BlockSpacing: 6,
	}
}

// Convert parses the source and returns the story.
func (c *Converter) Convert(source []byte) ([]layout.Flowable, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(gmtext.NewReader(source))
	return c.blocks(doc, source), nil
}

func (c *Converter) blocks(parent ast.Node, src []byte) []layout.Flowable {
	var story []layout.Flowable
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if fl := c.block(n, src); fl != nil {
			story = append(story, fl)
			if c.BlockSpacing > 0 {
				story = append(story, layout.NewSpacer(0, c.BlockSpacing))
			}
		}
	}
	return story
}

func (c *Converter) block(n ast.Node, src []byte) layout.Flowable {
	switch b := n.(type) {
	case *ast.Heading:
		return c.heading(b, src)
	case *ast.Paragraph:
		return c.paragraph(b, src)
	case *ast.List:
		return c.list(b, src)
	case *ast.FencedCodeBlock:
		return c.codeBlock(b.Lines(), src)
	case *ast.CodeBlock:
		return c.codeBlock(b.Lines(), src)
	case *ast.Blockquote:
		return c.blockquote(b, src)
	case *ast.ThematicBreak:
		return c.rule()
	case *east.Table:
		return c.table(b, src)
	}
	return nil
}

// heading scales the body size by level: 2x for h1, 1.5x for h2, 1.25x
// below.
func (c *Converter) heading(n *ast.Heading, src []byte) layout.Flowable {
	style := c.Body
	style.Weight = fonts.WeightBold
	switch n.Level {
	case 1:
		style.Size = c.Body.Size * 2
	case 2:
		style.Size = c.Body.Size * 1.5
	default:
		style.Size = c.Body.Size * 1.25
	}
	p := layout.NewParagraph(c.Metrics, nodeText(n, src), style)
	// A heading stays with at least some of what follows.
	p.Breaks.BreakInside = layout.InsideAvoid
	return &layout.Tagged{Tag: headingTag(n.Level), Child: p}
}

func headingTag(level int) string {
	switch level {
	case 1:
		return "H1"
	case 2:
		return "H2"
	case 3:
		return "H3"
	case 4:
		return "H4"
	case 5:
		return "H5"
	}
	return "H6"
}

// paragraph builds an inline group so emphasis runs keep their styling.
func (c *Converter) paragraph(n *ast.Paragraph, src []byte) layout.Flowable {
	spans := c.spans(n, src, c.Body)
	if len(spans) == 0 {
		return nil
	}
	if len(spans) == 1 {
		return layout.NewParagraph(c.Metrics, spans[0].Text, spans[0].Style)
	}
	return layout.NewInlineGroup(c.Metrics, spans...)
}

// spans flattens a block's inline children into styled runs.
func (c *Converter) spans(parent ast.Node, src []byte, style layout.TextStyle) []layout.Span {
	var out []layout.Span
	add := func(text string, st layout.TextStyle) {
		if text == "" {
			return
		}
		if n := len(out); n > 0 && sameStyle(out[n-1].Style, st) {
			out[n-1].Text += text
			return
		}
		out = append(out, layout.Span{Text: text, Style: st})
	}
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch in := n.(type) {
		case *ast.Text:
			add(string(in.Segment.Value(src)), style)
			if in.SoftLineBreak() || in.HardLineBreak() {
				add(" ", style)
			}
		case *ast.Emphasis:
			st := style
			if in.Level >= 2 {
				st.Weight = fonts.WeightBold
			} else {
				st.Style = fonts.StyleItalic
			}
			for _, sp := range c.spans(in, src, st) {
				add(sp.Text, sp.Style)
			}
		case *ast.CodeSpan:
			st := c.Code
			st.Size = style.Size
			add(nodeText(in, src), st)
		case *ast.Link:
			for _, sp := range c.spans(in, src, style) {
				add(sp.Text, sp.Style)
			}
		default:
			add(nodeText(in, src), style)
		}
	}
	return out
}

func sameStyle(a, b layout.TextStyle) bool {
	return a.Family == b.Family && a.Weight == b.Weight && a.Style == b.Style &&
		a.Size == b.Size && a.Wrap == b.Wrap
}

func (c *Converter) list(n *ast.List, src []byte) layout.Flowable {
	var items []layout.Flowable
	number := n.Start
	for li := n.FirstChild(); li != nil; li = li.NextSibling() {
		bullet := "•"
		if n.IsOrdered() {
			bullet = itoa(number) + "."
			number++
		}
		// Tight lists wrap item text in a TextBlock, loose lists in a
		// Paragraph.
		var content layout.Flowable
		switch first := li.FirstChild().(type) {
		case *ast.Paragraph:
			content = c.paragraph(first, src)
		case *ast.TextBlock:
			if spans := c.spans(first, src, c.Body); len(spans) > 0 {
				content = layout.NewInlineGroup(c.Metrics, spans...)
			}
		default:
			content = layout.NewParagraph(c.Metrics, nodeText(li, src), c.Body)
		}
		if content == nil {
			continue
		}
		items = append(items, layout.NewListItem(c.Metrics, bullet, c.Body, content))
	}
	if len(items) == 0 {
		return nil
	}
	return layout.NewContainer(layout.BoxStyle{Margin: layout.UniformEdges(layout.Pt(0))}, items...)
}

func (c *Converter) codeBlock(lines *gmtext.Segments, src []byte) layout.Flowable {
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	style := c.Code
	style.Wrap = layout.WrapPreserve
	text := strings.TrimRight(sb.String(), "\n")
	return layout.NewContainer(layout.BoxStyle{
		Padding:    layout.UniformEdges(layout.Pt(6)),
		Margin:     layout.UniformEdges(layout.Pt(0)),
		Background: &layout.Background{Color: codeBackground},
	}, layout.NewParagraph(c.Metrics, text, style))
}

func (c *Converter) blockquote(n *ast.Blockquote, src []byte) layout.Flowable {
	children := c.blocks(n, src)
	if len(children) == 0 {
		return nil
	}
	return layout.NewContainer(layout.BoxStyle{
		Padding: layout.EdgeLengths{
			Left: layout.Pt(10), Top: layout.Pt(2), Right: layout.Pt(0), Bottom: layout.Pt(2),
		},
		Margin:      layout.UniformEdges(layout.Pt(0)),
		Border:      layout.Edges{Left: 2},
		BorderColor: quoteBorder,
	}, children...)
}

func (c *Converter) rule() layout.Flowable {
	return layout.NewContainer(layout.BoxStyle{
		Margin: layout.UniformEdges(layout.Pt(0)),
		Border: layout.Edges{Bottom: 0.5},
	}, layout.NewSpacer(0, 1))
}

// table maps GFM table nodes onto the table flowable. The header row repeats
// on continuation pages.
func (c *Converter) table(n *east.Table, src []byte) layout.Flowable {
	tb := layout.NewTable(c.Metrics, layout.TableStyle{
		CellPadding:  cellPadding,
		BorderWidth:  0.5,
		BorderColor:  tableBorder,
		Collapse:     true,
		RepeatHeader: true,
		Text:         c.Body,
	})
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		switch r := row.(type) {
		case *east.TableHeader:
			tb.AddHeaderRow(c.tableCells(r, src)...)
		case *east.TableRow:
			tb.AddRow(c.tableCells(r, src)...)
		}
	}
	return tb
}

func (c *Converter) tableCells(row ast.Node, src []byte) []layout.Cell {
	var cells []layout.Cell
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		tc, ok := cell.(*east.TableCell)
		if !ok {
			continue
		}
		out := layout.Cell{Text: nodeText(tc, src)}
		switch tc.Alignment {
		case east.AlignCenter:
			out.Align = layout.AlignCenter
		case east.AlignRight:
			out.Align = layout.AlignRight
		}
		cells = append(cells, out)
	}
	return cells
}
