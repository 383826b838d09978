// Package htmldoc converts a subset of HTML into a flowable story. It
// understands the common block elements (headings, paragraphs, lists,
// preformatted text, tables); stylesheets are not interpreted.
package htmldoc

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/layout"
	"github.com/wudi/flowkit/render"
)

// Converter maps HTML elements onto flowables.
type Converter struct {
	Metrics fonts.Metrics
	Body    layout.TextStyle
	Pre     layout.TextStyle
	// BlockSpacing is the vertical gap inserted after each block.
	BlockSpacing float64
}

// New returns a converter with the default styles.
func New(m fonts.Metrics) *Converter {
	return &Converter{
		Metrics:      m,
		Body:         layout.TextStyle{Family: "Helvetica", Size: 12},
		Pre:          layout.TextStyle{Family: "Courier", Size: 10},
		BlockSpacing: 6,
	}
}

// Convert parses the document and returns the story.
func (c *Converter) Convert(r io.Reader) ([]layout.Flowable, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	var story []layout.Flowable
	c.walk(doc, &story)
	return story, nil
}

func (c *Converter) append(story *[]layout.Flowable, fl layout.Flowable) {
	if fl == nil {
		return
	}
	*story = append(*story, fl)
	if c.BlockSpacing > 0 {
		*story = append(*story, layout.NewSpacer(0, c.BlockSpacing))
	}
}

func (c *Converter) walk(n *html.Node, story *[]layout.Flowable) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			c.append(story, c.heading(n))
			return
		case atom.P:
			c.append(story, c.paragraph(n))
			return
		case atom.Ul:
			c.append(story, c.list(n, false))
			return
		case atom.Ol:
			c.append(story, c.list(n, true))
			return
		case atom.Pre:
			c.append(story, c.pre(n))
			return
		case atom.Table:
			c.append(story, c.table(n))
			return
		case atom.Hr:
			c.append(story, layout.NewContainer(layout.BoxStyle{
				Margin: layout.UniformEdges(layout.Pt(0)),
				Border: layout.Edges{Bottom: 0.5},
			}, layout.NewSpacer(0, 1)))
			return
		case atom.Script, atom.Style:
			return
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child, story)
	}
}

func (c *Converter) heading(n *html.Node) layout.Flowable {
	style := c.Body
	style.Weight = fonts.WeightBold
	switch n.DataAtom {
	case atom.H1:
		style.Size = c.Body.Size * 2
	case atom.H2:
		style.Size = c.Body.Size * 1.5
	default:
		style.Size = c.Body.Size * 1.25
	}
	p := layout.NewParagraph(c.Metrics, extractText(n), style)
	p.Breaks.BreakInside = layout.InsideAvoid
	return &layout.Tagged{Tag: strings.ToUpper(n.Data), Child: p}
}

// paragraph flattens inline children into styled spans: <b>/<strong> bold,
// <i>/<em> italic, <code> monospace.
func (c *Converter) paragraph(n *html.Node) layout.Flowable {
	spans := c.spans(n, c.Body)
	if len(spans) == 0 {
		return nil
	}
	if len(spans) == 1 {
		return layout.NewParagraph(c.Metrics, spans[0].Text, spans[0].Style)
	}
	return layout.NewInlineGroup(c.Metrics, spans...)
}

func (c *Converter) spans(n *html.Node, style layout.TextStyle) []layout.Span {
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
	var visit func(*html.Node, layout.TextStyle)
	visit = func(node *html.Node, st layout.TextStyle) {
		switch node.Type {
		case html.TextNode:
			add(foldSpace(node.Data), st)
			return
		case html.ElementNode:
			switch node.DataAtom {
			case atom.B, atom.Strong:
				st.Weight = fonts.WeightBold
			case atom.I, atom.Em:
				st.Style = fonts.StyleItalic
			case atom.Code:
				st.Family = c.Pre.Family
			case atom.Br:
				add("\n", st)
				return
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			visit(child, st)
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		visit(child, style)
	}
	return out
}

func sameStyle(a, b layout.TextStyle) bool {
	return a.Family == b.Family && a.Weight == b.Weight && a.Style == b.Style &&
		a.Size == b.Size && a.Wrap == b.Wrap
}

func (c *Converter) list(n *html.Node, ordered bool) layout.Flowable {
	var items []layout.Flowable
	number := 1
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		bullet := "•"
		if ordered {
			bullet = itoa(number) + "."
			number++
		}
		content := c.paragraph(li)
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

func (c *Converter) pre(n *html.Node) layout.Flowable {
	style := c.Pre
	style.Wrap = layout.WrapPreserve
	text := strings.TrimRight(rawText(n), "\n")
	return layout.NewContainer(layout.BoxStyle{
		Padding:    layout.UniformEdges(layout.Pt(6)),
		Margin:     layout.UniformEdges(layout.Pt(0)),
		Background: &layout.Background{Color: render.RGB(0.95, 0.95, 0.95)},
	}, layout.NewParagraph(c.Metrics, text, style))
}

// table reads <tr> rows anywhere under the table element; <th> cells form
// header rows.
func (c *Converter) table(n *html.Node) layout.Flowable {
	tb := layout.NewTable(c.Metrics, layout.TableStyle{
		CellPadding:  geom.UniformInsets(3),
		BorderWidth:  0.5,
		BorderColor:  render.RGB(0.6, 0.6, 0.6),
		Collapse:     true,
		RepeatHeader: true,
		Text:         c.Body,
	})
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.ElementNode && node.DataAtom == atom.Tr {
			cells, header := c.tableRow(node)
			if len(cells) == 0 {
				return
			}
			if header {
				tb.AddHeaderRow(cells...)
			} else {
				tb.AddRow(cells...)
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(n)
	return tb
}

func (c *Converter) tableRow(tr *html.Node) (cells []layout.Cell, header bool) {
	for td := tr.FirstChild; td != nil; td = td.NextSibling {
		if td.Type != html.ElementNode {
			continue
		}
		switch td.DataAtom {
		case atom.Th:
			header = true
		case atom.Td:
		default:
			continue
		}
		cell := layout.Cell{Text: extractText(td), ColSpan: intAttr(td, "colspan")}
		cells = append(cells, cell)
	}
	return cells, header
}
