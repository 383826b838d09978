package htmldoc

import (
	"strings"
	"testing"

	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/layout"
)

func convert(t *testing.T, src string) []layout.Flowable {
	t.Helper()
	story, err := New(fonts.Fixed{}).Convert(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	return story
}

func firstBlock(story []layout.Flowable) layout.Flowable {
	for _, fl := range story {
		if _, ok := fl.(*layout.Spacer); !ok {
			return fl
		}
	}
	return nil
}

func TestConvertHeading(t *testing.T) {
	story := convert(t, "<h1>Report</h1>")
	tg, ok := firstBlock(story).(*layout.Tagged)
	if !ok {
		t.Fatalf("block = %T", firstBlock(story))
	}
	if tg.Tag != "H1" {
		t.Fatalf("tag = %q", tg.Tag)
	}
	p := tg.Child.(*layout.Paragraph)
	if p.Text != "Report" || p.Style.Size != 24 {
		t.Fatalf("text = %q size = %v", p.Text, p.Style.Size)
	}
}

func TestConvertParagraphStyles(t *testing.T) {
	story := convert(t, "<p>a <b>bold</b> and <i>slanted</i> word</p>")
	g, ok := firstBlock(story).(*layout.InlineGroup)
	if !ok {
		t.Fatalf("block = %T", firstBlock(story))
	}
	var bold, italic bool
	for _, sp := range g.Spans {
		if sp.Style.Weight == fonts.WeightBold && strings.Contains(sp.Text, "bold") {
			bold = true
		}
		if sp.Style.Style == fonts.StyleItalic && strings.Contains(sp.Text, "slanted") {
			italic = true
		}
	}
	if !bold || !italic {
		t.Fatalf("spans = %+v", g.Spans)
	}
}

func TestConvertListOrdering(t *testing.T) {
	story := convert(t, "<ol><li>one</li><li>two</li></ol>")
	ct, ok := firstBlock(story).(*layout.Container)
	if !ok {
		t.Fatalf("block = %T", firstBlock(story))
	}
	if len(ct.Children) != 2 {
		t.Fatalf("items = %d", len(ct.Children))
	}
	if got := ct.Children[1].(*layout.ListItem).Bullet; got != "2." {
		t.Fatalf("bullet = %q", got)
	}
}

func TestConvertPre(t *testing.T) {
	story := convert(t, "<pre>line one\n  indented</pre>")
	ct := firstBlock(story).(*layout.Container)
	p := ct.Children[0].(*layout.Paragraph)
	if p.Style.Wrap != layout.WrapPreserve {
		t.Fatalf("wrap = %v", p.Style.Wrap)
	}
	if !strings.Contains(p.Text, "  indented") {
		t.Fatalf("indentation lost: %q", p.Text)
	}
}

func TestConvertTable(t *testing.T) {
	src := `<table>
		<tr><th>Name</th><th>Qty</th></tr>
		<tr><td>ant</td><td>1</td></tr>
		<tr><td colspan="2">total</td></tr>
	</table>`
	story := convert(t, src)
	tb, ok := firstBlock(story).(*layout.Table)
	if !ok {
		t.Fatalf("block = %T", firstBlock(story))
	}
	if tb.RowCount() != 2 {
		t.Fatalf("rows = %d, want 2", tb.RowCount())
	}
}

func TestConvertSkipsScripts(t *testing.T) {
	story := convert(t, "<script>alert(1)</script><p>body</p>")
	p, ok := firstBlock(story).(*layout.Paragraph)
	if !ok {
		t.Fatalf("block = %T", firstBlock(story))
	}
	if p.Text != "body" {
		t.Fatalf("text = %q", p.Text)
	}
}

func TestFoldSpace(t *testing.T) {
	if got := foldSpace("  a \n\t b  "); got != " a b " {
		t.Fatalf("foldSpace = %q", got)
	}
}
