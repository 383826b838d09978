package layout

import (
	"testing"

	"github.com/wudi/flowkit/fonts"
)

func TestFlexRowGrow(t *testing.T) {
	f := NewFlex(FlexRow,
		FlexItem{Child: NewSpacer(20, 10), Grow: 1},
		FlexItem{Child: NewSpacer(20, 10), Grow: 3},
	)
	lay := f.layoutFor(100, 0)
	items := lay.lines[0].items
	if items[0].w != 35 || items[1].w != 65 {
		t.Fatalf("widths = %v, %v; want 35, 65", items[0].w, items[1].w)
	}
	if sum := items[0].w + items[1].w; sum != 100 {
		t.Fatalf("widths sum to %v, want 100", sum)
	}
}

func TestFlexRowFlexibleSharesEqually(t *testing.T) {
	f := NewFlex(FlexRow,
		FlexItem{Child: NewSpacer(10, 10), Flexible: true},
		FlexItem{Child: NewSpacer(30, 10)},
		FlexItem{Child: NewSpacer(10, 10), Flexible: true},
	)
	lay := f.layoutFor(110, 0)
	items := lay.lines[0].items
	// 60pt of surplus splits between the two flexible items.
	if items[0].w != 40 || items[1].w != 30 || items[2].w != 40 {
		t.Fatalf("widths = %v, %v, %v; want 40, 30, 40", items[0].w, items[1].w, items[2].w)
	}
}

func TestFlexRowShrink(t *testing.T) {
	f := NewFlex(FlexRow,
		FlexItem{Child: NewSpacer(80, 10)},
		FlexItem{Child: NewSpacer(80, 10)},
	)
	lay := f.layoutFor(100, 0)
	items := lay.lines[0].items
	if items[0].w != 50 || items[1].w != 50 {
		t.Fatalf("widths = %v, %v; want 50, 50", items[0].w, items[1].w)
	}
}

func TestFlexJustifyCenter(t *testing.T) {
	f := NewFlex(FlexRow, FlexItem{Child: NewSpacer(40, 10)})
	f.Justify = JustifyCenter
	lay := f.layoutFor(100, 0)
	if x := lay.lines[0].items[0].x; x != 30 {
		t.Fatalf("x = %v, want 30", x)
	}
}

func TestFlexSpaceBetween(t *testing.T) {
	f := NewFlex(FlexRow,
		FlexItem{Child: NewSpacer(20, 10)},
		FlexItem{Child: NewSpacer(20, 10)},
	)
	f.Justify = JustifySpaceBetween
	lay := f.layoutFor(100, 0)
	items := lay.lines[0].items
	if items[0].x != 0 || items[1].x != 80 {
		t.Fatalf("positions = %v, %v; want 0, 80", items[0].x, items[1].x)
	}
}

func TestFlexWrapLines(t *testing.T) {
	f := NewFlex(FlexRow,
		FlexItem{Child: NewSpacer(40, 10)},
		FlexItem{Child: NewSpacer(40, 10)},
		FlexItem{Child: NewSpacer(40, 10)},
	)
	f.Wrapped = true
	lay := f.layoutFor(100, 0)
	if len(lay.lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lay.lines))
	}
	if lay.size.H != 20 {
		t.Fatalf("height = %v, want 20", lay.size.H)
	}
}

func TestFlexAlignStretch(t *testing.T) {
	f := NewFlex(FlexRow,
		FlexItem{Child: NewSpacer(20, 10)},
		FlexItem{Child: NewSpacer(20, 30)},
	)
	lay := f.layoutFor(100, 0)
	items := lay.lines[0].items
	if items[0].h != 30 {
		t.Fatalf("stretched height = %v, want 30", items[0].h)
	}
}

func TestFlexColumnSplit(t *testing.T) {
	f := NewFlex(FlexColumn,
		FlexItem{Child: NewSpacer(20, 50)},
		FlexItem{Child: NewSpacer(20, 50)},
	)
	first, rest, ok := f.Split(100, 60)
	if !ok {
		t.Fatalf("split failed")
	}
	if n := len(first.(*Flex).Items); n != 1 {
		t.Fatalf("first items = %d, want 1", n)
	}
	if n := len(rest.(*Flex).Items); n != 1 {
		t.Fatalf("rest items = %d, want 1", n)
	}
}

func TestFlexColumnSplitStraddler(t *testing.T) {
	para := NewParagraph(fonts.Fixed{}, "one two three four", TextStyle{Size: 10})
	f := NewFlex(FlexColumn,
		FlexItem{Child: NewSpacer(20, 10)},
		FlexItem{Child: para},
	)
	// 10pt spacer plus two of the paragraph's three lines fit.
	first, rest, ok := f.Split(45, 34)
	if !ok {
		t.Fatalf("split failed")
	}
	if n := len(first.(*Flex).Items); n != 2 {
		t.Fatalf("first items = %d, want 2", n)
	}
	if n := len(rest.(*Flex).Items); n != 1 {
		t.Fatalf("rest items = %d, want 1", n)
	}
}

func TestFlexSingleRowItemSplits(t *testing.T) {
	para := NewParagraph(fonts.Fixed{}, "one two three four", TextStyle{Size: 10})
	f := NewFlex(FlexRow, FlexItem{Child: para, Grow: 1})
	first, rest, ok := f.Split(45, 24)
	if !ok {
		t.Fatalf("split failed")
	}
	if first == nil || rest == nil {
		t.Fatalf("nil halves")
	}
}

func TestFlexWrapSplitsAtLineBoundary(t *testing.T) {
	f := NewFlex(FlexRow,
		FlexItem{Child: NewSpacer(60, 10)},
		FlexItem{Child: NewSpacer(60, 10)},
		FlexItem{Child: NewSpacer(60, 10)},
	)
	f.Wrapped = true
	// Three lines of one item each; two fit 25pt.
	first, rest, ok := f.Split(100, 25)
	if !ok {
		t.Fatalf("split failed")
	}
	if n := len(first.(*Flex).Items); n != 2 {
		t.Fatalf("first items = %d, want 2", n)
	}
	if n := len(rest.(*Flex).Items); n != 1 {
		t.Fatalf("rest items = %d, want 1", n)
	}
}

func TestFlexRowHeightBoundedByAvail(t *testing.T) {
	f := NewFlex(FlexRow, FlexItem{Child: NewSpacer(10, 30)})
	if h := f.Wrap(100, 50).H; h != 50 {
		t.Fatalf("bounded height = %v, want 50", h)
	}
	if h := f.Wrap(100, 0).H; h != 30 {
		t.Fatalf("unbounded height = %v, want 30 (tallest item)", h)
	}
}

func TestFlexWrapSplitsInsideTallFirstLine(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "aaaaaaa bbbbbbb ccccccc ddddddd", TextStyle{Size: 10})
	f := NewFlex(FlexRow,
		FlexItem{Child: p, Basis: Pt(40)},
		FlexItem{Child: NewSpacer(10, 10), Basis: Pt(10)},
	)
	f.Wrapped = true
	// The first line is the four-line paragraph alone (48pt); 24pt takes
	// two of its lines, the rest and the spacer line carry over.
	first, rest, ok := f.Split(40, 24)
	if !ok {
		t.Fatalf("split failed")
	}
	if h := first.Wrap(40, 1e9).H; h != 24 {
		t.Fatalf("first height = %v, want 24", h)
	}
	if n := len(rest.(*Flex).Items); n != 2 {
		t.Fatalf("rest items = %d, want 2", n)
	}
	texts := append(drawStrings(first, 40, 24), drawStrings(rest, 40, 100)...)
	want := []string{"aaaaaaa", "bbbbbbb", "ccccccc", "ddddddd"}
	if len(texts) != len(want) {
		t.Fatalf("texts = %q", texts)
	}
	for i, w := range want {
		if texts[i] != w {
			t.Fatalf("texts[%d] = %q, want %q", i, texts[i], w)
		}
	}
}

func TestFlexIntrinsicWidth(t *testing.T) {
	f := NewFlex(FlexRow,
		FlexItem{Child: NewParagraph(fonts.Fixed{}, "abcd", TextStyle{Size: 10})},
		FlexItem{Child: NewParagraph(fonts.Fixed{}, "ab", TextStyle{Size: 10})},
	)
	f.Gap = 5
	w, ok := f.IntrinsicWidth()
	if !ok || w != 35 {
		t.Fatalf("intrinsic width = %v, %v; want 35, true", w, ok)
	}
}
