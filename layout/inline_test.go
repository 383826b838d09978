package layout

import (
	"strings"
	"testing"

	"github.com/wudi/flowkit/fonts"
)

func TestInlineGroupWrapMixesStyles(t *testing.T) {
	g := NewInlineGroup(fonts.Fixed{},
		Span{Text: "small ", Style: TextStyle{Size: 10}},
		Span{Text: "big", Style: TextStyle{Size: 20, Weight: fonts.WeightBold}},
	)
	sz := g.Wrap(1000, 1000)
	// One line whose height comes from the 20pt span.
	if sz.H != 24 {
		t.Fatalf("height = %v, want 24", sz.H)
	}
}

func TestInlineGroupWrapsAcrossSpans(t *testing.T) {
	g := NewInlineGroup(fonts.Fixed{},
		Span{Text: "one two ", Style: TextStyle{Size: 10}},
		Span{Text: "three", Style: TextStyle{Size: 10}},
	)
	// "one two " is 40pt; "three" (25pt) wraps to a second line at 45pt.
	sz := g.Wrap(45, 1000)
	if sz.H != 24 {
		t.Fatalf("height = %v, want 24 (two 12pt lines)", sz.H)
	}
}

func TestInlineGroupSplitPreservesText(t *testing.T) {
	g := NewInlineGroup(fonts.Fixed{},
		Span{Text: "one two ", Style: TextStyle{Size: 10}},
		Span{Text: "three four", Style: TextStyle{Size: 10}},
	)
	total := g.Wrap(45, 1000)
	first, rest, ok := g.Split(45, 24)
	if !ok {
		t.Fatalf("split failed")
	}
	h1 := first.Wrap(45, 1000).H
	h2 := rest.Wrap(45, 1000).H
	if h1+h2 != total.H {
		t.Fatalf("split heights %v + %v != %v", h1, h2, total.H)
	}

	joined := strings.Join(drawStrings(first, 45, 1000), " ") + " " +
		strings.Join(drawStrings(rest, 45, 1000), " ")
	for _, word := range []string{"one", "two", "three", "four"} {
		if !strings.Contains(joined, word) {
			t.Fatalf("word %q lost in split: %q", word, joined)
		}
	}
}

func TestInlineGroupSplitHonorsOrphans(t *testing.T) {
	g := NewInlineGroup(fonts.Fixed{},
		Span{Text: "one two three four five six", Style: TextStyle{Size: 10}},
	)
	g.Breaks.Orphans = 3
	// Only two lines fit, below the orphan minimum of three.
	if _, _, ok := g.Split(45, 24); ok {
		t.Fatalf("split violated the orphan minimum")
	}
}

func TestTokenizeInline(t *testing.T) {
	toks := tokenizeInline("a  bc\td")
	want := []string{"a", " ", "bc", " ", "d"}
	if len(toks) != len(want) {
		t.Fatalf("tokens = %q, want %q", toks, want)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("tokens = %q, want %q", toks, want)
		}
	}
}
