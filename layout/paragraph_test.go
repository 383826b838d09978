package layout

import (
	"reflect"
	"strings"
	"testing"

	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/render"
)

// drawStrings draws fl on a single recorded page and returns the emitted
// text commands in order.
func drawStrings(fl Flowable, availW, availH float64) []string {
	rec := render.NewRecorder()
	c := rec.BeginPage(availW, availH)
	fl.Draw(c, 0, 0, availW, availH)
	rec.EndPage()
	return rec.Pages[0].Strings()
}

func TestParagraphWrap(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "one two three four", TextStyle{Size: 10})
	sz := p.Wrap(45, 1000)
	// 5pt per rune: "one two" / "three" / "four".
	if sz.H != 36 {
		t.Fatalf("height = %v, want 36", sz.H)
	}
	if sz.W != 35 {
		t.Fatalf("width = %v, want 35", sz.W)
	}
	want := []string{"one two", "three", "four"}
	if got := drawStrings(p, 45, 1000); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
}

func TestParagraphSplitRoundTrip(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "one two three four", TextStyle{Size: 10})
	first, rest, ok := p.Split(45, 24)
	if !ok {
		t.Fatalf("split failed")
	}
	if h := first.Wrap(45, 1000).H; h > 24 {
		t.Fatalf("first part height %v exceeds available 24", h)
	}

	var all []string
	all = append(all, drawStrings(first, 45, 1000)...)
	all = append(all, drawStrings(rest, 45, 1000)...)
	want := drawStrings(p, 45, 1000)
	if !reflect.DeepEqual(all, want) {
		t.Fatalf("concatenated halves = %q, want %q", all, want)
	}

	// Break hints on the shared edge are cleared so the continuation does
	// not re-trigger a forced break.
	if first.Pagination().BreakAfter != BreakAuto {
		t.Fatalf("first part kept BreakAfter")
	}
	if rest.Pagination().BreakBefore != BreakAuto {
		t.Fatalf("rest kept BreakBefore")
	}
}

func TestParagraphSplitHonorsOrphans(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "one two three four", TextStyle{Size: 10})
	p.Breaks.Orphans = 3
	if _, _, ok := p.Split(45, 24); ok {
		t.Fatalf("split succeeded with only 2 of 3 orphan lines fitting")
	}
}

func TestParagraphWrapNone(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "abcdefghij\nxy", TextStyle{Size: 10, Wrap: WrapNone})
	sz := p.Wrap(30, 1000)
	if sz.H != 24 {
		t.Fatalf("height = %v, want 24 (one line per input line)", sz.H)
	}
	got := drawStrings(p, 30, 1000)
	want := []string{"abcde" + ellipsis, "xy"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	// Truncation is a draw-time effect; the source text survives.
	if p.Text != "abcdefghij\nxy" {
		t.Fatalf("text mutated: %q", p.Text)
	}
}

func TestParagraphAlignRight(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "ab", TextStyle{Size: 10, Align: AlignRight})
	rec := render.NewRecorder()
	c := rec.BeginPage(100, 100)
	p.Draw(c, 0, 0, 100, 100)
	rec.EndPage()
	cmds := rec.Pages[0].Commands
	if len(cmds) != 1 || cmds[0].Op != "text" {
		t.Fatalf("unexpected commands: %+v", cmds)
	}
	// "ab" is 10pt wide, so the right-aligned x offset is 90.
	if x := cmds[0].Args[0]; x != 90 {
		t.Fatalf("x = %v, want 90", x)
	}
}

func TestParagraphIntrinsicWidth(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "one two\nthree", TextStyle{Size: 10})
	w, ok := p.IntrinsicWidth()
	if !ok || w != 35 {
		t.Fatalf("intrinsic width = %v, %v; want 35, true", w, ok)
	}
	if mc := p.minContentWidth(); mc != 25 {
		t.Fatalf("min content width = %v, want 25", mc)
	}
}

func TestParagraphCloneSharesCaches(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "one two three", TextStyle{Size: 10})
	p.Wrap(45, 1000)
	clone := p.Clone().(*Paragraph)
	if clone.caches != p.caches {
		t.Fatalf("clone does not share layout caches")
	}
	if !strings.Contains(clone.Text, "one") {
		t.Fatalf("clone text = %q", clone.Text)
	}
}
