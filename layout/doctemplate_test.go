package layout

import (
	"context"
	"errors"
	"testing"

	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/observability"
	"github.com/wudi/flowkit/render"
)

// testTemplate is a page with one frame fitting two 12pt lines.
func testTemplate() PageTemplate {
	return PageTemplate{
		Name:     "main",
		PageSize: geom.Size{W: 200, H: 100},
		Frames:   []geom.Rect{{X: 10, Y: 10, W: 45, H: 24}},
	}
}

func build(t *testing.T, templates []PageTemplate, story []Flowable, opts ...Option) (*BuildResult, *render.Recorder) {
	t.Helper()
	rec := render.NewRecorder()
	res, err := NewDocTemplate(templates, opts...).Build(context.Background(), story, rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res, rec
}

func TestBuildEmptyStoryEmitsOnePage(t *testing.T) {
	res, rec := build(t, []PageTemplate{testTemplate()}, nil)
	if res.Pages != 1 || len(rec.Pages) != 1 {
		t.Fatalf("pages = %d / %d, want 1", res.Pages, len(rec.Pages))
	}
}

func TestBuildNoTemplates(t *testing.T) {
	_, err := NewDocTemplate(nil).Build(context.Background(), nil, render.NewRecorder())
	if !errors.Is(err, ErrNoPageTemplate) {
		t.Fatalf("err = %v, want ErrNoPageTemplate", err)
	}
}

func TestBuildRejectsEmptyFrame(t *testing.T) {
	tmpl := PageTemplate{Name: "bad", PageSize: geom.Size{W: 100, H: 100}, Frames: []geom.Rect{{}}}
	_, err := NewDocTemplate([]PageTemplate{tmpl}).Build(context.Background(), nil, render.NewRecorder())
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestBreakBeforeIgnoredAtPageTop(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "one", TextStyle{Size: 10})
	p.Breaks.BreakBefore = BreakPage
	res, _ := build(t, []PageTemplate{testTemplate()}, []Flowable{p})
	if res.Pages != 1 {
		t.Fatalf("pages = %d, want 1 (break at page top is a no-op)", res.Pages)
	}
}

func TestBreakBeforeStartsNewPage(t *testing.T) {
	a := NewParagraph(fonts.Fixed{}, "one", TextStyle{Size: 10})
	b := NewParagraph(fonts.Fixed{}, "two", TextStyle{Size: 10})
	b.Breaks.BreakBefore = BreakPage
	res, rec := build(t, []PageTemplate{testTemplate()}, []Flowable{a, b})
	if res.Pages != 2 {
		t.Fatalf("pages = %d, want 2", res.Pages)
	}
	if got := rec.Pages[1].Strings(); len(got) != 1 || got[0] != "two" {
		t.Fatalf("page 2 = %q", got)
	}
}

func TestTrailingBreakAfterEmitsNoBlankPage(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "one", TextStyle{Size: 10})
	p.Breaks.BreakAfter = BreakPage
	res, _ := build(t, []PageTemplate{testTemplate()}, []Flowable{p})
	if res.Pages != 1 {
		t.Fatalf("pages = %d, want 1 (trailing blank page dropped)", res.Pages)
	}
}

func TestParagraphSplitsAcrossPages(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "one two three four", TextStyle{Size: 10})
	res, rec := build(t, []PageTemplate{testTemplate()}, []Flowable{p})
	if res.Pages != 2 {
		t.Fatalf("pages = %d, want 2", res.Pages)
	}
	var all []string
	for _, pg := range rec.Pages {
		all = append(all, pg.Strings()...)
	}
	want := []string{"one two", "three", "four"}
	if len(all) != len(want) {
		t.Fatalf("texts = %q, want %q", all, want)
	}
	for i := range want {
		if all[i] != want[i] {
			t.Fatalf("texts = %q, want %q", all, want)
		}
	}
}

func TestKeepTogetherBouncesToNextPage(t *testing.T) {
	filler := NewSpacer(10, 14)
	keep := NewParagraph(fonts.Fixed{}, "one two three", TextStyle{Size: 10})
	keep.Breaks.BreakInside = InsideAvoid
	// Ten remaining points fit nothing; a fresh 24pt frame fits the whole
	// two-line wrap only after the first frame is left as is.
	res, rec := build(t, []PageTemplate{testTemplate()}, []Flowable{filler, keep})
	if res.Pages != 2 {
		t.Fatalf("pages = %d, want 2", res.Pages)
	}
	if got := rec.Pages[0].Strings(); len(got) != 0 {
		t.Fatalf("page 1 texts = %q, want none", got)
	}
	if got := rec.Pages[1].Strings(); len(got) != 2 {
		t.Fatalf("page 2 texts = %q, want both lines", got)
	}
}

func TestKeepTogetherTallerThanFrameStillSplits(t *testing.T) {
	filler := NewSpacer(10, 14)
	keep := NewParagraph(fonts.Fixed{}, "aaaaaaa bbbbbbb ccccccc ddddddd", TextStyle{Size: 10})
	keep.Breaks.BreakInside = InsideAvoid
	// Four 12pt lines can never fit a 24pt frame whole, so keep-together
	// cannot hold; the paragraph breaks across fresh frames instead of
	// failing the build.
	res, rec := build(t, []PageTemplate{testTemplate()}, []Flowable{filler, keep})
	if res.Pages != 3 {
		t.Fatalf("pages = %d, want 3", res.Pages)
	}
	var texts []string
	for _, pg := range rec.Pages {
		texts = append(texts, pg.Strings()...)
	}
	want := []string{"aaaaaaa", "bbbbbbb", "ccccccc", "ddddddd"}
	if len(texts) != len(want) {
		t.Fatalf("texts = %q, want %q", texts, want)
	}
	for i, w := range want {
		if texts[i] != w {
			t.Fatalf("texts[%d] = %q, want %q", i, texts[i], w)
		}
	}
}

func TestUnsplittableForcePlacesOnEmptyFrame(t *testing.T) {
	tall := NewSpacer(10, 500)
	res, _ := build(t, []PageTemplate{testTemplate()}, []Flowable{tall})
	if res.Pages != 1 {
		t.Fatalf("pages = %d, want 1 (force-placed)", res.Pages)
	}
}

func TestBouncedUnsplittableFails(t *testing.T) {
	filler := NewSpacer(10, 14)
	tall := NewSpacer(10, 500)
	tall.Breaks.BreakInside = InsideAvoid
	rec := render.NewRecorder()
	_, err := NewDocTemplate([]PageTemplate{testTemplate()}).
		Build(context.Background(), []Flowable{filler, tall}, rec)
	var ue *UnplaceableError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UnplaceableError", err)
	}
	if ue.Item != "Spacer" {
		t.Fatalf("item = %q", ue.Item)
	}
}

func TestTemplateSequenceClampsToLast(t *testing.T) {
	first := testTemplate()
	first.Name = "cover"
	rest := testTemplate()
	rest.Name = "body"
	p := NewParagraph(fonts.Fixed{}, "one two three four five six seven eight", TextStyle{Size: 10})
	res, _ := build(t, []PageTemplate{first, rest}, []Flowable{p})
	if res.Pages < 3 {
		t.Fatalf("pages = %d, want at least 3", res.Pages)
	}
	if res.PageStats[0].Template != "cover" {
		t.Fatalf("page 1 template = %q", res.PageStats[0].Template)
	}
	for _, m := range res.PageStats[1:] {
		if m.Template != "body" {
			t.Fatalf("page %d template = %q, want body", m.Page, m.Template)
		}
	}
}

func TestFixedPositionedOverlaysEveryPage(t *testing.T) {
	hdr := &Positioned{Fixed: true, X: 0, Y: 0, Child: NewParagraph(fonts.Fixed{}, "hdr", TextStyle{Size: 10})}
	p := NewParagraph(fonts.Fixed{}, "one two three four", TextStyle{Size: 10})
	res, rec := build(t, []PageTemplate{testTemplate()}, []Flowable{hdr, p})
	if res.Pages != 2 {
		t.Fatalf("pages = %d, want 2", res.Pages)
	}
	for i, pg := range rec.Pages {
		found := false
		for _, s := range pg.Strings() {
			if s == "hdr" {
				found = true
			}
		}
		if !found {
			t.Fatalf("page %d missing overlay", i+1)
		}
		// Overlays draw after the body.
		if texts := pg.Strings(); texts[len(texts)-1] != "hdr" {
			t.Fatalf("page %d overlay not last: %q", i+1, texts)
		}
	}
}

func TestPageHooksRun(t *testing.T) {
	var calls []string
	tmpl := testTemplate()
	tmpl.OnPage = func(page int, name string) {
		calls = append(calls, "tmpl")
	}
	p := NewParagraph(fonts.Fixed{}, "one", TextStyle{Size: 10})
	build(t, []PageTemplate{tmpl}, []Flowable{p}, WithPageHook(func(page int, name string) {
		calls = append(calls, "doc")
		if name != "main" || page != 1 {
			t.Errorf("hook args = %d, %q", page, name)
		}
	}))
	if len(calls) != 2 || calls[0] != "tmpl" || calls[1] != "doc" {
		t.Fatalf("hook calls = %q", calls)
	}
}

// captureLogger records every entry for assertions.
type captureLogger struct {
	msgs   []string
	fields [][]observability.Field
}

func (l *captureLogger) log(msg string, fields []observability.Field) {
	l.msgs = append(l.msgs, msg)
	l.fields = append(l.fields, fields)
}

func (l *captureLogger) Debug(msg string, f ...observability.Field) { l.log(msg, f) }
func (l *captureLogger) Info(msg string, f ...observability.Field)  { l.log(msg, f) }
func (l *captureLogger) Warn(msg string, f ...observability.Field)  { l.log(msg, f) }
func (l *captureLogger) Error(msg string, f ...observability.Field) { l.log(msg, f) }
func (l *captureLogger) With(...observability.Field) observability.Logger {
	return l
}

func TestBuildLogsTableRows(t *testing.T) {
	lg := &captureLogger{}
	tb := testTable(3)
	build(t, []PageTemplate{testTemplate()}, []Flowable{tb}, WithLogger(lg))
	for i, msg := range lg.msgs {
		if msg != "prepared table" {
			continue
		}
		for _, f := range lg.fields[i] {
			if f.Key() == observability.MetricTableRows && f.Value() == 3 {
				return
			}
		}
	}
	t.Fatalf("no %q entry with %s=3, got %q", "prepared table", observability.MetricTableRows, lg.msgs)
}

func firstTextY(t *testing.T, pg *render.RecordedPage) float64 {
	t.Helper()
	for _, c := range pg.Commands {
		if c.Op == "text" {
			return c.Args[1]
		}
	}
	t.Fatal("no text command on page")
	return 0
}

func TestFrameRewindsAcrossPages(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "one two three four", TextStyle{Size: 10})
	_, rec := build(t, []PageTemplate{testTemplate()}, []Flowable{p})
	if len(rec.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(rec.Pages))
	}
	y1, y2 := firstTextY(t, rec.Pages[0]), firstTextY(t, rec.Pages[1])
	if y1 != y2 {
		t.Fatalf("page 2 starts at y=%v, page 1 at y=%v; frame did not rewind", y2, y1)
	}
}

func TestPageMetricsRecorded(t *testing.T) {
	p := NewParagraph(fonts.Fixed{}, "one two three four", TextStyle{Size: 10})
	res, rec := build(t, []PageTemplate{testTemplate()}, []Flowable{p})
	if len(res.PageStats) != res.Pages {
		t.Fatalf("metrics for %d of %d pages", len(res.PageStats), res.Pages)
	}
	for i, m := range res.PageStats {
		if m.Page != i+1 {
			t.Fatalf("page number = %d, want %d", m.Page, i+1)
		}
		if m.Commands != rec.Pages[i].CommandCount() {
			t.Fatalf("page %d commands = %d, recorder has %d", m.Page, m.Commands, rec.Pages[i].CommandCount())
		}
		if m.Items == 0 {
			t.Fatalf("page %d has no items", m.Page)
		}
	}
}

func TestBuildRejectsDeepNesting(t *testing.T) {
	var node Flowable = NewSpacer(10, 10)
	for i := 0; i < 100; i++ {
		node = NewContainer(BoxStyle{Margin: UniformEdges(Pt(0))}, node)
	}
	_, err := NewDocTemplate([]PageTemplate{testTemplate()}).
		Build(context.Background(), []Flowable{node}, render.NewRecorder())
	if err == nil {
		t.Fatalf("expected nesting depth error")
	}
	if _, err := NewDocTemplate([]PageTemplate{testTemplate()}, WithMaxNestDepth(200)).
		Build(context.Background(), []Flowable{node}, render.NewRecorder()); err != nil {
		t.Fatalf("raised limit still fails: %v", err)
	}
}

func TestBuildAssignsTableIDs(t *testing.T) {
	tb := NewTable(fonts.Fixed{}, TableStyle{Text: TextStyle{Size: 10}})
	tb.AddRow(Cell{Text: "a"})
	build(t, []PageTemplate{testTemplate()}, []Flowable{tb})
	if tb.id == 0 {
		t.Fatalf("table did not receive a build ID")
	}
}

func TestBuildHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewParagraph(fonts.Fixed{}, "one", TextStyle{Size: 10})
	_, err := NewDocTemplate([]PageTemplate{testTemplate()}).
		Build(ctx, []Flowable{p}, render.NewRecorder())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestMultiFrameCycling(t *testing.T) {
	tmpl := PageTemplate{
		Name:     "two-col",
		PageSize: geom.Size{W: 200, H: 100},
		Frames: []geom.Rect{
			{X: 10, Y: 10, W: 45, H: 24},
			{X: 100, Y: 10, W: 45, H: 24},
		},
	}
	p := NewParagraph(fonts.Fixed{}, "one two three four", TextStyle{Size: 10})
	res, rec := build(t, []PageTemplate{tmpl}, []Flowable{p})
	if res.Pages != 1 {
		t.Fatalf("pages = %d, want 1 (content flows to the second frame)", res.Pages)
	}
	var xs []float64
	for _, cmd := range rec.Pages[0].Commands {
		if cmd.Op == "text" {
			xs = append(xs, cmd.Args[0])
		}
	}
	if len(xs) != 3 {
		t.Fatalf("texts = %d, want 3", len(xs))
	}
	if xs[2] < 100 {
		t.Fatalf("third line x = %v, want it in the second frame", xs[2])
	}
}
