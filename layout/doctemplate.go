package layout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/observability"
	"github.com/wudi/flowkit/render"
)

// ErrNoPageTemplate is returned by Build when the document has no page
// templates to draw on.
var ErrNoPageTemplate = errors.New("layout: document has no page templates")

// maxNestDepthDefault bounds flowable tree depth; Build rejects deeper trees
// instead of risking stack growth inside Wrap and Split.
const maxNestDepthDefault = 64

// maxSplitsPerItem bounds how many continuation slices one story item may
// produce, so a misbehaving Split cannot loop the driver forever.
const maxSplitsPerItem = 10000

// UnplaceableError reports a story item that could not be placed on any
// frame: it does not fit an empty frame and either refuses to split or has
// already bounced off a partially filled frame.
type UnplaceableError struct {
	Item                    string
	Width, Height           float64
	FrameWidth, FrameHeight float64
	Breaks                  Pagination
}

func (e *UnplaceableError) Error() string {
	return fmt.Sprintf("layout: %s (%.1fx%.1f) does not fit frame (%.1fx%.1f)",
		e.Item, e.Width, e.Height, e.FrameWidth, e.FrameHeight)
}

// PageTemplate describes one page geometry: its size and the frames content
// flows through, in order.
type PageTemplate struct {
	Name     string
	PageSize geom.Size
	Frames   []geom.Rect
	// OnPage runs when a page using this template begins, before any
	// content is placed on it.
	OnPage func(page int, template string)
}

// PageMetrics summarizes one finalized page.
type PageMetrics struct {
	Page       int
	Template   string
	RenderTime time.Duration
	Commands   int
	Items      int
}

// BuildResult reports what Build produced.
type BuildResult struct {
	Pages     int
	PageStats []PageMetrics
	BuildTime time.Duration
}

// Option configures a DocTemplate.
type Option func(*DocTemplate)

// WithLogger sets the structured logger; the default discards everything.
func WithLogger(l observability.Logger) Option {
	return func(d *DocTemplate) { d.logger = l }
}

// WithTracer sets the tracer for build spans.
func WithTracer(t observability.Tracer) Option {
	return func(d *DocTemplate) { d.tracer = t }
}

// WithPageHook sets a hook run at the start of every page, after the
// template's own OnPage.
func WithPageHook(hook func(page int, template string)) Option {
	return func(d *DocTemplate) { d.onPage = hook }
}

// WithMaxNestDepth overrides the flowable nesting limit.
func WithMaxNestDepth(n int) Option {
	return func(d *DocTemplate) {
		if n > 0 {
			d.maxDepth = n
		}
	}
}

// DocTemplate drives pagination: it feeds a story through the frames of a
// sequence of page templates, splitting flowables across frame boundaries,
// and emits pages to a document sink.
type DocTemplate struct {
	templates []PageTemplate
	logger    observability.Logger
	tracer    observability.Tracer
	onPage    func(page int, template string)
	maxDepth  int
}

// NewDocTemplate builds a driver over the given templates. Pages use the
// templates in order; the last template repeats for all remaining pages.
func NewDocTemplate(templates []PageTemplate, opts ...Option) *DocTemplate {
	d := &DocTemplate{
		templates: templates,
		logger:    observability.NopLogger{},
		tracer:    observability.NopTracer(),
		maxDepth:  maxNestDepthDefault,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DocTemplate) validate() error {
	if len(d.templates) == 0 {
		return ErrNoPageTemplate
	}
	for i, t := range d.templates {
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		if t.PageSize.W <= 0 || t.PageSize.H <= 0 {
			return fmt.Errorf("layout: template %s: page size must be positive", name)
		}
		if len(t.Frames) == 0 {
			return fmt.Errorf("layout: template %s: at least one frame required", name)
		}
		for j, f := range t.Frames {
			if f.Empty() {
				return fmt.Errorf("layout: template %s: frame %d has no area", name, j)
			}
		}
	}
	return nil
}

// prepare walks the story: nesting depth is validated and tables receive
// their build IDs, which key reusable header forms.
func (d *DocTemplate) prepare(story []Flowable) error {
	var nextID uint64
	var walk func(f Flowable, depth int) error
	walk = func(f Flowable, depth int) error {
		if depth > d.maxDepth {
			return fmt.Errorf("layout: flowable tree exceeds depth %d at %s", d.maxDepth, f.Name())
		}
		if t, ok := f.(interface{ setBuildID(uint64) }); ok {
			nextID++
			t.setBuildID(nextID)
			if rc, ok := f.(interface{ RowCount() int }); ok {
				d.logger.Debug("prepared table",
					observability.Int("table", int(nextID)),
					observability.Int(observability.MetricTableRows, rc.RowCount()),
				)
			}
		}
		if cl, ok := f.(childLister); ok {
			for _, child := range cl.childFlowables() {
				if err := walk(child, depth+1); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, f := range story {
		if err := walk(f, 1); err != nil {
			return err
		}
	}
	return nil
}

// Build paginates the story into the sink and returns per-page metrics.
func (d *DocTemplate) Build(ctx context.Context, story []Flowable, sink render.DocumentSink) (*BuildResult, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if err := d.prepare(story); err != nil {
		return nil, err
	}

	ctx, span := d.tracer.StartSpan(ctx, "layout.build")
	defer span.Finish()
	start := time.Now()

	b := &pageBuilder{doc: d, sink: sink, result: &BuildResult{}}

	// Fixed positioned nodes repeat on every page as overlays; everything
	// else flows through the frames.
	var flow []Flowable
	for _, item := range story {
		if pos, ok := item.(*Positioned); ok && pos.Fixed {
			b.overlays = append(b.overlays, item)
			continue
		}
		flow = append(flow, item)
	}

	for _, item := range flow {
		if err := ctx.Err(); err != nil {
			span.SetError(err)
			return nil, err
		}
		if item.OutOfFlow() {
			b.ensurePage()
			item.Draw(b.canvas, 0, 0, b.tmpl.PageSize.W, b.tmpl.PageSize.H)
			b.pageItems++
			continue
		}
		if item.Pagination().BreakBefore == BreakPage && b.canvas != nil && !b.atPageTop() {
			b.finalizePage()
		}
		if err := b.place(item); err != nil {
			span.SetError(err)
			return nil, err
		}
	}

	// The document always has at least one page; a page that was begun is
	// always finalized, and a page never begun is simply not emitted.
	if b.canvas == nil && b.result.Pages == 0 {
		b.ensurePage()
	}
	if b.canvas != nil {
		b.finalizePage()
	}

	b.result.BuildTime = time.Since(start)
	span.SetTag(observability.MetricPageCount, b.result.Pages)
	d.logger.Info("document built",
		observability.Int(observability.MetricPageCount, b.result.Pages),
		observability.Float64(observability.MetricBuildTime, b.result.BuildTime.Seconds()),
	)
	return b.result, nil
}

// pageBuilder is the mutable state of one Build run.
type pageBuilder struct {
	doc    *DocTemplate
	sink   render.DocumentSink
	result *BuildResult

	overlays []Flowable

	canvas    render.Canvas
	tmpl      PageTemplate
	tmplIdx   int
	frames    []*Frame
	frameIdx  int
	pageStart time.Time
	pageItems int
}

func (b *pageBuilder) templateIndex(page int) int {
	if page >= len(b.doc.templates) {
		return len(b.doc.templates) - 1
	}
	return page
}

// ensurePage begins a page if none is open. Pages begin lazily so a trailing
// forced break does not emit a blank page. Frames carry over between pages
// of the same template, rewound to the top.
func (b *pageBuilder) ensurePage() {
	if b.canvas != nil {
		return
	}
	idx := b.templateIndex(b.result.Pages)
	b.tmpl = b.doc.templates[idx]
	b.canvas = b.sink.BeginPage(b.tmpl.PageSize.W, b.tmpl.PageSize.H)
	if idx == b.tmplIdx && b.frames != nil {
		for _, fr := range b.frames {
			fr.Reset()
		}
	} else {
		b.frames = make([]*Frame, len(b.tmpl.Frames))
		for i, r := range b.tmpl.Frames {
			b.frames[i] = NewFrame(r)
		}
		b.tmplIdx = idx
	}
	b.frameIdx = 0
	b.pageStart = time.Now()
	b.pageItems = 0

	page := b.result.Pages + 1
	if b.tmpl.OnPage != nil {
		b.tmpl.OnPage(page, b.tmpl.Name)
	}
	if b.doc.onPage != nil {
		b.doc.onPage(page, b.tmpl.Name)
	}
}

// atPageTop reports whether nothing has been placed on the open page.
func (b *pageBuilder) atPageTop() bool {
	return b.frameIdx == 0 && b.frames[0].Empty()
}

// finalizePage draws the overlays and emits the page.
func (b *pageBuilder) finalizePage() {
	neg, zero, pos := zOrder(b.overlays)
	for _, tier := range [][]Flowable{neg, zero, pos} {
		for _, ov := range tier {
			ov.Draw(b.canvas, 0, 0, b.tmpl.PageSize.W, b.tmpl.PageSize.H)
		}
	}

	m := PageMetrics{
		Page:       b.result.Pages + 1,
		Template:   b.tmpl.Name,
		RenderTime: time.Since(b.pageStart),
		Items:      b.pageItems,
	}
	if counter, ok := b.canvas.(interface{ CommandCount() int }); ok {
		m.Commands = counter.CommandCount()
	}
	b.sink.EndPage()
	b.result.Pages++
	b.result.PageStats = append(b.result.PageStats, m)
	b.canvas = nil

	b.doc.logger.Debug("page finalized",
		observability.Int("page", m.Page),
		observability.String("template", m.Template),
		observability.Int(observability.MetricPageCommands, m.Commands),
		observability.Int(observability.MetricPageItems, m.Items),
		observability.Float64(observability.MetricPageRenderTime, m.RenderTime.Seconds()),
	)
}

// nextFrame advances to the next frame, finalizing the page when the last
// frame is exhausted.
func (b *pageBuilder) nextFrame() {
	b.frameIdx++
	if b.frameIdx >= len(b.frames) {
		b.finalizePage()
	}
}

// fitsFresh reports whether the item would fit a full frame of the same
// geometry as fr. Frames within a template may differ; the next frame's real
// geometry is only known once it is reached, so this is the keep-together
// heuristic the driver bounces on.
func fitsFresh(fr *Frame, item Flowable) bool {
	return item.Wrap(fr.Rect.W, fr.Rect.H).H <= fr.Rect.H+sizeEpsilon
}

// place flows one story item through the frames, splitting it across
// boundaries as needed.
//
// An item that cannot fit and cannot split is force-placed, overflowing the
// frame, only when it reached an empty frame directly; an item that already
// bounced off a partially filled frame fails with UnplaceableError instead,
// since forcing it would silently overlap the following frames.
func (b *pageBuilder) place(item Flowable) error {
	bounces := 0
	splits := 0
	for {
		b.ensurePage()
		fr := b.frames[b.frameIdx]
		pg := item.Pagination()

		if fr.Place(b.canvas, item) {
			b.pageItems++
			if pg.BreakAfter == BreakPage {
				b.finalizePage()
			}
			return nil
		}

		if !fr.Empty() {
			// Keep-together holds only while a fresh frame could take the
			// item whole; an item taller than a full frame has to break
			// somewhere regardless.
			keep := (pg.BreakInside == InsideAvoid || pg.BreakInside == InsideAvoidPage) &&
				fitsFresh(fr, item)
			if !keep && fr.Remaining() > 0 {
				if first, rest, ok := item.Split(fr.Rect.W, fr.Remaining()); ok {
					if splits++; splits > maxSplitsPerItem {
						return fmt.Errorf("layout: %s produced more than %d slices", item.Name(), maxSplitsPerItem)
					}
					if fr.Place(b.canvas, first) {
						b.pageItems++
						item = rest
						b.nextFrame()
						continue
					}
				}
			}
			bounces++
			b.nextFrame()
			continue
		}

		// Empty frame and the item still does not fit. Keep-together is
		// moot here: the frame is as fresh as it gets.
		if pg.BreakInside == InsideAuto || !fitsFresh(fr, item) {
			if first, rest, ok := item.Split(fr.Rect.W, fr.Remaining()); ok {
				if splits++; splits > maxSplitsPerItem {
					return fmt.Errorf("layout: %s produced more than %d slices", item.Name(), maxSplitsPerItem)
				}
				if fr.Place(b.canvas, first) {
					b.pageItems++
					item = rest
					b.nextFrame()
					continue
				}
			}
		}
		sz := item.Wrap(fr.Rect.W, fr.Remaining())
		if bounces > 0 {
			return &UnplaceableError{
				Item:        item.Name(),
				Width:       sz.W,
				Height:      sz.H,
				FrameWidth:  fr.Rect.W,
				FrameHeight: fr.Rect.H,
				Breaks:      pg,
			}
		}
		b.doc.logger.Warn("flowable overflows its frame",
			observability.String("item", item.Name()),
			observability.Float64("height", sz.H),
			observability.Float64("frame_height", fr.Rect.H),
		)
		fr.ForcePlace(b.canvas, item)
		b.pageItems++
		if pg.BreakAfter == BreakPage {
			b.finalizePage()
		}
		return nil
	}
}
