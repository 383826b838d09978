package layout

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/render"
)

// Cell is one table cell: plain text or a nested flowable.
type Cell struct {
	Text    string
	Content Flowable
	// ColSpan is the number of columns the cell covers; values below one
	// count as one.
	ColSpan int

	Style          TextStyle
	Padding        geom.Insets
	BorderWidth    float64
	BorderColor    render.Color
	Background     render.Color
	PreferredWidth float64
	Align          Alignment
}

func (c Cell) span() int {
	if c.ColSpan < 1 {
		return 1
	}
	return c.ColSpan
}

// Row is one table row.
type Row struct {
	Cells []Cell
}

// TableStyle carries the table-wide defaults.
type TableStyle struct {
	// CellPadding applies to cells whose own padding is zero.
	CellPadding geom.Insets
	// BorderWidth and BorderColor apply to cells without their own border.
	BorderWidth float64
	BorderColor render.Color
	// Collapse merges adjacent cell borders into a shared edge; the wider
	// edge wins, ties keep the existing edge.
	Collapse bool
	// RepeatHeader re-draws the header rows on every continuation slice.
	RepeatHeader     bool
	HeaderBackground render.Color
	// Text is the default cell text style.
	Text TextStyle
}

func (s TableStyle) cellPadding(c Cell) geom.Insets {
	if c.Padding != (geom.Insets{}) {
		return c.Padding
	}
	return s.CellPadding
}

func (s TableStyle) cellBorder(c Cell) float64 {
	if c.BorderWidth > 0 {
		return c.BorderWidth
	}
	return s.BorderWidth
}

// cellFrame is the cell's padding plus, with separate borders, the border
// width on every edge. Collapsed borders ride the shared edges and stay out
// of the geometry.
func (s TableStyle) cellFrame(c Cell) geom.Insets {
	in := s.cellPadding(c)
	if s.Collapse {
		return in
	}
	bw := s.cellBorder(c)
	in.Top += bw
	in.Right += bw
	in.Bottom += bw
	in.Left += bw
	return in
}

func (s TableStyle) cellText(c Cell) TextStyle {
	if c.Style.Family == "" && c.Style.Size == 0 {
		st := s.Text
		st.Align = c.Align
		return st
	}
	return c.Style
}

// tableData is the shared, effectively-immutable storage behind a table and
// all slices pagination produces from it. Slices reference the same data and
// the same memoized layouts, distinguished only by their row range.
type tableData struct {
	mu      sync.Mutex
	header  []Row
	rows    []Row
	style   TableStyle
	shared  bool
	layouts map[layoutKey]*tableLayout
	widths  widthCache

	headerFormDefined bool
}

func (d *tableData) markShared() {
	d.mu.Lock()
	d.shared = true
	d.mu.Unlock()
}

func (d *tableData) isShared() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shared
}

// Table lays out header and body rows into columns sized by min/max-content
// distribution. A table produced by Split is a view over the same backing
// data restricted to a row range.
type Table struct {
	base
	data       *tableData
	start, end int
	id         uint64
	metrics    fonts.Metrics
}

// NewTable builds an empty table.
func NewTable(m fonts.Metrics, style TableStyle) *Table {
	return &Table{
		data:    &tableData{style: style, layouts: make(map[layoutKey]*tableLayout)},
		metrics: m,
	}
}

func (t *Table) Name() string { return "Table" }

// ensureOwned clones the backing data before mutation once it is shared.
func (t *Table) ensureOwned() {
	if !t.data.isShared() {
		return
	}
	old := t.data
	old.mu.Lock()
	fresh := &tableData{
		header:  append([]Row(nil), old.header...),
		rows:    append([]Row(nil), old.rows...),
		style:   old.style,
		layouts: make(map[layoutKey]*tableLayout),
	}
	old.mu.Unlock()
	t.data = fresh
}

// AddHeaderRow appends a header row.
func (t *Table) AddHeaderRow(cells ...Cell) *Table {
	t.ensureOwned()
	t.data.header = append(t.data.header, Row{Cells: cells})
	return t
}

// AddRow appends a body row.
func (t *Table) AddRow(cells ...Cell) *Table {
	t.ensureOwned()
	t.data.rows = append(t.data.rows, Row{Cells: cells})
	t.end = len(t.data.rows)
	return t
}

// RowCount returns the number of body rows in this view.
func (t *Table) RowCount() int { return t.end - t.start }

// setBuildID implements the build-context ID assignment; the ID keys the
// reusable header form and diagnostic log fields.
func (t *Table) setBuildID(id uint64) {
	if t.id == 0 {
		t.id = id
	}
}

func (t *Table) childFlowables() []Flowable {
	var out []Flowable
	rows := append(append([]Row(nil), t.data.header...), t.data.rows...)
	for _, r := range rows {
		for _, c := range r.Cells {
			if c.Content != nil {
				out = append(out, c.Content)
			}
		}
	}
	return out
}

// columnCount is the maximum total colspan over all rows.
func (t *Table) columnCount() int {
	n := 0
	count := func(rows []Row) {
		for _, r := range rows {
			total := 0
			for _, c := range r.Cells {
				total += c.span()
			}
			if total > n {
				n = total
			}
		}
	}
	count(t.data.header)
	count(t.data.rows)
	if n == 0 {
		n = 1
	}
	return n
}

// headerVisible reports whether this view draws the header rows: the
// original table always does, continuation slices only when configured.
func (t *Table) headerVisible() bool {
	return t.start == 0 || t.data.style.RepeatHeader
}

func (t *Table) bodyHeight(lay *tableLayout) float64 {
	return lay.prefix[t.end] - lay.prefix[t.start]
}

// Wrap implements Flowable.
func (t *Table) Wrap(availW, availH float64) geom.Size {
	lay := t.layoutFor(availW)
	h := t.bodyHeight(lay)
	if t.headerVisible() {
		h += lay.headerTotal
	}
	w := 0.0
	for _, cw := range lay.colWf {
		w += cw
	}
	return geom.Size{W: w, H: h}
}

// IntrinsicWidth implements Flowable: the sum of the max-content column
// widths.
func (t *Table) IntrinsicWidth() (float64, bool) {
	cols := t.columnCount()
	_, maxs := t.columnStats(cols)
	var total float64
	for _, m := range maxs {
		total += fixedToFloat(m)
	}
	return total, true
}

// Split implements Flowable: binary-search the largest row count whose
// cumulative cached height fits, accounting for the header.
func (t *Table) Split(availW, availH float64) (Flowable, Flowable, bool) {
	n := t.end - t.start
	if n < 2 {
		return nil, nil, false
	}
	lay := t.layoutFor(availW)
	bodyAvail := availH
	if t.headerVisible() {
		bodyAvail -= lay.headerTotal
	}
	if bodyAvail <= 0 {
		return nil, nil, false
	}
	base0 := lay.prefix[t.start]
	k := sort.Search(n+1, func(i int) bool {
		return lay.prefix[t.start+i]-base0 > bodyAvail+sizeEpsilon
	}) - 1
	if k < 1 || k >= n {
		return nil, nil, false
	}

	t.data.markShared()
	head := t.view(t.start, t.start+k)
	head.Breaks.BreakAfter = BreakAuto
	tail := t.view(t.start+k, t.end)
	tail.Breaks.BreakBefore = BreakAuto
	return head, tail, true
}

// view builds a slice over the same backing data.
func (t *Table) view(start, end int) *Table {
	return &Table{
		base:    t.base,
		data:    t.data,
		start:   start,
		end:     end,
		id:      t.id,
		metrics: t.metrics,
	}
}

// Clone implements Flowable. The clone shares the backing data, which is
// copy-on-write under mutation.
func (t *Table) Clone() Flowable {
	t.data.markShared()
	return t.view(t.start, t.end)
}

// Draw implements Flowable.
func (t *Table) Draw(c render.Canvas, x, y, availW, availH float64) {
	lay := t.layoutFor(availW)
	yy := y
	if t.headerVisible() && len(t.data.header) > 0 {
		t.drawHeader(c, lay, x, yy)
		yy += lay.headerTotal
	}
	for r := t.start; r < t.end; r++ {
		t.drawRow(c, lay, lay.bodyRows[r], t.data.rows[r], x, yy, false)
		yy += lay.bodyRows[r].height
	}
	t.drawBorders(c, lay, x, y)
}

// drawHeader draws the header rows, through a reusable form when the table
// has a build ID so continuation pages replay it instead of re-emitting it.
func (t *Table) drawHeader(c render.Canvas, lay *tableLayout, x, y float64) {
	drawAll := func(fc render.Canvas, fx, fy float64) {
		yy := fy
		for r := range t.data.header {
			t.drawRow(fc, lay, lay.headerRows[r], t.data.header[r], fx, yy, true)
			yy += lay.headerRows[r].height
		}
	}
	if t.id == 0 {
		drawAll(c, x, y)
		return
	}
	name := fmt.Sprintf("table-%d-header", t.id)
	t.data.mu.Lock()
	defined := t.data.headerFormDefined
	t.data.headerFormDefined = true
	t.data.mu.Unlock()
	if !defined {
		c.DefineForm(name, func(fc render.Canvas) {
			drawAll(fc, 0, 0)
		})
	}
	c.DrawForm(name, x, y)
}

func (t *Table) drawRow(c render.Canvas, lay *tableLayout, rl rowLayout, row Row, x, y float64, header bool) {
	style := t.data.style
	for ci, cell := range row.Cells {
		cl := rl.cells[ci]
		cx := x + lay.colX[cl.col]
		cw := lay.spanWidth(cl.col, cl.span)
		pad := style.cellFrame(cell)

		bg := cell.Background
		if header && bg.A == 0 {
			bg = style.HeaderBackground
		}
		if bg.A > 0 {
			c.Rect(cx, y, cw, rl.height, render.RectOptions{FillColor: bg, Fill: true})
		}

		if cell.Content != nil {
			innerW := cw - pad.Horizontal()
			innerH := rl.height - pad.Vertical()
			cell.Content.Draw(c, cx+pad.Left, y+pad.Top, innerW, innerH)
			continue
		}

		ts := style.cellText(cell)
		font := resolveFont(t.metrics, ts)
		m := measurer{metrics: t.metrics, font: font, size: ts.size(), cache: &t.data.widths}
		lh := ts.lineHeight(t.metrics, font)
		innerW := cw - pad.Horizontal()
		for i, ln := range cl.lines {
			if ln == "" {
				continue
			}
			if ts.Wrap == WrapNone {
				ln = truncateEllipsis(m, ln, innerW)
			}
			offset := 0.0
			switch ts.Align {
			case AlignCenter:
				offset = (innerW - m.width(ln)) / 2
			case AlignRight:
				offset = innerW - m.width(ln)
			}
			if offset < 0 {
				offset = 0
			}
			c.DrawString(ln, cx+pad.Left+offset, y+pad.Top+float64(i)*lh+ts.size(), render.TextOptions{
				Font:     fontName(font, ts),
				FontSize: ts.size(),
				Color:    ts.Color,
			})
		}
	}
}
