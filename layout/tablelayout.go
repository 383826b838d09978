package layout

import (
	"math"
	"runtime"
	"strings"

	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"github.com/wudi/flowkit/render"
)

const (
	// tableParallelWidthRows is the row count above which the min/max column
	// reduction runs on a worker pool.
	tableParallelWidthRows = 64
	// tableParallelHeightRows is the row count above which row heights are
	// computed on a worker pool.
	tableParallelHeightRows = 32
)

// layoutKey identifies one memoized table layout: the quantized available
// width and the column count it was computed for.
type layoutKey struct {
	w    fixed.Int26_6
	cols int
}

// tableLayout is the memoized result of laying a table out at one width. It
// covers all rows so every slice of the table reads from the same layout.
type tableLayout struct {
	colW  []fixed.Int26_6
	colWf []float64
	colX  []float64

	headerRows  []rowLayout
	headerTotal float64
	bodyRows    []rowLayout
	// prefix[i] is the cumulative height of body rows [0, i).
	prefix []float64
}

type rowLayout struct {
	height float64
	cells  []cellLayout
}

type cellLayout struct {
	col   int
	span  int
	lines []string
}

func (l *tableLayout) spanWidth(col, span int) float64 {
	w := 0.0
	for i := col; i < col+span && i < len(l.colWf); i++ {
		w += l.colWf[i]
	}
	return w
}

func floatToFixed(f float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(f * 64))
}

func fixedToFloat(f fixed.Int26_6) float64 {
	return float64(f) / 64
}

// layoutFor returns the layout for availW, computing and memoizing it on
// first use. The memo is shared by every slice of the table.
func (t *Table) layoutFor(availW float64) *tableLayout {
	cols := t.columnCount()
	key := layoutKey{w: quantizeWidth(availW), cols: cols}

	t.data.mu.Lock()
	if lay, ok := t.data.layouts[key]; ok {
		t.data.mu.Unlock()
		return lay
	}
	t.data.mu.Unlock()

	lay := t.computeLayout(availW, cols)

	t.data.mu.Lock()
	if prev, ok := t.data.layouts[key]; ok {
		lay = prev
	} else {
		t.data.layouts[key] = lay
	}
	t.data.mu.Unlock()
	return lay
}

func (t *Table) computeLayout(availW float64, cols int) *tableLayout {
	mins, maxs := t.columnStats(cols)
	colW := distributeColumns(floatToFixed(availW), mins, maxs)

	lay := &tableLayout{
		colW:  colW,
		colWf: make([]float64, cols),
		colX:  make([]float64, cols),
	}
	x := 0.0
	for i, w := range colW {
		lay.colWf[i] = fixedToFloat(w)
		lay.colX[i] = x
		x += lay.colWf[i]
	}

	lay.headerRows = t.rowLayouts(t.data.header, lay)
	for _, r := range lay.headerRows {
		lay.headerTotal += r.height
	}
	lay.bodyRows = t.rowLayouts(t.data.rows, lay)
	lay.prefix = make([]float64, len(lay.bodyRows)+1)
	for i, r := range lay.bodyRows {
		lay.prefix[i+1] = lay.prefix[i] + r.height
	}
	return lay
}

// columnStats reduces every row, header included, to per-column min and
// max content widths, merged element-wise by max. Large tables run the
// reduction in parallel; max is commutative so the merged result matches
// the sequential one exactly.
func (t *Table) columnStats(cols int) (mins, maxs []fixed.Int26_6) {
	rows := make([]Row, 0, len(t.data.header)+len(t.data.rows))
	rows = append(rows, t.data.header...)
	rows = append(rows, t.data.rows...)
	mins = make([]fixed.Int26_6, cols)
	maxs = make([]fixed.Int26_6, cols)

	if len(rows) < tableParallelWidthRows {
		for _, r := range rows {
			rmin, rmax := t.rowStats(r, cols)
			mergeMaxFixed(mins, rmin)
			mergeMaxFixed(maxs, rmax)
		}
		return mins, maxs
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(rows) {
		workers = len(rows)
	}
	chunk := (len(rows) + workers - 1) / workers
	n := (len(rows) + chunk - 1) / chunk
	partMins := make([][]fixed.Int26_6, n)
	partMaxs := make([][]fixed.Int26_6, n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		lo, hi := i*chunk, (i+1)*chunk
		if hi > len(rows) {
			hi = len(rows)
		}
		g.Go(func() error {
			pmin := make([]fixed.Int26_6, cols)
			pmax := make([]fixed.Int26_6, cols)
			for _, r := range rows[lo:hi] {
				rmin, rmax := t.rowStats(r, cols)
				mergeMaxFixed(pmin, rmin)
				mergeMaxFixed(pmax, rmax)
			}
			partMins[i] = pmin
			partMaxs[i] = pmax
			return nil
		})
	}
	_ = g.Wait()
	for i := 0; i < n; i++ {
		mergeMaxFixed(mins, partMins[i])
		mergeMaxFixed(maxs, partMaxs[i])
	}
	return mins, maxs
}

func mergeMaxFixed(dst, src []fixed.Int26_6) {
	for i := range dst {
		if src[i] > dst[i] {
			dst[i] = src[i]
		}
	}
}

// rowStats computes one row's per-column min and max contributions. A
// colspan cell splits its requirement evenly across its spanned columns,
// topping up the division remainder one unit at a time round-robin.
func (t *Table) rowStats(row Row, cols int) (mins, maxs []fixed.Int26_6) {
	mins = make([]fixed.Int26_6, cols)
	maxs = make([]fixed.Int26_6, cols)
	col := 0
	for _, cell := range row.Cells {
		span := cell.span()
		if col+span > cols {
			span = cols - col
			if span < 1 {
				break
			}
		}
		cmin, cmax := t.cellStats(cell)
		spreadFixed(mins[col:col+span], cmin)
		spreadFixed(maxs[col:col+span], cmax)
		col += span
	}
	return mins, maxs
}

// spreadFixed distributes total across the slots, remainder round-robin.
func spreadFixed(slots []fixed.Int26_6, total fixed.Int26_6) {
	n := fixed.Int26_6(len(slots))
	if n == 0 {
		return
	}
	share := total / n
	rem := int(total - share*n)
	for i := range slots {
		v := share
		if i < rem {
			v++
		}
		if v > slots[i] {
			slots[i] = v
		}
	}
}

// cellStats returns the min-content and max-content width of one cell,
// padding included. A preferred width floors the minimum and pins the
// maximum.
func (t *Table) cellStats(cell Cell) (cmin, cmax fixed.Int26_6) {
	style := t.data.style
	pad := floatToFixed(style.cellFrame(cell).Horizontal())

	if cell.Content != nil {
		var maxW float64
		if w, ok := cell.Content.IntrinsicWidth(); ok {
			maxW = w
		} else {
			maxW = cell.Content.Wrap(math.MaxFloat64, math.MaxFloat64).W
		}
		minW := maxW
		if mc, ok := cell.Content.(interface{ minContentWidth() float64 }); ok {
			minW = mc.minContentWidth()
		}
		cmin = floatToFixed(minW) + pad
		cmax = floatToFixed(maxW) + pad
	} else {
		ts := style.cellText(cell)
		font := resolveFont(t.metrics, ts)
		m := measurer{metrics: t.metrics, font: font, size: ts.size(), cache: &t.data.widths}
		var minW, maxW float64
		for _, seg := range strings.Split(cell.Text, "\n") {
			if w := m.width(seg); w > maxW {
				maxW = w
			}
			for _, word := range strings.Fields(seg) {
				if w := m.width(word); w > minW {
					minW = w
				}
			}
		}
		cmin = floatToFixed(minW) + pad
		cmax = floatToFixed(maxW) + pad
	}

	if cell.PreferredWidth > 0 {
		pref := floatToFixed(cell.PreferredWidth)
		if pref > cmin {
			cmin = pref
		}
		cmax = pref
	}
	if cmax < cmin {
		cmax = cmin
	}
	return cmin, cmax
}

// distributeColumns sizes the columns from their min/max content widths in
// fixed-point arithmetic. The three cases: everything fits at max-content,
// so surplus grows columns in proportion to max; even min-content overflows,
// so columns shrink in proportion to min; otherwise each column gets its min
// plus a share of the slack weighted by its max-min gap. Division remainders
// are handed out one unit round-robin so the widths sum to avail exactly.
func distributeColumns(avail fixed.Int26_6, mins, maxs []fixed.Int26_6) []fixed.Int26_6 {
	n := len(mins)
	out := make([]fixed.Int26_6, n)
	if n == 0 {
		return out
	}
	var totalMin, totalMax int64
	for i := range mins {
		if maxs[i] < mins[i] {
			maxs[i] = mins[i]
		}
		totalMin += int64(mins[i])
		totalMax += int64(maxs[i])
	}

	av := int64(avail)
	switch {
	case totalMax <= av:
		extra := av - totalMax
		for i := range out {
			var bonus int64
			if totalMax > 0 {
				bonus = extra * int64(maxs[i]) / totalMax
			} else {
				bonus = extra / int64(n)
			}
			out[i] = maxs[i] + fixed.Int26_6(bonus)
		}
	case totalMin >= av:
		for i := range out {
			if totalMin > 0 {
				out[i] = fixed.Int26_6(av * int64(mins[i]) / totalMin)
			} else {
				out[i] = fixed.Int26_6(av / int64(n))
			}
		}
	default:
		slack := av - totalMin
		gap := totalMax - totalMin
		for i := range out {
			share := slack * int64(maxs[i]-mins[i]) / gap
			out[i] = mins[i] + fixed.Int26_6(share)
		}
	}

	// Integer division truncates; hand the leftover units out round-robin.
	var sum int64
	for _, w := range out {
		sum += int64(w)
	}
	for i := 0; sum < av; i = (i + 1) % n {
		out[i]++
		sum++
	}
	return out
}

// rowLayouts wraps every cell at its column width and takes the tallest
// cell as the row height.
func (t *Table) rowLayouts(rows []Row, lay *tableLayout) []rowLayout {
	out := make([]rowLayout, len(rows))
	if len(rows) < tableParallelHeightRows {
		for i, r := range rows {
			out[i] = t.layoutRow(r, lay)
		}
		return out
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(rows) {
		workers = len(rows)
	}
	chunk := (len(rows) + workers - 1) / workers
	var g errgroup.Group
	for lo := 0; lo < len(rows); lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > len(rows) {
			hi = len(rows)
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				out[i] = t.layoutRow(rows[i], lay)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (t *Table) layoutRow(row Row, lay *tableLayout) rowLayout {
	style := t.data.style
	rl := rowLayout{cells: make([]cellLayout, len(row.Cells))}
	col := 0
	for ci, cell := range row.Cells {
		span := cell.span()
		if col+span > len(lay.colWf) {
			span = len(lay.colWf) - col
			if span < 1 {
				break
			}
		}
		cl := cellLayout{col: col, span: span}
		pad := style.cellFrame(cell)
		innerW := lay.spanWidth(col, span) - pad.Horizontal()
		if innerW < 0 {
			innerW = 0
		}

		var contentH float64
		if cell.Content != nil {
			contentH = cell.Content.Wrap(innerW, math.MaxFloat64).H
		} else {
			ts := style.cellText(cell)
			font := resolveFont(t.metrics, ts)
			m := measurer{metrics: t.metrics, font: font, size: ts.size(), cache: &t.data.widths}
			cl.lines = breakLines(m, cell.Text, innerW, ts.Wrap, ts.BreakLongWords)
			contentH = float64(len(cl.lines)) * ts.lineHeight(t.metrics, font)
		}
		h := contentH + pad.Vertical()
		if h > rl.height {
			rl.height = h
		}
		rl.cells[ci] = cl
		col += span
	}
	return rl
}

// drawBorders draws the grid over the rows this view renders. Collapsed
// borders share edges between neighbors with the wider border winning and
// ties keeping the existing edge; outer edges are never suppressed.
// Separate borders stroke each cell's own rectangle.
func (t *Table) drawBorders(c render.Canvas, lay *tableLayout, x, y float64) {
	type drawnRow struct {
		rl  rowLayout
		row Row
	}
	var drawn []drawnRow
	if t.headerVisible() {
		for i := range t.data.header {
			drawn = append(drawn, drawnRow{lay.headerRows[i], t.data.header[i]})
		}
	}
	for r := t.start; r < t.end; r++ {
		drawn = append(drawn, drawnRow{lay.bodyRows[r], t.data.rows[r]})
	}
	if len(drawn) == 0 {
		return
	}
	style := t.data.style

	if !style.Collapse {
		yy := y
		for _, dr := range drawn {
			for ci, cell := range dr.row.Cells {
				bw := style.cellBorder(cell)
				if bw <= 0 {
					continue
				}
				cl := dr.rl.cells[ci]
				c.Rect(x+lay.colX[cl.col], yy, lay.spanWidth(cl.col, cl.span), dr.rl.height, render.RectOptions{
					StrokeColor: t.borderColor(cell),
					LineWidth:   bw,
					Stroke:      true,
				})
			}
			yy += dr.rl.height
		}
		return
	}

	cols := len(lay.colWf)
	type edge struct {
		w     float64
		color render.Color
	}
	// cellAt finds the cell of a drawn row covering a column, if any.
	cellAt := func(dr drawnRow, col int) (Cell, bool) {
		for ci, cl := range dr.rl.cells {
			if ci >= len(dr.row.Cells) {
				break
			}
			if col >= cl.col && col < cl.col+cl.span {
				return dr.row.Cells[ci], true
			}
		}
		return Cell{}, false
	}
	merge := func(e edge, cell Cell, ok bool) edge {
		if !ok {
			return e
		}
		if bw := style.cellBorder(cell); bw > e.w {
			return edge{w: bw, color: t.borderColor(cell)}
		}
		return e
	}

	// Horizontal edges: one boundary above each drawn row plus the bottom.
	yy := y
	for b := 0; b <= len(drawn); b++ {
		for col := 0; col < cols; {
			var e edge
			if b > 0 {
				cell, ok := cellAt(drawn[b-1], col)
				e = merge(e, cell, ok)
			}
			if b < len(drawn) {
				cell, ok := cellAt(drawn[b], col)
				e = merge(e, cell, ok)
			}
			// Extend the segment over adjacent columns with the same edge.
			end := col + 1
			for ; end < cols; end++ {
				var e2 edge
				if b > 0 {
					cell, ok := cellAt(drawn[b-1], end)
					e2 = merge(e2, cell, ok)
				}
				if b < len(drawn) {
					cell, ok := cellAt(drawn[b], end)
					e2 = merge(e2, cell, ok)
				}
				if e2 != e {
					break
				}
			}
			if e.w > 0 {
				x1 := x + lay.colX[col]
				x2 := x + lay.colX[end-1] + lay.colWf[end-1]
				c.Line(x1, yy, x2, yy, render.LineOptions{StrokeColor: e.color, LineWidth: e.w})
			}
			col = end
		}
		if b < len(drawn) {
			yy += drawn[b].rl.height
		}
	}

	// Vertical edges: per row, at every column boundary a cell starts or
	// ends on. Boundaries inside a colspan get no edge.
	yy = y
	for _, dr := range drawn {
		for cb := 0; cb <= cols; cb++ {
			var e edge
			for ci, cl := range dr.rl.cells {
				if ci >= len(dr.row.Cells) {
					break
				}
				if cl.col == cb || cl.col+cl.span == cb {
					e = merge(e, dr.row.Cells[ci], true)
				}
			}
			if e.w > 0 {
				bx := x
				if cb < cols {
					bx += lay.colX[cb]
				} else {
					bx += lay.colX[cols-1] + lay.colWf[cols-1]
				}
				c.Line(bx, yy, bx, yy+dr.rl.height, render.LineOptions{StrokeColor: e.color, LineWidth: e.w})
			}
		}
		yy += dr.rl.height
	}
}

func (t *Table) borderColor(cell Cell) render.Color {
	if cell.BorderColor.A > 0 {
		return cell.BorderColor
	}
	return t.data.style.BorderColor
}
