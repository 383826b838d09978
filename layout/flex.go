package layout

import (
	"math"
	"sync"

	"golang.org/x/image/math/fixed"

	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/render"
)

// FlexDirection selects the main axis of a flex box.
type FlexDirection int

const (
	FlexRow FlexDirection = iota
	FlexColumn
)

// Justify positions items along the main axis when space is left over.
type Justify int

const (
	JustifyStart Justify = iota
	JustifyEnd
	JustifyCenter
	JustifySpaceBetween
)

// AlignItems positions items on the cross axis of their line.
type AlignItems int

const (
	AlignStretch AlignItems = iota
	AlignItemsStart
	AlignItemsEnd
	AlignItemsCenter
)

// FlexItem wraps a child with its flex parameters.
type FlexItem struct {
	Child Flowable
	// Grow and Shrink weight the distribution of surplus and deficit space.
	Grow   float64
	Shrink float64
	// Basis is the starting main size; unset means the child's intrinsic
	// width (row) or its wrapped height (column).
	Basis Length
	// Flexible marks the item to share surplus equally when no item has an
	// explicit grow weight.
	Flexible bool
}

// Flex lays items out along one axis, optionally wrapping rows.
type Flex struct {
	base
	Direction FlexDirection
	Wrapped   bool
	Gap       float64
	Justify   Justify
	Align     AlignItems
	Items     []FlexItem

	mu      sync.Mutex
	memoKey flexKey
	memo    *flexLayout
}

type flexKey struct {
	w, h  fixed.Int26_6
	valid bool
}

// flexLayout is a fully resolved placement of the items at one avail size.
type flexLayout struct {
	lines []flexLine
	size  geom.Size
}

type flexLine struct {
	// items holds per-item placements relative to the flex origin.
	items  []flexPlaced
	height float64
}

type flexPlaced struct {
	idx  int
	x, y float64
	w, h float64
}

// NewFlex builds a flex box over the given items.
func NewFlex(dir FlexDirection, items ...FlexItem) *Flex {
	return &Flex{Direction: dir, Items: items}
}

func (f *Flex) Name() string { return "Flex" }

func (f *Flex) childFlowables() []Flowable {
	out := make([]Flowable, 0, len(f.Items))
	for _, it := range f.Items {
		if it.Child != nil {
			out = append(out, it.Child)
		}
	}
	return out
}

// Clone implements Flowable. Children are cloned; the layout memo is not
// carried over.
func (f *Flex) Clone() Flowable {
	items := make([]FlexItem, len(f.Items))
	for i, it := range f.Items {
		items[i] = it
		if it.Child != nil {
			items[i].Child = it.Child.Clone()
		}
	}
	return &Flex{
		base:      f.base,
		Direction: f.Direction,
		Wrapped:   f.Wrapped,
		Gap:       f.Gap,
		Justify:   f.Justify,
		Align:     f.Align,
		Items:     items,
	}
}

// unboundedHeight reports whether availH should be treated as unlimited.
func unboundedHeight(availH float64) bool {
	return availH <= 0 || availH > 1e7
}

// layoutFor resolves the layout at one avail size with a single-entry memo.
func (f *Flex) layoutFor(availW, availH float64) *flexLayout {
	key := flexKey{w: quantizeWidth(availW), h: quantizeWidth(availH), valid: true}
	f.mu.Lock()
	if f.memoKey == key && f.memo != nil {
		lay := f.memo
		f.mu.Unlock()
		return lay
	}
	f.mu.Unlock()

	lay := f.compute(availW, availH)

	f.mu.Lock()
	f.memoKey = key
	f.memo = lay
	f.mu.Unlock()
	return lay
}

func (f *Flex) compute(availW, availH float64) *flexLayout {
	if f.Direction == FlexColumn {
		return f.computeColumn(availW, availH)
	}
	if f.Wrapped {
		return f.computeRowWrap(availW, availH)
	}
	lay := &flexLayout{}
	line := f.layoutRowLine(f.itemIndices(), availW, availH, 0)
	lay.lines = []flexLine{line}
	lay.size = geom.Size{W: availW, H: line.height}
	// A single row fills a bounded cross axis; only an unbounded one
	// shrinks to the tallest item.
	if !unboundedHeight(availH) {
		lay.size.H = availH
	}
	return lay
}

func (f *Flex) itemIndices() []int {
	idx := make([]int, len(f.Items))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// itemBasis is the starting main-axis size of one item in a row.
func (f *Flex) itemBasis(it FlexItem, availW float64) float64 {
	if it.Basis.IsSet() {
		return it.Basis.Resolve(availW, defaultFontSize, defaultFontSize)
	}
	if it.Child == nil {
		return 0
	}
	if w, ok := it.Child.IntrinsicWidth(); ok {
		if w > availW {
			return availW
		}
		return w
	}
	w := it.Child.Wrap(availW, math.MaxFloat64).W
	if w > availW {
		return availW
	}
	return w
}

// layoutRowLine places one row of items: bases plus distributed surplus or
// deficit, then justify offsets and cross-axis alignment.
func (f *Flex) layoutRowLine(idx []int, availW, availH, y float64) flexLine {
	n := len(idx)
	line := flexLine{}
	if n == 0 {
		return line
	}
	widths := make([]float64, n)
	var total float64
	for i, ii := range idx {
		widths[i] = f.itemBasis(f.Items[ii], availW)
		total += widths[i]
	}
	gaps := float64(n-1) * f.Gap
	remaining := availW - total - gaps

	if remaining > 0 {
		var growSum float64
		flexible := 0
		for _, ii := range idx {
			growSum += f.Items[ii].Grow
			if f.Items[ii].Flexible {
				flexible++
			}
		}
		switch {
		case growSum > 0:
			for i, ii := range idx {
				widths[i] += remaining * f.Items[ii].Grow / growSum
			}
			remaining = 0
		case flexible > 0:
			share := remaining / float64(flexible)
			for i, ii := range idx {
				if f.Items[ii].Flexible {
					widths[i] += share
				}
			}
			remaining = 0
		}
	} else if remaining < 0 {
		var weightSum float64
		weights := make([]float64, n)
		for i, ii := range idx {
			s := f.Items[ii].Shrink
			if s == 0 {
				s = 1
			}
			weights[i] = s * widths[i]
			weightSum += weights[i]
		}
		if weightSum > 0 {
			for i := range widths {
				widths[i] += remaining * weights[i] / weightSum
				if widths[i] < 0 {
					widths[i] = 0
				}
			}
		}
		remaining = 0
	}

	// Leftover main-axis space goes to the justify policy.
	offset, between := 0.0, 0.0
	switch f.Justify {
	case JustifyEnd:
		offset = remaining
	case JustifyCenter:
		offset = remaining / 2
	case JustifySpaceBetween:
		if n > 1 {
			between = remaining / float64(n-1)
		}
	}

	heights := make([]float64, n)
	for i, ii := range idx {
		if f.Items[ii].Child == nil {
			continue
		}
		heights[i] = f.Items[ii].Child.Wrap(widths[i], availH).H
		if heights[i] > line.height {
			line.height = heights[i]
		}
	}

	x := offset
	for i, ii := range idx {
		h := heights[i]
		iy := y
		switch f.Align {
		case AlignStretch:
			h = line.height
		case AlignItemsEnd:
			iy += line.height - heights[i]
		case AlignItemsCenter:
			iy += (line.height - heights[i]) / 2
		}
		line.items = append(line.items, flexPlaced{idx: ii, x: x, y: iy, w: widths[i], h: h})
		x += widths[i] + f.Gap + between
	}
	return line
}

// computeRowWrap packs items greedily into lines by their bases, then lays
// every line out as a row.
func (f *Flex) computeRowWrap(availW, availH float64) *flexLayout {
	lay := &flexLayout{}
	var cur []int
	var curW float64
	flush := func() {
		if len(cur) == 0 {
			return
		}
		line := f.layoutRowLine(cur, availW, availH, lay.size.H)
		if len(lay.lines) > 0 {
			for i := range line.items {
				line.items[i].y += f.Gap
			}
			lay.size.H += f.Gap
		}
		lay.lines = append(lay.lines, line)
		lay.size.H += line.height
		cur, curW = nil, 0
	}
	for i := range f.Items {
		w := f.itemBasis(f.Items[i], availW)
		need := curW + w
		if len(cur) > 0 {
			need += f.Gap
		}
		if len(cur) > 0 && need > availW+sizeEpsilon {
			flush()
			need = w
		}
		cur = append(cur, i)
		curW = need
	}
	flush()
	lay.size.W = availW
	return lay
}

// computeColumn stacks items vertically with the justify policy applied to
// leftover height when the available height is bounded.
func (f *Flex) computeColumn(availW, availH float64) *flexLayout {
	lay := &flexLayout{}
	n := len(f.Items)
	var maxW float64
	heights := make([]float64, n)
	widths := make([]float64, n)
	var total float64
	for i, it := range f.Items {
		if it.Child == nil {
			continue
		}
		sz := it.Child.Wrap(availW, math.MaxFloat64)
		widths[i], heights[i] = sz.W, sz.H
		total += sz.H
		if sz.W > maxW {
			maxW = sz.W
		}
	}
	gaps := 0.0
	if n > 1 {
		gaps = float64(n-1) * f.Gap
	}
	total += gaps

	offset, between := 0.0, 0.0
	if !unboundedHeight(availH) && availH > total {
		remaining := availH - total
		switch f.Justify {
		case JustifyEnd:
			offset = remaining
		case JustifyCenter:
			offset = remaining / 2
		case JustifySpaceBetween:
			if n > 1 {
				between = remaining / float64(n-1)
			}
		}
	}

	y := offset
	for i := range f.Items {
		w := widths[i]
		x := 0.0
		switch f.Align {
		case AlignStretch:
			w = availW
		case AlignItemsEnd:
			x = availW - widths[i]
		case AlignItemsCenter:
			x = (availW - widths[i]) / 2
		}
		lay.lines = append(lay.lines, flexLine{
			items:  []flexPlaced{{idx: i, x: x, y: y, w: w, h: heights[i]}},
			height: heights[i],
		})
		y += heights[i] + f.Gap + between
	}
	lay.size = geom.Size{W: availW}
	if n > 0 {
		lay.size.H = y - f.Gap - between
	}
	return lay
}

// Wrap implements Flowable.
func (f *Flex) Wrap(availW, availH float64) geom.Size {
	lay := f.layoutFor(availW, availH)
	return lay.size
}

// IntrinsicWidth implements Flowable: the gap-separated sum of item
// intrinsics for a row, their maximum for a column.
func (f *Flex) IntrinsicWidth() (float64, bool) {
	var total, max float64
	any := false
	for _, it := range f.Items {
		if it.Child == nil {
			continue
		}
		w, ok := it.Child.IntrinsicWidth()
		if !ok {
			w = it.Child.Wrap(math.MaxFloat64, math.MaxFloat64).W
		}
		any = true
		total += w
		if w > max {
			max = w
		}
	}
	if !any {
		return 0, false
	}
	if f.Direction == FlexColumn {
		return max, true
	}
	if n := len(f.Items); n > 1 {
		total += float64(n-1) * f.Gap
	}
	return total, true
}

// Split implements Flowable. Columns split between stacked items like a
// container, a single-item row recurses into the item, and a wrapped row
// splits at line boundaries.
func (f *Flex) Split(availW, availH float64) (Flowable, Flowable, bool) {
	switch {
	case f.Direction == FlexColumn:
		return f.splitColumn(availW, availH)
	case !f.Wrapped && len(f.Items) == 1:
		return f.splitSingle(availW, availH)
	case f.Wrapped:
		return f.splitLines(availW, availH)
	}
	return nil, nil, false
}

func (f *Flex) splitColumn(availW, availH float64) (Flowable, Flowable, bool) {
	budget := availH
	var headItems, tailItems []FlexItem
	placed := false
	for i, it := range f.Items {
		if it.Child == nil {
			continue
		}
		h := it.Child.Wrap(availW, math.MaxFloat64).H
		need := h
		if placed {
			need += f.Gap
		}
		if need <= budget+sizeEpsilon {
			headItems = append(headItems, cloneItem(it))
			budget -= need
			placed = true
			continue
		}
		// Straddling child: try to divide it across the boundary.
		childAvail := budget
		if placed {
			childAvail -= f.Gap
		}
		if childAvail > 0 {
			if first, rest, ok := it.Child.Split(availW, childAvail); ok {
				hit := it
				hit.Child = first
				headItems = append(headItems, hit)
				tit := it
				tit.Child = rest
				tailItems = append(tailItems, tit)
				for _, later := range f.Items[i+1:] {
					tailItems = append(tailItems, cloneItem(later))
				}
				placed = true
				return f.halves(headItems, tailItems, placed)
			}
		}
		for _, later := range f.Items[i:] {
			tailItems = append(tailItems, cloneItem(later))
		}
		return f.halves(headItems, tailItems, placed)
	}
	return nil, nil, false
}

func (f *Flex) splitSingle(availW, availH float64) (Flowable, Flowable, bool) {
	it := f.Items[0]
	if it.Child == nil {
		return nil, nil, false
	}
	first, rest, ok := it.Child.Split(availW, availH)
	if !ok {
		return nil, nil, false
	}
	hit, tit := it, it
	hit.Child, tit.Child = first, rest
	return f.halves([]FlexItem{hit}, []FlexItem{tit}, true)
}

func (f *Flex) splitLines(availW, availH float64) (Flowable, Flowable, bool) {
	lay := f.layoutFor(availW, availH)
	if len(lay.lines) < 2 {
		if len(lay.lines) == 1 && len(lay.lines[0].items) == 1 {
			return f.splitSingle(availW, availH)
		}
		return nil, nil, false
	}
	used := 0.0
	cut := 0
	for i, ln := range lay.lines {
		need := ln.height
		if i > 0 {
			need += f.Gap
		}
		if used+need > availH+sizeEpsilon {
			break
		}
		used += need
		cut = i + 1
	}
	if cut == 0 {
		// The first line alone exceeds the space. When it holds a single
		// item the break falls inside that item; anything else is a line
		// that cannot break here.
		first := lay.lines[0]
		if len(first.items) != 1 {
			return nil, nil, false
		}
		it := f.Items[first.items[0].idx]
		if it.Child == nil {
			return nil, nil, false
		}
		childFirst, childRest, ok := it.Child.Split(availW, availH)
		if !ok {
			return nil, nil, false
		}
		hit, tit := it, it
		hit.Child, tit.Child = childFirst, childRest
		headItems := []FlexItem{hit}
		tailItems := []FlexItem{tit}
		for _, ln := range lay.lines[1:] {
			for _, pl := range ln.items {
				tailItems = append(tailItems, cloneItem(f.Items[pl.idx]))
			}
		}
		return f.halves(headItems, tailItems, true)
	}
	if cut >= len(lay.lines) {
		return nil, nil, false
	}
	var headItems, tailItems []FlexItem
	for i, ln := range lay.lines {
		for _, pl := range ln.items {
			if i < cut {
				headItems = append(headItems, cloneItem(f.Items[pl.idx]))
			} else {
				tailItems = append(tailItems, cloneItem(f.Items[pl.idx]))
			}
		}
	}
	return f.halves(headItems, tailItems, true)
}

// halves builds the two continuation flex boxes of a split.
func (f *Flex) halves(head, tail []FlexItem, placed bool) (Flowable, Flowable, bool) {
	if !placed || len(head) == 0 || len(tail) == 0 {
		return nil, nil, false
	}
	mk := func(items []FlexItem) *Flex {
		return &Flex{
			base:      f.base,
			Direction: f.Direction,
			Wrapped:   f.Wrapped,
			Gap:       f.Gap,
			Justify:   f.Justify,
			Align:     f.Align,
			Items:     items,
		}
	}
	h, t := mk(head), mk(tail)
	h.Breaks.BreakAfter = BreakAuto
	t.Breaks.BreakBefore = BreakAuto
	return h, t, true
}

func cloneItem(it FlexItem) FlexItem {
	if it.Child != nil {
		it.Child = it.Child.Clone()
	}
	return it
}

// Draw implements Flowable.
func (f *Flex) Draw(c render.Canvas, x, y, availW, availH float64) {
	lay := f.layoutFor(availW, availH)
	for _, ln := range lay.lines {
		for _, pl := range ln.items {
			it := f.Items[pl.idx]
			if it.Child == nil {
				continue
			}
			it.Child.Draw(c, x+pl.x, y+pl.y, pl.w, pl.h)
		}
	}
}
