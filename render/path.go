package render

// SegmentOp identifies one path construction operator.
type SegmentOp int

const (
	MoveTo SegmentOp = iota
	LineTo
	CurveTo
	ClosePath
)

// Segment is one element of a path. CurveTo uses all three points (two
// control points, then the end point); MoveTo and LineTo use only Pt.
type Segment struct {
	Op     SegmentOp
	C1, C2 [2]float64
	Pt     [2]float64
}

// Path is a sequence of subpaths built from move/line/curve segments.
type Path struct {
	Segments []Segment
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) *Path {
	p.Segments = append(p.Segments, Segment{Op: MoveTo, Pt: [2]float64{x, y}})
	return p
}

// LineTo appends a straight segment to (x, y).
func (p *Path) LineTo(x, y float64) *Path {
	p.Segments = append(p.Segments, Segment{Op: LineTo, Pt: [2]float64{x, y}})
	return p
}

// CurveTo appends a cubic Bezier segment to (x, y) with control points
// (cx1, cy1) and (cx2, cy2).
func (p *Path) CurveTo(cx1, cy1, cx2, cy2, x, y float64) *Path {
	p.Segments = append(p.Segments, Segment{
		Op: CurveTo,
		C1: [2]float64{cx1, cy1},
		C2: [2]float64{cx2, cy2},
		Pt: [2]float64{x, y},
	})
	return p
}

// Close closes the current subpath.
func (p *Path) Close() *Path {
	p.Segments = append(p.Segments, Segment{Op: ClosePath})
	return p
}

// Bounds returns the bounding box of the path's anchor and control points.
func (p *Path) Bounds() (minX, minY, maxX, maxY float64) {
	first := true
	grow := func(x, y float64) {
		if first {
			minX, minY, maxX, maxY = x, y, x, y
			first = false
			return
		}
		if x < minX {
			minX = x
		}
		if y < minY {
			minY = y
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}
	for _, s := range p.Segments {
		switch s.Op {
		case MoveTo, LineTo:
			grow(s.Pt[0], s.Pt[1])
		case CurveTo:
			grow(s.C1[0], s.C1[1])
			grow(s.C2[0], s.C2[1])
			grow(s.Pt[0], s.Pt[1])
		}
	}
	return
}
