// Package render defines the page-description sink the layout engine draws
// into. The engine only ever talks to the Canvas and DocumentSink interfaces;
// a PDF or raster backend implements them downstream. The package also ships
// a Recorder sink that captures emitted commands, used by tests and for
// per-page command metrics.
package render

import "image"

// Color represents an RGBA color with components in [0, 1].
type Color struct {
	R, G, B float64
	A       float64
}

// Opaque returns c with full alpha.
func (c Color) Opaque() Color {
	c.A = 1
	return c
}

// WithAlpha returns c with the given alpha.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// RGB builds an opaque color.
func RGB(r, g, b float64) Color { return Color{R: r, G: g, B: b, A: 1} }

// TextOptions configures string drawing.
type TextOptions struct {
	Font        string
	FontSize    float64
	Color       Color
	CharSpacing float64
	WordSpacing float64
	Rise        float64
}

// LineOptions configures line and curve drawing.
type LineOptions struct {
	StrokeColor Color
	LineWidth   float64
	DashPattern []float64
	DashPhase   float64
}

// PathOptions configures path drawing.
type PathOptions struct {
	StrokeColor Color
	FillColor   Color
	LineWidth   float64
	Fill        bool
	Stroke      bool
}

// RectOptions configures rectangle drawing. Radius > 0 rounds the corners.
type RectOptions struct {
	StrokeColor Color
	FillColor   Color
	LineWidth   float64
	Radius      float64
	Fill        bool
	Stroke      bool
}

// ImageOptions configures image placement.
type ImageOptions struct {
	Interpolate bool
}

// GradientStop is one color stop of a gradient at offset in [0, 1].
type GradientStop struct {
	Offset float64
	Color  Color
}

// Gradient describes a linear gradient between two points in the target
// rectangle's coordinate space, normalized to [0, 1].
type Gradient struct {
	X0, Y0, X1, Y1 float64
	Stops          []GradientStop
}

// Canvas receives the drawing commands for a single page.
type Canvas interface {
	// Save pushes the graphics state; Restore pops it. Clipping is part of
	// the saved state.
	Save()
	Restore()

	SetFillColor(c Color)
	SetStrokeColor(c Color)

	Rect(x, y, w, h float64, opts RectOptions)
	Line(x1, y1, x2, y2 float64, opts LineOptions)
	Curve(x1, y1, cx1, cy1, cx2, cy2, x2, y2 float64, opts LineOptions)
	Path(p *Path, opts PathOptions)

	DrawString(s string, x, y float64, opts TextOptions)
	DrawImage(img image.Image, x, y, w, h float64, opts ImageOptions)

	// DefineForm registers a reusable group of commands under a name;
	// DrawForm replays it translated to (x, y).
	DefineForm(name string, draw func(Canvas))
	DrawForm(name string, x, y float64)

	// BeginTag opens a logical structure element (e.g. for tagged output);
	// EndTag closes the most recent one.
	BeginTag(tag string, attrs map[string]string)
	EndTag()

	// SetMetadata records a page-level key/value pair.
	SetMetadata(key, value string)

	// FillGradient fills the rectangle with a linear gradient.
	FillGradient(x, y, w, h float64, g Gradient)

	// Clip intersects the clipping region with the given (optionally
	// rounded) rectangle until the enclosing Restore.
	Clip(x, y, w, h, radius float64)
}

// DocumentSink produces the sequence of pages of one document build.
type DocumentSink interface {
	// BeginPage starts a new page of the given size and returns its canvas.
	BeginPage(width, height float64) Canvas
	// EndPage finalizes the page most recently begun.
	EndPage()
}
