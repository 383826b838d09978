// Package fonts defines the font-metrics oracle consumed by the layout
// engine. The engine treats fonts as opaque: it resolves a family/weight/
// style triple to a Font, measures string widths, asks for the natural line
// height, and splits strings into per-fallback-font runs. The Shaper
// implementation is backed by go-text/typesetting; Fixed provides
// deterministic metrics for tests.
package fonts

// Weight is a CSS-style font weight.
type Weight int

const (
	WeightRegular Weight = 400
	WeightBold    Weight = 700
)

// Style selects the upright or italic variant.
type Style int

const (
	StyleNormal Style = iota
	StyleItalic
)

// Font is an opaque, resolved font resource.
type Font interface {
	// Name returns the identifier drawing commands reference the font by.
	Name() string
}

// Run is a maximal substring measured and drawn with a single font out of a
// fallback chain.
type Run struct {
	Text string
	Font Font
}

// Metrics resolves fonts and measures text. Implementations must be safe for
// concurrent use.
type Metrics interface {
	// Resolve maps a family/weight/style triple to a font resource.
	Resolve(family string, weight Weight, style Style) (Font, error)

	// TextWidth returns the advance width of s at the given size, in points.
	TextWidth(f Font, size float64, s string) float64

	// TextWidthFallback measures s, falling back per rune to the first font
	// in the chain that covers it.
	TextWidthFallback(f Font, fallbacks []Font, size float64, s string) float64

	// LineHeight returns the natural line height (ascent + descent + line
	// gap) at the given size, in points.
	LineHeight(f Font, size float64) float64

	// SplitRuns partitions s into runs drawable with a single font each,
	// using the fallback chain for runes f does not cover.
	SplitRuns(f Font, fallbacks []Font, s string) []Run
}
