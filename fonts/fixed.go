package fonts

// Fixed is a Metrics implementation with a constant per-rune advance. Widths
// and line heights are exact multiples of the font size, which makes layout
// results easy to predict in tests.
type Fixed struct {
	// Advance is the width of every rune in em units. Zero means 0.5.
	Advance float64
	// Leading is the line height in em units. Zero means 1.2.
	Leading float64
}

type fixedFont struct{ name string }

func (f fixedFont) Name() string { return f.name }

func (m Fixed) advance() float64 {
	if m.Advance == 0 {
		return 0.5
	}
	return m.Advance
}

func (m Fixed) leading() float64 {
	if m.Leading == 0 {
		return 1.2
	}
	return m.Leading
}

// Resolve implements Metrics. Every triple resolves successfully.
func (m Fixed) Resolve(family string, weight Weight, style Style) (Font, error) {
	name := family
	if weight >= WeightBold {
		name += "-Bold"
	}
	if style == StyleItalic {
		name += "-Italic"
	}
	return fixedFont{name: name}, nil
}

// TextWidth implements Metrics.
func (m Fixed) TextWidth(f Font, size float64, s string) float64 {
	n := 0
	for range s {
		n++
	}
	return float64(n) * size * m.advance()
}

// TextWidthFallback implements Metrics.
func (m Fixed) TextWidthFallback(f Font, fallbacks []Font, size float64, s string) float64 {
	return m.TextWidth(f, size, s)
}

// LineHeight implements Metrics.
func (m Fixed) LineHeight(f Font, size float64) float64 {
	return size * m.leading()
}

// SplitRuns implements Metrics. Fixed metrics cover everything, so the whole
// string is one run.
func (m Fixed) SplitRuns(f Font, fallbacks []Font, s string) []Run {
	if s == "" {
		return nil
	}
	return []Run{{Text: s, Font: f}}
}
