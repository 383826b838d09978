package layout

import (
	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/render"
)

// Alignment positions text lines horizontally within the available width.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// WrapMode selects the line-breaking behavior of text.
type WrapMode int

const (
	// WrapWord breaks greedily at word boundaries.
	WrapWord WrapMode = iota
	// WrapNone emits one physical line per input line, truncated with an
	// ellipsis when too wide.
	WrapNone
	// WrapPreserve breaks purely on width without collapsing space runs.
	WrapPreserve
)

const (
	defaultFontSize   = 12.0
	defaultLeading    = 1.2
	defaultFontFamily = "Helvetica"
)

// TextStyle describes how a piece of text is measured and drawn.
type TextStyle struct {
	Family  string
	Weight  fonts.Weight
	Style   fonts.Style
	Size    float64 // points; zero means 12
	Leading float64 // line height multiplier; zero uses the font's natural height
	Color   render.Color
	Align   Alignment
	Wrap    WrapMode
	// BreakLongWords allows character-level splitting of a single word that
	// is wider than the available width. Otherwise the word is emitted
	// verbatim and allowed to overflow.
	BreakLongWords bool
	// Fallbacks are family names tried per rune when the primary font does
	// not cover it.
	Fallbacks []string
}

func (s TextStyle) size() float64 {
	if s.Size == 0 {
		return defaultFontSize
	}
	return s.Size
}

func (s TextStyle) family() string {
	if s.Family == "" {
		return defaultFontFamily
	}
	return s.Family
}

func (s TextStyle) lineHeight(m fonts.Metrics, f fonts.Font) float64 {
	if s.Leading > 0 {
		return s.size() * s.Leading
	}
	if f != nil && m != nil {
		if lh := m.LineHeight(f, s.size()); lh > 0 {
			return lh
		}
	}
	return s.size() * defaultLeading
}

// resolveFont maps a style to a font, falling back to nil when the family is
// unknown. Measurement then uses a width heuristic so layout stays usable
// with unregistered fonts.
func resolveFont(m fonts.Metrics, s TextStyle) fonts.Font {
	if m == nil {
		return nil
	}
	f, err := m.Resolve(s.family(), s.Weight, s.Style)
	if err != nil {
		return nil
	}
	return f
}

func resolveFallbacks(m fonts.Metrics, s TextStyle) []fonts.Font {
	if m == nil || len(s.Fallbacks) == 0 {
		return nil
	}
	var out []fonts.Font
	for _, fam := range s.Fallbacks {
		f, err := m.Resolve(fam, s.Weight, s.Style)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

// fontName returns the identifier drawing commands reference.
func fontName(f fonts.Font, s TextStyle) string {
	if f != nil {
		return f.Name()
	}
	return s.family()
}
