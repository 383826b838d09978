package fonts

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// Shaper is a Metrics implementation backed by go-text/typesetting. Faces
// are registered from raw TrueType/OpenType data and measured through the
// HarfBuzz shaper, so widths account for kerning and ligatures.
type Shaper struct {
	mu    sync.Mutex
	faces map[faceKey]*shaperFont
}

type faceKey struct {
	family string
	weight Weight
	style  Style
}

type shaperFont struct {
	name string
	face *gofont.Face
}

func (f *shaperFont) Name() string { return f.name }

// NewShaper returns a Shaper with no registered faces.
func NewShaper() *Shaper {
	return &Shaper{faces: make(map[faceKey]*shaperFont)}
}

// RegisterFace parses TrueType data and registers it under the given triple.
func (s *Shaper) RegisterFace(family string, weight Weight, style Style, data []byte) error {
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("fonts: parsing face %q: %w", family, err)
	}
	name := family
	if weight >= WeightBold {
		name += "-Bold"
	}
	if style == StyleItalic {
		name += "-Italic"
	}
	s.mu.Lock()
	s.faces[faceKey{family, weight, style}] = &shaperFont{name: name, face: face}
	s.mu.Unlock()
	return nil
}

// Resolve implements Metrics. An exact match is preferred; otherwise the
// regular face of the family is returned.
func (s *Shaper) Resolve(family string, weight Weight, style Style) (Font, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.faces[faceKey{family, weight, style}]; ok {
		return f, nil
	}
	if f, ok := s.faces[faceKey{family, WeightRegular, StyleNormal}]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("fonts: no face registered for family %q", family)
}

func (s *Shaper) shape(f *shaperFont, size float64, text string) shaping.Output {
	runes := []rune(norm.NFC.String(text))
	shaper := &shaping.HarfbuzzShaper{}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      f.face,
		Size:      fixed.Int26_6(size * 64),
		Script:    language.Latin,
		Language:  language.DefaultLanguage(),
	}
	return shaper.Shape(input)
}

// TextWidth implements Metrics.
func (s *Shaper) TextWidth(f Font, size float64, text string) float64 {
	sf, ok := f.(*shaperFont)
	if !ok || text == "" {
		return 0
	}
	out := s.shape(sf, size, text)
	var w fixed.Int26_6
	for _, g := range out.Glyphs {
		w += g.XAdvance
	}
	return float64(w) / 64.0
}

// TextWidthFallback implements Metrics.
func (s *Shaper) TextWidthFallback(f Font, fallbacks []Font, size float64, text string) float64 {
	var w float64
	for _, run := range s.SplitRuns(f, fallbacks, text) {
		w += s.TextWidth(run.Font, size, run.Text)
	}
	return w
}

// LineHeight implements Metrics.
func (s *Shaper) LineHeight(f Font, size float64) float64 {
	sf, ok := f.(*shaperFont)
	if !ok {
		return size * 1.2
	}
	out := s.shape(sf, size, "x")
	asc := float64(out.LineBounds.Ascent) / 64.0
	desc := float64(out.LineBounds.Descent) / 64.0
	gap := float64(out.LineBounds.Gap) / 64.0
	if asc == 0 && desc == 0 {
		return size * 1.2
	}
	if desc < 0 {
		desc = -desc
	}
	return asc + desc + gap
}

// SplitRuns implements Metrics. Runes not covered by f are assigned to the
// first fallback face that covers them; uncovered runes stay with f.
func (s *Shaper) SplitRuns(f Font, fallbacks []Font, text string) []Run {
	if text == "" {
		return nil
	}
	pick := func(r rune) Font {
		if sf, ok := f.(*shaperFont); ok {
			if _, covered := sf.face.NominalGlyph(r); covered {
				return f
			}
		}
		for _, fb := range fallbacks {
			sf, ok := fb.(*shaperFont)
			if !ok {
				continue
			}
			if _, covered := sf.face.NominalGlyph(r); covered {
				return fb
			}
		}
		return f
	}

	var runs []Run
	var cur []rune
	var curFont Font
	for _, r := range norm.NFC.String(text) {
		rf := pick(r)
		if curFont == nil {
			curFont = rf
		}
		if rf != curFont {
			runs = append(runs, Run{Text: string(cur), Font: curFont})
			cur = cur[:0]
			curFont = rf
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		runs = append(runs, Run{Text: string(cur), Font: curFont})
	}
	return runs
}
