// Package config loads page template definitions from TOML documents. A
// document file names its templates, their page sizes (either a named paper
// size or explicit dimensions in points) and the frames content flows
// through, and converts to the layout package's template slice.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/layout"
)

// Document is the top-level TOML schema.
type Document struct {
	Doc       DocSection `toml:"document"`
	Templates []Template `toml:"template"`
}

// DocSection holds document-wide settings.
type DocSection struct {
	Title string `toml:"title"`
	// Margin is applied to templates that declare no frames: each such
	// template gets a single frame inset by this many points.
	Margin float64 `toml:"margin"`
	// Fonts maps a family name to a TrueType file path. All faces of a
	// family resolve to the same file unless a "Family-Bold" or
	// "Family-Italic" entry overrides it.
	Fonts map[string]string `toml:"fonts"`
}

// Template is one [[template]] block.
type Template struct {
	Name string `toml:"name"`
	// Size is a named paper size such as "A4" or "Letter". Width/Height
	// in points take precedence when both are set.
	Size   string  `toml:"size"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Frames []Frame `toml:"frame"`
}

// Frame is one [[template.frame]] block, in points.
type Frame struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
	W float64 `toml:"w"`
	H float64 `toml:"h"`
}

var paperSizes = map[string]geom.Size{
	"a3":     {W: 841.89, H: 1190.55},
	"a4":     {W: 595.28, H: 841.89},
	"a5":     {W: 419.53, H: 595.28},
	"letter": {W: 612, H: 792},
	"legal":  {W: 612, H: 1008},
}

const defaultMargin = 72

// Load reads and parses a TOML document file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses TOML bytes into a Document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return &doc, nil
}

// PageTemplates converts the document into the layout package's template
// sequence, validating each template as it goes.
func (d *Document) PageTemplates() ([]layout.PageTemplate, error) {
	if len(d.Templates) == 0 {
		return nil, fmt.Errorf("config: no templates defined")
	}
	out := make([]layout.PageTemplate, 0, len(d.Templates))
	for i, t := range d.Templates {
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("template-%d", i)
		}
		size, err := t.pageSize()
		if err != nil {
			return nil, fmt.Errorf("config: template %q: %w", name, err)
		}
		frames, err := t.frames(size, d.Doc.Margin)
		if err != nil {
			return nil, fmt.Errorf("config: template %q: %w", name, err)
		}
		out = append(out, layout.PageTemplate{
			Name:     name,
			PageSize: size,
			Frames:   frames,
		})
	}
	return out, nil
}

// LoadFonts builds a shaper from the [document] fonts table. Families with
// no registered faces fall back to nothing; callers wanting deterministic
// metrics use fonts.Fixed instead.
func (d *Document) LoadFonts() (*fonts.Shaper, error) {
	shaper := fonts.NewShaper()
	for family, path := range d.Doc.Fonts {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: font %q: %w", family, err)
		}
		weight, style := fonts.WeightRegular, fonts.StyleNormal
		base := family
		if strings.HasSuffix(base, "-Italic") {
			base = strings.TrimSuffix(base, "-Italic")
			style = fonts.StyleItalic
		}
		if strings.HasSuffix(base, "-Bold") {
			base = strings.TrimSuffix(base, "-Bold")
			weight = fonts.WeightBold
		}
		if err := shaper.RegisterFace(base, weight, style, data); err != nil {
			return nil, fmt.Errorf("config: font %q: %w", family, err)
		}
	}
	return shaper, nil
}

func (t Template) pageSize() (geom.Size, error) {
	if t.Width > 0 && t.Height > 0 {
		return geom.Size{W: t.Width, H: t.Height}, nil
	}
	if t.Width != 0 || t.Height != 0 {
		return geom.Size{}, fmt.Errorf("width and height must both be positive")
	}
	if t.Size == "" {
		return paperSizes["a4"], nil
	}
	size, ok := paperSizes[strings.ToLower(t.Size)]
	if !ok {
		return geom.Size{}, fmt.Errorf("unknown paper size %q", t.Size)
	}
	return size, nil
}

func (t Template) frames(page geom.Size, margin float64) ([]geom.Rect, error) {
	if len(t.Frames) == 0 {
		if margin <= 0 {
			margin = defaultMargin
		}
		if 2*margin >= page.W || 2*margin >= page.H {
			return nil, fmt.Errorf("margin %g leaves no room on a %gx%g page", margin, page.W, page.H)
		}
		return []geom.Rect{{
			X: margin,
			Y: margin,
			W: page.W - 2*margin,
			H: page.H - 2*margin,
		}}, nil
	}
	out := make([]geom.Rect, len(t.Frames))
	for i, f := range t.Frames {
		if f.W <= 0 || f.H <= 0 {
			return nil, fmt.Errorf("frame %d has empty size", i)
		}
		if f.X < 0 || f.Y < 0 || f.X+f.W > page.W || f.Y+f.H > page.H {
			return nil, fmt.Errorf("frame %d extends outside the page", i)
		}
		out[i] = geom.Rect{X: f.X, Y: f.Y, W: f.W, H: f.H}
	}
	return out, nil
}
