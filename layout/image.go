package layout

import (
	"fmt"
	"image"
	"os"

	// Decoders for the formats documents commonly embed.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/render"
)

// Image places a decoded raster image. With no explicit size the pixel
// dimensions are used at 72 dpi; with one dimension set the other follows
// the aspect ratio. Images never split: an image taller than the remaining
// frame moves to the next frame whole.
type Image struct {
	base
	Src           image.Image
	Width, Height float64
}

// LoadImage decodes an image file into an Image flowable.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("layout: decoding image %s: %w", path, err)
	}
	return &Image{Src: img}, nil
}

func (im *Image) Name() string { return "Image" }

// natural returns the unscaled size in points.
func (im *Image) natural() geom.Size {
	w, h := im.Width, im.Height
	var pw, ph float64
	if im.Src != nil {
		b := im.Src.Bounds()
		pw, ph = float64(b.Dx()), float64(b.Dy())
	}
	switch {
	case w > 0 && h > 0:
	case w > 0 && pw > 0:
		h = w * ph / pw
	case h > 0 && ph > 0:
		w = h * pw / ph
	default:
		w, h = pw, ph
	}
	return geom.Size{W: w, H: h}
}

// Wrap implements Flowable, scaling down proportionally to fit availW.
func (im *Image) Wrap(availW, availH float64) geom.Size {
	sz := im.natural()
	if sz.W > availW && sz.W > 0 {
		scale := availW / sz.W
		sz.W = availW
		sz.H *= scale
	}
	return sz
}

// IntrinsicWidth implements Flowable.
func (im *Image) IntrinsicWidth() (float64, bool) {
	return im.natural().W, true
}

func (im *Image) Split(availW, availH float64) (Flowable, Flowable, bool) {
	return nil, nil, false
}

// Draw implements Flowable.
func (im *Image) Draw(c render.Canvas, x, y, availW, availH float64) {
	if im.Src == nil {
		return
	}
	sz := im.Wrap(availW, availH)
	c.DrawImage(im.Src, x, y, sz.W, sz.H, render.ImageOptions{Interpolate: true})
}

func (im *Image) Clone() Flowable {
	out := *im
	return &out
}

// Graphic places vector paths sized to an explicit box. The path coordinates
// are relative to the graphic's top-left corner.
type Graphic struct {
	base
	Width, Height float64
	Path          *render.Path
	Options       render.PathOptions
}

func (g *Graphic) Name() string { return "Graphic" }

func (g *Graphic) Wrap(availW, availH float64) geom.Size {
	return geom.Size{W: g.Width, H: g.Height}
}

func (g *Graphic) IntrinsicWidth() (float64, bool) { return g.Width, true }

func (g *Graphic) Split(availW, availH float64) (Flowable, Flowable, bool) {
	return nil, nil, false
}

// Draw implements Flowable, translating the path to the draw origin.
func (g *Graphic) Draw(c render.Canvas, x, y, availW, availH float64) {
	if g.Path == nil {
		return
	}
	moved := &render.Path{Segments: make([]render.Segment, len(g.Path.Segments))}
	for i, s := range g.Path.Segments {
		s.Pt[0] += x
		s.Pt[1] += y
		s.C1[0] += x
		s.C1[1] += y
		s.C2[0] += x
		s.C2[1] += y
		moved.Segments[i] = s
	}
	c.Path(moved, g.Options)
}

func (g *Graphic) Clone() Flowable {
	out := *g
	if g.Path != nil {
		segs := make([]render.Segment, len(g.Path.Segments))
		copy(segs, g.Path.Segments)
		out.Path = &render.Path{Segments: segs}
	}
	return &out
}
