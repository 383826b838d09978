package render

import "image"

// Command is one recorded canvas operation.
type Command struct {
	Op   string
	Args []float64
	Str  string
}

// RecordedPage holds everything drawn on one page.
type RecordedPage struct {
	Width, Height float64
	Commands      []Command
	Metadata      map[string]string
}

// CommandCount returns the number of commands recorded on the page.
func (p *RecordedPage) CommandCount() int { return len(p.Commands) }

// Strings returns every string drawn on the page, in draw order.
func (p *RecordedPage) Strings() []string {
	var out []string
	for _, c := range p.Commands {
		if c.Op == "text" {
			out = append(out, c.Str)
		}
	}
	return out
}

// Recorder is a DocumentSink that captures pages as command lists. It is the
// reference sink used by tests, the flowdump tool and the examples.
type Recorder struct {
	Pages []*RecordedPage
	forms map[string][]Command
	cur   *recorderCanvas
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{forms: make(map[string][]Command)}
}

// BeginPage implements DocumentSink.
func (r *Recorder) BeginPage(width, height float64) Canvas {
	page := &RecordedPage{Width: width, Height: height, Metadata: make(map[string]string)}
	r.cur = &recorderCanvas{rec: r, page: page}
	return r.cur
}

// EndPage implements DocumentSink.
func (r *Recorder) EndPage() {
	if r.cur == nil {
		return
	}
	r.Pages = append(r.Pages, r.cur.page)
	r.cur = nil
}

type recorderCanvas struct {
	rec  *Recorder
	page *RecordedPage
}

func (c *recorderCanvas) add(cmd Command) {
	c.page.Commands = append(c.page.Commands, cmd)
}

// CommandCount returns the number of commands emitted on this page so far.
func (c *recorderCanvas) CommandCount() int { return len(c.page.Commands) }

func (c *recorderCanvas) Save()    { c.add(Command{Op: "save"}) }
func (c *recorderCanvas) Restore() { c.add(Command{Op: "restore"}) }

func (c *recorderCanvas) SetFillColor(col Color) {
	c.add(Command{Op: "fillcolor", Args: []float64{col.R, col.G, col.B, col.A}})
}

func (c *recorderCanvas) SetStrokeColor(col Color) {
	c.add(Command{Op: "strokecolor", Args: []float64{col.R, col.G, col.B, col.A}})
}

func (c *recorderCanvas) Rect(x, y, w, h float64, opts RectOptions) {
	c.add(Command{Op: "rect", Args: []float64{x, y, w, h, opts.Radius}})
}

func (c *recorderCanvas) Line(x1, y1, x2, y2 float64, opts LineOptions) {
	c.add(Command{Op: "line", Args: []float64{x1, y1, x2, y2, opts.LineWidth}})
}

func (c *recorderCanvas) Curve(x1, y1, cx1, cy1, cx2, cy2, x2, y2 float64, opts LineOptions) {
	c.add(Command{Op: "curve", Args: []float64{x1, y1, cx1, cy1, cx2, cy2, x2, y2}})
}

func (c *recorderCanvas) Path(p *Path, opts PathOptions) {
	c.add(Command{Op: "path", Args: []float64{float64(len(p.Segments))}})
}

func (c *recorderCanvas) DrawString(s string, x, y float64, opts TextOptions) {
	c.add(Command{Op: "text", Args: []float64{x, y, opts.FontSize}, Str: s})
}

func (c *recorderCanvas) DrawImage(img image.Image, x, y, w, h float64, opts ImageOptions) {
	c.add(Command{Op: "image", Args: []float64{x, y, w, h}})
}

func (c *recorderCanvas) DefineForm(name string, draw func(Canvas)) {
	sub := &recorderCanvas{rec: c.rec, page: &RecordedPage{Metadata: make(map[string]string)}}
	draw(sub)
	c.rec.forms[name] = sub.page.Commands
}

func (c *recorderCanvas) DrawForm(name string, x, y float64) {
	c.add(Command{Op: "form", Args: []float64{x, y}, Str: name})
}

// FormCommands returns the recorded body of a named form, or nil.
func (r *Recorder) FormCommands(name string) []Command { return r.forms[name] }

func (c *recorderCanvas) BeginTag(tag string, attrs map[string]string) {
	c.add(Command{Op: "begintag", Str: tag})
}

func (c *recorderCanvas) EndTag() { c.add(Command{Op: "endtag"}) }

func (c *recorderCanvas) SetMetadata(key, value string) {
	c.page.Metadata[key] = value
}

func (c *recorderCanvas) FillGradient(x, y, w, h float64, g Gradient) {
	c.add(Command{Op: "gradient", Args: []float64{x, y, w, h, float64(len(g.Stops))}})
}

func (c *recorderCanvas) Clip(x, y, w, h, radius float64) {
	c.add(Command{Op: "clip", Args: []float64{x, y, w, h, radius}})
}
