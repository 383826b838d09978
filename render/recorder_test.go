package render

import "testing"

func TestRecorderPages(t *testing.T) {
	rec := NewRecorder()
	c := rec.BeginPage(100, 200)
	c.DrawString("hello", 10, 20, TextOptions{FontSize: 12})
	c.Rect(0, 0, 50, 50, RectOptions{Fill: true, FillColor: RGB(1, 0, 0)})
	rec.EndPage()

	c = rec.BeginPage(100, 200)
	c.DrawString("world", 10, 20, TextOptions{FontSize: 12})
	rec.EndPage()

	if len(rec.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(rec.Pages))
	}
	if rec.Pages[0].Width != 100 || rec.Pages[0].Height != 200 {
		t.Fatalf("page size = %v x %v", rec.Pages[0].Width, rec.Pages[0].Height)
	}
	if got := rec.Pages[0].CommandCount(); got != 2 {
		t.Fatalf("page 1 commands = %d, want 2", got)
	}
	if got := rec.Pages[1].Strings(); len(got) != 1 || got[0] != "world" {
		t.Fatalf("page 2 strings = %q", got)
	}
}

func TestRecorderForms(t *testing.T) {
	rec := NewRecorder()
	c := rec.BeginPage(100, 100)
	c.DefineForm("header", func(fc Canvas) {
		fc.DrawString("repeated", 0, 10, TextOptions{FontSize: 10})
	})
	c.DrawForm("header", 5, 5)
	rec.EndPage()

	body := rec.FormCommands("header")
	if len(body) != 1 || body[0].Str != "repeated" {
		t.Fatalf("form body = %+v", body)
	}
	// The form body is recorded once; the page only references it.
	if got := rec.Pages[0].CommandCount(); got != 1 {
		t.Fatalf("page commands = %d, want 1", got)
	}
	if rec.Pages[0].Commands[0].Op != "form" {
		t.Fatalf("page command = %+v", rec.Pages[0].Commands[0])
	}
}

func TestRecorderMetadata(t *testing.T) {
	rec := NewRecorder()
	c := rec.BeginPage(10, 10)
	c.SetMetadata("lang", "en")
	rec.EndPage()
	if rec.Pages[0].Metadata["lang"] != "en" {
		t.Fatalf("metadata = %v", rec.Pages[0].Metadata)
	}
}

func TestPathBounds(t *testing.T) {
	p := new(Path).MoveTo(10, 20).LineTo(50, 5).CurveTo(60, 70, 80, 90, 30, 40).Close()
	minX, minY, maxX, maxY := p.Bounds()
	if minX != 10 || minY != 5 || maxX != 80 || maxY != 90 {
		t.Fatalf("bounds = (%v, %v, %v, %v)", minX, minY, maxX, maxY)
	}
}

func TestColorWithAlpha(t *testing.T) {
	c := RGB(0.2, 0.4, 0.6).WithAlpha(0.5)
	if c.A != 0.5 || c.R != 0.2 {
		t.Fatalf("color = %+v", c)
	}
}
