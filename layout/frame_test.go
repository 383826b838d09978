package layout

import (
	"testing"

	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/render"
)

func TestFrameCursor(t *testing.T) {
	fr := NewFrame(geom.Rect{X: 10, Y: 20, W: 100, H: 50})
	if !fr.Empty() || fr.Remaining() != 50 {
		t.Fatalf("fresh frame: empty=%v remaining=%v", fr.Empty(), fr.Remaining())
	}

	rec := render.NewRecorder()
	c := rec.BeginPage(200, 200)
	if !fr.Place(c, NewSpacer(10, 30)) {
		t.Fatalf("spacer did not place")
	}
	if fr.Empty() || fr.Remaining() != 20 {
		t.Fatalf("after place: empty=%v remaining=%v", fr.Empty(), fr.Remaining())
	}
	if fr.Place(c, NewSpacer(10, 30)) {
		t.Fatalf("oversized spacer placed")
	}
	fr.Reset()
	if !fr.Empty() {
		t.Fatalf("reset frame not empty")
	}
}

func TestFramePlaceDrawsAtCursor(t *testing.T) {
	fr := NewFrame(geom.Rect{X: 10, Y: 20, W: 100, H: 100})
	rec := render.NewRecorder()
	c := rec.BeginPage(200, 200)
	fr.Place(c, NewSpacer(10, 30))
	p := NewParagraph(fonts.Fixed{}, "ab", TextStyle{Size: 10})
	if !fr.Place(c, p) {
		t.Fatalf("paragraph did not place")
	}
	rec.EndPage()
	cmds := rec.Pages[0].Commands
	if len(cmds) != 1 || cmds[0].Op != "text" {
		t.Fatalf("commands = %+v", cmds)
	}
	// Frame origin (10, 20), cursor 30, baseline one font size below the top.
	if cmds[0].Args[0] != 10 || cmds[0].Args[1] != 60 {
		t.Fatalf("text at (%v, %v), want (10, 60)", cmds[0].Args[0], cmds[0].Args[1])
	}
}

func TestFrameForcePlaceClampsCursor(t *testing.T) {
	fr := NewFrame(geom.Rect{W: 100, H: 50})
	rec := render.NewRecorder()
	c := rec.BeginPage(200, 200)
	fr.ForcePlace(c, NewSpacer(10, 500))
	if fr.Remaining() != 0 {
		t.Fatalf("remaining = %v, want 0", fr.Remaining())
	}
}
