package fonts

import "testing"

func TestFixedMetrics(t *testing.T) {
	m := Fixed{}
	f, err := m.Resolve("Helvetica", WeightRegular, StyleNormal)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if f.Name() != "Helvetica" {
		t.Fatalf("name = %q", f.Name())
	}
	if w := m.TextWidth(f, 10, "abcd"); w != 20 {
		t.Fatalf("width = %v, want 20", w)
	}
	if lh := m.LineHeight(f, 10); lh != 12 {
		t.Fatalf("line height = %v, want 12", lh)
	}
}

func TestFixedResolveVariants(t *testing.T) {
	m := Fixed{}
	bold, _ := m.Resolve("Helvetica", WeightBold, StyleNormal)
	if bold.Name() != "Helvetica-Bold" {
		t.Fatalf("bold name = %q", bold.Name())
	}
	boldItalic, _ := m.Resolve("Helvetica", WeightBold, StyleItalic)
	if boldItalic.Name() != "Helvetica-Bold-Italic" {
		t.Fatalf("bold italic name = %q", boldItalic.Name())
	}
}

func TestFixedCustomAdvance(t *testing.T) {
	m := Fixed{Advance: 1, Leading: 1.5}
	f, _ := m.Resolve("Mono", WeightRegular, StyleNormal)
	if w := m.TextWidth(f, 10, "ab"); w != 20 {
		t.Fatalf("width = %v, want 20", w)
	}
	if lh := m.LineHeight(f, 10); lh != 15 {
		t.Fatalf("line height = %v, want 15", lh)
	}
}

func TestFixedSplitRuns(t *testing.T) {
	m := Fixed{}
	f, _ := m.Resolve("Helvetica", WeightRegular, StyleNormal)
	runs := m.SplitRuns(f, nil, "hello")
	if len(runs) != 1 || runs[0].Text != "hello" {
		t.Fatalf("runs = %+v", runs)
	}
	if runs := m.SplitRuns(f, nil, ""); runs != nil {
		t.Fatalf("empty string runs = %+v", runs)
	}
}
