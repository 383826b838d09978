package layout

import "testing"

func TestLengthResolve(t *testing.T) {
	tests := []struct {
		name string
		l    Length
		want float64
	}{
		{"points", Pt(12), 12},
		{"percent", Pct(50), 100},
		{"em", Ems(2), 20},
		{"rem", Rems(3), 48},
		{"calc", Sum(Pt(10), Pct(25), Ems(1)), 70},
		{"auto resolves to zero", Length{}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.l.Resolve(200, 10, 16); got != tc.want {
				t.Fatalf("Resolve = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLengthIsSet(t *testing.T) {
	if !(Length{}).IsAuto() {
		t.Fatalf("zero length is not auto")
	}
	for _, l := range []Length{{}, {Kind: Inherit}, {Kind: Initial}} {
		if l.IsSet() {
			t.Fatalf("kind %v reported as set", l.Kind)
		}
	}
	for _, l := range []Length{Pt(0), Pct(0), Ems(0), Sum()} {
		if !l.IsSet() {
			t.Fatalf("kind %v reported as unset", l.Kind)
		}
	}
}

func TestLengthResolveDefault(t *testing.T) {
	if got := (Length{}).ResolveDefault(200, 10, 16, 42); got != 42 {
		t.Fatalf("auto default = %v, want 42", got)
	}
	if got := Pt(7).ResolveDefault(200, 10, 16, 42); got != 7 {
		t.Fatalf("set default = %v, want 7", got)
	}
}
