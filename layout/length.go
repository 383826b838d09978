package layout

// LengthKind enumerates the ways a dimension can be specified.
type LengthKind int

const (
	// Auto defers the value to the layout algorithm (fill, center, ...).
	Auto LengthKind = iota
	// Absolute is a value in points.
	Absolute
	// Percent is relative to the available dimension (100 = all of it).
	Percent
	// Em is relative to the current font size.
	Em
	// Rem is relative to the root font size.
	Rem
	// Calc is a linear combination of the other kinds.
	Calc
	// Inherit takes the parent's value.
	Inherit
	// Initial takes the property's initial value.
	Initial
)

// Length is a dimension specification resolved at layout time against an
// available size, the current font size and the root font size.
type Length struct {
	Kind  LengthKind
	Value float64
	// Terms holds the operands of a Calc length. Nested Calc terms are
	// flattened on resolution.
	Terms []Length
}

// Pt returns an absolute length in points.
func Pt(v float64) Length { return Length{Kind: Absolute, Value: v} }

// Pct returns a percentage length (100 = the full available dimension).
func Pct(v float64) Length { return Length{Kind: Percent, Value: v} }

// Ems returns a font-size-relative length.
func Ems(v float64) Length { return Length{Kind: Em, Value: v} }

// Rems returns a root-font-size-relative length.
func Rems(v float64) Length { return Length{Kind: Rem, Value: v} }

// Sum returns a Calc length adding the given terms.
func Sum(terms ...Length) Length { return Length{Kind: Calc, Terms: terms} }

// IsAuto reports whether the length defers to the layout algorithm.
func (l Length) IsAuto() bool { return l.Kind == Auto }

// IsSet reports whether the length carries a resolvable value.
func (l Length) IsSet() bool {
	switch l.Kind {
	case Auto, Inherit, Initial:
		return false
	}
	return true
}

// Resolve computes the length in points. Auto, Inherit and Initial resolve
// to zero; callers that distinguish them check IsAuto/IsSet first.
func (l Length) Resolve(avail, em, rem float64) float64 {
	switch l.Kind {
	case Absolute:
		return l.Value
	case Percent:
		return avail * l.Value / 100
	case Em:
		return l.Value * em
	case Rem:
		return l.Value * rem
	case Calc:
		var total float64
		for _, t := range l.Terms {
			total += t.Resolve(avail, em, rem)
		}
		return total
	}
	return 0
}

// ResolveDefault resolves the length, substituting def for Auto, Inherit and
// Initial.
func (l Length) ResolveDefault(avail, em, rem, def float64) float64 {
	if !l.IsSet() {
		return def
	}
	return l.Resolve(avail, em, rem)
}
