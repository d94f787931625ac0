// Package scope finds the innermost bracket pair or blank-line paragraph
// that encloses a selection and grows the selection to cover it.
//
// All offsets are rune indexes into an immutable text snapshot. Nothing in
// this package knows about strings, comments or language grammars: a bracket
// is a bracket wherever it appears.
package scope

import "fmt"

// Kind identifies the delimiter that bounds a scope.
type Kind int

const (
	// KindNone means no scope was found and the selection is unchanged.
	KindNone Kind = iota
	// KindParagraph is a run of text bounded by blank lines or the buffer edges.
	KindParagraph
	KindBrace
	KindBracket
	KindParen
)

var (
	openers      = [...]rune{'{', '[', '('}
	closers      = [...]rune{'}', ']', ')'}
	bracketKinds = [...]Kind{KindBrace, KindBracket, KindParen}
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindParagraph:
		return "paragraph"
	case KindBrace:
		return "{}"
	case KindBracket:
		return "[]"
	case KindParen:
		return "()"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsBracket reports whether k is one of the three bracket pairs.
func (k Kind) IsBracket() bool {
	return k == KindBrace || k == KindBracket || k == KindParen
}

// Delimiters returns the opening and closing rune of a bracket kind.
func (k Kind) Delimiters() (opener, closer rune, ok bool) {
	for i, bk := range bracketKinds {
		if bk == k {
			return openers[i], closers[i], true
		}
	}
	return 0, 0, false
}

func openKind(r rune) (Kind, bool) {
	for i, o := range openers {
		if o == r {
			return bracketKinds[i], true
		}
	}
	return KindNone, false
}

func closeKind(r rune) (Kind, bool) {
	for i, c := range closers {
		if c == r {
			return bracketKinds[i], true
		}
	}
	return KindNone, false
}

// Range is a half-open span [Start, End) of rune offsets.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) Empty() bool { return r.Start == r.End }

// Covers reports whether r contains every offset of o.
func (r Range) Covers(o Range) bool {
	return r.Start <= o.Start && o.End <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Scope is the result of a successful expansion.
type Scope struct {
	Range
	Kind Kind
}

// Found reports whether an enclosing scope was located.
func (s Scope) Found() bool { return s.Kind != KindNone }
