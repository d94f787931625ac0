package buffer

import "github.com/vittorioromeo/scopex/scope"

// Expansion is the outcome of growing one selection to its scope.
type Expansion struct {
	Before Selection
	After  Selection
	Kind   scope.Kind
	Err    error
}

// Changed reports whether the selection moved.
func (e Expansion) Changed() bool {
	return e.Err == nil && e.After != e.Before
}

// ExpandScope grows every selection to its innermost enclosing scope. All
// selections are resolved against the same text snapshot, so one
// selection's expansion never influences another's. A selection whose
// search fails keeps its range and reports the error in its Expansion.
//
// When anything changed, the previous selections are pushed on History so
// ShrinkScope can restore them.
func (b *Buffer) ExpandScope() []Expansion {
	text := b.Runes()
	before := b.Selections()
	after := make([]Selection, len(before))
	out := make([]Expansion, len(before))
	changed := false

	for i, sel := range before {
		s, err := scope.Expand(text, b.RangeOf(sel))
		next := sel
		if err == nil && s.Found() {
			next = b.SelectionOf(s.Range)
		}
		out[i] = Expansion{Before: sel, After: next, Kind: s.Kind, Err: err}
		after[i] = next
		if next != sel {
			changed = true
		}
	}

	if changed {
		b.History.Push(before)
		b.setSelections(after)
	}
	return out
}

// ShrinkScope restores the selections that the last ExpandScope replaced.
func (b *Buffer) ShrinkScope() bool {
	prev, ok := b.History.Pop()
	if !ok {
		return false
	}
	b.setSelections(prev)
	return true
}
