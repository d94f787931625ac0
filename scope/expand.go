package scope

import "fmt"

// boundary is where one directional scan stopped.
type boundary struct {
	offset int
	kind   Kind
}

// Expand returns the innermost scope enclosing sel in text.
//
// A selection whose immediate neighbours are a matching bracket pair grows
// by one rune on each side. Otherwise the text is scanned left from
// sel.Start-1 and then right from sel.End; the result is the interior of the
// two delimiters found. When neither side has anything left to scan the
// selection is returned unchanged with KindNone.
//
// The error is ErrUnbalanced when a scan meets crossed brackets, a
// *MismatchError when the two sides stop at different kinds, or ErrRange for
// an invalid selection. On error the returned Scope holds sel unchanged.
func Expand(text []rune, sel Range) (Scope, error) {
	unchanged := Scope{Range: sel}
	if sel.Start < 0 || sel.Start > sel.End || sel.End > len(text) {
		return unchanged, fmt.Errorf("%w: %s in text of length %d", ErrRange, sel, len(text))
	}

	if s, ok := adjacentPair(text, sel); ok {
		return s, nil
	}

	left, ok, err := search(text, sel.Start-1, Left)
	if err != nil || !ok {
		return unchanged, err
	}
	right, ok, err := search(text, sel.End, Right)
	if err != nil || !ok {
		return unchanged, err
	}

	if left.kind != right.kind {
		return unchanged, &MismatchError{Left: left.kind, Right: right.kind}
	}
	return Scope{
		Range: Range{Start: left.offset + 1, End: right.offset},
		Kind:  left.kind,
	}, nil
}

// ExpandString is Expand over a string; sel is in rune offsets.
func ExpandString(text string, sel Range) (Scope, error) {
	return Expand([]rune(text), sel)
}

// adjacentPair handles a selection that already touches its brackets, so
// that it grows to include them instead of jumping to the next pair out.
// Neighbours of different kinds are left to the full scan.
func adjacentPair(text []rune, sel Range) (Scope, bool) {
	if sel.Start <= 0 || sel.End >= len(text) {
		return Scope{}, false
	}
	lk, lok := openKind(text[sel.Start-1])
	rk, rok := closeKind(text[sel.End])
	if !lok || !rok || lk != rk {
		return Scope{}, false
	}
	return Scope{
		Range: Range{Start: sel.Start - 1, End: sel.End + 1},
		Kind:  lk,
	}, true
}

// search walks from offset in direction d for the bracket enclosing it,
// skipping balanced pairs on the way. Without one it falls back to the
// nearest paragraph break.
func search(text []rune, offset int, d Direction) (boundary, bool, error) {
	var stack []Kind
	for i := offset; inBounds(text, i); i += d.step() {
		if k, ok := d.nests(text[i]); ok {
			stack = append(stack, k)
			continue
		}
		k, ok := d.seeks(text[i])
		if !ok {
			continue
		}
		if len(stack) == 0 {
			return boundary{offset: i, kind: k}, true, nil
		}
		if stack[len(stack)-1] != k {
			return boundary{}, false, ErrUnbalanced
		}
		stack = stack[:len(stack)-1]
	}

	b, ok := paragraphBreak(text, offset, d)
	return b, ok, nil
}

// paragraphBreak finds the first blank line from offset in direction d and
// reports the newline of the pair with the lower offset. At the buffer edge it
// reports the last offset it scanned, and nothing if it scanned none.
func paragraphBreak(text []rune, offset int, d Direction) (boundary, bool) {
	// Already sitting on a blank line: stay put.
	if d == Left && inBounds(text, offset) && offset+1 < len(text) &&
		text[offset] == '\n' && text[offset+1] == '\n' {
		return boundary{offset: offset, kind: KindParagraph}, true
	}

	last := -1
	for i := offset; inBounds(text, i); i += d.step() {
		if last >= 0 && text[last] == '\n' && text[i] == '\n' {
			return boundary{offset: min(last, i), kind: KindParagraph}, true
		}
		last = i
	}
	if last < 0 {
		return boundary{}, false
	}
	return boundary{offset: last, kind: KindParagraph}, true
}
