package buffer

import "github.com/vittorioromeo/scopex/scope"

// OffsetOf maps a cursor to its rune offset in Runes(). The cursor is
// clamped into the buffer first.
func (b *Buffer) OffsetOf(c Cursor) int {
	c = b.clamp(c)
	off := 0
	for i := 0; i < c.Line; i++ {
		off += RuneLen(b.Lines[i]) + 1
	}
	return off + c.Col
}

// CursorAt maps a rune offset back to a cursor. Offsets outside the buffer
// are clamped to its ends.
func (b *Buffer) CursorAt(offset int) Cursor {
	if offset <= 0 {
		return Cursor{}
	}
	for i, l := range b.Lines {
		n := RuneLen(l)
		if offset <= n {
			return Cursor{Line: i, Col: offset}
		}
		offset -= n + 1
	}
	last := len(b.Lines) - 1
	return Cursor{Line: last, Col: b.lineLen(last)}
}

// RangeOf converts a selection to rune offsets.
func (b *Buffer) RangeOf(s Selection) scope.Range {
	return scope.Range{Start: b.OffsetOf(s.Start), End: b.OffsetOf(s.End)}
}

// SelectionOf converts rune offsets to a selection.
func (b *Buffer) SelectionOf(r scope.Range) Selection {
	return NewSelection(b.CursorAt(r.Start), b.CursorAt(r.End))
}
