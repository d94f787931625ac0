package buffer

// Cursor movement. With extend set the primary selection grows from the
// position the cursor had when extension started; otherwise any selection
// is dropped. Every move discards shrink history and extra selections.

func (b *Buffer) SetCursor(c Cursor, extend bool) {
	b.moveTo(b.clamp(c), extend)
}

func (b *Buffer) MoveLeft(extend bool) {
	c := b.Cursor
	if !extend && b.Selection != nil {
		b.moveTo(b.Selection.Start, false)
		return
	}
	if c.Col > 0 {
		c.Col--
	} else if c.Line > 0 {
		c.Line--
		c.Col = b.lineLen(c.Line)
	}
	b.moveTo(c, extend)
}

func (b *Buffer) MoveRight(extend bool) {
	c := b.Cursor
	if !extend && b.Selection != nil {
		b.moveTo(b.Selection.End, false)
		return
	}
	if c.Col < b.lineLen(c.Line) {
		c.Col++
	} else if c.Line < len(b.Lines)-1 {
		c.Line++
		c.Col = 0
	}
	b.moveTo(c, extend)
}

func (b *Buffer) MoveUp(extend bool) {
	b.moveLines(-1, extend)
}

func (b *Buffer) MoveDown(extend bool) {
	b.moveLines(1, extend)
}

// MoveLines moves the cursor n lines, negative for up.
func (b *Buffer) MoveLines(n int, extend bool) {
	b.moveLines(n, extend)
}

func (b *Buffer) moveLines(n int, extend bool) {
	c := b.Cursor
	c.Line += n
	b.moveTo(b.clamp(c), extend)
}

func (b *Buffer) MoveLineStart(extend bool) {
	b.moveTo(Cursor{Line: b.Cursor.Line}, extend)
}

func (b *Buffer) MoveLineEnd(extend bool) {
	b.moveTo(Cursor{Line: b.Cursor.Line, Col: b.lineLen(b.Cursor.Line)}, extend)
}

func (b *Buffer) moveTo(c Cursor, extend bool) {
	b.History.Clear()
	b.ExtraSelections = nil

	if !extend {
		b.anchor = nil
		b.Selection = nil
		b.Cursor = c
		return
	}

	if b.anchor == nil {
		a := b.Cursor
		if b.Selection != nil {
			// Keep the end the cursor is not on.
			a = b.Selection.Start
			if b.Cursor.Equal(b.Selection.Start) {
				a = b.Selection.End
			}
		}
		b.anchor = &a
	}
	b.Cursor = c
	sel := NewSelection(*b.anchor, c)
	if sel.Empty() {
		b.Selection = nil
		return
	}
	b.Selection = &sel
}
