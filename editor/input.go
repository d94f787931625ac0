package editor

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/vittorioromeo/scopex/buffer"
	"github.com/vittorioromeo/scopex/config"
	"github.com/vittorioromeo/scopex/scope"
)

func (e *Editor) handleKey(ev *tcell.EventKey) {
	buf := e.activeBuffer()
	if buf == nil {
		return
	}

	// Configurable bindings win over the fixed ones below.
	switch {
	case e.expandKey.Matches(ev):
		e.expandScope()
		return
	case e.shrinkKey.Matches(ev):
		e.shrinkScope()
		return
	}

	extend := ev.Modifiers()&tcell.ModShift != 0

	if ev.Modifiers()&tcell.ModAlt != 0 && ev.Key() == tcell.KeyDown {
		e.addSelectionBelow()
		return
	}

	switch config.EventKey(ev) {
	case tcell.KeyCtrlQ:
		e.quit = true
	case tcell.KeyCtrlN:
		e.nextTab()
	case tcell.KeyCtrlP:
		e.prevTab()
	case tcell.KeyCtrlW:
		e.closeTab(e.activeTab)
	case tcell.KeyCtrlA:
		buf.SelectAll()
		e.clearScopeMarks()
	case tcell.KeyCtrlC:
		e.copySelection()
	case tcell.KeyEscape:
		buf.ClearExtraSelections()
		e.clearScopeMarks()
		e.statusBar.Message = ""
	case tcell.KeyLeft:
		buf.MoveLeft(extend)
		e.clearScopeMarks()
	case tcell.KeyRight:
		buf.MoveRight(extend)
		e.clearScopeMarks()
	case tcell.KeyUp:
		buf.MoveUp(extend)
		e.clearScopeMarks()
	case tcell.KeyDown:
		buf.MoveDown(extend)
		e.clearScopeMarks()
	case tcell.KeyHome:
		buf.MoveLineStart(extend)
		e.clearScopeMarks()
	case tcell.KeyEnd:
		buf.MoveLineEnd(extend)
		e.clearScopeMarks()
	case tcell.KeyPgUp:
		_, _, _, h := e.editorLayout()
		buf.MoveLines(-h, extend)
		e.clearScopeMarks()
	case tcell.KeyPgDn:
		_, _, _, h := e.editorLayout()
		buf.MoveLines(h, extend)
		e.clearScopeMarks()
	}
}

// expandScope grows every selection of the active buffer and reports the
// outcome in the status bar.
func (e *Editor) expandScope() {
	buf := e.activeBuffer()
	view := e.activeView()
	if buf == nil || view == nil {
		return
	}

	results := buf.ExpandScope()
	text := buf.Runes()

	// Marks follow every selection that moved, even when another failed.
	var marks []buffer.Cursor
	var moved []buffer.Expansion
	for _, r := range results {
		if r.Changed() {
			moved = append(moved, r)
			marks = append(marks, delimiterMarks(buf, text, r)...)
		}
	}
	if len(moved) > 0 {
		view.scopeMarks = marks
		view.lastScope = moved[0].Kind
	}

	for _, r := range results {
		if r.Err != nil {
			e.reportScopeError(r.Err)
			return
		}
	}

	if len(moved) == 0 {
		e.setTemporaryMessage("No enclosing scope")
		return
	}

	first := moved[0]
	rng := buf.RangeOf(first.After)
	msg := fmt.Sprintf("Scope: %s %s", first.Kind, rng)
	if n := len(moved) - 1; n > 0 {
		msg += fmt.Sprintf(" (+%d more)", n)
	}
	e.setTemporaryMessage(msg)
	e.log.Debug("expanded scope",
		zap.String("kind", first.Kind.String()),
		zap.Stringer("range", rng),
		zap.Int("selections", len(results)),
		zap.Int("moved", len(moved)))

	if e.cfg.CopyOnExpand {
		e.copyText(buf.SelectedText())
	}
}

func (e *Editor) reportScopeError(err error) {
	e.setTemporaryError(scope.Describe(err))
	e.log.Debug("scope expansion failed", zap.Error(err))
}

func (e *Editor) shrinkScope() {
	buf := e.activeBuffer()
	if buf == nil {
		return
	}
	if !buf.ShrinkScope() {
		e.setTemporaryMessage("Nothing to shrink")
		return
	}
	if buf.History.Len() == 0 {
		e.clearScopeMarks()
	}
}

// delimiterMarks finds the bracket pair around an expanded selection: just
// outside it after a scan, or its first and last rune after growing over
// adjacent brackets.
func delimiterMarks(buf *buffer.Buffer, text []rune, x buffer.Expansion) []buffer.Cursor {
	opener, closer, ok := x.Kind.Delimiters()
	if !ok {
		return nil
	}
	r := buf.RangeOf(x.After)
	switch {
	case r.Start > 0 && r.End < len(text) && text[r.Start-1] == opener && text[r.End] == closer:
		return []buffer.Cursor{buf.CursorAt(r.Start - 1), buf.CursorAt(r.End)}
	case r.Len() >= 2 && text[r.Start] == opener && text[r.End-1] == closer:
		return []buffer.Cursor{buf.CursorAt(r.Start), buf.CursorAt(r.End - 1)}
	}
	return nil
}

func (e *Editor) clearScopeMarks() {
	if view := e.activeView(); view != nil {
		view.scopeMarks = nil
		view.lastScope = scope.KindNone
	}
}

func (e *Editor) copySelection() {
	buf := e.activeBuffer()
	if buf == nil {
		return
	}
	texts := buf.SelectedText()
	if len(texts) == 0 {
		e.setTemporaryMessage("Nothing selected")
		return
	}
	if !e.copyText(texts) {
		e.setTemporaryError("Clipboard unavailable")
		return
	}
	e.setTemporaryMessage(fmt.Sprintf("Copied %d selection(s)", len(texts)))
}

// addSelectionBelow adds a collapsed selection on the line after the last
// selection, at the cursor column.
func (e *Editor) addSelectionBelow() {
	buf := e.activeBuffer()
	if buf == nil {
		return
	}
	sels := buf.Selections()
	last := sels[len(sels)-1].End
	if last.Line+1 >= len(buf.Lines) {
		return
	}
	buf.AddSelection(buffer.Collapsed(buffer.Cursor{Line: last.Line + 1, Col: buf.Cursor.Col}))
	e.clearScopeMarks()
}

func (e *Editor) handleMouse(ev *tcell.EventMouse) {
	mx, my := ev.Position()
	if my == 0 {
		e.tabBar.HandleMouse(ev)
		return
	}

	buf := e.activeBuffer()
	view := e.activeView()
	if buf == nil || view == nil {
		return
	}
	x, y, w, h := e.editorLayout()
	if mx < x || mx >= x+w || my < y || my >= y+h {
		e.mouseDown = false
		return
	}

	switch ev.Buttons() {
	case tcell.WheelUp:
		view.scrollY = max(0, view.scrollY-3)
		e.mouseScrolling = true
		return
	case tcell.WheelDown:
		view.scrollY = min(max(0, len(buf.Lines)-1), view.scrollY+3)
		e.mouseScrolling = true
		return
	case tcell.Button1:
		c := e.cursorAtScreen(buf, view, mx, my)
		extend := e.mouseDown || ev.Modifiers()&tcell.ModShift != 0
		buf.SetCursor(c, extend)
		e.clearScopeMarks()
		e.mouseDown = true
	case tcell.ButtonNone:
		e.mouseDown = false
	}
}

// cursorAtScreen maps a screen cell in the text area to a buffer position.
func (e *Editor) cursorAtScreen(buf *buffer.Buffer, view *EditorView, mx, my int) buffer.Cursor {
	x, y, _, _ := e.editorLayout()
	line := view.scrollY + (my - y)
	if line >= len(buf.Lines) {
		line = len(buf.Lines) - 1
	}
	if line < 0 {
		line = 0
	}
	displayCol := mx - x - e.gutterWidth(buf) + view.scrollX
	col := displayColToBufferCol(buf.Lines[line], displayCol, e.tabSize(buf))
	return buffer.Cursor{Line: line, Col: col}
}
