package editor

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/vittorioromeo/scopex/buffer"
	"github.com/vittorioromeo/scopex/config"
)

// bufferColToDisplayCol converts a buffer column (rune index) to display column (with tabs expanded and wide chars)
func bufferColToDisplayCol(line string, bufCol int, tabSize int) int {
	displayCol := 0
	for i, r := range []rune(line) {
		if i >= bufCol {
			break
		}
		displayCol += runeCells(r, displayCol, tabSize)
	}
	return displayCol
}

// displayColToBufferCol converts a display column (visual position) to buffer column (rune index)
func displayColToBufferCol(line string, targetDisplayCol int, tabSize int) int {
	if targetDisplayCol <= 0 {
		return 0
	}

	displayCol := 0
	runes := []rune(line)
	for i, r := range runes {
		next := displayCol + runeCells(r, displayCol, tabSize)
		// A wide rune or tab spanning the target maps to its own column.
		if next > targetDisplayCol {
			return i
		}
		displayCol = next
	}
	return len(runes)
}

func runeCells(r rune, displayCol, tabSize int) int {
	if r == '\t' {
		return tabSize - (displayCol % tabSize)
	}
	if w := runewidth.RuneWidth(r); w > 0 {
		return w
	}
	return 1
}

func (e *Editor) render() {
	theme := e.cfg.GetTheme()
	defaultStyle := tcell.StyleDefault.Background(theme.Background).Foreground(theme.Foreground)
	e.screen.SetStyle(defaultStyle)
	e.screen.Clear()

	screenW, screenH := e.screen.Size()

	e.updateStatus()
	e.tabBar.Render(e.screen, 0, 0, screenW, 1)

	ex, ey, ew, eh := e.editorLayout()
	e.renderEditor(ex, ey, ew, eh, theme)

	e.statusBar.Render(e.screen, 0, screenH-1, screenW, 1)
	e.screen.Show()
}

// editorLayout is the text area between the tab bar and the status bar.
func (e *Editor) editorLayout() (x, y, w, h int) {
	if e.screen == nil {
		return 0, 1, 80, 22
	}
	screenW, screenH := e.screen.Size()
	h = screenH - 2
	if h < 1 {
		h = 1
	}
	return 0, 1, screenW, h
}

func (e *Editor) gutterWidth(buf *buffer.Buffer) int {
	digits := 1
	for lines := len(buf.Lines); lines >= 10; lines /= 10 {
		digits++
	}
	return digits + 2 // digits + padding on both sides
}

func (e *Editor) tabSize(buf *buffer.Buffer) int {
	if view := e.views[buf]; view != nil && view.tabSize > 0 {
		return view.tabSize
	}
	return e.cfg.TabSize
}

func (e *Editor) renderEditor(x, y, w, h int, theme *config.ColorScheme) {
	buf := e.activeBuffer()
	view := e.activeView()
	if buf == nil || view == nil {
		return
	}

	gutterW := e.gutterWidth(buf)
	textW := w - gutterW
	if textW < 1 {
		textW = 1
	}
	tabSize := e.tabSize(buf)

	if e.mouseScrolling {
		e.mouseScrolling = false
	} else {
		e.ensureCursorVisible(view, buf, textW, h, tabSize)
	}

	base := tcell.StyleDefault.Background(theme.Background).Foreground(theme.Foreground)
	gutterStyle := base.Foreground(theme.LineNumber)
	activeGutterStyle := base.Foreground(theme.LineNumberActive)
	markStyle := tcell.StyleDefault.Foreground(theme.ScopeDelimiter).Bold(true).Underline(true)

	var styled [][]tcell.Style
	if !buf.ReadOnly {
		styled = e.runeStyles(buf)
	}

	sels := buf.Selections()
	marks := make(map[buffer.Cursor]bool, len(view.scopeMarks))
	for _, m := range view.scopeMarks {
		marks[m] = true
	}

	for row := 0; row < h; row++ {
		lineIdx := view.scrollY + row
		if lineIdx >= len(buf.Lines) {
			break
		}

		style := gutterStyle
		if lineIdx == buf.Cursor.Line {
			style = activeGutterStyle
		}
		num := fmt.Sprintf("%*d ", gutterW-1, lineIdx+1)
		for i, ch := range num {
			e.screen.SetContent(x+i, y+row, ch, nil, style)
		}

		runes := []rune(buf.Lines[lineIdx])
		displayCol := 0
		for col := 0; col <= len(runes); col++ {
			pos := buffer.Cursor{Line: lineIdx, Col: col}
			selected := isSelected(sels, pos)

			var ch rune
			var cells int
			st := base
			if col == len(runes) {
				// Line break: only drawn when selected.
				if !selected || lineIdx == len(buf.Lines)-1 {
					break
				}
				ch, cells = ' ', 1
			} else {
				ch = runes[col]
				cells = runeCells(ch, displayCol, tabSize)
				if styled != nil && lineIdx < len(styled) && col < len(styled[lineIdx]) {
					st = styled[lineIdx][col]
				}
				if ch == '\t' || ch < ' ' {
					ch = ' '
				}
			}
			if selected {
				st = st.Background(theme.Selection)
			}
			if marks[pos] {
				st = markStyle.Background(theme.Background)
				if selected {
					st = st.Background(theme.Selection)
				}
			}

			for c := 0; c < cells; c++ {
				sx := displayCol + c - view.scrollX
				if sx < 0 || sx >= textW {
					continue
				}
				drawn := ch
				if c > 0 {
					drawn = ' '
					if runewidth.RuneWidth(ch) > 1 {
						continue
					}
				}
				e.screen.SetContent(x+gutterW+sx, y+row, drawn, nil, st)
			}
			displayCol += cells
		}
	}

	cursorDisplay := bufferColToDisplayCol(buf.Lines[buf.Cursor.Line], buf.Cursor.Col, tabSize) - view.scrollX
	cursorRow := buf.Cursor.Line - view.scrollY
	if cursorDisplay >= 0 && cursorDisplay < textW && cursorRow >= 0 && cursorRow < h {
		e.screen.ShowCursor(x+gutterW+cursorDisplay, y+cursorRow)
	} else {
		e.screen.HideCursor()
	}
}

// runeStyles flattens highlighted tokens into one style per rune.
func (e *Editor) runeStyles(buf *buffer.Buffer) [][]tcell.Style {
	lines := e.highlight.Lines(buf.Text(), buf.Language)
	out := make([][]tcell.Style, len(lines))
	for i, l := range lines {
		for _, tok := range l.Tokens {
			for range tok.Text {
				out[i] = append(out[i], tok.Style)
			}
		}
	}
	return out
}

func isSelected(sels []buffer.Selection, pos buffer.Cursor) bool {
	for _, s := range sels {
		if !pos.Before(s.Start) && pos.Before(s.End) {
			return true
		}
	}
	return false
}

func (e *Editor) ensureCursorVisible(view *EditorView, buf *buffer.Buffer, textW, textH, tabSize int) {
	const scrollMargin = 3 // keep cursor this many lines from edge

	margin := scrollMargin
	if margin > textH/2 {
		margin = textH / 2
	}

	if buf.Cursor.Line-margin < view.scrollY {
		view.scrollY = max(0, buf.Cursor.Line-margin)
	}
	if buf.Cursor.Line+margin >= view.scrollY+textH {
		view.scrollY = buf.Cursor.Line + margin - textH + 1
	}
	if maxScroll := max(0, len(buf.Lines)-1); view.scrollY > maxScroll {
		view.scrollY = maxScroll
	}
	if buf.Cursor.Line < view.scrollY {
		view.scrollY = buf.Cursor.Line
	}

	// Horizontal, scrollX is in display columns
	cursorDisplayCol := bufferColToDisplayCol(buf.Lines[buf.Cursor.Line], buf.Cursor.Col, tabSize)
	if cursorDisplayCol < view.scrollX {
		view.scrollX = cursorDisplayCol
	}
	rightLimit := (textW * 7) / 10
	if rightLimit < 1 {
		rightLimit = 1
	}
	if rightLimit >= textW {
		rightLimit = textW - 1
	}
	if cursorDisplayCol > view.scrollX+rightLimit {
		view.scrollX = cursorDisplayCol - rightLimit
	}
}
