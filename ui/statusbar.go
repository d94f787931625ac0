package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/vittorioromeo/scopex/config"
)

type StatusBar struct {
	Mode       string // "VIEW" or "SCOPE" after an expansion
	Filename   string
	Line       int
	Col        int
	Language   string
	Encoding   string
	LineEnd    string
	Selections int    // number of selections, shown when more than one
	SelChars   int    // runes covered by the primary selection
	Scope      string // kind of the last expansion, e.g. "()" or "paragraph"
	Depth      int    // expansions that ShrinkScope can undo
	Message    string // temporary status message
	IsError    bool
	Theme      *config.ColorScheme
}

func NewStatusBar() *StatusBar {
	return &StatusBar{
		Mode:     "VIEW",
		Encoding: "UTF-8",
		LineEnd:  "LF",
	}
}

// RightText is the position summary drawn at the right edge.
func (s *StatusBar) RightText() string {
	right := ""
	if s.Scope != "" {
		right += fmt.Sprintf("Scope %s ×%d │ ", s.Scope, s.Depth)
	}
	if s.Selections > 1 {
		right += fmt.Sprintf("%d selections │ ", s.Selections)
	}
	if s.SelChars > 0 {
		right += fmt.Sprintf("Sel: %d │ ", s.SelChars)
	}
	lang := s.Language
	if lang == "" {
		lang = "Plain Text"
	}
	return right + fmt.Sprintf("Ln %d, Col %d │ %s │ %s │ %s ", s.Line+1, s.Col+1, lang, s.Encoding, s.LineEnd)
}

func (s *StatusBar) Render(screen tcell.Screen, x, y, width, height int) {
	theme := s.Theme
	if theme == nil {
		theme = config.Themes["monokai"]
	}

	style := tcell.StyleDefault.Background(theme.StatusBarBg).Foreground(theme.StatusBarFg)
	modeStyle := tcell.StyleDefault.Background(theme.StatusBarModeBg).Foreground(tcell.ColorWhite).Bold(true)
	msgStyle := style
	if s.IsError {
		msgStyle = style.Foreground(theme.ErrorFg).Bold(true)
	}

	for cx := x; cx < x+width; cx++ {
		screen.SetContent(cx, y, ' ', nil, style)
	}

	col := x
	put := func(text string, st tcell.Style) {
		for _, ch := range text {
			w := runewidth.RuneWidth(ch)
			if col+w > x+width {
				return
			}
			screen.SetContent(col, y, ch, nil, st)
			col += w
		}
	}

	put(" "+s.Mode+" ", modeStyle)
	put(" ", style)

	// A temporary message replaces everything else.
	if s.Message != "" {
		put(s.Message, msgStyle)
		return
	}

	fname := s.Filename
	if fname == "" {
		fname = "untitled"
	}
	put(fname, style)

	right := s.RightText()
	rightStart := x + width - runewidth.StringWidth(right)
	if rightStart > col+2 {
		col = rightStart
		put(right, style)
	}
}
