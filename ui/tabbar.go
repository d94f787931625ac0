package ui

import (
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/vittorioromeo/scopex/config"
)

type Tab struct {
	Title   string
	Path    string
	Missing bool // file was removed externally
}

type TabBar struct {
	Tabs      []Tab
	Active    int
	scrollOff int
	x, y, w   int // layout coords set on render

	Theme *config.ColorScheme

	OnSwitch func(index int)
}

func NewTabBar() *TabBar {
	return &TabBar{}
}

func (tb *TabBar) title(t Tab) string {
	if t.Missing {
		return "!" + t.Title
	}
	return t.Title
}

// tabWidth is the cell width of tab i: padded title plus separator.
func (tb *TabBar) tabWidth(i int) int {
	return 1 + runewidth.StringWidth(tb.title(tb.Tabs[i])) + 1 + 1
}

func (tb *TabBar) AddTab(path string) {
	for i, t := range tb.Tabs {
		if t.Path == path {
			tb.Active = i
			return
		}
	}
	title := filepath.Base(path)
	if title == "." || title == "" {
		title = "untitled"
	}
	tb.Tabs = append(tb.Tabs, Tab{Title: title, Path: path})
	tb.Active = len(tb.Tabs) - 1
}

func (tb *TabBar) RemoveTab(index int) {
	if index < 0 || index >= len(tb.Tabs) {
		return
	}
	tb.Tabs = append(tb.Tabs[:index], tb.Tabs[index+1:]...)
	if tb.Active >= len(tb.Tabs) {
		tb.Active = len(tb.Tabs) - 1
	}
	if tb.Active < 0 {
		tb.Active = 0
	}
	tb.clampScroll()
}

func (tb *TabBar) SetMissing(index int, missing bool) {
	if index >= 0 && index < len(tb.Tabs) {
		tb.Tabs[index].Missing = missing
	}
}

func (tb *TabBar) clampScroll() {
	if tb.scrollOff > len(tb.Tabs)-1 {
		tb.scrollOff = len(tb.Tabs) - 1
	}
	if tb.scrollOff < 0 {
		tb.scrollOff = 0
	}
}

// ensureActiveVisible scrolls so the active tab fits in width.
func (tb *TabBar) ensureActiveVisible(width int) {
	tb.clampScroll()
	if len(tb.Tabs) == 0 || width <= 0 {
		return
	}
	if tb.Active < tb.scrollOff {
		tb.scrollOff = tb.Active
	}
	for tb.scrollOff < tb.Active {
		used := 0
		for i := tb.scrollOff; i <= tb.Active; i++ {
			used += tb.tabWidth(i)
		}
		if used <= width {
			break
		}
		tb.scrollOff++
	}
}

func (tb *TabBar) Render(screen tcell.Screen, x, y, width, height int) {
	tb.x, tb.y, tb.w = x, y, width
	tb.ensureActiveVisible(width)

	theme := tb.Theme
	if theme == nil {
		theme = config.Themes["monokai"]
	}
	barStyle := tcell.StyleDefault.Background(theme.Background).Foreground(theme.LineNumber)
	activeStyle := tcell.StyleDefault.Background(theme.StatusBarBg).Foreground(theme.StatusBarFg).Bold(true)

	for cx := x; cx < x+width; cx++ {
		screen.SetContent(cx, y, ' ', nil, barStyle)
	}

	col := x
	for i := tb.scrollOff; i < len(tb.Tabs) && col < x+width; i++ {
		style := barStyle
		if i == tb.Active {
			style = activeStyle
		}
		for _, ch := range " " + tb.title(tb.Tabs[i]) + " " {
			w := runewidth.RuneWidth(ch)
			if col+w > x+width {
				break
			}
			screen.SetContent(col, y, ch, nil, style)
			col += w
		}
		if col < x+width {
			screen.SetContent(col, y, '│', nil, barStyle)
			col++
		}
	}
}

// HandleMouse switches tabs on click and scrolls on wheel.
func (tb *TabBar) HandleMouse(ev *tcell.EventMouse) bool {
	mx, my := ev.Position()
	if my != tb.y || mx < tb.x || mx >= tb.x+tb.w {
		return false
	}

	switch ev.Buttons() {
	case tcell.WheelUp, tcell.WheelLeft:
		tb.scrollOff--
		tb.clampScroll()
		return true
	case tcell.WheelDown, tcell.WheelRight:
		tb.scrollOff++
		tb.clampScroll()
		return true
	case tcell.Button1:
		col := tb.x
		for i := tb.scrollOff; i < len(tb.Tabs); i++ {
			w := tb.tabWidth(i)
			if mx >= col && mx < col+w {
				if tb.OnSwitch != nil {
					tb.OnSwitch(i)
				}
				return true
			}
			col += w
		}
	}
	return true
}
