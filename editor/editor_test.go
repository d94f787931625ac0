package editor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vittorioromeo/scopex/buffer"
	"github.com/vittorioromeo/scopex/config"
	"github.com/vittorioromeo/scopex/scope"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestEditor(t *testing.T, contents ...string) *Editor {
	t.Helper()
	cfg := config.Default()
	cfg.WatchFiles = false
	return startEditor(t, cfg, zap.NewNop(), contents...)
}

func startEditor(t *testing.T, cfg *config.Config, log *zap.Logger, contents ...string) *Editor {
	t.Helper()
	dir := t.TempDir()
	var files []string
	for i, c := range contents {
		files = append(files, writeFile(t, dir, string(rune('a'+i))+".txt", c))
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	e := NewWithScreen(cfg, log, screen)
	require.NoError(t, e.Start(files))
	screen.SetSize(80, 24)
	t.Cleanup(e.Close)
	return e
}

func key(k tcell.Key) *tcell.EventKey {
	mod := tcell.ModNone
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		mod = tcell.ModCtrl
	}
	return tcell.NewEventKey(k, 0, mod)
}

func selectRange(e *Editor, start, end buffer.Cursor) {
	e.activeBuffer().SetSelections([]buffer.Selection{buffer.NewSelection(start, end)})
}

func TestExpandKeyGrowsSelection(t *testing.T) {
	e := newTestEditor(t, "a(bc)d")
	selectRange(e, buffer.Cursor{Col: 2}, buffer.Cursor{Col: 4})

	e.HandleEvent(key(tcell.KeyCtrlE))

	buf := e.activeBuffer()
	require.NotNil(t, buf.Selection)
	assert.Equal(t, buffer.Selection{Start: buffer.Cursor{Col: 1}, End: buffer.Cursor{Col: 5}}, *buf.Selection)
	assert.Equal(t, "Scope: () 1-5", e.statusBar.Message)
	assert.False(t, e.statusBar.IsError)
	assert.Equal(t, []buffer.Cursor{{Col: 1}, {Col: 4}}, e.activeView().scopeMarks)
}

func TestExpandReportsMismatch(t *testing.T) {
	e := newTestEditor(t, "(a]")
	selectRange(e, buffer.Cursor{Col: 1}, buffer.Cursor{Col: 2})

	e.HandleEvent(key(tcell.KeyCtrlE))

	assert.Equal(t, "Unbalanced brackets () and []", e.statusBar.Message)
	assert.True(t, e.statusBar.IsError)
	assert.Equal(t, buffer.Selection{Start: buffer.Cursor{Col: 1}, End: buffer.Cursor{Col: 2}}, *e.activeBuffer().Selection)
}

func TestExpandReportsUnbalanced(t *testing.T) {
	e := newTestEditor(t, "(]a)")
	selectRange(e, buffer.Cursor{Col: 2}, buffer.Cursor{Col: 3})

	e.HandleEvent(key(tcell.KeyCtrlE))

	assert.Equal(t, "Unbalanced brackets :(", e.statusBar.Message)
	assert.True(t, e.statusBar.IsError)
}

func TestShrinkKeyRestoresSelection(t *testing.T) {
	e := newTestEditor(t, "{x[y]z}")
	selectRange(e, buffer.Cursor{Col: 3}, buffer.Cursor{Col: 4})

	e.HandleEvent(key(tcell.KeyCtrlE))
	e.HandleEvent(key(tcell.KeyCtrlE))
	e.HandleEvent(key(tcell.KeyCtrlR))

	buf := e.activeBuffer()
	assert.Equal(t, "[y]", buf.SelectedText()[0])
	assert.Equal(t, 1, buf.History.Len())

	e.HandleEvent(key(tcell.KeyCtrlR))
	assert.Equal(t, "y", buf.SelectedText()[0])
	assert.Nil(t, e.activeView().scopeMarks)
}

func TestConfiguredExpandKey(t *testing.T) {
	cfg := config.Default()
	cfg.WatchFiles = false
	cfg.ExpandKey = "Alt+s"
	e := startEditor(t, cfg, zap.NewNop(), "a(bc)d")
	selectRange(e, buffer.Cursor{Col: 2}, buffer.Cursor{Col: 4})

	e.HandleEvent(key(tcell.KeyCtrlE))
	assert.Equal(t, "bc", e.activeBuffer().SelectedText()[0])

	e.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModAlt))
	assert.Equal(t, "(bc)", e.activeBuffer().SelectedText()[0])
}

func TestAddSelectionBelowExpandsEach(t *testing.T) {
	e := newTestEditor(t, "f(a)\ng(b)")
	buf := e.activeBuffer()
	buf.SetCursor(buffer.Cursor{Col: 2}, false)

	e.HandleEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModAlt))
	require.Len(t, buf.Selections(), 2)

	e.HandleEvent(key(tcell.KeyCtrlE))

	assert.Equal(t, []string{"a", "b"}, buf.SelectedText())
	assert.Equal(t, "Scope: () 2-3 (+1 more)", e.statusBar.Message)
	assert.Len(t, e.activeView().scopeMarks, 4)

	e.HandleEvent(key(tcell.KeyEscape))
	assert.False(t, buf.HasExtraSelections())
}

func TestExpandMarksMovedSelectionsDespiteFailure(t *testing.T) {
	e := newTestEditor(t, "(a]  {b}")
	buf := e.activeBuffer()
	buf.SetSelections([]buffer.Selection{
		buffer.NewSelection(buffer.Cursor{Col: 1}, buffer.Cursor{Col: 2}),
		buffer.Collapsed(buffer.Cursor{Col: 6}),
	})
	view := e.activeView()
	view.scopeMarks = []buffer.Cursor{{Col: 0}, {Col: 2}}

	e.HandleEvent(key(tcell.KeyCtrlE))

	assert.Equal(t, "Unbalanced brackets () and []", e.statusBar.Message)
	assert.Equal(t, []string{"a", "b"}, buf.SelectedText())
	assert.Equal(t, []buffer.Cursor{{Col: 5}, {Col: 7}}, view.scopeMarks)
	assert.Equal(t, scope.KindBrace, view.lastScope)
}

func TestExpandReportsMovedExtraSelection(t *testing.T) {
	e := newTestEditor(t, "ab\n(c)")
	buf := e.activeBuffer()
	buf.SetSelections([]buffer.Selection{
		buffer.Collapsed(buffer.Cursor{}),
		buffer.Collapsed(buffer.Cursor{Line: 1, Col: 1}),
	})

	e.HandleEvent(key(tcell.KeyCtrlE))

	assert.Equal(t, "Scope: () 4-5", e.statusBar.Message)
	assert.Equal(t, scope.KindParen, e.activeView().lastScope)
}

func TestCloseFile(t *testing.T) {
	e := newTestEditor(t, "first", "second")

	e.HandleEvent(key(tcell.KeyCtrlW))
	require.Len(t, e.buffers, 1)
	assert.Equal(t, "first", e.activeBuffer().Text())
	assert.Len(t, e.tabBar.Tabs, 1)
	assert.Len(t, e.views, 1)

	e.HandleEvent(key(tcell.KeyCtrlW))
	require.Len(t, e.buffers, 1)
	assert.Equal(t, "", e.activeBuffer().Path)
	assert.Equal(t, 0, e.tabBar.Active)
}

func TestNoEnclosingScope(t *testing.T) {
	e := newTestEditor(t, "")
	e.HandleEvent(key(tcell.KeyCtrlE))
	assert.Equal(t, "No enclosing scope", e.statusBar.Message)
	assert.False(t, e.statusBar.IsError)
}

func TestCopySelection(t *testing.T) {
	e := newTestEditor(t, "one\ntwo")
	var copied []string
	e.copyText = func(texts []string) bool {
		copied = texts
		return true
	}

	e.HandleEvent(key(tcell.KeyCtrlC))
	assert.Equal(t, "Nothing selected", e.statusBar.Message)

	e.HandleEvent(key(tcell.KeyCtrlA))
	e.HandleEvent(key(tcell.KeyCtrlC))
	assert.Equal(t, []string{"one\ntwo"}, copied)
	assert.Equal(t, "Copied 1 selection(s)", e.statusBar.Message)
}

func TestCopyOnExpand(t *testing.T) {
	cfg := config.Default()
	cfg.WatchFiles = false
	cfg.CopyOnExpand = true
	e := startEditor(t, cfg, zap.NewNop(), "x[yz]")
	var copied []string
	e.copyText = func(texts []string) bool {
		copied = texts
		return true
	}
	e.activeBuffer().SetCursor(buffer.Cursor{Col: 3}, false)

	e.HandleEvent(key(tcell.KeyCtrlE))
	assert.Equal(t, []string{"yz"}, copied)
}

func TestMessagesExpire(t *testing.T) {
	e := newTestEditor(t, "()")
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	e.setTemporaryError("Unbalanced brackets :(")
	now = now.Add(e.cfg.MessageTimeout() / 2)
	e.clearExpiredMessages()
	assert.NotEmpty(t, e.statusBar.Message)

	now = now.Add(e.cfg.MessageTimeout())
	e.clearExpiredMessages()
	assert.Empty(t, e.statusBar.Message)
	assert.False(t, e.statusBar.IsError)
}

func TestMouseDragSelects(t *testing.T) {
	e := newTestEditor(t, "hello world")
	e.render()
	gutter := e.gutterWidth(e.activeBuffer())

	e.HandleEvent(tcell.NewEventMouse(gutter, 1, tcell.Button1, tcell.ModNone))
	e.HandleEvent(tcell.NewEventMouse(gutter+5, 1, tcell.Button1, tcell.ModNone))
	e.HandleEvent(tcell.NewEventMouse(gutter+5, 1, tcell.ButtonNone, tcell.ModNone))

	assert.Equal(t, []string{"hello"}, e.activeBuffer().SelectedText())
	assert.False(t, e.mouseDown)
}

func TestRenderMarksScopeDelimiters(t *testing.T) {
	e := newTestEditor(t, "a(bc)d")
	selectRange(e, buffer.Cursor{Col: 2}, buffer.Cursor{Col: 4})
	e.HandleEvent(key(tcell.KeyCtrlE))
	e.render()

	theme := e.cfg.GetTheme()
	gutter := e.gutterWidth(e.activeBuffer())
	for _, col := range []int{1, 4} {
		ch, _, style, _ := e.screen.GetContent(gutter+col, 1)
		fg, _, attrs := style.Decompose()
		assert.Equal(t, []rune("a(bc)d")[col], ch)
		assert.Equal(t, theme.ScopeDelimiter, fg)
		assert.NotZero(t, attrs&tcell.AttrBold)
	}
	assert.Equal(t, "SCOPE", e.statusBar.Mode)
	assert.Equal(t, "()", e.statusBar.Scope)
}

func TestSwitchFiles(t *testing.T) {
	e := newTestEditor(t, "first", "second")
	assert.Equal(t, 1, e.activeTab)

	e.HandleEvent(key(tcell.KeyCtrlN))
	assert.Equal(t, 0, e.activeTab)
	assert.Equal(t, "first", e.activeBuffer().Text())

	e.HandleEvent(key(tcell.KeyCtrlP))
	assert.Equal(t, 1, e.activeTab)
	assert.Equal(t, e.activeTab, e.tabBar.Active)
}

func TestQuitKey(t *testing.T) {
	e := newTestEditor(t, "x")
	e.HandleEvent(key(tcell.KeyCtrlQ))
	assert.True(t, e.quit)
}

func TestFileWatcherReloads(t *testing.T) {
	leaks := goleak.IgnoreCurrent()

	dir := t.TempDir()
	path := writeFile(t, dir, "watched.txt", "(old)")

	core, logs := observer.New(zapcore.InfoLevel)
	cfg := config.Default()
	screen := tcell.NewSimulationScreen("UTF-8")
	e := NewWithScreen(cfg, zap.New(core), screen)
	events := make(chan tcell.Event, 16)
	e.post = func(ev tcell.Event) error {
		events <- ev
		return nil
	}
	require.NoError(t, e.Start([]string{path}))

	buf := e.activeBuffer()
	buf.SetCursor(buffer.Cursor{Col: 2}, false)
	e.HandleEvent(key(tcell.KeyCtrlE))
	require.Equal(t, 1, buf.History.Len())

	require.NoError(t, os.WriteFile(path, []byte("(new text)"), 0o644))
	waitForEvent(t, e, events, path, fsnotify.Write|fsnotify.Create)

	assert.Equal(t, "(new text)", buf.Text())
	assert.Equal(t, 0, buf.History.Len())
	assert.Equal(t, "↻ watched.txt (reloaded)", e.statusBar.Message)
	assert.NotZero(t, logs.FilterMessage("file reloaded").Len())

	require.NoError(t, os.Remove(path))
	waitForEvent(t, e, events, path, fsnotify.Remove)
	assert.True(t, e.tabBar.Tabs[0].Missing)
	assert.True(t, e.statusBar.IsError)

	e.Close()
	goleak.VerifyNone(t, leaks)
}

// waitForEvent handles file events for path until one carrying op arrives.
func waitForEvent(t *testing.T, e *Editor, events <-chan tcell.Event, path string, op fsnotify.Op) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			fw, ok := ev.(*FileWatchEvent)
			if !ok || fw.Path != path {
				continue
			}
			e.HandleEvent(fw)
			if fw.Op&op != 0 {
				return
			}
		case <-deadline:
			t.Fatalf("no file event for %s", path)
		}
	}
}

func TestDisplayColumns(t *testing.T) {
	assert.Equal(t, 4, bufferColToDisplayCol("a\tb", 2, 4))
	assert.Equal(t, 4, bufferColToDisplayCol("世界x", 2, 4))
	assert.Equal(t, 1, displayColToBufferCol("世界x", 3, 4))
	assert.Equal(t, 2, displayColToBufferCol("a\tb", 4, 4))
	assert.Equal(t, 3, displayColToBufferCol("a\tb", 40, 4))
}
