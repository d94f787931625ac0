package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/vittorioromeo/scopex/buffer"
	"github.com/vittorioromeo/scopex/clipboardx"
	"github.com/vittorioromeo/scopex/config"
	"github.com/vittorioromeo/scopex/highlight"
	"github.com/vittorioromeo/scopex/scope"
	"github.com/vittorioromeo/scopex/ui"
)

const watchDebounce = 100 * time.Millisecond

type Editor struct {
	screen    tcell.Screen
	cfg       *config.Config
	log       *zap.Logger
	buffers   []*buffer.Buffer
	activeTab int

	tabBar    *ui.TabBar
	statusBar *ui.StatusBar
	highlight *highlight.Highlighter

	expandKey config.KeyBinding
	shrinkKey config.KeyBinding

	quit   bool
	closed bool

	// Editor view state per buffer
	views map[*buffer.Buffer]*EditorView

	// Mouse drag tracking
	mouseDown bool

	// Track whether scroll was caused by mouse wheel (skip ensureCursorVisible)
	mouseScrolling bool

	// File watching
	fileWatcher *fsnotify.Watcher
	watchedDirs map[string]bool
	watchWG     sync.WaitGroup
	post        func(tcell.Event) error

	copyText func([]string) bool

	// Temporary status messages
	statusMessageTime time.Time
	now               func() time.Time
}

type EditorView struct {
	scrollY int
	scrollX int
	tabSize int // from .editorconfig, 0 for the configured default

	// scopeMarks are the delimiters of the last bracket expansion.
	scopeMarks []buffer.Cursor
	lastScope  scope.Kind
}

// FileWatchEvent carries file system change notifications to the main event loop.
type FileWatchEvent struct {
	tcell.EventTime
	Path string
	Op   fsnotify.Op
}

func New(cfg *config.Config, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Editor{
		cfg:         cfg,
		log:         log,
		statusBar:   ui.NewStatusBar(),
		tabBar:      ui.NewTabBar(),
		views:       make(map[*buffer.Buffer]*EditorView),
		watchedDirs: make(map[string]bool),
		now:         time.Now,
		copyText:    clipboardx.WriteSelections,
	}
	theme := cfg.GetTheme()
	e.statusBar.Theme = theme
	e.tabBar.Theme = theme
	e.tabBar.OnSwitch = e.switchTab
	e.highlight = highlight.New(cfg.Theme, tcell.StyleDefault.Background(theme.Background).Foreground(theme.Foreground))

	var err error
	if e.expandKey, err = config.ParseKey(cfg.ExpandKey); err != nil {
		log.Warn("invalid expand key, using default", zap.String("key", cfg.ExpandKey), zap.Error(err))
		e.expandKey = config.MustParseKey(config.Default().ExpandKey)
	}
	if e.shrinkKey, err = config.ParseKey(cfg.ShrinkKey); err != nil {
		log.Warn("invalid shrink key, using default", zap.String("key", cfg.ShrinkKey), zap.Error(err))
		e.shrinkKey = config.MustParseKey(config.Default().ShrinkKey)
	}
	return e
}

// NewWithScreen builds an editor drawing on screen instead of the terminal.
func NewWithScreen(cfg *config.Config, log *zap.Logger, screen tcell.Screen) *Editor {
	e := New(cfg, log)
	e.screen = screen
	return e
}

// Run opens files, shows them until the user quits, then releases the
// screen and the file watcher.
func (e *Editor) Run(files []string) error {
	if err := e.Start(files); err != nil {
		return err
	}
	defer e.Close()

	for !e.quit {
		e.clearExpiredMessages()
		e.render()
		e.HandleEvent(e.screen.PollEvent())
	}
	return nil
}

// Start initializes the screen, opens files and starts watching them.
func (e *Editor) Start(files []string) error {
	if e.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("create screen: %w", err)
		}
		e.screen = screen
	}
	if err := e.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	e.screen.EnableMouse()
	e.screen.SetStyle(tcell.StyleDefault)
	e.screen.Clear()
	if e.post == nil {
		e.post = e.screen.PostEvent
	}

	if e.cfg.WatchFiles {
		e.setupFileWatcher()
	}

	for _, f := range files {
		absPath, err := filepath.Abs(f)
		if err != nil {
			absPath = f
		}
		e.openFile(absPath)
	}
	if len(e.buffers) == 0 {
		e.openEmptyBuffer()
	}
	return nil
}

// Close stops the file watcher and restores the terminal.
func (e *Editor) Close() {
	if e.fileWatcher != nil {
		e.fileWatcher.Close()
		e.watchWG.Wait()
		e.fileWatcher = nil
	}
	if e.screen != nil && !e.closed {
		e.screen.Clear()
		e.screen.Fini()
	}
	e.closed = true
	e.log.Debug("editor closed")
}

// HandleEvent dispatches one event from the screen.
func (e *Editor) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		e.screen.Sync()
	case *tcell.EventKey:
		e.handleKey(ev)
	case *tcell.EventMouse:
		e.handleMouse(ev)
	case *FileWatchEvent:
		e.handleFileWatchEvent(ev)
	}
}

func (e *Editor) openFile(path string) {
	for i, buf := range e.buffers {
		if buf.Path == path {
			e.switchTab(i)
			return
		}
	}

	buf, err := buffer.NewBufferFromFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			e.log.Warn("open failed", zap.String("path", path), zap.Error(err))
			e.setTemporaryError(fmt.Sprintf("Cannot open %s: %v", filepath.Base(path), err))
			return
		}
		// A missing file opens empty, like a new document.
		buf = buffer.NewBuffer()
		buf.Path = path
	}
	buf.Language = highlight.DetectLanguage(path)
	e.log.Info("opened file", zap.String("path", path), zap.Int("lines", len(buf.Lines)), zap.Bool("binary", buf.ReadOnly))

	e.buffers = append(e.buffers, buf)
	e.views[buf] = &EditorView{tabSize: config.TabWidth(path, e.cfg.TabSize)}
	e.tabBar.AddTab(path)
	e.activeTab = len(e.buffers) - 1
	e.watchFile(path)
	if buf.ReadOnly {
		e.setTemporaryMessage(filepath.Base(path) + " looks binary")
	}
}

func (e *Editor) openEmptyBuffer() {
	buf := buffer.NewBuffer()
	e.buffers = append(e.buffers, buf)
	e.views[buf] = &EditorView{}
	e.tabBar.AddTab("")
	e.activeTab = len(e.buffers) - 1
}

func (e *Editor) switchTab(idx int) {
	if idx < 0 || idx >= len(e.buffers) {
		return
	}
	e.activeTab = idx
	e.tabBar.Active = idx
}

// closeTab drops a file from the viewer. Closing the last one leaves an
// empty buffer.
func (e *Editor) closeTab(idx int) {
	if idx < 0 || idx >= len(e.buffers) {
		return
	}
	buf := e.buffers[idx]
	delete(e.views, buf)
	e.buffers = append(e.buffers[:idx], e.buffers[idx+1:]...)
	e.tabBar.RemoveTab(idx)
	e.log.Info("closed file", zap.String("path", buf.Path))

	if len(e.buffers) == 0 {
		e.openEmptyBuffer()
		return
	}
	e.switchTab(min(idx, len(e.buffers)-1))
}

func (e *Editor) nextTab() {
	if len(e.buffers) > 1 {
		e.switchTab((e.activeTab + 1) % len(e.buffers))
	}
}

func (e *Editor) prevTab() {
	if len(e.buffers) > 1 {
		e.switchTab((e.activeTab - 1 + len(e.buffers)) % len(e.buffers))
	}
}

func (e *Editor) activeBuffer() *buffer.Buffer {
	if e.activeTab < 0 || e.activeTab >= len(e.buffers) {
		return nil
	}
	return e.buffers[e.activeTab]
}

func (e *Editor) activeView() *EditorView {
	buf := e.activeBuffer()
	if buf == nil {
		return nil
	}
	return e.views[buf]
}

func (e *Editor) updateStatus() {
	buf := e.activeBuffer()
	sb := e.statusBar
	if buf == nil {
		return
	}
	sb.Filename = buf.Path
	if sb.Filename == "" {
		sb.Filename = "untitled"
	} else if rel, err := filepath.Rel(mustGetwd(), buf.Path); err == nil && len(rel) < len(buf.Path) {
		sb.Filename = rel
	}
	sb.Line = buf.Cursor.Line
	sb.Col = buf.Cursor.Col
	sb.Language = buf.Language
	sb.Encoding = buf.Encoding
	sb.LineEnd = buf.LineEnding
	sels := buf.Selections()
	sb.Selections = len(sels)
	sb.SelChars = 0
	if !sels[0].Empty() {
		r := buf.RangeOf(sels[0])
		sb.SelChars = r.Len()
	}

	sb.Mode = "VIEW"
	sb.Scope = ""
	sb.Depth = buf.History.Len()
	if view := e.views[buf]; view != nil && sb.Depth > 0 && view.lastScope != scope.KindNone {
		sb.Mode = "SCOPE"
		sb.Scope = view.lastScope.String()
	}
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// setTemporaryMessage sets a message that clears after the configured timeout.
func (e *Editor) setTemporaryMessage(msg string) {
	e.statusBar.Message = msg
	e.statusBar.IsError = false
	e.statusMessageTime = e.now()
}

func (e *Editor) setTemporaryError(msg string) {
	e.statusBar.Message = msg
	e.statusBar.IsError = true
	e.statusMessageTime = e.now()
}

func (e *Editor) clearExpiredMessages() {
	if !e.statusMessageTime.IsZero() && e.now().Sub(e.statusMessageTime) > e.cfg.MessageTimeout() {
		e.statusBar.Message = ""
		e.statusBar.IsError = false
		e.statusMessageTime = time.Time{}
	}
}

// File watching

func (e *Editor) setupFileWatcher() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Graceful degradation - continue without watching
		e.log.Warn("file watching disabled", zap.Error(err))
		return
	}
	e.fileWatcher = watcher

	e.watchWG.Add(1)
	go func() {
		defer e.watchWG.Done()

		// Debounce: collect events per path and send after a quiet period
		debounceTimer := time.NewTimer(watchDebounce)
		debounceTimer.Stop()
		defer debounceTimer.Stop()
		pending := make(map[string]fsnotify.Op)

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				pending[event.Name] |= event.Op
				debounceTimer.Reset(watchDebounce)

			case <-debounceTimer.C:
				for path, op := range pending {
					ev := &FileWatchEvent{Path: path, Op: op}
					ev.SetEventNow()
					if err := e.post(ev); err != nil {
						e.log.Debug("dropped file event", zap.String("path", path), zap.Error(err))
					}
				}
				pending = make(map[string]fsnotify.Op)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				e.log.Warn("file watcher error", zap.Error(err))
			}
		}
	}()
}

// watchFile watches the directory holding path so that replacing the file
// (write to temp, then rename) is seen as well.
func (e *Editor) watchFile(path string) {
	if e.fileWatcher == nil || path == "" {
		return
	}
	dir := filepath.Dir(path)
	if e.watchedDirs[dir] {
		return
	}
	if err := e.fileWatcher.Add(dir); err != nil {
		e.log.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
		return
	}
	e.watchedDirs[dir] = true
}

func (e *Editor) handleFileWatchEvent(ev *FileWatchEvent) {
	idx := -1
	for i, buf := range e.buffers {
		if buf.Path == ev.Path {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	buf := e.buffers[idx]
	name := filepath.Base(ev.Path)

	// The debounced op may combine remove and create, so trust the disk.
	if _, err := os.Stat(ev.Path); err != nil {
		e.tabBar.SetMissing(idx, true)
		e.setTemporaryError("Warning: " + name + " was deleted externally")
		e.log.Info("file removed", zap.String("path", ev.Path))
		return
	}

	fresh, err := buffer.NewBufferFromFile(ev.Path)
	if err != nil {
		e.setTemporaryError("Reload failed: " + err.Error())
		e.log.Warn("reload failed", zap.String("path", ev.Path), zap.Error(err))
		return
	}
	buf.Replace(fresh)
	if view := e.views[buf]; view != nil {
		view.scopeMarks = nil
		view.lastScope = scope.KindNone
	}
	e.tabBar.SetMissing(idx, false)
	e.highlight.Reset()
	e.setTemporaryMessage("↻ " + name + " (reloaded)")
	e.log.Info("file reloaded", zap.String("path", ev.Path), zap.Stringer("op", ev.Op))
}
