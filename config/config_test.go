package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadUsesEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"nord","tab_size":2}`), 0o644))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "nord", cfg.Theme)
	assert.Equal(t, 2, cfg.TabSize)
	assert.Equal(t, "Ctrl+E", cfg.ExpandKey, "unset fields keep defaults")
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"tab_size":0}`), 0o644))
	_, err := Load(bad)
	assert.ErrorContains(t, err, "tab_size")

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0o644))
	_, err = Load(broken)
	assert.Error(t, err)

	key := filepath.Join(dir, "key.json")
	require.NoError(t, os.WriteFile(key, []byte(`{"expand_key":"Hyper+E"}`), 0o644))
	_, err = Load(key)
	assert.ErrorContains(t, err, "expand_key")

	level := filepath.Join(dir, "level.json")
	require.NoError(t, os.WriteFile(level, []byte(`{"log_level":"loud"}`), 0o644))
	_, err = Load(level)
	assert.ErrorContains(t, err, level+": log_level")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	cfg := Default()
	cfg.Theme = "gruvbox"
	cfg.CopyOnExpand = true
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestGetThemeFallsBack(t *testing.T) {
	cfg := Default()
	cfg.Theme = "does-not-exist"
	assert.Equal(t, Themes["monokai"], cfg.GetTheme())
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("Ctrl+E")
	require.NoError(t, err)
	assert.Equal(t, tcell.KeyCtrlE, k.Key)

	k, err = ParseKey("Alt+s")
	require.NoError(t, err)
	assert.Equal(t, KeyBinding{Key: tcell.KeyRune, Rune: 's', Mod: tcell.ModAlt}, k)

	k, err = ParseKey("F5")
	require.NoError(t, err)
	assert.Equal(t, tcell.KeyF5, k.Key)

	for _, bad := range []string{"", "Ctrl+", "Super+X", "Ctrl+1", "NoSuchKey"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestKeyBindingMatches(t *testing.T) {
	ctrlE := MustParseKey("Ctrl+E")
	assert.True(t, ctrlE.Matches(tcell.NewEventKey(tcell.KeyCtrlE, 0, tcell.ModCtrl)))
	assert.True(t, ctrlE.Matches(tcell.NewEventKey(tcell.KeyCtrlE, 0, tcell.ModNone)))
	assert.False(t, ctrlE.Matches(tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModCtrl)))

	altS := MustParseKey("Alt+s")
	assert.True(t, altS.Matches(tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModAlt)))
	assert.False(t, altS.Matches(tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone)))
}

func TestNewLoggerLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "scopex.log")
	cfg := Default()
	cfg.LogLevel = "warn"

	logger, err := cfg.NewLogger(false, path)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	logger.Warn("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)

	verbose, err := cfg.NewLogger(true, path)
	require.NoError(t, err)
	assert.True(t, verbose.Core().Enabled(zapcore.DebugLevel))

	cfg.LogLevel = "loud"
	_, err = cfg.NewLogger(false, path)
	assert.Error(t, err)
}

func TestTabWidthFromEditorConfig(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".editorconfig"), []byte(
		"root = true\n\n[*]\nindent_size = 2\n\n[*.{go,mod}]\ntab_width = 8\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, ".editorconfig"), []byte(
		"[*.go]\ntab_width = 3\n"), 0o644))

	assert.Equal(t, 3, TabWidth(filepath.Join(sub, "main.go"), 4))
	assert.Equal(t, 8, TabWidth(filepath.Join(root, "go.mod"), 4))
	assert.Equal(t, 2, TabWidth(filepath.Join(root, "notes.txt"), 4))
}

func TestTabWidthFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".editorconfig"), []byte("root = true\n"), 0o644))
	assert.Equal(t, 4, TabWidth(filepath.Join(dir, "a.txt"), 4))
}
