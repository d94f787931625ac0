package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap/zapcore"
)

// EnvConfigPath overrides the settings file location.
const EnvConfigPath = "SCOPEX_CONFIG"

type Config struct {
	TabSize          int    `json:"tab_size" yaml:"tab_size"`
	Theme            string `json:"theme" yaml:"theme"`
	ExpandKey        string `json:"expand_key" yaml:"expand_key"`
	ShrinkKey        string `json:"shrink_key" yaml:"shrink_key"`
	CopyOnExpand     bool   `json:"copy_on_expand" yaml:"copy_on_expand"`
	MessageTimeoutMs int    `json:"message_timeout_ms" yaml:"message_timeout_ms"`
	WatchFiles       bool   `json:"watch_files" yaml:"watch_files"`
	LogFile          string `json:"log_file" yaml:"log_file"`
	LogLevel         string `json:"log_level" yaml:"log_level"`
}

type ColorScheme struct {
	Name             string
	Background       tcell.Color
	Foreground       tcell.Color
	Selection        tcell.Color
	ScopeDelimiter   tcell.Color
	LineNumber       tcell.Color
	LineNumberActive tcell.Color
	StatusBarBg      tcell.Color
	StatusBarFg      tcell.Color
	StatusBarModeBg  tcell.Color
	ErrorFg          tcell.Color
}

var Themes = map[string]*ColorScheme{
	"dark": {
		Name:             "Dark",
		Background:       tcell.ColorBlack,
		Foreground:       tcell.ColorWhite,
		Selection:        tcell.ColorDarkBlue,
		ScopeDelimiter:   tcell.ColorYellow,
		LineNumber:       tcell.ColorGray,
		LineNumberActive: tcell.ColorWhite,
		StatusBarBg:      tcell.ColorDarkBlue,
		StatusBarFg:      tcell.ColorWhite,
		StatusBarModeBg:  tcell.ColorBlue,
		ErrorFg:          tcell.ColorRed,
	},
	"light": {
		Name:             "Light",
		Background:       tcell.ColorWhite,
		Foreground:       tcell.ColorBlack,
		Selection:        tcell.ColorLightBlue,
		ScopeDelimiter:   tcell.ColorDarkRed,
		LineNumber:       tcell.ColorGray,
		LineNumberActive: tcell.ColorBlack,
		StatusBarBg:      tcell.ColorLightBlue,
		StatusBarFg:      tcell.ColorBlack,
		StatusBarModeBg:  tcell.ColorBlue,
		ErrorFg:          tcell.ColorDarkRed,
	},
	"monokai": {
		Name:             "Monokai",
		Background:       tcell.NewRGBColor(39, 40, 34),
		Foreground:       tcell.NewRGBColor(248, 248, 242),
		Selection:        tcell.NewRGBColor(73, 72, 62),
		ScopeDelimiter:   tcell.NewRGBColor(230, 219, 116),
		LineNumber:       tcell.NewRGBColor(144, 144, 128),
		LineNumberActive: tcell.NewRGBColor(248, 248, 242),
		StatusBarBg:      tcell.NewRGBColor(73, 72, 62),
		StatusBarFg:      tcell.NewRGBColor(248, 248, 242),
		StatusBarModeBg:  tcell.NewRGBColor(102, 217, 239),
		ErrorFg:          tcell.NewRGBColor(249, 38, 114),
	},
	"nord": {
		Name:             "Nord",
		Background:       tcell.NewRGBColor(46, 52, 64),
		Foreground:       tcell.NewRGBColor(236, 239, 244),
		Selection:        tcell.NewRGBColor(67, 76, 94),
		ScopeDelimiter:   tcell.NewRGBColor(235, 203, 139),
		LineNumber:       tcell.NewRGBColor(76, 86, 106),
		LineNumberActive: tcell.NewRGBColor(236, 239, 244),
		StatusBarBg:      tcell.NewRGBColor(67, 76, 94),
		StatusBarFg:      tcell.NewRGBColor(236, 239, 244),
		StatusBarModeBg:  tcell.NewRGBColor(136, 192, 208),
		ErrorFg:          tcell.NewRGBColor(191, 97, 106),
	},
	"gruvbox": {
		Name:             "Gruvbox Dark",
		Background:       tcell.NewRGBColor(40, 40, 40),
		Foreground:       tcell.NewRGBColor(235, 219, 178),
		Selection:        tcell.NewRGBColor(60, 56, 54),
		ScopeDelimiter:   tcell.NewRGBColor(250, 189, 47),
		LineNumber:       tcell.NewRGBColor(124, 111, 100),
		LineNumberActive: tcell.NewRGBColor(235, 219, 178),
		StatusBarBg:      tcell.NewRGBColor(60, 56, 54),
		StatusBarFg:      tcell.NewRGBColor(235, 219, 178),
		StatusBarModeBg:  tcell.NewRGBColor(131, 165, 152),
		ErrorFg:          tcell.NewRGBColor(251, 73, 52),
	},
}

const defaultTheme = "monokai"

func Default() *Config {
	return &Config{
		TabSize:          4,
		Theme:            defaultTheme,
		ExpandKey:        "Ctrl+E",
		ShrinkKey:        "Ctrl+R",
		MessageTimeoutMs: 5000,
		WatchFiles:       true,
		LogFile:          defaultLogFile(),
		LogLevel:         "info",
	}
}

func (c *Config) GetTheme() *ColorScheme {
	theme, ok := Themes[c.Theme]
	if !ok {
		return Themes[defaultTheme]
	}
	return theme
}

func (c *Config) MessageTimeout() time.Duration {
	if c.MessageTimeoutMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.MessageTimeoutMs) * time.Millisecond
}

// Validate rejects settings the viewer cannot work with.
func (c *Config) Validate() error {
	if c.TabSize < 1 || c.TabSize > 16 {
		return fmt.Errorf("tab_size must be between 1 and 16, got %d", c.TabSize)
	}
	if _, err := ParseKey(c.ExpandKey); err != nil {
		return fmt.Errorf("expand_key: %w", err)
	}
	if _, err := ParseKey(c.ShrinkKey); err != nil {
		return fmt.Errorf("shrink_key: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// ConfigPath returns the settings file path: $SCOPEX_CONFIG when set,
// otherwise ~/.config/scopex/settings.json.
func ConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "scopex", "settings.json")
}

func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "scopex", "scopex.log")
}

// Load reads the settings at path, or at ConfigPath when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
