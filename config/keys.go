package config

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// KeyBinding is a parsed key name such as "Ctrl+E", "Alt+s" or "F5".
type KeyBinding struct {
	Key  tcell.Key
	Rune rune
	Mod  tcell.ModMask
}

// ParseKey parses a key name made of optional Ctrl/Alt/Shift modifiers and
// a key, joined by '+'.
func ParseKey(name string) (KeyBinding, error) {
	parts := strings.Split(name, "+")
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		return KeyBinding{}, fmt.Errorf("invalid key %q", name)
	}

	var mod tcell.ModMask
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl":
			mod |= tcell.ModCtrl
		case "alt":
			mod |= tcell.ModAlt
		case "shift":
			mod |= tcell.ModShift
		default:
			return KeyBinding{}, fmt.Errorf("unknown modifier %q in %q", p, name)
		}
	}

	if utf8.RuneCountInString(last) == 1 {
		r, _ := utf8.DecodeRuneInString(last)
		if mod&tcell.ModCtrl != 0 {
			lower := []rune(strings.ToLower(last))[0]
			if lower < 'a' || lower > 'z' {
				return KeyBinding{}, fmt.Errorf("unsupported control key %q", name)
			}
			return KeyBinding{Key: tcell.KeyCtrlA + tcell.Key(lower-'a'), Mod: mod}, nil
		}
		return KeyBinding{Key: tcell.KeyRune, Rune: r, Mod: mod}, nil
	}

	for k, n := range tcell.KeyNames {
		if strings.EqualFold(n, last) {
			return KeyBinding{Key: k, Mod: mod}, nil
		}
	}
	return KeyBinding{}, fmt.Errorf("unknown key %q", name)
}

// Matches reports whether ev is this binding. Control letters are matched
// on the key alone since terminals disagree on reporting ModCtrl for them.
func (k KeyBinding) Matches(ev *tcell.EventKey) bool {
	key := EventKey(ev)
	if key != k.Key {
		return false
	}
	switch {
	case k.Key >= tcell.KeyCtrlA && k.Key <= tcell.KeyCtrlZ:
		return true
	case k.Key == tcell.KeyRune:
		return ev.Rune() == k.Rune && ev.Modifiers()&tcell.ModAlt == k.Mod&tcell.ModAlt
	default:
		return ev.Modifiers() == k.Mod
	}
}

// EventKey returns the key of ev, reporting a Ctrl+letter rune as the
// matching control key.
func EventKey(ev *tcell.EventKey) tcell.Key {
	if ev.Key() != tcell.KeyRune || ev.Modifiers()&tcell.ModCtrl == 0 {
		return ev.Key()
	}
	r := unicode.ToLower(ev.Rune())
	if r < 'a' || r > 'z' {
		return ev.Key()
	}
	return tcell.KeyCtrlA + tcell.Key(r-'a')
}

// MustParseKey is ParseKey for names known to be valid.
func MustParseKey(name string) KeyBinding {
	k, err := ParseKey(name)
	if err != nil {
		panic(err)
	}
	return k
}
