// Package clipboardx copies scope text to the system clipboard, trying the
// native clipboard, well-known commands and finally an OSC 52 escape.
package clipboardx

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

type command struct {
	name string
	args []string
}

var writeCommands = []command{
	{name: "wl-copy"},
	{name: "xclip", args: []string{"-selection", "clipboard"}},
	{name: "xsel", args: []string{"--clipboard", "--input"}},
	{name: "pbcopy"},
	{name: "clip.exe"},
}

var readCommands = []command{
	{name: "wl-paste", args: []string{"--no-newline"}},
	{name: "xclip", args: []string{"-o", "-selection", "clipboard"}},
	{name: "xsel", args: []string{"--clipboard", "--output"}},
	{name: "pbpaste"},
	{name: "powershell.exe", args: []string{"-NoProfile", "-Command", "Get-Clipboard"}},
}

var errNoCommand = errors.New("no clipboard command available")

// writers are tried in order; Write succeeds if any of them does.
var writers = []func(string) error{
	clipboard.WriteAll,
	writeWithCommands,
	func(text string) error { return writeOSC52(os.Stdout, text) },
}

var readers = []func() (string, error){
	clipboard.ReadAll,
	readWithCommands,
}

// last holds the most recent write so Read works without any backend.
var last string

func Write(text string) bool {
	last = text
	ok := false
	for _, w := range writers {
		if err := w(text); err == nil {
			ok = true
		}
	}
	return ok
}

// WriteSelections copies several selections, one per line.
func WriteSelections(texts []string) bool {
	if len(texts) == 0 {
		return false
	}
	return Write(strings.Join(texts, "\n"))
}

func Read() string {
	for _, r := range readers {
		if text, err := r(); err == nil && text != "" {
			return text
		}
	}
	return last
}

func writeWithCommands(text string) error {
	ran := false
	for _, c := range writeCommands {
		if _, err := exec.LookPath(c.name); err != nil {
			continue
		}
		cmd := exec.Command(c.name, c.args...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			ran = true
		}
	}
	if !ran {
		return errNoCommand
	}
	return nil
}

func readWithCommands() (string, error) {
	for _, c := range readCommands {
		if _, err := exec.LookPath(c.name); err != nil {
			continue
		}
		out, err := exec.Command(c.name, c.args...).Output()
		if err == nil && len(out) > 0 {
			return string(out), nil
		}
	}
	return "", errNoCommand
}

// writeOSC52 emits the OSC 52 sequence when out is a terminal.
func writeOSC52(out *os.File, text string) error {
	if text == "" {
		return errors.New("empty text")
	}
	if fi, err := out.Stat(); err != nil || (fi.Mode()&os.ModeCharDevice) == 0 {
		return errors.New("not a terminal")
	}
	return osc52(out, text)
}

func osc52(w io.Writer, text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	_, err := fmt.Fprintf(w, "\x1b]52;c;%s\x07", encoded)
	return err
}
