package buffer

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

const maxFileSize = 100 * 1024 * 1024

type Buffer struct {
	Lines           []string
	Path            string
	Cursor          Cursor
	Selection       *Selection
	ExtraSelections []Selection // additional selections, expanded alongside the primary one
	Language        string
	ReadOnly        bool
	FileSize        int64  // File size in bytes at load time
	LineEnding      string // "LF" or "CRLF", detected from file
	Encoding        string // Detected encoding (UTF-8, Latin-1, etc.)
	History         *History

	// anchor is the fixed end of a selection being extended by cursor moves.
	anchor *Cursor
}

func NewBuffer() *Buffer {
	return &Buffer{
		Lines:      []string{""},
		LineEnding: "LF",
		Encoding:   "UTF-8",
		History:    NewHistory(0),
	}
}

// NewBufferFromString builds a buffer over text. CRLF line endings are
// normalized to LF.
func NewBufferFromString(text string) *Buffer {
	b := NewBuffer()
	if strings.Contains(text, "\r\n") {
		b.LineEnding = "CRLF"
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	b.Lines = strings.Split(text, "\n")
	return b
}

func NewBufferFromFile(path string) (*Buffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("file too large (%d MB), max supported is 100 MB", info.Size()/(1024*1024))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	b := NewBufferFromString(string(data))
	b.Path = path
	b.FileSize = info.Size()
	b.Encoding = detectEncoding(data)
	b.ReadOnly = isBinary(data)
	return b, nil
}

// isBinary checks the first 8KB for null bytes.
func isBinary(data []byte) bool {
	if len(data) > 8192 {
		data = data[:8192]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// detectEncoding checks BOM and validates UTF-8 to determine file encoding.
func detectEncoding(data []byte) string {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return "UTF-8 BOM"
	}
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) {
		return "UTF-16 LE"
	}
	if bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		return "UTF-16 BE"
	}
	if utf8.Valid(data) {
		return "UTF-8"
	}
	return "Latin-1"
}

// Text returns the whole buffer with lines joined by "\n".
func (b *Buffer) Text() string {
	return strings.Join(b.Lines, "\n")
}

// Runes returns a snapshot of the buffer as runes. Offsets used by the scope
// search index into this slice.
func (b *Buffer) Runes() []rune {
	return []rune(b.Text())
}

// Len is the buffer length in runes, counting one per line break.
func (b *Buffer) Len() int {
	n := len(b.Lines) - 1
	for _, l := range b.Lines {
		n += utf8.RuneCountInString(l)
	}
	return n
}

func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

func (b *Buffer) lineLen(line int) int {
	if line < 0 || line >= len(b.Lines) {
		return 0
	}
	return RuneLen(b.Lines[line])
}

// clamp moves c inside the buffer.
func (b *Buffer) clamp(c Cursor) Cursor {
	if len(b.Lines) == 0 {
		b.Lines = []string{""}
	}
	if c.Line < 0 {
		c.Line = 0
	}
	if c.Line >= len(b.Lines) {
		c.Line = len(b.Lines) - 1
	}
	if c.Col < 0 {
		c.Col = 0
	}
	if n := b.lineLen(c.Line); c.Col > n {
		c.Col = n
	}
	return c
}

func (b *Buffer) clampSelection(s Selection) Selection {
	return NewSelection(b.clamp(s.Start), b.clamp(s.End))
}

// Selections returns the primary selection (collapsed at the cursor when
// nothing is selected) followed by the extra selections.
func (b *Buffer) Selections() []Selection {
	sels := make([]Selection, 0, 1+len(b.ExtraSelections))
	if b.Selection != nil {
		sels = append(sels, *b.Selection)
	} else {
		sels = append(sels, Collapsed(b.Cursor))
	}
	return append(sels, b.ExtraSelections...)
}

// SetSelections replaces every selection. The first one becomes primary and
// the cursor moves to its end. Duplicates are dropped. Shrink history is
// discarded.
func (b *Buffer) SetSelections(sels []Selection) {
	b.History.Clear()
	b.setSelections(sels)
}

func (b *Buffer) setSelections(sels []Selection) {
	b.anchor = nil
	b.Selection = nil
	b.ExtraSelections = nil
	if len(sels) == 0 {
		b.Cursor = b.clamp(b.Cursor)
		return
	}

	seen := make(map[Selection]bool, len(sels))
	for i, s := range sels {
		s = b.clampSelection(s)
		if seen[s] {
			continue
		}
		seen[s] = true
		if i == 0 {
			b.Cursor = s.End
			if !s.Empty() {
				primary := s
				b.Selection = &primary
			}
			continue
		}
		b.ExtraSelections = append(b.ExtraSelections, s)
	}
}

// AddSelection adds an extra selection, ignoring one that already exists.
func (b *Buffer) AddSelection(s Selection) {
	s = b.clampSelection(s)
	for _, existing := range b.Selections() {
		if existing == s {
			return
		}
	}
	b.ExtraSelections = append(b.ExtraSelections, s)
	b.History.Clear()
}

func (b *Buffer) ClearExtraSelections() {
	b.ExtraSelections = nil
	b.History.Clear()
}

func (b *Buffer) HasExtraSelections() bool {
	return len(b.ExtraSelections) > 0
}

func (b *Buffer) SelectAll() {
	last := len(b.Lines) - 1
	b.SetSelections([]Selection{NewSelection(
		Cursor{Line: 0, Col: 0},
		Cursor{Line: last, Col: b.lineLen(last)},
	)})
}

// TextInRange returns the text covered by s.
func (b *Buffer) TextInRange(s Selection) string {
	s = b.clampSelection(s)
	if s.Start.Line == s.End.Line {
		runes := []rune(b.Lines[s.Start.Line])
		return string(runes[s.Start.Col:s.End.Col])
	}

	var sb strings.Builder
	first := []rune(b.Lines[s.Start.Line])
	sb.WriteString(string(first[s.Start.Col:]))
	for i := s.Start.Line + 1; i < s.End.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(b.Lines[i])
	}
	sb.WriteByte('\n')
	last := []rune(b.Lines[s.End.Line])
	sb.WriteString(string(last[:s.End.Col]))
	return sb.String()
}

// SelectedText returns the text of every non-empty selection in order.
func (b *Buffer) SelectedText() []string {
	var out []string
	for _, s := range b.Selections() {
		if s.Empty() {
			continue
		}
		out = append(out, b.TextInRange(s))
	}
	return out
}

// Replace swaps in new content (for example after an external change),
// keeping selections where they still fit.
func (b *Buffer) Replace(other *Buffer) {
	sels := b.Selections()
	b.Lines = other.Lines
	b.LineEnding = other.LineEnding
	b.Encoding = other.Encoding
	b.FileSize = other.FileSize
	b.ReadOnly = other.ReadOnly
	b.SetSelections(sels)
}
