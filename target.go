package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vittorioromeo/scopex/buffer"
	"github.com/vittorioromeo/scopex/scope"
)

// stdinFile names the text read from standard input.
const stdinFile = "-"

// target is one selection to expand, given either as rune offsets or as
// 1-based LINE.COL positions.
type target struct {
	Raw  string
	File string

	byPos    bool
	from, to buffer.Cursor
	offsets  scope.Range
}

// parseTarget parses FILE:START:END or FILE:LINE.COL-LINE.COL. With
// fromStdin set the FILE part is omitted.
func parseTarget(raw string, fromStdin bool) (target, error) {
	t := target{Raw: raw, File: stdinFile}
	field := raw
	if !fromStdin {
		var err error
		if t.File, field, err = splitFile(raw); err != nil {
			return t, err
		}
	}

	if from, to, ok := strings.Cut(field, "-"); ok {
		if err := t.setPositions(from, to); err != nil {
			return t, fmt.Errorf("target %q: %w", raw, err)
		}
		return t, nil
	}

	s, e, ok := strings.Cut(field, ":")
	if !ok {
		return t, fmt.Errorf("target %q: expected START:END or LINE.COL-LINE.COL", raw)
	}
	start, err := strconv.Atoi(s)
	if err != nil {
		return t, fmt.Errorf("target %q: bad start offset: %w", raw, err)
	}
	end, err := strconv.Atoi(e)
	if err != nil {
		return t, fmt.Errorf("target %q: bad end offset: %w", raw, err)
	}
	t.offsets = scope.Range{Start: start, End: end}
	return t, nil
}

// splitFile separates the file name, which may itself contain ':', from
// the selection at the end of raw.
func splitFile(raw string) (file, field string, err error) {
	i := strings.LastIndex(raw, ":")
	if i < 0 {
		return "", "", fmt.Errorf("target %q: expected FILE:START:END or FILE:LINE.COL-LINE.COL", raw)
	}
	if !strings.Contains(raw[i+1:], "-") {
		i = strings.LastIndex(raw[:i], ":")
		if i < 0 {
			return "", "", fmt.Errorf("target %q: expected FILE:START:END", raw)
		}
	}
	if i == 0 {
		return "", "", fmt.Errorf("target %q: missing file name", raw)
	}
	return raw[:i], raw[i+1:], nil
}

func (t *target) setPositions(from, to string) error {
	var err error
	if t.from, err = parsePosition(from); err != nil {
		return err
	}
	if t.to, err = parsePosition(to); err != nil {
		return err
	}
	if t.to.Before(t.from) {
		return fmt.Errorf("end %s before start %s", to, from)
	}
	t.byPos = true
	return nil
}

// parsePosition reads a 1-based LINE.COL into a zero-based cursor.
func parsePosition(s string) (buffer.Cursor, error) {
	l, c, ok := strings.Cut(s, ".")
	if !ok {
		return buffer.Cursor{}, fmt.Errorf("position %q: expected LINE.COL", s)
	}
	line, err := strconv.Atoi(l)
	if err != nil || line < 1 {
		return buffer.Cursor{}, fmt.Errorf("position %q: bad line", s)
	}
	col, err := strconv.Atoi(c)
	if err != nil || col < 1 {
		return buffer.Cursor{}, fmt.Errorf("position %q: bad column", s)
	}
	return buffer.Cursor{Line: line - 1, Col: col - 1}, nil
}

// rangeIn resolves the target against buf. Positions outside the buffer
// are rejected rather than clamped.
func (t target) rangeIn(buf *buffer.Buffer) (scope.Range, error) {
	if !t.byPos {
		return t.offsets, nil
	}
	for _, c := range []buffer.Cursor{t.from, t.to} {
		if c.Line >= len(buf.Lines) || c.Col > buffer.RuneLen(buf.Lines[c.Line]) {
			return scope.Range{}, fmt.Errorf("%w: %d.%d", scope.ErrRange, c.Line+1, c.Col+1)
		}
	}
	return buf.RangeOf(buffer.NewSelection(t.from, t.to)), nil
}
