package scope

import (
	"errors"
	"fmt"
)

// ErrUnbalanced is returned when a directional scan meets a bracket that
// closes a different kind than the innermost one it skipped over.
var ErrUnbalanced = errors.New("unbalanced brackets")

// ErrRange is returned for a selection outside the text.
var ErrRange = errors.New("selection out of range")

// MismatchError reports that the left and right scans stopped at delimiters
// of different kinds.
type MismatchError struct {
	Left  Kind
	Right Kind
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("unbalanced brackets %s and %s", e.Left, e.Right)
}

// Describe renders an Expand error as the notification shown to users.
func Describe(err error) string {
	var mismatch *MismatchError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &mismatch):
		return fmt.Sprintf("Unbalanced brackets %s and %s", mismatch.Left, mismatch.Right)
	case errors.Is(err, ErrUnbalanced):
		return "Unbalanced brackets :("
	default:
		return "Error: " + err.Error()
	}
}
