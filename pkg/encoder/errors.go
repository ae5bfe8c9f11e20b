package encoder

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEncoderFailed is matched by every *Error via errors.Is.
var ErrEncoderFailed = errors.New("encoder failed")

// Error reports an encoder invocation that did not exit with status 0.
type Error struct {
	Tool     string
	Path     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	switch {
	case e.ExitCode > 0, e.Err == nil:
		fmt.Fprintf(&b, "%s %s: exited with status %d", e.Tool, e.Path, e.ExitCode)
	default:
		fmt.Fprintf(&b, "%s %s: %v", e.Tool, e.Path, e.Err)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		fmt.Fprintf(&b, ": %s", lastLine(msg))
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports ErrEncoderFailed as a match.
func (e *Error) Is(target error) bool {
	return target == ErrEncoderFailed
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
