// Package input checks the image paths given on the command line before any
// encoder runs. A single bad path rejects the whole run.
package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// PNGExt is the required image extension, matched case-insensitively
const PNGExt = ".png"

// IsPNG reports whether path has a .png extension in any letter case.
func IsPNG(path string) bool {
	return strings.EqualFold(filepath.Ext(path), PNGExt)
}

// Validate checks that every entry names an existing regular file with a .png
// extension. It returns the first *ValidationError found. An empty list is
// valid.
func Validate(fs afero.Fs, paths []string) error {
	for _, p := range paths {
		if !IsPNG(p) {
			return &ValidationError{Path: p, Reason: ReasonNotPNG}
		}

		info, err := fs.Stat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return &ValidationError{Path: p, Reason: ReasonMissing}
			}
			return &ValidationError{Path: p, Reason: ReasonUnreadable, Err: err}
		}
		if !info.Mode().IsRegular() {
			return &ValidationError{Path: p, Reason: ReasonNotFile}
		}
	}

	return nil
}
