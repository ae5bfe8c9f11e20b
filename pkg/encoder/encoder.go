/*
Package encoder invokes the external image encoders used by pngshrink.

Both encoders are opaque processes: an invocation succeeds when the process
exits with status 0. A non-zero exit and a spawn failure are reported the same
way, as an *Error.

	png := encoder.NewPNG("zopflipng", encoder.ExecRunner{})
	if err := png.Encode(ctx, "logo.png"); err != nil {
	    // errors.Is(err, encoder.ErrEncoderFailed) == true
	}
*/
package encoder

import (
	"context"
	"path/filepath"
)

const (
	// DefaultPNGBinary is the in-place PNG re-compressor
	DefaultPNGBinary = "zopflipng"

	// DefaultWebPBinary is the WebP encoder
	DefaultWebPBinary = "cwebp"

	// WebPExt is the extension of the WebP sibling artifact
	WebPExt = ".webp"
)

// keptChunks are the PNG ancillary chunks preserved by the re-compressor.
const keptChunks = "cHRM,gAMA,hIST,iCCP,pHYs,sRGB"

// Encoder produces an encoded artifact for one image path.
type Encoder interface {
	Encode(ctx context.Context, path string) error
}

// PNG recompresses a PNG file in place.
type PNG struct {
	Binary string
	Runner Runner
}

// NewPNG returns a PNG encoder running binary through runner.
func NewPNG(binary string, runner Runner) *PNG {
	if binary == "" {
		binary = DefaultPNGBinary
	}
	return &PNG{Binary: binary, Runner: runner}
}

// Args returns the re-compressor arguments for path. Input and output are the
// same file.
func (e *PNG) Args(path string) []string {
	return []string{
		"-m",
		"-y",
		"--keepchunks=" + keptChunks,
		path,
		path,
	}
}

// Encode implements Encoder.
func (e *PNG) Encode(ctx context.Context, path string) error {
	return check(e.Binary, path, e.Runner.Run(ctx, e.Binary, e.Args(path)...))
}

// WebP writes a WebP sibling next to a PNG file.
type WebP struct {
	Binary string
	Runner Runner
}

// NewWebP returns a WebP encoder running binary through runner.
func NewWebP(binary string, runner Runner) *WebP {
	if binary == "" {
		binary = DefaultWebPBinary
	}
	return &WebP{Binary: binary, Runner: runner}
}

// Args returns the WebP encoder arguments for path: maximum effort, internal
// multi-threading and the ICC profile kept.
func (e *WebP) Args(path string) []string {
	return []string{
		"-mt",
		"-z", "9",
		"-metadata", "icc",
		path,
		"-o", WebPPath(path),
	}
}

// Encode implements Encoder.
func (e *WebP) Encode(ctx context.Context, path string) error {
	return check(e.Binary, path, e.Runner.Run(ctx, e.Binary, e.Args(path)...))
}

// WebPPath returns path with its extension replaced by ".webp".
func WebPPath(path string) string {
	return path[:len(path)-len(filepath.Ext(path))] + WebPExt
}

func check(tool, path string, res Result) error {
	if res.Err == nil && res.ExitCode == 0 {
		return nil
	}
	return &Error{
		Tool:     tool,
		Path:     path,
		ExitCode: res.ExitCode,
		Stderr:   res.Stderr,
		Err:      res.Err,
	}
}
