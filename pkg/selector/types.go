package selector

// Winner names the encoding kept for an image
type Winner string

const (
	// WinnerPNG means the WebP sibling was larger
	WinnerPNG Winner = "png"

	// WinnerWebP means the WebP sibling was smaller or the same size
	WinnerWebP Winner = "webp"

	// WinnerNone means the conversion failed or a size could not be read, and
	// nothing was touched
	WinnerNone Winner = "none"
)

// Decision records the outcome of comparing one PNG/WebP pair
type Decision struct {
	PNGPath  string
	WebPPath string

	// Sizes in bytes; zero when the matching size error is set
	PNGSize  uint64
	WebPSize uint64

	Winner Winner

	// Removed is the path deleted by the selection, empty when nothing was removed
	Removed string

	// ConvertErr is the WebP encoder failure for this image, if any
	ConvertErr error

	// PNGSizeErr and WebPSizeErr are size query failures
	PNGSizeErr  error
	WebPSizeErr error

	// RemoveErr is set when deleting the loser failed
	RemoveErr error
}

// Saved returns the bytes saved by keeping the winner instead of the PNG.
// It is zero unless WebP won.
func (d Decision) Saved() uint64 {
	if d.Winner != WinnerWebP {
		return 0
	}
	return d.PNGSize - d.WebPSize
}

// Failed reports whether any step for this image went wrong.
func (d Decision) Failed() bool {
	return d.ConvertErr != nil || d.PNGSizeErr != nil || d.WebPSizeErr != nil || d.RemoveErr != nil
}
