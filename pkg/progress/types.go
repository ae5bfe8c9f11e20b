package progress

import "time"

// Style represents the type of progress visualization
type Style string

const (
	// StyleBar shows a progress bar with percentage
	StyleBar Style = "bar"

	// StyleSimple shows basic text progress
	StyleSimple Style = "simple"
)

// Config holds the configuration for progress visualization
type Config struct {
	// Style defines how progress should be displayed
	Style Style

	// Width is the maximum width for the progress bar (0 = auto-detect)
	Width int

	// ShowStats appends rate and ETA to the line
	ShowStats bool

	// NoColor disables colored output
	NoColor bool

	// RefreshRate defines how often the display updates
	RefreshRate time.Duration
}

// Status is the state of one phase
type Status struct {
	// Current is the number of images finished, failed ones included
	Current int64

	// Total is the number of images in the phase
	Total int64

	// Failed is the number of images whose encoder failed
	Failed int64

	// CurrentItem is the last finished image
	CurrentItem string
}

// Statistics is derived from Status and the phase start time
type Statistics struct {
	ElapsedTime        time.Duration
	RemainingTime      time.Duration
	ProcessingSpeed    float64 // images per second
	ProgressPercentage float64
}

// Progress reports phase progress on a terminal
type Progress interface {
	// Start begins a phase with its label
	Start(message string)

	// Update replaces the current status
	Update(status Status)

	// Complete renders the final line of a successful phase
	Complete(message string)

	// Error renders the final line of a phase that had failures
	Error(message string)

	// Stop stops the refresh loop and clears the line
	Stop()

	// IsSupportedTerminal reports whether the writer is a terminal
	IsSupportedTerminal() bool
}
