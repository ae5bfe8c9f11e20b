/*
Package output renders the run report of a compression run as text, JSON or
YAML. The text format prints one line per image with the sizes compared and the
winner, optionally colored, followed by a summary.

Basic usage:

	formatter := output.NewFormatter(output.Config{
		Format:     output.FormatText,
		WithStats:  true,
		WithColors: true,
	}, log)

	result, err := formatter.Format(report)
*/
package output

import (
	"fmt"

	"github.com/sonemaro/pngshrink/pkg/logger"
	"github.com/sonemaro/pngshrink/pkg/selector"
	"github.com/sonemaro/pngshrink/pkg/worker"
)

// Format represents the output format type
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Config holds formatter configuration
type Config struct {
	Format     Format
	WithStats  bool
	WithColors bool
}

// Report is everything a run produced
type Report struct {
	// RunID identifies the run in logs and reports
	RunID string

	// Images are the validated input paths
	Images []string

	// PNG holds the recompression phase stats; nil when the phase was skipped
	PNG *worker.Stats

	// WebPSkipped is set when the convert-and-select phase did not run
	WebPSkipped bool

	// Decisions has one entry per image, in input order
	Decisions []selector.Decision
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(*Report) (string, error)
}

type formatter struct {
	config Config
	log    logger.Logger
}

// NewFormatter creates a new formatter instance
func NewFormatter(config Config, log logger.Logger) Formatter {
	return &formatter{
		config: config,
		log:    log,
	}
}

// Format renders the report according to the configured format
func (f *formatter) Format(report *Report) (string, error) {
	if report == nil {
		f.log.Error("nil report provided for formatting")
		return "", fmt.Errorf("nil report provided for formatting")
	}

	f.log.WithFields(logger.Fields{
		"format":     f.config.Format,
		"withStats":  f.config.WithStats,
		"withColors": f.config.WithColors,
		"decisions":  len(report.Decisions),
	}).Debug("Starting format operation")

	switch f.config.Format {
	case FormatText, "":
		return f.formatText(report)
	case FormatJSON:
		return f.formatJSON(report)
	case FormatYAML:
		return f.formatYAML(report)
	default:
		f.log.WithFields(logger.Fields{
			"format": f.config.Format,
		}).Error("Unsupported format")
		return "", fmt.Errorf("unsupported format: %s", f.config.Format)
	}
}
