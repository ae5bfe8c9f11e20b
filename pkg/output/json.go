package output

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sonemaro/pngshrink/pkg/logger"
	"github.com/sonemaro/pngshrink/pkg/selector"
)

// phaseOutput is the recompression phase in JSON/YAML output
type phaseOutput struct {
	Workers   int    `json:"workers" yaml:"workers"`
	Completed int    `json:"completed" yaml:"completed"`
	Failed    int    `json:"failed" yaml:"failed"`
	Duration  string `json:"duration" yaml:"duration"`
}

// imageOutput is one decision in JSON/YAML output
type imageOutput struct {
	PNG      string `json:"png" yaml:"png"`
	WebP     string `json:"webp" yaml:"webp"`
	PNGSize  uint64 `json:"pngSize" yaml:"pngSize"`
	WebPSize uint64 `json:"webpSize" yaml:"webpSize"`
	Winner   string `json:"winner" yaml:"winner"`
	Removed  string `json:"removed,omitempty" yaml:"removed,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// jsonOutput represents the complete JSON output
type jsonOutput struct {
	RunID      string        `json:"runId" yaml:"runId"`
	PNG        *phaseOutput  `json:"png,omitempty" yaml:"png,omitempty"`
	Images     []imageOutput `json:"images" yaml:"images"`
	Statistics *stats        `json:"statistics,omitempty" yaml:"statistics,omitempty"`
	Generated  time.Time     `json:"generated" yaml:"generated"`
}

func (f *formatter) formatJSON(report *Report) (string, error) {
	f.log.Debug("Formatting JSON output")

	output := f.buildOutput(report)

	bytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal JSON")
		return "", err
	}

	return string(bytes), nil
}

func (f *formatter) buildOutput(report *Report) *jsonOutput {
	output := &jsonOutput{
		RunID:     report.RunID,
		Images:    make([]imageOutput, 0, len(report.Decisions)),
		Generated: time.Now(),
	}

	if report.PNG != nil {
		output.PNG = &phaseOutput{
			Workers:   report.PNG.Workers,
			Completed: report.PNG.CompletedTasks,
			Failed:    report.PNG.FailedTasks,
			Duration:  report.PNG.Duration.String(),
		}
	}

	for _, d := range report.Decisions {
		output.Images = append(output.Images, convertDecision(d))
	}

	if f.config.WithStats {
		f.log.Debug("Adding statistics to output")
		output.Statistics = f.calculateStats(report)
	}

	return output
}

func convertDecision(d selector.Decision) imageOutput {
	out := imageOutput{
		PNG:      d.PNGPath,
		WebP:     d.WebPPath,
		PNGSize:  d.PNGSize,
		WebPSize: d.WebPSize,
		Winner:   string(d.Winner),
		Removed:  d.Removed,
	}
	if err := errors.Join(d.ConvertErr, d.PNGSizeErr, d.WebPSizeErr, d.RemoveErr); err != nil {
		out.Error = strings.ReplaceAll(err.Error(), "\n", "; ")
	}
	return out
}
