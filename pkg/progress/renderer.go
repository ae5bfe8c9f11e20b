package progress

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
)

type renderer interface {
	render(status Status, message string, stats Statistics, failed bool) string
}

type palette struct {
	ok  *color.Color
	bad *color.Color
	bar *color.Color
	dim *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		ok:  color.New(color.FgGreen),
		bad: color.New(color.FgRed),
		bar: color.New(color.FgCyan),
		dim: color.New(color.Faint),
	}
	if noColor {
		p.ok.DisableColor()
		p.bad.DisableColor()
		p.bar.DisableColor()
		p.dim.DisableColor()
	}
	return p
}

type barRenderer struct {
	width     int
	showStats bool
	colors    palette
}

func (r *barRenderer) render(status Status, message string, stats Statistics, failed bool) string {
	var out strings.Builder

	if message != "" {
		if failed {
			out.WriteString(r.colors.bad.Sprint(message))
		} else {
			out.WriteString(message)
		}
		out.WriteString(" ")
	}

	// room for percentage and counters
	barWidth := r.width - len(message) - 30
	if barWidth < 10 {
		barWidth = 10
	}

	ratio := stats.ProgressPercentage / 100
	filled := int(float64(barWidth) * ratio)
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat("=", filled)
	if filled < barWidth {
		bar += ">" + strings.Repeat(" ", barWidth-filled-1)
	}

	out.WriteString("[")
	out.WriteString(r.colors.bar.Sprint(bar))
	out.WriteString("]")
	out.WriteString(fmt.Sprintf(" %3.0f%% %d/%d", stats.ProgressPercentage, status.Current, status.Total))

	if status.Failed > 0 {
		out.WriteString(" ")
		out.WriteString(r.colors.bad.Sprintf("(%d failed)", status.Failed))
	}

	if r.showStats {
		out.WriteString(r.colors.dim.Sprintf(" %.1f/s ETA %s",
			stats.ProcessingSpeed,
			formatDuration(stats.RemainingTime)))
	}

	if status.CurrentItem != "" {
		out.WriteString(" ")
		out.WriteString(filepath.Base(status.CurrentItem))
	}

	return out.String()
}

type simpleRenderer struct {
	showStats bool
	colors    palette
}

func (r *simpleRenderer) render(status Status, message string, stats Statistics, failed bool) string {
	if failed {
		message = r.colors.bad.Sprint(message)
	} else if status.Total > 0 && status.Current >= status.Total {
		message = r.colors.ok.Sprint(message)
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("%s (%.0f%%) %d/%d", message, stats.ProgressPercentage, status.Current, status.Total))

	if status.Failed > 0 {
		out.WriteString(fmt.Sprintf(", %d failed", status.Failed))
	}

	if r.showStats {
		out.WriteString(fmt.Sprintf(" | Speed: %.1f/s | Elapsed: %s",
			stats.ProcessingSpeed,
			formatDuration(stats.ElapsedTime)))
	}

	if status.CurrentItem != "" {
		out.WriteString(" ")
		out.WriteString(status.CurrentItem)
	}

	return out.String()
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm%ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
