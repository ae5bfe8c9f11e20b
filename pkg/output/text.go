package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/sonemaro/pngshrink/pkg/logger"
	"github.com/sonemaro/pngshrink/pkg/selector"
)

func (f *formatter) formatText(report *Report) (string, error) {
	f.log.Debug("Formatting text output")

	pngWin := f.color(color.FgYellow)
	webpWin := f.color(color.FgGreen)
	failure := f.color(color.FgRed)

	var b strings.Builder
	for _, d := range report.Decisions {
		f.log.WithFields(logger.Fields{
			"png":    d.PNGPath,
			"winner": d.Winner,
		}).Trace("Formatting decision")

		if d.ConvertErr != nil {
			b.WriteString(failure.Sprintf("Failed to convert WebP `%s`: %v", d.PNGPath, d.ConvertErr))
			b.WriteString("\n")
			continue
		}

		switch d.Winner {
		case selector.WinnerPNG:
			b.WriteString(fmt.Sprintf("`%s`: PNG %d < WebP %d, ", d.PNGPath, d.PNGSize, d.WebPSize))
			b.WriteString(pngWin.Sprint("PNG win!"))
		case selector.WinnerWebP:
			op := ">"
			if d.PNGSize == d.WebPSize {
				op = "="
			}
			b.WriteString(fmt.Sprintf("`%s`: PNG %d %s WebP %d, ", d.PNGPath, d.PNGSize, op, d.WebPSize))
			b.WriteString(webpWin.Sprint("WebP win!"))
		default:
			b.WriteString(failure.Sprintf("Failed to get file size `%s`: %s, `%s`: %s",
				d.PNGPath, errOrOK(d.PNGSizeErr), d.WebPPath, errOrOK(d.WebPSizeErr)))
		}
		b.WriteString("\n")

		if d.RemoveErr != nil {
			b.WriteString(failure.Sprintf("Failed to remove file: %v", d.RemoveErr))
			b.WriteString("\n")
		}
	}

	if f.config.WithStats {
		f.log.Debug("Adding statistics to output")
		s := f.calculateStats(report)

		if len(report.Decisions) > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Summary:\n")
		b.WriteString(fmt.Sprintf("  Images: %d\n", s.Images))
		if report.PNG != nil {
			b.WriteString(fmt.Sprintf("  PNG recompressed: %d (%d failed) in %s\n",
				s.PNGCompressed, s.PNGFailed, report.PNG.Duration.Round(time.Millisecond)))
		} else {
			b.WriteString("  PNG recompression: skipped\n")
		}
		if report.WebPSkipped {
			b.WriteString("  WebP conversion: skipped\n")
		} else {
			b.WriteString(fmt.Sprintf("  WebP wins: %d, PNG wins: %d, undecided: %d\n", s.WebPWins, s.PNGWins, s.Undecided))
			b.WriteString(fmt.Sprintf("  Files removed: %d\n", s.Removed))
			b.WriteString(fmt.Sprintf("  Saved by WebP: %s\n", humanize.IBytes(s.BytesSaved)))
		}
	}

	return b.String(), nil
}

func (f *formatter) color(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if f.config.WithColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func errOrOK(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}
