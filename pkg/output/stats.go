package output

import (
	"github.com/sonemaro/pngshrink/pkg/logger"
	"github.com/sonemaro/pngshrink/pkg/selector"
)

// stats summarizes a run
type stats struct {
	Images        int    `json:"images" yaml:"images"`
	PNGCompressed int    `json:"pngCompressed" yaml:"pngCompressed"`
	PNGFailed     int    `json:"pngFailed" yaml:"pngFailed"`
	WebPFailed    int    `json:"webpFailed" yaml:"webpFailed"`
	PNGWins       int    `json:"pngWins" yaml:"pngWins"`
	WebPWins      int    `json:"webpWins" yaml:"webpWins"`
	Undecided     int    `json:"undecided" yaml:"undecided"`
	Removed       int    `json:"removed" yaml:"removed"`
	BytesSaved    uint64 `json:"bytesSaved" yaml:"bytesSaved"`
}

func (f *formatter) calculateStats(report *Report) *stats {
	f.log.Debug("Calculating run statistics")

	s := &stats{Images: len(report.Images)}
	if report.PNG != nil {
		s.PNGCompressed = report.PNG.CompletedTasks
		s.PNGFailed = report.PNG.FailedTasks
	}

	for _, d := range report.Decisions {
		if d.ConvertErr != nil {
			s.WebPFailed++
		}
		switch d.Winner {
		case selector.WinnerPNG:
			s.PNGWins++
		case selector.WinnerWebP:
			s.WebPWins++
		default:
			s.Undecided++
		}
		if d.Removed != "" {
			s.Removed++
		}
		s.BytesSaved += d.Saved()
	}

	f.log.WithFields(logger.Fields{
		"pngWins":    s.PNGWins,
		"webpWins":   s.WebPWins,
		"undecided":  s.Undecided,
		"bytesSaved": s.BytesSaved,
	}).Debug("Statistics calculated")

	return s
}
