/*
Package selector converts recompressed PNG files to WebP and keeps the smaller
of the two encodings.

The policy for one pair:

  - WebP larger than PNG: PNG wins, the WebP sibling is deleted.
  - WebP smaller or equal: WebP wins. The PNG is deleted only when
    AllowRemoveLargerPNG is set; by default both files stay.
  - Either size unreadable: nothing is deleted.
  - WebP conversion failed: no comparison, nothing is deleted.

Basic usage:

	sel := selector.New(selector.Config{}, afero.NewOsFs(), webp, log)
	decisions := sel.Run(ctx, paths)
*/
package selector

import (
	"context"

	"github.com/sonemaro/pngshrink/pkg/encoder"
	"github.com/sonemaro/pngshrink/pkg/logger"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Config holds selector options
type Config struct {
	// AllowRemoveLargerPNG permits deleting the original PNG when WebP wins
	AllowRemoveLargerPNG bool

	// OnConverted is called after each WebP conversion attempt
	OnConverted func(path string, err error)
}

// Selector runs the convert-and-select phase
type Selector struct {
	config Config
	fs     afero.Fs
	enc    encoder.Encoder
	log    logger.Logger
}

// New creates a selector that converts with enc and inspects files on fs
func New(config Config, fs afero.Fs, enc encoder.Encoder, log logger.Logger) *Selector {
	return &Selector{
		config: config,
		fs:     fs,
		enc:    enc,
		log:    log,
	}
}

// Run converts every path, then selects a winner for each one in input order.
// A path whose conversion failed is left alone: whatever WebP sits next to it
// is partial or stale and must not decide the fate of the PNG.
func (s *Selector) Run(ctx context.Context, paths []string) []Decision {
	failures := s.ConvertAll(ctx, paths)

	decisions := make([]Decision, 0, len(paths))
	for _, p := range paths {
		if err := failures[p]; err != nil {
			s.log.WithFields(logger.Fields{
				"path": p,
			}).Debug("Skipping selection after failed conversion")
			decisions = append(decisions, Decision{
				PNGPath:    p,
				WebPPath:   encoder.WebPPath(p),
				Winner:     WinnerNone,
				ConvertErr: err,
			})
			continue
		}
		decisions = append(decisions, s.SelectWinner(p, encoder.WebPPath(p), s.config.AllowRemoveLargerPNG))
	}
	return decisions
}

// ConvertAll encodes each path to WebP, one at a time. A failure is logged
// and does not stop the remaining paths. The returned map holds the failed
// paths only.
func (s *Selector) ConvertAll(ctx context.Context, paths []string) map[string]error {
	failures := make(map[string]error)

	for _, p := range paths {
		err := s.enc.Encode(ctx, p)
		if err != nil {
			failures[p] = err
			s.log.WithFields(logger.Fields{
				"path":  p,
				"error": err,
			}).Error("Failed to convert WebP")
		} else {
			s.log.WithFields(logger.Fields{
				"path": p,
				"webp": encoder.WebPPath(p),
			}).Debug("WebP written")
		}

		if s.config.OnConverted != nil {
			s.config.OnConverted(p, err)
		}
	}

	return failures
}

// SelectWinner compares the two artifacts and removes the loser. Equal sizes
// favour WebP. A failed size query or removal is logged and recorded in the
// Decision, never returned.
func (s *Selector) SelectWinner(pngPath, webpPath string, allowRemoveLargerPNG bool) Decision {
	d := Decision{
		PNGPath:  pngPath,
		WebPPath: webpPath,
		Winner:   WinnerNone,
	}

	var g errgroup.Group
	g.Go(func() error {
		d.PNGSize, d.PNGSizeErr = s.size(pngPath)
		return nil
	})
	g.Go(func() error {
		d.WebPSize, d.WebPSizeErr = s.size(webpPath)
		return nil
	})
	_ = g.Wait()

	if d.PNGSizeErr != nil || d.WebPSizeErr != nil {
		s.log.WithFields(logger.Fields{
			"png":       pngPath,
			"pngError":  errString(d.PNGSizeErr),
			"webp":      webpPath,
			"webpError": errString(d.WebPSizeErr),
		}).Error("Failed to get file size")
		return d
	}

	fields := logger.Fields{
		"png":      pngPath,
		"pngSize":  d.PNGSize,
		"webpSize": d.WebPSize,
	}

	var loser string
	if d.WebPSize > d.PNGSize {
		d.Winner = WinnerPNG
		loser = webpPath
		s.log.WithFields(fields).Info("PNG win")
	} else {
		d.Winner = WinnerWebP
		if allowRemoveLargerPNG {
			loser = pngPath
		}
		s.log.WithFields(fields).Info("WebP win")
	}

	if loser == "" {
		return d
	}

	if err := s.fs.Remove(loser); err != nil {
		d.RemoveErr = err
		s.log.WithFields(logger.Fields{
			"path":  loser,
			"error": err,
		}).Error("Failed to remove file")
		return d
	}

	d.Removed = loser
	s.log.WithFields(logger.Fields{
		"path": loser,
	}).Debug("Removed larger file")

	return d
}

func (s *Selector) size(path string) (uint64, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
