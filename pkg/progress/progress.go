package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sonemaro/pngshrink/pkg/logger"
	"golang.org/x/term"
)

type progress struct {
	config Config
	log    logger.Logger
	writer io.Writer

	// State
	status    Status
	startTime time.Time
	message   string
	active    bool

	renderer renderer
	width    int

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// New creates a progress reporter writing to stderr
func New(config Config, log logger.Logger) Progress {
	return newProgress(config, log, os.Stderr)
}

func newProgress(config Config, log logger.Logger, w io.Writer) *progress {
	if config.RefreshRate == 0 {
		config.RefreshRate = 100 * time.Millisecond
	}

	p := &progress{
		config: config,
		log:    log,
		writer: w,
	}

	if p.config.Width == 0 {
		p.width = p.terminalWidth()
	} else {
		p.width = p.config.Width
	}
	p.renderer = p.createRenderer()

	p.log.WithFields(logger.Fields{
		"style":   p.config.Style,
		"width":   p.width,
		"noColor": p.config.NoColor,
		"refresh": p.config.RefreshRate,
	}).Debug("Created new progress instance")

	return p
}

func (p *progress) Start(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		return
	}

	p.log.WithFields(logger.Fields{
		"message": message,
	}).Debug("Starting progress")

	p.message = message
	p.status = Status{}
	p.startTime = time.Now()
	p.active = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go p.renderLoop(p.stop, p.done)
}

func (p *progress) Update(status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.WithFields(logger.Fields{
		"current": status.Current,
		"total":   status.Total,
		"item":    status.CurrentItem,
	}).Trace("Updating progress")

	p.status = status
	if p.active {
		p.render(false)
	}
}

func (p *progress) Complete(message string) {
	p.finish(message, false)
}

func (p *progress) Error(message string) {
	p.finish(message, true)
}

func (p *progress) finish(message string, failed bool) {
	p.halt()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.WithFields(logger.Fields{
		"message": message,
		"failed":  failed,
	}).Debug("Finishing progress")

	p.message = message
	if !failed {
		p.status.Current = p.status.Total
	}
	p.render(failed)
	fmt.Fprintln(p.writer)
}

func (p *progress) Stop() {
	p.log.Debug("Stopping progress")
	p.halt()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLine()
}

// halt stops the refresh loop and waits for it. The lock is not held while
// waiting since the loop takes it on every tick.
func (p *progress) halt() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	stop, done := p.stop, p.done
	p.mu.Unlock()

	close(stop)
	<-done
}

func (p *progress) IsSupportedTerminal() bool {
	if f, ok := p.writer.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func (p *progress) renderLoop(stop, done chan struct{}) {
	ticker := time.NewTicker(p.config.RefreshRate)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.active {
				p.render(false)
			}
			p.mu.Unlock()
		}
	}
}

func (p *progress) render(failed bool) {
	output := p.renderer.render(p.status, p.message, p.calculateStats(), failed)
	p.clearLine()
	fmt.Fprint(p.writer, output)
}

func (p *progress) clearLine() {
	if p.IsSupportedTerminal() {
		fmt.Fprint(p.writer, "\r\033[K")
	} else {
		fmt.Fprint(p.writer, "\r")
	}
}

func (p *progress) terminalWidth() int {
	if f, ok := p.writer.(*os.File); ok && p.IsSupportedTerminal() {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			return w
		}
	}
	return 80
}

func (p *progress) calculateStats() Statistics {
	var stats Statistics
	if p.startTime.IsZero() {
		return stats
	}

	stats.ElapsedTime = time.Since(p.startTime)

	if p.status.Total > 0 {
		stats.ProgressPercentage = float64(p.status.Current) / float64(p.status.Total) * 100
		if stats.ProgressPercentage > 100 {
			stats.ProgressPercentage = 100
		}
	}

	if p.status.Current > 0 && stats.ElapsedTime > 0 {
		stats.ProcessingSpeed = float64(p.status.Current) / stats.ElapsedTime.Seconds()
		if remaining := p.status.Total - p.status.Current; remaining > 0 {
			stats.RemainingTime = time.Duration(float64(remaining) / stats.ProcessingSpeed * float64(time.Second))
		}
	}

	return stats
}

func (p *progress) createRenderer() renderer {
	colors := newPalette(p.config.NoColor)

	if p.config.Style == StyleBar {
		return &barRenderer{
			width:     p.width,
			showStats: p.config.ShowStats,
			colors:    colors,
		}
	}
	return &simpleRenderer{
		showStats: p.config.ShowStats,
		colors:    colors,
	}
}

// Nop returns a Progress that prints nothing
func Nop() Progress {
	return nop{}
}

type nop struct{}

func (nop) Start(string)              {}
func (nop) Update(Status)             {}
func (nop) Complete(string)           {}
func (nop) Error(string)              {}
func (nop) Stop()                     {}
func (nop) IsSupportedTerminal() bool { return false }
