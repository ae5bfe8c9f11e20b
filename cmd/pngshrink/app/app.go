/*
Package app provides the application container and orchestration for pngshrink.
It wires the encoders, the worker pool, the selector, progress reporting and the
run report, and runs the two compression phases in order.

The container manages:
- Logger tagged with a per-run ID
- Worker pool for PNG recompression
- Selector for WebP conversion and winner selection
- Progress visualization
- Report formatting

Usage:

	app, err := app.New(cfg)
	if err != nil {
	    log.Fatal(err)
	}
	defer app.Shutdown()

	if err := app.Run(paths); err != nil {
	    log.Fatal(err)
	}
*/
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sonemaro/pngshrink/internal/config"
	"github.com/sonemaro/pngshrink/pkg/encoder"
	"github.com/sonemaro/pngshrink/pkg/input"
	"github.com/sonemaro/pngshrink/pkg/logger"
	"github.com/sonemaro/pngshrink/pkg/output"
	"github.com/sonemaro/pngshrink/pkg/progress"
	"github.com/sonemaro/pngshrink/pkg/selector"
	"github.com/sonemaro/pngshrink/pkg/worker"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

// SuccessMessage is printed once both phases have run
const SuccessMessage = "Compression successful."

// App represents the main application container
type App struct {
	config *config.Config
	log    logger.Logger
	runID  string

	fs     afero.Fs
	runner encoder.Runner
	stdout io.Writer
	stderr io.Writer

	png       encoder.Encoder
	webp      encoder.Encoder
	pool      *worker.Pool
	selector  *selector.Selector
	formatter output.Formatter
	progress  progress.Progress

	pngPhase  *phase
	webpPhase *phase

	ctx      context.Context
	cancel   context.CancelFunc
	signals  chan os.Signal
	stopOnce sync.Once
	mu       sync.Mutex
}

// Option customizes an App
type Option func(*App)

// WithFs replaces the OS filesystem
func WithFs(fs afero.Fs) Option {
	return func(a *App) { a.fs = fs }
}

// WithRunner replaces the process runner used by both encoders
func WithRunner(r encoder.Runner) Option {
	return func(a *App) { a.runner = r }
}

// WithLogger replaces the zap logger
func WithLogger(log logger.Logger) Option {
	return func(a *App) { a.log = log }
}

// WithOutput redirects the report and final message
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// New creates a new application instance
func New(cfg *config.Config, opts ...Option) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		config: cfg,
		runID:  uuid.NewString(),
		fs:     afero.NewOsFs(),
		runner: encoder.ExecRunner{},
		stdout: os.Stdout,
		stderr: os.Stderr,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.initLogger()
	if err := a.initComponents(); err != nil {
		cancel()
		return nil, err
	}

	a.log.WithFields(logger.Fields{
		"workers":   cfg.Workers,
		"rateLimit": cfg.RateLimit,
		"noPNG":     cfg.NoPNG,
		"noWebP":    cfg.NoWebP,
		"verbose":   cfg.Verbose,
	}).Debug("Application initialized")

	return a, nil
}

// RunID returns the identifier attached to every log entry of this run
func (a *App) RunID() string {
	return a.runID
}

// Run validates paths and runs the recompression and conversion phases.
// Encoder, size and removal failures are logged per image and never fail the
// run; only invalid input, an unwritable report or an internal error do.
func (a *App) Run(paths []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.log.WithFields(logger.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Recovered from panic")
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	a.log.WithFields(logger.Fields{
		"images": len(paths),
		"format": a.config.Output,
	}).Info("Starting compression run")

	if len(paths) == 0 {
		a.log.Warn("No images given")
	}

	if err := input.Validate(a.fs, paths); err != nil {
		a.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Invalid input")
		return fmt.Errorf("invalid input: %w", err)
	}

	report := &output.Report{
		RunID:  a.runID,
		Images: paths,
	}

	if a.config.NoPNG {
		a.log.Info("Skipping PNG recompression")
	} else {
		stats, err := a.runPNG(paths)
		if err != nil {
			return err
		}
		report.PNG = &stats
	}

	switch {
	case a.config.NoWebP:
		a.log.Info("Skipping WebP conversion")
		report.WebPSkipped = true
	case a.ctx.Err() != nil:
		// every conversion would fail and leave only stale files to compare
		a.log.Warn("Interrupted, skipping WebP conversion")
		report.WebPSkipped = true
	default:
		report.Decisions = a.runWebP(paths)
	}

	formatted, err := a.formatter.Format(report)
	if err != nil {
		return fmt.Errorf("report formatting failed: %w", err)
	}
	if err := a.writeOutput(formatted, a.config.OutputFile); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// a structured report on stdout must stay parseable
	msgOut := a.stdout
	if f := output.Format(a.config.Output); a.config.OutputFile == "" && f != output.FormatText && f != "" {
		msgOut = a.stderr
	}
	fmt.Fprintln(msgOut, SuccessMessage)

	a.log.WithFields(logger.Fields{
		"images": len(paths),
	}).Info("Compression run completed")

	return nil
}

// runPNG recompresses every path in place with the worker pool
func (a *App) runPNG(paths []string) (worker.Stats, error) {
	a.log.WithFields(logger.Fields{
		"workers": a.config.Workers,
	}).Info("Start PNG compression")

	a.pngPhase.reset(len(paths))
	a.progress.Start("PNG")

	stats, err := a.pool.Drain(a.ctx, worker.NewQueue(paths), a.png.Encode)
	if err != nil {
		a.progress.Error("PNG")
		return stats, fmt.Errorf("png compression failed: %w", err)
	}

	a.pngPhase.finish("PNG")
	return stats, nil
}

// runWebP converts every path and keeps the smaller encoding
func (a *App) runWebP(paths []string) []selector.Decision {
	a.log.Info("Start WebP conversion")

	a.webpPhase.reset(len(paths))
	a.progress.Start("WebP")

	decisions := a.selector.Run(a.ctx, paths)

	a.webpPhase.finish("WebP")
	return decisions
}

// Shutdown cancels a running phase and releases resources
func (a *App) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.log.Debug("Shutting down")

	a.cancel()
	a.progress.Stop()
	a.stopSignalHandling()

	if err := logger.Sync(a.log); err != nil {
		a.log.WithFields(logger.Fields{
			"error": err,
		}).Debug("Failed to flush logger")
	}
	return nil
}

func (a *App) initLogger() {
	if a.log == nil {
		encoding := logger.EncodingJSON
		if f, ok := a.stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			encoding = logger.EncodingConsole
		}
		a.log = logger.NewLogger(logger.Config{
			Verbosity: a.config.Verbose,
			Encoding:  encoding,
			Output:    a.stderr,
		})
	}

	a.log = a.log.WithFields(logger.Fields{
		"run": a.runID,
	})

	a.log.WithFields(logger.Fields{
		"verbosity": a.config.Verbose,
	}).Debug("Logger initialized")
}

func (a *App) initComponents() error {
	a.log.Debug("Initializing application components")

	if a.config.NoProgress {
		a.progress = progress.Nop()
	} else {
		a.progress = progress.New(progress.Config{
			Style:       progress.StyleBar,
			ShowStats:   true,
			NoColor:     a.config.NoColor,
			RefreshRate: 100 * time.Millisecond,
		}, a.log)
	}
	a.pngPhase = &phase{progress: a.progress}
	a.webpPhase = &phase{progress: a.progress}

	a.png = encoder.NewPNG(a.config.PNGBinary, a.runner)
	a.webp = encoder.NewWebP(a.config.WebPBinary, a.runner)

	pool, err := worker.NewPool(worker.Config{
		Workers:   a.config.Workers,
		RateLimit: a.config.RateLimit,
		OnDone:    a.pngPhase.record,
	}, a.log)
	if err != nil {
		a.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to initialize worker pool")
		return fmt.Errorf("failed to initialize worker pool: %w", err)
	}
	a.pool = pool

	a.selector = selector.New(selector.Config{
		AllowRemoveLargerPNG: a.config.RemoveLargerPNG,
		OnConverted:          a.webpPhase.record,
	}, a.fs, a.webp, a.log)

	a.formatter = output.NewFormatter(output.Config{
		Format:     output.Format(a.config.Output),
		WithStats:  true,
		WithColors: a.colorReport(),
	}, a.log)

	a.setupSignalHandling()

	a.log.Debug("Components initialized successfully")
	return nil
}

// colorReport reports whether the text report goes to a color terminal
func (a *App) colorReport() bool {
	if a.config.NoColor || a.config.OutputFile != "" {
		return false
	}
	f, ok := a.stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeOutput writes the formatted report to the specified destination
func (a *App) writeOutput(content string, outputPath string) error {
	a.log.WithFields(logger.Fields{
		"path": outputPath,
	}).Debug("Writing report")

	if outputPath == "" {
		_, err := fmt.Fprint(a.stdout, content)
		if err != nil {
			a.log.WithFields(logger.Fields{
				"error": err,
			}).Error("Failed to write to stdout")
		}
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := a.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := afero.WriteFile(a.fs, outputPath, []byte(content), 0644); err != nil {
		a.log.WithFields(logger.Fields{
			"error": err,
			"path":  outputPath,
		}).Error("Failed to write report file")
		return fmt.Errorf("failed to write report file: %w", err)
	}

	a.log.WithFields(logger.Fields{
		"path": outputPath,
	}).Info("Report written successfully")
	return nil
}

// phase feeds per-image completions of one phase into the progress display
type phase struct {
	progress progress.Progress
	total    atomic.Int64
	done     atomic.Int64
	failed   atomic.Int64
}

func (p *phase) reset(total int) {
	p.total.Store(int64(total))
	p.done.Store(0)
	p.failed.Store(0)
}

// record is called concurrently by pool workers
func (p *phase) record(path string, err error) {
	if err != nil {
		p.failed.Add(1)
	}
	p.progress.Update(progress.Status{
		Current:     p.done.Add(1),
		Total:       p.total.Load(),
		Failed:      p.failed.Load(),
		CurrentItem: path,
	})
}

func (p *phase) finish(label string) {
	if p.failed.Load() > 0 {
		p.progress.Error(label)
		return
	}
	p.progress.Complete(label)
}
