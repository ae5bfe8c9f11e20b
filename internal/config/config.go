package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/sonemaro/pngshrink/pkg/worker"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Workers is the number of concurrent PNG re-compressors
	Workers int

	// RateLimit is the maximum number of encoder launches per second (0 for unlimited)
	RateLimit int

	// PNGBinary is the PNG re-compressor executable
	PNGBinary string

	// WebPBinary is the WebP encoder executable
	WebPBinary string

	// NoPNG skips the PNG recompression phase
	NoPNG bool

	// NoWebP skips the WebP conversion and selection phase
	NoWebP bool

	// RemoveLargerPNG allows deleting an original PNG that lost to its WebP
	RemoveLargerPNG bool

	// Output specifies the report format (text, json or yaml)
	Output string

	// OutputFile is the path to write the report (empty for stdout)
	OutputFile string

	// NoProgress disables progress reporting
	NoProgress bool

	// NoColor disables colored output
	NoColor bool

	// Verbose sets the verbosity level
	Verbose int
}

var validOutputFormats = map[OutputFormat]bool{
	OutputFormatText: true,
	OutputFormatJSON: true,
	OutputFormatYAML: true,
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Workers:    worker.DefaultWorkers(),
		PNGBinary:  DefaultPNGBinary,
		WebPBinary: DefaultWebPBinary,
		Output:     string(OutputFormatText),
	}
}

// Load reads configuration from environment variables and validates it
func Load() (Config, error) {
	v := viper.New()
	def := Default()

	v.SetDefault("workers", 0)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("zopflipng", def.PNGBinary)
	v.SetDefault("cwebp", def.WebPBinary)
	v.SetDefault("no_png", false)
	v.SetDefault("no_webp", false)
	v.SetDefault("remove_larger_png", false)
	v.SetDefault("output", def.Output)
	v.SetDefault("output_file", "")
	v.SetDefault("no_progress", false)
	v.SetDefault("no_color", false)
	v.SetDefault("verbose", "")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	cfg := Config{
		Workers:         v.GetInt("workers"),
		RateLimit:       v.GetInt("rate_limit"),
		PNGBinary:       strings.TrimSpace(v.GetString("zopflipng")),
		WebPBinary:      strings.TrimSpace(v.GetString("cwebp")),
		NoPNG:           v.GetBool("no_png"),
		NoWebP:          v.GetBool("no_webp"),
		RemoveLargerPNG: v.GetBool("remove_larger_png"),
		Output:          v.GetString("output"),
		OutputFile:      v.GetString("output_file"),
		NoProgress:      v.GetBool("no_progress"),
		NoColor:         v.GetBool("no_color"),
		Verbose:         strings.Count(v.GetString("verbose"), "v"),
	}

	// zero means one worker per physical core
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers count must be positive")
	}
	maxWorkers := runtime.NumCPU() * MaxWorkerMultiplier
	if c.Workers > maxWorkers {
		return fmt.Errorf("workers count cannot exceed system CPU count * %d", MaxWorkerMultiplier)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}

	if c.PNGBinary == "" {
		return fmt.Errorf("PNG encoder binary must not be empty")
	}
	if c.WebPBinary == "" {
		return fmt.Errorf("WebP encoder binary must not be empty")
	}

	if !validOutputFormats[OutputFormat(c.Output)] {
		return fmt.Errorf("invalid output format: must be one of [text json yaml]")
	}

	return nil
}

// String returns a string representation of the configuration
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Workers: %d, RateLimit: %d, PNGBinary: %s, WebPBinary: %s, "+
			"NoPNG: %v, NoWebP: %v, RemoveLargerPNG: %v, Output: %s, "+
			"OutputFile: %s, NoProgress: %v, NoColor: %v, Verbose: %d}",
		c.Workers, c.RateLimit, c.PNGBinary, c.WebPBinary,
		c.NoPNG, c.NoWebP, c.RemoveLargerPNG, c.Output,
		c.OutputFile, c.NoProgress, c.NoColor, c.Verbose,
	)
}
