/*
Package commands implements the CLI command structure for pngshrink.
It provides the root command, which compresses the PNG files given as
arguments, and the version subcommand.
*/
package commands

import (
	"fmt"

	"github.com/sonemaro/pngshrink/cmd/pngshrink/app"
	"github.com/sonemaro/pngshrink/internal/config"
	"github.com/sonemaro/pngshrink/internal/version"
	"github.com/spf13/cobra"
)

// Options holds command-line flags. A flag only overrides the environment
// when it was set explicitly.
type Options struct {
	Workers         int
	RateLimit       int
	NoPNG           bool
	NoWebP          bool
	RemoveLargerPNG bool
	Output          string
	OutputFile      string
	NoProgress      bool
	NoColor         bool
	Verbose         int
}

// NewRootCommand creates the root command for the application
func NewRootCommand() *cobra.Command {
	return newRootCommand(&Options{})
}

func newRootCommand(opts *Options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pngshrink [flags] FILE...",
		Short: "Losslessly shrink PNG images and keep a WebP copy when smaller",
		Long: `pngshrink ` + version.Version + `

Recompresses each PNG in place with zopflipng, using one worker per physical
core, then converts every image to WebP with cwebp and keeps whichever file is
smaller. A larger WebP is always deleted; a larger PNG is deleted only with
--remove-larger-png.

Environment variables (flags take precedence):
  PNGSHRINK_WORKERS, PNGSHRINK_RATE_LIMIT, PNGSHRINK_ZOPFLIPNG, PNGSHRINK_CWEBP,
  PNGSHRINK_NO_PNG, PNGSHRINK_NO_WEBP, PNGSHRINK_REMOVE_LARGER_PNG,
  PNGSHRINK_OUTPUT, PNGSHRINK_OUTPUT_FILE, PNGSHRINK_NO_PROGRESS,
  PNGSHRINK_NO_COLOR, PNGSHRINK_VERBOSE`,
		Example: `  pngshrink icons/*.png
  pngshrink --no-webp -w 4 logo.png banner.png
  pngshrink --remove-larger-png -o json -f report.json assets/*.png`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			application, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			return application.Run(args)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.NoPNG, "no-png", false, "skip PNG recompression")
	flags.BoolVar(&opts.NoWebP, "no-webp", false, "skip WebP conversion")
	flags.BoolVar(&opts.RemoveLargerPNG, "remove-larger-png", false,
		"delete the PNG when its WebP is not larger")
	flags.IntVarP(&opts.Workers, "workers", "w", 0,
		"number of concurrent PNG recompressions (0 = physical cores)")
	flags.IntVarP(&opts.RateLimit, "rate-limit", "r", 0,
		"maximum encoder launches per second (0 = unlimited)")
	flags.StringVarP(&opts.Output, "output", "o", string(config.OutputFormatText),
		"report format: text|json|yaml")
	flags.StringVarP(&opts.OutputFile, "file", "f", "",
		"write the report to a file instead of stdout")

	persistent := rootCmd.PersistentFlags()
	persistent.BoolVar(&opts.NoProgress, "no-progress", false, "disable progress reporting")
	persistent.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	persistent.CountVarP(&opts.Verbose, "verbose", "v",
		"verbose output (can be used multiple times)")

	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// loadConfig reads the environment and applies the flags set on cmd
func loadConfig(cmd *cobra.Command, opts *Options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = opts.Workers
		if cfg.Workers == 0 {
			cfg.Workers = config.Default().Workers
		}
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit = opts.RateLimit
	}
	if flags.Changed("no-png") {
		cfg.NoPNG = opts.NoPNG
	}
	if flags.Changed("no-webp") {
		cfg.NoWebP = opts.NoWebP
	}
	if flags.Changed("remove-larger-png") {
		cfg.RemoveLargerPNG = opts.RemoveLargerPNG
	}
	if flags.Changed("output") {
		cfg.Output = opts.Output
	}
	if flags.Changed("file") {
		cfg.OutputFile = opts.OutputFile
	}
	if flags.Changed("no-progress") {
		cfg.NoProgress = opts.NoProgress
	}
	if flags.Changed("no-color") {
		cfg.NoColor = opts.NoColor
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.Verbose
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
