package config

import "github.com/sonemaro/pngshrink/pkg/encoder"

// OutputFormat represents the supported run report formats
type OutputFormat string

const (
	// OutputFormatText is the human readable report
	OutputFormatText OutputFormat = "text"

	// OutputFormatJSON represents the JSON report format
	OutputFormatJSON OutputFormat = "json"

	// OutputFormatYAML represents the YAML report format
	OutputFormatYAML OutputFormat = "yaml"
)

// Constants for configuration limits and defaults
const (
	// EnvPrefix is prepended to every environment variable
	EnvPrefix = "PNGSHRINK"

	// MaxWorkerMultiplier is the maximum multiple of CPU cores for worker count
	MaxWorkerMultiplier = 4

	// DefaultPNGBinary is the PNG re-compressor looked up on PATH
	DefaultPNGBinary = encoder.DefaultPNGBinary

	// DefaultWebPBinary is the WebP encoder looked up on PATH
	DefaultWebPBinary = encoder.DefaultWebPBinary
)
