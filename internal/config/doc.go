// Package config provides configuration management for pngshrink. Values come
// from PNGSHRINK_* environment variables via viper; command-line flags
// override them.
//
// # Configuration Loading
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Variables
//
//	PNGSHRINK_WORKERS            Concurrent PNG re-compressors (0: physical cores)
//	PNGSHRINK_RATE_LIMIT         Encoder launches per second (0 for unlimited)
//	PNGSHRINK_ZOPFLIPNG          PNG re-compressor executable (default: zopflipng)
//	PNGSHRINK_CWEBP              WebP encoder executable (default: cwebp)
//	PNGSHRINK_NO_PNG             Skip PNG recompression (true/false)
//	PNGSHRINK_NO_WEBP            Skip WebP conversion (true/false)
//	PNGSHRINK_REMOVE_LARGER_PNG  Delete a PNG that lost to its WebP (true/false)
//	PNGSHRINK_OUTPUT             Report format: text|json|yaml
//	PNGSHRINK_OUTPUT_FILE        Report file path (empty for stdout)
//	PNGSHRINK_NO_PROGRESS        Disable progress reporting (true/false)
//	PNGSHRINK_NO_COLOR           Disable colored output (true/false)
//	PNGSHRINK_VERBOSE            Verbosity level (number of 'v's)
//
// # Configuration Validation
//
//   - Workers must be positive and not exceed CPU cores * 4
//   - RateLimit must be non-negative
//   - Encoder binaries must not be empty
//   - Output format must be one of: text, json, yaml
//
// The configuration is immutable after loading and is safe for concurrent
// access.
package config
