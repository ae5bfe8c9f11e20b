/*
Package logger wraps uber-go/zap behind a small interface with verbosity levels
and structured fields. Every pngshrink component logs through it.

Basic Usage:

	log := logger.NewLogger(logger.Config{
	    Verbosity: 0,
	    Encoding:  logger.EncodingConsole,
	})

	log.Info("Start PNG compression")
	log.Debug("Worker claimed image") // Only shown with verbosity >= 1
	log.Trace("Queue length 12")      // Only shown with verbosity >= 2

Verbosity Levels:

	0: Info, Warn, Error (default)
	1: Debug + Level 0
	2: Trace + Level 1

Structured Logging:

	log.WithFields(logger.Fields{
	    "path":  "assets/logo.png",
	    "error": err,
	}).Error("Failed to compress PNG")

Output Example (JSON):

	{
	    "level": "error",
	    "ts": "2024-01-20T15:04:05.000Z",
	    "message": "Failed to compress PNG",
	    "path": "assets/logo.png",
	    "error": "zopflipng exited with status 1"
	}

The logger is safe for concurrent use; pool workers share one instance.
*/
package logger
