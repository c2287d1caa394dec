// Package logging provides structured logging for the goe tools.
//
// This package wraps zap with convenience functions shared by the library and
// the command-line tools. Logging is silent by default so that CLI output
// stays clean; set the GOE_LOG_LEVEL environment variable to enable it.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (request URLs, response sizes)
//   - Info: Normal operations (scrapes, settings applied)
//   - Warn: Non-fatal issues (partial scrape failures)
//   - Error: Fatal issues (startup failures)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Debug("charger request",
//	    zap.String("host", "192.168.1.40"),
//	    zap.String("url", url),
//	)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
