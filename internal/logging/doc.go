// Package logging provides structured logging for the streammagic client and CLI.
//
// This package wraps a global zap logger. It is silent by default so that the
// library produces no output unless a caller asks for it.
//
// # Log Levels
//
//   - Debug: every request and response (request id, URL, status, timing)
//   - Info: CLI operations and fake device activity
//   - Warn: retries
//   - Error: failures surfaced to the user
//
// # Configuration
//
// Initialize logging at CLI startup:
//
//	if err := logging.Initialize(levelFlag); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// An empty level falls back to the STREAMMAGIC_LOG_LEVEL environment variable;
// if that is unset too, logging stays silent.
//
// # Structured Logging
//
//	logging.Debug("Sending request",
//	    logging.RequestFields(id, "GET", url, 1)...,
//	)
//
// Logs are written to stderr in console format so that command output on
// stdout stays machine-readable.
package logging
