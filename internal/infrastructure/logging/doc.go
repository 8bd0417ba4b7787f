// Package logging provides structured logging for the looking glass.
//
// It wraps log/slog with:
//
//   - JSON (default) or text output
//   - level filtering (debug, info, warn, error)
//   - default fields service=lookingglass and version
//   - redaction of attributes named password, token or secret
//
// Configured by the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("listening", "port", 8080)
//
// Redaction is a backstop. Device credentials must still never be passed
// to a log call.
package logging
