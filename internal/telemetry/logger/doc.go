// Package logger provides structured logging for cohortdb-go.
//
// This package wraps the standard library log/slog to provide
// high-performance, structured JSON logging with automatic sensitive-data
// redaction:
//
//   - logger.go: slog-backed Logger implementation and configuration
//   - context.go: context-aware logging with request/trace ID propagation
//   - redact.go: sensitive data redaction
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, adjustable at runtime
//   - Automatic masking of cdbauth_-prefixed values and of values logged
//     under sensitive-looking keys; node URLs are logged as-is
//   - Context propagation for request tracing
package logger
