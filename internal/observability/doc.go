// Package observability provides structured logging and metrics
// for the web-core service.
//
// This package implements:
//   - Structured logging with contextual fields (zap-based)
//   - A masking zapcore.Core that desensitizes sensitive JSON fields
//   - Trace and request ID propagation through context.Context
//   - Prometheus HTTP request metrics
//
// Every log entry written through NewLogger passes the masking core
// before it reaches an encoder.
package observability
