package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity
	FieldJobID  = "job_id"
	FieldWorker = "worker"

	// Components
	FieldComponent = "component"
	FieldTransform = "transform"

	// Queries
	FieldQuery    = "query"
	FieldTypeName = "type_name"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError     = "error"
	FieldErrorKind = "error_kind"

	// Counts
	FieldCount        = "count"
	FieldTotalCount   = "total_count"
	FieldFailedCount  = "failed_count"
	FieldPendingCount = "pending_count"

	// Files and paths
	FieldFile    = "file"
	FieldOutput  = "output"
	FieldPattern = "pattern"
	FieldOp      = "op"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	pool, err := pulse.NewPool(ctx, pulse.PoolConfig{Factory: factory}, logger.ComponentLogger("pgtyped"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
//	fileLogger := logger.ChildLogger(base, logger.FieldFile, path)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
