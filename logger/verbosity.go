package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
const (
	VerbosityUser  = 0 // No flags: saved files, warnings and errors
	VerbosityDebug = 1 // -v: + discovered files, queries, resolver details
	VerbosityTrace = 2 // -vv: + worker scheduling and watch events
)

// VerbosityToLevel maps verbosity flags (-v, -vv) to zap log levels
//
// Mapping:
//
//	0 (none)  -> InfoLevel  (one line per generated file)
//	1+ (-v)   -> DebugLevel
func VerbosityToLevel(verbosity int) zapcore.Level {
	if verbosity <= VerbosityUser {
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

// ShouldLogTrace returns true for verbosity >= 2 (-vv)
func ShouldLogTrace(verbosity int) bool {
	return verbosity >= VerbosityTrace
}

// LevelName returns a human-readable name for verbosity level
func LevelName(verbosity int) string {
	switch {
	case verbosity <= VerbosityUser:
		return "User"
	case verbosity == VerbosityDebug:
		return "Debug (-v)"
	default:
		return "Trace (-vv+)"
	}
}
