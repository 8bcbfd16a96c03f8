package reactive

// DebugConfig controls debug logging for a Runtime.
// Records are emitted at slog.LevelDebug on the runtime's logger.
type DebugConfig struct {
	// LogEffectRuns logs each effect run with its duration.
	LogEffectRuns bool

	// LogRecomputes logs each Computed recomputation.
	LogRecomputes bool

	// LogFanOuts logs each signal or computed fan-out with its width.
	LogFanOuts bool
}

// DefaultDebugConfig returns a DebugConfig with all debugging disabled.
func DefaultDebugConfig() DebugConfig {
	return DebugConfig{}
}
