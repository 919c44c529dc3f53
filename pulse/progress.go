package pulse

// ProgressEmitter receives job lifecycle events from a FileProcessor.
// Implementations must be safe for concurrent use; events for different
// paths arrive from different goroutines.
type ProgressEmitter interface {
	// EmitQueued announces a path entering the queue
	EmitQueued(path string)

	// EmitOutcome announces a settled job, successful or not
	EmitOutcome(o Outcome)
}

// nopEmitter discards events
type nopEmitter struct{}

func (nopEmitter) EmitQueued(string)    {}
func (nopEmitter) EmitOutcome(Outcome) {}
