package percept

// Error is a wrapper for specific types of errors for which there is no
// additional information necessary. These errors are defined as global
// variables so that callers can compare against them directly.
type Error struct{ string }

func (err Error) Error() string {
	return err.string
}

// These are the global errors that may be returned by the engine.
var (
	// ErrCancelled is returned when an external cancellation signal is
	// observed at a poll point. No weight state is guaranteed consistent
	// after it has been returned.
	ErrCancelled = Error{"training cancelled"}

	// ErrRateExhausted is returned when divergence recovery would halve the
	// learning rate below the supported minimum.
	ErrRateExhausted = Error{"learning rate exhausted during divergence recovery"}

	// ErrDivergence is returned when the aggregate epoch error is NaN or
	// infinite and recovery is disabled or no original data was retained.
	ErrDivergence = Error{"aggregate training error diverged"}

	// ErrNotSuspended is returned by operations that are only legal while
	// the training loop is parked between epochs.
	ErrNotSuspended = Error{"engine is not suspended"}
)

// CapabilityError documents a dataset that violates the engine's declared
// attribute/class-type support. It is raised before any graph construction
// and is not recoverable.
type CapabilityError struct{ string }

func (err CapabilityError) Error() string {
	return "dataset not supported: " + err.string
}
