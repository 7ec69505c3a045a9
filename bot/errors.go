package bot

import "errors"

// Sentinel errors for the failure categories the engine distinguishes.
var (
	// ErrNotFound - a lookup yielded nothing; user-facing, non-fatal
	ErrNotFound = errors.New("not found")

	// ErrDependencyDegraded - classifier/similarity/insight call failed;
	// resolved to a documented default, never surfaced to the user
	ErrDependencyDegraded = errors.New("dependency degraded")

	// ErrPersistence - a record store write failed
	ErrPersistence = errors.New("persistence failure")

	// ErrUnknownIntent - the resolver sent an intent this engine does not
	// fulfill; a contract mismatch, surfaced to operators rather than users
	ErrUnknownIntent = errors.New("intent not supported by dispatcher")
)

// ValidationError is a missing/malformed required input. Prompt is the
// corrective message shown to the user on the Failed turn.
type ValidationError struct {
	Prompt string
}

func (e *ValidationError) Error() string { return e.Prompt }
