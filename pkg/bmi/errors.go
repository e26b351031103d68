package bmi

import "errors"

// Adapter error taxonomy. All errors are returned synchronously to the
// immediate caller; retry policy, if any, belongs to the orchestrator.
// Engine-level failures (native step faults, unknown variable names)
// propagate unmodified.
var (
	// ErrNotConfigured is returned on attribute or time access before the
	// configuration has been loaded.
	ErrNotConfigured = errors.New("model configuration not initialized")

	// ErrAlreadyInitialized is returned when InitializeConfig is called
	// after the model itself has been initialized.
	ErrAlreadyInitialized = errors.New("model already initialized")

	// ErrAlreadyFinished is returned by Update once the end time has been
	// reached.
	ErrAlreadyFinished = errors.New("model end time already reached")

	// ErrInvalidTimeRange is returned for a target time outside
	// [current, end] or an end time that does not exceed the start time.
	ErrInvalidTimeRange = errors.New("time outside valid model range")

	// ErrInvalidTimeFormat is returned for a start or end time that is
	// neither a time.Time nor a YYYY-MM-DD string.
	ErrInvalidTimeFormat = errors.New("invalid time format, use yyyy-mm-dd")
)
