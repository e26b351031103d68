// Package engine defines the capability boundary to the wrapped
// hydrodynamic model and a registry of available engine implementations.
//
// An Engine is opaque: the adapter never sees its solver, file I/O or
// stepping internals, only the control and query primitives below. Engines
// read their configuration from disk, never from an in-memory structure,
// which is why the adapter serializes its configuration immediately before
// Initialize.
package engine

import "github.com/ctessum/sparse"

// Engine is the model-control surface exposed by a wrapped model.
//
// All time offsets are in seconds relative to the model's own zero time.
// One Update performs one native step whose duration is chosen internally
// (adaptive timestep); callers must not assume it matches TimeStep from
// one call to the next.
type Engine interface {
	// Initialize starts the model from the configuration file at path.
	Initialize(path string) error

	// Update advances the model by one native step.
	Update() error

	// Finalize shuts the model down and releases its resources.
	Finalize() error

	// StartTime returns the model start offset.
	StartTime() float64

	// CurrentTime returns the model's current offset.
	CurrentTime() float64

	// EndTime returns the model end offset. Some models report this
	// unreliably after initialization; treat it as best-effort.
	EndTime() float64

	// TimeStep returns the duration of the next native step. Adaptive
	// models may return a different value on every call.
	TimeStep() float64

	// Var returns the live buffer for the named variable. The buffer
	// aliases engine memory and is writable: models with no setter are
	// mutated by writing into it. An unknown name is the engine's error
	// to report.
	Var(name string) (*sparse.DenseArray, error)
}
