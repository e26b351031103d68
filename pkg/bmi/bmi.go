// Package bmi defines the model-adapter contract for floodlink.
//
// An adapter wraps one external hydrodynamic model behind a uniform
// configure → initialize → step → finalize lifecycle so that a coupling
// framework can drive heterogeneous models through one interface. The
// adapter translates between the framework's calendar time, raster grid
// and variable conventions and the wrapped model's native configuration
// format and variable names; it performs no simulation itself.
package bmi

import (
	"time"

	"github.com/ctessum/sparse"

	"github.com/floodlink-io/floodlink/pkg/rgrid"
)

// Model is the interface every floodlink model adapter implements.
//
// Lifecycle: InitializeConfig must be called before InitializeModel; after
// InitializeModel the configuration may no longer be re-initialized. Update
// and UpdateUntil advance the wrapped engine; Finalize releases it. All
// methods are synchronous and the adapter is not safe for concurrent use;
// a single orchestrator owns one adapter per wrapped model.
type Model interface {
	// InitializeConfig loads the model's native configuration file.
	// Defaults are merged in for keys absent from the file.
	InitializeConfig(path string, defaults map[string]string) error

	// InitializeModel serializes the (possibly mutated) configuration back
	// to disk and hands it to the wrapped engine. The engine reads only
	// from disk, never from the in-memory record.
	InitializeModel() error

	// Initialize is InitializeConfig (with no defaults) followed by
	// InitializeModel. If the configuration is already loaded, only the
	// model is initialized.
	Initialize(path string) error

	// Update advances the model by dt seconds, or by one model timestep
	// when dt <= 0. The engine's native step is adaptive and may be
	// smaller than dt; Update loops over native steps until the target
	// time is reached.
	Update(dt float64) error

	// UpdateUntil advances the model until t is reached. dt is passed
	// through to each Update call.
	UpdateUntil(t time.Time, dt float64) error

	// Finalize shuts the engine down. The adapter cannot be stepped again.
	Finalize() error

	// StartTime returns the model start as a calendar timestamp derived
	// from the reference date plus the engine's start offset.
	StartTime() (time.Time, error)
	CurrentTime() (time.Time, error)
	EndTime() (time.Time, error)

	// TimeStep returns the model timestep in seconds. After model
	// initialization this queries the engine and may change call to call.
	TimeStep() (float64, error)

	// TimeUnits returns the fixed unit of engine time offsets.
	TimeUnits() string

	// Value returns a copy of the named variable with cells outside the
	// variable's validity mask set to NaN. The returned array never
	// aliases engine memory.
	Value(name string) (*sparse.DenseArray, error)

	// ValueAt gathers values at the given indices into the row-major
	// flattening of the masked array.
	ValueAt(name string, inds []int) ([]float64, error)

	// SetValue sanitizes src (NaN inside the mask becomes zero, NaN
	// outside becomes fill, values are cast to the variable's declared
	// type) and writes it into the engine's live buffer in place.
	SetValue(name string, src *sparse.DenseArray, fill float64) error

	// SetValueAt overwrites the given flattened positions and writes the
	// result back through SetValue.
	SetValueAt(name string, inds []int, src []float64) error

	// Grid returns the model grid, building and caching it on first use.
	Grid() (*rgrid.RGrid, error)

	AttributeNames() ([]string, error)
	AttributeValue(name string) (string, error)
	SetAttributeValue(name, value string) error

	// SetStartTime and SetEndTime accept either a time.Time or a string
	// in YYYY-MM-DD form and persist the override into the configuration.
	SetStartTime(v any) error
	SetEndTime(v any) error
}

// Role marks a variable as exchanged into or out of the model.
type Role int

const (
	RoleNone Role = iota
	RoleInput
	RoleOutput
	RoleBoth
)

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "in"
	case RoleOutput:
		return "out"
	case RoleBoth:
		return "in/out"
	default:
		return "-"
	}
}

// Staggering locates a variable on the model grid. Flux-like quantities
// live on cell edges and carry one extra element along one axis; the
// mapping from variable name to staggering must be total and explicit
// because native array shapes silently differ by one element per axis.
type Staggering int

const (
	// Center variables live at cell centers, shape (H, W).
	Center Staggering = iota
	// EdgeRows variables live on horizontal cell edges, shape (H+1, W).
	EdgeRows
	// EdgeCols variables live on vertical cell edges, shape (H, W+1).
	EdgeCols
)

func (s Staggering) String() string {
	switch s {
	case EdgeRows:
		return "edge-rows"
	case EdgeCols:
		return "edge-cols"
	default:
		return "center"
	}
}

// DType is the numeric type the engine declares for a variable's buffer.
type DType int

const (
	Float64 DType = iota
	Float32
)

func (d DType) String() string {
	if d == Float32 {
		return "float32"
	}
	return "float64"
}

// VarInfo describes one entry of an adapter's fixed variable table.
type VarInfo struct {
	Name       string
	Units      string
	Role       Role
	Staggering Staggering
	Type       DType
}
