package engine

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/ctessum/sparse"

	"github.com/floodlink-io/floodlink/internal/parfile"
	"github.com/floodlink-io/floodlink/internal/raster"
)

func init() {
	Register("kinematic", func() Engine { return &Kinematic{} })
}

const (
	gravity = 9.80665
	// floor water depth for the CFL estimate so dry domains still step
	minDepth = 0.1
	// default Courant number, matching LISFlood-FP's adaptive scheme
	defaultCFL = 0.7
	// linear storage drain rate, 1/s
	drainRate = 1e-5
)

// Kinematic is a built-in in-process reference engine. It reads the same
// parameter file as LISFlood-FP, sizes its variable buffers from the DEM
// raster and advances with a CFL-limited adaptive timestep
// dt = cfl·Δx/√(g·max(h)). The hydraulics are a deliberately crude
// storage-routing scheme: the engine exists so that runs and tests can be
// driven without the external model binary, not to reproduce its solution.
type Kinematic struct {
	t, end, dt0 float64
	dx          float64
	nr, nc      int

	h, qx, qy     *sparse.DenseArray
	qxOld, qyOld  *sparse.DenseArray
	sgcQin, cellA *sparse.DenseArray
	initialized   bool
}

// Initialize reads the parameter file at path and allocates the variable
// buffers from the DEM raster referenced by it.
func (k *Kinematic) Initialize(path string) error {
	par, err := parfile.ParseFile(path)
	if err != nil {
		return fmt.Errorf("kinematic: %w", err)
	}
	dir := filepath.Dir(path)

	simTime, err := parFloat(par, "sim_time")
	if err != nil {
		return fmt.Errorf("kinematic: %w", err)
	}
	dt0, err := parFloat(par, "initial_tstep")
	if err != nil {
		return fmt.Errorf("kinematic: %w", err)
	}

	demFn, ok := par.Get("DEMfile")
	if !ok {
		return fmt.Errorf("kinematic: parameter DEMfile not set")
	}
	dem, err := raster.Open(resolve(demFn, dir))
	if err != nil {
		return fmt.Errorf("kinematic: %w", err)
	}

	k.nr, k.nc = dem.Height, dem.Width
	k.dx = dem.Transform.A
	k.t, k.end, k.dt0 = 0, simTime, dt0

	k.h = sparse.ZerosDense(k.nr, k.nc)
	k.qx = sparse.ZerosDense(k.nr+1, k.nc)
	k.qxOld = sparse.ZerosDense(k.nr+1, k.nc)
	k.qy = sparse.ZerosDense(k.nr, k.nc+1)
	k.qyOld = sparse.ZerosDense(k.nr, k.nc+1)
	k.sgcQin = sparse.ZerosDense(k.nr, k.nc)
	k.cellA = sparse.ZerosDense(k.nr, k.nc)
	for i := range k.cellA.Elements {
		k.cellA.Elements[i] = k.dx * k.dx
	}

	k.initialized = true
	return nil
}

// Update performs one native step of duration TimeStep.
func (k *Kinematic) Update() error {
	if !k.initialized {
		return fmt.Errorf("kinematic: update before initialize")
	}
	if k.t >= k.end {
		return fmt.Errorf("kinematic: update past end time")
	}
	dt := k.TimeStep()

	copy(k.qxOld.Elements, k.qx.Elements)
	copy(k.qyOld.Elements, k.qy.Elements)

	// storage routing: lateral inflow minus a linear drain
	for i := range k.h.Elements {
		h := k.h.Elements[i] + dt*k.sgcQin.Elements[i]/k.cellA.Elements[i]
		h -= h * drainRate * dt
		if h < 0 {
			h = 0
		}
		k.h.Elements[i] = h
	}

	// diagnostic edge fluxes from depth differences across interior edges
	for i := 1; i < k.nr; i++ {
		for j := 0; j < k.nc; j++ {
			dh := k.h.Get(i-1, j) - k.h.Get(i, j)
			k.qx.Set(wave(dh)*dh*k.dx, i, j)
		}
	}
	for i := 0; i < k.nr; i++ {
		for j := 1; j < k.nc; j++ {
			dh := k.h.Get(i, j-1) - k.h.Get(i, j)
			k.qy.Set(wave(dh)*dh*k.dx, i, j)
		}
	}

	k.t += dt
	return nil
}

func wave(dh float64) float64 {
	return math.Sqrt(gravity * math.Max(math.Abs(dh), minDepth))
}

// Finalize releases the engine. Buffers become invalid.
func (k *Kinematic) Finalize() error {
	k.initialized = false
	k.h, k.qx, k.qy, k.qxOld, k.qyOld, k.sgcQin, k.cellA = nil, nil, nil, nil, nil, nil, nil
	return nil
}

func (k *Kinematic) StartTime() float64   { return 0 }
func (k *Kinematic) CurrentTime() float64 { return k.t }
func (k *Kinematic) EndTime() float64     { return k.end }

// TimeStep returns the CFL-limited step, clamped to the initial timestep
// and to the time remaining before the end of the run.
func (k *Kinematic) TimeStep() float64 {
	if !k.initialized {
		return k.dt0
	}
	hmax := minDepth
	for _, h := range k.h.Elements {
		if h > hmax {
			hmax = h
		}
	}
	dt := defaultCFL * k.dx / math.Sqrt(gravity*hmax)
	if dt > k.dt0 {
		dt = k.dt0
	}
	if rem := k.end - k.t; rem > 0 && dt > rem {
		dt = rem
	}
	return dt
}

// Var returns the live buffer for name. The buffer aliases engine memory.
func (k *Kinematic) Var(name string) (*sparse.DenseArray, error) {
	switch name {
	case "H":
		return k.h, nil
	case "Qx":
		return k.qx, nil
	case "QxSGold":
		return k.qxOld, nil
	case "Qy":
		return k.qy, nil
	case "QySGold":
		return k.qyOld, nil
	case "SGCQin":
		return k.sgcQin, nil
	case "dA":
		return k.cellA, nil
	}
	return nil, fmt.Errorf("kinematic: unknown variable %q", name)
}

func parFloat(par *parfile.File, key string) (float64, error) {
	s, ok := par.Get(key)
	if !ok {
		return 0, fmt.Errorf("parameter %s not set", key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", key, err)
	}
	return v, nil
}

func resolve(path, dir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
