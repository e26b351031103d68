// Package lfp implements the floodlink adapter for the LISFlood-FP
// flood-inundation model.
//
// The adapter owns three tightly coupled responsibilities: the model
// time-control state machine (lfp.go, time.go), the variable exchange
// layer that reconciles the rectangular raster grid with LISFlood-FP's
// sub-grid channel topology (vars.go), and the parameter-file attribute
// layer (attributes.go). The numerical model itself is reached only
// through the engine capability boundary.
package lfp

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/floodlink-io/floodlink/internal/engine"
	"github.com/floodlink-io/floodlink/internal/parfile"
	"github.com/floodlink-io/floodlink/pkg/bmi"
	"github.com/floodlink-io/floodlink/pkg/rgrid"
)

const (
	modelName     = "LFP"
	modelLongName = "LISFlood-FP"
	modelVersion  = "5.9"

	dateFormat = "2006-01-02"

	// the engine's zero offset corresponds to this date when the par
	// file carries no refdate; the setting is not mandatory in LFP
	defaultRefDate = "2000-01-01"
)

type phase int

const (
	phaseUnconfigured phase = iota
	phaseConfigured
	phaseInitialized
	phaseFinalized
)

// LFP adapts LISFlood-FP to the bmi.Model contract. Instances are not
// safe for concurrent use; one orchestrator drives one instance
// sequentially.
type LFP struct {
	eng    engine.Engine
	logger *slog.Logger
	phase  phase

	configPath string
	config     *parfile.File
	root       string // directory of the par file
	mapDir     string // directory the raster layers live in
	outDir     string

	// cached model time state; best-effort estimates until the engine is
	// initialized, then refreshed from live engine queries
	start, end, cur time.Time
	dt              time.Duration
	lastIters       int

	grid *rgrid.RGrid
}

var _ bmi.Model = (*LFP)(nil)

// Config configures a new adapter instance.
type Config struct {
	// Engine is the wrapped model-control capability. Required.
	Engine engine.Engine
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates an adapter around the given engine.
func New(cfg Config) (*LFP, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("lfp: engine is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LFP{
		eng:    cfg.Engine,
		logger: logger.With("model", modelName),
	}, nil
}

// Name returns the adapter's short model name.
func (m *LFP) Name() string { return modelName }

// LongName returns the wrapped model's full name.
func (m *LFP) LongName() string { return modelLongName }

// Version returns the wrapped model version the adapter targets.
func (m *LFP) Version() string { return modelVersion }

// InitializeConfig loads the par file at path and derives the initial
// time state from it. Defaults are merged for keys the file omits; a
// refdate default is always supplied.
func (m *LFP) InitializeConfig(path string, defaults map[string]string) error {
	if m.phase >= phaseInitialized {
		return fmt.Errorf("cannot re-initialize configuration: %w", bmi.ErrAlreadyInitialized)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	cfg, err := parfile.ParseFile(abs)
	if err != nil {
		return err
	}
	cfg.SetDefault("refdate", defaultRefDate)
	for k, v := range defaults {
		cfg.SetDefault(parfile.Key(k), v)
	}

	m.configPath = abs
	m.config = cfg
	m.root = filepath.Dir(abs)
	m.phase = phaseConfigured

	// model time, estimated from configuration until the engine is live
	if err := m.resetTime(); err != nil {
		return err
	}

	// mapdir is where the raster layers are found
	demFn, err := m.AttributeValue("DEMfile")
	if err != nil {
		return err
	}
	m.mapDir = filepath.Dir(resolve(demFn, m.root))
	dirroot, err := m.AttributeValue("dirroot")
	if err != nil {
		return err
	}
	m.outDir = resolve(dirroot, m.root)

	m.logger.Info("config initialized", "path", m.configPath)
	return nil
}

// InitializeModel writes the in-memory configuration back to disk and
// initializes the engine from it; the engine only ever reads from disk.
func (m *LFP) InitializeModel() error {
	switch m.phase {
	case phaseUnconfigured:
		return fmt.Errorf("run InitializeConfig before InitializeModel: %w", bmi.ErrNotConfigured)
	case phaseInitialized, phaseFinalized:
		return bmi.ErrAlreadyInitialized
	}
	if err := m.WriteConfig(); err != nil {
		return err
	}
	if err := m.eng.Initialize(m.configPath); err != nil {
		return fmt.Errorf("engine initialize failed: %w", err)
	}
	m.phase = phaseInitialized
	m.logger.Info("model initialized")

	// reset model time to make sure it is consistent with the engine
	return m.resetTime()
}

// Initialize loads the configuration (if not already loaded) and
// initializes the model.
func (m *LFP) Initialize(path string) error {
	if m.config == nil {
		if err := m.InitializeConfig(path, nil); err != nil {
			return err
		}
	}
	return m.InitializeModel()
}

// Finalize shuts the engine down. The adapter cannot be used afterwards.
func (m *LFP) Finalize() error {
	m.logger.Info("finalizing model")
	if err := m.eng.Finalize(); err != nil {
		return fmt.Errorf("engine finalize failed: %w", err)
	}
	m.phase = phaseFinalized
	return nil
}

// WriteConfig serializes the in-memory configuration over the par file.
// It runs implicitly just before model initialization, so that attribute
// mutations made since InitializeConfig reach the engine.
func (m *LFP) WriteConfig() error {
	if m.config == nil {
		return bmi.ErrNotConfigured
	}
	return m.config.WriteFile(m.configPath)
}

// SetOutDir points the model's output at dir, persisted relative to the
// par file as the engine expects.
func (m *LFP) SetOutDir(dir string) error {
	if m.config == nil {
		return bmi.ErrNotConfigured
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve output dir: %w", err)
	}
	rel, err := filepath.Rel(m.root, abs)
	if err != nil {
		return fmt.Errorf("failed to relativize output dir: %w", err)
	}
	if err := m.SetAttributeValue("dirroot", rel); err != nil {
		return err
	}
	m.outDir = abs
	return nil
}

// OutDir returns the resolved model output directory.
func (m *LFP) OutDir() string { return m.outDir }

// resetTime re-derives the cached timestep, start, end and current time.
func (m *LFP) resetTime() error {
	if _, err := m.TimeStep(); err != nil {
		return err
	}
	start, err := m.StartTime()
	if err != nil {
		return err
	}
	if _, err := m.EndTime(); err != nil {
		return err
	}
	m.cur = start
	return nil
}

func resolve(path, dir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
