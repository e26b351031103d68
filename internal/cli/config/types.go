package config

// Config holds the resolved tool configuration. Model-side settings live
// in the par file; this covers only the CLI's own knobs.
type Config struct {
	Engine    string `koanf:"engine"`
	StatePath string `koanf:"state_path"`
	LogLevel  string `koanf:"log_level"`
	Verbose   bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultEngine    = "kinematic"
	DefaultStateFile = ".floodlink/state.db"
	DefaultLogLevel  = "info"
)
