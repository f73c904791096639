// Package config loads runtime configuration for the todo tool.
// Precedence: defaults < YAML file < environment variables.
package config

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all runtime configuration
type Config struct {
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// Storage selects where tasks are kept
type Storage struct {
	Backend string `yaml:"backend"` // "file" | "sqlite" (default: "file")
	Path    string `yaml:"path"`    // empty: derived from the backend under the XDG data dir
}

// Logging holds structured logging configuration
type Logging struct {
	Level  string `yaml:"level"`  // debug | info | warn | error (default: warn)
	Format string `yaml:"format"` // text | json (default: text)
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() Config {
	return Config{
		Storage: Storage{
			Backend: BackendFile,
		},
		Logging: Logging{
			Level:  "warn",
			Format: "text",
		},
	}
}
