package stylevec

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/stylevec/visembed"
)

// Config is the service configuration. Zero value works for local use: an
// on-disk database path, no embedding server (zero-vector embeddings), no
// ANN index.
type Config struct {
	// DBPath is the SQLite database file. Default: ./stylevec.db.
	DBPath string `yaml:"dbPath"`

	// Embedding configures the visual-embedding client. An empty endpoint
	// disables it; runs then carry a zero embedding section.
	Embedding visembed.Config `yaml:"embedding"`

	// Index configures the optional ANN acceleration layer.
	Index IndexConfig `yaml:"index"`

	// Logger defaults to slog.Default().
	Logger *slog.Logger `yaml:"-"`
}

// IndexConfig controls the ANN index. Even when enabled, queries below the
// brute-force cutover never consult it.
type IndexConfig struct {
	Enabled bool `yaml:"enabled"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "stylevec.db"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadConfig reads a YAML config file. Missing keys keep their defaults.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfig, path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrConfig, path, err)
	}
	return &cfg, nil
}
