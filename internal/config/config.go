// Package config resolves default file paths for pubsearch's artifacts
// under the user's config directory, optionally overlaid from a YAML file.
// It does not read CLI flags, and the subcommands take their paths from
// their own flags rather than from this package.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the artifact file paths shared by the CLI subcommands.
type Config struct {
	// CorpusPath is where crawl writes and index reads the crawled-data
	// JSON file.
	CorpusPath string `yaml:"corpusPath"`

	// IndexPath is where index writes and search/serve read the persisted
	// index artifact.
	IndexPath string `yaml:"indexPath"`

	// ClassifierPath is where classify-train writes and serve reads the
	// classifier artifact.
	ClassifierPath string `yaml:"classifierPath"`

	// ConfigDir is the directory the default paths are rooted under.
	ConfigDir string `yaml:"-"`
}

// DefaultConfig returns a Config rooted under the user's config directory,
// falling back to the home directory if os.UserConfigDir is unavailable.
func DefaultConfig() *Config {
	base, err := os.UserConfigDir()
	if err != nil {
		base, _ = os.UserHomeDir()
	}
	configDir := filepath.Join(base, "pubsearch")

	return &Config{
		CorpusPath:     filepath.Join(configDir, "corpus.json"),
		IndexPath:      filepath.Join(configDir, "index.gob"),
		ClassifierPath: filepath.Join(configDir, "classifier.gob"),
		ConfigDir:      configDir,
	}
}

// Load reads an optional YAML overlay at path on top of DefaultConfig; a
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}
	return cfg, nil
}

// EnsureConfigDir creates c's configuration directory if it does not
// already exist.
func (c *Config) EnsureConfigDir() error {
	return os.MkdirAll(c.ConfigDir, 0o755)
}

// Validate reports whether c's paths are usable.
func (c *Config) Validate() error {
	if c.CorpusPath == "" {
		return fmt.Errorf("corpus path cannot be empty")
	}
	if c.IndexPath == "" {
		return fmt.Errorf("index path cannot be empty")
	}
	return nil
}
