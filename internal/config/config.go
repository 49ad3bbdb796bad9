// Package config loads tally.yaml, the per-data-root settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name inside a data root.
const FileName = "tally.yaml"

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Scan    ScanConfig    `yaml:"scan"`
	Logging LoggingConfig `yaml:"logging"`
	Git     GitConfig     `yaml:"git"`
}

// PathsConfig locates the data files. Relative paths are resolved against
// the data root.
type PathsConfig struct {
	ImportDir    string `yaml:"import_dir"`
	ProcessedDir string `yaml:"processed_dir"`
	Ledger       string `yaml:"ledger"` // .csv or .xlsx
	Rules        string `yaml:"rules"`
	RunLog       string `yaml:"run_log"`
}

// ScanConfig controls document discovery and the scan log.
type ScanConfig struct {
	TraceTail    int      `yaml:"trace_tail"`
	PreviewChars int      `yaml:"preview_chars"`
	Extensions   []string `yaml:"extensions"`
}

// LoggingConfig controls the structured log.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tally.yaml file from disk. Unset fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadRoot reads <root>/tally.yaml, falling back to defaults when the file
// does not exist, and resolves all paths against root.
func LoadRoot(root string) (*Config, error) {
	cfg, err := Load(filepath.Join(root, FileName))
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}
	cfg.Resolve(root)
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Resolve makes relative paths absolute under root.
func (c *Config) Resolve(root string) {
	for _, p := range []*string{
		&c.Paths.ImportDir,
		&c.Paths.ProcessedDir,
		&c.Paths.Ledger,
		&c.Paths.Rules,
		&c.Paths.RunLog,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(root, *p)
		}
	}
}

// Default returns a Config with sensible defaults for a new data root.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			ImportDir:    "import",
			ProcessedDir: filepath.Join("import", "processed"),
			Ledger:       "ledger.xlsx",
			Rules:        filepath.Join("rules", "categories.yaml"),
			RunLog:       filepath.Join("logs", "run-log.csv"),
		},
		Scan: ScanConfig{
			TraceTail:    50,
			PreviewChars: 3000,
			Extensions:   []string{".pdf", ".txt"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Tally",
			AuthorEmail: "tally@localhost",
		},
	}
}
