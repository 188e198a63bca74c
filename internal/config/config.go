// Package config loads project settings from hoshin.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults applied to fields left empty in the file.
const (
	DefaultBackend     = "badger"
	DefaultStoragePath = ".hoshin/data"
	DefaultLogLevel    = "info"
	DefaultWizardMode  = "unset"
	DefaultExportDir   = "."
)

// ProjectConfig holds project-level settings loaded from hoshin.yml.
type ProjectConfig struct {
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Wizard  WizardConfig  `yaml:"wizard"`
	Export  ExportConfig  `yaml:"export"`
	MCP     MCPConfig     `yaml:"mcp"`
}

// StorageConfig selects the document store.
type StorageConfig struct {
	Backend string `yaml:"backend,omitempty" validate:"oneof=memory badger kuzu"`
	// Path is relative to the project directory unless absolute.
	Path       string `yaml:"path,omitempty" validate:"required_unless=Backend memory"`
	SyncWrites bool   `yaml:"syncWrites,omitempty"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level,omitempty" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development,omitempty"`
}

// WizardConfig sets the default wizard mode.
type WizardConfig struct {
	Mode string `yaml:"mode,omitempty" validate:"oneof=unset all"`
}

// ExportConfig sets where vBRIEF files are written.
type ExportConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// MCPConfig configures the MCP server. An empty Addr serves over stdio.
type MCPConfig struct {
	Addr string `yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
}

var validate = validator.New()

// Load attempts to read hoshin.yml or hoshin.yaml from the given directory.
// A missing file is not an error: the defaults are returned. Relative
// storage and export paths are resolved against dir.
func Load(dir string) (*ProjectConfig, error) {
	var cfg ProjectConfig
	for _, name := range []string{"hoshin.yml", "hoshin.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		break
	}

	cfg.applyDefaults()
	cfg.Storage.Path = resolve(dir, cfg.Storage.Path)
	cfg.Export.Dir = resolve(dir, cfg.Export.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field against its constraints.
func (c *ProjectConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Default returns the settings used when no file is present, with paths
// left relative.
func Default() ProjectConfig {
	var c ProjectConfig
	c.applyDefaults()
	return c
}

func (c *ProjectConfig) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = DefaultBackend
	}
	if c.Storage.Path == "" && c.Storage.Backend != "memory" {
		c.Storage.Path = DefaultStoragePath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Wizard.Mode == "" {
		c.Wizard.Mode = DefaultWizardMode
	}
	if c.Export.Dir == "" {
		c.Export.Dir = DefaultExportDir
	}
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
