// pkg/core/config.go
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bincrafters/conan-glew/pkg/metadata"
	"github.com/bincrafters/conan-glew/pkg/settings"
)

// HomeEnv overrides the configuration directory
const HomeEnv = "GLEWPKG_HOME"

// Config holds glewpkg configuration
type Config struct {
	Recipe        string            `yaml:"recipe"`
	SourceFolder  string            `yaml:"source_folder"`
	BuildFolder   string            `yaml:"build_folder"`
	PackageFolder string            `yaml:"package_folder"`
	Formats       []string          `yaml:"formats"`
	Debug         bool              `yaml:"debug"`
	Settings      map[string]string `yaml:"settings"`
	Options       map[string]string `yaml:"options"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		SourceFolder:  "build",
		BuildFolder:   "build",
		PackageFolder: "package",
		Formats:       []string{string(metadata.FormatTOML)},
		Debug:         false,
		Settings:      make(map[string]string),
		Options:       make(map[string]string),
	}
}

// DefaultPath returns $GLEWPKG_HOME/config.yaml, or
// $HOME/.config/glewpkg/config.yaml
func DefaultPath() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return filepath.Join(home, "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "glewpkg", "config.yaml"), nil
}

// LoadConfig loads configuration from file. A missing file yields the
// defaults; values present in the file replace them.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// MetadataFormats parses the configured consumer metadata formats
func (c *Config) MetadataFormats() ([]metadata.Format, error) {
	formats := make([]metadata.Format, 0, len(c.Formats))
	for _, f := range c.Formats {
		format, err := metadata.ParseFormat(f)
		if err != nil {
			return nil, err
		}
		formats = append(formats, format)
	}
	return formats, nil
}

// Descriptor loads the configured recipe, or the built-in one, and
// applies the configured default settings and options
func (c *Config) Descriptor() (settings.Descriptor, error) {
	desc := settings.Default()
	if c.Recipe != "" {
		var err error
		desc, err = settings.Load(c.Recipe)
		if err != nil {
			return desc, err
		}
	}

	for _, name := range sortedKeys(c.Settings) {
		var err error
		desc, err = desc.WithSetting(name + "=" + c.Settings[name])
		if err != nil {
			return desc, fmt.Errorf("config setting: %w", err)
		}
	}
	for _, name := range sortedKeys(c.Options) {
		var err error
		desc, err = desc.WithOption(name + "=" + c.Options[name])
		if err != nil {
			return desc, fmt.Errorf("config option: %w", err)
		}
	}
	return desc, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
