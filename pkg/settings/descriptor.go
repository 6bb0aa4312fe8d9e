// pkg/settings/descriptor.go
package settings

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultName is the packaged library
	DefaultName = "glew"

	// DefaultVersion is the upstream release the recipe targets
	DefaultVersion = "2.1.0"

	// VersionMaster builds the upstream default branch instead of a release archive
	VersionMaster = "master"

	// DefaultSourceURL is the archive URL template, expanded with Name and Version
	DefaultSourceURL = "https://sourceforge.net/projects/glew/files/glew/{{.Version}}/{{.Name}}-{{.Version}}.tgz/download"

	// DefaultGitURL is cloned when Version is master
	DefaultGitURL = "https://github.com/nigels-com/glew"
)

// Options are the recipe's declared build options
type Options struct {
	Shared bool `yaml:"shared"`
}

// Descriptor is the immutable recipe description. It is built once and
// passed by value to every phase.
type Descriptor struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	License     string   `yaml:"license"`
	URL         string   `yaml:"url"`
	Homepage    string   `yaml:"homepage"`
	SourceURL   string   `yaml:"source_url"`
	GitURL      string   `yaml:"git_url"`
	SHA256      string   `yaml:"sha256,omitempty"`
	Options     Options  `yaml:"options"`
	Settings    Settings `yaml:"settings"`
}

// Default returns the glew recipe with settings detected from the host
func Default() Descriptor {
	return Descriptor{
		Name:        DefaultName,
		Version:     DefaultVersion,
		Description: "The GLEW library",
		License:     "MIT",
		URL:         "http://github.com/bincrafters/conan-glew",
		Homepage:    "http://github.com/nigels-com/glew",
		SourceURL:   DefaultSourceURL,
		GitURL:      DefaultGitURL,
		Settings:    defaultSettings(),
	}
}

func defaultSettings() Settings {
	s := Settings{BuildType: BuildRelease}.DetectHost()
	switch s.OS {
	case OSWindows:
		s.Compiler = CompilerVisualStudio
		s.CompilerVersion = "15"
	case OSMacos:
		s.Compiler = CompilerAppleClang
		s.CompilerVersion = "12.0"
	default:
		s.Compiler = CompilerGCC
		s.CompilerVersion = "9"
	}
	return s
}

// Load reads a YAML recipe file on top of the defaults
func Load(path string) (Descriptor, error) {
	d := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading recipe: %w", err)
	}

	if err := yaml.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("parsing recipe: %w", err)
	}

	normalized, err := d.Settings.Normalize()
	if err != nil {
		return Descriptor{}, fmt.Errorf("recipe %s: %w", path, err)
	}
	d.Settings = normalized

	return d, nil
}

// Key returns the matrix key of the descriptor
func (d Descriptor) Key() MatrixKey {
	return d.Settings.Key(d.Options.Shared)
}

// Validate checks the descriptor before any phase runs
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("recipe name is required")
	}
	if d.Version == "" {
		return fmt.Errorf("recipe version is required")
	}
	if d.SourceURL == "" && d.Version != VersionMaster {
		return fmt.Errorf("recipe source_url is required")
	}
	return d.Settings.Validate()
}

// WithSetting returns a copy with one "name=value" setting applied.
// Names follow the package manager convention: os, arch, compiler,
// compiler.version, compiler.runtime, build_type.
func (d Descriptor) WithSetting(assignment string) (Descriptor, error) {
	name, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return d, fmt.Errorf("setting %q must be name=value", assignment)
	}
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)

	var err error
	switch name {
	case "os":
		d.Settings.OS, err = ParseOS(value)
	case "arch":
		d.Settings.Arch, err = ParseArch(value)
	case "compiler":
		d.Settings.Compiler, err = ParseCompiler(value)
	case "compiler.version":
		d.Settings.CompilerVersion = value
	case "compiler.runtime":
		d.Settings.Runtime, err = ParseRuntime(value)
	case "build_type":
		d.Settings.BuildType, err = ParseBuildType(value)
	default:
		return d, fmt.Errorf("%w: unknown setting %q", ErrUnsupported, name)
	}
	return d, err
}

// WithOption returns a copy with one "name=value" option applied
func (d Descriptor) WithOption(assignment string) (Descriptor, error) {
	name, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return d, fmt.Errorf("option %q must be name=value", assignment)
	}
	if strings.TrimSpace(name) != "shared" {
		return d, fmt.Errorf("%w: unknown option %q", ErrUnsupported, name)
	}
	shared, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return d, fmt.Errorf("option shared: %w", err)
	}
	d.Options.Shared = shared
	return d, nil
}
