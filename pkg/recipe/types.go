// pkg/recipe/types.go
package recipe

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bincrafters/conan-glew/pkg/command"
	"github.com/bincrafters/conan-glew/pkg/metadata"
	"github.com/bincrafters/conan-glew/pkg/packaging"
	"github.com/bincrafters/conan-glew/pkg/platform"
	"github.com/bincrafters/conan-glew/pkg/settings"
	"github.com/bincrafters/conan-glew/pkg/sysreqs"
)

// ErrArtifactMismatch indicates the package lacks a library the consumer
// metadata names
var ErrArtifactMismatch = errors.New("packaged artifacts do not match metadata")

// State is the position of an executor in the pipeline
type State int

const (
	StateInit State = iota
	StatePrereqsInstalled
	StateFetched
	StateBuilt
	StatePackaged
	StateDescribed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StatePrereqsInstalled:
		return "prerequisites installed"
	case StateFetched:
		return "fetched"
	case StateBuilt:
		return "built"
	case StatePackaged:
		return "packaged"
	case StateDescribed:
		return "described"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Phase names a pipeline step
type Phase string

const (
	PhaseConfigure   Phase = "configure"
	PhasePrereqs     Phase = "system_requirements"
	PhaseSource      Phase = "source"
	PhaseBuild       Phase = "build"
	PhasePackage     Phase = "package"
	PhasePackageInfo Phase = "package_info"
)

// PhaseError reports the phase a run failed in
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Prereqs installs the host packages needed to build
type Prereqs interface {
	Run(ctx context.Context, desc settings.Descriptor) error
}

// Fetcher places the sources in workDir and returns their folder
type Fetcher interface {
	Fetch(ctx context.Context, desc settings.Descriptor, workDir string) (string, error)
}

// Builder compiles the sources for a matrix key
type Builder interface {
	Build(ctx context.Context, key settings.MatrixKey, sourceDir, buildDir string) error
}

// Options configures an executor
type Options struct {
	SourceFolder  string // sources are placed in SourceFolder/source_subfolder
	BuildFolder   string
	PackageFolder string

	Formats []metadata.Format // consumer metadata files to write, toml when empty

	SkipPrereqs bool
	SkipFetch   bool // reuse SourceFolder/source_subfolder
	SkipBuild   bool // repackage the existing build output

	Platform  *platform.Platform // detected when nil
	Installer sysreqs.Installer
	Runner    command.Runner
	Prereqs   Prereqs
	Fetcher   Fetcher
	Builder   Builder

	Debug  bool
	Logger *log.Logger // progress
	Warn   *log.Logger // warnings, stderr when nil
}

// Result is what a successful run produced
type Result struct {
	Key           settings.MatrixKey
	State         State
	SourceDir     string
	ArtifactDir   string
	PackageDir    string // <PackageFolder>/<matrix key id>
	Manifest      *packaging.Manifest
	Info          metadata.Info
	MetadataFiles []string
}
