// pkg/recipe/executor.go
package recipe

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/bincrafters/conan-glew/pkg/build"
	"github.com/bincrafters/conan-glew/pkg/command"
	"github.com/bincrafters/conan-glew/pkg/fetch"
	"github.com/bincrafters/conan-glew/pkg/metadata"
	"github.com/bincrafters/conan-glew/pkg/packaging"
	"github.com/bincrafters/conan-glew/pkg/settings"
	"github.com/bincrafters/conan-glew/pkg/sysreqs"
)

// Default folders, relative to the working directory
const (
	DefaultSourceFolder  = "build"
	DefaultBuildFolder   = "build"
	DefaultPackageFolder = "package"
)

// Executor runs the recipe pipeline once for one descriptor
type Executor struct {
	desc   settings.Descriptor
	opts   Options
	logger *log.Logger
	state  State
}

// NewExecutor creates an executor, filling unset options with defaults
func NewExecutor(desc settings.Descriptor, opts *Options) *Executor {
	var o Options
	if opts != nil {
		o = *opts
	}

	if o.SourceFolder == "" {
		o.SourceFolder = DefaultSourceFolder
	}
	if o.BuildFolder == "" {
		o.BuildFolder = DefaultBuildFolder
	}
	if o.PackageFolder == "" {
		o.PackageFolder = DefaultPackageFolder
	}
	if len(o.Formats) == 0 {
		o.Formats = []metadata.Format{metadata.FormatTOML}
	}

	logger := o.Logger
	if logger == nil {
		if o.Debug {
			logger = log.New(os.Stdout, "[glew] ", log.LstdFlags)
		} else {
			logger = log.New(io.Discard, "", 0)
		}
	}
	if o.Warn == nil {
		o.Warn = log.New(os.Stderr, "", 0)
	}
	if o.Runner == nil {
		o.Runner = command.NewExecRunner(logger)
	}
	if o.Prereqs == nil {
		o.Prereqs = &sysreqs.Phase{
			Platform:  o.Platform,
			Installer: o.Installer,
			Runner:    o.Runner,
			Logger:    logger,
			Warn:      o.Warn,
		}
	}
	if o.Fetcher == nil {
		o.Fetcher = fetch.NewFetcher(logger)
	}
	if o.Builder == nil {
		o.Builder = build.NewBuilder(o.Runner, logger)
	}

	return &Executor{desc: desc, opts: o, logger: logger, state: StateInit}
}

// State returns the current pipeline state
func (e *Executor) State() State {
	return e.state
}

// Run executes every phase in order. The first failure moves the executor
// to StateFailed and is returned as a *PhaseError.
func (e *Executor) Run(ctx context.Context) (*Result, error) {
	if e.state != StateInit {
		return nil, fmt.Errorf("executor already ran (state %s)", e.state)
	}

	key := e.desc.Key()
	result := &Result{Key: key}

	e.logger.Printf("Starting recipe for %s/%s", e.desc.Name, e.desc.Version)
	e.logger.Printf("  Matrix key: %s", key)
	e.logger.Printf("  Source folder: %s", e.opts.SourceFolder)
	e.logger.Printf("  Build folder: %s", e.opts.BuildFolder)
	e.logger.Printf("  Package folder: %s", filepath.Join(e.opts.PackageFolder, key.ID()))

	if err := e.desc.Validate(); err != nil {
		return e.fail(PhaseConfigure, err)
	}
	if _, err := packaging.ArtifactRules(key); err != nil {
		return e.fail(PhaseConfigure, err)
	}

	// 1. System requirements
	if e.opts.SkipPrereqs {
		e.logger.Printf("Step 1: Skipping system requirements")
	} else {
		e.logger.Printf("Step 1: Installing system requirements...")
		if err := e.opts.Prereqs.Run(ctx, e.desc); err != nil {
			return e.fail(PhasePrereqs, err)
		}
		e.logger.Printf("  ✓ System requirements satisfied")
	}
	e.state = StatePrereqsInstalled

	// 2. Sources
	sourceDir := filepath.Join(e.opts.SourceFolder, fetch.SourceSubfolder)
	if e.opts.SkipFetch {
		e.logger.Printf("Step 2: Reusing sources in %s", sourceDir)
		if _, err := os.Stat(sourceDir); err != nil {
			return e.fail(PhaseSource, fmt.Errorf("existing sources: %w", err))
		}
	} else {
		e.logger.Printf("Step 2: Fetching sources...")
		dir, err := e.opts.Fetcher.Fetch(ctx, e.desc, e.opts.SourceFolder)
		if err != nil {
			return e.fail(PhaseSource, err)
		}
		sourceDir = dir
		e.logger.Printf("  ✓ Sources ready in %s", sourceDir)
	}
	result.SourceDir = sourceDir
	e.state = StateFetched

	// 3. Build
	if e.opts.SkipBuild {
		e.logger.Printf("Step 3: Skipping build")
	} else {
		e.logger.Printf("Step 3: Building...")
		if err := e.opts.Builder.Build(ctx, key, sourceDir, e.opts.BuildFolder); err != nil {
			return e.fail(PhaseBuild, err)
		}
		e.logger.Printf("  ✓ Build complete")
	}
	result.ArtifactDir = build.ArtifactDir(key, sourceDir, e.opts.BuildFolder)
	e.state = StateBuilt

	// 4. Package
	e.logger.Printf("Step 4: Packaging...")
	rules, err := packaging.Rules(key)
	if err != nil {
		return e.fail(PhasePackage, err)
	}
	pkgDir := filepath.Join(e.opts.PackageFolder, key.ID())
	if err := clearPackageDir(pkgDir, e.logger); err != nil {
		return e.fail(PhasePackage, err)
	}
	result.PackageDir = pkgDir
	manifest, err := packaging.Package(ctx, packaging.Layout{
		SourceDir:  sourceDir,
		BuildDir:   result.ArtifactDir,
		PackageDir: pkgDir,
		Exclude:    e.opts.PackageFolder,
	}, rules, e.logger)
	if err != nil {
		return e.fail(PhasePackage, err)
	}
	if err := packaging.Verify(manifest); err != nil {
		return e.fail(PhasePackage, err)
	}
	result.Manifest = manifest
	e.logger.Printf("  ✓ Packaged %d files", len(manifest.Files))
	e.state = StatePackaged

	// 5. Consumer metadata
	e.logger.Printf("Step 5: Describing package...")
	info := metadata.Describe(key)
	if err := checkArtifacts(key, info, manifest); err != nil {
		return e.fail(PhasePackageInfo, err)
	}
	for _, format := range e.opts.Formats {
		path, err := metadata.Write(pkgDir, info, format)
		if err != nil {
			return e.fail(PhasePackageInfo, err)
		}
		result.MetadataFiles = append(result.MetadataFiles, path)
		e.logger.Printf("  📄 %s", filepath.Base(path))
	}
	result.Info = info
	e.state = StateDescribed
	result.State = e.state

	e.logger.Printf("✓ Package %s/%s created in %s", e.desc.Name, e.desc.Version, pkgDir)
	return result, nil
}

func (e *Executor) fail(phase Phase, err error) (*Result, error) {
	e.state = StateFailed
	e.logger.Printf("  ✗ %s failed: %v", phase, err)
	return nil, &PhaseError{Phase: phase, Err: err}
}

// clearPackageDir removes a tree left by an earlier run of the same matrix
// key so no stale file survives into the new package
func clearPackageDir(dir string, logger *log.Logger) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading package folder: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	logger.Printf("  Removing previous package in %s", dir)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing previous package: %w", err)
	}
	return nil
}

// checkArtifacts requires every library file the metadata implies to be
// present in the package
func checkArtifacts(key settings.MatrixKey, info metadata.Info, manifest *packaging.Manifest) error {
	present := make(map[string]bool, len(manifest.Files))
	for _, f := range manifest.Files {
		present[filepath.Base(filepath.FromSlash(f))] = true
	}

	for _, name := range metadata.ArtifactNames(key, info) {
		if !present[name] {
			return fmt.Errorf("%w: %s not in %s", ErrArtifactMismatch, name, manifest.Root)
		}
	}
	return nil
}
