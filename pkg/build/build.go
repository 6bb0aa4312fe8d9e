// pkg/build/build.go
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/bincrafters/conan-glew/pkg/command"
	"github.com/bincrafters/conan-glew/pkg/settings"
)

// ErrPatchTarget indicates a file to patch does not contain the expected text
var ErrPatchTarget = errors.New("patch target not found")

// Builder compiles the extracted sources with the native toolchain
type Builder struct {
	Runner command.Runner
	Logger *log.Logger

	// VCVarsAll is the environment script called before msbuild
	VCVarsAll string

	// Jobs is the parallelism passed to Makefile generators
	Jobs int
}

// NewBuilder creates a builder running tools through runner
func NewBuilder(runner command.Runner, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if runner == nil {
		runner = command.NewExecRunner(logger)
	}
	return &Builder{
		Runner:    runner,
		Logger:    logger,
		VCVarsAll: "vcvarsall.bat",
		Jobs:      runtime.NumCPU(),
	}
}

// Build compiles sourceDir for key. CMake builds happen in buildDir;
// solution builds write into the source tree.
func (b *Builder) Build(ctx context.Context, key settings.MatrixKey, sourceDir, buildDir string) error {
	if b.Logger == nil {
		b.Logger = log.New(io.Discard, "", 0)
	}

	switch key.Family() {
	case settings.FamilyVisualStudio:
		return b.buildSolution(ctx, key, sourceDir)
	case settings.FamilyOther:
		return b.buildCMake(ctx, key, sourceDir, buildDir)
	}
	return fmt.Errorf("%w: no build driver for %s", settings.ErrUnsupported, key)
}

// ArtifactDir returns the folder the build of key leaves its libraries in
func ArtifactDir(key settings.MatrixKey, sourceDir, buildDir string) string {
	if key.Family() == settings.FamilyVisualStudio {
		return sourceDir
	}
	return buildDir
}

// replaceInFile replaces every occurrence of old in path. It reports
// whether old was present.
func replaceInFile(path, old, repl string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	content := string(data)
	if !strings.Contains(content, old) {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	content = strings.ReplaceAll(content, old, repl)
	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
