// pkg/build/cmake.go
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bincrafters/conan-glew/pkg/command"
	"github.com/bincrafters/conan-glew/pkg/settings"
)

const (
	// CMakeMarker is the line the build info include is placed before
	CMakeMarker = "include(GNUInstallDirs)"

	cmakeInclude = "include(${CMAKE_BINARY_DIR}/" + BuildInfoFile + ")"
)

// CMakeListsPath returns the CMake project bundled with the sources
func CMakeListsPath(sourceDir string) string {
	return filepath.Join(sourceDir, "build", "cmake", "CMakeLists.txt")
}

// PatchCMakeLists makes the project load the generated build info. A
// project already patched is left alone; one without the marker fails
// with ErrPatchTarget.
func PatchCMakeLists(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if strings.Contains(string(data), cmakeInclude) {
		return nil
	}

	replacement := "\n" + cmakeInclude + "\n" + setupMacro + "()\n" + CMakeMarker + "\n"
	ok, err := replaceInFile(path, CMakeMarker, replacement)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q in %s", ErrPatchTarget, CMakeMarker, path)
	}
	return nil
}

// Generator returns the CMake generator for key
func Generator(key settings.MatrixKey) string {
	if key.OS == settings.OSWindows {
		return "MinGW Makefiles"
	}
	return "Unix Makefiles"
}

// ConfigureArgs returns the cmake configure arguments
func ConfigureArgs(key settings.MatrixKey, sourceDir string) []string {
	shared := "OFF"
	if key.Shared {
		shared = "ON"
	}
	return []string{
		filepath.Join(sourceDir, "build", "cmake"),
		"-G", Generator(key),
		"-DCMAKE_BUILD_TYPE=" + string(key.BuildType),
		"-DBUILD_SHARED_LIBS=" + shared,
		"-DBUILD_UTILS=OFF",
	}
}

// BuildArgs returns the cmake --build arguments
func (b *Builder) BuildArgs(key settings.MatrixKey) []string {
	args := []string{"--build", ".", "--config", string(key.BuildType)}
	if b.Jobs > 0 {
		args = append(args, "--", "-j"+strconv.Itoa(b.Jobs))
	}
	return args
}

func (b *Builder) buildCMake(ctx context.Context, key settings.MatrixKey, sourceDir, buildDir string) error {
	lists := CMakeListsPath(sourceDir)
	if err := PatchCMakeLists(lists); err != nil {
		return err
	}
	b.Logger.Printf("  Patched %s", lists)

	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return fmt.Errorf("creating build folder: %w", err)
	}

	info := NewBuildInfo(key)
	if _, err := info.Write(buildDir); err != nil {
		return err
	}

	if err := b.Runner.Run(ctx, command.New("cmake", ConfigureArgs(key, sourceDir)...).In(buildDir)); err != nil {
		return fmt.Errorf("configuring: %w", err)
	}
	if err := b.Runner.Run(ctx, command.New("cmake", b.BuildArgs(key)...).In(buildDir)); err != nil {
		return fmt.Errorf("building: %w", err)
	}

	b.Logger.Printf("  ✓ Built with CMake (%s)", key.BuildType)
	return nil
}
