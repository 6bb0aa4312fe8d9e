// pkg/build/vs.go
package build

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bincrafters/conan-glew/pkg/command"
	"github.com/bincrafters/conan-glew/pkg/settings"
)

// SolutionName is the bundled Visual Studio solution
const SolutionName = "glew.sln"

// Buckets are the Visual Studio solution versions bundled with the sources
var Buckets = []int{10, 12}

var projectFiles = []string{"glew_shared.vcxproj", "glew_static.vcxproj"}

// projectPatches turn off settings that break builds with newer toolsets
var projectPatches = []struct{ old, new string }{
	{"<WholeProgramOptimization>true</WholeProgramOptimization>", "<WholeProgramOptimization>false</WholeProgramOptimization>"},
	{"<TreatWarningAsError>true</TreatWarningAsError>", "<TreatWarningAsError>false</TreatWarningAsError>"},
}

// VSBucket maps a Visual Studio major version to the bundled solution
// version: capped at 12, with 11 served by the vc10 solution.
func VSBucket(version int) (int, error) {
	bucket := version
	if bucket > 12 {
		bucket = 12
	}
	if bucket == 11 {
		bucket = 10
	}
	for _, b := range Buckets {
		if b == bucket {
			return bucket, nil
		}
	}
	return 0, fmt.Errorf("%w: Visual Studio %d has no bundled solution", settings.ErrUnsupported, version)
}

// SolutionDir returns the folder holding the solution for a bucket
func SolutionDir(sourceDir string, bucket int) string {
	return filepath.Join(sourceDir, "build", fmt.Sprintf("vc%d", bucket))
}

// MSBuildPlatform returns the solution platform for arch. The x86 alias
// is always spelled Win32.
func MSBuildPlatform(arch settings.Arch) string {
	switch arch {
	case settings.ArchX86_64:
		return "x64"
	case settings.ArchArmv7:
		return "ARM"
	case settings.ArchArmv8:
		return "ARM64"
	default:
		return "Win32"
	}
}

// VCVarsArch returns the vcvarsall argument for arch
func VCVarsArch(arch settings.Arch) string {
	switch arch {
	case settings.ArchX86_64:
		return "amd64"
	case settings.ArchArmv7:
		return "x86_arm"
	case settings.ArchArmv8:
		return "x86_arm64"
	default:
		return "x86"
	}
}

// SolutionCommand is the cmd.exe line configuring the environment and
// building the solution
func (b *Builder) SolutionCommand(key settings.MatrixKey, dir string) string {
	build := fmt.Sprintf("msbuild %s /p:Configuration=%s /p:Platform=%s",
		SolutionName, key.BuildType, MSBuildPlatform(key.Arch))
	return fmt.Sprintf(`"%s" %s && cd /d "%s" && %s`, b.VCVarsAll, VCVarsArch(key.Arch), dir, build)
}

func (b *Builder) buildSolution(ctx context.Context, key settings.MatrixKey, sourceDir string) error {
	version, err := strconv.Atoi(key.CompilerVersion)
	if err != nil {
		return fmt.Errorf("%w: compiler.version %q", settings.ErrUnsupported, key.CompilerVersion)
	}
	bucket, err := VSBucket(version)
	if err != nil {
		return err
	}

	dir := SolutionDir(sourceDir, bucket)
	b.Logger.Printf("  Using solution %s", filepath.Join(dir, SolutionName))

	for _, project := range projectFiles {
		path := filepath.Join(dir, project)
		for _, p := range projectPatches {
			ok, err := replaceInFile(path, p.old, p.new)
			if err != nil {
				b.Logger.Printf("  ⚠️  Warning: %v", err)
				break
			}
			if !ok {
				b.Logger.Printf("  Patch target %s not present in %s", p.old, project)
			}
		}
	}

	cmd := command.New("cmd", "/c", b.SolutionCommand(key, dir))
	if rt := key.Runtime; rt != "" {
		cmd.Env = []string{"CL=/" + string(rt)}
	}
	if err := b.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("building %s: %w", SolutionName, err)
	}

	b.Logger.Printf("  ✓ Built %s (%s)", strings.TrimSuffix(SolutionName, ".sln"), key.BuildType)
	return nil
}
