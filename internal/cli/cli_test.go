package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bincrafters/conan-glew/pkg/platform"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "config.yaml")))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})

	require.NoError(t, rootCmd.Execute())
	return out.String()
}

// resetFlags restores every flag to its default so repeated and slice flags
// do not leak between executions
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeArchive(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	w := ar.NewWriter(&buf)
	require.NoError(t, w.WriteGlobalHeader())
	body := []byte("object")
	require.NoError(t, w.WriteHeader(&ar.Header{Name: "glew.o", ModTime: time.Unix(0, 0), Mode: 0644, Size: int64(len(body))}))
	_, err := w.Write(body)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func fakePlatform(t *testing.T, p *platform.Platform) {
	t.Helper()
	orig := detectPlatform
	detectPlatform = func() (*platform.Platform, error) { return p, nil }
	t.Cleanup(func() { detectPlatform = orig })
}

func TestCreateCommandReusesPreparedTree(t *testing.T) {
	dir := t.TempDir()
	buildFolder := filepath.Join(dir, "build")
	packageFolder := filepath.Join(dir, "package")

	writeFile(t, filepath.Join(buildFolder, "source_subfolder", "include", "GL", "glew.h"), "/* glew */")
	writeFile(t, filepath.Join(buildFolder, "source_subfolder", "LICENSE.txt"), "MIT")
	writeArchive(t, filepath.Join(buildFolder, "lib", "libGLEW.a"))

	out := execute(t, "create",
		"-s", "os=Linux",
		"-s", "arch=x86_64",
		"-s", "compiler=gcc",
		"-s", "compiler.version=9",
		"-s", "build_type=Release",
		"--source-folder", buildFolder,
		"--build-folder", buildFolder,
		"--package-folder", packageFolder,
		"--format", "toml",
		"--skip-prereqs",
		"--skip-fetch",
		"--skip-build",
	)

	pkgDir := filepath.Join(packageFolder, "Linux-gcc-9-x86_64-Release-static")
	assert.Contains(t, out, "Creating glew/2.1.0 for Linux-gcc-9-x86_64-Release-static")
	assert.Contains(t, out, "✓ Package created in "+pkgDir)
	assert.FileExists(t, filepath.Join(pkgDir, "lib", "libGLEW.a"))
	assert.FileExists(t, filepath.Join(pkgDir, "include", "GL", "glew.h"))
	assert.FileExists(t, filepath.Join(pkgDir, "licenses", "LICENSE.txt"))
	assert.FileExists(t, filepath.Join(pkgDir, "FindGLEW.cmake"))
	assert.FileExists(t, filepath.Join(pkgDir, "glewinfo.toml"))
}

func TestRequirementsCommand(t *testing.T) {
	tests := []struct {
		name     string
		platform *platform.Platform
		args     []string
		want     []string
	}{
		{
			name:     "debian cross x86",
			platform: &platform.Platform{OS: "linux", Arch: "amd64", Family: platform.FamilyDebian, Installer: "apt-get", Distro: "ubuntu"},
			args:     []string{"-s", "os=Linux", "-s", "arch=x86", "-s", "compiler=gcc", "-s", "compiler.version=9"},
			want:     []string{"Platform: linux/amd64 (package manager: debian)", "  libglu1-mesa-dev:i386"},
		},
		{
			name:     "fedora master",
			platform: &platform.Platform{OS: "linux", Arch: "amd64", Family: platform.FamilyRedHat, Installer: "dnf", Distro: "fedora"},
			args:     []string{"-s", "os=Linux", "-s", "arch=x86_64", "-s", "compiler=gcc", "-s", "compiler.version=9", "--version", "master"},
			want:     []string{"  libXmu-devel", "  mesa-libGLU-devel"},
		},
		{
			name:     "unknown package manager",
			platform: &platform.Platform{OS: "linux", Arch: "amd64", Family: platform.FamilyUnknown, Distro: "arch"},
			args:     []string{"-s", "os=Linux", "-s", "arch=x86_64", "-s", "compiler=gcc", "-s", "compiler.version=9"},
			want:     []string{"⚠️  Warning: Could not determine Linux package manager"},
		},
		{
			name:     "macos host",
			platform: &platform.Platform{OS: "darwin", Arch: "arm64"},
			args:     []string{"-s", "os=Macos", "-s", "arch=armv8", "-s", "compiler=apple-clang", "-s", "compiler.version=14"},
			want:     []string{"No system requirements"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakePlatform(t, tt.platform)
			out := execute(t, append([]string{"requirements"}, tt.args...)...)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			assert.NotContains(t, out, "System requirements installed")
		})
	}
}

func TestInfoCommand(t *testing.T) {
	out := execute(t, "info",
		"-s", "os=Windows",
		"-s", "arch=x86",
		"-s", "compiler=Visual Studio",
		"-s", "compiler.version=15",
		"-s", "build_type=Release",
		"--format", "txt",
	)

	assert.Contains(t, out, "# glew/2.1.0 Windows-visualstudio-15-x86-Release-MD-static")
	assert.Contains(t, out, "[libs]\nglew32s\nOpenGL32\n")
	assert.Contains(t, out, "[defines]\nGLEW_STATIC\n")
	assert.Contains(t, out, "-NODEFAULTLIB:LIBCMT\n")
}

func TestRulesCommand(t *testing.T) {
	out := execute(t, "rules",
		"-s", "os=Linux",
		"-s", "arch=x86_64",
		"-s", "compiler=gcc",
		"-s", "compiler.version=9",
		"-s", "build_type=Release",
		"-o", "shared=True",
	)

	assert.Contains(t, out, "Matrix key: Linux-gcc-9-x86_64-Release-shared")
	assert.Contains(t, out, "FindGLEW.cmake -> ./")
	assert.Contains(t, out, "[build] *.so -> lib/")
	assert.Contains(t, out, "[build] *.so.* -> lib/ (optional)")
	assert.Contains(t, out, "[source] include/** -> ./")
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
