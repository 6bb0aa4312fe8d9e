package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linuxRelease() Settings {
	return Settings{
		OS:              OSLinux,
		Arch:            ArchX86_64,
		Compiler:        CompilerGCC,
		CompilerVersion: "9",
		BuildType:       BuildRelease,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{name: "linux gcc", mutate: func(*Settings) {}},
		{name: "unknown os", mutate: func(s *Settings) { s.OS = "Plan9" }, wantErr: true},
		{name: "unknown arch", mutate: func(s *Settings) { s.Arch = "mips" }, wantErr: true},
		{name: "unknown build type", mutate: func(s *Settings) { s.BuildType = "Profile" }, wantErr: true},
		{
			name: "visual studio on windows",
			mutate: func(s *Settings) {
				s.OS, s.Compiler, s.CompilerVersion = OSWindows, CompilerVisualStudio, "15"
			},
		},
		{
			name: "visual studio on linux",
			mutate: func(s *Settings) {
				s.Compiler, s.CompilerVersion = CompilerVisualStudio, "15"
			},
			wantErr: true,
		},
		{
			name: "visual studio with non numeric version",
			mutate: func(s *Settings) {
				s.OS, s.Compiler, s.CompilerVersion = OSWindows, CompilerVisualStudio, "2019"
			},
		},
		{
			name: "visual studio with text version",
			mutate: func(s *Settings) {
				s.OS, s.Compiler, s.CompilerVersion = OSWindows, CompilerVisualStudio, "latest"
			},
			wantErr: true,
		},
		{name: "runtime on gcc", mutate: func(s *Settings) { s.Runtime = RuntimeMT }, wantErr: true},
		{name: "apple-clang on linux", mutate: func(s *Settings) { s.Compiler = CompilerAppleClang }, wantErr: true},
		{name: "lowercase build type", mutate: func(s *Settings) { s.BuildType = "debug" }, wantErr: true},
		{name: "lowercase os", mutate: func(s *Settings) { s.OS = "linux" }, wantErr: true},
		{
			name: "visual studio relwithdebinfo",
			mutate: func(s *Settings) {
				s.OS, s.Compiler, s.CompilerVersion, s.BuildType = OSWindows, CompilerVisualStudio, "15", BuildRelWithDebInfo
			},
			wantErr: true,
		},
		{
			name: "visual studio minsizerel",
			mutate: func(s *Settings) {
				s.OS, s.Compiler, s.CompilerVersion, s.BuildType = OSWindows, CompilerVisualStudio, "15", BuildMinSizeRel
			},
			wantErr: true,
		},
		{name: "gcc minsizerel", mutate: func(s *Settings) { s.BuildType = BuildMinSizeRel }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := linuxRelease()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupported)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEffectiveRuntime(t *testing.T) {
	s := Settings{OS: OSWindows, Compiler: CompilerVisualStudio, CompilerVersion: "14", BuildType: BuildDebug}
	assert.Equal(t, RuntimeMDd, s.EffectiveRuntime())

	s.BuildType = BuildRelease
	assert.Equal(t, RuntimeMD, s.EffectiveRuntime())

	s.Runtime = RuntimeMT
	assert.Equal(t, RuntimeMT, s.EffectiveRuntime())

	assert.Empty(t, linuxRelease().EffectiveRuntime())
}

func TestMatrixKeyID(t *testing.T) {
	key := linuxRelease().Key(false)
	assert.Equal(t, "Linux-gcc-9-x86_64-Release-static", key.ID())

	vs := Settings{OS: OSWindows, Arch: ArchX86, Compiler: CompilerVisualStudio, CompilerVersion: "14", BuildType: BuildDebug}
	assert.Equal(t, "Windows-visualstudio-14-x86-Debug-MDd-shared", vs.Key(true).ID())
}

func TestParseCaseInsensitive(t *testing.T) {
	o, err := ParseOS("macos")
	require.NoError(t, err)
	assert.Equal(t, OSMacos, o)

	c, err := ParseCompiler("msvc")
	require.NoError(t, err)
	assert.Equal(t, CompilerVisualStudio, c)

	_, err = ParseRuntime("mt")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestWithSettingAndOption(t *testing.T) {
	d := Default()

	d, err := d.WithSetting("os=Windows")
	require.NoError(t, err)
	d, err = d.WithSetting("compiler=Visual Studio")
	require.NoError(t, err)
	d, err = d.WithSetting("compiler.version=14")
	require.NoError(t, err)
	d, err = d.WithSetting("build_type=Debug")
	require.NoError(t, err)
	d, err = d.WithOption("shared=True")
	require.NoError(t, err)

	key := d.Key()
	assert.Equal(t, OSWindows, key.OS)
	assert.Equal(t, FamilyVisualStudio, key.Family())
	assert.True(t, key.Shared)
	assert.NoError(t, d.Validate())

	_, err = d.WithSetting("os")
	assert.Error(t, err)
	_, err = d.WithSetting("compiler.libcxx=libstdc++")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = d.WithOption("fPIC=True")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.yaml")
	content := `
version: "2.2.0"
options:
  shared: true
settings:
  os: Macos
  arch: armv8
  compiler: apple-clang
  compiler_version: "14"
  build_type: Debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultName, d.Name)
	assert.Equal(t, "2.2.0", d.Version)
	assert.True(t, d.Options.Shared)
	assert.Equal(t, OSMacos, d.Settings.OS)
	assert.Equal(t, DefaultSourceURL, d.SourceURL)
	assert.NoError(t, d.Validate())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadNormalizesSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Settings
		wantErr bool
	}{
		{
			name: "lowercase linux debug",
			content: `
settings:
  os: linux
  arch: X86_64
  compiler: GCC
  compiler_version: "9"
  build_type: debug
`,
			want: Settings{OS: OSLinux, Arch: ArchX86_64, Compiler: CompilerGCC, CompilerVersion: "9", BuildType: BuildDebug},
		},
		{
			name: "msvc alias on windows",
			content: `
settings:
  os: windows
  arch: x86
  compiler: msvc
  compiler_version: "15"
  runtime: MTd
  build_type: DEBUG
`,
			want: Settings{OS: OSWindows, Arch: ArchX86, Compiler: CompilerVisualStudio, CompilerVersion: "15", Runtime: RuntimeMTd, BuildType: BuildDebug},
		},
		{
			name: "unknown os",
			content: `
settings:
  os: plan9
`,
			wantErr: true,
		},
		{
			name: "lowercase runtime",
			content: `
settings:
  os: windows
  compiler: msvc
  compiler_version: "15"
  runtime: mt
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "recipe.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			d, err := Load(path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Settings)
			assert.NoError(t, d.Validate())
			assert.Equal(t, tt.want.BuildType, d.Key().BuildType)
		})
	}
}

func TestDefaultOptionIsStatic(t *testing.T) {
	assert.False(t, Default().Options.Shared)
	assert.NoError(t, Default().Validate())
}
