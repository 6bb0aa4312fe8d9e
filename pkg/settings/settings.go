// pkg/settings/settings.go
package settings

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// ErrUnsupported indicates a settings value or combination the recipe does not build
var ErrUnsupported = errors.New("unsupported settings")

// OS is the target operating system
type OS string

const (
	OSWindows OS = "Windows"
	OSLinux   OS = "Linux"
	OSMacos   OS = "Macos"
	OSFreeBSD OS = "FreeBSD"
)

// AllOS lists every target operating system the recipe declares
var AllOS = []OS{OSWindows, OSLinux, OSMacos, OSFreeBSD}

// Arch is the target CPU architecture
type Arch string

const (
	ArchX86    Arch = "x86"
	ArchX86_64 Arch = "x86_64"
	ArchArmv7  Arch = "armv7"
	ArchArmv8  Arch = "armv8"
)

// AllArch lists every target architecture the recipe declares
var AllArch = []Arch{ArchX86, ArchX86_64, ArchArmv7, ArchArmv8}

// Compiler identifies the toolchain used for the build
type Compiler string

const (
	CompilerVisualStudio Compiler = "Visual Studio"
	CompilerGCC          Compiler = "gcc"
	CompilerClang        Compiler = "clang"
	CompilerAppleClang   Compiler = "apple-clang"
)

// AllCompilers lists every compiler the recipe declares
var AllCompilers = []Compiler{CompilerVisualStudio, CompilerGCC, CompilerClang, CompilerAppleClang}

// Family groups compilers by how the library is built and named
type Family int

const (
	// FamilyOther builds through CMake
	FamilyOther Family = iota
	// FamilyVisualStudio builds the bundled solution with msbuild
	FamilyVisualStudio
)

func (f Family) String() string {
	if f == FamilyVisualStudio {
		return "visual-studio"
	}
	return "other"
}

// Family returns the compiler family
func (c Compiler) Family() Family {
	if c == CompilerVisualStudio {
		return FamilyVisualStudio
	}
	return FamilyOther
}

// Runtime is the Visual Studio C runtime selection
type Runtime string

const (
	RuntimeMT  Runtime = "MT"
	RuntimeMTd Runtime = "MTd"
	RuntimeMD  Runtime = "MD"
	RuntimeMDd Runtime = "MDd"
)

// IsStatic reports whether the runtime links the static CRT (LIBCMT)
func (r Runtime) IsStatic() bool {
	return r == RuntimeMT || r == RuntimeMTd
}

// BuildType is the CMake/msbuild configuration
type BuildType string

const (
	BuildDebug          BuildType = "Debug"
	BuildRelease        BuildType = "Release"
	BuildRelWithDebInfo BuildType = "RelWithDebInfo"
	BuildMinSizeRel     BuildType = "MinSizeRel"
)

// AllBuildTypes lists every build type the recipe declares
var AllBuildTypes = []BuildType{BuildDebug, BuildRelease, BuildRelWithDebInfo, BuildMinSizeRel}

// IsDebug reports whether artifacts carry the debug suffix
func (b BuildType) IsDebug() bool {
	return b == BuildDebug
}

// Settings are the values supplied by the invoking build environment
type Settings struct {
	OS              OS        `yaml:"os"`
	Arch            Arch      `yaml:"arch"`
	Compiler        Compiler  `yaml:"compiler"`
	CompilerVersion string    `yaml:"compiler_version"`
	Runtime         Runtime   `yaml:"runtime,omitempty"`
	BuildType       BuildType `yaml:"build_type"`
}

// MatrixKey is the dispatch tuple every phase branches on
type MatrixKey struct {
	OS              OS
	Compiler        Compiler
	CompilerVersion string
	Arch            Arch
	BuildType       BuildType
	Runtime         Runtime
	Shared          bool
}

// Family is a shortcut for Compiler.Family
func (k MatrixKey) Family() Family {
	return k.Compiler.Family()
}

// ID returns a stable folder-safe identifier for the key
func (k MatrixKey) ID() string {
	linkage := "static"
	if k.Shared {
		linkage = "shared"
	}
	parts := []string{
		string(k.OS),
		strings.ReplaceAll(strings.ToLower(string(k.Compiler)), " ", ""),
		k.CompilerVersion,
		string(k.Arch),
		string(k.BuildType),
	}
	if k.Family() == FamilyVisualStudio && k.Runtime != "" {
		parts = append(parts, string(k.Runtime))
	}
	parts = append(parts, linkage)
	return strings.Join(parts, "-")
}

func (k MatrixKey) String() string {
	return k.ID()
}

// Key combines settings with the shared option into a matrix key
func (s Settings) Key(shared bool) MatrixKey {
	return MatrixKey{
		OS:              s.OS,
		Compiler:        s.Compiler,
		CompilerVersion: s.CompilerVersion,
		Arch:            s.Arch,
		BuildType:       s.BuildType,
		Runtime:         s.EffectiveRuntime(),
		Shared:          shared,
	}
}

// EffectiveRuntime returns the configured runtime, or the Visual Studio
// default (MD, MDd for Debug). Non Visual Studio compilers have none.
func (s Settings) EffectiveRuntime() Runtime {
	if s.Compiler.Family() != FamilyVisualStudio {
		return ""
	}
	if s.Runtime != "" {
		return s.Runtime
	}
	if s.BuildType.IsDebug() {
		return RuntimeMDd
	}
	return RuntimeMD
}

// Normalize runs every field through its parser and returns the settings
// with canonical spellings, so "debug" becomes Debug and "msvc" becomes
// Visual Studio. Unknown values are rejected.
func (s Settings) Normalize() (Settings, error) {
	o, err := ParseOS(string(s.OS))
	if err != nil {
		return s, err
	}
	a, err := ParseArch(string(s.Arch))
	if err != nil {
		return s, err
	}
	c, err := ParseCompiler(string(s.Compiler))
	if err != nil {
		return s, err
	}
	bt, err := ParseBuildType(string(s.BuildType))
	if err != nil {
		return s, err
	}
	s.OS, s.Arch, s.Compiler, s.BuildType = o, a, c, bt
	if s.Runtime != "" {
		rt, err := ParseRuntime(string(s.Runtime))
		if err != nil {
			return s, err
		}
		s.Runtime = rt
	}
	return s, nil
}

// Validate rejects unknown values, non-canonical spellings and unsupported
// combinations. Settings read from user input go through Normalize first.
func (s Settings) Validate() error {
	n, err := s.Normalize()
	if err != nil {
		return err
	}
	if n != s {
		return fmt.Errorf("%w: settings %s are not in canonical form (expected %s)", ErrUnsupported, s.describe(), n.describe())
	}
	if s.Compiler.Family() == FamilyVisualStudio {
		if s.BuildType != BuildDebug && s.BuildType != BuildRelease {
			return fmt.Errorf("%w: Visual Studio solutions only define Debug and Release, got build_type %q", ErrUnsupported, s.BuildType)
		}
		if s.OS != OSWindows {
			return fmt.Errorf("%w: compiler %q requires os Windows, got %q", ErrUnsupported, s.Compiler, s.OS)
		}
		if _, err := strconv.Atoi(s.CompilerVersion); err != nil {
			return fmt.Errorf("%w: compiler.version %q is not a Visual Studio major version", ErrUnsupported, s.CompilerVersion)
		}
		if s.Runtime != "" {
			if _, err := ParseRuntime(string(s.Runtime)); err != nil {
				return err
			}
		}
	} else if s.Runtime != "" {
		return fmt.Errorf("%w: compiler.runtime is only valid for %s", ErrUnsupported, CompilerVisualStudio)
	}
	if s.Compiler == CompilerAppleClang && s.OS != OSMacos {
		return fmt.Errorf("%w: compiler %q requires os Macos", ErrUnsupported, s.Compiler)
	}
	return nil
}

func (s Settings) describe() string {
	return fmt.Sprintf("os=%s arch=%s compiler=%s build_type=%s runtime=%s", s.OS, s.Arch, s.Compiler, s.BuildType, s.Runtime)
}

// DetectHost fills OS and Arch from the running process when they are empty
func (s Settings) DetectHost() Settings {
	if s.OS == "" {
		s.OS = HostOS()
	}
	if s.Arch == "" {
		s.Arch = HostArch()
	}
	return s
}

// HostOS maps runtime.GOOS onto the settings enumeration
func HostOS() OS {
	switch runtime.GOOS {
	case "windows":
		return OSWindows
	case "darwin":
		return OSMacos
	case "freebsd":
		return OSFreeBSD
	default:
		return OSLinux
	}
}

// HostArch maps runtime.GOARCH onto the settings enumeration
func HostArch() Arch {
	return ArchFromGo(runtime.GOARCH)
}

// ArchFromGo maps a GOARCH value onto the settings enumeration
func ArchFromGo(goarch string) Arch {
	switch goarch {
	case "386":
		return ArchX86
	case "arm":
		return ArchArmv7
	case "arm64":
		return ArchArmv8
	default:
		return ArchX86_64
	}
}

// ParseOS parses an OS value, case-insensitively
func ParseOS(v string) (OS, error) {
	for _, o := range AllOS {
		if strings.EqualFold(v, string(o)) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: os %q", ErrUnsupported, v)
}

// ParseArch parses an architecture value
func ParseArch(v string) (Arch, error) {
	for _, a := range AllArch {
		if strings.EqualFold(v, string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: arch %q", ErrUnsupported, v)
}

// ParseCompiler parses a compiler value
func ParseCompiler(v string) (Compiler, error) {
	for _, c := range AllCompilers {
		if strings.EqualFold(v, string(c)) {
			return c, nil
		}
	}
	if strings.EqualFold(v, "msvc") {
		return CompilerVisualStudio, nil
	}
	return "", fmt.Errorf("%w: compiler %q", ErrUnsupported, v)
}

// ParseBuildType parses a build type value
func ParseBuildType(v string) (BuildType, error) {
	for _, b := range AllBuildTypes {
		if strings.EqualFold(v, string(b)) {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: build_type %q", ErrUnsupported, v)
}

// ParseRuntime parses a Visual Studio runtime value. Case matters: MTd is not MT.
func ParseRuntime(v string) (Runtime, error) {
	switch Runtime(v) {
	case RuntimeMT, RuntimeMTd, RuntimeMD, RuntimeMDd:
		return Runtime(v), nil
	}
	return "", fmt.Errorf("%w: compiler.runtime %q", ErrUnsupported, v)
}
