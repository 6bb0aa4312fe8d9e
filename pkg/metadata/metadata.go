// pkg/metadata/metadata.go
package metadata

import (
	"github.com/bincrafters/conan-glew/pkg/settings"
)

const (
	// DefineStatic is set by consumers linking the static Windows library
	DefineStatic = "GLEW_STATIC"

	// DebugSuffix is appended once to the base library name in Debug builds
	DebugSuffix = "d"
)

// Info is the consumer-facing link description of a package
type Info struct {
	Libs         []string `toml:"libs" yaml:"libs"`
	Defines      []string `toml:"defines" yaml:"defines"`
	ExeLinkFlags []string `toml:"exelinkflags" yaml:"exelinkflags"`
	IncludeDirs  []string `toml:"includedirs" yaml:"includedirs"`
	LibDirs      []string `toml:"libdirs" yaml:"libdirs"`
	BinDirs      []string `toml:"bindirs" yaml:"bindirs"`
}

// BaseLib returns the first library, the one built by the recipe
func (i Info) BaseLib() string {
	if len(i.Libs) == 0 {
		return ""
	}
	return i.Libs[0]
}

// Describe computes the consumer metadata for a matrix key. It has no side effects.
func Describe(key settings.MatrixKey) Info {
	info := Info{
		Libs:         []string{},
		Defines:      []string{},
		ExeLinkFlags: []string{},
		IncludeDirs:  []string{"include"},
		LibDirs:      []string{"lib"},
		BinDirs:      []string{"bin"},
	}

	base := baseName(key)
	if key.BuildType.IsDebug() {
		base += DebugSuffix
	}
	info.Libs = append(info.Libs, base)

	if !key.Shared {
		info.Libs = append(info.Libs, loaderLib(key))
	}

	switch key.OS {
	case settings.OSWindows:
		if !key.Shared {
			info.Defines = append(info.Defines, DefineStatic)
		}
		if key.Family() == settings.FamilyVisualStudio && !key.Shared && !key.Runtime.IsStatic() {
			info.ExeLinkFlags = append(info.ExeLinkFlags, "-NODEFAULTLIB:LIBCMTD", "-NODEFAULTLIB:LIBCMT")
		}
	case settings.OSMacos:
		info.ExeLinkFlags = append(info.ExeLinkFlags, "-framework OpenGL")
	}

	return info
}

// baseName is the library name before the debug suffix
func baseName(key settings.MatrixKey) string {
	if key.OS != settings.OSWindows {
		return "GLEW"
	}
	if key.Family() == settings.FamilyVisualStudio && !key.Shared {
		return "glew32s"
	}
	return "glew32"
}

// loaderLib is the system OpenGL library static consumers must also link
func loaderLib(key settings.MatrixKey) string {
	if key.OS == settings.OSWindows {
		if key.Family() == settings.FamilyVisualStudio {
			return "OpenGL32"
		}
		return "opengl32"
	}
	return "GL"
}

// ArtifactNames returns the file names under which the base library must be
// present in the package tree for the key: the link library first, then the
// runtime library for shared Windows builds.
func ArtifactNames(key settings.MatrixKey, info Info) []string {
	lib := info.BaseLib()

	switch key.OS {
	case settings.OSWindows:
		if key.Family() == settings.FamilyVisualStudio {
			if key.Shared {
				return []string{lib + ".lib", lib + ".dll"}
			}
			return []string{lib + ".lib"}
		}
		if key.Shared {
			return []string{"lib" + lib + ".dll.a", lib + ".dll"}
		}
		return []string{"lib" + lib + ".a"}
	case settings.OSMacos:
		if key.Shared {
			return []string{"lib" + lib + ".dylib"}
		}
		return []string{"lib" + lib + ".a"}
	default:
		if key.Shared {
			return []string{"lib" + lib + ".so"}
		}
		return []string{"lib" + lib + ".a"}
	}
}
