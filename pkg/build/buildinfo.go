// pkg/build/buildinfo.go
package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bincrafters/conan-glew/pkg/settings"
)

const (
	// BuildInfoFile is generated in the build folder and included by the
	// patched CMake project
	BuildInfoFile = "recipebuildinfo.cmake"

	setupMacro = "recipe_basic_setup"
)

// BuildInfo holds the toolchain flags handed to the CMake project
type BuildInfo struct {
	IncludeDirs       []string
	LibDirs           []string
	Defines           []string
	CFlags            []string
	CXXFlags          []string
	SharedLinkerFlags []string
	ExeLinkerFlags    []string
}

// NewBuildInfo derives the flags for key. Only 32-bit builds on a
// non-Windows host need extra flags.
func NewBuildInfo(key settings.MatrixKey) BuildInfo {
	var info BuildInfo
	if key.Arch == settings.ArchX86 && key.OS != settings.OSWindows {
		info.CFlags = []string{"-m32"}
		info.CXXFlags = []string{"-m32"}
		info.SharedLinkerFlags = []string{"-m32"}
		info.ExeLinkerFlags = []string{"-m32"}
	}
	return info
}

// Render returns the CMake script content
func (i BuildInfo) Render() []byte {
	var b strings.Builder
	b.WriteString("# Generated build information, do not edit\n\n")
	fmt.Fprintf(&b, "set(RECIPE_INCLUDE_DIRS %s)\n", cmakeQuoted(i.IncludeDirs))
	fmt.Fprintf(&b, "set(RECIPE_LIB_DIRS %s)\n", cmakeQuoted(i.LibDirs))
	fmt.Fprintf(&b, "set(RECIPE_DEFINES %s)\n", cmakeQuoted(i.Defines))
	fmt.Fprintf(&b, "set(RECIPE_C_FLAGS \"%s\")\n", strings.Join(i.CFlags, " "))
	fmt.Fprintf(&b, "set(RECIPE_CXX_FLAGS \"%s\")\n", strings.Join(i.CXXFlags, " "))
	fmt.Fprintf(&b, "set(RECIPE_SHARED_LINKER_FLAGS \"%s\")\n", strings.Join(i.SharedLinkerFlags, " "))
	fmt.Fprintf(&b, "set(RECIPE_EXE_LINKER_FLAGS \"%s\")\n", strings.Join(i.ExeLinkerFlags, " "))
	b.WriteString(`
macro(` + setupMacro + `)
    include_directories(${RECIPE_INCLUDE_DIRS})
    link_directories(${RECIPE_LIB_DIRS})
    add_definitions(${RECIPE_DEFINES})
    set(CMAKE_C_FLAGS "${RECIPE_C_FLAGS} ${CMAKE_C_FLAGS}")
    set(CMAKE_CXX_FLAGS "${RECIPE_CXX_FLAGS} ${CMAKE_CXX_FLAGS}")
    set(CMAKE_SHARED_LINKER_FLAGS "${RECIPE_SHARED_LINKER_FLAGS} ${CMAKE_SHARED_LINKER_FLAGS}")
    set(CMAKE_EXE_LINKER_FLAGS "${RECIPE_EXE_LINKER_FLAGS} ${CMAKE_EXE_LINKER_FLAGS}")
    set(CMAKE_RUNTIME_OUTPUT_DIRECTORY ${CMAKE_CURRENT_BINARY_DIR}/bin)
    set(CMAKE_ARCHIVE_OUTPUT_DIRECTORY ${CMAKE_CURRENT_BINARY_DIR}/lib)
    set(CMAKE_LIBRARY_OUTPUT_DIRECTORY ${CMAKE_CURRENT_BINARY_DIR}/lib)
endmacro()
`)
	return []byte(b.String())
}

// Write stores the script in dir and returns its path
func (i BuildInfo) Write(dir string) (string, error) {
	path := filepath.Join(dir, BuildInfoFile)
	if err := os.WriteFile(path, i.Render(), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", BuildInfoFile, err)
	}
	return path, nil
}

func cmakeQuoted(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, " ")
}
