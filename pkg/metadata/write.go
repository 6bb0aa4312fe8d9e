// pkg/metadata/write.go
package metadata

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk representation of Info
type Format string

const (
	FormatTOML  Format = "toml"
	FormatYAML  Format = "yaml"
	FormatText  Format = "txt"
	FormatCMake Format = "cmake"
)

// AllFormats lists the supported output formats
var AllFormats = []Format{FormatTOML, FormatYAML, FormatText, FormatCMake}

// FileName returns the file written for a format
func (f Format) FileName() string {
	switch f {
	case FormatYAML:
		return "glewinfo.yaml"
	case FormatText:
		return "glewinfo.txt"
	case FormatCMake:
		return "glewbuildinfo.cmake"
	default:
		return "glewinfo.toml"
	}
}

// ParseFormat parses a format name
func ParseFormat(v string) (Format, error) {
	for _, f := range AllFormats {
		if strings.EqualFold(v, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown metadata format %q", v)
}

// Encode renders info in the given format
func Encode(info Info, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(info); err != nil {
			return nil, fmt.Errorf("encoding toml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		data, err := yaml.Marshal(info)
		if err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return data, nil
	case FormatText:
		return encodeText(info), nil
	case FormatCMake:
		return encodeCMake(info), nil
	default:
		return nil, fmt.Errorf("unknown metadata format %q", format)
	}
}

// Write encodes info into dir and returns the written path
func Write(dir string, info Info, format Format) (string, error) {
	data, err := Encode(info, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating metadata directory: %w", err)
	}

	path := filepath.Join(dir, format.FileName())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}

	return path, nil
}

// Load reads a glewinfo.toml file back
func Load(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: reading %s: %w", path, err)
	}

	var info Info
	if _, err := toml.Decode(string(data), &info); err != nil {
		return nil, fmt.Errorf("metadata: failed to parse %s: %w", path, err)
	}

	return &info, nil
}

// encodeText writes the sectioned text form consumed by plain build scripts
func encodeText(info Info) []byte {
	var b strings.Builder
	sections := []struct {
		name   string
		values []string
	}{
		{"includedirs", info.IncludeDirs},
		{"libdirs", info.LibDirs},
		{"bindirs", info.BinDirs},
		{"libs", info.Libs},
		{"defines", info.Defines},
		{"exelinkflags", info.ExeLinkFlags},
	}
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s]\n", s.name)
		for _, v := range s.values {
			b.WriteString(v)
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

func encodeCMake(info Info) []byte {
	var b strings.Builder
	b.WriteString("get_filename_component(GLEW_ROOT \"${CMAKE_CURRENT_LIST_DIR}\" ABSOLUTE)\n")
	fmt.Fprintf(&b, "set(GLEW_INCLUDE_DIRS %s)\n", cmakeDirs(info.IncludeDirs))
	fmt.Fprintf(&b, "set(GLEW_LIB_DIRS %s)\n", cmakeDirs(info.LibDirs))
	fmt.Fprintf(&b, "set(GLEW_BIN_DIRS %s)\n", cmakeDirs(info.BinDirs))
	fmt.Fprintf(&b, "set(GLEW_LIBRARIES %s)\n", cmakeList(info.Libs))
	defines := make([]string, 0, len(info.Defines))
	for _, d := range info.Defines {
		defines = append(defines, "-D"+d)
	}
	fmt.Fprintf(&b, "set(GLEW_DEFINITIONS %s)\n", cmakeList(defines))
	fmt.Fprintf(&b, "set(GLEW_LINK_FLAGS %s)\n", cmakeList(info.ExeLinkFlags))
	return []byte(b.String())
}

func cmakeDirs(dirs []string) string {
	rooted := make([]string, 0, len(dirs))
	for _, d := range dirs {
		rooted = append(rooted, "${GLEW_ROOT}/"+d)
	}
	return cmakeList(rooted)
}

func cmakeList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, fmt.Sprintf("%q", v))
	}
	return strings.Join(quoted, " ")
}
