// pkg/packaging/rules.go
package packaging

import (
	"fmt"

	"github.com/bincrafters/conan-glew/pkg/settings"
)

// Root is where a rule searches for files
type Root int

const (
	// FromBuild searches the build folder
	FromBuild Root = iota
	// FromSource searches the extracted source folder
	FromSource
)

// Destination folders of the package tree
const (
	DirInclude  = "include"
	DirLib      = "lib"
	DirBin      = "bin"
	DirLicenses = "licenses"
)

// Rule copies every file matching Pattern below its root into Dst
type Rule struct {
	Pattern    string // glob on the file name; patterns containing "/" match the slash path relative to the root
	Dst        string // destination relative to the package root
	From       Root
	KeepPath   bool // keep the path relative to the root
	Shallow    bool // only look at files directly inside the root
	IgnoreCase bool
	Optional   bool // zero matches is not an error
}

func (r Rule) String() string {
	s := fmt.Sprintf("%s -> %s/", r.Pattern, r.Dst)
	if r.Optional {
		s += " (optional)"
	}
	return s
}

// CommonRules are copied for every matrix key
func CommonRules() []Rule {
	return []Rule{
		{Pattern: "include/**", Dst: ".", From: FromSource, KeepPath: true},
		{Pattern: "license*", Dst: DirLicenses, From: FromSource, Shallow: true, IgnoreCase: true},
	}
}

// ArtifactRules selects the compiled artifacts to copy for a matrix key.
// Exactly one branch applies to any valid key.
func ArtifactRules(key settings.MatrixKey) ([]Rule, error) {
	debug := key.BuildType.IsDebug()

	switch key.OS {
	case settings.OSWindows:
		switch key.Family() {
		case settings.FamilyVisualStudio:
			return visualStudioRules(key.Shared, debug), nil
		case settings.FamilyOther:
			return mingwRules(key.Shared, debug), nil
		}
	case settings.OSMacos:
		if key.Shared {
			return []Rule{{Pattern: "*.dylib", Dst: DirLib}}, nil
		}
		return []Rule{{Pattern: "*.a", Dst: DirLib}}, nil
	case settings.OSLinux, settings.OSFreeBSD:
		if key.Shared {
			return []Rule{
				{Pattern: "*.so", Dst: DirLib},
				{Pattern: "*.so.*", Dst: DirLib, Optional: true},
			}, nil
		}
		return []Rule{{Pattern: "*.a", Dst: DirLib}}, nil
	}

	return nil, fmt.Errorf("%w: no packaging rules for %s", settings.ErrUnsupported, key)
}

func visualStudioRules(shared, debug bool) []Rule {
	if shared {
		if debug {
			return []Rule{
				{Pattern: "*32d.lib", Dst: DirLib},
				{Pattern: "*.dll", Dst: DirBin},
				{Pattern: "*.pdb", Dst: DirBin},
			}
		}
		return []Rule{
			{Pattern: "*32.lib", Dst: DirLib},
			{Pattern: "*.dll", Dst: DirBin},
			{Pattern: "*.pdb", Dst: DirBin, Optional: true},
		}
	}
	if debug {
		return []Rule{
			{Pattern: "*32sd.lib", Dst: DirLib},
			{Pattern: "*.pdb", Dst: DirBin, Optional: true},
		}
	}
	return []Rule{
		{Pattern: "*32s.lib", Dst: DirLib},
		{Pattern: "*.pdb", Dst: DirBin, Optional: true},
	}
}

func mingwRules(shared, debug bool) []Rule {
	suffix := "32"
	if debug {
		suffix = "32d"
	}
	if shared {
		return []Rule{
			{Pattern: "*" + suffix + ".dll.a", Dst: DirLib},
			{Pattern: "*.dll", Dst: DirBin},
		}
	}
	return []Rule{{Pattern: "*" + suffix + ".a", Dst: DirLib}}
}

// Rules returns the common rules followed by the artifact rules for key
func Rules(key settings.MatrixKey) ([]Rule, error) {
	artifacts, err := ArtifactRules(key)
	if err != nil {
		return nil, err
	}
	return append(CommonRules(), artifacts...), nil
}
