// glew.go
package glew

import (
	"context"
	"fmt"

	"github.com/bincrafters/conan-glew/pkg/metadata"
	"github.com/bincrafters/conan-glew/pkg/packaging"
	"github.com/bincrafters/conan-glew/pkg/platform"
	"github.com/bincrafters/conan-glew/pkg/recipe"
	"github.com/bincrafters/conan-glew/pkg/settings"
	"github.com/bincrafters/conan-glew/pkg/sysreqs"
)

// Re-export types for convenience
type (
	Descriptor = settings.Descriptor
	Settings   = settings.Settings
	MatrixKey  = settings.MatrixKey
	Info       = metadata.Info
	Format     = metadata.Format
	Rule       = packaging.Rule
	Options    = recipe.Options
	Result     = recipe.Result
	PhaseError = recipe.PhaseError
	State      = recipe.State
)

// Re-export metadata formats
const (
	FormatTOML  = metadata.FormatTOML
	FormatYAML  = metadata.FormatYAML
	FormatText  = metadata.FormatText
	FormatCMake = metadata.FormatCMake
)

// DefaultDescriptor returns the GLEW recipe for the running host
func DefaultDescriptor() Descriptor {
	return settings.Default()
}

// LoadDescriptor reads a recipe descriptor file over the defaults
func LoadDescriptor(path string) (Descriptor, error) {
	return settings.Load(path)
}

func reference(desc Descriptor) string {
	return desc.Name + "/" + desc.Version
}

// Create runs the whole recipe: prerequisites, sources, build, package
// and consumer metadata
func Create(ctx context.Context, desc Descriptor, opts *Options) (*Result, error) {
	result, err := recipe.NewExecutor(desc, opts).Run(ctx)
	if err != nil {
		return nil, &Error{Op: "create", Package: reference(desc), Err: err}
	}
	return result, nil
}

// Describe returns the consumer metadata for the descriptor's matrix key
func Describe(desc Descriptor) (Info, error) {
	if err := desc.Validate(); err != nil {
		return Info{}, &Error{Op: "describe", Package: reference(desc), Err: err}
	}
	return metadata.Describe(desc.Key()), nil
}

// Rules returns the packaging copy rules for the descriptor's matrix key
func Rules(desc Descriptor) ([]Rule, error) {
	if err := desc.Validate(); err != nil {
		return nil, &Error{Op: "rules", Package: reference(desc), Err: err}
	}
	rules, err := packaging.Rules(desc.Key())
	if err != nil {
		return nil, &Error{Op: "rules", Package: reference(desc), Err: err}
	}
	return rules, nil
}

// Requirements lists the system packages the recipe needs on host. Non
// Linux hosts need none; an unrecognized Linux package manager yields
// ErrUnknownPackageManager.
func Requirements(desc Descriptor, host *platform.Platform) ([]string, error) {
	if !host.IsLinux() {
		return nil, nil
	}
	if host.Family == platform.FamilyUnknown {
		return nil, &Error{Op: "requirements", Package: reference(desc), Err: fmt.Errorf("%w on %s", ErrUnknownPackageManager, host)}
	}
	return sysreqs.Packages(sysreqs.Request{
		Family:   host.Family,
		Version:  desc.Version,
		Arch:     desc.Settings.Arch,
		HostArch: settings.ArchFromGo(host.Arch),
	}), nil
}
