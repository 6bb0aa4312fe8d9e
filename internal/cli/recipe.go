// internal/cli/recipe.go
package cli

import (
	"github.com/spf13/cobra"

	"github.com/bincrafters/conan-glew/pkg/settings"
)

// recipeFlags select the descriptor a command works on
type recipeFlags struct {
	recipe   string
	version  string
	settings []string
	options  []string
}

func (f *recipeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.recipe, "recipe", "", "recipe descriptor file (YAML)")
	cmd.Flags().StringVar(&f.version, "version", "", "library version to package (e.g. 2.1.0 or master)")
	cmd.Flags().StringArrayVarP(&f.settings, "settings", "s", nil, "setting name=value (os, arch, compiler, compiler.version, compiler.runtime, build_type)")
	cmd.Flags().StringArrayVarP(&f.options, "options", "o", nil, "option name=value (shared)")
}

// descriptor resolves config defaults, then flags
func (f *recipeFlags) descriptor() (settings.Descriptor, error) {
	cfg := *config
	if f.recipe != "" {
		cfg.Recipe = f.recipe
	}

	desc, err := cfg.Descriptor()
	if err != nil {
		return desc, err
	}

	if f.version != "" {
		desc.Version = f.version
		desc.SHA256 = ""
	}
	for _, s := range f.settings {
		if desc, err = desc.WithSetting(s); err != nil {
			return desc, err
		}
	}
	for _, o := range f.options {
		if desc, err = desc.WithOption(o); err != nil {
			return desc, err
		}
	}

	return desc, desc.Validate()
}
