// internal/cli/rules.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	glew "github.com/bincrafters/conan-glew"
	"github.com/bincrafters/conan-glew/pkg/packaging"
)

var rulesRecipe recipeFlags

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the packaging copy rules",
	Long:  `List the file patterns copied into the package for the given settings.`,
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rulesRecipe.register(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	desc, err := rulesRecipe.descriptor()
	if err != nil {
		return err
	}

	rules, err := glew.Rules(desc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Matrix key: %s\n\n", desc.Key())
	fmt.Fprintf(out, "  %s -> ./\n", packaging.FindModuleName)
	for _, r := range rules {
		from := "build"
		if r.From == packaging.FromSource {
			from = "source"
		}
		fmt.Fprintf(out, "  [%s] %s\n", from, r)
	}
	return nil
}
