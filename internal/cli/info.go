// internal/cli/info.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	glew "github.com/bincrafters/conan-glew"
	"github.com/bincrafters/conan-glew/pkg/metadata"
)

var (
	infoRecipe recipeFlags
	infoFormat string
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the consumer metadata for the given settings",
	Long: `Display the libraries, defines and link flags consumers of the package
use. Nothing is fetched or built.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	infoRecipe.register(infoCmd)
	infoCmd.Flags().StringVar(&infoFormat, "format", string(metadata.FormatText), "output format: toml, yaml, txt, cmake")
}

func runInfo(cmd *cobra.Command, args []string) error {
	desc, err := infoRecipe.descriptor()
	if err != nil {
		return err
	}

	format, err := metadata.ParseFormat(infoFormat)
	if err != nil {
		return err
	}

	info, err := glew.Describe(desc)
	if err != nil {
		return err
	}

	data, err := metadata.Encode(info, format)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s/%s %s\n", desc.Name, desc.Version, desc.Key())
	_, err = out.Write(data)
	return err
}
