// internal/cli/create.go
package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	glew "github.com/bincrafters/conan-glew"
	"github.com/bincrafters/conan-glew/pkg/metadata"
)

var (
	createRecipe        recipeFlags
	createSourceFolder  string
	createBuildFolder   string
	createPackageFolder string
	createFormats       []string
	createSkipPrereqs   bool
	createSkipFetch     bool
	createSkipBuild     bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Fetch, build and package GLEW",
	Long: `Run the whole recipe: install system requirements, fetch the sources,
build them and lay out the package with its consumer metadata.

Examples:
  glewpkg create
  glewpkg create -s build_type=Debug -o shared=True
  glewpkg create -s os=Windows -s compiler="Visual Studio" -s compiler.version=15 -s arch=x86
  glewpkg create --version master --format toml --format cmake
  glewpkg create --skip-fetch --skip-build --package-folder out`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createRecipe.register(createCmd)
	createCmd.Flags().StringVar(&createSourceFolder, "source-folder", "", "folder receiving the sources")
	createCmd.Flags().StringVar(&createBuildFolder, "build-folder", "", "folder for the native build")
	createCmd.Flags().StringVar(&createPackageFolder, "package-folder", "", "folder receiving the package")
	createCmd.Flags().StringArrayVar(&createFormats, "format", nil, "consumer metadata format: toml, yaml, txt, cmake (repeatable)")
	createCmd.Flags().BoolVar(&createSkipPrereqs, "skip-prereqs", false, "do not install system requirements")
	createCmd.Flags().BoolVar(&createSkipFetch, "skip-fetch", false, "reuse sources already in the source folder")
	createCmd.Flags().BoolVar(&createSkipBuild, "skip-build", false, "package the existing build output")
}

func runCreate(cmd *cobra.Command, args []string) error {
	desc, err := createRecipe.descriptor()
	if err != nil {
		return err
	}

	formats, err := config.MetadataFormats()
	if err != nil {
		return err
	}
	if len(createFormats) > 0 {
		formats = formats[:0]
		for _, f := range createFormats {
			format, err := metadata.ParseFormat(f)
			if err != nil {
				return err
			}
			formats = append(formats, format)
		}
	}

	out := cmd.OutOrStdout()
	opts := &glew.Options{
		SourceFolder:  firstNonEmpty(createSourceFolder, config.SourceFolder),
		BuildFolder:   firstNonEmpty(createBuildFolder, config.BuildFolder),
		PackageFolder: firstNonEmpty(createPackageFolder, config.PackageFolder),
		Formats:       formats,
		SkipPrereqs:   createSkipPrereqs,
		SkipFetch:     createSkipFetch,
		SkipBuild:     createSkipBuild,
		Debug:         config.Debug,
		Logger:        log.New(out, "", 0),
		Warn:          log.New(cmd.ErrOrStderr(), "", 0),
	}
	if config.Debug {
		opts.Logger = log.New(out, "[glew] ", log.LstdFlags)
	}

	fmt.Fprintf(out, "Creating %s/%s for %s\n", desc.Name, desc.Version, desc.Key())

	result, err := glew.Create(cmd.Context(), desc, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n✓ Package created in %s (%d files)\n", result.PackageDir, len(result.Manifest.Files))
	for _, path := range result.MetadataFiles {
		fmt.Fprintf(out, "  %s\n", path)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
