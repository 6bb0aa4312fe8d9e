// internal/cli/requirements.go
package cli

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	glew "github.com/bincrafters/conan-glew"
	"github.com/bincrafters/conan-glew/pkg/platform"
	"github.com/bincrafters/conan-glew/pkg/sysreqs"
)

var (
	requirementsRecipe  recipeFlags
	requirementsInstall bool

	detectPlatform = platform.Detect
)

var requirementsCmd = &cobra.Command{
	Use:   "requirements",
	Short: "Show or install the system requirements",
	Long: `List the host development packages the build needs. With --install
they are installed through apt-get, dnf or yum.`,
	Args: cobra.NoArgs,
	RunE: runRequirements,
}

func init() {
	requirementsRecipe.register(requirementsCmd)
	requirementsCmd.Flags().BoolVar(&requirementsInstall, "install", false, "install the packages")
}

func runRequirements(cmd *cobra.Command, args []string) error {
	desc, err := requirementsRecipe.descriptor()
	if err != nil {
		return err
	}

	plat, err := detectPlatform()
	if err != nil {
		return fmt.Errorf("detecting platform: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Platform: %s\n", plat)

	pkgs, err := glew.Requirements(desc, plat)
	if errors.Is(err, glew.ErrUnknownPackageManager) {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Warning: Could not determine Linux package manager, skipping system requirements installation.\n")
		return nil
	}
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		fmt.Fprintf(out, "No system requirements\n")
		return nil
	}

	for _, pkg := range pkgs {
		fmt.Fprintf(out, "  %s\n", pkg)
	}

	if !requirementsInstall {
		return nil
	}

	logger := log.New(out, "", 0)
	if config.Debug {
		logger = log.New(out, "[glew] ", log.LstdFlags)
	}
	phase := &sysreqs.Phase{Platform: plat, Logger: logger, Warn: log.New(cmd.ErrOrStderr(), "", 0)}
	if err := phase.Run(cmd.Context(), desc); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ System requirements installed\n")
	return nil
}
