// internal/cli/version.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bincrafters/conan-glew/pkg/settings"
)

// Version of the glewpkg tool
const Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("glewpkg version %s\n", Version)
		fmt.Printf("Packages %s %s by default\n", settings.DefaultName, settings.DefaultVersion)
		fmt.Println("https://github.com/bincrafters/conan-glew")
	},
}
