// pkg/dnf/installer.go
package dnf

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/bincrafters/conan-glew/pkg/command"
)

// Installer installs RPM packages through dnf or yum
type Installer struct {
	runner   command.Runner
	logger   *log.Logger
	frontend string
	sudo     bool
}

// NewInstaller creates an installer using frontend (dnf or yum)
func NewInstaller(runner command.Runner, frontend string, sudo bool, logger *log.Logger) *Installer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if frontend == "" {
		frontend = FrontendDnf
	}
	return &Installer{runner: runner, logger: logger, frontend: frontend, sudo: sudo}
}

// Name returns the installer name
func (i *Installer) Name() string {
	return i.frontend
}

// Install installs the packages rpm does not report as installed
func (i *Installer) Install(ctx context.Context, packages []string) error {
	var missing []string
	for _, pkg := range packages {
		if _, err := i.runner.Output(ctx, command.New(Rpm, "-q", pkg)); err == nil {
			i.logger.Printf("  Package already installed: %s", pkg)
			continue
		}
		missing = append(missing, pkg)
	}
	if len(missing) == 0 {
		return nil
	}

	args := append([]string{"install", "-y"}, missing...)
	cmd := command.New(i.frontend, args...)
	if i.sudo {
		cmd = command.New("sudo", append([]string{i.frontend}, args...)...)
	}

	if err := i.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("installing %s: %w", strings.Join(missing, " "), err)
	}
	return nil
}
