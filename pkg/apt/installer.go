// pkg/apt/installer.go
package apt

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/bincrafters/conan-glew/pkg/command"
)

// Installer installs Debian packages through apt-get
type Installer struct {
	runner command.Runner
	logger *log.Logger
	sudo   bool
}

// NewInstaller creates an apt-get installer. With sudo set, privileged
// commands are prefixed with sudo.
func NewInstaller(runner command.Runner, sudo bool, logger *log.Logger) *Installer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Installer{runner: runner, logger: logger, sudo: sudo}
}

// Name returns the installer name
func (i *Installer) Name() string {
	return "apt"
}

// Install installs the packages that are not installed yet. A qualified
// name (pkg:arch) enables that foreign architecture first.
func (i *Installer) Install(ctx context.Context, packages []string) error {
	var missing []string
	for _, pkg := range packages {
		if i.installed(ctx, pkg) {
			i.logger.Printf("  Package already installed: %s", pkg)
			continue
		}
		missing = append(missing, pkg)
	}
	if len(missing) == 0 {
		return nil
	}

	foreign := foreignArchitectures(missing)
	for _, arch := range foreign {
		i.logger.Printf("  Enabling architecture %s", arch)
		if err := i.runner.Run(ctx, i.privileged(Dpkg, "--add-architecture", arch)); err != nil {
			return fmt.Errorf("adding architecture %s: %w", arch, err)
		}
	}

	if err := i.runner.Run(ctx, i.privileged(AptGet, "update")); err != nil {
		return fmt.Errorf("updating package lists: %w", err)
	}

	args := append([]string{"install", "-y", "--no-install-recommends"}, missing...)
	if err := i.runner.Run(ctx, i.privileged(AptGet, args...)); err != nil {
		return fmt.Errorf("installing %s: %w", strings.Join(missing, " "), err)
	}
	return nil
}

// installed asks dpkg-query; any failure counts as not installed
func (i *Installer) installed(ctx context.Context, pkg string) bool {
	out, err := i.runner.Output(ctx, command.New(DpkgQuery, "-W", "-f=${Status}", pkg))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == installedStatus
}

func (i *Installer) privileged(name string, args ...string) command.Command {
	cmd := command.New(name, args...)
	cmd.Env = []string{"DEBIAN_FRONTEND=noninteractive"}
	if i.sudo {
		cmd = command.Command{Name: "sudo", Args: append([]string{"-E", name}, args...), Env: cmd.Env}
	}
	return cmd
}

func foreignArchitectures(packages []string) []string {
	seen := map[string]bool{}
	var archs []string
	for _, pkg := range packages {
		_, arch, ok := strings.Cut(pkg, ":")
		if !ok || arch == "" || seen[arch] {
			continue
		}
		seen[arch] = true
		archs = append(archs, arch)
	}
	return archs
}
