// pkg/sysreqs/sysreqs.go
package sysreqs

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bincrafters/conan-glew/pkg/apt"
	"github.com/bincrafters/conan-glew/pkg/command"
	"github.com/bincrafters/conan-glew/pkg/dnf"
	"github.com/bincrafters/conan-glew/pkg/platform"
	"github.com/bincrafters/conan-glew/pkg/settings"
)

// Installer installs host development packages
type Installer interface {
	Name() string
	Install(ctx context.Context, packages []string) error
}

// Request describes what prerequisites are needed
type Request struct {
	Family   platform.Family
	Version  string        // recipe version; master needs the full toolchain
	Arch     settings.Arch // target architecture
	HostArch settings.Arch // architecture of the build machine
}

// crossX86 reports a 32-bit build on a 64-bit host
func (r Request) crossX86() bool {
	return r.Arch == settings.ArchX86 && r.HostArch == settings.ArchX86_64
}

// Packages selects the development packages for the request. Unknown
// package managers get none.
func Packages(r Request) []string {
	var pkgs []string

	switch r.Family {
	case platform.FamilyDebian:
		if r.Version == settings.VersionMaster {
			pkgs = append(pkgs, "build-essential", "libxmu-dev", "libxi-dev", "libgl-dev", "libosmesa-dev")
		}
		if r.crossX86() {
			arch, _ := apt.FromSettings(r.Arch)
			pkgs = append(pkgs, arch.Qualify("libglu1-mesa-dev"))
		} else {
			pkgs = append(pkgs, "libglu1-mesa-dev")
		}
	case platform.FamilyRedHat:
		if r.Version == settings.VersionMaster {
			pkgs = append(pkgs, "libXmu-devel", "libXi-devel", "libGL-devel")
		}
		if r.crossX86() {
			arch, _ := dnf.FromSettings(r.Arch)
			pkgs = append(pkgs, arch.Qualify("mesa-libGLU-devel"))
		} else {
			pkgs = append(pkgs, "mesa-libGLU-devel")
		}
	}

	return pkgs
}

// NewInstaller returns the installer for a detected host, or nil when its
// package manager is unknown
func NewInstaller(p *platform.Platform, runner command.Runner, logger *log.Logger) Installer {
	sudo := os.Geteuid() != 0 && commandAvailable("sudo")

	switch p.Family {
	case platform.FamilyDebian:
		return apt.NewInstaller(runner, sudo, logger)
	case platform.FamilyRedHat:
		return dnf.NewInstaller(runner, p.Installer, sudo, logger)
	default:
		return nil
	}
}

// Phase installs the system requirements of a recipe on the host
type Phase struct {
	Platform  *platform.Platform
	Installer Installer   // nil selects one from Platform
	Runner    command.Runner
	Logger    *log.Logger // progress, discarded when nil
	Warn      *log.Logger // warnings, stderr when nil
}

// Run installs the prerequisites. Non-Linux hosts are skipped; an unknown
// package manager only warns. Installer failures are returned.
func (p *Phase) Run(ctx context.Context, desc settings.Descriptor) error {
	logger := p.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	warn := p.Warn
	if warn == nil {
		warn = log.New(os.Stderr, "", 0)
	}

	host := p.Platform
	if host == nil {
		var err error
		host, err = platform.Detect()
		if err != nil {
			return fmt.Errorf("detecting platform: %w", err)
		}
	}

	if !host.IsLinux() {
		logger.Printf("  No system requirements on %s", host.OS)
		return nil
	}

	if host.Family == platform.FamilyUnknown {
		warn.Printf("⚠️  Warning: Could not determine Linux package manager, skipping system requirements installation.")
		return nil
	}

	pkgs := Packages(Request{
		Family:   host.Family,
		Version:  desc.Version,
		Arch:     desc.Settings.Arch,
		HostArch: settings.ArchFromGo(host.Arch),
	})

	installer := p.Installer
	if installer == nil {
		runner := p.Runner
		if runner == nil {
			runner = command.NewExecRunner(logger)
		}
		installer = NewInstaller(host, runner, logger)
	}

	logger.Printf("  Installing with %s: %v", installer.Name(), pkgs)
	if err := installer.Install(ctx, pkgs); err != nil {
		return fmt.Errorf("installing system requirements: %w", err)
	}
	return nil
}
