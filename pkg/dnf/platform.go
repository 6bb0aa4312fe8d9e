// pkg/dnf/platform.go
package dnf

import (
	"fmt"

	"github.com/bincrafters/conan-glew/pkg/settings"
)

// Architecture represents a Fedora/RPM architecture
type Architecture string

const (
	ArchX86_64  Architecture = "x86_64"  // x86 64-bit
	ArchI686    Architecture = "i686"    // x86 32-bit
	ArchAarch64 Architecture = "aarch64" // ARM 64-bit
	ArchArmv7hl Architecture = "armv7hl" // ARM 32-bit hard float
)

// FromSettings maps a settings architecture onto its RPM name
func FromSettings(a settings.Arch) (Architecture, error) {
	switch a {
	case settings.ArchX86_64:
		return ArchX86_64, nil
	case settings.ArchX86:
		return ArchI686, nil
	case settings.ArchArmv8:
		return ArchAarch64, nil
	case settings.ArchArmv7:
		return ArchArmv7hl, nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s", a)
	}
}

// String returns the string representation of the architecture
func (a Architecture) String() string {
	return string(a)
}

// Qualify returns the arch-qualified package name, e.g. mesa-libGLU-devel.i686
func (a Architecture) Qualify(pkg string) string {
	return pkg + "." + string(a)
}
