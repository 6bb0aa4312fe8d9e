// pkg/apt/platform.go
package apt

import (
	"fmt"

	"github.com/bincrafters/conan-glew/pkg/settings"
)

// Architecture represents a Debian architecture
type Architecture string

const (
	ArchAmd64 Architecture = "amd64" // x86_64
	ArchI386  Architecture = "i386"  // x86 32-bit
	ArchArm64 Architecture = "arm64" // ARM 64-bit
	ArchArmhf Architecture = "armhf" // ARM hard float
)

// FromSettings maps a settings architecture onto its Debian name
func FromSettings(a settings.Arch) (Architecture, error) {
	switch a {
	case settings.ArchX86_64:
		return ArchAmd64, nil
	case settings.ArchX86:
		return ArchI386, nil
	case settings.ArchArmv8:
		return ArchArm64, nil
	case settings.ArchArmv7:
		return ArchArmhf, nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s", a)
	}
}

// String returns the string representation of the architecture
func (a Architecture) String() string {
	return string(a)
}

// Qualify returns the multiarch package name, e.g. libglu1-mesa-dev:i386
func (a Architecture) Qualify(pkg string) string {
	return pkg + ":" + string(a)
}
