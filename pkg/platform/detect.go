// pkg/platform/detect.go
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Family is the host package manager family
type Family string

const (
	// FamilyDebian hosts install with apt-get
	FamilyDebian Family = "debian"
	// FamilyRedHat hosts install with dnf or yum
	FamilyRedHat Family = "redhat"
	// FamilyUnknown hosts get no system requirements
	FamilyUnknown Family = "unknown"
)

// Platform represents the detected host system
type Platform struct {
	OS        string // linux, darwin, windows
	Arch      string // amd64, arm64, 386, arm
	Family    Family // package manager family, linux only
	Installer string // apt-get, dnf or yum
	Distro    string // ID from os-release
}

// IsLinux reports whether the host is Linux
func (p *Platform) IsLinux() bool {
	return p.OS == "linux"
}

// Detector inspects a host. Root and LookPath are replaceable for tests.
type Detector struct {
	Root     string
	GOOS     string
	GOARCH   string
	LookPath func(string) bool
}

// Detect detects the current host platform and its package manager
func Detect() (*Platform, error) {
	return (&Detector{}).Detect()
}

// Detect inspects the host described by d
func (d *Detector) Detect() (*Platform, error) {
	root := d.Root
	if root == "" {
		root = "/"
	}
	lookPath := d.LookPath
	if lookPath == nil {
		lookPath = commandExists
	}

	p := &Platform{
		OS:     firstNonEmpty(d.GOOS, runtime.GOOS),
		Arch:   firstNonEmpty(d.GOARCH, runtime.GOARCH),
		Family: FamilyUnknown,
	}

	if !p.IsLinux() {
		return p, nil
	}

	release := readOSRelease(root)
	p.Distro = release["ID"]
	ids := strings.ToLower(release["ID"] + " " + release["ID_LIKE"])

	switch {
	case containsAny(ids, "debian", "ubuntu") || fileExists(filepath.Join(root, "etc", "debian_version")):
		p.Family = FamilyDebian
	case containsAny(ids, "fedora", "rhel", "centos") || fileExists(filepath.Join(root, "etc", "redhat-release")):
		p.Family = FamilyRedHat
	case lookPath("apt-get"):
		p.Family = FamilyDebian
	case lookPath("dnf") || lookPath("yum"):
		p.Family = FamilyRedHat
	}

	switch p.Family {
	case FamilyDebian:
		p.Installer = "apt-get"
	case FamilyRedHat:
		p.Installer = "yum"
		if lookPath("dnf") {
			p.Installer = "dnf"
		}
	}

	return p, nil
}

// String returns a string representation of the platform
func (p *Platform) String() string {
	return fmt.Sprintf("%s/%s (package manager: %s)", p.OS, p.Arch, p.Family)
}

// readOSRelease parses etc/os-release (falling back to usr/lib/os-release)
func readOSRelease(root string) map[string]string {
	values := map[string]string{}
	for _, rel := range []string{"etc/os-release", "usr/lib/os-release"} {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
			if !ok || strings.HasPrefix(key, "#") {
				continue
			}
			values[key] = strings.Trim(value, `"'`)
		}
		break
	}
	return values
}
