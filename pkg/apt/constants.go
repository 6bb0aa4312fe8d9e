// pkg/apt/constants.go
package apt

const (
	// AptGet is the non-interactive apt frontend
	AptGet = "apt-get"

	// Dpkg manages foreign architectures
	Dpkg = "dpkg"

	// DpkgQuery reports installed package state
	DpkgQuery = "dpkg-query"

	// installedStatus is the dpkg-query status of an installed package
	installedStatus = "install ok installed"
)
