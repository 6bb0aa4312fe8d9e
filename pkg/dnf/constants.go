// pkg/dnf/constants.go
package dnf

const (
	// Rpm reports installed package state
	Rpm = "rpm"
)

// Frontends in order of preference
const (
	FrontendDnf = "dnf"
	FrontendYum = "yum"
)
