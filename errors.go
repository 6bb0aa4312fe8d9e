// errors.go
package glew

import (
	"errors"
	"fmt"

	"github.com/bincrafters/conan-glew/pkg/build"
	"github.com/bincrafters/conan-glew/pkg/fetch"
	"github.com/bincrafters/conan-glew/pkg/packaging"
	"github.com/bincrafters/conan-glew/pkg/recipe"
	"github.com/bincrafters/conan-glew/pkg/settings"
)

var (
	// ErrUnsupportedSettings indicates a matrix key outside the supported set
	ErrUnsupportedSettings = settings.ErrUnsupported

	// ErrNoArtifacts indicates a required packaging rule copied nothing
	ErrNoArtifacts = packaging.ErrNoArtifacts

	// ErrPatchTarget indicates a bundled build file lacks the text to patch
	ErrPatchTarget = build.ErrPatchTarget

	// ErrHashMismatch indicates a hash verification failure
	ErrHashMismatch = fetch.ErrHashMismatch

	// ErrArtifactMismatch indicates the package lacks a library the metadata names
	ErrArtifactMismatch = recipe.ErrArtifactMismatch

	// ErrUnknownPackageManager indicates the host package manager could not be determined
	ErrUnknownPackageManager = errors.New("unknown package manager")
)

// Error wraps an error with additional context
type Error struct {
	Op      string // Operation that failed
	Package string // Package reference if applicable
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Package, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
