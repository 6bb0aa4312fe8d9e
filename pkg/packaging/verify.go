// pkg/packaging/verify.go
package packaging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blakesmith/ar"
)

// ErrInvalidArchive indicates a packaged static library is not a usable ar archive
var ErrInvalidArchive = errors.New("invalid static archive")

// ArchiveMembers lists the member names of an ar archive
func ArchiveMembers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	reader := ar.NewReader(f)

	var members []string
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: reading ar entry: %v", ErrInvalidArchive, filepath.Base(path), err)
		}
		members = append(members, strings.TrimRight(header.Name, "/ "))
	}

	return members, nil
}

// Verify checks that every static archive in the manifest holds at least one member
func Verify(m *Manifest) error {
	for _, rel := range m.Files {
		if !strings.HasSuffix(rel, ".a") {
			continue
		}

		path := filepath.Join(m.Root, filepath.FromSlash(rel))
		info, err := os.Lstat(path)
		if err != nil {
			return fmt.Errorf("verifying %s: %w", rel, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}

		members, err := ArchiveMembers(path)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return fmt.Errorf("%w: %s has no members", ErrInvalidArchive, rel)
		}
	}
	return nil
}
