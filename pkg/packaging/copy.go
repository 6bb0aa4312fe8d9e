// pkg/packaging/copy.go
package packaging

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoArtifacts indicates a required rule matched no file
var ErrNoArtifacts = errors.New("no artifacts matched")

// FindModuleName is the CMake discovery module placed at the package root
const FindModuleName = "FindGLEW.cmake"

//go:embed FindGLEW.cmake
var findModule []byte

// Layout names the folders the packaging phase reads and writes
type Layout struct {
	SourceDir  string // extracted library sources
	BuildDir   string // native build output
	PackageDir string // package output tree
	Exclude    string // optional folder never searched, such as the root holding every package tree
}

// Manifest lists the files written to the package tree, relative to its root
type Manifest struct {
	Root  string
	Files []string
}

// Has reports whether rel was copied
func (m *Manifest) Has(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, f := range m.Files {
		if f == rel {
			return true
		}
	}
	return false
}

// Package copies the discovery module and every rule's matches into the
// package tree. A required rule without matches fails with ErrNoArtifacts.
func Package(ctx context.Context, layout Layout, rules []Rule, logger *log.Logger) (*Manifest, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if layout.PackageDir == "" {
		return nil, fmt.Errorf("package folder is required")
	}

	if err := os.MkdirAll(layout.PackageDir, 0755); err != nil {
		return nil, fmt.Errorf("creating package folder: %w", err)
	}

	manifest := &Manifest{Root: layout.PackageDir}

	if err := os.WriteFile(filepath.Join(layout.PackageDir, FindModuleName), findModule, 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", FindModuleName, err)
	}
	manifest.Files = append(manifest.Files, FindModuleName)
	logger.Printf("  📄 %s", FindModuleName)

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root := layout.BuildDir
		if rule.From == FromSource {
			root = layout.SourceDir
		}

		matches, err := Match(root, rule, layout.PackageDir, layout.Exclude)
		if err != nil {
			return nil, fmt.Errorf("matching %s: %w", rule.Pattern, err)
		}

		if len(matches) == 0 {
			if rule.Optional {
				logger.Printf("  Skipping optional pattern %s (no match)", rule.Pattern)
				continue
			}
			return nil, fmt.Errorf("%w: pattern %q in %s", ErrNoArtifacts, rule.Pattern, root)
		}

		for _, rel := range matches {
			dstRel := filepath.Base(rel)
			if rule.KeepPath {
				dstRel = rel
			}
			dstRel = filepath.Join(rule.Dst, dstRel)

			if err := copyEntry(filepath.Join(root, rel), filepath.Join(layout.PackageDir, dstRel)); err != nil {
				return nil, fmt.Errorf("copying %s: %w", rel, err)
			}
			manifest.Files = append(manifest.Files, filepath.ToSlash(dstRel))
			logger.Printf("  📄 %s", filepath.ToSlash(dstRel))
		}
	}

	sort.Strings(manifest.Files)
	manifest.Files = compact(manifest.Files)
	return manifest, nil
}

// Match returns the paths below root, relative to it, selected by rule.
// Anything inside a skip folder is ignored so a package folder nested in
// the build folder is never copied into itself.
func Match(root string, rule Rule, skip ...string) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("search root for %q is not set", rule.Pattern)
	}
	if !doublestar.ValidatePattern(rule.Pattern) {
		return nil, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, rule.Pattern)
	}

	skipped := make(map[string]bool, len(skip))
	for _, dir := range skip {
		if dir == "" {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			skipped[abs] = true
		}
	}

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if abs, _ := filepath.Abs(path); skipped[abs] {
				return filepath.SkipDir
			}
			if rule.Shallow {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		ok, err := matchRule(rule, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)
	return matches, nil
}

// matchRule matches slash patterns against the whole relative path and
// plain patterns against the file name alone
func matchRule(rule Rule, rel string) (bool, error) {
	pattern := rule.Pattern
	name := rel
	if !strings.Contains(pattern, "/") {
		name = rel[strings.LastIndex(rel, "/")+1:]
	}
	if rule.IgnoreCase {
		name = strings.ToLower(name)
		pattern = strings.ToLower(pattern)
	}
	return doublestar.Match(pattern, name)
}

// compact drops adjacent duplicates; two matches may land on one destination
func compact(files []string) []string {
	out := files[:0]
	for i, f := range files {
		if i > 0 && f == files[i-1] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// copyEntry copies a regular file or recreates a symlink at dst
func copyEntry(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		// Remove existing symlink if it exists
		os.Remove(dst)
		return os.Symlink(target, dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
