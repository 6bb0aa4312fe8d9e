// pkg/fetch/fetch.go
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/bincrafters/conan-glew/pkg/settings"
)

// SourceSubfolder is the normalized name of the extracted source tree
const SourceSubfolder = "source_subfolder"

// ErrHashMismatch indicates the downloaded archive does not match its checksum
var ErrHashMismatch = errors.New("hash mismatch")

// Fetcher downloads and unpacks the library sources
type Fetcher struct {
	Client *Client
	Cloner Cloner
	Logger *log.Logger
}

// NewFetcher creates a fetcher with the default HTTP client and git cloner
func NewFetcher(logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Fetcher{
		Client: NewClient(),
		Cloner: &GitCloner{Progress: logger.Writer()},
		Logger: logger,
	}
}

// SourceURL expands the descriptor's archive URL template
func SourceURL(desc settings.Descriptor) (string, error) {
	tmpl, err := template.New("source_url").Option("missingkey=error").Parse(desc.SourceURL)
	if err != nil {
		return "", fmt.Errorf("parsing source url template: %w", err)
	}

	var b strings.Builder
	data := struct{ Name, Version string }{desc.Name, desc.Version}
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("expanding source url template: %w", err)
	}
	return b.String(), nil
}

// ArchiveName derives the local archive file name from a download URL.
// Mirror URLs ending in /download use the preceding path segment.
func ArchiveName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing source url: %w", err)
	}

	p := strings.TrimSuffix(u.Path, "/")
	name := path.Base(p)
	if name == "download" {
		name = path.Base(path.Dir(p))
	}
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("source url %s has no file name", rawURL)
	}
	return name, nil
}

// Fetch places the library sources in workDir/source_subfolder and returns
// that path
func (f *Fetcher) Fetch(ctx context.Context, desc settings.Descriptor, workDir string) (string, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("creating source folder: %w", err)
	}

	sourceDir := filepath.Join(workDir, SourceSubfolder)
	if err := os.RemoveAll(sourceDir); err != nil {
		return "", fmt.Errorf("cleaning %s: %w", sourceDir, err)
	}

	if desc.Version == settings.VersionMaster {
		f.Logger.Printf("  Cloning %s", desc.GitURL)
		if err := f.Cloner.Clone(ctx, desc.GitURL, settings.VersionMaster, sourceDir); err != nil {
			return "", fmt.Errorf("cloning sources: %w", err)
		}
		return sourceDir, nil
	}

	sourceURL, err := SourceURL(desc)
	if err != nil {
		return "", err
	}
	name, err := ArchiveName(sourceURL)
	if err != nil {
		return "", err
	}

	archivePath := filepath.Join(workDir, name)
	f.Logger.Printf("  Downloading %s", sourceURL)
	if err := f.download(ctx, sourceURL, archivePath); err != nil {
		return "", fmt.Errorf("downloading sources: %w", err)
	}

	if desc.SHA256 != "" {
		if err := verifyFileHash(archivePath, desc.SHA256); err != nil {
			return "", err
		}
		f.Logger.Printf("  ✓ Hash verified")
	}

	staging, err := os.MkdirTemp(workDir, ".extract-")
	if err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := Extract(archivePath, staging, f.Logger); err != nil {
		return "", fmt.Errorf("extracting %s: %w", name, err)
	}

	if err := os.Remove(archivePath); err != nil {
		f.Logger.Printf("  ⚠️  Warning: failed to remove archive: %v", err)
	}

	root, err := archiveRoot(staging)
	if err != nil {
		return "", err
	}
	if err := os.Rename(root, sourceDir); err != nil {
		return "", fmt.Errorf("renaming sources to %s: %w", SourceSubfolder, err)
	}

	return sourceDir, nil
}

func (f *Fetcher) download(ctx context.Context, url, destPath string) error {
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	written, err := f.Client.Download(ctx, url, out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destPath)
		return err
	}

	f.Logger.Printf("  Downloaded %d bytes to %s", written, destPath)
	return nil
}

// archiveRoot returns the single top-level directory of an extracted
// archive, or the staging directory itself when the archive has no
// common root
func archiveRoot(staging string) (string, error) {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return "", fmt.Errorf("reading extracted archive: %w", err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("archive is empty")
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(staging, entries[0].Name()), nil
	}
	return staging, nil
}

// verifyFileHash verifies the SHA256 hash of a file
func verifyFileHash(filePath, expectedHash string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return fmt.Errorf("computing hash: %w", err)
	}

	actualHash := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(actualHash, expectedHash) {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, expectedHash, actualHash)
	}
	return nil
}
