// pkg/fetch/extract.go
package fetch

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ErrUnsafePath indicates an archive entry escaping the destination
var ErrUnsafePath = errors.New("archive entry escapes destination")

// ArchiveKind is a supported source archive format
type ArchiveKind string

const (
	KindTarGz  ArchiveKind = "tar.gz"
	KindTarXz  ArchiveKind = "tar.xz"
	KindTarZst ArchiveKind = "tar.zst"
	KindTar    ArchiveKind = "tar"
	KindZip    ArchiveKind = "zip"
)

// KindOf infers the archive format from a file name
func KindOf(name string) (ArchiveKind, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tgz"), strings.HasSuffix(lower, ".tar.gz"):
		return KindTarGz, nil
	case strings.HasSuffix(lower, ".txz"), strings.HasSuffix(lower, ".tar.xz"):
		return KindTarXz, nil
	case strings.HasSuffix(lower, ".tar.zst"):
		return KindTarZst, nil
	case strings.HasSuffix(lower, ".tar"):
		return KindTar, nil
	case strings.HasSuffix(lower, ".zip"):
		return KindZip, nil
	default:
		return "", fmt.Errorf("unsupported archive format: %s", name)
	}
}

// Extract unpacks archivePath into dest
func Extract(archivePath, dest string, logger *log.Logger) error {
	kind, err := KindOf(archivePath)
	if err != nil {
		return err
	}

	if kind == KindZip {
		return extractZip(archivePath, dest, logger)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch kind {
	case KindTarGz:
		logger.Printf("  Using gzip decompression")
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
	case KindTarXz:
		logger.Printf("  Using xz decompression")
		xzReader, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("creating xz reader: %w", err)
		}
		r = xzReader
	case KindTarZst:
		logger.Printf("  Using zstd decompression")
		zstdReader, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("creating zstd reader: %w", err)
		}
		defer zstdReader.Close()
		r = zstdReader
	default:
		logger.Printf("  Using uncompressed tar")
	}

	return extractTar(tar.NewReader(r), dest, logger)
}

func extractTar(tarReader *tar.Reader, dest string, logger *log.Logger) error {
	fileCount := 0
	dirCount := 0
	symlinkCount := 0

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		targetPath, err := safeJoin(dest, header.Name)
		if err != nil {
			return err
		}
		if targetPath == "" {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(targetPath, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", targetPath, err)
			}
			dirCount++

		case tar.TypeSymlink:
			if filepath.IsAbs(header.Linkname) {
				return fmt.Errorf("%w: symlink %s -> %s", ErrUnsafePath, header.Name, header.Linkname)
			}
			if _, err := safeJoin(dest, filepath.Join(filepath.Dir(header.Name), header.Linkname)); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
				return fmt.Errorf("creating parent directory for symlink: %w", err)
			}
			// Remove existing symlink if it exists
			os.Remove(targetPath)
			if err := os.Symlink(header.Linkname, targetPath); err != nil {
				return fmt.Errorf("creating symlink %s -> %s: %w", targetPath, header.Linkname, err)
			}
			symlinkCount++

		case tar.TypeReg:
			if err := writeFile(targetPath, tarReader, os.FileMode(header.Mode)&0777, header.Size); err != nil {
				return err
			}
			fileCount++

		default:
			logger.Printf("    ⚠️  Skipping unsupported file type %v for %s", header.Typeflag, header.Name)
		}
	}

	logger.Printf("  ✓ Extraction complete: %d files, %d directories, %d symlinks", fileCount, dirCount, symlinkCount)
	return nil
}

func extractZip(archivePath, dest string, logger *log.Logger) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer zr.Close()

	fileCount := 0
	for _, f := range zr.File {
		targetPath, err := safeJoin(dest, f.Name)
		if err != nil {
			return err
		}
		if targetPath == "" {
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", targetPath, err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening %s: %w", f.Name, err)
		}
		err = writeFile(targetPath, rc, f.Mode().Perm(), int64(f.UncompressedSize64))
		rc.Close()
		if err != nil {
			return err
		}
		fileCount++
	}

	logger.Printf("  ✓ Extraction complete: %d files", fileCount)
	return nil
}

func writeFile(targetPath string, r io.Reader, mode os.FileMode, size int64) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	if mode == 0 {
		mode = 0644
	}

	outFile, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", targetPath, err)
	}

	written, err := io.Copy(outFile, r)
	outFile.Close()
	if err != nil {
		return fmt.Errorf("writing file %s: %w", targetPath, err)
	}

	if written != size {
		return fmt.Errorf("file size mismatch for %s: expected %d, got %d", targetPath, size, written)
	}
	return nil
}

// safeJoin resolves an entry name below dest. It returns "" for the
// archive root entry.
func safeJoin(dest, name string) (string, error) {
	clean := strings.TrimPrefix(filepath.ToSlash(name), "./")
	if clean == "" || clean == "." {
		return "", nil
	}
	if strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}

	target := filepath.Join(dest, filepath.FromSlash(clean))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}
