package workspace

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eswarib/biodatamine/internal/domain"
)

// zipMagic is the four-byte local-file-header signature spec.md §4.2 step 3
// names as an alternative to a .zip URL suffix.
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// looksLikeZip checks the first four bytes of path against zipMagic or
// falls back to a .zip suffix on resolvedURL.
func looksLikeZip(path, resolvedURL string) (bool, error) {
	if strings.HasSuffix(strings.ToLower(resolvedURL), ".zip") {
		return true, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 4)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return false, err
	}
	return n == 4 && string(head) == string(zipMagic), nil
}

// isPathTraversal rejects any zip member whose name is absolute or
// contains ".." segments — the zip-slip defence of spec.md §4.2 step 4.
func isPathTraversal(name string) bool {
	if filepath.IsAbs(name) {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(name), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// extractZip extracts archivePath into destDir, rejecting traversal
// members and aborting with domain.ErrExtractTooLarge once the cumulative
// uncompressed size would exceed maxBytes. Inspection happens per member
// before any bytes are written — the reason archive/zip is used directly
// instead of shelling out to an unzip binary, which gives no such hook.
func extractZip(archivePath, destDir string, maxBytes int64) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip %s: %w", archivePath, err)
	}
	defer r.Close()

	var total int64
	for _, member := range r.File {
		if isPathTraversal(member.Name) {
			continue
		}

		total += int64(member.UncompressedSize64)
		if total > maxBytes {
			return domain.ErrExtractTooLarge
		}

		targetPath := filepath.Join(destDir, filepath.FromSlash(member.Name))
		if member.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return fmt.Errorf("mkdir %s: %w", targetPath, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", filepath.Dir(targetPath), err)
		}
		if err := extractZipMember(member, targetPath); err != nil {
			return err
		}
	}
	return nil
}

func extractZipMember(member *zip.File, targetPath string) error {
	rc, err := member.Open()
	if err != nil {
		return fmt.Errorf("open zip member %s: %w", member.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", targetPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("extract %s: %w", member.Name, err)
	}
	return nil
}
