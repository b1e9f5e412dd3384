package workspace

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
)

// safeNameChars is the character class kept by deriveSafeName, per
// spec.md §4.2 step 5.
var safeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.+-]`)

// deriveSafeName strips a URL path's final segment down to query-free,
// fragment-free, filesystem-safe characters, defaulting to "download.bin"
// when nothing survives.
func deriveSafeName(lastSegment string) string {
	name := safeNameChars.ReplaceAllString(lastSegment, "")
	if name == "" {
		return "download.bin"
	}
	return name
}

// moveFile renames source to dest, falling back to a copy-then-remove when
// the two paths live on different filesystems (EXDEV) — the exact fallback
// shape of the teacher's processor/fs.go moveFile/moveCrossDevice, reused
// here for the final download.bin → extracted/<safe_name> placement.
func moveFile(source, dest string) error {
	if err := os.Rename(source, dest); err == nil {
		return nil
	}
	return moveCrossDevice(source, dest)
}

func moveCrossDevice(sourcePath, destPath string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	tempDest := filepath.Join(filepath.Dir(destPath), "."+filepath.Base(destPath)+".tmp")
	dst, err := os.Create(tempDest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tempDest)
		return err
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		os.Remove(tempDest)
		return err
	}
	dst.Close()
	src.Close()

	if err := os.Rename(tempDest, destPath); err != nil {
		os.Remove(tempDest)
		return err
	}
	return os.Remove(sourcePath)
}
