package analyzer

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/eswarib/biodatamine/internal/domain"
)

// imageSuffixes is the common-image-suffix set from spec.md §4.3.
var imageSuffixes = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
}

func isImageSuffix(lowerPath string) bool {
	return imageSuffixes[filepath.Ext(lowerPath)]
}

// sniffImage opens an image file and reads its dimensions without decoding
// the full pixel buffer (image.DecodeConfig stops after the header), per
// spec.md §4.3's "open-and-read dimensions" probe. Decoding dimensions is
// exactly what the standard library's image package is for; no third-party
// decoder in the reference pack offers anything beyond it for this probe.
func sniffImage(path string) (*domain.ImageMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("decode image header %s: %w", path, err)
	}

	return &domain.ImageMeta{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: strings.ToLower(format),
	}, nil
}
