package analyzer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "probe.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSniffImage_ReadsDimensionsWithoutFullDecode(t *testing.T) {
	path := writePNG(t, 200, 100)

	meta, err := sniffImage(path)
	if err != nil {
		t.Fatalf("sniffImage: %v", err)
	}
	if meta.Width != 200 || meta.Height != 100 {
		t.Errorf("dims = %dx%d, want 200x100", meta.Width, meta.Height)
	}
	if meta.Format != "png" {
		t.Errorf("format = %q, want png", meta.Format)
	}
}

func TestIsImageSuffix(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"scan.png", true},
		{"scan.PNG", false}, // suffix check is against a lowercased path by contract
		{"scan.jpg", true},
		{"scan.jpeg", true},
		{"scan.dcm", false},
		{"scan.nii.gz", false},
	}
	for _, tt := range tests {
		if got := isImageSuffix(tt.path); got != tt.want {
			t.Errorf("isImageSuffix(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
