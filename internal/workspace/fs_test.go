package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeriveSafeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"scan.dcm", "scan.dcm"},
		{"my file (1).nii.gz", "myfile1.nii.gz"},
		{"///", "download.bin"},
		{"", "download.bin"},
		{"日本語.png", ".png"},
	}
	for _, tt := range tests {
		if got := deriveSafeName(tt.in); got != tt.want {
			t.Errorf("deriveSafeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMoveFile_SameDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.bin")
	dst := filepath.Join(dir, "dest.bin")
	if err := os.WriteFile(src, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := moveFile(src, dst); err != nil {
		t.Fatalf("moveFile: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source should no longer exist")
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Fatalf("dest content = %q", got)
	}
}

func TestMoveCrossDevice_CopiesAndRemovesSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.bin")
	dst := filepath.Join(dir, "nested", "dest.bin")
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("cross-device-payload"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := moveCrossDevice(src, dst); err != nil {
		t.Fatalf("moveCrossDevice: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source should be removed after a successful cross-device move")
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "cross-device-payload" {
		t.Fatalf("dest content = %q", got)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dst), ".dest.bin.tmp")); !os.IsNotExist(err) {
		t.Fatal("temp file should not remain after a successful move")
	}
}
