package analyzer

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// dicomElementBytes encodes one Explicit VR Little Endian element using a
// short-form (2-byte) length field, matching every VR sniffDICOM cares
// about (UI, CS, US).
func dicomElementBytes(group, element uint16, vr string, value []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, group)
	binary.Write(&buf, binary.LittleEndian, element)
	buf.WriteString(vr)
	binary.Write(&buf, binary.LittleEndian, uint16(len(value)))
	buf.Write(value)
	return buf.Bytes()
}

func buildDICOMFile(t *testing.T, seriesUID, studyUID, modality string, rows, cols uint16) string {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(make([]byte, dicomPreambleSize))
	buf.WriteString("DICM")

	if seriesUID != "" {
		buf.Write(dicomElementBytes(0x0020, 0x000E, "UI", []byte(seriesUID)))
	}
	if studyUID != "" {
		buf.Write(dicomElementBytes(0x0020, 0x000D, "UI", []byte(studyUID)))
	}
	if modality != "" {
		buf.Write(dicomElementBytes(0x0008, 0x0060, "CS", []byte(modality)))
	}
	rowsVal := make([]byte, 2)
	binary.LittleEndian.PutUint16(rowsVal, rows)
	buf.Write(dicomElementBytes(0x0028, 0x0010, "US", rowsVal))
	colsVal := make([]byte, 2)
	binary.LittleEndian.PutUint16(colsVal, cols)
	buf.Write(dicomElementBytes(0x0028, 0x0011, "US", colsVal))

	dir := t.TempDir()
	path := filepath.Join(dir, "scan.dcm")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIsDICOM_DetectsMagicRegardlessOfExtension(t *testing.T) {
	path := buildDICOMFile(t, "1.2.3", "1.2.4", "CT", 256, 256)
	if !isDICOM(path) {
		t.Fatal("expected magic-byte detection to report true")
	}

	plain := filepath.Join(t.TempDir(), "plain.bin")
	if err := os.WriteFile(plain, []byte("not a dicom file at all, just bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	if isDICOM(plain) {
		t.Fatal("expected non-dicom content to report false")
	}
}

func TestSniffDICOM_ExtractsIdentityAndGeometry(t *testing.T) {
	path := buildDICOMFile(t, "1.2.840.10008.5.1.4.1.1.2.99", "1.2.840.10008.1", "CT", 512, 512)

	meta, err := sniffDICOM(path)
	if err != nil {
		t.Fatalf("sniffDICOM: %v", err)
	}
	if meta.SeriesInstanceUID != "1.2.840.10008.5.1.4.1.1.2.99" {
		t.Errorf("SeriesInstanceUID = %q", meta.SeriesInstanceUID)
	}
	if meta.StudyInstanceUID != "1.2.840.10008.1" {
		t.Errorf("StudyInstanceUID = %q", meta.StudyInstanceUID)
	}
	if meta.Modality != "CT" {
		t.Errorf("Modality = %q", meta.Modality)
	}
	if meta.Rows != 512 || meta.Columns != 512 {
		t.Errorf("Rows/Columns = %d/%d, want 512/512", meta.Rows, meta.Columns)
	}
}

func TestSniffDICOM_ErrorsWithoutSeriesInstanceUID(t *testing.T) {
	path := buildDICOMFile(t, "", "1.2.4", "CT", 128, 128)

	if _, err := sniffDICOM(path); err == nil {
		t.Fatal("expected error when SeriesInstanceUID is absent")
	}
}
