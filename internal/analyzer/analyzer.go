// Package analyzer turns one file path into a domain.FileRecord: a
// deterministic format sniff (by suffix and magic bytes) followed by
// modality inference when the format sniff yields a loadable image.
// Analyze is a pure function of its inputs and must never raise — any
// failure degrades to an unknown or error-kind descriptor, grounded on the
// teacher's magic-byte cascade (internal/processor/detector.go) and the
// header-probe style of hazyhaar-chrc/sas_ingester/metadata.go.
package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eswarib/biodatamine/internal/domain"
)

// dicomModalityLabels maps the DICOM (0008,0060) Modality code to the
// closed label set spec.md §3 uses dataset-wide, defaulting to unknown for
// anything not explicitly handled.
var dicomModalityLabels = map[string]string{
	"CT": "CT",
	"MR": "MR",
	"CR": "XRAY",
	"DX": "XRAY",
	"RF": "XRAY",
	"US": "US",
	"OT": "OPTICAL",
	"XC": "OPTICAL",
}

// Analyze produces a FileRecord for absPath/relPath. folderContext is the
// last three path segments of the parent directory, most specific first,
// used by InferModality's filename/folder token voting.
func Analyze(datasetID, absPath, relPath string, folderContext [3]string, classifier ModalityClassifier, predLogger *PredictionLogger) (rec domain.FileRecord) {
	rec = domain.FileRecord{
		DatasetID: datasetID,
		RelPath:   relPath,
		AbsPath:   absPath,
		CreatedAt: time.Now(),
		Modality:  domain.ModalityUnknown,
	}

	defer func() {
		if r := recover(); r != nil {
			rec.Kind = domain.KindError
			rec.Meta = domain.FileMeta{Kind: domain.KindError, Error: &domain.ErrorMeta{Error: fmt.Sprintf("panic: %v", r)}}
		}
	}()

	info, err := os.Stat(absPath)
	if err != nil {
		return errorRecord(rec, err)
	}
	rec.SizeBytes = info.Size()

	lower := strings.ToLower(absPath)

	switch {
	case strings.HasSuffix(lower, ".nii.gz") || strings.HasSuffix(lower, ".nii"):
		meta, ndim, dims, err := sniffNIfTI(absPath)
		if err != nil {
			return errorRecord(rec, err)
		}
		rec.Kind = domain.KindNIfTI
		rec.Meta = domain.FileMeta{Kind: domain.KindNIfTI, NIfTI: meta}
		rec.NDim = &ndim
		rec.Dims = dims

	case strings.HasSuffix(lower, ".dcm") || isDICOM(absPath):
		meta, err := sniffDICOM(absPath)
		if err != nil {
			return errorRecord(rec, err)
		}
		rec.Kind = domain.KindDICOM
		rec.Meta = domain.FileMeta{Kind: domain.KindDICOM, DICOM: meta}
		ndim := 2
		rec.NDim = &ndim
		if label, ok := dicomModalityLabels[strings.ToUpper(meta.Modality)]; ok {
			rec.Modality = label
		}

	case isImageSuffix(lower):
		meta, err := sniffImage(absPath)
		if err != nil {
			return errorRecord(rec, err)
		}
		rec.Kind = domain.KindImage
		rec.Meta = domain.FileMeta{Kind: domain.KindImage, Image: meta}
		ndim := 2
		rec.NDim = &ndim

		model := InferModality(datasetID, absPath, relPath, folderContext, meta, classifier, predLogger)
		rec.Modality = model.Pred
		rec.ModalityModel = model

	default:
		rec.Kind = domain.KindUnknown
		rec.Meta = domain.FileMeta{Kind: domain.KindUnknown}
	}

	return rec
}

func errorRecord(rec domain.FileRecord, err error) domain.FileRecord {
	rec.Kind = domain.KindError
	rec.Meta = domain.FileMeta{Kind: domain.KindError, Error: &domain.ErrorMeta{Error: err.Error()}}
	return rec
}

// FolderContext returns the last three path segments of the parent
// directory of path, most specific first, padding with "" when fewer than
// three segments exist.
func FolderContext(path string) [3]string {
	dir := filepath.Dir(path)
	var segments []string
	for dir != "." && dir != string(filepath.Separator) && dir != "" {
		segments = append(segments, filepath.Base(dir))
		next := filepath.Dir(dir)
		if next == dir {
			break
		}
		dir = next
	}

	var ctx [3]string
	for i := 0; i < 3 && i < len(segments); i++ {
		ctx[i] = segments[i]
	}
	return ctx
}
