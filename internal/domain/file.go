package domain

import "time"

// Kind is the closed set of file classifications the analyzer can produce.
type Kind string

const (
	KindDICOM   Kind = "dicom"
	KindNIfTI   Kind = "nifti"
	KindImage   Kind = "image"
	KindUnknown Kind = "unknown"
	KindError   Kind = "error"
)

// DICOMMeta is the typed payload for Kind == KindDICOM.
type DICOMMeta struct {
	SeriesInstanceUID string `json:"SeriesInstanceUID"`
	StudyInstanceUID  string `json:"study_instance_uid,omitempty"`
	Modality          string `json:"modality,omitempty"`
	Rows              int    `json:"rows,omitempty"`
	Columns           int    `json:"columns,omitempty"`
}

// NIfTIMeta is the typed payload for Kind == KindNIfTI.
type NIfTIMeta struct {
	Dims     []int  `json:"dims"`
	DataType int16  `json:"datatype"`
	Gzipped  bool   `json:"gzipped"`
	Endian   string `json:"endian"`
}

// ImageMeta is the typed payload for Kind == KindImage.
type ImageMeta struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// ErrorMeta is the typed payload for Kind == KindError.
type ErrorMeta struct {
	Error string `json:"error"`
}

// FileMeta is the tagged-variant descriptor the analyzer produces for a
// single path. Exactly one of the typed fields is populated, matching Kind.
type FileMeta struct {
	Kind  Kind       `json:"kind"`
	DICOM *DICOMMeta `json:"dicom,omitempty"`
	NIfTI *NIfTIMeta `json:"nifti,omitempty"`
	Image *ImageMeta `json:"image,omitempty"`
	Error *ErrorMeta `json:"error,omitempty"`
}

// ModalityModel is the modality classifier's full output for one image file.
type ModalityModel struct {
	Pred           string             `json:"pred"`
	Confidence     float64            `json:"confidence"`
	Version        string             `json:"version"`
	Method         string             `json:"method"`
	Probs          map[string]float64 `json:"probs,omitempty"`
	HeuristicVotes map[string]float64 `json:"heuristic_votes,omitempty"`
	Sources        []string           `json:"sources,omitempty"`
	Details        map[string]string  `json:"details,omitempty"`
}

// FileRecord is both the analyzer's output descriptor and the persisted
// `files` collection document, unique on (DatasetID, RelPath).
type FileRecord struct {
	DatasetID     string         `json:"dataset_id"`
	RelPath       string         `json:"relpath"`
	AbsPath       string         `json:"abspath"`
	SizeBytes     int64          `json:"size_bytes"`
	CreatedAt     time.Time      `json:"created_at"`
	Kind          Kind           `json:"kind"`
	Modality      string         `json:"modality"`
	ModalityModel *ModalityModel `json:"modality_model,omitempty"`
	NDim          *int           `json:"ndim,omitempty"`
	Dims          []int          `json:"dims,omitempty"`
	Meta          FileMeta       `json:"meta"`
}

// ModalityUnknown is the label used when no modality could be inferred.
const ModalityUnknown = "unknown"
