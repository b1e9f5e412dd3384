// Package domain holds the core record types shared by the ingestion
// pipeline, the store, and recovery: datasets, their per-file catalog
// entries, and the aggregated summary.
package domain

import "time"

// Stage is an observable milestone of the pipeline controller's state
// machine, recorded as Dataset.Meta.Stage.
type Stage string

const (
	StageEnqueued     Stage = "enqueued"
	StagePrepare      Stage = "prepare"
	StageAnalyzeFiles Stage = "analyze_files"
	StageFinalize     Stage = "finalize"
	StageFailed       Stage = "failed"
)

// Status is the dataset's top-level lifecycle state.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// IngestMeta captures provider selection outcome, recorded during prepare.
type IngestMeta struct {
	Provider string `json:"provider,omitempty"`
}

// ResolutionMeta captures URL resolution outcome, recorded during prepare.
type ResolutionMeta struct {
	OriginalURL string `json:"original_url,omitempty"`
	ResolvedURL string `json:"resolved_url,omitempty"`
}

// DatasetMeta is the Dataset.Meta sub-document.
type DatasetMeta struct {
	Stage      Stage          `json:"stage"`
	Ingest     IngestMeta     `json:"ingest,omitempty"`
	Resolution ResolutionMeta `json:"resolution,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
}

// ModalityStat is one entry of Summary.Modalities.
type ModalityStat struct {
	Percent    float64  `json:"percent"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Summary is the dataset-level aggregated statistics, overwritten wholesale
// at stage boundaries — never incrementally mutated in the store.
type Summary struct {
	TotalFiles                int                     `json:"total_files"`
	ScheduledFiles            int                     `json:"scheduled_files"`
	Image2DCount              int                     `json:"image_2d_count"`
	Volume3DCount             int                     `json:"volume_3d_count"`
	DuplicateBasenameCount    int                     `json:"duplicate_basename_count"`
	Outliers                  int                     `json:"outliers"`
	ModalityCounts            map[string]int          `json:"modality_counts"`
	KindCounts                map[string]int          `json:"kind_counts"`
	ExtCounts                 map[string]int          `json:"ext_counts"`
	ScheduledExtCounts        map[string]int          `json:"scheduled_ext_counts"`
	DuplicateBasenameExtCount map[string]int          `json:"duplicate_basename_ext_counts"`
	Modalities                map[string]ModalityStat `json:"modalities"`
	MixedModality             bool                    `json:"mixed_modality"`
}

// NewSummary returns a zero-valued Summary with initialized maps, so JSON
// marshalling never emits `null` for a counter map.
func NewSummary() Summary {
	return Summary{
		ModalityCounts:            map[string]int{},
		KindCounts:                map[string]int{},
		ExtCounts:                 map[string]int{},
		ScheduledExtCounts:        map[string]int{},
		DuplicateBasenameExtCount: map[string]int{},
		Modalities:                map[string]ModalityStat{},
	}
}

// Dataset is the `datasets` collection document (see SPEC_FULL.md §3).
type Dataset struct {
	DatasetID          string      `json:"dataset_id"`
	Name               string      `json:"name"`
	SourceURL          string      `json:"source_url"`
	OriginalRequestURL string      `json:"original_request_url"`
	TeamID             string      `json:"team_id"`
	OwnerUserID        string      `json:"owner_user_id"`
	Status             Status      `json:"status"`
	CreatedAt          time.Time   `json:"created_at"`
	Summary            Summary     `json:"summary"`
	Meta               DatasetMeta `json:"meta"`
}
