package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/eswarib/biodatamine/internal/domain"
)

// aggregator accumulates the per-dataset counters named in spec.md §3,
// confined to the controller's own goroutine for the duration of analyze
// — no cross-task mutation, per SPEC_FULL.md §5.
type aggregator struct {
	summary domain.Summary

	scheduledBasenames map[string]bool // key: ext + "\x00" + lowercase basename
	dicomSeriesCounts  map[string]int
	confidenceSum      map[string]float64
	confidenceCount    map[string]int
}

func newAggregator() *aggregator {
	return &aggregator{
		summary:            domain.NewSummary(),
		scheduledBasenames: map[string]bool{},
		dicomSeriesCounts:  map[string]int{},
		confidenceSum:      map[string]float64{},
		confidenceCount:    map[string]int{},
	}
}

// extOf implements spec.md §4.5's extension rule: ".nii.gz" is recognised
// as one compound extension; otherwise the last suffix lowercased, or
// "none" if absent.
func extOf(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(base, ".nii.gz") {
		return ".nii.gz"
	}
	ext := filepath.Ext(base)
	if ext == "" {
		return "none"
	}
	return ext
}

// recordScheduled is called once per walked path, before the analyzer task
// is submitted — it tracks the duplicate-basename heuristic of spec.md §4.5.
func (a *aggregator) recordScheduled(path string) {
	a.summary.ScheduledFiles++
	ext := extOf(path)
	a.summary.ScheduledExtCounts[ext]++

	key := ext + "\x00" + strings.ToLower(filepath.Base(path))
	if a.scheduledBasenames[key] {
		a.summary.DuplicateBasenameCount++
		a.summary.DuplicateBasenameExtCount[ext]++
	} else {
		a.scheduledBasenames[key] = true
	}
}

// recordCompletion folds one analyzer result into the running counters,
// per spec.md §4.5 step 4.
func (a *aggregator) recordCompletion(rec *domain.FileRecord) {
	a.summary.TotalFiles++
	a.summary.ModalityCounts[rec.Modality]++
	a.summary.KindCounts[string(rec.Kind)]++
	a.summary.ExtCounts[extOf(rec.RelPath)]++

	if rec.Kind == domain.KindDICOM && rec.Meta.DICOM != nil && rec.Meta.DICOM.SeriesInstanceUID != "" {
		a.dicomSeriesCounts[rec.Meta.DICOM.SeriesInstanceUID]++
	}

	if rec.ModalityModel != nil {
		a.confidenceSum[rec.Modality] += rec.ModalityModel.Confidence
		a.confidenceCount[rec.Modality]++
	}

	if rec.NDim != nil {
		switch {
		case *rec.NDim == 2:
			a.summary.Image2DCount++
		case *rec.NDim >= 3:
			a.summary.Volume3DCount++
		}
	}
}

// finalize folds DICOM series aggregation in (a series with ≥2 instances
// is one 3D volume), derives mixed_modality, and computes the per-label
// modalities breakdown (percent of TotalFiles, plus an averaged confidence
// where any record carried one), per spec.md §3/§4.5/§8 and grounded on
// original_source's summarize_dataset_profiling.
func (a *aggregator) finalize() domain.Summary {
	for _, count := range a.dicomSeriesCounts {
		if count >= 2 {
			a.summary.Volume3DCount++
		}
	}

	distinctModalities := 0
	for label, count := range a.summary.ModalityCounts {
		if count > 0 && label != domain.ModalityUnknown {
			distinctModalities++
		}
	}
	a.summary.MixedModality = distinctModalities > 1

	if a.summary.TotalFiles > 0 {
		for label, count := range a.summary.ModalityCounts {
			stat := domain.ModalityStat{
				Percent: float64(count) / float64(a.summary.TotalFiles) * 100,
			}
			if n := a.confidenceCount[label]; n > 0 {
				avg := a.confidenceSum[label] / float64(n)
				stat.Confidence = &avg
			}
			a.summary.Modalities[label] = stat
		}
	}

	return a.summary
}
