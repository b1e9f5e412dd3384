package pipeline

import (
	"testing"

	"github.com/eswarib/biodatamine/internal/domain"
)

func TestExtOf_RecognisesCompoundNiftiGzExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"scan.nii.gz", ".nii.gz"},
		{"SCAN.NII.GZ", ".nii.gz"},
		{"scan.nii", ".nii"},
		{"scan.dcm", ".dcm"},
		{"README", "none"},
	}
	for _, tt := range tests {
		if got := extOf(tt.path); got != tt.want {
			t.Errorf("extOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestAggregator_RecordScheduled_TracksDuplicateBasenames(t *testing.T) {
	agg := newAggregator()
	agg.recordScheduled("subj1/scan.dcm")
	agg.recordScheduled("subj2/scan.dcm")
	agg.recordScheduled("subj3/other.dcm")

	s := agg.finalize()
	if s.ScheduledFiles != 3 {
		t.Errorf("ScheduledFiles = %d, want 3", s.ScheduledFiles)
	}
	if s.DuplicateBasenameCount != 1 {
		t.Errorf("DuplicateBasenameCount = %d, want 1", s.DuplicateBasenameCount)
	}
	if s.DuplicateBasenameExtCount[".dcm"] != 1 {
		t.Errorf("DuplicateBasenameExtCount[.dcm] = %d, want 1", s.DuplicateBasenameExtCount[".dcm"])
	}
}

func TestAggregator_Finalize_SeriesWithTwoOrMoreInstancesCountsAsVolume(t *testing.T) {
	agg := newAggregator()

	twoD := 2
	for i := 0; i < 3; i++ {
		agg.recordCompletion(&domain.FileRecord{
			Kind:     domain.KindDICOM,
			Modality: "CT",
			NDim:     &twoD,
			Meta: domain.FileMeta{
				Kind: domain.KindDICOM,
				DICOM: &domain.DICOMMeta{
					SeriesInstanceUID: "series-A",
				},
			},
		})
	}
	agg.recordCompletion(&domain.FileRecord{
		Kind:     domain.KindDICOM,
		Modality: "CT",
		NDim:     &twoD,
		Meta: domain.FileMeta{
			Kind: domain.KindDICOM,
			DICOM: &domain.DICOMMeta{
				SeriesInstanceUID: "series-B", // only one instance, does not count
			},
		},
	})

	s := agg.finalize()
	if s.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, want 4", s.TotalFiles)
	}
	// 4 files each ndim==2 contribute 4 to Image2DCount, plus +1 for the
	// 3-instance series aggregating into one additional volume.
	if s.Image2DCount != 4 {
		t.Errorf("Image2DCount = %d, want 4", s.Image2DCount)
	}
	if s.Volume3DCount != 1 {
		t.Errorf("Volume3DCount = %d, want 1 (series-A only)", s.Volume3DCount)
	}
}

func TestAggregator_Finalize_MixedModalityRequiresTwoDistinctNonUnknown(t *testing.T) {
	agg := newAggregator()
	agg.recordCompletion(&domain.FileRecord{Kind: domain.KindDICOM, Modality: "CT"})
	agg.recordCompletion(&domain.FileRecord{Kind: domain.KindDICOM, Modality: "CT"})
	if agg.finalize().MixedModality {
		t.Fatal("single modality should not be flagged mixed")
	}

	agg2 := newAggregator()
	agg2.recordCompletion(&domain.FileRecord{Kind: domain.KindDICOM, Modality: "CT"})
	agg2.recordCompletion(&domain.FileRecord{Kind: domain.KindError, Modality: domain.ModalityUnknown})
	if agg2.finalize().MixedModality {
		t.Fatal("unknown modality should not count toward mixed")
	}

	agg3 := newAggregator()
	agg3.recordCompletion(&domain.FileRecord{Kind: domain.KindDICOM, Modality: "CT"})
	agg3.recordCompletion(&domain.FileRecord{Kind: domain.KindImage, Modality: "XRAY"})
	if !agg3.finalize().MixedModality {
		t.Fatal("two distinct non-unknown modalities should be flagged mixed")
	}
}

func TestAggregator_Finalize_ModalitiesPercentAndAveragedConfidence(t *testing.T) {
	agg := newAggregator()
	agg.recordCompletion(&domain.FileRecord{Kind: domain.KindDICOM, Modality: "CT"})
	agg.recordCompletion(&domain.FileRecord{Kind: domain.KindDICOM, Modality: "CT"})
	agg.recordCompletion(&domain.FileRecord{
		Kind: domain.KindImage, Modality: "XRAY",
		ModalityModel: &domain.ModalityModel{Pred: "XRAY", Confidence: 0.7},
	})
	agg.recordCompletion(&domain.FileRecord{
		Kind: domain.KindImage, Modality: "XRAY",
		ModalityModel: &domain.ModalityModel{Pred: "XRAY", Confidence: 0.5},
	})

	s := agg.finalize()
	ct, ok := s.Modalities["CT"]
	if !ok {
		t.Fatal("expected a CT entry in Modalities")
	}
	if ct.Percent != 50 {
		t.Errorf("CT.Percent = %v, want 50", ct.Percent)
	}
	if ct.Confidence != nil {
		t.Errorf("CT.Confidence = %v, want nil (no ModalityModel recorded)", *ct.Confidence)
	}

	xray, ok := s.Modalities["XRAY"]
	if !ok {
		t.Fatal("expected an XRAY entry in Modalities")
	}
	if xray.Percent != 50 {
		t.Errorf("XRAY.Percent = %v, want 50", xray.Percent)
	}
	if xray.Confidence == nil || *xray.Confidence != 0.6 {
		t.Errorf("XRAY.Confidence = %v, want 0.6", xray.Confidence)
	}
}

func TestAggregator_Finalize_NoFilesLeavesModalitiesEmpty(t *testing.T) {
	agg := newAggregator()
	s := agg.finalize()
	if len(s.Modalities) != 0 {
		t.Errorf("Modalities = %v, want empty when TotalFiles == 0", s.Modalities)
	}
}
