package analyzer

import (
	"testing"

	"github.com/eswarib/biodatamine/internal/domain"
)

func TestInferModality_FilenameTokenDecidesWinnerWithNoImageFeatures(t *testing.T) {
	folderContext := [3]string{"ct_scan", "", ""}

	model := InferModality("ds1", "/data/does-not-exist.png", "image1.png", folderContext, nil, nil, nil)

	if model.Pred != "CT" {
		t.Fatalf("Pred = %q, want CT (sources=%v votes=%v)", model.Pred, model.Sources, model.HeuristicVotes)
	}
	if model.Confidence <= 0 {
		t.Fatalf("Confidence = %v, want > 0", model.Confidence)
	}

	found := false
	for _, s := range model.Sources {
		if s == "filename_token" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected filename_token among sources, got %v", model.Sources)
	}
}

func TestInferModality_AspectRatioVotesWideImageAsXray(t *testing.T) {
	img := &domain.ImageMeta{Width: 3000, Height: 2000}

	model := InferModality("ds1", "/data/does-not-exist.png", "unlabeled.png", [3]string{}, img, DefaultClassifier{}, nil)

	if model.Pred != "XRAY" {
		t.Fatalf("Pred = %q, want XRAY (votes=%v)", model.Pred, model.HeuristicVotes)
	}
}

func TestDefaultClassifier_ReturnsUniformDistribution(t *testing.T) {
	probs, version, err := DefaultClassifier{}.Classify("/any/path.png")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if version == "" {
		t.Error("expected non-empty version string")
	}
	if len(probs) != len(modalityLabels) {
		t.Fatalf("got %d labels, want %d", len(probs), len(modalityLabels))
	}
	want := 1.0 / float64(len(modalityLabels))
	for _, label := range modalityLabels {
		if probs[label] != want {
			t.Errorf("probs[%s] = %v, want %v", label, probs[label], want)
		}
	}
}
