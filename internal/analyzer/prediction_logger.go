package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/eswarib/biodatamine/internal/domain"
)

// PredictionLogger is a thread-safe, daily-rotating JSONL sink for modality
// predictions, grounded on original_source's
// services/detection/modality/prediction_logger.py: every InferModality
// call is logged for later retraining and active-learning review, with
// predictions below lowConfidenceThreshold routed into a separate
// needs_review/ subdirectory rather than the main log.
type PredictionLogger struct {
	mu                     sync.Mutex
	dir                    string
	lowConfidenceThreshold float64
}

// NewPredictionLogger creates the log directory (and its needs_review
// subdirectory) up front, matching PredictionLogger.__init__'s eager
// mkdir calls.
func NewPredictionLogger(dir string, lowConfidenceThreshold float64) (*PredictionLogger, error) {
	if err := os.MkdirAll(filepath.Join(dir, "needs_review"), 0o755); err != nil {
		return nil, fmt.Errorf("create prediction log dir: %w", err)
	}
	return &PredictionLogger{dir: dir, lowConfidenceThreshold: lowConfidenceThreshold}, nil
}

type predictionRecord struct {
	Timestamp      string             `json:"timestamp"`
	ImagePath      string             `json:"image_path"`
	DatasetID      string             `json:"dataset_id,omitempty"`
	Prediction     string             `json:"prediction"`
	Confidence     float64            `json:"confidence"`
	Probabilities  map[string]float64 `json:"probabilities"`
	HeuristicVotes map[string]float64 `json:"heuristic_votes,omitempty"`
	NeedsReview    bool               `json:"needs_review"`
	HumanLabel     *string            `json:"human_label"`
	ReviewedAt     *string            `json:"reviewed_at"`
	Model          map[string]string  `json:"model"`
}

// Log appends one prediction record to today's JSONL file, rotating by
// UTC date the same way _get_log_file does. A nil receiver is a no-op, so
// callers can pass a disabled logger without a branch at every call site.
func (p *PredictionLogger) Log(datasetID, imagePath string, model *domain.ModalityModel) {
	if p == nil || model == nil {
		return
	}

	needsReview := model.Confidence < p.lowConfidenceThreshold
	rec := predictionRecord{
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		ImagePath:      imagePath,
		DatasetID:      datasetID,
		Prediction:     model.Pred,
		Confidence:     model.Confidence,
		Probabilities:  model.Probs,
		HeuristicVotes: model.HeuristicVotes,
		NeedsReview:    needsReview,
		Model: map[string]string{
			"version": model.Version,
			"method":  model.Method,
		},
	}

	logDir := p.dir
	if needsReview {
		logDir = filepath.Join(p.dir, "needs_review")
	}
	logFile := filepath.Join(logDir, fmt.Sprintf("predictions_%s.jsonl", time.Now().UTC().Format("2006-01-02")))

	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	_ = enc.Encode(rec)
}
