package analyzer

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/eswarib/biodatamine/internal/domain"
)

// modalityLabels is the closed CNN output space spec.md §4.3 names.
var modalityLabels = []string{"CT", "MR", "XRAY", "US", "OPTICAL"}

// cnnWeight scales the classifier's probability distribution relative to a
// single heuristic vote, so one confident CNN call outweighs any single
// heuristic but not the combination of several agreeing ones.
const cnnWeight = 3.0

// ModalityClassifier is the pluggable collaborator spec.md §1 treats as an
// external pure function: image + context in, a label distribution out.
type ModalityClassifier interface {
	Classify(path string) (probs map[string]float64, version string, err error)
}

// DefaultClassifier stands in for the CNN collaborator with a deterministic
// uniform distribution, so that in the absence of a trained model the
// heuristic votes alone decide the label — never a hidden source of
// nondeterminism in tests.
type DefaultClassifier struct{}

func (DefaultClassifier) Classify(path string) (map[string]float64, string, error) {
	uniform := 1.0 / float64(len(modalityLabels))
	probs := make(map[string]float64, len(modalityLabels))
	for _, l := range modalityLabels {
		probs[l] = uniform
	}
	return probs, "heuristic-stub-v1", nil
}

// modalityKeywords maps filename/folder tokens (and raw-text scan hits) to
// the label they suggest.
var modalityKeywords = map[string]string{
	"ct": "CT", "cat-scan": "CT", "computed-tomography": "CT",
	"mr": "MR", "mri": "MR", "magnetic-resonance": "MR",
	"xray": "XRAY", "x-ray": "XRAY", "radiograph": "XRAY",
	"us": "US", "ultrasound": "US", "sonography": "US", "echo": "US",
	"optical": "OPTICAL", "photo": "OPTICAL", "dermoscopy": "OPTICAL", "fundus": "OPTICAL",
}

// InferModality combines the CNN collaborator's distribution with additive
// heuristic votes from aspect ratio, grayscale-ness, intensity histogram,
// edge density (when a full pixel decode succeeds), filename/folder token
// matches, and embedded-text keyword hits, per spec.md §4.3. The final
// label is argmax(votes); confidence is the winner's share of the sum of
// all positive votes.
func InferModality(datasetID, absPath, relPath string, folderContext [3]string, img *domain.ImageMeta, classifier ModalityClassifier, predLogger *PredictionLogger) *domain.ModalityModel {
	if classifier == nil {
		classifier = DefaultClassifier{}
	}

	votes := make(map[string]float64, len(modalityLabels))
	heuristicVotes := make(map[string]float64)
	var sources []string
	addSource := func(name string) {
		for _, s := range sources {
			if s == name {
				return
			}
		}
		sources = append(sources, name)
	}
	addVote := func(label string, amount float64, source string) {
		votes[label] += amount
		heuristicVotes[label] += amount
		addSource(source)
	}

	probs, version, err := classifier.Classify(absPath)
	method := "heuristic-only"
	if err == nil {
		for label, p := range probs {
			votes[label] += p * cnnWeight
		}
		addSource("cnn")
		method = "cnn+heuristic"
	}

	if img != nil && img.Height > 0 {
		ratio := float64(img.Width) / float64(img.Height)
		switch {
		case ratio > 1.2:
			addVote("XRAY", 1.0, "aspect_ratio")
		case ratio < 0.85:
			addVote("US", 1.0, "aspect_ratio")
		default:
			addVote("CT", 0.5, "aspect_ratio")
			addVote("MR", 0.5, "aspect_ratio")
		}
	}

	if px, err := decodePixelFeatures(absPath); err == nil {
		if px.grayscaleRatio > 0.97 {
			addVote("CT", 0.5, "grayscale")
			addVote("MR", 0.5, "grayscale")
			addVote("XRAY", 0.5, "grayscale")
		} else {
			addVote("OPTICAL", 2.0, "grayscale")
		}

		switch {
		case px.darkRatio > 0.5 && px.brightRatio > 0.05:
			addVote("XRAY", 1.5, "histogram")
		case px.midGrayRatio > 0.6:
			addVote("US", 1.0, "histogram")
		default:
			addVote("CT", 0.5, "histogram")
			addVote("MR", 0.5, "histogram")
		}

		if px.edgeDensity > 0.15 {
			addVote("US", 1.0, "edge_density")
		} else {
			addVote("CT", 0.5, "edge_density")
			addVote("MR", 0.5, "edge_density")
		}
	}

	for _, token := range pathTokens(relPath, folderContext) {
		if label, ok := modalityKeywords[token]; ok {
			addVote(label, 2.0, "filename_token")
		}
	}

	for _, label := range keywordHitsInFile(absPath) {
		addVote(label, 1.5, "embedded_text")
	}

	winner := modalityLabels[0]
	best := votes[winner]
	for _, label := range modalityLabels[1:] {
		if votes[label] > best {
			best = votes[label]
			winner = label
		}
	}

	var positiveSum float64
	for _, v := range votes {
		if v > 0 {
			positiveSum += v
		}
	}
	var confidence float64
	if positiveSum > 0 {
		confidence = votes[winner] / positiveSum
	}

	model := &domain.ModalityModel{
		Pred:           winner,
		Confidence:     confidence,
		Version:        version,
		Method:         method,
		Probs:          probs,
		HeuristicVotes: heuristicVotes,
		Sources:        sources,
	}

	predLogger.Log(datasetID, absPath, model)

	return model
}

// pathTokens splits relPath's base name and folderContext into lowercase,
// punctuation-trimmed tokens for keyword matching.
func pathTokens(relPath string, folderContext [3]string) []string {
	var tokens []string
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(relPath), filepath.Ext(relPath)))
	tokens = append(tokens, splitTokens(base)...)
	for _, folder := range folderContext {
		tokens = append(tokens, splitTokens(strings.ToLower(folder))...)
	}
	return tokens
}

func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '-'
	})
}

// keywordHitsInFile scans the first 64 KiB of a file's raw bytes for
// modality keyword substrings that sometimes survive in embedded text
// chunks (PNG tEXt, JPEG comments) — a lightweight, dependency-free stand
// in for the OCR-derived keyword hits of spec.md §4.3.
func keywordHitsInFile(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	buf := make([]byte, 64*1024)
	n, _ := f.Read(buf)
	text := strings.ToLower(string(buf[:n]))

	var hits []string
	seen := map[string]bool{}
	for kw, label := range modalityKeywords {
		if strings.Contains(text, kw) && !seen[label] {
			hits = append(hits, label)
			seen[label] = true
		}
	}
	return hits
}

type pixelFeatures struct {
	grayscaleRatio float64
	darkRatio      float64
	brightRatio    float64
	midGrayRatio   float64
	edgeDensity    float64
}

// decodePixelFeatures fully decodes the image (the analyzer's earlier
// format sniff only reads the header via image.DecodeConfig) and computes
// a coarse feature set over a subsampled pixel grid.
func decodePixelFeatures(path string) (*pixelFeatures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, err
	}

	strideX := max(1, width/128)
	strideY := max(1, height/128)

	var total, grayHits, dark, bright, midGray int
	var prevLum int
	var edgeHits int
	for y := bounds.Min.Y; y < bounds.Max.Y; y += strideY {
		prevLum = -1
		for x := bounds.Min.X; x < bounds.Max.X; x += strideX {
			r, g, b, _ := img.At(x, y).RGBA()
			r8, g8, b8 := r>>8, g>>8, b>>8
			lum := int((r8*30 + g8*59 + b8*11) / 100)

			if absDiff(int(r8), int(g8)) < 8 && absDiff(int(g8), int(b8)) < 8 {
				grayHits++
			}
			switch {
			case lum < 32:
				dark++
			case lum > 224:
				bright++
			case lum >= 96 && lum <= 160:
				midGray++
			}
			if prevLum >= 0 && absDiff(lum, prevLum) > 40 {
				edgeHits++
			}
			prevLum = lum
			total++
		}
	}
	if total == 0 {
		return nil, err
	}

	return &pixelFeatures{
		grayscaleRatio: float64(grayHits) / float64(total),
		darkRatio:      float64(dark) / float64(total),
		brightRatio:    float64(bright) / float64(total),
		midGrayRatio:   float64(midGray) / float64(total),
		edgeDensity:    float64(edgeHits) / float64(total),
	}, nil
}

func absDiff(a, b int) int {
	if a < b {
		return b - a
	}
	return a - b
}
