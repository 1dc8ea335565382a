package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"brfiq/internal/domain"
	"brfiq/internal/record"
)

// Artifact file layout under the output directory.
const (
	ocrResultsDir    = "ocr_results"
	visionResultsDir = "vision_results"
	ocrSuffix        = "_ocr_enhanced.json"
	visionSuffix     = "_vision_enhanced.json"
	finalSuffix      = "_enhanced_results.json"
)

// ArtifactWriter writes the per-pass and final JSON artifacts for a document.
type ArtifactWriter struct {
	outDir string
}

// NewArtifactWriter creates a writer rooted at outDir.
func NewArtifactWriter(outDir string) *ArtifactWriter {
	if outDir == "" {
		outDir = "results"
	}
	return &ArtifactWriter{outDir: outDir}
}

// passArtifact is the JSON shape of a single-pass result file.
type passArtifact struct {
	Source           domain.Source      `json:"source"`
	Data             record.Record      `json:"data"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
	Analyses         []string           `json:"analyses,omitempty"`
}

// finalArtifact is the JSON shape of the merged+repaired result file.
type finalArtifact struct {
	Data               record.Record             `json:"data"`
	ConfidenceScores   map[string]float64        `json:"confidence_scores"`
	FieldProvenance    map[string]string         `json:"field_provenance"`
	ExtractionMetadata domain.ExtractionMetadata `json:"extraction_metadata"`
}

// WriteOCRPass writes <out>/ocr_results/<name>_ocr_enhanced.json.
func (w *ArtifactWriter) WriteOCRPass(name string, rec record.Record, scores map[string]float64) error {
	path := filepath.Join(w.outDir, ocrResultsDir, name+ocrSuffix)
	return w.writeJSON(path, passArtifact{
		Source:           domain.SourceOCR,
		Data:             rec,
		ConfidenceScores: scores,
	})
}

// WriteVisionPass writes <out>/vision_results/<name>_vision_enhanced.json.
func (w *ArtifactWriter) WriteVisionPass(name string, rec record.Record, scores map[string]float64, analyses []string) error {
	path := filepath.Join(w.outDir, visionResultsDir, name+visionSuffix)
	return w.writeJSON(path, passArtifact{
		Source:           domain.SourceVision,
		Data:             rec,
		ConfidenceScores: scores,
		Analyses:         analyses,
	})
}

// WriteFinal writes <out>/<name>_enhanced_results.json.
func (w *ArtifactWriter) WriteFinal(
	name string,
	rec record.Record,
	scores *record.ConfidenceStore,
	provenance map[string]string,
	meta domain.ExtractionMetadata,
) error {
	path := filepath.Join(w.outDir, name+finalSuffix)
	return w.writeJSON(path, finalArtifact{
		Data:               rec,
		ConfidenceScores:   scores.Snapshot(),
		FieldProvenance:    provenance,
		ExtractionMetadata: meta,
	})
}

// WriteFatal writes the top-level error object in place of the final artifact
// when the document could not be opened at all.
func (w *ArtifactWriter) WriteFatal(name string, cause error) error {
	path := filepath.Join(w.outDir, name+finalSuffix)
	return w.writeJSON(path, domain.FatalError{
		Error:     cause.Error(),
		Filename:  name,
		Timestamp: time.Now().UTC(),
	})
}

// FinalPath returns the final artifact path for a document name.
func (w *ArtifactWriter) FinalPath(name string) string {
	return filepath.Join(w.outDir, name+finalSuffix)
}

func (w *ArtifactWriter) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling artifact: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
