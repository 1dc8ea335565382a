package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractionJob represents one queued extraction run for a source PDF.
type ExtractionJob struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Filename    string    `db:"filename" json:"filename"`
	StorageKey  string    `db:"storage_key" json:"storage_key"`
	Provider    string    `db:"provider" json:"provider"`
	Status      JobStatus `db:"status" json:"status"`
	Attempts    int       `db:"attempts" json:"attempts"`
	LastError   string    `db:"last_error" json:"last_error"`
	RequestedBy string    `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents the final merged extraction result for one annual report.
type Document struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	JobID            uuid.UUID       `db:"job_id" json:"job_id"`
	Filename         string          `db:"filename" json:"filename"`
	PageCount        int             `db:"page_count" json:"page_count"`
	MergedRecord     json.RawMessage `db:"merged_record" json:"merged_record"`
	ConfidenceScores json.RawMessage `db:"confidence_scores" json:"confidence_scores"`
	FieldProvenance  json.RawMessage `db:"field_provenance" json:"field_provenance"`
	VisionModel      string          `db:"vision_model" json:"vision_model"`
	OCRLanguage      string          `db:"ocr_language" json:"ocr_language"`
	OCRDPI           int             `db:"ocr_dpi" json:"ocr_dpi"`
	ExtractedValues  int             `db:"extracted_values" json:"extracted_values"`
	AvgConfidence    float64         `db:"avg_confidence" json:"avg_confidence"`
	ExtractedAt      time.Time       `db:"extracted_at" json:"extracted_at"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// PageError records a single page that failed one of the extraction passes.
type PageError struct {
	Page    int    `json:"page"`
	Source  Source `json:"source"`
	Message string `json:"message"`
}

// ExtractionMetadata is embedded in the final merged artifact.
type ExtractionMetadata struct {
	Timestamp       time.Time   `json:"timestamp"`
	Filename        string      `json:"filename"`
	VisionModel     string      `json:"vision_model"`
	OCRLanguage     string      `json:"ocr_language"`
	OCRDPI          int         `json:"ocr_dpi"`
	PageCount       int         `json:"page_count"`
	ExtractedValues int         `json:"extracted_values_count"`
	AvgConfidence   float64     `json:"average_confidence"`
	PageErrors      []PageError `json:"page_errors,omitempty"`
}

// FatalError is the top-level error object emitted when a document cannot be
// processed at all (e.g. the PDF cannot be opened or rasterized).
type FatalError struct {
	Error     string    `json:"error"`
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
}
