package domain

// Source identifies which extraction pass produced a value.
type Source string

const (
	SourceOCR    Source = "ocr"
	SourceVision Source = "vision"
)

// JobStatus represents the lifecycle of an extraction job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// DefaultConfidence maps each source to the confidence assumed for a field the
// pass extracted without reporting an explicit score. The vision pass is
// treated as generally more trustworthy than OCR+regex.
var DefaultConfidence = map[Source]float64{
	SourceOCR:    70,
	SourceVision: 80,
}

// FileType represents the allowed source file types.
type FileType string

const (
	FileTypePDF FileType = "pdf"
)

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
}
