package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"brfiq/internal/config"
	"brfiq/internal/domain"
	"brfiq/internal/pipeline"
	"brfiq/internal/port"
)

// CreateJobInput carries an uploaded report into the extraction queue.
type CreateJobInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Provider    string
	RequestedBy string
}

// ExtractionService owns the extraction job lifecycle: intake, queue
// processing, and result lookup.
type ExtractionService interface {
	CreateJob(ctx context.Context, input CreateJobInput) (*domain.ExtractionJob, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*domain.ExtractionJob, error)
	GetDocument(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	GetDocumentByJob(ctx context.Context, jobID uuid.UUID) (*domain.Document, error)
	ListDocuments(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	ProcessJob(ctx context.Context, job *domain.ExtractionJob, maxRetries int)
}

type extractionService struct {
	jobRepo port.ExtractionJobRepository
	docRepo port.DocumentRepository
	storage port.ObjectStorage
	pipe    *pipeline.Pipeline
	cfg     *config.Config
}

// NewExtractionService creates the extraction service.
func NewExtractionService(
	jobRepo port.ExtractionJobRepository,
	docRepo port.DocumentRepository,
	storage port.ObjectStorage,
	pipe *pipeline.Pipeline,
	cfg *config.Config,
) ExtractionService {
	return &extractionService{
		jobRepo: jobRepo,
		docRepo: docRepo,
		storage: storage,
		pipe:    pipe,
		cfg:     cfg,
	}
}

func (s *extractionService) CreateJob(ctx context.Context, input CreateJobInput) (*domain.ExtractionJob, error) {
	if _, ok := domain.AllowedContentTypes[input.ContentType]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	maxBytes := s.cfg.S3.MaxFileSizeMB * 1024 * 1024
	if maxBytes > 0 && input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	jobID := uuid.New()
	key := fmt.Sprintf("uploads/%s/%s", jobID, input.Filename)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.S3.Bucket,
		Key:         key,
		Body:        input.Body,
		ContentType: input.ContentType,
		Size:        input.Size,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	provider := input.Provider
	if provider == "" {
		provider = s.cfg.Vision.Provider
	}
	job := &domain.ExtractionJob{
		ID:          jobID,
		Filename:    input.Filename,
		StorageKey:  key,
		Provider:    provider,
		Status:      domain.JobStatusQueued,
		RequestedBy: input.RequestedBy,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating extraction job: %w", err)
	}

	log.Printf("service.ExtractionService: queued job %s for %s", job.ID, job.Filename)
	return job, nil
}

func (s *extractionService) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.ExtractionJob, error) {
	return s.jobRepo.GetByID(ctx, jobID)
}

func (s *extractionService) GetDocument(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, docID)
}

func (s *extractionService) GetDocumentByJob(ctx context.Context, jobID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByJobID(ctx, jobID)
}

func (s *extractionService) ListDocuments(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return s.docRepo.List(ctx, offset, limit)
}

// ProcessJob runs one claimed job through the pipeline and records the
// outcome. Failures below maxRetries requeue the job; at the limit it is
// marked failed for good. Never returns an error: the queue worker has
// nothing useful to do with one.
func (s *extractionService) ProcessJob(ctx context.Context, job *domain.ExtractionJob, maxRetries int) {
	data, err := s.storage.Download(ctx, s.cfg.S3.Bucket, job.StorageKey)
	if err != nil {
		s.failJob(ctx, job, maxRetries, fmt.Errorf("downloading source: %w", err))
		return
	}

	tmpDir, err := os.MkdirTemp("", "brfiq-job-*")
	if err != nil {
		s.failJob(ctx, job, maxRetries, fmt.Errorf("creating temp dir: %w", err))
		return
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	pdfPath := filepath.Join(tmpDir, job.Filename)
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		s.failJob(ctx, job, maxRetries, fmt.Errorf("writing temp pdf: %w", err))
		return
	}

	run, err := s.pipe.Execute(ctx, pdfPath)
	if err != nil {
		s.failJob(ctx, job, maxRetries, err)
		return
	}

	doc, err := documentFromRun(job, run)
	if err != nil {
		s.failJob(ctx, job, maxRetries, err)
		return
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		s.failJob(ctx, job, maxRetries, fmt.Errorf("persisting document: %w", err))
		return
	}
	if err := s.jobRepo.MarkCompleted(ctx, job.ID); err != nil {
		log.Printf("service.ExtractionService: marking job %s completed: %v", job.ID, err)
		return
	}
	log.Printf("service.ExtractionService: job %s completed (%d values, avg confidence %.1f)",
		job.ID, doc.ExtractedValues, doc.AvgConfidence)
}

func (s *extractionService) failJob(ctx context.Context, job *domain.ExtractionJob, maxRetries int, cause error) {
	requeue := job.Attempts < maxRetries
	log.Printf("service.ExtractionService: job %s attempt %d failed (requeue=%v): %v",
		job.ID, job.Attempts, requeue, cause)
	if err := s.jobRepo.MarkFailed(ctx, job.ID, cause.Error(), requeue); err != nil {
		log.Printf("service.ExtractionService: marking job %s failed: %v", job.ID, err)
	}
}

// documentFromRun flattens a finished pipeline run into the persistence row.
func documentFromRun(job *domain.ExtractionJob, run *pipeline.Run) (*domain.Document, error) {
	merged := run.Merged()

	recordJSON, err := json.Marshal(merged.Merged)
	if err != nil {
		return nil, fmt.Errorf("marshaling merged record: %w", err)
	}
	scoresJSON, err := json.Marshal(merged.Scores.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("marshaling confidence scores: %w", err)
	}
	provJSON, err := json.Marshal(merged.Provenance)
	if err != nil {
		return nil, fmt.Errorf("marshaling provenance: %w", err)
	}

	meta := run.Metadata()
	return &domain.Document{
		ID:               uuid.New(),
		JobID:            job.ID,
		Filename:         job.Filename,
		PageCount:        meta.PageCount,
		MergedRecord:     recordJSON,
		ConfidenceScores: scoresJSON,
		FieldProvenance:  provJSON,
		VisionModel:      meta.VisionModel,
		OCRLanguage:      meta.OCRLanguage,
		OCRDPI:           meta.OCRDPI,
		ExtractedValues:  meta.ExtractedValues,
		AvgConfidence:    meta.AvgConfidence,
		ExtractedAt:      meta.Timestamp,
	}, nil
}
