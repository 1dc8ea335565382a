package port

import (
	"context"

	"github.com/google/uuid"

	"brfiq/internal/domain"
)

// ExtractionJobRepository defines the contract for extraction queue persistence.
type ExtractionJobRepository interface {
	Create(ctx context.Context, job *domain.ExtractionJob) error
	GetByID(ctx context.Context, jobID uuid.UUID) (*domain.ExtractionJob, error)
	ClaimQueued(ctx context.Context, limit int) ([]domain.ExtractionJob, error)
	MarkCompleted(ctx context.Context, jobID uuid.UUID) error
	MarkFailed(ctx context.Context, jobID uuid.UUID, lastError string, requeue bool) error
}

// DocumentRepository defines the contract for merged-result persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
}
