package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"brfiq/internal/domain"
	"brfiq/internal/port"
)

type jobRepo struct {
	db *sqlx.DB
}

// NewExtractionJobRepo creates a SQL-backed ExtractionJobRepository.
func NewExtractionJobRepo(db *sqlx.DB) port.ExtractionJobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.ExtractionJob) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = domain.JobStatusQueued
	}

	query := r.db.Rebind(`INSERT INTO extraction_jobs (
		id, filename, storage_key, provider, status,
		attempts, last_error, requested_by, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Filename, job.StorageKey, job.Provider, job.Status,
		job.Attempts, job.LastError, job.RequestedBy, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("jobRepo.Create: %w", err)
	}
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, jobID uuid.UUID) (*domain.ExtractionJob, error) {
	var job domain.ExtractionJob
	err := r.db.GetContext(ctx, &job,
		r.db.Rebind("SELECT * FROM extraction_jobs WHERE id = ?"), jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("jobRepo.GetByID: %w", err)
	}
	return &job, nil
}

// ClaimQueued atomically flips up to limit queued jobs to processing and
// returns them. The subselect keeps the statement portable across Postgres
// and sqlite; both support UPDATE ... RETURNING.
func (r *jobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ExtractionJob, error) {
	query := r.db.Rebind(`UPDATE extraction_jobs
		SET status = ?, attempts = attempts + 1, updated_at = ?
		WHERE id IN (
			SELECT id FROM extraction_jobs
			WHERE status = ?
			ORDER BY created_at
			LIMIT ?
		)
		RETURNING *`)

	var jobs []domain.ExtractionJob
	err := r.db.SelectContext(ctx, &jobs, query,
		domain.JobStatusProcessing, time.Now().UTC(), domain.JobStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("jobRepo.ClaimQueued: %w", err)
	}
	return jobs, nil
}

func (r *jobRepo) MarkCompleted(ctx context.Context, jobID uuid.UUID) error {
	query := r.db.Rebind(`UPDATE extraction_jobs
		SET status = ?, last_error = '', updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, domain.JobStatusCompleted, time.Now().UTC(), jobID)
	if err != nil {
		return fmt.Errorf("jobRepo.MarkCompleted: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// MarkFailed records the failure. With requeue the job goes back to queued
// for another attempt; otherwise it stays failed.
func (r *jobRepo) MarkFailed(ctx context.Context, jobID uuid.UUID, lastError string, requeue bool) error {
	status := domain.JobStatusFailed
	if requeue {
		status = domain.JobStatusQueued
	}
	query := r.db.Rebind(`UPDATE extraction_jobs
		SET status = ?, last_error = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, status, lastError, time.Now().UTC(), jobID)
	if err != nil {
		return fmt.Errorf("jobRepo.MarkFailed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}
