package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"brfiq/internal/domain"
)

// MockExtractionJobRepo is a mock implementation of port.ExtractionJobRepository.
type MockExtractionJobRepo struct {
	mock.Mock
}

func (m *MockExtractionJobRepo) Create(ctx context.Context, job *domain.ExtractionJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockExtractionJobRepo) GetByID(ctx context.Context, jobID uuid.UUID) (*domain.ExtractionJob, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionJob), args.Error(1)
}

func (m *MockExtractionJobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ExtractionJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractionJob), args.Error(1)
}

func (m *MockExtractionJobRepo) MarkCompleted(ctx context.Context, jobID uuid.UUID) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *MockExtractionJobRepo) MarkFailed(ctx context.Context, jobID uuid.UUID, lastError string, requeue bool) error {
	args := m.Called(ctx, jobID, lastError, requeue)
	return args.Error(0)
}
