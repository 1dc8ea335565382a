package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"brfiq/internal/port"
)

// MockVisionParser is a mock implementation of port.VisionParser.
type MockVisionParser struct {
	mock.Mock
}

func (m *MockVisionParser) ParsePage(ctx context.Context, input port.PageInput) (*port.PageExtraction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.PageExtraction), args.Error(1)
}

func (m *MockVisionParser) Model() string {
	args := m.Called()
	return args.String(0)
}
