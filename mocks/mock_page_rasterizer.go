package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"brfiq/internal/port"
)

// MockPageRasterizer is a mock implementation of port.PageRasterizer.
type MockPageRasterizer struct {
	mock.Mock
}

func (m *MockPageRasterizer) Rasterize(ctx context.Context, pdfPath string, dpi, pageLimit int) ([]port.PageImage, error) {
	args := m.Called(ctx, pdfPath, dpi, pageLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.PageImage), args.Error(1)
}
