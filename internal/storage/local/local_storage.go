package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"brfiq/internal/port"
)

type localStorage struct {
	root string
}

// NewLocalStorage creates a filesystem-backed ObjectStorage rooted at root.
// The bucket becomes the first path component. Used in CLI mode where no S3
// is available.
func NewLocalStorage(root string) port.ObjectStorage {
	return &localStorage{root: root}
}

func (s *localStorage) path(bucket, key string) string {
	return filepath.Join(s.root, bucket, filepath.FromSlash(key))
}

func (s *localStorage) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	path := s.path(input.Bucket, input.Key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("local upload mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("local upload create: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, input.Body); err != nil {
		return nil, fmt.Errorf("local upload write: %w", err)
	}
	return &port.UploadOutput{Location: path}, nil
}

func (s *localStorage) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(bucket, key))
	if err != nil {
		return nil, fmt.Errorf("local download: %w", err)
	}
	return data, nil
}

func (s *localStorage) Delete(ctx context.Context, bucket, key string) error {
	if err := os.Remove(s.path(bucket, key)); err != nil {
		return fmt.Errorf("local delete: %w", err)
	}
	return nil
}
