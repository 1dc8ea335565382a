package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brfiq/internal/port"
)

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStorage(root)
	ctx := context.Background()

	out, err := store.Upload(ctx, port.UploadInput{
		Bucket:      "brfiq-reports",
		Key:         "uploads/brf_bjornen_2023.pdf",
		Body:        strings.NewReader("%PDF-1.4 fake"),
		ContentType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "brfiq-reports", "uploads", "brf_bjornen_2023.pdf"), out.Location)

	data, err := store.Download(ctx, "brfiq-reports", "uploads/brf_bjornen_2023.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))

	require.NoError(t, store.Delete(ctx, "brfiq-reports", "uploads/brf_bjornen_2023.pdf"))
	_, err = os.Stat(out.Location)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_DownloadMissingKey(t *testing.T) {
	store := NewLocalStorage(t.TempDir())

	_, err := store.Download(context.Background(), "brfiq-reports", "uploads/missing.pdf")
	assert.Error(t, err)
}
