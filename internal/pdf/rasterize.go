package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"brfiq/internal/config"
	"brfiq/internal/port"
)

// Rasterizer renders PDF pages to PNG images by shelling out to pdftoppm
// (poppler-utils).
type Rasterizer struct {
	binary string
}

// NewRasterizer creates a pdftoppm-backed rasterizer.
func NewRasterizer(cfg *config.OCRConfig) *Rasterizer {
	binary := cfg.Pdftoppm
	if binary == "" {
		binary = "pdftoppm"
	}
	return &Rasterizer{binary: binary}
}

// CheckAvailable reports whether the pdftoppm binary can be found.
func (r *Rasterizer) CheckAvailable() error {
	if _, err := exec.LookPath(r.binary); err != nil {
		return fmt.Errorf("pdftoppm not found (install poppler-utils): %w", err)
	}
	return nil
}

// Rasterize renders the PDF at pdfPath to PNG page images at the given DPI.
// pageLimit 0 means all pages.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath string, dpi, pageLimit int) ([]port.PageImage, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, fmt.Errorf("pdf not readable: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "brfiq-pages-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-png", "-r", strconv.Itoa(dpi)}
	if pageLimit > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(pageLimit))
	}
	args = append(args, pdfPath, prefix)

	cmd := exec.CommandContext(ctx, r.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, string(out))
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("listing rendered pages: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages for %s", pdfPath)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(matches)

	pages := make([]port.PageImage, 0, len(matches))
	for i, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading rendered page %s: %w", path, err)
		}
		pages = append(pages, port.PageImage{Page: i + 1, PNG: data})
	}
	return pages, nil
}
