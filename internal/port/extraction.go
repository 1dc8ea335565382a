package port

import "context"

// PageImage is one rasterized page of a source PDF.
type PageImage struct {
	Page int
	PNG  []byte
}

// PageRasterizer turns a PDF into one image per page at a given DPI.
// A failure here is fatal for the document.
type PageRasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, dpi, pageLimit int) ([]PageImage, error)
}

// TextRecognizer runs OCR over a single page image and returns raw text.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// PageExtraction is what one extraction pass yields for a single page: a flat
// field-path → value map plus best-effort per-field confidence scores.
// Fields present with a non-nil value should carry a score; the merge step
// applies the source default when one is missing.
type PageExtraction struct {
	Fields           map[string]any
	ConfidenceScores map[string]float64
	Analysis         string // free-text notes from the vision model
	ParseError       bool   // model output was not valid JSON after fence stripping
	ModelUsed        string
}

// PageInput carries one page image to the vision parser.
type PageInput struct {
	Page int
	PNG  []byte
}

// VisionParser abstracts the vision-LLM extraction call for one page.
type VisionParser interface {
	ParsePage(ctx context.Context, input PageInput) (*PageExtraction, error)
	Model() string
}
