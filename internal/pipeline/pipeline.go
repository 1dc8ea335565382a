// Package pipeline drives a document through the extraction passes: rasterize,
// OCR, vision, merge, repair, persist. Each transition is a separate method and
// may run at most once per document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strings"
	"time"

	"brfiq/internal/domain"
	"brfiq/internal/merge"
	"brfiq/internal/port"
	"brfiq/internal/record"
	"brfiq/internal/repair"
	"brfiq/internal/textextract"
	"brfiq/internal/vision"
)

// State names the stages a Run moves through, in order.
type State int

const (
	StateNew State = iota
	StatePreprocessed
	StateOCRd
	StateVisioned
	StateMerged
	StateRepaired
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StatePreprocessed:
		return "preprocessed"
	case StateOCRd:
		return "ocrd"
	case StateVisioned:
		return "visioned"
	case StateMerged:
		return "merged"
	case StateRepaired:
		return "repaired"
	case StatePersisted:
		return "persisted"
	}
	return "unknown"
}

// Options holds per-run extraction settings.
type Options struct {
	DPI              int
	PageLimit        int
	OCRLanguage      string
	APIDelay         time.Duration
	MaxVisionRetries int
	OutputDir        string
}

// Pipeline holds the pass adapters. Parser may be nil, in which case the
// vision pass is skipped and the merge sees an empty vision record.
type Pipeline struct {
	rasterizer port.PageRasterizer
	recognizer port.TextRecognizer
	extractor  *textextract.Extractor
	parser     port.VisionParser
	repairer   *repair.Repairer
	writer     *ArtifactWriter
	opts       Options
}

// New creates a Pipeline.
func New(
	rasterizer port.PageRasterizer,
	recognizer port.TextRecognizer,
	parser port.VisionParser,
	repairer *repair.Repairer,
	opts Options,
) *Pipeline {
	if opts.MaxVisionRetries <= 0 {
		opts.MaxVisionRetries = 3
	}
	return &Pipeline{
		rasterizer: rasterizer,
		recognizer: recognizer,
		extractor:  textextract.NewExtractor(),
		parser:     parser,
		repairer:   repairer,
		writer:     NewArtifactWriter(opts.OutputDir),
		opts:       opts,
	}
}

// Run is the per-document state moving through the pipeline.
type Run struct {
	p *Pipeline

	state    State
	pdfPath  string
	filename string
	started  time.Time

	pages []port.PageImage

	ocrRecord    record.Record
	ocrScores    map[string]float64
	visionRecord record.Record
	visionScores map[string]float64
	visionModel  string
	analyses     []string
	pageErrors   []domain.PageError

	merged *merge.Output
}

// NewRun starts a run for the PDF at pdfPath.
func (p *Pipeline) NewRun(pdfPath string) *Run {
	base := filepath.Base(pdfPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return &Run{
		p:            p,
		state:        StateNew,
		pdfPath:      pdfPath,
		filename:     name,
		started:      time.Now().UTC(),
		ocrRecord:    record.New(),
		ocrScores:    map[string]float64{},
		visionRecord: record.New(),
		visionScores: map[string]float64{},
	}
}

// Execute drives a run through every transition.
func (p *Pipeline) Execute(ctx context.Context, pdfPath string) (*Run, error) {
	run := p.NewRun(pdfPath)
	if err := run.Preprocess(ctx); err != nil {
		return run, err
	}
	if err := run.RunOCR(ctx); err != nil {
		return run, err
	}
	if err := run.RunVision(ctx); err != nil {
		return run, err
	}
	if err := run.Merge(); err != nil {
		return run, err
	}
	if err := run.Repair(); err != nil {
		return run, err
	}
	if err := run.Persist(); err != nil {
		return run, err
	}
	return run, nil
}

func (r *Run) advance(from, to State) error {
	if r.state != from {
		return fmt.Errorf("pipeline: cannot move to %s from %s", to, r.state)
	}
	r.state = to
	return nil
}

// State returns the run's current stage.
func (r *Run) State() State { return r.state }

// Preprocess rasterizes the PDF. Failure here is fatal for the document: an
// unreadable file produces nothing either pass could work with.
func (r *Run) Preprocess(ctx context.Context) error {
	if r.state != StateNew {
		return fmt.Errorf("pipeline: cannot preprocess from %s", r.state)
	}
	pages, err := r.p.rasterizer.Rasterize(ctx, r.pdfPath, r.p.opts.DPI, r.p.opts.PageLimit)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", domain.ErrDocumentUnreadable, err)
		if werr := r.p.writer.WriteFatal(r.filename, wrapped); werr != nil {
			log.Printf("pipeline.Run: writing fatal artifact for %s: %v", r.filename, werr)
		}
		return wrapped
	}
	r.pages = pages
	log.Printf("pipeline.Run: %s rasterized to %d pages", r.filename, len(pages))
	return r.advance(StateNew, StatePreprocessed)
}

// RunOCR performs the text pass. A page that fails OCR is recorded as a page
// error and skipped; the pass never fails the document.
func (r *Run) RunOCR(ctx context.Context) error {
	if r.state != StatePreprocessed {
		return fmt.Errorf("pipeline: cannot run OCR from %s", r.state)
	}
	for _, page := range r.pages {
		text, err := r.p.recognizer.Recognize(ctx, page.PNG)
		if err != nil {
			log.Printf("pipeline.Run: %s page %d OCR failed: %v", r.filename, page.Page, err)
			r.pageErrors = append(r.pageErrors, domain.PageError{
				Page:    page.Page,
				Source:  domain.SourceOCR,
				Message: err.Error(),
			})
			continue
		}
		fields, scores := r.p.extractor.Extract(text)
		record.Fold(r.ocrRecord, fields)
		for path, score := range scores {
			r.ocrScores[path] = score
		}
	}
	log.Printf("pipeline.Run: %s OCR pass extracted %d values", r.filename, record.CountValues(r.ocrRecord))
	return r.advance(StatePreprocessed, StateOCRd)
}

// RunVision performs the vision-LLM pass. With no parser configured the pass
// is skipped and the merge sees an empty vision record. Each page is retried
// with exponential backoff; a page that exhausts its retries is recorded as a
// page error and the loop continues.
func (r *Run) RunVision(ctx context.Context) error {
	if r.state != StateOCRd {
		return fmt.Errorf("pipeline: cannot run vision from %s", r.state)
	}
	if r.p.parser == nil {
		log.Printf("pipeline.Run: %s vision pass skipped (no parser configured)", r.filename)
		return r.advance(StateOCRd, StateVisioned)
	}
	r.visionModel = r.p.parser.Model()

	for i, page := range r.pages {
		if i > 0 && r.p.opts.APIDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.p.opts.APIDelay):
			}
		}

		ext, err := r.parsePageWithRetry(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("pipeline.Run: %s page %d vision failed: %v", r.filename, page.Page, err)
			r.pageErrors = append(r.pageErrors, domain.PageError{
				Page:    page.Page,
				Source:  domain.SourceVision,
				Message: err.Error(),
			})
			continue
		}
		if ext.ParseError {
			log.Printf("pipeline.Run: %s page %d vision output unparsable", r.filename, page.Page)
		}
		if ext.Analysis != "" {
			r.analyses = append(r.analyses, fmt.Sprintf("page %d: %s", page.Page, ext.Analysis))
		}
		record.Fold(r.visionRecord, ext.Fields)
		for path, score := range ext.ConfidenceScores {
			r.visionScores[path] = score
		}
	}
	log.Printf("pipeline.Run: %s vision pass extracted %d values", r.filename, record.CountValues(r.visionRecord))
	return r.advance(StateOCRd, StateVisioned)
}

// parsePageWithRetry retries a page with 2^attempt-second backoff. Rate-limit
// errors wait the provider's Retry-After instead.
func (r *Run) parsePageWithRetry(ctx context.Context, page port.PageImage) (*port.PageExtraction, error) {
	var lastErr error
	for attempt := 0; attempt < r.p.opts.MaxVisionRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			var rle *vision.RateLimitError
			if errors.As(lastErr, &rle) {
				wait = rle.RetryAfter
			}
			log.Printf("pipeline.Run: %s page %d retry %d after %s", r.filename, page.Page, attempt, wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		ext, err := r.p.parser.ParsePage(ctx, port.PageInput{Page: page.Page, PNG: page.PNG})
		if err == nil {
			return ext, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", r.p.opts.MaxVisionRetries, lastErr)
}

// Merge reconciles the two pass records.
func (r *Run) Merge() error {
	if r.state != StateVisioned {
		return fmt.Errorf("pipeline: cannot merge from %s", r.state)
	}
	scores := record.NewConfidenceStore()
	for path, score := range r.ocrScores {
		scores.Record("ocr."+path, score)
	}
	for path, score := range r.visionScores {
		scores.Record("vision."+path, score)
	}
	r.merged = merge.Merge(merge.Input{
		OCR:    r.ocrRecord,
		Vision: r.visionRecord,
		Scores: scores,
	})
	return r.advance(StateVisioned, StateMerged)
}

// Repair runs the consistency-repair steps over the merged record.
func (r *Run) Repair() error {
	if r.state != StateMerged {
		return fmt.Errorf("pipeline: cannot repair from %s", r.state)
	}
	r.p.repairer.Repair(r.merged.Merged, r.merged.Scores)
	return r.advance(StateMerged, StateRepaired)
}

// Persist writes the per-pass and final artifacts to the output directory.
func (r *Run) Persist() error {
	if r.state != StateRepaired {
		return fmt.Errorf("pipeline: cannot persist from %s", r.state)
	}
	if err := r.p.writer.WriteOCRPass(r.filename, r.ocrRecord, r.ocrScores); err != nil {
		return fmt.Errorf("writing OCR artifact: %w", err)
	}
	if err := r.p.writer.WriteVisionPass(r.filename, r.visionRecord, r.visionScores, r.analyses); err != nil {
		return fmt.Errorf("writing vision artifact: %w", err)
	}
	if err := r.p.writer.WriteFinal(r.filename, r.merged.Merged, r.merged.Scores, r.merged.Provenance, r.Metadata()); err != nil {
		return fmt.Errorf("writing final artifact: %w", err)
	}
	return r.advance(StateRepaired, StatePersisted)
}

// Metadata assembles the extraction_metadata block for the final artifact.
func (r *Run) Metadata() domain.ExtractionMetadata {
	return domain.ExtractionMetadata{
		Timestamp:       r.started,
		Filename:        r.filename,
		VisionModel:     r.visionModel,
		OCRLanguage:     r.p.opts.OCRLanguage,
		OCRDPI:          r.p.opts.DPI,
		PageCount:       len(r.pages),
		ExtractedValues: record.CountValues(r.merged.Merged),
		AvgConfidence:   record.FromMap(bareScores(r.merged.Scores.Snapshot())).Average(),
		PageErrors:      r.pageErrors,
	}
}

// bareScores filters out the per-source ocr./vision. entries, leaving only
// the winning per-field scores.
func bareScores(all map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(all))
	for path, score := range all {
		if strings.HasPrefix(path, "ocr.") || strings.HasPrefix(path, "vision.") {
			continue
		}
		out[path] = score
	}
	return out
}

// Merged exposes the merged output for persistence layers.
func (r *Run) Merged() *merge.Output { return r.merged }

// PageErrors exposes the per-page errors collected across both passes.
func (r *Run) PageErrors() []domain.PageError { return r.pageErrors }

// Filename returns the document name the artifacts are keyed by.
func (r *Run) Filename() string { return r.filename }

// PageCount returns the number of rasterized pages.
func (r *Run) PageCount() int { return len(r.pages) }
