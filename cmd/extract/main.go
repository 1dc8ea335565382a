// Command extract runs the full extraction pipeline over a single PDF and
// writes the JSON artifacts to the output directory.
//
// Usage:
//
//	extract --pdf report.pdf [--output-dir results] [--provider qwen]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"brfiq/internal/config"
	"brfiq/internal/domain"
	"brfiq/internal/ocr"
	"brfiq/internal/pdf"
	"brfiq/internal/pipeline"
	"brfiq/internal/repair"
	"brfiq/internal/vision"
	"brfiq/internal/vision/providers"
)

// logFileName is the fixed log file created in the working directory.
const logFileName = "brfiq_extract.log"

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Printf("extract: %v", err)
	} else {
		defer logFile.Close()
	}

	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		log.Printf("extract: %v", err)
		if logFile != nil {
			logFile.Close()
		}
		os.Exit(1)
	}
}

// setupLogging tees the standard logger to stderr and the fixed log file.
func setupLogging() (*os.File, error) {
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", logFileName, err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return f, nil
}

func run() error {
	var (
		pdfPath    = flag.String("pdf", "", "path to the annual-report PDF (required)")
		outputDir  = flag.String("output-dir", "results", "directory for JSON artifacts")
		apiKey     = flag.String("api-key", "", "vision API key (falls back to provider env vars)")
		dpi        = flag.Int("dpi", 300, "rasterization DPI")
		lang       = flag.String("lang", "swe", "tesseract language")
		confidence = flag.Float64("confidence", 50, "confidence threshold for redaction")
		pageLimit  = flag.Int("page-limit", 0, "max pages to process (0 = all)")
		apiDelay   = flag.Int("api-delay", 5, "seconds between vision API calls")
		provider   = flag.String("provider", "qwen", "vision provider (qwen, mistral)")
		checkDeps  = flag.Bool("check-deps", false, "verify external tools and exit")
	)
	flag.Parse()

	ocrCfg := &config.OCRConfig{
		Tesseract: "tesseract",
		Pdftoppm:  "pdftoppm",
		Language:  *lang,
		DPI:       *dpi,
		PSM:       6,
		PageLimit: *pageLimit,
	}
	rasterizer := pdf.NewRasterizer(ocrCfg)
	recognizer := ocr.NewRecognizer(ocrCfg)

	if *checkDeps {
		return checkDependencies(rasterizer, recognizer)
	}

	if *pdfPath == "" {
		flag.Usage()
		return fmt.Errorf("--pdf is required")
	}

	providers.RegisterAll()
	visionCfg := &config.VisionConfig{
		Provider:     *provider,
		APIKey:       *apiKey,
		MaxRetries:   3,
		APIDelaySecs: *apiDelay,
	}

	parser, err := vision.NewParser(visionCfg)
	if err != nil {
		if !errors.Is(err, domain.ErrMissingAPIKey) {
			return err
		}
		log.Printf("extract: %v, skipping vision pass", err)
		parser = nil
	}

	pipe := pipeline.New(
		rasterizer,
		recognizer,
		parser,
		repair.NewRepairer(repair.Config{ConfidenceThreshold: *confidence}),
		pipeline.Options{
			DPI:              *dpi,
			PageLimit:        *pageLimit,
			OCRLanguage:      *lang,
			APIDelay:         time.Duration(*apiDelay) * time.Second,
			MaxVisionRetries: visionCfg.MaxRetries,
			OutputDir:        *outputDir,
		},
	)

	res, err := pipe.Execute(context.Background(), *pdfPath)
	if err != nil {
		return err
	}

	meta := res.Metadata()
	fmt.Printf("Extraction complete: %s\n", res.Filename())
	fmt.Printf("  pages:            %d\n", meta.PageCount)
	fmt.Printf("  extracted values: %d\n", meta.ExtractedValues)
	fmt.Printf("  avg confidence:   %.1f\n", meta.AvgConfidence)
	if len(meta.PageErrors) > 0 {
		fmt.Printf("  page errors:      %d\n", len(meta.PageErrors))
		for _, pe := range meta.PageErrors {
			fmt.Printf("    page %d (%s): %s\n", pe.Page, pe.Source, pe.Message)
		}
	}
	return nil
}

func checkDependencies(rasterizer *pdf.Rasterizer, recognizer *ocr.Recognizer) error {
	failed := false
	if err := rasterizer.CheckAvailable(); err != nil {
		fmt.Printf("pdftoppm:  MISSING (%v)\n", err)
		failed = true
	} else {
		fmt.Println("pdftoppm:  ok")
	}
	if err := recognizer.CheckAvailable(); err != nil {
		fmt.Printf("tesseract: MISSING (%v)\n", err)
		failed = true
	} else {
		fmt.Println("tesseract: ok")
	}
	if failed {
		return fmt.Errorf("missing external dependencies")
	}
	return nil
}
