package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"brfiq/internal/config"
	"brfiq/internal/domain"
	"brfiq/internal/handler"
	"brfiq/internal/ocr"
	"brfiq/internal/pdf"
	"brfiq/internal/pipeline"
	"brfiq/internal/port"
	"brfiq/internal/repair"
	"brfiq/internal/repository/postgres"
	"brfiq/internal/router"
	"brfiq/internal/service"
	"brfiq/internal/storage/local"
	s3storage "brfiq/internal/storage/s3"
	"brfiq/internal/vision"
	"brfiq/internal/vision/providers"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	jobRepo := postgres.NewExtractionJobRepo(db)
	docRepo := postgres.NewDocumentRepo(db)

	// Initialize storage
	var store port.ObjectStorage
	if cfg.Storage.Driver == "local" {
		store = local.NewLocalStorage(cfg.Storage.LocalDir)
	} else {
		store, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Initialize the extraction pipeline
	providers.RegisterAll()
	parser, err := vision.NewParser(&cfg.Vision)
	if err != nil {
		if !errors.Is(err, domain.ErrMissingAPIKey) {
			return fmt.Errorf("failed to initialize vision parser: %w", err)
		}
		log.Printf("server: %v, running OCR-only", err)
		parser = nil
	}

	pipe := pipeline.New(
		pdf.NewRasterizer(&cfg.OCR),
		ocr.NewRecognizer(&cfg.OCR),
		parser,
		repair.NewRepairer(repair.Config{ConfidenceThreshold: cfg.Merge.ConfidenceThreshold}),
		pipeline.Options{
			DPI:              cfg.OCR.DPI,
			PageLimit:        cfg.OCR.PageLimit,
			OCRLanguage:      cfg.OCR.Language,
			APIDelay:         time.Duration(cfg.Vision.APIDelaySecs) * time.Second,
			MaxVisionRetries: cfg.Vision.MaxRetries,
			OutputDir:        cfg.Output.Dir,
		},
	)

	// Initialize services
	extractionSvc := service.NewExtractionService(jobRepo, docRepo, store, pipe, cfg)

	// Initialize handlers
	healthH := handler.NewHealthHandler(db)
	jobH := handler.NewJobHandler(extractionSvc)
	docH := handler.NewDocumentHandler(extractionSvc)

	r := router.Setup(cfg, healthH, jobH, docH)

	// Queue worker runs alongside the HTTP server and drains on SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := service.NewQueueWorker(jobRepo, extractionSvc, service.QueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	log.Printf("Server starting on %s", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		log.Printf("Shutdown signal received, draining queue worker...")
		<-workerDone
		return nil
	}
}
