package service

import (
	"context"
	"log"
	"sync"
	"time"

	"brfiq/internal/port"
)

// QueueConfig holds settings for the extraction queue worker.
type QueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
}

// QueueWorker polls for queued extraction jobs and dispatches them through
// the pipeline.
type QueueWorker struct {
	jobRepo port.ExtractionJobRepository
	svc     ExtractionService
	cfg     QueueConfig
	wg      sync.WaitGroup
}

// NewQueueWorker creates a new QueueWorker.
func NewQueueWorker(jobRepo port.ExtractionJobRepository, svc ExtractionService, cfg QueueConfig) *QueueWorker {
	return &QueueWorker{
		jobRepo: jobRepo,
		svc:     svc,
		cfg:     cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight extractions have finished.
func (w *QueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("service.QueueWorker: started (poll=%s, concurrency=%d, maxRetries=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			log.Printf("service.QueueWorker: shutting down, waiting for in-flight extractions...")
			w.wg.Wait()
			log.Printf("service.QueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			jobs, err := w.jobRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("service.QueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range jobs {
				job := jobs[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// A fresh context lets in-flight extractions finish
					// during shutdown. Vision passes over long documents
					// are slow, hence the generous timeout.
					jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
					defer cancel()

					log.Printf("service.QueueWorker: dispatching job %s (attempt %d)", job.ID, job.Attempts)
					w.svc.ProcessJob(jobCtx, &job, w.cfg.MaxRetries)
				}()
			}
		}
	}
}
