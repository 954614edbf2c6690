package service

import (
	"context"
	"sync"
	"time"

	"medvault/internal/logging"
	"medvault/internal/port"
)

// ScanQueueConfig holds settings for the scan queue worker.
type ScanQueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
	// ScanTimeout bounds a single parse, including image downloads.
	ScanTimeout time.Duration
	// StaleAfter is how long a scan may sit in processing before it is
	// assumed abandoned and requeued. Defaults to twice ScanTimeout.
	StaleAfter time.Duration
}

// ScanQueueWorker polls for queued card scans and dispatches them for parsing.
type ScanQueueWorker struct {
	scanRepo    port.CardScanRepository
	cardService CardService
	cfg         ScanQueueConfig
	wg          sync.WaitGroup
}

// NewScanQueueWorker creates a new ScanQueueWorker.
func NewScanQueueWorker(scanRepo port.CardScanRepository, cardService CardService, cfg ScanQueueConfig) *ScanQueueWorker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = 5 * time.Minute
	}
	if cfg.StaleAfter <= cfg.ScanTimeout {
		cfg.StaleAfter = 2 * cfg.ScanTimeout
	}
	return &ScanQueueWorker{
		scanRepo:    scanRepo,
		cardService: cardService,
		cfg:         cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight scans have finished.
func (w *ScanQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)
	log := logging.Worker

	log.WithField("poll", w.cfg.PollInterval).WithField("concurrency", w.cfg.Concurrency).
		WithField("max_retries", w.cfg.MaxRetries).Info("scanQueueWorker: started")

	for {
		select {
		case <-ctx.Done():
			log.Info("scanQueueWorker: shutting down, waiting for in-flight scans")
			w.wg.Wait()
			log.Info("scanQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			w.poll(ctx, sem)
		}
	}
}

func (w *ScanQueueWorker) poll(ctx context.Context, sem chan struct{}) {
	w.requeueStale(ctx)

	available := w.cfg.Concurrency - len(sem)
	if available <= 0 {
		return
	}

	scans, err := w.scanRepo.ClaimQueued(ctx, available)
	if err != nil {
		if ctx.Err() == nil {
			logging.Worker.WithError(err).Error("scanQueueWorker: ClaimQueued failed")
		}
		return
	}

	for i := range scans {
		scan := scans[i]
		scan.Attempts++

		sem <- struct{}{}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }()

			// Detached from the poll context so in-flight scans finish during shutdown.
			scanCtx, cancel := context.WithTimeout(context.Background(), w.cfg.ScanTimeout)
			defer cancel()

			logging.Worker.WithField("scan_id", scan.ID).WithField("attempt", scan.Attempts).
				Debug("scanQueueWorker: dispatching scan")
			w.cardService.ProcessScan(scanCtx, &scan, w.cfg.MaxRetries)
		}()
	}
}

func (w *ScanQueueWorker) requeueStale(ctx context.Context) {
	n, err := w.scanRepo.RequeueStale(ctx, time.Now().UTC().Add(-w.cfg.StaleAfter))
	if err != nil {
		if ctx.Err() == nil {
			logging.Worker.WithError(err).Error("scanQueueWorker: RequeueStale failed")
		}
		return
	}
	if n > 0 {
		logging.Worker.WithField("count", n).Warn("scanQueueWorker: requeued stale scans")
	}
}

// Wait blocks until dispatched scans complete. Used by tests and batch callers.
func (w *ScanQueueWorker) Wait() {
	w.wg.Wait()
}
