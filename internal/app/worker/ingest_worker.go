package worker

import (
	"context"
	"time"

	"contest_tracker/internal/app/service"

	"github.com/sirupsen/logrus"
)

// IngestWorker drives the recurring contest ingestion job: one run at startup,
// then one per interval. Cancelling the context stops future ticks; a tick
// already in progress runs to completion.
type IngestWorker struct {
	ingestService *service.IngestService
	interval      time.Duration
	log           *logrus.Logger
}

func NewIngestWorker(ingestService *service.IngestService, interval time.Duration, log *logrus.Logger) *IngestWorker {
	return &IngestWorker{
		ingestService: ingestService,
		interval:      interval,
		log:           log,
	}
}

func (w *IngestWorker) Start(ctx context.Context) {
	w.log.WithField("interval", w.interval).Info("Contest ingestion worker started")

	// ctx only gates the loop. Tick work gets a detached context so that
	// cancelling the scheduler never aborts a fetch or write in flight.
	tickCtx := context.WithoutCancel(ctx)

	w.runOnce(tickCtx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Contest ingestion worker stopping...")
			return
		case <-ticker.C:
			w.runOnce(tickCtx)
		}
	}
}

func (w *IngestWorker) runOnce(ctx context.Context) {
	w.log.Info("Starting update for all platforms...")
	results := w.ingestService.SyncAll(ctx)

	fields := logrus.Fields{}
	for platform, res := range results {
		fields[string(platform)] = res
	}
	w.log.WithFields(fields).Info("Ingestion tick complete")
}
