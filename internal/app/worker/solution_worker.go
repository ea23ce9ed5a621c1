package worker

import (
	"context"
	"time"

	"contest_tracker/internal/app/service"

	"github.com/sirupsen/logrus"
)

// SolutionWorker runs the solution-video matcher on its own cadence,
// independent of ingestion. Same loop shape as IngestWorker: immediate first
// run, fixed interval, cooperative cancellation.
type SolutionWorker struct {
	solutionService *service.SolutionService
	interval        time.Duration
	log             *logrus.Logger
}

func NewSolutionWorker(solutionService *service.SolutionService, interval time.Duration, log *logrus.Logger) *SolutionWorker {
	return &SolutionWorker{
		solutionService: solutionService,
		interval:        interval,
		log:             log,
	}
}

func (w *SolutionWorker) Start(ctx context.Context) {
	w.log.WithField("interval", w.interval).Info("Solution update worker started")

	tickCtx := context.WithoutCancel(ctx)

	w.runOnce(tickCtx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Solution update worker stopping...")
			return
		case <-ticker.C:
			w.runOnce(tickCtx)
		}
	}
}

func (w *SolutionWorker) runOnce(ctx context.Context) {
	w.log.Info("Starting solution video update...")
	added := w.solutionService.UpdateAll(ctx)
	w.log.WithField("added", added).Info("Solution update complete")
}
