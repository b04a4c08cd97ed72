package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sportlink/opportunity-engine/internal/service"
)

// Worker runs the engine's background tasks: closing active postings whose
// deadline has passed, and re-dispatching notifications that failed to
// store. Both tasks are idempotent, so an extra run costs nothing.
type Worker struct {
	postings      *service.PostingService
	notifications *service.NotificationService
	sweepEvery    time.Duration
	retryEvery    time.Duration
	logger        *zap.Logger
	stopChan      chan struct{}
}

func NewWorker(postings *service.PostingService, notifications *service.NotificationService, sweepEvery, retryEvery time.Duration, logger *zap.Logger) *Worker {
	return &Worker{
		postings:      postings,
		notifications: notifications,
		sweepEvery:    sweepEvery,
		retryEvery:    retryEvery,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the background loops.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting background worker",
		zap.Duration("sweep_interval", w.sweepEvery),
		zap.Duration("retry_interval", w.retryEvery),
	)

	go w.runDeadlineSweep(ctx)
	go w.runDispatchRetry(ctx)
}

// Stop shuts the loops down.
func (w *Worker) Stop() {
	w.logger.Info("Stopping background worker")
	close(w.stopChan)
}

// runDeadlineSweep periodically closes expired postings. The first sweep
// runs immediately so a restart catches up right away.
func (w *Worker) runDeadlineSweep(ctx context.Context) {
	w.sweep(ctx)

	ticker := time.NewTicker(w.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-w.stopChan:
			w.logger.Info("Deadline sweep stopped")
			return
		case <-ctx.Done():
			w.logger.Info("Deadline sweep cancelled")
			return
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	if err := w.postings.SweepExpired(ctx); err != nil {
		w.logger.Error("Deadline sweep failed", zap.Error(err))
	}
}

// runDispatchRetry periodically drains the notification backlog.
func (w *Worker) runDispatchRetry(ctx context.Context) {
	ticker := time.NewTicker(w.retryEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.notifications.RetryBacklog(ctx)
		case <-w.stopChan:
			w.logger.Info("Dispatch retry stopped")
			return
		case <-ctx.Done():
			w.logger.Info("Dispatch retry cancelled")
			return
		}
	}
}
