package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/peer-review-api/pkg/jobs"
)

// WarmTarget identifies one cached group results entry.
type WarmTarget struct {
	PeriodID int64
	GroupID  int64
}

type resultsRefresher interface {
	Refresh(ctx context.Context, periodID, groupID int64) error
}

// ResultsWarmer recomputes group results in the background after a batch
// submit so the next admin read is a cache hit. A nil warmer does nothing.
type ResultsWarmer struct {
	queue  *jobs.Queue[WarmTarget]
	logger *zap.Logger
}

// NewResultsWarmer builds a warmer backed by a small worker pool.
func NewResultsWarmer(results resultsRefresher, cfg jobs.QueueConfig) *ResultsWarmer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job[WarmTarget]) error {
		return results.Refresh(ctx, job.Payload.PeriodID, job.Payload.GroupID)
	}
	return &ResultsWarmer{
		queue:  jobs.NewQueue("results-warmer", handler, cfg),
		logger: logger,
	}
}

// Start launches the workers.
func (w *ResultsWarmer) Start(ctx context.Context) {
	if w == nil {
		return
	}
	w.queue.Start(ctx)
}

// Stop waits for in-flight refreshes to finish.
func (w *ResultsWarmer) Stop() {
	if w == nil {
		return
	}
	w.queue.Stop()
}

// Warm schedules a refresh. A full queue drops the request since the next
// read recomputes anyway.
func (w *ResultsWarmer) Warm(periodID, groupID int64) {
	if w == nil {
		return
	}
	if err := w.queue.TryEnqueue(WarmTarget{PeriodID: periodID, GroupID: groupID}); err != nil {
		w.logger.Debug("results warm-up skipped", zap.Int64("period_id", periodID), zap.Int64("group_id", groupID), zap.Error(err))
	}
}
