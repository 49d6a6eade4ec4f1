package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peer-review-api/internal/models"
	appErrors "github.com/noah-isme/peer-review-api/pkg/errors"
)

type resultsCacheStore interface {
	GroupResults(ctx context.Context, periodID, groupID int64) ([]models.StudentResult, error)
	Generation(ctx context.Context, periodID int64) (int64, error)
	PutGroupResults(ctx context.Context, periodID, groupID, gen int64, results []models.StudentResult, ttl time.Duration) (bool, error)
	InvalidatePeriod(ctx context.Context, periodID int64) (int, error)
}

// ResultsCache fronts the store-computed group results. Cache trouble never
// fails a request: reads degrade to misses and writes are best effort. A nil
// *ResultsCache is a valid, always-missing cache.
type ResultsCache struct {
	store   resultsCacheStore
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewResultsCache returns nil when caching is switched off so callers can hold
// the pointer unconditionally.
func NewResultsCache(store resultsCacheStore, enabled bool, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *ResultsCache {
	if !enabled || store == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultsCache{store: store, metrics: metrics, ttl: ttl, logger: logger}
}

// Enabled indicates whether results are cached at all.
func (c *ResultsCache) Enabled() bool {
	return c != nil
}

// Lookup returns cached results and whether the lookup hit.
func (c *ResultsCache) Lookup(ctx context.Context, periodID, groupID int64) ([]models.StudentResult, bool) {
	if c == nil {
		return nil, false
	}
	start := time.Now()
	results, err := c.store.GroupResults(ctx, periodID, groupID)
	c.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			c.logger.Warn("results cache read failed",
				zap.Int64("period_id", periodID), zap.Int64("group_id", groupID), zap.Error(err))
		}
		return nil, false
	}
	return results, true
}

// Snapshot pins the period's results generation before a computation reads
// the store. Results computed under a snapshot are only cached if no
// invalidation happened in between.
type Snapshot struct {
	periodID int64
	gen      int64
	valid    bool
}

// Begin takes a snapshot for the period. When the generation cannot be read
// the snapshot is invalid and Store skips the write.
func (c *ResultsCache) Begin(ctx context.Context, periodID int64) Snapshot {
	if c == nil {
		return Snapshot{periodID: periodID}
	}
	gen, err := c.store.Generation(ctx, periodID)
	if err != nil {
		c.logger.Warn("results cache generation read failed", zap.Int64("period_id", periodID), zap.Error(err))
		return Snapshot{periodID: periodID}
	}
	return Snapshot{periodID: periodID, gen: gen, valid: true}
}

// Store caches results computed under snap. It reports whether they were
// written; results that an invalidation overtook are dropped.
func (c *ResultsCache) Store(ctx context.Context, snap Snapshot, groupID int64, results []models.StudentResult) bool {
	if c == nil || !snap.valid {
		return false
	}
	stored, err := c.store.PutGroupResults(ctx, snap.periodID, groupID, snap.gen, results, c.ttl)
	if err != nil {
		c.logger.Warn("results cache write failed",
			zap.Int64("period_id", snap.periodID), zap.Int64("group_id", groupID), zap.Error(err))
		return false
	}
	if !stored {
		c.logger.Debug("results cache write skipped after invalidation",
			zap.Int64("period_id", snap.periodID), zap.Int64("group_id", groupID))
	}
	return stored
}

// InvalidatePeriod forgets every group's results for the period. Failures are
// logged and returned; callers that already committed should not fail on it.
func (c *ResultsCache) InvalidatePeriod(ctx context.Context, periodID int64) error {
	if c == nil {
		return nil
	}
	removed, err := c.store.InvalidatePeriod(ctx, periodID)
	if err != nil {
		c.logger.Warn("results cache invalidation failed", zap.Int64("period_id", periodID), zap.Error(err))
		return err
	}
	c.logger.Debug("results cache invalidated", zap.Int64("period_id", periodID), zap.Int("keys", removed))
	return nil
}
